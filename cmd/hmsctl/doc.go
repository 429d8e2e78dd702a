// Command hmsctl is the operations CLI of the hospital-management backend.
//
// # Commands
//
//	hmsctl inspect              # show how SECRET_KEY, DATABASE_URL and token expiry resolve
//	hmsctl inspect --watch      # re-run whenever the .env file changes
//	hmsctl verify               # run the seven deployment checks, exit 1 unless all pass
//	hmsctl verify -o json       # machine-readable report for CI
//	hmsctl wait                 # block until the backend answers /health
//	hmsctl configuration show   # print every setting with its source
//	hmsctl db migrate           # apply the reference schema to a dev database
//
// # Environment Variables
//
//   - SECRET_KEY: JWT signing secret of the backend
//   - DATABASE_URL: PostgreSQL connection string
//   - ACCESS_TOKEN_EXPIRE_MINUTES: access token lifetime
//   - HMS_BASE_URL: backend base URL (default http://localhost:8000)
//   - HMS_HTTP_TIMEOUT, HMS_DB_TIMEOUT: per request and per check timeouts
//   - HMS_PASS_THRESHOLD: share of checks needed for a partial verdict (default 0.7)
//   - HMS_LOG_LEVEL: debug, info, warn or error
//   - HMS_CONFIG_PATH, HMS_ENV_FILE: where hmsctl.yml and .env are read from
package main
