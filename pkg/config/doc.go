// Package config provides configuration management for hmsctl.
//
// Settings are resolved from, in increasing order of precedence:
//
//   - Built-in defaults
//   - The YAML file hmsctl.yml in HMS_CONFIG_PATH (default: current directory)
//   - A dotenv file (HMS_ENV_FILE, default: .env), read without touching the process environment
//   - The process environment
//   - Command line flags (see Settings.ApplyFlags)
//
// Every attribute remembers which of these it came from, which is what
// "hmsctl configuration show" and "hmsctl inspect" report.
//
// A variable present in the environment hides the dotenv entry of the same
// name, even when it is empty. Values that cannot be parsed leave the
// attribute unchanged and are returned by Settings.Problems; Validate turns
// them into an error for the commands that need them.
//
// # Key Configuration Options
//
//   - SECRET_KEY: JWT signing secret used by the hospital backend
//   - DATABASE_URL: PostgreSQL connection string
//   - ACCESS_TOKEN_EXPIRE_MINUTES: Access token lifetime in minutes
//   - HMS_BASE_URL: Base URL of the backend API (default: http://localhost:8000)
//   - HMS_HTTP_TIMEOUT, HMS_DB_TIMEOUT: Per-request timeouts (Go durations)
//   - HMS_PASS_THRESHOLD: Fraction of checks that must pass for a partial verdict
//   - HMS_LOG_LEVEL: Log level (debug, info, warn, error)
package config
