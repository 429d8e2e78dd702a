// Package verify runs the end-to-end health checks of a hospital-management
// deployment.
//
// A run executes DefaultChecks in order. Each check receives an Env, opens
// its own database session when it needs one and reports a Result. Results
// are aggregated into a Summary whose Verdict decides the exit status:
//
//   - Success: every check passed
//   - Partial: at least Threshold of the checks passed
//   - Failure: anything else
//
// Warnings count as passed. Skipped checks, such as API checks when the
// backend is not running, do not.
package verify
