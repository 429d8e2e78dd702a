// Package probe talks HTTP to the hospital backend.
//
// A Prober performs single GET requests with a fixed timeout and no retries.
// WaitReady is the only polling helper and is used by "hmsctl wait".
package probe
