package verify

import (
	"fmt"
	"time"
)

// Level tags a printed detail line.
type Level string

const (
	LevelOK      Level = "ok"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelSkip    Level = "skip"
	LevelInfo    Level = "info"
)

// Line is one detail line of a check result.
type Line struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Result is what a check reports.
type Result struct {
	Name     string
	Title    string
	Outcome  Outcome
	Lines    []Line
	Counts   map[string]int64
	Err      error
	Duration time.Duration
}

func newResult(c Check) *Result {
	return &Result{Name: c.Name, Title: c.Title, Outcome: OutcomePass}
}

// Passed reports whether the result counts towards the passed total
func (r *Result) Passed() bool {
	return r.Outcome.Passed()
}

func (r *Result) add(level Level, format string, args ...interface{}) {
	r.Lines = append(r.Lines, Line{Level: level, Text: fmt.Sprintf(format, args...)})
}

// OK records a successful detail.
func (r *Result) OK(format string, args ...interface{}) {
	r.add(LevelOK, format, args...)
}

// Info records an untagged detail line.
func (r *Result) Info(format string, args ...interface{}) {
	r.add(LevelInfo, format, args...)
}

// Warn records a deviation. A passing result is downgraded to a warning.
func (r *Result) Warn(format string, args ...interface{}) {
	r.add(LevelWarning, format, args...)
	if r.Outcome == OutcomePass {
		r.Outcome = OutcomeWarn
	}
}

// Skip records a detail that could not be evaluated. It does not change
// the outcome; use MarkSkipped for that.
func (r *Result) Skip(format string, args ...interface{}) {
	r.add(LevelSkip, format, args...)
}

// MarkSkipped marks the whole check as not applicable.
func (r *Result) MarkSkipped(format string, args ...interface{}) {
	r.Skip(format, args...)
	if r.Outcome != OutcomeFail {
		r.Outcome = OutcomeSkip
	}
}

// Error records a failed detail without failing the check.
func (r *Result) Error(format string, args ...interface{}) {
	r.add(LevelError, format, args...)
}

// Fail records a failure and fails the check.
func (r *Result) Fail(format string, args ...interface{}) {
	r.Error(format, args...)
	r.Outcome = OutcomeFail
}

// FailErr fails the check with err, keeping err for the report.
func (r *Result) FailErr(err error, prefix string) {
	r.Err = err
	r.Fail("%s: %v", prefix, err)
}

// Count records a named figure, e.g. a row count.
func (r *Result) Count(name string, n int64) {
	if r.Counts == nil {
		r.Counts = make(map[string]int64)
	}
	r.Counts[name] = n
}
