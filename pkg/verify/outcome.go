package verify

//go:generate go run github.com/dmarkham/enumer -type Outcome -trimprefix Outcome -transform lower -json -output outcome.gen.go

// Outcome is the result of a single check.
type Outcome int

const (
	OutcomePass Outcome = iota
	OutcomeWarn
	OutcomeFail
	OutcomeSkip
)

// Passed reports whether the outcome counts towards the passed total.
// A warning still passes; a skipped check does not.
func (o Outcome) Passed() bool {
	return o == OutcomePass || o == OutcomeWarn
}

//go:generate go run github.com/dmarkham/enumer -type Verdict -trimprefix Verdict -transform lower -json -output verdict.gen.go

// Verdict is the overall assessment of a run.
type Verdict int

const (
	VerdictSuccess Verdict = iota
	VerdictPartial
	VerdictFailure
)

// ExitCode maps the verdict to the process exit status.
func (v Verdict) ExitCode() int {
	if v == VerdictSuccess {
		return 0
	}
	return 1
}
