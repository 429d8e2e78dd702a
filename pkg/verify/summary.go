package verify

// DefaultThreshold is the share of passed checks for a partial verdict.
const DefaultThreshold = 0.7

// Summary aggregates the results of a run.
type Summary struct {
	Results   []Result
	Passed    int
	Total     int
	Threshold float64
	Verdict   Verdict
}

// Summarize counts passed results and decides the verdict.
func Summarize(results []Result, threshold float64) Summary {
	passed := 0
	for i := range results {
		if results[i].Passed() {
			passed++
		}
	}
	return Summary{
		Results:   results,
		Passed:    passed,
		Total:     len(results),
		Threshold: threshold,
		Verdict:   DecideVerdict(passed, len(results), threshold),
	}
}

// DecideVerdict returns Success when every check passed, Partial when at
// least total*threshold passed and Failure otherwise.
func DecideVerdict(passed, total int, threshold float64) Verdict {
	switch {
	case passed == total:
		return VerdictSuccess
	case float64(passed) >= float64(total)*threshold:
		return VerdictPartial
	default:
		return VerdictFailure
	}
}

// ExitCode is the process exit status for the run
func (s Summary) ExitCode() int {
	return s.Verdict.ExitCode()
}

// Message is the headline printed for the verdict.
func (s Summary) Message() []string {
	switch s.Verdict {
	case VerdictSuccess:
		return []string{"[SUCCESS] All checks passed! System is ready."}
	case VerdictPartial:
		return []string{"[WARNING] Most checks passed, but some issues found.", "Review the warnings above."}
	default:
		return []string{"[ERROR] Multiple issues found. Please review the errors above."}
	}
}

// NextSteps are the operator hints printed after every run.
var NextSteps = []string{
	"If backend is not running: cd backend && uvicorn main:app --reload",
	"If no admin exists: cd backend && python setup_db.py",
	"Start frontend: cd frontend && npm run dev",
}
