package verify

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
)

// Runner executes checks one after another.
type Runner struct {
	env       *Env
	checks    []Check
	threshold float64

	// Progress, when set, is called after every check with its result.
	Progress func(index int, r Result)
}

// NewRunner returns a Runner for checks. threshold is the fraction of passed
// checks needed for a partial verdict.
func NewRunner(env *Env, checks []Check, threshold float64) *Runner {
	return &Runner{env: env, checks: checks, threshold: threshold}
}

// Run executes every check and summarizes the results. A failing or
// panicking check never stops the run.
func (rn *Runner) Run(ctx context.Context) Summary {
	results := make([]Result, 0, len(rn.checks))
	for i, c := range rn.checks {
		r := rn.runCheck(ctx, c)
		results = append(results, r)
		if rn.Progress != nil {
			rn.Progress(i, r)
		}
	}
	return Summarize(results, rn.threshold)
}

func (rn *Runner) runCheck(ctx context.Context, c Check) (res Result) {
	log := rn.env.logger().With(zap.String("check", c.Name))
	r := newResult(c)
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			log.Error("check panicked", zap.Any("panic", p), zap.ByteString("stack", debug.Stack()))
			r.FailErr(fmt.Errorf("panic: %v", p), "Check crashed")
		}
		r.Duration = time.Since(start)
		switch r.Outcome {
		case OutcomeFail:
			log.Warn("check failed", zap.Error(r.Err), zap.Duration("duration", r.Duration))
		default:
			log.Debug("check finished", zap.Stringer("outcome", r.Outcome), zap.Duration("duration", r.Duration))
		}
		res = *r
	}()

	log.Debug("running check")
	c.Run(ctx, rn.env, r)
	return *r
}
