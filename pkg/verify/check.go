package verify

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/doodlesbykumbi/hmsctl/pkg/probe"
	"github.com/doodlesbykumbi/hmsctl/pkg/store"
)

// Check is a single named verification step.
type Check struct {
	Name  string
	Title string
	Run   func(ctx context.Context, env *Env, r *Result)
}

// Env carries the dependencies a check may use. Nothing is shared between
// checks except through Env.
type Env struct {
	Store          store.Store
	Prober         *probe.Prober
	RequiredTables []string
	DBTimeout      time.Duration
	Logger         *zap.Logger
}

// WithSession opens a session bounded by the DB timeout, runs fn and closes
// the session whatever fn returns.
func (e *Env) WithSession(ctx context.Context, fn func(sess store.Session) error) error {
	if e.DBTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.DBTimeout)
		defer cancel()
	}

	sess, err := e.Store.Session(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			e.logger().Warn("failed to close database session", zap.Error(cerr))
		}
	}()

	return fn(sess)
}

func (e *Env) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Select returns the checks whose names appear in only, in their original
// order. An empty only selects every check.
func Select(checks []Check, only []string) ([]Check, error) {
	if len(only) == 0 {
		return checks, nil
	}

	wanted := make(map[string]bool, len(only))
	for _, name := range only {
		wanted[strings.TrimSpace(name)] = true
	}

	var selected []Check
	for _, c := range checks {
		if wanted[c.Name] {
			selected = append(selected, c)
			delete(wanted, c.Name)
		}
	}

	if len(wanted) > 0 {
		var unknown []string
		for name := range wanted {
			unknown = append(unknown, name)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown checks: %s (available: %s)", strings.Join(unknown, ", "), strings.Join(Names(checks), ", "))
	}
	return selected, nil
}

// Names returns the names of checks.
func Names(checks []Check) []string {
	names := make([]string, len(checks))
	for i, c := range checks {
		names[i] = c.Name
	}
	return names
}
