package verify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/doodlesbykumbi/hmsctl/pkg/probe"
	"github.com/doodlesbykumbi/hmsctl/pkg/store"
)

// Endpoint is an API route smoke-tested by the api_endpoints check.
type Endpoint struct {
	Path        string
	Description string
}

// DefaultEndpoints are the routes probed by the api_endpoints check.
var DefaultEndpoints = []Endpoint{
	{Path: "/", Description: "Root endpoint"},
	{Path: "/health", Description: "Health check"},
	{Path: "/api/admin/stats", Description: "Admin stats (requires auth)"},
	{Path: "/api/specializations/active", Description: "Active specializations"},
	{Path: "/api/doctors", Description: "Doctors list"},
}

// SampleTables are counted by the sample_data check, in report order.
var SampleTables = []struct {
	Table string
	Label string
}{
	{"doctors", "Doctors"},
	{"specializations", "Specializations"},
	{"patients", "Patients"},
	{"appointments", "Appointments"},
	{"admins", "Admins"},
}

type columnExpectation struct {
	Column   string
	Label    string
	Nullable bool
}

var doctorColumns = []columnExpectation{
	{Column: "email", Label: "Email", Nullable: true},
	{Column: "qualification", Label: "Qualification", Nullable: false},
	{Column: "name", Label: "Name", Nullable: false},
	{Column: "specialization", Label: "Specialization", Nullable: false},
}

// DefaultChecks returns the seven checks in the order they run.
func DefaultChecks() []Check {
	return []Check{
		{Name: "database_connection", Title: "Checking database connection", Run: checkDatabaseConnection},
		{Name: "database_tables", Title: "Checking database tables", Run: checkDatabaseTables},
		{Name: "doctors_schema", Title: "Checking doctors table schema", Run: checkDoctorsSchema},
		{Name: "backend_api", Title: "Checking backend API", Run: checkBackendAPI},
		{Name: "api_endpoints", Title: "Checking API endpoints", Run: checkAPIEndpoints},
		{Name: "sample_data", Title: "Checking sample data", Run: checkSampleData},
		{Name: "doctor_validation", Title: "Testing doctor validation", Run: checkDoctorValidation},
	}
}

func checkDatabaseConnection(ctx context.Context, env *Env, r *Result) {
	err := env.WithSession(ctx, func(sess store.Session) error {
		return sess.Ping()
	})
	if err != nil {
		r.FailErr(err, "Database connection failed")
		return
	}
	r.OK("Database connection successful")
}

func checkDatabaseTables(ctx context.Context, env *Env, r *Result) {
	var existing []string
	err := env.WithSession(ctx, func(sess store.Session) error {
		var err error
		existing, err = sess.TableNames()
		return err
	})
	if err != nil {
		r.FailErr(err, "Failed to list tables")
		return
	}

	present := make(map[string]bool, len(existing))
	for _, name := range existing {
		present[name] = true
	}

	for _, table := range env.RequiredTables {
		if present[table] {
			r.OK("Table '%s' exists", table)
		} else {
			r.Fail("Table '%s' missing", table)
		}
	}
}

func checkDoctorsSchema(ctx context.Context, env *Env, r *Result) {
	var columns []store.Column
	err := env.WithSession(ctx, func(sess store.Session) error {
		var err error
		columns, err = sess.Columns("doctors")
		return err
	})
	if err != nil {
		r.FailErr(err, "Failed to check schema")
		return
	}
	if len(columns) == 0 {
		r.FailErr(errors.New("table 'doctors' does not exist"), "Failed to check schema")
		return
	}

	byName := make(map[string]store.Column, len(columns))
	for _, c := range columns {
		byName[c.Name] = c
	}

	for _, exp := range doctorColumns {
		col, ok := byName[exp.Column]
		switch {
		case !ok:
			r.Warn("%s column is missing", exp.Label)
		case exp.Nullable && col.Nullable:
			r.OK("%s column is nullable (optional)", exp.Label)
		case exp.Nullable:
			r.Warn("%s column is NOT NULL (should be nullable)", exp.Label)
		case !col.Nullable:
			r.OK("%s column is NOT NULL (required)", exp.Label)
		default:
			r.Warn("%s column is nullable (should be required)", exp.Label)
		}
	}
}

func checkBackendAPI(ctx context.Context, env *Env, r *Result) {
	status, err := env.Prober.Get(ctx, "/health")
	switch {
	case probe.IsConnRefused(err):
		r.MarkSkipped("Backend API is not running (start with: uvicorn main:app --reload)")
	case err != nil:
		r.FailErr(err, "Failed to check API")
	case status == http.StatusOK:
		r.OK("Backend API is running")
	default:
		r.Err = fmt.Errorf("unexpected status %d", status)
		r.Fail("Backend responded with status %d", status)
	}
}

func checkAPIEndpoints(ctx context.Context, env *Env, r *Result) {
	var ok, unreachable int
	for _, ep := range DefaultEndpoints {
		status, err := env.Prober.Get(ctx, ep.Path)
		switch {
		case probe.IsConnRefused(err):
			unreachable++
			r.Skip("%s: Backend not running", ep.Description)
		case err != nil:
			r.Error("%s: %v", ep.Description, err)
		case status == http.StatusOK || status == http.StatusUnauthorized:
			ok++
			r.OK("%s: %d", ep.Description, status)
		default:
			r.add(LevelWarning, "%s: %d", ep.Description, status)
		}
	}

	r.Count("reachable", int64(ok))
	switch {
	case ok > 0:
		r.Outcome = OutcomePass
	case unreachable == len(DefaultEndpoints):
		r.Outcome = OutcomeSkip
	default:
		r.Outcome = OutcomeFail
	}
}

func checkSampleData(ctx context.Context, env *Env, r *Result) {
	err := env.WithSession(ctx, func(sess store.Session) error {
		counts := make([]int64, len(SampleTables))
		for i, t := range SampleTables {
			n, err := sess.CountRows(t.Table)
			if err != nil {
				return fmt.Errorf("count %s: %w", t.Table, err)
			}
			counts[i] = n
		}
		for i, t := range SampleTables {
			r.Count(t.Table, counts[i])
			r.Info("%s: %d", t.Label, counts[i])
		}
		return nil
	})
	if err != nil {
		r.FailErr(err, "Failed to check data")
		return
	}

	if r.Counts["admins"] == 0 {
		r.Warn("No admin users found. Run setup_db.py to create default admin.")
	}
}

func checkDoctorValidation(ctx context.Context, env *Env, r *Result) {
	err := env.WithSession(ctx, func(sess store.Session) error {
		if _, err := sess.SampleRows("doctors", 1); err != nil {
			return err
		}
		r.OK("Can query doctors table")

		blank, err := sess.CountBlank("doctors", "qualification")
		if err != nil {
			return err
		}
		r.Count("blank_qualification", blank)
		if blank == 0 {
			r.OK("All doctors have qualifications")
		} else {
			r.Warn("%d doctors have NULL/empty qualification", blank)
		}
		return nil
	})
	if err != nil {
		r.FailErr(err, "Validation check failed")
	}
}
