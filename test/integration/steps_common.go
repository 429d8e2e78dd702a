package integration

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/cucumber/godog"
	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/hmsctl/pkg/config"
	"github.com/doodlesbykumbi/hmsctl/pkg/probe"
	gormstore "github.com/doodlesbykumbi/hmsctl/pkg/store/gorm"
	"github.com/doodlesbykumbi/hmsctl/pkg/verify"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc *TestContext

	mu       sync.Mutex
	statuses map[string]int
	api      *httptest.Server
	apiDown  bool

	summary verify.Summary
	output  bytes.Buffer

	inspection *inspection
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		s.statuses = map[string]int{
			"/":                           http.StatusOK,
			"/health":                     http.StatusOK,
			"/api/admin/stats":            http.StatusUnauthorized,
			"/api/specializations/active": http.StatusOK,
			"/api/doctors":                http.StatusOK,
		}
		return ctx, s.tc.ResetSchema()
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		if s.api != nil {
			s.api.Close()
		}
		return ctx, nil
	})

	// Background steps
	sc.Step(`^the reference schema is migrated$`, s.theReferenceSchemaIsMigrated)
	sc.Step(`^the backend API is running$`, s.theBackendAPIIsRunning)
	sc.Step(`^the backend API is not running$`, s.theBackendAPIIsNotRunning)
	sc.Step(`^the endpoint "([^"]*)" responds with (\d+)$`, s.theEndpointRespondsWith)

	// Data steps
	sc.Step(`^the table "([^"]*)" is dropped$`, s.theTableIsDropped)
	sc.Step(`^an admin user "([^"]*)" exists$`, s.anAdminUserExists)
	sc.Step(`^a doctor "([^"]*)" with qualification "([^"]*)" exists$`, s.aDoctorWithQualificationExists)
	sc.Step(`^the column "([^"]*)" of "([^"]*)" allows NULL$`, s.theColumnAllowsNull)

	// Verification steps
	sc.Step(`^I run the verifier$`, s.iRunTheVerifier)
	sc.Step(`^the check "([^"]*)" should (pass|warn|fail|skip)$`, s.theCheckShould)
	sc.Step(`^(\d+) of (\d+) checks should pass$`, s.checksShouldPass)
	sc.Step(`^the verdict should be "([^"]*)" with exit code (\d+)$`, s.theVerdictShouldBe)
	sc.Step(`^the report should contain "([^"]*)"$`, s.theReportShouldContain)
	sc.Step(`^no database connection should be left in use$`, s.noDatabaseConnectionInUse)

	s.registerInspectSteps(sc)
}

// Background steps

func (s *StepsContext) theReferenceSchemaIsMigrated() error {
	var n int
	err := s.tc.RawDB.QueryRow(`SELECT count(*) FROM hms_schema_migrations WHERE dirty = false`).Scan(&n)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("expected one migration version row, got %d", n)
	}
	return nil
}

func (s *StepsContext) theBackendAPIIsRunning() error {
	r := mux.NewRouter()
	r.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.mu.Lock()
		status, ok := s.statuses[req.URL.Path]
		s.mu.Unlock()
		if !ok {
			status = http.StatusNotFound
		}
		w.WriteHeader(status)
	}).Methods(http.MethodGet)

	s.api = httptest.NewServer(r)
	s.apiDown = false
	return nil
}

func (s *StepsContext) theBackendAPIIsNotRunning() error {
	s.apiDown = true
	return nil
}

func (s *StepsContext) theEndpointRespondsWith(path string, status int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[path] = status
	return nil
}

// Data steps

func (s *StepsContext) theTableIsDropped(table string) error {
	_, err := s.tc.RawDB.Exec(fmt.Sprintf(`DROP TABLE %q CASCADE`, table))
	return err
}

func (s *StepsContext) anAdminUserExists(username string) error {
	_, err := s.tc.RawDB.Exec(
		`INSERT INTO admins (username, email, hashed_password) VALUES ($1, $2, $3)`,
		username, username+"@hospital.test", "$2b$12$notarealhashnotarealhashnotarealhashnotarealhash",
	)
	return err
}

func (s *StepsContext) aDoctorWithQualificationExists(name, qualification string) error {
	_, err := s.tc.RawDB.Exec(
		`INSERT INTO doctors (name, specialization, qualification) VALUES ($1, $2, $3)`,
		name, "Cardiology", qualification,
	)
	return err
}

func (s *StepsContext) theColumnAllowsNull(column, table string) error {
	_, err := s.tc.RawDB.Exec(fmt.Sprintf(`ALTER TABLE %q ALTER COLUMN %q DROP NOT NULL`, table, column))
	return err
}

// Verification steps

func (s *StepsContext) baseURL() string {
	if s.apiDown || s.api == nil {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		return srv.URL
	}
	return s.api.URL
}

func (s *StepsContext) iRunTheVerifier() error {
	settings := config.Default()

	env := &verify.Env{
		Store:          gormstore.New(s.tc.DB),
		Prober:         probe.New(s.baseURL(), 2*time.Second),
		RequiredTables: settings.RequiredTables,
		DBTimeout:      settings.DBTimeout,
	}

	s.summary = verify.NewRunner(env, verify.DefaultChecks(), settings.PassThreshold).Run(context.Background())

	s.output.Reset()
	return verify.WriteText(&s.output, s.summary)
}

func (s *StepsContext) theCheckShould(name, outcome string) error {
	want, err := verify.OutcomeString(outcome)
	if err != nil {
		return err
	}
	for _, r := range s.summary.Results {
		if r.Name != name {
			continue
		}
		if r.Outcome != want {
			return fmt.Errorf("check %s: expected %s, got %s (%v)", name, want, r.Outcome, r.Lines)
		}
		return nil
	}
	return fmt.Errorf("check %s did not run", name)
}

func (s *StepsContext) checksShouldPass(passed, total int) error {
	if s.summary.Passed != passed || s.summary.Total != total {
		return fmt.Errorf("expected %d/%d checks to pass, got %d/%d", passed, total, s.summary.Passed, s.summary.Total)
	}
	return nil
}

func (s *StepsContext) theVerdictShouldBe(verdict string, code int) error {
	if s.summary.Verdict.String() != verdict {
		return fmt.Errorf("expected verdict %s, got %s", verdict, s.summary.Verdict)
	}
	if s.summary.ExitCode() != code {
		return fmt.Errorf("expected exit code %d, got %d", code, s.summary.ExitCode())
	}
	return nil
}

func (s *StepsContext) theReportShouldContain(text string) error {
	if !strings.Contains(s.output.String(), text) {
		return fmt.Errorf("expected report to contain %q, got:\n%s", text, s.output.String())
	}
	return nil
}

func (s *StepsContext) noDatabaseConnectionInUse() error {
	sqlDB, err := s.tc.DB.DB()
	if err != nil {
		return err
	}
	if inUse := sqlDB.Stats().InUse; inUse != 0 {
		return fmt.Errorf("expected no connection in use, got %d", inUse)
	}
	return nil
}
