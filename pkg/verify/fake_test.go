package verify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/hmsctl/pkg/config"
	"github.com/doodlesbykumbi/hmsctl/pkg/probe"
	"github.com/doodlesbykumbi/hmsctl/pkg/store"
)

// fakeDB is an in-memory store.Store that records session usage.
type fakeDB struct {
	mu sync.Mutex

	tables  []string
	columns map[string][]store.Column
	counts  map[string]int64
	blank   int64

	sessionErr error
	pingErr    error
	tablesErr  error
	columnsErr error
	countErr   error
	sampleErr  error
	blankErr   error

	opened      int
	closed      int
	hadDeadline []bool
}

func healthyDB() *fakeDB {
	return &fakeDB{
		tables: []string{"admins", "appointments", "banners", "doctors", "patients", "specializations", "alembic_version"},
		columns: map[string][]store.Column{
			"doctors": {
				{Name: "id", Nullable: false},
				{Name: "name", Nullable: false},
				{Name: "email", Nullable: true},
				{Name: "qualification", Nullable: false},
				{Name: "specialization", Nullable: false},
			},
		},
		counts: map[string]int64{
			"doctors": 12, "specializations": 5, "patients": 40, "appointments": 87, "admins": 1,
		},
	}
}

func (f *fakeDB) withoutTable(name string) *fakeDB {
	var tables []string
	for _, t := range f.tables {
		if t != name {
			tables = append(tables, t)
		}
	}
	f.tables = tables
	return f
}

func (f *fakeDB) Session(ctx context.Context) (store.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	f.opened++
	_, ok := ctx.Deadline()
	f.hadDeadline = append(f.hadDeadline, ok)
	return &fakeSession{db: f}, nil
}

func (f *fakeDB) Close() error { return nil }

func (f *fakeDB) sessions() (opened, closed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened, f.closed
}

type fakeSession struct {
	db *fakeDB
}

func (s *fakeSession) Ping() error { return s.db.pingErr }

func (s *fakeSession) TableNames() ([]string, error) {
	if s.db.tablesErr != nil {
		return nil, s.db.tablesErr
	}
	return s.db.tables, nil
}

func (s *fakeSession) Columns(table string) ([]store.Column, error) {
	if s.db.columnsErr != nil {
		return nil, s.db.columnsErr
	}
	return s.db.columns[table], nil
}

func (s *fakeSession) CountRows(table string) (int64, error) {
	if s.db.countErr != nil {
		return 0, s.db.countErr
	}
	return s.db.counts[table], nil
}

func (s *fakeSession) SampleRows(table string, limit int) (int, error) {
	if s.db.sampleErr != nil {
		return 0, s.db.sampleErr
	}
	if s.db.counts[table] < int64(limit) {
		return int(s.db.counts[table]), nil
	}
	return limit, nil
}

func (s *fakeSession) CountBlank(table, column string) (int64, error) {
	if s.db.blankErr != nil {
		return 0, s.db.blankErr
	}
	return s.db.blank, nil
}

func (s *fakeSession) Close() error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.closed++
	return nil
}

// newAPI serves the hospital API routes. statuses overrides the status of
// individual paths.
func newAPI(t *testing.T, statuses map[string]int) *httptest.Server {
	t.Helper()

	defaults := map[string]int{
		"/":                           http.StatusOK,
		"/health":                     http.StatusOK,
		"/api/admin/stats":            http.StatusUnauthorized,
		"/api/specializations/active": http.StatusOK,
		"/api/doctors":                http.StatusOK,
	}
	for path, status := range statuses {
		defaults[path] = status
	}

	r := mux.NewRouter()
	for path, status := range defaults {
		status := status
		r.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}).Methods(http.MethodGet)
	}

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func downAPI() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	return srv.URL
}

func newEnv(db store.Store, baseURL string) *Env {
	return &Env{
		Store:          db,
		Prober:         probe.New(baseURL, 2*time.Second),
		RequiredTables: config.DefaultRequiredTables,
		DBTimeout:      time.Second,
	}
}

func runOne(t *testing.T, env *Env, name string) Result {
	t.Helper()
	checks, err := Select(DefaultChecks(), []string{name})
	if err != nil {
		t.Fatal(err)
	}
	s := NewRunner(env, checks, DefaultThreshold).Run(context.Background())
	return s.Results[0]
}
