package verify

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/hmsctl/pkg/store"
)

func lineTexts(r Result, level Level) []string {
	var out []string
	for _, l := range r.Lines {
		if l.Level == level {
			out = append(out, l.Text)
		}
	}
	return out
}

func TestDatabaseConnection(t *testing.T) {
	srv := newAPI(t, nil)

	r := runOne(t, newEnv(healthyDB(), srv.URL), "database_connection")
	assert.Equal(t, OutcomePass, r.Outcome)
	assert.Equal(t, []string{"Database connection successful"}, lineTexts(r, LevelOK))

	db := healthyDB()
	db.pingErr = errors.New("connection reset by peer")
	r = runOne(t, newEnv(db, srv.URL), "database_connection")
	assert.Equal(t, OutcomeFail, r.Outcome)
	assert.Equal(t, []string{"Database connection failed: connection reset by peer"}, lineTexts(r, LevelError))
	assert.EqualError(t, r.Err, "connection reset by peer")
}

func TestDatabaseConnectionUnavailableStore(t *testing.T) {
	srv := newAPI(t, nil)
	env := newEnv(store.Unavailable(errors.New("dial tcp: connection refused")), srv.URL)

	r := runOne(t, env, "database_connection")
	assert.Equal(t, OutcomeFail, r.Outcome)
	assert.Contains(t, r.Lines[0].Text, "connection refused")
}

func TestDatabaseTables(t *testing.T) {
	srv := newAPI(t, nil)

	r := runOne(t, newEnv(healthyDB(), srv.URL), "database_tables")
	assert.Equal(t, OutcomePass, r.Outcome)
	assert.Len(t, lineTexts(r, LevelOK), 6)

	r = runOne(t, newEnv(healthyDB().withoutTable("banners"), srv.URL), "database_tables")
	assert.Equal(t, OutcomeFail, r.Outcome)
	assert.Equal(t, []string{"Table 'banners' missing"}, lineTexts(r, LevelError))
	assert.Len(t, lineTexts(r, LevelOK), 5)
}

func TestDoctorsSchema(t *testing.T) {
	srv := newAPI(t, nil)

	r := runOne(t, newEnv(healthyDB(), srv.URL), "doctors_schema")
	assert.Equal(t, OutcomePass, r.Outcome)
	assert.Equal(t, []string{
		"Email column is nullable (optional)",
		"Qualification column is NOT NULL (required)",
		"Name column is NOT NULL (required)",
		"Specialization column is NOT NULL (required)",
	}, lineTexts(r, LevelOK))

	db := healthyDB()
	db.columns["doctors"] = []store.Column{
		{Name: "name", Nullable: false},
		{Name: "email", Nullable: false},
		{Name: "qualification", Nullable: true},
	}
	r = runOne(t, newEnv(db, srv.URL), "doctors_schema")
	assert.Equal(t, OutcomeWarn, r.Outcome)
	assert.True(t, r.Passed())
	assert.Equal(t, []string{
		"Email column is NOT NULL (should be nullable)",
		"Qualification column is nullable (should be required)",
		"Specialization column is missing",
	}, lineTexts(r, LevelWarning))
}

func TestDoctorsSchemaFailures(t *testing.T) {
	srv := newAPI(t, nil)

	db := healthyDB()
	delete(db.columns, "doctors")
	r := runOne(t, newEnv(db, srv.URL), "doctors_schema")
	assert.Equal(t, OutcomeFail, r.Outcome)
	assert.Contains(t, r.Lines[0].Text, "does not exist")

	db = healthyDB()
	db.columnsErr = errors.New("permission denied for schema information_schema")
	r = runOne(t, newEnv(db, srv.URL), "doctors_schema")
	assert.Equal(t, OutcomeFail, r.Outcome)
	assert.Contains(t, r.Lines[0].Text, "Failed to check schema")
}

func TestBackendAPI(t *testing.T) {
	r := runOne(t, newEnv(healthyDB(), newAPI(t, nil).URL), "backend_api")
	assert.Equal(t, OutcomePass, r.Outcome)
	assert.Equal(t, []string{"Backend API is running"}, lineTexts(r, LevelOK))

	r = runOne(t, newEnv(healthyDB(), newAPI(t, map[string]int{"/health": http.StatusServiceUnavailable}).URL), "backend_api")
	assert.Equal(t, OutcomeFail, r.Outcome)
	assert.Equal(t, []string{"Backend responded with status 503"}, lineTexts(r, LevelError))

	r = runOne(t, newEnv(healthyDB(), downAPI()), "backend_api")
	assert.Equal(t, OutcomeSkip, r.Outcome)
	assert.False(t, r.Passed())
	assert.Contains(t, lineTexts(r, LevelSkip)[0], "Backend API is not running")
}

func TestAPIEndpoints(t *testing.T) {
	r := runOne(t, newEnv(healthyDB(), newAPI(t, nil).URL), "api_endpoints")
	assert.Equal(t, OutcomePass, r.Outcome)
	assert.Contains(t, lineTexts(r, LevelOK), "Admin stats (requires auth): 401")
	assert.Equal(t, int64(5), r.Counts["reachable"])

	t.Run("one endpoint ok", func(t *testing.T) {
		srv := newAPI(t, map[string]int{
			"/":                           http.StatusInternalServerError,
			"/health":                     http.StatusInternalServerError,
			"/api/admin/stats":            http.StatusInternalServerError,
			"/api/specializations/active": http.StatusInternalServerError,
		})
		r := runOne(t, newEnv(healthyDB(), srv.URL), "api_endpoints")
		assert.Equal(t, OutcomePass, r.Outcome)
		assert.Equal(t, []string{"Doctors list: 200"}, lineTexts(r, LevelOK))
		assert.Len(t, lineTexts(r, LevelWarning), 4)
	})

	t.Run("all endpoints failing", func(t *testing.T) {
		statuses := map[string]int{}
		for _, ep := range DefaultEndpoints {
			statuses[ep.Path] = http.StatusInternalServerError
		}
		r := runOne(t, newEnv(healthyDB(), newAPI(t, statuses).URL), "api_endpoints")
		assert.Equal(t, OutcomeFail, r.Outcome)
	})

	t.Run("backend not running", func(t *testing.T) {
		r := runOne(t, newEnv(healthyDB(), downAPI()), "api_endpoints")
		assert.Equal(t, OutcomeSkip, r.Outcome)
		assert.Len(t, lineTexts(r, LevelSkip), len(DefaultEndpoints))
	})
}

func TestSampleData(t *testing.T) {
	srv := newAPI(t, nil)

	r := runOne(t, newEnv(healthyDB(), srv.URL), "sample_data")
	assert.Equal(t, OutcomePass, r.Outcome)
	assert.Equal(t, []string{
		"Doctors: 12",
		"Specializations: 5",
		"Patients: 40",
		"Appointments: 87",
		"Admins: 1",
	}, lineTexts(r, LevelInfo))
	assert.Equal(t, int64(87), r.Counts["appointments"])

	db := healthyDB()
	db.counts["admins"] = 0
	r = runOne(t, newEnv(db, srv.URL), "sample_data")
	assert.Equal(t, OutcomeWarn, r.Outcome)
	assert.True(t, r.Passed())
	assert.Equal(t, []string{"No admin users found. Run setup_db.py to create default admin."}, lineTexts(r, LevelWarning))

	db = healthyDB()
	db.countErr = errors.New(`relation "patients" does not exist`)
	r = runOne(t, newEnv(db, srv.URL), "sample_data")
	assert.Equal(t, OutcomeFail, r.Outcome)
	assert.Empty(t, lineTexts(r, LevelInfo))
}

func TestDoctorValidation(t *testing.T) {
	srv := newAPI(t, nil)

	r := runOne(t, newEnv(healthyDB(), srv.URL), "doctor_validation")
	assert.Equal(t, OutcomePass, r.Outcome)
	assert.Equal(t, []string{"Can query doctors table", "All doctors have qualifications"}, lineTexts(r, LevelOK))

	db := healthyDB()
	db.blank = 3
	r = runOne(t, newEnv(db, srv.URL), "doctor_validation")
	assert.Equal(t, OutcomeWarn, r.Outcome)
	assert.Equal(t, []string{"3 doctors have NULL/empty qualification"}, lineTexts(r, LevelWarning))
	assert.Equal(t, int64(3), r.Counts["blank_qualification"])

	db = healthyDB()
	db.sampleErr = errors.New(`relation "doctors" does not exist`)
	r = runOne(t, newEnv(db, srv.URL), "doctor_validation")
	assert.Equal(t, OutcomeFail, r.Outcome)
	assert.Empty(t, lineTexts(r, LevelOK))
	require.NotEmpty(t, lineTexts(r, LevelError))
	assert.Contains(t, lineTexts(r, LevelError)[0], "Validation check failed")
}

func TestSelect(t *testing.T) {
	all := DefaultChecks()

	selected, err := Select(all, nil)
	require.NoError(t, err)
	assert.Len(t, selected, 7)

	selected, err = Select(all, []string{"sample_data", " database_connection"})
	require.NoError(t, err)
	assert.Equal(t, []string{"database_connection", "sample_data"}, Names(selected))

	_, err = Select(all, []string{"database_connection", "frontend", "cache"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown checks: cache, frontend")
}
