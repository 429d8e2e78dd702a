package gorm

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/hmsctl/pkg/store"
)

// newMockStore wraps sqlmock with GORM the same way the real connection is opened
func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 sqlDB,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	require.NoError(t, err)

	return New(gormDB), mock
}

func openSession(t *testing.T, st *Store) store.Session {
	t.Helper()
	sess, err := st.Session(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

func TestPing(t *testing.T) {
	st, mock := newMockStore(t)
	sess := openSession(t, st)

	mock.ExpectExec(`SELECT 1`).WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, sess.Ping())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPingError(t *testing.T) {
	st, mock := newMockStore(t)
	sess := openSession(t, st)

	mock.ExpectExec(`SELECT 1`).WillReturnError(errors.New("server closed the connection"))

	assert.EqualError(t, sess.Ping(), "server closed the connection")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableNames(t *testing.T) {
	st, mock := newMockStore(t)
	sess := openSession(t, st)

	rows := sqlmock.NewRows([]string{"table_name"}).
		AddRow("admins").
		AddRow("doctors").
		AddRow("patients")
	mock.ExpectQuery(`SELECT table_name FROM information_schema.tables`).WillReturnRows(rows)

	names, err := sess.TableNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"admins", "doctors", "patients"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestColumns(t *testing.T) {
	st, mock := newMockStore(t)
	sess := openSession(t, st)

	rows := sqlmock.NewRows([]string{"column_name", "is_nullable"}).
		AddRow("id", "NO").
		AddRow("name", "NO").
		AddRow("email", "YES")
	mock.ExpectQuery(`SELECT column_name, is_nullable FROM information_schema.columns`).
		WithArgs("doctors").
		WillReturnRows(rows)

	cols, err := sess.Columns("doctors")
	require.NoError(t, err)
	assert.Equal(t, []store.Column{
		{Name: "id", Nullable: false},
		{Name: "name", Nullable: false},
		{Name: "email", Nullable: true},
	}, cols)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountRows(t *testing.T) {
	st, mock := newMockStore(t)
	sess := openSession(t, st)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "appointments"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	n, err := sess.CountRows("appointments")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSampleRows(t *testing.T) {
	st, mock := newMockStore(t)
	sess := openSession(t, st)

	mock.ExpectQuery(`SELECT 1 FROM "doctors" LIMIT 1`).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	n, err := sess.SampleRows("doctors", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountBlank(t *testing.T) {
	st, mock := newMockStore(t)
	sess := openSession(t, st)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "doctors" WHERE .*"qualification" IS NULL OR "qualification" = \$1`).
		WithArgs("").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := sess.CountBlank("doctors", "qualification")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidIdentifiersNeverReachTheDatabase(t *testing.T) {
	st, mock := newMockStore(t)
	sess := openSession(t, st)

	_, err := sess.CountRows(`doctors"; DROP TABLE admins; --`)
	assert.ErrorIs(t, err, store.ErrInvalidIdentifier)

	_, err = sess.Columns("1doctors")
	assert.ErrorIs(t, err, store.ErrInvalidIdentifier)

	_, err = sess.SampleRows("doctors limit", 1)
	assert.ErrorIs(t, err, store.ErrInvalidIdentifier)

	_, err = sess.CountBlank("doctors", "qualification = '' OR 1=1")
	assert.ErrorIs(t, err, store.ErrInvalidIdentifier)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionAfterClose(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectClose()
	require.NoError(t, st.Close())

	_, err := st.Session(context.Background())
	assert.Error(t, err)
}
