package db

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestConnectRequiresURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hms")

	_, err := Connect(Config{})
	assert.ErrorIs(t, err, ErrNoDatabaseURL)
}

func TestConnectUnreachable(t *testing.T) {
	// port 1 on localhost is never a postgres server
	database, err := Connect(Config{URL: "postgres://u:p@127.0.0.1:1/hms?sslmode=disable"})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.Error(t, sqlDB.PingContext(ctx))
}

// silentServer accepts connections and never writes to them.
func silentServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return ln.Addr().String()
}

func TestConnectSilentServer(t *testing.T) {
	addr := silentServer(t)

	type result struct {
		err     error
		pingErr error
	}
	done := make(chan result, 1)
	go func() {
		database, err := Connect(Config{URL: "postgres://u:p@" + addr + "/hms?sslmode=disable"})
		if err != nil {
			done <- result{err: err}
			return
		}
		sqlDB, err := database.DB()
		if err != nil {
			done <- result{err: err}
			return
		}
		defer func() { _ = sqlDB.Close() }()

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		done <- result{pingErr: sqlDB.PingContext(ctx)}
	}()

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Error(t, r.pingErr)
	case <-time.After(10 * time.Second):
		t.Fatal("connecting to a server that never answers did not honor the context deadline")
	}
}

func TestLogMode(t *testing.T) {
	assert.Equal(t, logger.Info, LogMode("debug"))
	assert.Equal(t, logger.Silent, LogMode("warn"))
	assert.Equal(t, logger.Silent, LogMode(""))
}

func TestWithMigrationsTable(t *testing.T) {
	assert.Equal(t, "", WithMigrationsTable(""))
	assert.Equal(t,
		"postgres://u:p@db/hms?x-migrations-table=hms_schema_migrations",
		WithMigrationsTable("postgres://u:p@db/hms"))
	assert.Equal(t,
		"postgres://u:p@db/hms?sslmode=disable&x-migrations-table=hms_schema_migrations",
		WithMigrationsTable("postgres://u:p@db/hms?sslmode=disable"))
}

func TestNewMigratorRequiresURL(t *testing.T) {
	_, err := NewMigrator("")
	assert.ErrorIs(t, err, ErrNoDatabaseURL)
}

func TestMigrationFiles(t *testing.T) {
	files, err := MigrationFiles()
	assert.NoError(t, err)
	assert.Equal(t, []string{"000001_create_hospital_schema.up.sql"}, files)
}
