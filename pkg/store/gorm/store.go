package gorm

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/hmsctl/pkg/store"
)

const tablesQuery = `SELECT table_name FROM information_schema.tables
WHERE table_schema = CURRENT_SCHEMA() AND table_type = 'BASE TABLE'
ORDER BY table_name`

const columnsQuery = `SELECT column_name, is_nullable FROM information_schema.columns
WHERE table_schema = CURRENT_SCHEMA() AND table_name = ?
ORDER BY ordinal_position`

// Store hands out GORM sessions pinned to a single pooled connection
type Store struct {
	db *gorm.DB
}

// New creates a new Store
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Session acquires a dedicated connection and binds a GORM session to it
func (s *Store) Session(ctx context.Context) (store.Session, error) {
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	tx := s.db.Session(&gorm.Session{NewDB: true, Context: ctx})
	tx.Statement.ConnPool = conn
	return &Session{db: tx, conn: conn}, nil
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Session implements store.Session on top of GORM
type Session struct {
	db   *gorm.DB
	conn *sql.Conn
}

// Ping verifies database connectivity
func (s *Session) Ping() error {
	return s.db.Exec("SELECT 1").Error
}

// TableNames lists the base tables of the current schema
func (s *Session) TableNames() ([]string, error) {
	rows, err := s.db.Raw(tablesQuery).Rows()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Columns lists the columns of a table with their nullability
func (s *Session) Columns(table string) ([]store.Column, error) {
	if err := store.ValidIdentifier(table); err != nil {
		return nil, err
	}

	rows, err := s.db.Raw(columnsQuery, table).Rows()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var columns []store.Column
	for rows.Next() {
		var name, nullable string
		if err := rows.Scan(&name, &nullable); err != nil {
			return nil, err
		}
		columns = append(columns, store.Column{Name: name, Nullable: nullable == "YES"})
	}
	return columns, rows.Err()
}

// CountRows counts all rows of a table
func (s *Session) CountRows(table string) (int64, error) {
	if err := store.ValidIdentifier(table); err != nil {
		return 0, err
	}
	var count int64
	err := s.db.Table(table).Count(&count).Error
	return count, err
}

// SampleRows fetches up to limit rows and returns how many were returned
func (s *Session) SampleRows(table string, limit int) (int, error) {
	if err := store.ValidIdentifier(table); err != nil {
		return 0, err
	}

	rows, err := s.db.Table(table).Select("1").Limit(limit).Rows()
	if err != nil {
		return 0, err
	}
	defer func() { _ = rows.Close() }()

	n := 0
	for rows.Next() {
		n++
	}
	return n, rows.Err()
}

// CountBlank counts rows whose column is NULL or empty
func (s *Session) CountBlank(table, column string) (int64, error) {
	if err := store.ValidIdentifier(table); err != nil {
		return 0, err
	}
	if err := store.ValidIdentifier(column); err != nil {
		return 0, err
	}

	var count int64
	cond := fmt.Sprintf(`%q IS NULL OR %q = ?`, column, column)
	err := s.db.Table(table).Where(cond, "").Count(&count).Error
	return count, err
}

// Close returns the connection to the pool
func (s *Session) Close() error {
	return s.conn.Close()
}
