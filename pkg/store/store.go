package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidIdentifier is returned for table or column names that cannot be
// safely placed in SQL.
var ErrInvalidIdentifier = errors.New("invalid identifier")

var identifierRgx = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Column describes a column of a table.
type Column struct {
	Name     string
	Nullable bool
}

// Session is a read-only view of the database bound to a single connection.
// It must be closed once the caller is done with it.
type Session interface {
	// Ping performs a trivial round trip query
	Ping() error

	// TableNames lists the base tables of the current schema
	TableNames() ([]string, error)

	// Columns lists the columns of a table; empty if the table does not exist
	Columns(table string) ([]Column, error)

	// CountRows counts all rows of a table
	CountRows(table string) (int64, error)

	// SampleRows fetches up to limit rows of a table and returns how many came back
	SampleRows(table string, limit int) (int, error)

	// CountBlank counts rows whose column is NULL or the empty string
	CountBlank(table, column string) (int64, error)

	// Close releases the underlying connection
	Close() error
}

// Store hands out sessions.
type Store interface {
	// Session acquires a dedicated connection bound to ctx
	Session(ctx context.Context) (Session, error)

	// Close closes the store and all idle connections
	Close() error
}

// ValidIdentifier checks that name is a plain SQL identifier.
func ValidIdentifier(name string) error {
	if !identifierRgx.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// Unavailable returns a Store whose sessions always fail with err. It stands
// in for a database that could not be opened so that checks still run and
// report the failure.
func Unavailable(err error) Store {
	return unavailable{err: err}
}

type unavailable struct {
	err error
}

func (u unavailable) Session(context.Context) (Session, error) {
	return nil, u.err
}

func (u unavailable) Close() error {
	return nil
}
