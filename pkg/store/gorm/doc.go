// Package gorm provides the GORM-based implementation of the store
// interfaces defined in the parent store package.
//
// Every Session is pinned to one *sql.Conn taken from the pool, so a check's
// queries share a connection and Close hands it back.
package gorm
