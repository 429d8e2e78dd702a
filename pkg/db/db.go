package db

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNoDatabaseURL is returned when Config.URL is empty.
var ErrNoDatabaseURL = errors.New("DATABASE_URL environment variable is required")

// Config holds database connection configuration
type Config struct {
	// URL is the database connection URL
	URL string
	// LogLevel enables SQL logging when set to "debug"
	LogLevel string
}

// Connect prepares a database connection pool. No connection is opened
// here: the first round trip happens when a caller acquires a connection
// with its own context, so a server that never answers cannot block Connect.
func Connect(cfg Config) (*gorm.DB, error) {
	dbURL := cfg.URL
	if dbURL == "" {
		return nil, ErrNoDatabaseURL
	}

	db, err := gorm.Open(
		postgres.New(postgres.Config{
			DSN:                  dbURL,
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		}),
		&gorm.Config{
			Logger:               logger.Default.LogMode(LogMode(cfg.LogLevel)),
			DisableAutomaticPing: true,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// LogMode maps an hmsctl log level to a gorm log mode. SQL is only logged
// at debug level.
func LogMode(level string) logger.LogLevel {
	if level == "debug" {
		return logger.Info
	}
	return logger.Silent
}
