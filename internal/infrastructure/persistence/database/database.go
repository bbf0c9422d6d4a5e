// Package database provides the core functionality for creating and managing
// database connections in a clean, isolated manner.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/logging"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Supported drivers.
const (
	DriverSQLite = "sqlite3"
	DriverLibSQL = "libsql"
)

// DB represents a wrapper around the standard SQL database connection.
type DB struct {
	*sql.DB
	Driver string
}

// Options configures the pool of a new connection.
type Options struct {
	Driver             string
	DSN                string
	AuthToken          string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	SlowQueryThreshold time.Duration
}

var slowQueryThreshold = 50 * time.Millisecond

// GetSlowQueryThreshold returns the duration above which queries are logged as slow.
func GetSlowQueryThreshold() time.Duration {
	return slowQueryThreshold
}

// NewConnection establishes a new database connection for the specified driver.
func NewConnection(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{DB: db, Driver: driverName}, nil
}

// Open establishes a pooled connection with logging. Turso databases use the
// libsql driver with the auth token appended; everything else is a local
// SQLite file whose directory is created on demand.
func Open(opts Options, logger *logging.ChanneledLogger) (*DB, error) {
	start := time.Now()
	if opts.SlowQueryThreshold > 0 {
		slowQueryThreshold = opts.SlowQueryThreshold
	}

	dsn := opts.DSN
	switch opts.Driver {
	case DriverLibSQL:
		if opts.AuthToken != "" && !strings.Contains(dsn, "authToken=") {
			dsn = dsn + "?authToken=" + opts.AuthToken
		}
	case DriverSQLite:
		if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	logger.Database().Debug("Creating new database connection", "driverName", opts.Driver)

	db, err := NewConnection(opts.Driver, dsn)
	if err != nil {
		logger.Database().Error("Failed to open database connection", "error", err.Error(), "driverName", opts.Driver)
		return nil, fmt.Errorf("%s connection failed: %w", opts.Driver, err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}

	duration := time.Since(start)
	logger.Database().Info("Database connection established", "driverName", opts.Driver, "duration", duration)
	if duration > GetSlowQueryThreshold() {
		logger.LogSlowQuery("DATABASE_CONNECTION", duration)
	}

	return db, nil
}

// ConnectionInfo describes the connection for status output.
func (db *DB) ConnectionInfo() string {
	if db.Driver == DriverLibSQL {
		return "Turso (libsql)"
	}
	return "SQLite"
}
