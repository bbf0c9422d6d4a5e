// Package database provides database helper functions
package database

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/logging"
)

// Status reports connection health for the status endpoint.
func (db *DB) Status(ctx context.Context) map[string]any {
	var result int
	err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result)

	stats := db.Stats()
	status := map[string]any{
		"connection": db.ConnectionInfo(),
		"healthy":    err == nil && result == 1,
		"open":       stats.OpenConnections,
		"inUse":      stats.InUse,
		"idle":       stats.Idle,
	}
	if err != nil {
		status["error"] = fmt.Sprintf("connection test query failed: %v", err)
	}
	return status
}

// ObserveQuery logs query as slow when it ran past the threshold.
func ObserveQuery(logger *logging.ChanneledLogger, query string, start time.Time) {
	if duration := time.Since(start); duration > GetSlowQueryThreshold() {
		logger.LogSlowQuery(query, duration)
	}
}

var memoryNameSanitizer = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// NewMemory opens an in-memory SQLite database with the schema applied.
// Connections opened with the same name share one database.
func NewMemory(name string) (*DB, error) {
	name = memoryNameSanitizer.ReplaceAllString(name, "_")
	db, err := NewConnection(DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	creator := NewTableCreator()
	if err := creator.CreateSchema(db.DB); err != nil {
		db.Close()
		return nil, err
	}
	if err := creator.SeedSystemContext(db.DB); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
