package database

import (
	"database/sql"
	"fmt"
)

// TableCreator handles the creation of the block's database schema.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS contexts (id INTEGER PRIMARY KEY, contextlevel INTEGER NOT NULL, instanceid INTEGER NOT NULL, parent_id INTEGER REFERENCES contexts(id), UNIQUE(contextlevel, instanceid))`,
	`CREATE TABLE IF NOT EXISTS users (id INTEGER PRIMARY KEY, username TEXT NOT NULL UNIQUE, firstname TEXT NOT NULL DEFAULT '', lastname TEXT NOT NULL DEFAULT '', deleted BOOLEAN NOT NULL DEFAULT 0)`,
	`CREATE TABLE IF NOT EXISTS capability_grants (context_id INTEGER NOT NULL REFERENCES contexts(id), user_id INTEGER NOT NULL REFERENCES users(id), capability TEXT NOT NULL, permission INTEGER NOT NULL, PRIMARY KEY(context_id, user_id, capability))`,
	`CREATE TABLE IF NOT EXISTS user_preferences (user_id INTEGER NOT NULL REFERENCES users(id), name TEXT NOT NULL, value TEXT NOT NULL, PRIMARY KEY(user_id, name))`,
	`CREATE TABLE IF NOT EXISTS block_instances (id TEXT PRIMARY KEY, parent_context_id INTEGER NOT NULL REFERENCES contexts(id), graphtype TEXT NOT NULL DEFAULT '', created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, changed TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_contexts_parent_id ON contexts(parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_capability_grants_user ON capability_grants(user_id, capability)`,
	`CREATE INDEX IF NOT EXISTS idx_block_instances_parent ON block_instances(parent_context_id)`,
}

// CreateSchema executes all necessary queries to build the tables and indexes.
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

// SeedSystemContext idempotently creates the root system context (id 1).
func (tc *TableCreator) SeedSystemContext(db *sql.DB) error {
	_, err := db.Exec(`INSERT OR IGNORE INTO contexts (id, contextlevel, instanceid, parent_id) VALUES (1, 10, 0, NULL)`)
	if err != nil {
		return fmt.Errorf("failed to insert system context: %w", err)
	}
	return nil
}
