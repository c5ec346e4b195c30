// Package storage keeps a diagnostic history of arm/paste cycles in SQLite.
// It is never read back into the engine.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type DB struct {
	conn *sql.DB
}

// Open opens the database under dataDir and initializes the schema
func Open(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	dbPath := filepath.Join(dataDir, "armpaste.db")

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cycles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,

		-- Unix milliseconds, 0 when the step never happened
		armed_at INTEGER NOT NULL,
		triggered_at INTEGER NOT NULL DEFAULT 0,
		ended_at INTEGER NOT NULL DEFAULT 0,

		-- completed, timeout, disarmed, rearmed; empty while running
		outcome TEXT NOT NULL DEFAULT '',

		image_count INTEGER NOT NULL,
		text_length INTEGER NOT NULL,
		timeout_ms INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cycles_armed_at ON cycles(armed_at);
	CREATE INDEX IF NOT EXISTS idx_cycles_outcome ON cycles(outcome);
	`

	_, err := db.conn.Exec(schema)
	return err
}
