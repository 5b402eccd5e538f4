package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database: settings, custom levels, host history
// and match records
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the database at path
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer at a time; the journal and the menus share it
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS levels (
		number INTEGER PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		grid BLOB NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS host_history (
		addr TEXT PRIMARY KEY,
		uses INTEGER NOT NULL DEFAULT 1,
		last_used DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS matches (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		seed INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		ended_at DATETIME,
		final_level INTEGER NOT NULL DEFAULT 0,
		outcome TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS match_players (
		match_id TEXT NOT NULL REFERENCES matches(id),
		slot INTEGER NOT NULL,
		nickname TEXT NOT NULL DEFAULT '',
		score INTEGER NOT NULL DEFAULT 0,
		lives INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (match_id, slot)
	);

	CREATE TABLE IF NOT EXISTS match_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		match_id TEXT NOT NULL REFERENCES matches(id),
		tick INTEGER NOT NULL,
		level INTEGER NOT NULL,
		cue TEXT NOT NULL,
		slot INTEGER NOT NULL DEFAULT 0,
		archetype INTEGER NOT NULL DEFAULT 0,
		power_up INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_match_events_match ON match_events(match_id);
	CREATE INDEX IF NOT EXISTS idx_host_history_used ON host_history(last_used);
	`
	_, err := db.conn.Exec(schema)
	return err
}
