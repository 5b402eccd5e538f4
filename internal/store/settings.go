package store

import (
	"database/sql"
	"errors"
	"time"
)

// Setting returns the stored value, or "" when key is unset
func (db *DB) Setting(key string) (string, error) {
	var v string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

// SetSetting inserts or replaces key
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// RecordHost remembers a host address that was joined successfully
func (db *DB) RecordHost(addr string) error {
	_, err := db.conn.Exec(`
		INSERT INTO host_history (addr, uses, last_used) VALUES (?, 1, ?)
		ON CONFLICT(addr) DO UPDATE SET uses = uses + 1, last_used = excluded.last_used`,
		addr, time.Now().UTC(),
	)
	return err
}

// RecentHosts lists joined addresses, most recent first
func (db *DB) RecentHosts(limit int) ([]string, error) {
	rows, err := db.conn.Query(
		"SELECT addr FROM host_history ORDER BY last_used DESC, uses DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// LastHost is the most recently joined address, or ""
func (db *DB) LastHost() (string, error) {
	hosts, err := db.RecentHosts(1)
	if err != nil || len(hosts) == 0 {
		return "", err
	}
	return hosts[0], nil
}
