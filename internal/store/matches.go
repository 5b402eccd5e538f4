package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Match outcomes
const (
	OutcomeGameOver = "game_over"
	OutcomeQuit     = "quit"
)

// MatchPlayerRow is one participant's final line
type MatchPlayerRow struct {
	Slot     int
	Nickname string
	Score    int
	Lives    int
}

// MatchRow is a recorded match
type MatchRow struct {
	ID         string
	Mode       string
	Seed       int64
	StartedAt  time.Time
	FinalLevel int
	Outcome    string
	Players    []MatchPlayerRow
}

// BeginMatch records a new match and returns its id
func (db *DB) BeginMatch(mode string, seed int64) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(
		"INSERT INTO matches (id, mode, seed, started_at) VALUES (?, ?, ?, ?)",
		id, mode, seed, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("begin match: %w", err)
	}
	return id, nil
}

// EndMatch stores the outcome and every player's final line in one
// transaction
func (db *DB) EndMatch(id string, finalLevel int, outcome string, players []MatchPlayerRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"UPDATE matches SET ended_at = ?, final_level = ?, outcome = ? WHERE id = ?",
		time.Now().UTC(), finalLevel, outcome, id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("end match: unknown id %s", id)
	}
	for _, p := range players {
		_, err := tx.Exec(`
			INSERT INTO match_players (match_id, slot, nickname, score, lives) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(match_id, slot) DO UPDATE SET nickname = excluded.nickname, score = excluded.score, lives = excluded.lives`,
			id, p.Slot, p.Nickname, p.Score, p.Lives,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RecentMatches returns finished matches, newest first
func (db *DB) RecentMatches(limit int) ([]MatchRow, error) {
	rows, err := db.conn.Query(`
		SELECT id, mode, seed, started_at, final_level, outcome FROM matches
		WHERE ended_at IS NOT NULL
		ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	var out []MatchRow
	for rows.Next() {
		var m MatchRow
		if err := rows.Scan(&m.ID, &m.Mode, &m.Seed, &m.StartedAt, &m.FinalLevel, &m.Outcome); err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		prows, err := db.conn.Query(
			"SELECT slot, nickname, score, lives FROM match_players WHERE match_id = ? ORDER BY slot", out[i].ID)
		if err != nil {
			return nil, err
		}
		for prows.Next() {
			var p MatchPlayerRow
			if err := prows.Scan(&p.Slot, &p.Nickname, &p.Score, &p.Lives); err != nil {
				prows.Close()
				return nil, err
			}
			out[i].Players = append(out[i].Players, p)
		}
		prows.Close()
	}
	return out, nil
}

// EventCount counts journaled events of a match, optionally for one cue
func (db *DB) EventCount(matchID, cue string) (int, error) {
	var n int
	var err error
	if cue == "" {
		err = db.conn.QueryRow("SELECT COUNT(*) FROM match_events WHERE match_id = ?", matchID).Scan(&n)
	} else {
		err = db.conn.QueryRow("SELECT COUNT(*) FROM match_events WHERE match_id = ? AND cue = ?", matchID, cue).Scan(&n)
	}
	return n, err
}
