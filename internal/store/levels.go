package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"tankbattle/internal/game"
)

// LevelInfo describes a stored layout
type LevelInfo struct {
	Number int
	Name   string
}

// SaveLevel stores grid as the layout for level number, replacing any
// previous one
func (db *DB) SaveLevel(number int, name string, grid [][]game.TileKind) error {
	if number < 1 {
		return fmt.Errorf("save level: bad number %d", number)
	}
	if err := checkGrid(grid); err != nil {
		return fmt.Errorf("save level %d: %w", number, err)
	}
	raw := make([][]uint8, len(grid))
	for r, row := range grid {
		raw[r] = make([]uint8, len(row))
		for c, k := range row {
			raw[r][c] = uint8(k)
		}
	}
	blob, err := msgpack.Marshal(raw)
	if err != nil {
		return err
	}
	_, err = db.conn.Exec(`
		INSERT INTO levels (number, name, grid, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(number) DO UPDATE SET name = excluded.name, grid = excluded.grid, updated_at = CURRENT_TIMESTAMP`,
		number, name, blob,
	)
	return err
}

// LoadLevel returns the stored layout for level number. ok is false when
// there is none, so the caller generates one instead.
func (db *DB) LoadLevel(number int) ([][]game.TileKind, bool, error) {
	var blob []byte
	err := db.conn.QueryRow("SELECT grid FROM levels WHERE number = ?", number).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var raw [][]uint8
	if err := msgpack.Unmarshal(blob, &raw); err != nil {
		return nil, false, fmt.Errorf("level %d: %w", number, err)
	}
	grid := make([][]game.TileKind, len(raw))
	for r, row := range raw {
		grid[r] = make([]game.TileKind, len(row))
		for c, k := range row {
			grid[r][c] = game.TileKind(k)
		}
	}
	if err := checkGrid(grid); err != nil {
		return nil, false, fmt.Errorf("level %d: %w", number, err)
	}
	return grid, true, nil
}

// Levels lists stored layouts by number
func (db *DB) Levels() ([]LevelInfo, error) {
	rows, err := db.conn.Query("SELECT number, name FROM levels ORDER BY number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LevelInfo
	for rows.Next() {
		var l LevelInfo
		if err := rows.Scan(&l.Number, &l.Name); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// DeleteLevel removes a stored layout; the level is generated again
func (db *DB) DeleteLevel(number int) error {
	_, err := db.conn.Exec("DELETE FROM levels WHERE number = ?", number)
	return err
}

func checkGrid(grid [][]game.TileKind) error {
	if len(grid) != game.GridRows {
		return fmt.Errorf("expected %d rows, got %d", game.GridRows, len(grid))
	}
	for r, row := range grid {
		if len(row) != game.GridCols {
			return fmt.Errorf("row %d: expected %d cols, got %d", r, game.GridCols, len(row))
		}
		for c, k := range row {
			if !k.Valid() {
				return fmt.Errorf("tile %d,%d: kind %d", r, c, k)
			}
		}
	}
	return nil
}
