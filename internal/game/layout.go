package game

// Fixed map landmarks
var (
	BaseCell = Cell{Row: GridRows - 2, Col: 12}

	// BaseRing is the brick enclosure around the base
	BaseRing = []Cell{
		{GridRows - 3, 11}, {GridRows - 3, 12}, {GridRows - 3, 13},
		{GridRows - 2, 11}, {GridRows - 2, 13},
	}

	// PlayerStarts is indexed by slot-1
	PlayerStarts = [MaxPlayers]Cell{
		{GridRows - 2, 8},
		{GridRows - 2, 16},
		{GridRows - 2, 4},
		{GridRows - 2, 20},
	}

	EnemySpawns = []Cell{
		{1, 1},
		{1, 12},
		{1, GridCols - 2},
	}
)

// tankOrigin returns the top-left pixel at which a tank sits centred in c
func tankOrigin(c Cell) (float64, float64) {
	off := (TileSize - TankSize) / 2
	return float64(c.Col)*TileSize + off, float64(c.Row)*TileSize + off
}

// nearBase reports whether the cell is within two tiles of the base
func nearBase(row, col int) bool {
	dr, dc := row-BaseCell.Row, col-BaseCell.Col
	return dr >= -2 && dr <= 2 && dc >= -2 && dc <= 2
}

// inSpawnZone reports whether the cell must stay clear for spawning tanks.
// Border cells never count; they stay steel.
func inSpawnZone(row, col int) bool {
	if IsBorder(row, col) {
		return false
	}
	for _, s := range EnemySpawns {
		if row >= s.Row && row <= s.Row+1 && col >= s.Col-1 && col <= s.Col+1 {
			return true
		}
	}
	for _, s := range PlayerStarts {
		if row >= s.Row-1 && row <= s.Row && col >= s.Col-1 && col <= s.Col+1 {
			return true
		}
	}
	return false
}
