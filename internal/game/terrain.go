package game

import "math"

// TileKind is the terrain type of one grid cell. Values are wire-stable.
type TileKind uint8

const (
	TileEmpty TileKind = 0
	TileBrick TileKind = 1
	TileSteel TileKind = 2
	TileWater TileKind = 3
	TileTrees TileKind = 4
	TileIce   TileKind = 5

	tileKindCount = 6
)

// Valid reports whether k is a known tile kind
func (k TileKind) Valid() bool {
	return k < tileKindCount
}

func (k TileKind) String() string {
	switch k {
	case TileEmpty:
		return "empty"
	case TileBrick:
		return "brick"
	case TileSteel:
		return "steel"
	case TileWater:
		return "water"
	case TileTrees:
		return "trees"
	case TileIce:
		return "ice"
	}
	return "unknown"
}

// Grid geometry, border included
const (
	TileSize  = 32.0
	GridCols  = 26
	GridRows  = 20
	MapWidth  = TileSize * GridCols
	MapHeight = TileSize * GridRows

	BurnTicks         = 30
	ProtectFlashes    = 6
	ProtectFlashTicks = 30
)

// Cell addresses one grid tile
type Cell struct {
	Row, Col int
}

// Rect returns the pixel box of the cell
func (c Cell) Rect() Rect {
	return Rect{X: float64(c.Col) * TileSize, Y: float64(c.Row) * TileSize, W: TileSize, H: TileSize}
}

// BurningTile is a tree tile counting down to removal
type BurningTile struct {
	Cell
	Remaining int
}

// Terrain is the tile grid plus the burning-tree list
type Terrain struct {
	tiles   [GridRows][GridCols]TileKind
	burning []BurningTile
	seed    int64
}

// NewTerrain returns an empty field enclosed by a steel border
func NewTerrain() *Terrain {
	t := &Terrain{}
	t.paintBorder()
	return t
}

func (t *Terrain) paintBorder() {
	for c := 0; c < GridCols; c++ {
		t.tiles[0][c] = TileSteel
		t.tiles[GridRows-1][c] = TileSteel
	}
	for r := 0; r < GridRows; r++ {
		t.tiles[r][0] = TileSteel
		t.tiles[r][GridCols-1] = TileSteel
	}
}

// Seed returns the seed the current layout was generated from
func (t *Terrain) Seed() int64 { return t.seed }

// InBounds reports whether the cell lies on the grid
func InBounds(row, col int) bool {
	return row >= 0 && row < GridRows && col >= 0 && col < GridCols
}

// IsBorder reports whether the cell is part of the outer ring
func IsBorder(row, col int) bool {
	return row == 0 || row == GridRows-1 || col == 0 || col == GridCols-1
}

// At returns the tile at row/col. Off-grid reads as steel.
func (t *Terrain) At(row, col int) TileKind {
	if !InBounds(row, col) {
		return TileSteel
	}
	return t.tiles[row][col]
}

// Set writes a tile; off-grid writes are ignored
func (t *Terrain) Set(row, col int, k TileKind) bool {
	if !InBounds(row, col) || !k.Valid() {
		return false
	}
	t.tiles[row][col] = k
	if k != TileTrees {
		t.extinguish(Cell{row, col})
	}
	return true
}

// CellAt returns the cell containing the pixel point
func CellAt(x, y float64) Cell {
	return Cell{Row: int(math.Floor(y / TileSize)), Col: int(math.Floor(x / TileSize))}
}

// CellsIn returns the on-grid cells a rect overlaps
func CellsIn(r Rect) []Cell {
	c0 := clampInt(int(math.Floor(r.X/TileSize)), 0, GridCols-1)
	r0 := clampInt(int(math.Floor(r.Y/TileSize)), 0, GridRows-1)
	// subtract a hair so a rect ending exactly on a boundary stays in one cell
	c1 := clampInt(int(math.Floor((r.X+r.W-0.001)/TileSize)), 0, GridCols-1)
	r1 := clampInt(int(math.Floor((r.Y+r.H-0.001)/TileSize)), 0, GridRows-1)
	cells := make([]Cell, 0, (r1-r0+1)*(c1-c0+1))
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			cells = append(cells, Cell{row, col})
		}
	}
	return cells
}

// Clear resets every cell to empty and repaints the border
func (t *Terrain) Clear() {
	t.tiles = [GridRows][GridCols]TileKind{}
	t.burning = nil
	t.paintBorder()
}

// Grid exports the tiles row-major
func (t *Terrain) Grid() [][]TileKind {
	out := make([][]TileKind, GridRows)
	for r := range out {
		out[r] = make([]TileKind, GridCols)
		copy(out[r], t.tiles[r][:])
	}
	return out
}

// Import replaces the grid. Returns false without changes if the
// dimensions or any tile kind are invalid.
func (t *Terrain) Import(grid [][]TileKind) bool {
	if len(grid) != GridRows {
		return false
	}
	for _, row := range grid {
		if len(row) != GridCols {
			return false
		}
		for _, k := range row {
			if !k.Valid() {
				return false
			}
		}
	}
	for r := range grid {
		copy(t.tiles[r][:], grid[r])
	}
	t.burning = t.burning[:0]
	return true
}

// Burning returns a copy of the burning list
func (t *Terrain) Burning() []BurningTile {
	out := make([]BurningTile, len(t.burning))
	copy(out, t.burning)
	return out
}

// SetBurning replaces the burning list; entries not on trees are dropped
func (t *Terrain) SetBurning(list []BurningTile) {
	t.burning = t.burning[:0]
	for _, b := range list {
		if t.At(b.Row, b.Col) == TileTrees && b.Remaining > 0 {
			t.burning = append(t.burning, b)
		}
	}
}

// IsBurning reports whether the cell is on the burning list
func (t *Terrain) IsBurning(c Cell) bool {
	for _, b := range t.burning {
		if b.Cell == c {
			return true
		}
	}
	return false
}

// Ignite starts a tree burning. Already-burning or non-tree cells are ignored.
func (t *Terrain) Ignite(c Cell) bool {
	if t.At(c.Row, c.Col) != TileTrees || t.IsBurning(c) {
		return false
	}
	t.burning = append(t.burning, BurningTile{Cell: c, Remaining: BurnTicks})
	return true
}

func (t *Terrain) extinguish(c Cell) {
	for i, b := range t.burning {
		if b.Cell == c {
			t.burning = append(t.burning[:i], t.burning[i+1:]...)
			return
		}
	}
}

// AdvanceBurning counts down burning trees and clears the finished ones
func (t *Terrain) AdvanceBurning() {
	kept := t.burning[:0]
	for _, b := range t.burning {
		b.Remaining--
		if b.Remaining <= 0 {
			t.tiles[b.Row][b.Col] = TileEmpty
			continue
		}
		kept = append(kept, b)
	}
	t.burning = kept
}

// TileStrike describes what a bullet did to one cell
type TileStrike int

const (
	StrikeNone TileStrike = iota
	StrikeBrick
	StrikeSteel
	StrikeSteelBroken
	StrikeIgnite
)

// Strike applies a bullet hit to a cell. stop reports whether the bullet
// ends there.
func (t *Terrain) Strike(c Cell, power int, burnsTrees bool) (stop bool, what TileStrike) {
	switch t.At(c.Row, c.Col) {
	case TileBrick:
		t.tiles[c.Row][c.Col] = TileEmpty
		return true, StrikeBrick
	case TileSteel:
		if !InBounds(c.Row, c.Col) {
			return true, StrikeSteel
		}
		if power >= 2 {
			t.tiles[c.Row][c.Col] = TileEmpty
			return true, StrikeSteelBroken
		}
		return true, StrikeSteel
	case TileTrees:
		if !burnsTrees {
			return false, StrikeNone
		}
		if t.Ignite(c) {
			return true, StrikeIgnite
		}
		// a tree already alight lets fire pass
		return false, StrikeNone
	}
	return false, StrikeNone
}
