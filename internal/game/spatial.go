package game

const (
	SpatialCellSize = 64.0 // two tiles, comfortably larger than a tank
	SpatialCols     = int(MapWidth/SpatialCellSize) + 1
	SpatialRows     = int(MapHeight/SpatialCellSize) + 1
)

// EntityRef identifies an entity in the grid
type EntityRef struct {
	Kind byte // 'b'=bullet, 't'=tank
	Idx  int  // index into the corresponding flat list
}

// SpatialGrid is a fixed-size grid for broad-phase collision queries
type SpatialGrid struct {
	cells [SpatialCols * SpatialRows][]EntityRef
}

// Clear resets all cells (keeps allocated capacity)
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func cellSpan(r Rect) (minCX, minCY, maxCX, maxCY int) {
	minCX = clampInt(int(r.X/SpatialCellSize), 0, SpatialCols-1)
	minCY = clampInt(int(r.Y/SpatialCellSize), 0, SpatialRows-1)
	maxCX = clampInt(int((r.X+r.W)/SpatialCellSize), 0, SpatialCols-1)
	maxCY = clampInt(int((r.Y+r.H)/SpatialCellSize), 0, SpatialRows-1)
	return
}

// Insert adds an entity reference to all cells its box overlaps
func (g *SpatialGrid) Insert(r Rect, ref EntityRef) {
	minCX, minCY, maxCX, maxCY := cellSpan(r)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			idx := cy*SpatialCols + cx
			g.cells[idx] = append(g.cells[idx], ref)
		}
	}
}

// QueryBuf appends refs from every cell overlapping r to buf. A ref that
// spans several cells can appear more than once.
func (g *SpatialGrid) QueryBuf(r Rect, buf []EntityRef) []EntityRef {
	minCX, minCY, maxCX, maxCY := cellSpan(r)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			buf = append(buf, g.cells[cy*SpatialCols+cx]...)
		}
	}
	return buf
}
