package game

// blocksTank reports whether tile k stops tank t
func blocksTank(t *Tank, k TileKind) bool {
	switch k {
	case TileBrick, TileSteel:
		return true
	case TileWater:
		return !t.Swims()
	}
	return false
}

// crusherBlocked is the narrower rule for tanks that grind through brick
func crusherBlocked(t *Tank, k TileKind) bool {
	return k == TileSteel || (k == TileWater && !t.Swims())
}

// obstruction collects what a candidate box would run into. Cells and
// tanks the current box already overlaps are ignored so a tank can always
// back out of an overlap.
type obstruction struct {
	blocked bool
	crushed []*Tank
	base    bool
}

func (w *World) probe(t *Tank, cur, next Rect, crush bool) obstruction {
	var ob obstruction
	for _, c := range CellsIn(next) {
		if c.Rect().Overlaps(cur) {
			continue
		}
		k := w.Terrain.At(c.Row, c.Col)
		if (crush && crusherBlocked(t, k)) || (!crush && blocksTank(t, k)) {
			ob.blocked = true
			return ob
		}
	}
	for _, o := range w.tanks() {
		if o == t || !o.Solid() {
			continue
		}
		r := o.Rect()
		if !r.Overlaps(next) || r.Overlaps(cur) {
			continue
		}
		if !crush {
			ob.blocked = true
			return ob
		}
		ob.crushed = append(ob.crushed, o)
	}
	if w.Base.Alive && next.Overlaps(w.Base.Rect()) && !cur.Overlaps(w.Base.Rect()) {
		if !crush {
			ob.blocked = true
			return ob
		}
		ob.base = true
	}
	return ob
}

// TurnTank faces t toward dir. On a quarter turn the cross axis snaps to
// the nearest half tile when the snapped box is free.
func (w *World) TurnTank(t *Tank, dir Direction) {
	if !dir.Valid() || dir == t.Dir {
		return
	}
	quarter := dir.Horizontal() != t.Dir.Horizontal()
	t.Dir = dir
	if !quarter {
		return
	}
	cur := t.Rect()
	snapped := cur
	if dir.Horizontal() {
		snapped.Y = snapHalfTile(cur.Y+TankSize/2) - TankSize/2
	} else {
		snapped.X = snapHalfTile(cur.X+TankSize/2) - TankSize/2
	}
	if snapped == cur || snapped.X < 0 || snapped.Y < 0 ||
		snapped.X+snapped.W > MapWidth || snapped.Y+snapped.H > MapHeight {
		return
	}
	if w.probe(t, cur, snapped, false).blocked {
		return
	}
	t.X, t.Y = snapped.X, snapped.Y
}

// MoveTank turns t toward dir and advances it dist pixels. Returns false
// when the move is rejected; the tank then keeps its position.
func (w *World) MoveTank(t *Tank, dir Direction, dist float64) bool {
	if !t.Solid() || !dir.Valid() {
		return false
	}
	w.TurnTank(t, dir)
	if dist <= 0 {
		return false
	}
	cur := t.Rect()
	dx, dy := dir.Delta()
	next := cur
	next.X += dx * dist
	next.Y += dy * dist

	if next.X < 0 || next.Y < 0 || next.X+next.W > MapWidth || next.Y+next.H > MapHeight {
		return w.wrapTank(t, dir)
	}

	crush := t.def.Crusher
	ob := w.probe(t, cur, next, crush)
	if ob.blocked {
		return false
	}
	switch {
	case crush:
		w.erode(next, TileBrick, TileTrees)
	case t.Mods.Saw:
		w.erode(next, TileTrees)
	}
	for _, o := range ob.crushed {
		w.destroyTank(o, nil, false)
	}
	if ob.base {
		w.destroyBase()
	}
	t.X, t.Y = next.X, next.Y
	t.moved = true
	return true
}

// wrapTank carries t across the map edge through a destroyed border cell
// at its centre line. Only tanks and the base are checked on landing.
func (w *World) wrapTank(t *Tank, dir Direction) bool {
	cx, cy := t.Rect().Center()
	c := CellAt(cx, cy)
	x, y := t.X, t.Y
	var gate Cell
	switch dir {
	case DirLeft:
		gate, x = Cell{c.Row, 0}, MapWidth-TankSize
	case DirRight:
		gate, x = Cell{c.Row, GridCols - 1}, 0
	case DirUp:
		gate, y = Cell{0, c.Col}, MapHeight-TankSize
	case DirDown:
		gate, y = Cell{GridRows - 1, c.Col}, 0
	}
	if w.Terrain.At(gate.Row, gate.Col) != TileEmpty {
		return false
	}
	landing := Rect{X: x, Y: y, W: TankSize, H: TankSize}
	for _, o := range w.tanks() {
		if o != t && o.Solid() && o.Rect().Overlaps(landing) {
			return false
		}
	}
	if w.Base.Alive && landing.Overlaps(w.Base.Rect()) {
		return false
	}
	t.X, t.Y = x, y
	t.moved = true
	return true
}

// erode clears every cell of the listed kinds under r
func (w *World) erode(r Rect, kinds ...TileKind) {
	for _, c := range CellsIn(r) {
		if IsBorder(c.Row, c.Col) {
			continue
		}
		k := w.Terrain.At(c.Row, c.Col)
		for _, want := range kinds {
			if k == want {
				w.Terrain.Set(c.Row, c.Col, TileEmpty)
				break
			}
		}
	}
}
