package game

import "math/rand"

// shapeFunc stamps one structure anchored at (row, col)
type shapeFunc func(g *levelGen, row, col int, k TileKind)

// levelGen carries the seeded source through one generation pass
type levelGen struct {
	t      *Terrain
	rng    *rand.Rand
	mirror bool
}

var shapes = []shapeFunc{
	(*levelGen).hollowRect,
	(*levelGen).cross,
	(*levelGen).diamond,
	(*levelGen).lShape,
	(*levelGen).tShape,
	(*levelGen).uShape,
	(*levelGen).zigzag,
	(*levelGen).spiral,
	(*levelGen).corridor,
	(*levelGen).block,
}

// Generate fills the interior from seed. Identical seeds give identical
// grids. Spawn zones, player starts and the base surroundings stay clear,
// and the base ring is always brick.
func (t *Terrain) Generate(seed int64) {
	t.Clear()
	t.seed = seed
	g := &levelGen{t: t, rng: rand.New(rand.NewSource(seed))}

	n := 8 + g.rng.Intn(7)
	for i := 0; i < n; i++ {
		shape := shapes[g.rng.Intn(len(shapes))]
		kind := TileBrick
		if g.rng.Float64() < 0.2 {
			kind = TileSteel
		}
		row := 2 + g.rng.Intn(GridRows-6)
		col := 1 + g.rng.Intn(GridCols/2-2)
		shape(g, row, col, kind)
		// mirror across the vertical axis most of the time
		if g.rng.Float64() < 0.7 {
			g.mirror = true
			shape(g, row, col, kind)
			g.mirror = false
		}
	}

	g.patch(TileWater, 1+g.rng.Intn(2), 2, 4)
	g.patch(TileTrees, 2+g.rng.Intn(3), 2, 5)
	g.patch(TileIce, g.rng.Intn(2), 3, 5)
	g.scatter(TileBrick, 10+g.rng.Intn(15))
	g.scatter(TileSteel, g.rng.Intn(4))

	t.PaintBaseRing(TileBrick)
}

// PaintBaseRing sets every ring cell to k
func (t *Terrain) PaintBaseRing(k TileKind) {
	for _, c := range BaseRing {
		t.tiles[c.Row][c.Col] = k
		t.extinguish(c)
	}
}

// eligible reports whether generation may write to the cell
func eligible(row, col int) bool {
	if !InBounds(row, col) || IsBorder(row, col) {
		return false
	}
	return !inSpawnZone(row, col) && !nearBase(row, col)
}

func (g *levelGen) put(row, col int, k TileKind) {
	if g.mirror {
		col = GridCols - 1 - col
	}
	if eligible(row, col) {
		g.t.tiles[row][col] = k
	}
}

func (g *levelGen) hollowRect(row, col int, k TileKind) {
	w, h := 3+g.rng.Intn(3), 3+g.rng.Intn(2)
	for c := col; c < col+w; c++ {
		g.put(row, c, k)
		g.put(row+h-1, c, k)
	}
	for r := row; r < row+h; r++ {
		g.put(r, col, k)
		g.put(r, col+w-1, k)
	}
}

func (g *levelGen) cross(row, col int, k TileKind) {
	arm := 1 + g.rng.Intn(2)
	for d := -arm; d <= arm; d++ {
		g.put(row+d, col, k)
		g.put(row, col+d, k)
	}
}

func (g *levelGen) diamond(row, col int, k TileKind) {
	r := 2
	for d := 0; d <= r; d++ {
		g.put(row-r+d, col+d, k)
		g.put(row-r+d, col-d, k)
		g.put(row+r-d, col+d, k)
		g.put(row+r-d, col-d, k)
	}
}

func (g *levelGen) lShape(row, col int, k TileKind) {
	n := 3 + g.rng.Intn(3)
	for i := 0; i < n; i++ {
		g.put(row+i, col, k)
		g.put(row+n-1, col+i, k)
	}
}

func (g *levelGen) tShape(row, col int, k TileKind) {
	n := 3 + g.rng.Intn(2)
	for i := -n / 2; i <= n/2; i++ {
		g.put(row, col+i, k)
	}
	for i := 1; i < n; i++ {
		g.put(row+i, col, k)
	}
}

func (g *levelGen) uShape(row, col int, k TileKind) {
	w, h := 3+g.rng.Intn(2), 2+g.rng.Intn(2)
	for r := row; r < row+h; r++ {
		g.put(r, col, k)
		g.put(r, col+w-1, k)
	}
	for c := col; c < col+w; c++ {
		g.put(row+h-1, c, k)
	}
}

func (g *levelGen) zigzag(row, col int, k TileKind) {
	n := 4 + g.rng.Intn(3)
	for i := 0; i < n; i++ {
		g.put(row+i%2, col+i, k)
	}
}

func (g *levelGen) spiral(row, col int, k TileKind) {
	r, c := row, col
	step := 1
	dir := 0
	for placed := 0; placed < 12; {
		for i := 0; i < step && placed < 12; i++ {
			g.put(r, c, k)
			dx, dy := allDirections[dir].Delta()
			r += int(dy)
			c += int(dx)
			placed++
		}
		dir = (dir + 1) % 4
		if dir%2 == 0 {
			step++
		}
	}
}

func (g *levelGen) corridor(row, col int, k TileKind) {
	n := 4 + g.rng.Intn(4)
	vertical := g.rng.Intn(2) == 0
	for i := 0; i < n; i++ {
		if vertical {
			g.put(row+i, col, k)
			g.put(row+i, col+2, k)
		} else {
			g.put(row, col+i, k)
			g.put(row+2, col+i, k)
		}
	}
}

func (g *levelGen) block(row, col int, k TileKind) {
	w, h := 1+g.rng.Intn(2), 1+g.rng.Intn(3)
	for r := row; r < row+h; r++ {
		for c := col; c < col+w; c++ {
			g.put(r, c, k)
		}
	}
}

// patch drops count blobs of kind with a random size in [minSize, maxSize]
func (g *levelGen) patch(k TileKind, count, minSize, maxSize int) {
	for i := 0; i < count; i++ {
		row := 2 + g.rng.Intn(GridRows-6)
		col := 1 + g.rng.Intn(GridCols-2)
		w := minSize + g.rng.Intn(maxSize-minSize+1)
		h := minSize + g.rng.Intn(maxSize-minSize+1)
		for r := row; r < row+h; r++ {
			for c := col; c < col+w; c++ {
				g.put(r, c, k)
			}
		}
	}
}

func (g *levelGen) scatter(k TileKind, count int) {
	for i := 0; i < count; i++ {
		g.put(1+g.rng.Intn(GridRows-2), 1+g.rng.Intn(GridCols-2), k)
	}
}
