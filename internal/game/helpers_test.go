package game

// newTestWorld returns a level with an open interior, the base ring in
// brick and no spawner, so nothing happens unless a test arranges it
func newTestWorld() *World {
	w := NewWorld(DefaultConfig(), 1)
	w.Terrain.Clear()
	w.Terrain.PaintBaseRing(TileBrick)
	w.Spawner = nil
	w.cfg.DropChance = 0
	return w
}

func addTestPlayer(w *World, slot int, at Cell) *Tank {
	p := w.AddPlayer(slot, "tester")
	p.X, p.Y = tankOrigin(at)
	p.Mods.ShieldTicks = 0
	return p
}

func addTestEnemy(w *World, a Archetype, at Cell) *Tank {
	e := NewEnemyTank(w.newTankID(), a, at, false)
	w.Enemies = append(w.Enemies, e)
	return e
}

func testBullet(w *World, owner, shooter int, x, y float64, dir Direction) *Bullet {
	b := &Bullet{
		ID:        w.newID(),
		ShooterID: shooter,
		Owner:     owner,
		X:         x,
		Y:         y,
		Dir:       dir,
		Speed:     5,
		Size:      8,
		Power:     1,
		Alive:     true,
	}
	w.Bullets = append(w.Bullets, b)
	return b
}
