package game

// fire launches a bullet from t if its cooldown and in-flight cap allow
func (w *World) fire(t *Tank) bool {
	if !t.Alive || t.ShootCD > 0 {
		return false
	}
	inFlight := 0
	for _, b := range w.Bullets {
		if b.Alive && b.ShooterID == t.ID {
			inFlight++
		}
	}
	if inFlight >= t.MaxBullets() {
		return false
	}
	b := NewBullet(w.newID(), t)
	w.Bullets = append(w.Bullets, b)
	if t.IsPlayer() {
		cd := w.cfg.PlayerShootTicks - MachinegunCDCut*t.Mods.MachinegunCount
		t.ShootCD = max(1, int(float64(cd)*w.cfg.PlayerShootMultiplier))
	}
	w.emit(Event{Cue: CueShot, Slot: t.Slot, X: b.X, Y: b.Y})
	return true
}

// updateBullets runs the three bullet passes: movement against terrain
// and map edges, mutual annihilation of any overlapping pair, then tank
// and base hits. Bullets
// stopped in an earlier pass take no part in later ones.
func (w *World) updateBullets() {
	for _, b := range w.Bullets {
		if !b.Alive {
			continue
		}
		b.Update()
		w.resolveTerrain(b)
	}

	w.grid.Clear()
	for i, b := range w.Bullets {
		if b.Alive {
			w.grid.Insert(b.Rect(), EntityRef{Kind: 'b', Idx: i})
		}
	}
	for i, b := range w.Bullets {
		if !b.Alive {
			continue
		}
		w.queryBuf = w.grid.QueryBuf(b.Rect(), w.queryBuf[:0])
		for _, ref := range w.queryBuf {
			if ref.Kind != 'b' || ref.Idx <= i {
				continue
			}
			o := w.Bullets[ref.Idx]
			if o.Alive && o.Rect().Overlaps(b.Rect()) {
				b.Alive = false
				o.Alive = false
				break
			}
		}
	}

	tanks := w.tanks()
	w.grid.Clear()
	for i, t := range tanks {
		if t.Solid() {
			w.grid.Insert(t.Rect(), EntityRef{Kind: 't', Idx: i})
		}
	}
	for _, b := range w.Bullets {
		if b.Alive {
			w.resolveHits(b, tanks)
		}
	}

	kept := w.Bullets[:0]
	for _, b := range w.Bullets {
		if b.Alive {
			kept = append(kept, b)
		}
	}
	for i := len(kept); i < len(w.Bullets); i++ {
		w.Bullets[i] = nil
	}
	w.Bullets = kept
}

// resolveTerrain applies tile strikes under the bullet and handles the
// map edge
func (w *World) resolveTerrain(b *Bullet) {
	r := b.Rect()
	if r.X < 0 || r.Y < 0 || r.X+r.W > MapWidth || r.Y+r.H > MapHeight {
		w.wrapBullet(b)
		return
	}
	for _, c := range CellsIn(r) {
		stop, what := w.Terrain.Strike(c, b.Power, b.BurnsTrees)
		switch what {
		case StrikeBrick, StrikeSteelBroken:
			w.emit(Event{Cue: CueBrickHit, Slot: b.Owner, X: b.X, Y: b.Y})
		case StrikeSteel:
			w.emit(Event{Cue: CueSteelHit, Slot: b.Owner, X: b.X, Y: b.Y})
		case StrikeIgnite:
			w.emit(Event{Cue: CueTreeIgnite, Slot: b.Owner, X: b.X, Y: b.Y})
		}
		if stop {
			b.Alive = false
		}
	}
}

// wrapBullet moves a bullet leaving the map to the opposite edge when the
// border cell there is open. Otherwise the bullet ends.
func (w *World) wrapBullet(b *Bullet) {
	if !w.cfg.BulletWrap {
		b.Alive = false
		return
	}
	c := CellAt(b.Rect().Center())
	row := clampInt(c.Row, 0, GridRows-1)
	col := clampInt(c.Col, 0, GridCols-1)
	var exit Cell
	x, y := b.X, b.Y
	switch b.Dir {
	case DirLeft:
		exit, x = Cell{row, GridCols - 1}, MapWidth-b.Size
	case DirRight:
		exit, x = Cell{row, 0}, 0
	case DirUp:
		exit, y = Cell{GridRows - 1, col}, MapHeight-b.Size
	case DirDown:
		exit, y = Cell{0, col}, 0
	}
	if w.Terrain.At(exit.Row, exit.Col) != TileEmpty {
		b.Alive = false
		return
	}
	b.X, b.Y = x, y
}

// resolveHits checks b against tanks, then against the base
func (w *World) resolveHits(b *Bullet, tanks []*Tank) {
	r := b.Rect()
	w.queryBuf = w.grid.QueryBuf(r, w.queryBuf[:0])
	for _, ref := range w.queryBuf {
		t := tanks[ref.Idx]
		if !t.Solid() || t.ID == b.ShooterID || !t.Rect().Overlaps(r) {
			continue
		}
		if b.FromEnemy() && !t.IsPlayer() {
			continue
		}
		b.Alive = false
		if !b.FromEnemy() && t.IsPlayer() {
			// friendly fire stuns instead of damaging
			if t.Mods.ShieldTicks == 0 && !t.Paused {
				t.StunTicks = w.cfg.FriendlyStun
			}
			return
		}
		res := t.TakeHit(1)
		if res.Drop {
			w.dropPowerUp()
		}
		if res.Killed {
			w.destroyTank(t, w.tankByID(b.ShooterID), res.Drop)
		}
		return
	}
	if w.Base.Alive && r.Overlaps(w.Base.Rect()) {
		b.Alive = false
		w.destroyBase()
	}
}

// destroyTank finishes off t and settles the aftermath: a player with
// spare lives respawns at once, an enemy credits its killer and may drop
// a power-up unless the killing hit already dropped one. Shields are not
// consulted.
func (w *World) destroyTank(t *Tank, by *Tank, dropped bool) {
	t.Alive = false
	t.Health = 0
	t.slideLeft = 0
	w.emit(Event{Cue: CueExplosion, Slot: t.Slot, Archetype: t.Archetype, X: t.X, Y: t.Y})
	if t.IsPlayer() {
		if t.Lives > 0 {
			t.Lives--
			t.Respawn(w.cfg.RespawnShield)
			w.emit(Event{Cue: CuePlayerRespawn, Slot: t.Slot})
		}
		return
	}
	if by != nil && by.IsPlayer() {
		by.Kills++
		by.Score += t.def.Score
	}
	if !dropped && w.rng.Float64() < w.cfg.DropChance {
		w.dropPowerUp()
	}
}

func (w *World) destroyBase() {
	if w.Base.Destroy() {
		w.emit(Event{Cue: CueBaseDestroyed})
	}
}

// requestLife revives a dead player with no lives by taking one from the
// teammate holding the most
func (w *World) requestLife(t *Tank) bool {
	if t.Alive || t.Lives > 0 {
		return false
	}
	var donor *Tank
	for _, p := range w.Players {
		if p == nil || p == t || !p.Active || p.Lives == 0 {
			continue
		}
		if donor == nil || p.Lives > donor.Lives {
			donor = p
		}
	}
	if donor == nil {
		return false
	}
	donor.Lives--
	t.Respawn(w.cfg.RespawnShield)
	w.emit(Event{Cue: CueLifeUp, Slot: t.Slot})
	return true
}

// grenadeEnemies destroys every enemy on the field; the boss only takes
// GrenadeBossDmg
func (w *World) grenadeEnemies(picker *Tank) {
	for _, e := range w.Enemies {
		if !e.Alive {
			continue
		}
		dmg := e.Health
		if e.def.Crusher {
			dmg = w.cfg.GrenadeBossDmg
		}
		if e.TakeDamage(dmg) {
			w.destroyTank(e, picker, false)
		}
	}
}

// grenadePlayers hits every player once; shields still hold
func (w *World) grenadePlayers(_ *Tank) {
	for _, p := range w.Players {
		if p == nil || !p.Solid() {
			continue
		}
		if res := p.TakeHit(1); res.Killed {
			w.destroyTank(p, nil, false)
		}
	}
}

// dropPowerUp places a random power-up on a free cell. The oldest one is
// removed when the field is full.
func (w *World) dropPowerUp() *PowerUp {
	const attempts = 40
	for i := 0; i < attempts; i++ {
		c := Cell{Row: 1 + w.rng.Intn(GridRows-2), Col: 1 + w.rng.Intn(GridCols-2)}
		if w.Terrain.At(c.Row, c.Col) != TileEmpty || c == BaseCell {
			continue
		}
		kind := PowerUpKind(1 + w.rng.Intn(powerKindCount))
		p := NewPowerUp(w.newID(), kind, c, w.cfg.PowerUpTicks)
		if w.occupied(p.Rect()) {
			continue
		}
		w.expireOldestPowerUp()
		w.PowerUps = append(w.PowerUps, p)
		w.emit(Event{Cue: CuePowerUpAppear, PowerUp: kind, X: p.X, Y: p.Y})
		return p
	}
	return nil
}

// expireOldestPowerUp makes room for one more power-up. Dead entries are
// compacted by updatePowerUps.
func (w *World) expireOldestPowerUp() {
	alive := 0
	for _, p := range w.PowerUps {
		if p.Alive {
			alive++
		}
	}
	if alive < w.cfg.MaxPowerUps {
		return
	}
	for _, p := range w.PowerUps {
		if p.Alive {
			p.Alive = false
			return
		}
	}
}
