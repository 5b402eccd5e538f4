package game

// Phase represents the lifecycle of a match
type Phase int

const (
	PhasePlaying  Phase = 0
	PhaseVictory  Phase = 1
	PhaseGameOver Phase = 2
)

func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhaseVictory:
		return "victory"
	case PhaseGameOver:
		return "game_over"
	}
	return "unknown"
}

// startLevel lays out terrain and resets per-level state. Players keep
// score, lives and upgrades.
func (w *World) startLevel(level int, seed int64) {
	w.Level = level
	w.loadLayout(level, seed)
	w.Base = newBase()
	w.Enemies = nil
	w.Bullets = nil
	w.PowerUps = nil
	w.EnemyFreeze = 0
	w.PlayerFreeze = 0
	w.Spawner = NewSpawner(w.cfg, level, w.rng)
	for _, p := range w.Players {
		if p == nil {
			continue
		}
		p.Kills = 0
		p.Paused = false
		if p.Active && p.Alive {
			p.Respawn(w.cfg.RespawnShield)
		}
	}
	w.Phase = PhasePlaying
	w.emit(Event{Cue: CueLevelStart, Level: level})
}

// loadLayout takes a stored layout for level when one exists, otherwise
// generates from seed
func (w *World) loadLayout(level int, seed int64) {
	if w.levels != nil {
		grid, ok, err := w.levels.LoadLevel(level)
		if err == nil && ok && w.Terrain.Import(grid) {
			w.Terrain.seed = seed
			w.Terrain.PaintBaseRing(TileBrick)
			return
		}
	}
	w.Terrain.Generate(seed)
}

// Advance moves a won match to the next level. Returns false unless the
// match is in PhaseVictory.
func (w *World) Advance() bool {
	if w.Phase != PhaseVictory {
		return false
	}
	w.startLevel(w.Level+1, w.rng.Int63())
	return true
}

// Restart returns a lost match to level 1 with fresh players. Returns
// false unless the match is in PhaseGameOver.
func (w *World) Restart() bool {
	if w.Phase != PhaseGameOver {
		return false
	}
	for i, p := range w.Players {
		if p == nil || !p.Active {
			continue
		}
		nick := p.Nickname
		fresh := NewPlayerTank(p.ID, i+1, w.cfg.StartingLives)
		fresh.Nickname = nick
		w.Players[i] = fresh
	}
	w.startLevel(1, w.rng.Int63())
	return true
}

// FollowLevel is the mirror-side counterpart of Advance: it bumps the
// level counter and clears per-level kills without touching terrain or
// score, which the next snapshot supplies.
func (w *World) FollowLevel() {
	w.Level++
	for _, p := range w.Players {
		if p != nil {
			p.Kills = 0
		}
	}
	w.Phase = PhasePlaying
	w.emit(Event{Cue: CueLevelStart, Level: w.Level})
}
