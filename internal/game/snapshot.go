package game

import (
	"errors"
	"fmt"

	"tankbattle/internal/protocol"
)

// ErrBadSnapshot marks a snapshot that does not fit this world
var ErrBadSnapshot = errors.New("bad snapshot")

// Snapshot captures the full authoritative state
func (w *World) Snapshot() *protocol.WorldSnapshot {
	s := &protocol.WorldSnapshot{
		Tick:                 w.Tick,
		Players:              make([]protocol.PlayerState, MaxPlayers),
		Enemies:              make([]protocol.EnemyState, 0, len(w.Enemies)),
		Bullets:              make([]protocol.BulletState, 0, len(w.Bullets)),
		PowerUps:             make([]protocol.PowerUpState, 0, len(w.PowerUps)),
		MapTiles:             make([][]uint8, GridRows),
		GameOver:             w.Phase == PhaseGameOver,
		Victory:              w.Phase == PhaseVictory,
		LevelNumber:          w.Level,
		ConnectedPlayers:     w.ActivePlayers(),
		EnemyFreezeDuration:  w.EnemyFreeze,
		PlayerFreezeDuration: w.PlayerFreeze,
		BaseAlive:            w.Base.Alive,
		BaseFlagState:        int(w.Base.Flag),
		EnemiesRemaining:     w.EnemiesRemaining(),
	}
	for i, p := range w.Players {
		if p != nil {
			s.Players[i] = p.ToState()
		}
	}
	for _, e := range w.Enemies {
		if e.Alive {
			s.Enemies = append(s.Enemies, e.ToEnemyState())
		}
	}
	for _, b := range w.Bullets {
		if b.Alive {
			s.Bullets = append(s.Bullets, b.ToState())
		}
	}
	for _, p := range w.PowerUps {
		if p.Alive {
			s.PowerUps = append(s.PowerUps, p.ToState())
		}
	}
	for r := 0; r < GridRows; r++ {
		row := make([]uint8, GridCols)
		for c := 0; c < GridCols; c++ {
			row[c] = uint8(w.Terrain.tiles[r][c])
		}
		s.MapTiles[r] = row
	}
	for _, b := range w.Terrain.burning {
		s.BurningTiles = append(s.BurningTiles, protocol.BurningTile{Row: b.Row, Col: b.Col, FramesRemaining: b.Remaining})
	}
	return s
}

// ValidateSnapshot checks dimensions and every wire tag
func ValidateSnapshot(s *protocol.WorldSnapshot) error {
	if s == nil {
		return fmt.Errorf("%w: nil", ErrBadSnapshot)
	}
	if len(s.MapTiles) != GridRows {
		return fmt.Errorf("%w: %d rows", ErrBadSnapshot, len(s.MapTiles))
	}
	for r, row := range s.MapTiles {
		if len(row) != GridCols {
			return fmt.Errorf("%w: row %d has %d cols", ErrBadSnapshot, r, len(row))
		}
		for _, k := range row {
			if !TileKind(k).Valid() {
				return fmt.Errorf("%w: tile tag %d", ErrBadSnapshot, k)
			}
		}
	}
	if len(s.Players) > MaxPlayers {
		return fmt.Errorf("%w: %d players", ErrBadSnapshot, len(s.Players))
	}
	for _, p := range s.Players {
		if !Direction(p.Direction).Valid() {
			return fmt.Errorf("%w: player direction %d", ErrBadSnapshot, p.Direction)
		}
	}
	for _, e := range s.Enemies {
		a := Archetype(e.Archetype)
		if a == ArchetypePlayer || !a.Valid() || !Direction(e.Direction).Valid() {
			return fmt.Errorf("%w: enemy archetype %d dir %d", ErrBadSnapshot, e.Archetype, e.Direction)
		}
	}
	for _, b := range s.Bullets {
		if !Direction(b.Direction).Valid() {
			return fmt.Errorf("%w: bullet direction %d", ErrBadSnapshot, b.Direction)
		}
	}
	for _, p := range s.PowerUps {
		if !PowerUpKind(p.Type).Valid() {
			return fmt.Errorf("%w: power-up type %d", ErrBadSnapshot, p.Type)
		}
	}
	if s.LevelNumber < 1 {
		return fmt.Errorf("%w: level %d", ErrBadSnapshot, s.LevelNumber)
	}
	return nil
}

// ApplyResult reports what ApplySnapshot changed beyond plain fields
type ApplyResult struct {
	LevelsAdvanced int
}

// ApplySnapshot overwrites the world with host state. The tank in
// localSlot keeps its own position and facing, since the client predicts
// those, except when the host has just respawned it or changed level.
// An invalid snapshot changes nothing. Applying the same snapshot twice
// leaves the world as after the first.
func (w *World) ApplySnapshot(s *protocol.WorldSnapshot, localSlot int) (ApplyResult, error) {
	var res ApplyResult
	if err := ValidateSnapshot(s); err != nil {
		return res, err
	}

	levelChanged := s.LevelNumber != w.Level
	for w.Level < s.LevelNumber {
		w.FollowLevel()
		res.LevelsAdvanced++
	}
	w.Level = s.LevelNumber

	for r, row := range s.MapTiles {
		for c, k := range row {
			w.Terrain.tiles[r][c] = TileKind(k)
		}
	}
	burning := make([]BurningTile, 0, len(s.BurningTiles))
	for _, b := range s.BurningTiles {
		burning = append(burning, BurningTile{Cell: Cell{b.Row, b.Col}, Remaining: b.FramesRemaining})
	}
	w.Terrain.SetBurning(burning)

	w.applyPlayers(s, localSlot, levelChanged)
	w.applyEnemies(s.Enemies)
	w.applyBullets(s.Bullets)
	w.applyPowerUps(s.PowerUps)

	w.Tick = s.Tick
	w.EnemyFreeze = s.EnemyFreezeDuration
	w.PlayerFreeze = s.PlayerFreezeDuration
	w.Base.Alive = s.BaseAlive
	w.Base.Flag = BaseFlag(s.BaseFlagState)
	switch {
	case s.GameOver:
		w.Phase = PhaseGameOver
	case s.Victory:
		w.Phase = PhaseVictory
	default:
		w.Phase = PhasePlaying
	}
	return res, nil
}

func (w *World) applyPlayers(s *protocol.WorldSnapshot, localSlot int, levelChanged bool) {
	for i, ps := range s.Players {
		slot := i + 1
		if !ps.Active && slot > len(w.Players) && slot > s.ConnectedPlayers {
			continue
		}
		t := w.EnsurePlayer(slot)
		keepPos := slot == localSlot && t.Alive && ps.Alive && ps.Lives >= t.Lives && !levelChanged
		if !keepPos {
			t.X, t.Y, t.Dir = ps.X, ps.Y, Direction(ps.Direction)
		}
		t.Active = ps.Active
		t.Lives = ps.Lives
		t.Alive = ps.Alive
		t.Health = ps.Health
		t.Mods = Modifiers{
			ShieldTicks:     ps.ShieldTicks,
			StarCount:       ps.StarCount,
			CarCount:        ps.CarCount,
			MachinegunCount: ps.MachinegunCount,
			Ship:            ps.ShipFlag,
			Gun:             ps.GunFlag,
			Saw:             ps.SawFlag,
		}
		t.StunTicks = 0
		if ps.Stunned {
			t.StunTicks = 1
		}
		t.Paused = ps.Paused
		t.Kills = ps.Kills
		t.Score = ps.Score
		t.Nickname = ps.Nickname
	}
}

// applyEnemies matches by index; a slot keeps its animation frame while
// the archetype there is unchanged
func (w *World) applyEnemies(list []protocol.EnemyState) {
	out := make([]*Tank, len(list))
	for i, es := range list {
		a := Archetype(es.Archetype)
		var t *Tank
		if i < len(w.Enemies) && w.Enemies[i].Archetype == a {
			t = w.Enemies[i]
		} else {
			t = NewEnemyTank(w.newTankID(), a, EnemySpawns[0], false)
		}
		t.X, t.Y, t.Dir = es.X, es.Y, Direction(es.Direction)
		t.Alive = es.Alive
		t.Health = es.Health
		t.Mods.ShieldTicks = es.ShieldTicks
		t.Carrier = es.Carrier
		out[i] = t
	}
	w.Enemies = out
}

// applyBullets matches by id so animation frames survive; the set of ids
// seen is rebuilt from each snapshot
func (w *World) applyBullets(list []protocol.BulletState) {
	prev := make(map[uint32]*Bullet, len(w.Bullets))
	for _, b := range w.Bullets {
		prev[b.ID] = b
	}
	out := make([]*Bullet, 0, len(list))
	for _, bs := range list {
		b, ok := prev[bs.ID]
		if !ok {
			b = &Bullet{ID: bs.ID, ShooterID: -1}
		}
		b.X, b.Y, b.Dir = bs.X, bs.Y, Direction(bs.Direction)
		b.Owner = bs.OwnerPlayerNumber
		if bs.FromEnemy {
			b.Owner = OwnerEnemy
		}
		b.Power = bs.Power
		b.BurnsTrees = bs.CanDestroyTrees
		b.Size = bs.Size
		b.Alive = true
		out = append(out, b)
	}
	w.Bullets = out
}

func (w *World) applyPowerUps(list []protocol.PowerUpState) {
	out := make([]*PowerUp, 0, len(list))
	for _, ps := range list {
		p := &PowerUp{
			ID:     ps.ID,
			Kind:   PowerUpKind(ps.Type),
			X:      ps.X,
			Y:      ps.Y,
			Alive:  true,
			effect: powerUpEffects[PowerUpKind(ps.Type)],
		}
		out = append(out, p)
	}
	w.PowerUps = out
}
