package game

import "math/rand"

// LevelSource supplies hand-made layouts. ok is false when no layout is
// stored for the level, in which case it is generated.
type LevelSource interface {
	LoadLevel(number int) (grid [][]TileKind, ok bool, err error)
}

// Input is one tick of a player's controls
type Input struct {
	Up, Down, Left, Right bool
	Shoot                 bool
	RequestLife           bool
	Paused                bool
}

// Direction returns the held direction, preferring vertical keys
func (in Input) Direction() (Direction, bool) {
	switch {
	case in.Up:
		return DirUp, true
	case in.Down:
		return DirDown, true
	case in.Left:
		return DirLeft, true
	case in.Right:
		return DirRight, true
	}
	return 0, false
}

// Command is the input applied to a slot at the next tick. Remote
// commands carry the client's own position, which the host adopts.
type Command struct {
	Input
	Remote bool
	X, Y   float64
	Dir    Direction
}

// World is the complete simulation state. It is not safe for concurrent
// use; one goroutine owns it and publishes snapshots for readers.
type World struct {
	cfg Config

	Terrain  *Terrain
	Players  []*Tank // index slot-1; grows up to MaxPlayers
	Enemies  []*Tank
	Bullets  []*Bullet
	PowerUps []*PowerUp
	Base     Base
	Spawner  *Spawner

	Phase        Phase
	Level        int
	EnemyFreeze  int
	PlayerFreeze int
	Tick         uint64

	rng       *rand.Rand
	nextTank  int
	nextID    uint32
	commands  [MaxPlayers]Command
	hasCmd    [MaxPlayers]bool
	levels    LevelSource
	listeners []Listener
	grid      SpatialGrid
	queryBuf  []EntityRef
}

// NewWorld creates a world at level 1 with a layout generated from seed
func NewWorld(cfg Config, seed int64) *World {
	w := &World{
		cfg:     cfg.sanitized(),
		Terrain: NewTerrain(),
		rng:     rand.New(rand.NewSource(seed)),
	}
	w.startLevel(1, seed)
	return w
}

// Config returns the tuning the world runs with
func (w *World) Config() Config { return w.cfg }

// SetLevelSource installs a store of hand-made layouts. The current level
// is not reloaded.
func (w *World) SetLevelSource(src LevelSource) { w.levels = src }

// AddListener registers an event listener
func (w *World) AddListener(l Listener) { w.listeners = append(w.listeners, l) }

func (w *World) emit(e Event) {
	e.Tick = w.Tick
	if e.Level == 0 {
		e.Level = w.Level
	}
	for _, l := range w.listeners {
		l.OnEvent(e)
	}
}

func (w *World) newTankID() int {
	w.nextTank++
	return w.nextTank
}

func (w *World) newID() uint32 {
	w.nextID++
	return w.nextID
}

// Player returns the tank for slot, or nil
func (w *World) Player(slot int) *Tank {
	if slot < 1 || slot > len(w.Players) {
		return nil
	}
	return w.Players[slot-1]
}

// EnsurePlayer grows the player list to hold slot and returns its tank,
// creating an inactive one if needed
func (w *World) EnsurePlayer(slot int) *Tank {
	if slot < 1 || slot > MaxPlayers {
		return nil
	}
	for len(w.Players) < slot {
		w.Players = append(w.Players, nil)
	}
	if w.Players[slot-1] == nil {
		t := NewPlayerTank(w.newTankID(), slot, w.cfg.StartingLives)
		t.Active = false
		w.Players[slot-1] = t
	}
	return w.Players[slot-1]
}

// AddPlayer activates slot with a fresh tank at its start position
func (w *World) AddPlayer(slot int, nickname string) *Tank {
	t := w.EnsurePlayer(slot)
	if t == nil {
		return nil
	}
	*t = *NewPlayerTank(t.ID, slot, w.cfg.StartingLives)
	t.Nickname = nickname
	t.Mods.ShieldTicks = w.cfg.RespawnShield
	return t
}

// RemovePlayer frees a slot. The tank leaves the field and the match
// carries on.
func (w *World) RemovePlayer(slot int) {
	t := w.Player(slot)
	if t == nil {
		return
	}
	t.Active = false
	t.Alive = false
	w.hasCmd[slot-1] = false
}

// ActivePlayers counts occupied slots
func (w *World) ActivePlayers() int {
	n := 0
	for _, p := range w.Players {
		if p != nil && p.Active {
			n++
		}
	}
	return n
}

// SetCommand queues input for slot; it is consumed by the next Tick
func (w *World) SetCommand(slot int, cmd Command) bool {
	if slot < 1 || slot > MaxPlayers {
		return false
	}
	w.commands[slot-1] = cmd
	w.hasCmd[slot-1] = true
	return true
}

// tanks returns players and enemies in one slice
func (w *World) tanks() []*Tank {
	out := make([]*Tank, 0, len(w.Players)+len(w.Enemies))
	for _, p := range w.Players {
		if p != nil {
			out = append(out, p)
		}
	}
	return append(out, w.Enemies...)
}

func (w *World) tankByID(id int) *Tank {
	for _, t := range w.tanks() {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (w *World) liveEnemies() int {
	n := 0
	for _, e := range w.Enemies {
		if e.Alive {
			n++
		}
	}
	return n
}

// EnemiesRemaining counts enemies not yet destroyed this level
func (w *World) EnemiesRemaining() int {
	if w.Spawner == nil {
		return w.liveEnemies()
	}
	return w.Spawner.Remaining() + w.liveEnemies()
}

func (w *World) tankSpeed(t *Tank) float64 {
	s := t.def.Speed * t.SpeedMultiplier()
	if t.IsPlayer() {
		s *= w.cfg.PlayerSpeedMultiplier
	} else {
		s *= w.cfg.EnemySpeedMultiplier
	}
	if w.onIce(t) {
		s *= IceSpeedFactor
	}
	return s
}

func (w *World) onIce(t *Tank) bool {
	c := CellAt(t.Rect().Center())
	return w.Terrain.At(c.Row, c.Col) == TileIce
}

// Step runs one simulation tick. Nothing happens outside PhasePlaying.
func (w *World) Step() {
	if w.Phase != PhasePlaying {
		return
	}
	w.Tick++
	w.applyCommands()
	w.Terrain.AdvanceBurning()
	w.Base.advance(w.Terrain)
	w.advanceFreezes()
	w.runSpawner()
	w.updateTanks()
	for _, e := range w.Enemies {
		w.updateAI(e)
	}
	w.updateBullets()
	w.updatePowerUps()
	w.removeDeadEnemies()
	w.evaluate()
}

func (w *World) applyCommands() {
	for i, t := range w.Players {
		if t == nil || !t.Active {
			continue
		}
		driven := t.driven
		t.driven = false
		t.moved = false
		if !w.hasCmd[i] {
			continue
		}
		cmd := w.commands[i]
		w.hasCmd[i] = false
		t.Paused = cmd.Paused

		if cmd.RequestLife {
			w.requestLife(t)
		}
		if !t.Alive || t.Paused {
			continue
		}
		if cmd.Remote {
			w.adoptRemote(t, cmd)
		} else if dir, ok := cmd.Direction(); ok && w.canAct(t) {
			t.slideLeft = 0
			w.MoveTank(t, dir, w.tankSpeed(t))
			t.driven = true
		} else if driven && t.slideLeft == 0 && w.onIce(t) {
			t.slideLeft = IceSlideDistance
		}
		if cmd.Shoot && w.canAct(t) {
			w.fire(t)
		}
	}
}

// canAct is false while the player side is frozen or the tank is stunned
func (w *World) canAct(t *Tank) bool {
	return w.PlayerFreeze == 0 && t.StunTicks == 0
}

// adoptRemote takes a client's predicted position as authoritative.
// Positions off the map, non-finite ones and bad directions are ignored.
func (w *World) adoptRemote(t *Tank, cmd Command) {
	if !cmd.Dir.Valid() || !finite(cmd.X) || !finite(cmd.Y) {
		return
	}
	if cmd.X < 0 || cmd.Y < 0 || cmd.X+TankSize > MapWidth || cmd.Y+TankSize > MapHeight {
		return
	}
	t.moved = t.X != cmd.X || t.Y != cmd.Y
	t.X, t.Y, t.Dir = cmd.X, cmd.Y, cmd.Dir
}

func (w *World) advanceFreezes() {
	if w.EnemyFreeze > 0 {
		w.EnemyFreeze--
	}
	if w.PlayerFreeze > 0 {
		w.PlayerFreeze--
	}
}

func (w *World) runSpawner() {
	if w.Spawner == nil || !w.Spawner.Due(w.liveEnemies()) {
		return
	}
	a, carrier := w.Spawner.Peek()
	for i, c := range w.Spawner.Points() {
		x, y := tankOrigin(c)
		if w.occupied(Rect{X: x, Y: y, W: TankSize, H: TankSize}) {
			continue
		}
		e := NewEnemyTank(w.newTankID(), a, c, carrier)
		w.Enemies = append(w.Enemies, e)
		w.Spawner.Commit(i)
		w.emit(Event{Cue: CueEnemySpawn, Archetype: a, X: x, Y: y})
		return
	}
}

// occupied reports whether any solid tank overlaps r
func (w *World) occupied(r Rect) bool {
	for _, t := range w.tanks() {
		if t.Solid() && t.Rect().Overlaps(r) {
			return true
		}
	}
	return false
}

func (w *World) updateTanks() {
	for _, t := range w.tanks() {
		if !t.Solid() {
			continue
		}
		t.tickTimers()
		if t.slideLeft <= 0 || t.driven {
			continue
		}
		step := min(w.tankSpeed(t), t.slideLeft)
		if !w.MoveTank(t, t.Dir, step) {
			t.slideLeft = 0
			continue
		}
		t.slideLeft -= step
	}
}

func (w *World) updatePowerUps() {
	for _, p := range w.PowerUps {
		p.Update()
		if !p.Alive {
			continue
		}
		if picker := w.pickerOf(p); picker != nil {
			p.Alive = false
			if picker.IsPlayer() {
				picker.Score += PickupScore
				p.effect.onPlayer(w, picker)
			} else {
				p.effect.onEnemy(w, picker)
			}
			w.emit(Event{Cue: CuePowerUpPickup, Slot: picker.Slot, PowerUp: p.Kind, X: p.X, Y: p.Y})
		}
	}
	kept := w.PowerUps[:0]
	for _, p := range w.PowerUps {
		if p.Alive {
			kept = append(kept, p)
		}
	}
	w.PowerUps = kept
}

// pickerOf returns the first tank touching p, players before enemies
func (w *World) pickerOf(p *PowerUp) *Tank {
	r := p.Rect()
	for _, t := range w.Players {
		if t != nil && t.Solid() && !t.Paused && t.Rect().Overlaps(r) {
			return t
		}
	}
	for _, e := range w.Enemies {
		if e.Alive && e.Rect().Overlaps(r) {
			return e
		}
	}
	return nil
}

func (w *World) removeDeadEnemies() {
	kept := w.Enemies[:0]
	for _, e := range w.Enemies {
		if e.Alive {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(w.Enemies); i++ {
		w.Enemies[i] = nil
	}
	w.Enemies = kept
}

// evaluate moves the match out of PhasePlaying when it is decided
func (w *World) evaluate() {
	switch {
	case !w.Base.Alive || w.playersOut():
		w.Phase = PhaseGameOver
		w.emit(Event{Cue: CueGameOver})
	case w.Spawner != nil && w.Spawner.AllSpawned() && w.liveEnemies() == 0:
		w.Phase = PhaseVictory
		w.emit(Event{Cue: CueVictory})
	}
}

// playersOut reports whether every active player is dead with no lives
func (w *World) playersOut() bool {
	active := 0
	for _, p := range w.Players {
		if p == nil || !p.Active {
			continue
		}
		active++
		if p.Alive || p.Lives > 0 {
			return false
		}
	}
	return active > 0
}
