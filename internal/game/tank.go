package game

import "tankbattle/internal/protocol"

const (
	TankSize          = 28.0
	MaxStars          = 3
	MaxCars           = 3
	MaxMachineguns    = 2
	CarSpeedStep      = 0.25 // speed bonus per car upgrade
	MachinegunCDCut   = 5    // ticks shaved off the shoot cooldown per machinegun
	StarBulletBonus   = 2.0
	IceSpeedFactor    = 2.0
	IceSlideDistance  = TileSize
	StuckEpsilon      = 0.01
	PlayerStartFacing = DirUp
)

// Modifiers are the upgrades and timed effects carried by a tank
type Modifiers struct {
	ShieldTicks     int
	StarCount       int
	CarCount        int
	MachinegunCount int
	Ship            bool // swim, and deflect one hit
	Gun             bool // power-2 bullets that burn trees
	Saw             bool // cut trees by driving through them
}

// Tank is a player or enemy tank
type Tank struct {
	ID        int
	Slot      int // player slot 1..4, 0 for enemies
	Archetype Archetype
	def       ArchetypeDef // resolved once at creation

	X, Y      float64
	Dir       Direction
	Health    int
	MaxHealth int
	Lives     int
	Alive     bool
	Active    bool // player slot occupied
	Carrier   bool
	Mods      Modifiers

	ShootCD   int
	StunTicks int
	Paused    bool
	Kills     int
	Score     int
	Nickname  string
	AnimFrame int

	slideLeft float64
	moved     bool
	driven    bool // moved by held input last tick
	ai        *aiState
}

// NewPlayerTank creates the tank for a player slot at its start position
func NewPlayerTank(id, slot, lives int) *Tank {
	t := &Tank{
		ID:        id,
		Slot:      slot,
		Archetype: ArchetypePlayer,
		def:       Archetypes[ArchetypePlayer],
		Lives:     lives,
		Active:    true,
	}
	t.resetToStart()
	return t
}

// NewEnemyTank creates an enemy of the given archetype at a spawn cell
func NewEnemyTank(id int, a Archetype, at Cell, carrier bool) *Tank {
	def := GetArchetypeDef(a)
	x, y := tankOrigin(at)
	return &Tank{
		ID:        id,
		Archetype: a,
		def:       def,
		X:         x,
		Y:         y,
		Dir:       DirDown,
		Health:    def.MaxHealth,
		MaxHealth: def.MaxHealth,
		Alive:     true,
		Carrier:   carrier,
		ai:        &aiState{},
	}
}

// Def returns the archetype stats bound to the tank
func (t *Tank) Def() ArchetypeDef { return t.def }

// IsPlayer reports whether the tank belongs to a player slot
func (t *Tank) IsPlayer() bool { return t.Slot > 0 }

// Rect returns the tank's collision box
func (t *Tank) Rect() Rect {
	return Rect{X: t.X, Y: t.Y, W: TankSize, H: TankSize}
}

// Solid reports whether the tank takes part in collisions
func (t *Tank) Solid() bool {
	if t.IsPlayer() {
		return t.Active && t.Alive
	}
	return t.Alive
}

func (t *Tank) resetToStart() {
	x, y := tankOrigin(PlayerStarts[t.Slot-1])
	t.X, t.Y = x, y
	t.Dir = PlayerStartFacing
	t.Health = t.def.MaxHealth
	t.MaxHealth = t.def.MaxHealth
	t.Alive = true
	t.ShootCD = 0
	t.StunTicks = 0
	t.slideLeft = 0
}

// Respawn returns a dead player tank to its start with full health and a
// short shield. Lives are accounted by the caller.
func (t *Tank) Respawn(shieldTicks int) {
	t.resetToStart()
	t.Mods.ShieldTicks = shieldTicks
}

// BulletPower is 2 with the gun or three stars, else the archetype's
func (t *Tank) BulletPower() int {
	if t.Mods.Gun || t.Mods.StarCount >= 3 {
		return 2
	}
	return t.def.BulletPower
}

// BulletSpeed includes the one-star bonus
func (t *Tank) BulletSpeed() float64 {
	if t.Mods.StarCount >= 1 {
		return t.def.BulletSpeed + StarBulletBonus
	}
	return t.def.BulletSpeed
}

// MaxBullets is how many of the tank's bullets may be in flight at once
func (t *Tank) MaxBullets() int {
	n := 1 + t.Mods.MachinegunCount
	if t.Mods.StarCount >= 2 {
		n++
	}
	return n
}

// BurnsTrees reports whether the tank's bullets ignite trees
func (t *Tank) BurnsTrees() bool { return t.Mods.Gun }

// SpeedMultiplier is the car upgrade bonus
func (t *Tank) SpeedMultiplier() float64 {
	return 1 + CarSpeedStep*float64(t.Mods.CarCount)
}

// Swims reports whether the tank may cross water
func (t *Tank) Swims() bool { return t.Mods.Ship }

// HitResult reports the outcome of one bullet hit
type HitResult struct {
	Absorbed  bool // shield or pause ate the hit
	Deflected bool // ship flag spent
	Killed    bool
	Drop      bool // a power-up should appear
}

// TakeHit applies one bullet hit of the given damage
func (t *Tank) TakeHit(dmg int) HitResult {
	var res HitResult
	if !t.Alive {
		return res
	}
	if t.Mods.ShieldTicks > 0 || t.Paused {
		res.Absorbed = true
		return res
	}
	if t.Mods.Ship {
		t.Mods.Ship = false
		res.Deflected = true
		return res
	}
	res.Drop = t.def.DropOnHit || t.Carrier
	if t.TakeDamage(dmg) {
		res.Killed = true
	}
	return res
}

// TakeDamage reduces health and returns true if the tank died.
// Shields are not consulted.
func (t *Tank) TakeDamage(dmg int) bool {
	if !t.Alive {
		return false
	}
	t.Health -= dmg
	if t.Health <= 0 {
		t.Health = 0
		t.Alive = false
		return true
	}
	return false
}

// tickTimers counts down the per-tank timers
func (t *Tank) tickTimers() {
	if t.Mods.ShieldTicks > 0 {
		t.Mods.ShieldTicks--
	}
	if t.ShootCD > 0 {
		t.ShootCD--
	}
	if t.StunTicks > 0 {
		t.StunTicks--
	}
	t.AnimFrame++
}

// ToState converts to protocol state
func (t *Tank) ToState() protocol.PlayerState {
	return protocol.PlayerState{
		Active:          t.Active,
		X:               round1(t.X),
		Y:               round1(t.Y),
		Direction:       int(t.Dir),
		Lives:           t.Lives,
		Alive:           t.Alive,
		Health:          t.Health,
		ShieldTicks:     t.Mods.ShieldTicks,
		ShipFlag:        t.Mods.Ship,
		GunFlag:         t.Mods.Gun,
		SawFlag:         t.Mods.Saw,
		StarCount:       t.Mods.StarCount,
		CarCount:        t.Mods.CarCount,
		MachinegunCount: t.Mods.MachinegunCount,
		Stunned:         t.StunTicks > 0,
		Paused:          t.Paused,
		Kills:           t.Kills,
		Score:           t.Score,
		Nickname:        t.Nickname,
	}
}

// ToEnemyState converts an enemy to protocol state
func (t *Tank) ToEnemyState() protocol.EnemyState {
	return protocol.EnemyState{
		X:           round1(t.X),
		Y:           round1(t.Y),
		Direction:   int(t.Dir),
		Alive:       t.Alive,
		Archetype:   int(t.Archetype),
		Health:      t.Health,
		ShieldTicks: t.Mods.ShieldTicks,
		Carrier:     t.Carrier,
	}
}
