package game

import "tankbattle/internal/protocol"

const (
	PowerUpSize = 28.0
	PickupScore = 500
)

// PowerUpKind identifies a power-up. Values are wire-stable.
type PowerUpKind int

const (
	PowerHelmet     PowerUpKind = 1
	PowerClock      PowerUpKind = 2
	PowerShovel     PowerUpKind = 3
	PowerStar       PowerUpKind = 4
	PowerGrenade    PowerUpKind = 5
	PowerTank       PowerUpKind = 6
	PowerShip       PowerUpKind = 7
	PowerGun        PowerUpKind = 8
	PowerCar        PowerUpKind = 9
	PowerSaw        PowerUpKind = 10
	PowerMachinegun PowerUpKind = 11

	powerKindCount = 11
)

// Valid reports whether k is a known power-up kind
func (k PowerUpKind) Valid() bool {
	return k >= PowerHelmet && k <= PowerMachinegun
}

func (k PowerUpKind) String() string {
	if !k.Valid() {
		return "unknown"
	}
	return powerUpEffects[k].name
}

// powerUpEffect is the behaviour bound to one kind
type powerUpEffect struct {
	name     string
	onPlayer func(w *World, t *Tank)
	onEnemy  func(w *World, t *Tank)
}

var powerUpEffects map[PowerUpKind]powerUpEffect

// populated in init because several effects reach back into World code
// that creates power-ups
func init() {
	powerUpEffects = map[PowerUpKind]powerUpEffect{
		PowerHelmet: {
			name:     "helmet",
			onPlayer: func(w *World, t *Tank) { t.Mods.ShieldTicks = w.cfg.ShieldTicks },
			onEnemy:  func(w *World, t *Tank) { t.Mods.ShieldTicks = w.cfg.ShieldTicks },
		},
		PowerClock: {
			name:     "clock",
			onPlayer: func(w *World, t *Tank) { w.EnemyFreeze = w.cfg.FreezeTicks },
			onEnemy:  func(w *World, t *Tank) { w.PlayerFreeze = w.cfg.FreezeTicks },
		},
		PowerShovel: {
			name:     "shovel",
			onPlayer: func(w *World, t *Tank) { w.Base.Protect(w.Terrain, w.cfg.ProtectTicks) },
			onEnemy:  func(w *World, t *Tank) { w.Base.Strip(w.Terrain) },
		},
		PowerStar: {
			name:     "star",
			onPlayer: func(w *World, t *Tank) { t.Mods.StarCount = min(MaxStars, t.Mods.StarCount+1) },
			onEnemy:  func(w *World, t *Tank) { t.Mods.StarCount = min(MaxStars, t.Mods.StarCount+1) },
		},
		PowerGrenade: {
			name:     "grenade",
			onPlayer: (*World).grenadeEnemies,
			onEnemy:  (*World).grenadePlayers,
		},
		PowerTank: {
			name: "tank",
			onPlayer: func(w *World, t *Tank) {
				t.Lives++
				w.emit(Event{Cue: CueLifeUp, Slot: t.Slot})
			},
			onEnemy: func(w *World, t *Tank) {
				for _, e := range w.Enemies {
					if e.Alive {
						e.Health = e.MaxHealth
					}
				}
			},
		},
		PowerShip: {
			name:     "ship",
			onPlayer: func(w *World, t *Tank) { t.Mods.Ship = true },
			onEnemy:  func(w *World, t *Tank) { t.Mods.Ship = true },
		},
		PowerGun: {
			name:     "gun",
			onPlayer: func(w *World, t *Tank) { t.Mods.Gun = true },
			onEnemy:  func(w *World, t *Tank) { t.Mods.Gun = true },
		},
		PowerCar: {
			name:     "car",
			onPlayer: func(w *World, t *Tank) { t.Mods.CarCount = min(MaxCars, t.Mods.CarCount+1) },
			onEnemy:  func(w *World, t *Tank) { t.Mods.CarCount = min(MaxCars, t.Mods.CarCount+1) },
		},
		PowerSaw: {
			name:     "saw",
			onPlayer: func(w *World, t *Tank) { t.Mods.Saw = true },
			onEnemy:  func(w *World, t *Tank) { t.Mods.Saw = true },
		},
		PowerMachinegun: {
			name:     "machinegun",
			onPlayer: func(w *World, t *Tank) { t.Mods.MachinegunCount = min(MaxMachineguns, t.Mods.MachinegunCount+1) },
			onEnemy:  func(w *World, t *Tank) { t.Mods.MachinegunCount = min(MaxMachineguns, t.Mods.MachinegunCount+1) },
		},
	}
}

// PowerUp is a collectible on the field
type PowerUp struct {
	ID        uint32
	Kind      PowerUpKind
	X, Y      float64
	TicksLeft int
	Alive     bool
	effect    powerUpEffect
}

// NewPowerUp places a power-up centred in cell c
func NewPowerUp(id uint32, kind PowerUpKind, c Cell, ticks int) *PowerUp {
	off := (TileSize - PowerUpSize) / 2
	return &PowerUp{
		ID:        id,
		Kind:      kind,
		X:         float64(c.Col)*TileSize + off,
		Y:         float64(c.Row)*TileSize + off,
		TicksLeft: ticks,
		Alive:     true,
		effect:    powerUpEffects[kind],
	}
}

// Rect returns the pickup box
func (p *PowerUp) Rect() Rect {
	return Rect{X: p.X, Y: p.Y, W: PowerUpSize, H: PowerUpSize}
}

// Update ticks down the lifetime
func (p *PowerUp) Update() {
	if !p.Alive {
		return
	}
	p.TicksLeft--
	if p.TicksLeft <= 0 {
		p.Alive = false
	}
}

// ToState converts to protocol state
func (p *PowerUp) ToState() protocol.PowerUpState {
	return protocol.PowerUpState{
		ID:   p.ID,
		X:    round1(p.X),
		Y:    round1(p.Y),
		Type: int(p.Kind),
	}
}
