package game

import "tankbattle/internal/protocol"

// OwnerEnemy is the owner number of bullets fired by enemies
const OwnerEnemy = 0

// Bullet is a shell in flight
type Bullet struct {
	ID         uint32
	ShooterID  int // tank ID, for the in-flight cap
	Owner      int // player slot, or OwnerEnemy
	X, Y       float64
	Dir        Direction
	Speed      float64
	Size       float64
	Power      int
	BurnsTrees bool
	Alive      bool
	AnimFrame  int
}

// NewBullet fires a bullet from the muzzle of t
func NewBullet(id uint32, t *Tank) *Bullet {
	size := t.def.BulletSize
	cx, cy := t.Rect().Center()
	dx, dy := t.Dir.Delta()
	half := TankSize / 2
	return &Bullet{
		ID:         id,
		ShooterID:  t.ID,
		Owner:      t.Slot,
		X:          cx + dx*half - size/2,
		Y:          cy + dy*half - size/2,
		Dir:        t.Dir,
		Speed:      t.BulletSpeed(),
		Size:       size,
		Power:      t.BulletPower(),
		BurnsTrees: t.BurnsTrees(),
		Alive:      true,
	}
}

// FromEnemy reports whether an enemy fired the bullet
func (b *Bullet) FromEnemy() bool { return b.Owner == OwnerEnemy }

// Rect returns the bullet's collision box
func (b *Bullet) Rect() Rect {
	return Rect{X: b.X, Y: b.Y, W: b.Size, H: b.Size}
}

// Update advances the bullet one tick along its direction
func (b *Bullet) Update() {
	if !b.Alive {
		return
	}
	dx, dy := b.Dir.Delta()
	b.X += dx * b.Speed
	b.Y += dy * b.Speed
	b.AnimFrame++
}

// ToState converts to protocol state
func (b *Bullet) ToState() protocol.BulletState {
	return protocol.BulletState{
		ID:                b.ID,
		X:                 round1(b.X),
		Y:                 round1(b.Y),
		Direction:         int(b.Dir),
		FromEnemy:         b.FromEnemy(),
		Power:             b.Power,
		CanDestroyTrees:   b.BurnsTrees,
		OwnerPlayerNumber: b.Owner,
		Size:              b.Size,
	}
}
