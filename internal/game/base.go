package game

// BaseFlag is the base emblem state. Values are wire-stable.
type BaseFlag int

const (
	BaseFlagStanding BaseFlag = 0
	BaseFlagFallen   BaseFlag = 1
)

// Base is the player headquarters. Losing it ends the match.
type Base struct {
	Alive bool
	Flag  BaseFlag

	// steel ring override left, in ticks; the last flash window alternates
	// between steel and brick before reverting
	ProtectTicks int
}

func newBase() Base {
	return Base{Alive: true, Flag: BaseFlagStanding}
}

// Rect returns the base's collision box
func (b *Base) Rect() Rect { return BaseCell.Rect() }

// Destroy marks the base fallen. Returns false if it already was.
func (b *Base) Destroy() bool {
	if !b.Alive {
		return false
	}
	b.Alive = false
	b.Flag = BaseFlagFallen
	return true
}

// Protect switches the ring to steel for ticks
func (b *Base) Protect(t *Terrain, ticks int) {
	b.ProtectTicks = ticks
	t.PaintBaseRing(TileSteel)
}

// Strip removes the ring and any protection
func (b *Base) Strip(t *Terrain) {
	b.ProtectTicks = 0
	t.PaintBaseRing(TileEmpty)
}

// advance counts down the protection. In the final flash window the ring
// alternates every ProtectFlashTicks; at expiry it reverts to brick.
func (b *Base) advance(t *Terrain) {
	if b.ProtectTicks <= 0 {
		return
	}
	b.ProtectTicks--
	if b.ProtectTicks == 0 {
		t.PaintBaseRing(TileBrick)
		return
	}
	window := ProtectFlashes * ProtectFlashTicks
	if b.ProtectTicks > window {
		return
	}
	if b.ProtectTicks%ProtectFlashTicks == 0 {
		if (b.ProtectTicks/ProtectFlashTicks)%2 == 0 {
			t.PaintBaseRing(TileSteel)
		} else {
			t.PaintBaseRing(TileBrick)
		}
	}
}
