package game

import "math"

// AI cooldown tuning not covered by Config
const (
	AIStuckRearmFactor = 2 // stuck redirects hold their heading longer
	AIFirstShotMin     = 20
)

// aiState is the per-enemy controller state
type aiState struct {
	moveCD     int
	shootCD    int
	lastX      float64
	lastY      float64
	stuckTicks int
	primed     bool
}

// updateAI drives one enemy for a tick: maybe redirect, move, maybe fire,
// and recover when wedged against something.
func (w *World) updateAI(t *Tank) {
	if !t.Alive || t.ai == nil {
		return
	}
	if w.EnemyFreeze > 0 && !t.def.FreezeImmune {
		return
	}
	st := t.ai
	if !st.primed {
		st.primed = true
		st.moveCD = w.randRange(w.cfg.AIMoveMin, w.cfg.AIMoveMax)
		st.shootCD = w.scaleEnemyShoot(w.randRange(AIFirstShotMin, max(AIFirstShotMin, t.def.ShootMin)))
		st.lastX, st.lastY = t.X, t.Y
	}

	st.moveCD--
	if st.moveCD <= 0 {
		if w.rng.Float64() < w.cfg.AIBaseBias {
			t.Dir = w.towardBase(t)
		} else {
			t.Dir = allDirections[w.rng.Intn(4)]
		}
		st.moveCD = w.randRange(w.cfg.AIMoveMin, w.cfg.AIMoveMax)
	}

	w.MoveTank(t, t.Dir, w.tankSpeed(t))

	if math.Abs(t.X-st.lastX)+math.Abs(t.Y-st.lastY) < StuckEpsilon {
		st.stuckTicks++
		if st.stuckTicks >= w.cfg.AIStuckTicks {
			t.Dir = w.otherDirection(t.Dir)
			st.moveCD = AIStuckRearmFactor * w.randRange(w.cfg.AIMoveMin, w.cfg.AIMoveMax)
			st.stuckTicks = 0
		}
	} else {
		st.stuckTicks = 0
	}
	st.lastX, st.lastY = t.X, t.Y

	st.shootCD--
	if st.shootCD <= 0 {
		w.fire(t)
		st.shootCD = w.scaleEnemyShoot(w.randRange(t.def.ShootMin, t.def.ShootMax))
	}
}

func (w *World) scaleEnemyShoot(ticks int) int {
	return max(1, int(float64(ticks)*w.cfg.EnemyShootMultiplier))
}

// towardBase picks the axis with the larger gap to the base, favouring
// the vertical when tied
func (w *World) towardBase(t *Tank) Direction {
	bx, by := w.Base.Rect().Center()
	tx, ty := t.Rect().Center()
	dx, dy := bx-tx, by-ty
	if math.Abs(dx) > math.Abs(dy) {
		if dx < 0 {
			return DirLeft
		}
		return DirRight
	}
	if dy < 0 {
		return DirUp
	}
	return DirDown
}

func (w *World) otherDirection(d Direction) Direction {
	n := Direction(1 + w.rng.Intn(3))
	return (d + n) % 4
}

// randRange returns an int in [lo, hi]
func (w *World) randRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + w.rng.Intn(hi-lo+1)
}
