package game

// Predict moves the tank in slot by one tick of in, without running the
// rest of the simulation. A client calls it every frame so its own tank
// responds before the host echoes the move back. Ice slides are
// reproduced so the reported position matches what the host would do.
func (w *World) Predict(slot int, in Input) bool {
	t := w.Player(slot)
	if t == nil || !t.Active || !t.Alive || in.Paused || w.Phase != PhasePlaying {
		return false
	}
	driven := t.driven
	t.driven = false
	if !w.canAct(t) {
		return false
	}
	if dir, ok := in.Direction(); ok {
		t.slideLeft = 0
		t.driven = true
		return w.MoveTank(t, dir, w.tankSpeed(t))
	}
	if driven && t.slideLeft == 0 && w.onIce(t) {
		t.slideLeft = IceSlideDistance
	}
	if t.slideLeft <= 0 {
		return false
	}
	step := min(w.tankSpeed(t), t.slideLeft)
	if !w.MoveTank(t, t.Dir, step) {
		t.slideLeft = 0
		return false
	}
	t.slideLeft -= step
	return true
}
