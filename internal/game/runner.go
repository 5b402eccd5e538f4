package game

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"tankbattle/internal/protocol"
)

const (
	TickDuration = time.Second / TickRate
	AdvanceDelay = 3 * TickRate // ticks spent on the victory screen
)

// InputSource is polled once per tick for each locally driven slot
type InputSource interface {
	Poll(slot int) Input
}

// IdleInput never presses anything
type IdleInput struct{}

func (IdleInput) Poll(int) Input { return Input{} }

// Runner drives a World at the fixed tick rate on its own goroutine and
// publishes a snapshot after every tick for readers such as a renderer.
// A late tick runs late; missed ticks are not replayed.
type Runner struct {
	world  *World
	logger *log.Logger

	input  InputSource
	slots  []int
	before func(*World)
	after  func(*protocol.WorldSnapshot)

	paused     atomic.Bool
	restart    atomic.Bool
	latest     atomic.Pointer[protocol.WorldSnapshot]
	wonAt      uint64
	wonPending bool

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRunner wraps w. Nothing is polled until SetInput is called.
func NewRunner(w *World, logger *log.Logger) *Runner {
	r := &Runner{
		world:  w,
		logger: logger,
		input:  IdleInput{},
		stop:   make(chan struct{}),
	}
	r.latest.Store(w.Snapshot())
	return r
}

// SetInput chooses the source polled for the given local slots
func (r *Runner) SetInput(src InputSource, slots ...int) {
	r.input = src
	r.slots = slots
}

// BeforeStep installs a hook run on the tick goroutine before each step,
// also while paused
func (r *Runner) BeforeStep(fn func(*World)) { r.before = fn }

// AfterStep installs a hook receiving each published snapshot
func (r *Runner) AfterStep(fn func(*protocol.WorldSnapshot)) { r.after = fn }

// SetPaused freezes the simulation without stopping the loop
func (r *Runner) SetPaused(p bool) { r.paused.Store(p) }

// Paused reports the local pause state
func (r *Runner) Paused() bool { return r.paused.Load() }

// RequestRestart asks for a lost match to restart at the next tick
func (r *Runner) RequestRestart() { r.restart.Store(true) }

// Latest returns the most recent snapshot. Safe from any goroutine.
func (r *Runner) Latest() *protocol.WorldSnapshot { return r.latest.Load() }

// Run starts the tick loop and blocks until Stop
func (r *Runner) Run() {
	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Step()
		case <-r.stop:
			return
		}
	}
}

// Stop terminates the tick loop
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// Step runs exactly one tick
func (r *Runner) Step() {
	w := r.world
	if r.before != nil {
		r.before(w)
	}
	if r.restart.Swap(false) && w.Restart() {
		r.logger.Info("match restarted", "seed", w.Terrain.Seed())
	}
	if !r.paused.Load() {
		for _, slot := range r.slots {
			w.SetCommand(slot, Command{Input: r.input.Poll(slot)})
		}
		prev := w.Phase
		w.Step()
		if prev == PhasePlaying && w.Phase != PhasePlaying {
			r.logger.Info("level decided", "level", w.Level, "phase", w.Phase, "tick", w.Tick)
		}
		r.advanceAfterVictory()
	}
	snap := w.Snapshot()
	r.latest.Store(snap)
	if r.after != nil {
		r.after(snap)
	}
}

// advanceAfterVictory moves to the next level once the victory screen
// has been up for AdvanceDelay ticks
func (r *Runner) advanceAfterVictory() {
	w := r.world
	if w.Phase != PhaseVictory {
		r.wonPending = false
		return
	}
	if !r.wonPending {
		r.wonPending = true
		r.wonAt = 0
	}
	r.wonAt++
	if r.wonAt < AdvanceDelay {
		return
	}
	r.wonPending = false
	if w.Advance() {
		r.logger.Info("level started", "level", w.Level, "seed", w.Terrain.Seed())
	}
}
