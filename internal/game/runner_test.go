package game

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type scriptedInput struct {
	in Input
}

func (s scriptedInput) Poll(int) Input { return s.in }

func TestRunnerStepPublishes(t *testing.T) {
	w := newTestWorld()
	addTestPlayer(w, 1, Cell{9, 9})
	r := NewRunner(w, log.New(io.Discard))
	r.SetInput(scriptedInput{Input{Left: true}}, 1)

	r.Step()
	snap := r.Latest()
	if snap == nil || snap.Tick != 1 {
		t.Fatalf("expected a tick-1 snapshot, got %+v", snap)
	}
	if w.Player(1).Dir != DirLeft {
		t.Error("polled input should drive the tank")
	}
}

func TestRunnerPause(t *testing.T) {
	w := newTestWorld()
	r := NewRunner(w, log.New(io.Discard))
	hooks := 0
	r.BeforeStep(func(*World) { hooks++ })

	r.SetPaused(true)
	r.Step()
	r.Step()
	if w.Tick != 0 {
		t.Errorf("paused runner should not tick, got %d", w.Tick)
	}
	if hooks != 2 {
		t.Errorf("hook should run while paused, ran %d times", hooks)
	}
	r.SetPaused(false)
	r.Step()
	if w.Tick != 1 {
		t.Errorf("expected tick 1, got %d", w.Tick)
	}
}

func TestRunnerAdvancesAfterVictory(t *testing.T) {
	w := newTestWorld()
	w.Phase = PhaseVictory
	r := NewRunner(w, log.New(io.Discard))

	for i := 0; i < AdvanceDelay-1; i++ {
		r.Step()
	}
	if w.Level != 1 {
		t.Fatal("level should hold during the victory delay")
	}
	r.Step()
	if w.Level != 2 || w.Phase != PhasePlaying {
		t.Errorf("expected level 2 playing, got %d %s", w.Level, w.Phase)
	}
}

func TestRunnerRestart(t *testing.T) {
	w := newTestWorld()
	w.Phase = PhaseGameOver
	w.Level = 3
	r := NewRunner(w, log.New(io.Discard))

	r.RequestRestart()
	r.Step()
	if w.Level != 1 || w.Phase != PhasePlaying {
		t.Errorf("expected restart to level 1, got %d %s", w.Level, w.Phase)
	}
}

func TestRunnerRunStop(t *testing.T) {
	w := newTestWorld()
	r := NewRunner(w, log.New(io.Discard))
	done := make(chan struct{})
	go func() {
		r.Run()
		close(done)
	}()
	time.Sleep(100 * time.Millisecond)
	r.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run should return after Stop")
	}
	if r.Latest().Tick == 0 {
		t.Error("runner should have ticked")
	}
}
