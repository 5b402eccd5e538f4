package game

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func TestPlayerRespawnsWithLives(t *testing.T) {
	w := newTestWorld()
	p := addTestPlayer(w, 1, Cell{9, 9})
	p.Lives = 2
	p.Dir = DirLeft

	testBullet(w, OwnerEnemy, 999, p.X-6, p.Y+10, DirRight)
	w.updateBullets()

	if !p.Alive {
		t.Fatal("player with lives should respawn at once")
	}
	if p.Lives != 1 {
		t.Errorf("expected 1 life left, got %d", p.Lives)
	}
	sx, sy := tankOrigin(PlayerStarts[0])
	if p.X != sx || p.Y != sy || p.Dir != PlayerStartFacing {
		t.Errorf("respawn should reset to start, got (%v,%v) %s", p.X, p.Y, p.Dir)
	}
	if p.Mods.ShieldTicks != w.cfg.RespawnShield {
		t.Errorf("expected respawn shield %d, got %d", w.cfg.RespawnShield, p.Mods.ShieldTicks)
	}
}

func TestLastLifeEndsMatch(t *testing.T) {
	w := newTestWorld()
	p := addTestPlayer(w, 1, Cell{9, 9})
	p.Lives = 0

	w.destroyTank(p, nil, false)
	if p.Alive {
		t.Fatal("player without lives should stay dead")
	}
	w.evaluate()
	if w.Phase != PhaseGameOver {
		t.Errorf("expected game over, got %s", w.Phase)
	}
}

func TestOneSurvivorKeepsMatchGoing(t *testing.T) {
	w := newTestWorld()
	p1 := addTestPlayer(w, 1, Cell{9, 9})
	addTestPlayer(w, 2, Cell{9, 12})
	p1.Lives = 0
	w.destroyTank(p1, nil, false)

	w.evaluate()
	if w.Phase != PhasePlaying {
		t.Errorf("match should continue while a teammate lives, got %s", w.Phase)
	}
}

func TestRequestLifeBorrowsFromTeammate(t *testing.T) {
	w := newTestWorld()
	p1 := addTestPlayer(w, 1, Cell{9, 9})
	p2 := addTestPlayer(w, 2, Cell{9, 12})
	p3 := addTestPlayer(w, 3, Cell{9, 15})
	p1.Lives = 0
	p2.Lives = 1
	p3.Lives = 4
	w.destroyTank(p1, nil, false)

	w.SetCommand(1, Command{Input: Input{RequestLife: true}})
	w.applyCommands()

	if !p1.Alive {
		t.Fatal("requesting a life should revive the player")
	}
	if p3.Lives != 3 || p2.Lives != 1 {
		t.Errorf("life should come from the richest teammate, got p2=%d p3=%d", p2.Lives, p3.Lives)
	}
}

func TestRemovedPlayerLeavesField(t *testing.T) {
	w := newTestWorld()
	addTestPlayer(w, 1, Cell{9, 9})
	p2 := addTestPlayer(w, 2, Cell{9, 12})

	w.RemovePlayer(2)
	if p2.Solid() {
		t.Error("removed player should not collide")
	}
	if w.ActivePlayers() != 1 {
		t.Errorf("expected 1 active player, got %d", w.ActivePlayers())
	}
	w.evaluate()
	if w.Phase != PhasePlaying {
		t.Error("match should continue after a disconnect")
	}
}

func TestVictoryAndAdvance(t *testing.T) {
	w := newTestWorld()
	p := addTestPlayer(w, 1, Cell{9, 9})
	p.Score = 700
	p.Kills = 5
	p.Lives = 2
	p.Mods.StarCount = 2

	cfg := w.cfg
	cfg.EnemiesPerLevel = 1
	cfg.BossEnabled = false
	w.Spawner = NewSpawner(cfg, 1, rand.New(rand.NewSource(1)))
	w.Spawner.Commit(0)

	w.Step()
	if w.Phase != PhaseVictory {
		t.Fatalf("expected victory, got %s", w.Phase)
	}
	if w.Restart() {
		t.Error("restart should be refused after a win")
	}
	if !w.Advance() {
		t.Fatal("advance should be accepted after a win")
	}
	if w.Level != 2 || w.Phase != PhasePlaying {
		t.Errorf("expected level 2 playing, got %d %s", w.Level, w.Phase)
	}
	if p.Score != 700 || p.Lives != 2 || p.Mods.StarCount != 2 {
		t.Error("score, lives and upgrades should carry over")
	}
	if p.Kills != 0 {
		t.Error("per-level kills should reset")
	}
	if w.Spawner.Spawned() != 0 || w.Spawner.Total() != w.cfg.EnemiesPerLevel {
		t.Error("spawner should be fresh")
	}
}

func TestRestartAfterDefeat(t *testing.T) {
	w := newTestWorld()
	p := addTestPlayer(w, 1, Cell{9, 9})
	p.Score = 1500
	p.Lives = 0
	w.Level = 4
	w.destroyTank(p, nil, false)
	w.evaluate()

	if w.Advance() {
		t.Error("advance should be refused after a loss")
	}
	if !w.Restart() {
		t.Fatal("restart should be accepted after a loss")
	}
	np := w.Player(1)
	if w.Level != 1 || np.Score != 0 || np.Lives != w.cfg.StartingLives || !np.Alive {
		t.Errorf("restart should reset everything, level=%d score=%d lives=%d", w.Level, np.Score, np.Lives)
	}
	if np.Nickname != "tester" {
		t.Error("nickname should survive a restart")
	}
}

func TestSpawnerPlan(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSpawner(cfg, 1, rand.New(rand.NewSource(9)))

	if s.Total() != 20 || s.Remaining() != 20 || s.AllSpawned() {
		t.Fatal("fresh spawner should have 20 waiting")
	}
	if s.plan[19] != ArchetypeBoss {
		t.Errorf("last enemy should be the boss, got %s", s.plan[19])
	}
	for i, a := range s.plan[:19] {
		if a == ArchetypeBoss || a == ArchetypePlayer {
			t.Errorf("slot %d has archetype %s", i, a)
		}
	}
	for _, i := range []int{3, 10, 17} {
		if !s.carriers[i] {
			t.Errorf("enemy %d should carry a power-up", i+1)
		}
	}
}

func TestSpawnerPacing(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSpawner(cfg, 1, rand.New(rand.NewSource(9)))

	if !s.Due(0) {
		t.Fatal("first spawn should be due at once")
	}
	if s.Due(cfg.MaxEnemiesOnField) {
		t.Error("full field should hold spawns back")
	}
	s.Commit(0)
	for i := 0; i < cfg.SpawnIntervalTicks-1; i++ {
		if s.Due(0) {
			t.Fatalf("spawn due early at tick %d", i)
		}
	}
	if !s.Due(0) {
		t.Error("spawn should be due after the interval")
	}
	if s.Points()[0] != EnemySpawns[1] {
		t.Error("spawn points should rotate")
	}
}

func TestWorldSpawnsEnemies(t *testing.T) {
	w := NewWorld(DefaultConfig(), 3)
	w.Step()
	if len(w.Enemies) != 1 {
		t.Fatalf("expected 1 enemy after the first tick, got %d", len(w.Enemies))
	}
	if w.Spawner.Remaining() != 19 {
		t.Errorf("expected 19 remaining, got %d", w.Spawner.Remaining())
	}
}

func TestIceSlide(t *testing.T) {
	w := newTestWorld()
	for c := 3; c < 20; c++ {
		w.Terrain.Set(9, c, TileIce)
	}
	p := addTestPlayer(w, 1, Cell{9, 6})
	p.Dir = DirRight
	x0 := p.X

	w.SetCommand(1, Command{Input: Input{Right: true}})
	w.Step()
	step := w.tankSpeed(p)
	if p.X != x0+step {
		t.Fatalf("expected x %v after one driven tick, got %v", x0+step, p.X)
	}
	for i := 0; i < 20; i++ {
		w.SetCommand(1, Command{})
		w.Step()
	}
	if p.X != x0+step+IceSlideDistance {
		t.Errorf("expected a one-tile slide to %v, got %v", x0+step+IceSlideDistance, p.X)
	}
}

func TestRemoteCommandIsAdopted(t *testing.T) {
	w := newTestWorld()
	p := addTestPlayer(w, 1, Cell{9, 6})

	w.SetCommand(1, Command{Remote: true, X: 300, Y: 200, Dir: DirLeft})
	w.applyCommands()
	if p.X != 300 || p.Y != 200 || p.Dir != DirLeft {
		t.Errorf("remote position should be adopted, got (%v,%v) %s", p.X, p.Y, p.Dir)
	}

	w.SetCommand(1, Command{Remote: true, X: -50, Y: 200, Dir: DirLeft})
	w.applyCommands()
	if p.X != 300 {
		t.Error("off-map remote position should be ignored")
	}

	for _, bad := range []Command{
		{Remote: true, X: math.NaN(), Y: 100, Dir: DirUp},
		{Remote: true, X: 100, Y: math.Inf(1), Dir: DirUp},
	} {
		w.SetCommand(1, bad)
		w.applyCommands()
		if p.X != 300 || p.Y != 200 {
			t.Errorf("non-finite remote position should be ignored, got (%v,%v)", p.X, p.Y)
		}
	}
}

func TestPausedPlayerIsSafe(t *testing.T) {
	w := newTestWorld()
	p := addTestPlayer(w, 1, Cell{9, 9})
	w.SetCommand(1, Command{Input: Input{Paused: true, Right: true}})
	x0 := p.X
	w.applyCommands()

	if p.X != x0 {
		t.Error("paused player should not move")
	}
	if res := p.TakeHit(1); !res.Absorbed {
		t.Error("paused player should not take damage")
	}
}

func TestSimulationIsDeterministic(t *testing.T) {
	run := func() *World {
		w := NewWorld(DefaultConfig(), 42)
		w.AddPlayer(1, "a")
		for i := 0; i < 900; i++ {
			in := Input{Shoot: i%15 == 0}
			switch (i / 60) % 4 {
			case 0:
				in.Up = true
			case 1:
				in.Left = true
			case 2:
				in.Right = true
			}
			w.SetCommand(1, Command{Input: in})
			w.Step()
		}
		return w
	}
	a, b := run(), run()
	if !reflect.DeepEqual(a.Snapshot(), b.Snapshot()) {
		t.Error("same seed and inputs should give the same world")
	}
}
