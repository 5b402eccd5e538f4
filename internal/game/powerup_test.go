package game

import "testing"

func dropAt(w *World, kind PowerUpKind, c Cell) *PowerUp {
	p := NewPowerUp(w.newID(), kind, c, w.cfg.PowerUpTicks)
	w.PowerUps = append(w.PowerUps, p)
	return p
}

func TestHelmetPickup(t *testing.T) {
	w := newTestWorld()
	p := addTestPlayer(w, 1, Cell{5, 5})
	dropAt(w, PowerHelmet, Cell{5, 5})

	w.updatePowerUps()
	if p.Mods.ShieldTicks != w.cfg.ShieldTicks {
		t.Errorf("expected shield %d, got %d", w.cfg.ShieldTicks, p.Mods.ShieldTicks)
	}
	if len(w.PowerUps) != 0 {
		t.Error("power-up should be consumed")
	}
	if p.Score != PickupScore {
		t.Errorf("expected pickup score %d, got %d", PickupScore, p.Score)
	}
}

func TestClockFreezesEnemiesButNotBoss(t *testing.T) {
	w := newTestWorld()
	addTestPlayer(w, 1, Cell{5, 5})
	dropAt(w, PowerClock, Cell{5, 5})
	basic := addTestEnemy(w, ArchetypeBasic, Cell{10, 3})
	boss := addTestEnemy(w, ArchetypeBoss, Cell{10, 20})

	w.updatePowerUps()
	if w.EnemyFreeze != w.cfg.FreezeTicks {
		t.Fatalf("expected freeze %d, got %d", w.cfg.FreezeTicks, w.EnemyFreeze)
	}
	bx, by := basic.X, basic.Y
	sx, sy := boss.X, boss.Y
	w.updateAI(basic)
	w.updateAI(boss)
	if basic.X != bx || basic.Y != by {
		t.Error("frozen enemy should not move")
	}
	if boss.X == sx && boss.Y == sy {
		t.Error("boss should ignore the freeze")
	}
}

func TestShovelProtectsThenReverts(t *testing.T) {
	w := newTestWorld()
	addTestPlayer(w, 1, Cell{5, 5})
	dropAt(w, PowerShovel, Cell{5, 5})
	w.updatePowerUps()

	ring := BaseRing[0]
	if w.Terrain.At(ring.Row, ring.Col) != TileSteel {
		t.Fatal("ring should turn to steel")
	}
	for i := 0; i < w.cfg.ProtectTicks-ProtectFlashTicks*5; i++ {
		w.Base.advance(w.Terrain)
	}
	if w.Terrain.At(ring.Row, ring.Col) != TileBrick {
		t.Error("ring should flash back to brick inside the final window")
	}
	for w.Base.ProtectTicks > 0 {
		w.Base.advance(w.Terrain)
	}
	for _, c := range BaseRing {
		if w.Terrain.At(c.Row, c.Col) != TileBrick {
			t.Errorf("ring cell %v should be brick after expiry", c)
		}
	}
}

func TestEnemyShovelStripsRing(t *testing.T) {
	w := newTestWorld()
	addTestEnemy(w, ArchetypeBasic, Cell{5, 5})
	dropAt(w, PowerShovel, Cell{5, 5})
	w.updatePowerUps()

	for _, c := range BaseRing {
		if w.Terrain.At(c.Row, c.Col) != TileEmpty {
			t.Errorf("ring cell %v should be stripped", c)
		}
	}
}

func TestGrenadeSparesBoss(t *testing.T) {
	w := newTestWorld()
	p := addTestPlayer(w, 1, Cell{5, 5})
	dropAt(w, PowerGrenade, Cell{5, 5})
	basic := addTestEnemy(w, ArchetypeArmor, Cell{10, 3})
	boss := addTestEnemy(w, ArchetypeBoss, Cell{10, 20})

	w.updatePowerUps()
	if basic.Alive {
		t.Error("grenade should destroy ordinary enemies")
	}
	if !boss.Alive || boss.Health != boss.MaxHealth-w.cfg.GrenadeBossDmg {
		t.Errorf("boss should survive with %d health, got alive=%v health=%d",
			boss.MaxHealth-w.cfg.GrenadeBossDmg, boss.Alive, boss.Health)
	}
	if p.Kills != 1 {
		t.Errorf("expected 1 kill credited, got %d", p.Kills)
	}
}

func TestUpgradePickupsStack(t *testing.T) {
	w := newTestWorld()
	p := addTestPlayer(w, 1, Cell{5, 5})
	for i := 0; i < 5; i++ {
		dropAt(w, PowerStar, Cell{5, 5})
		dropAt(w, PowerCar, Cell{5, 5})
		dropAt(w, PowerMachinegun, Cell{5, 5})
		for len(w.PowerUps) > 0 {
			w.updatePowerUps()
		}
	}
	if p.Mods.StarCount != MaxStars || p.Mods.CarCount != MaxCars || p.Mods.MachinegunCount != MaxMachineguns {
		t.Errorf("upgrades should cap, got %+v", p.Mods)
	}
	if p.SpeedMultiplier() != 1+CarSpeedStep*MaxCars {
		t.Errorf("unexpected speed multiplier %v", p.SpeedMultiplier())
	}
}

func TestTankPickupAddsLife(t *testing.T) {
	w := newTestWorld()
	p := addTestPlayer(w, 1, Cell{5, 5})
	lives := p.Lives
	dropAt(w, PowerTank, Cell{5, 5})
	w.updatePowerUps()
	if p.Lives != lives+1 {
		t.Errorf("expected %d lives, got %d", lives+1, p.Lives)
	}
}

func TestPowerUpExpires(t *testing.T) {
	w := newTestWorld()
	dropAt(w, PowerGun, Cell{5, 5})
	for i := 0; i < w.cfg.PowerUpTicks; i++ {
		w.updatePowerUps()
	}
	if len(w.PowerUps) != 0 {
		t.Error("power-up should expire")
	}
}

func TestEveryKindHasEffect(t *testing.T) {
	for k := PowerHelmet; k <= PowerMachinegun; k++ {
		e, ok := powerUpEffects[k]
		if !ok || e.onPlayer == nil || e.onEnemy == nil {
			t.Errorf("kind %d lacks an effect", k)
		}
	}
}
