package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Errorf("defaults should be valid: %v", err)
	}
}

func TestEnvOverridesDefaults(t *testing.T) {
	env := map[string]string{
		"TANK_MODE":         "host",
		"TANK_PORT":         "9000",
		"TANK_LIVES":        "5",
		"TANK_ENEMY_SPEED":  "1.5",
		"TANK_BULLET_WRAP":  "false",
		"TANK_SEED":         "1234",
		"TANK_UNRELATED_XY": "ignored",
	}
	c := Defaults()
	if err := c.fromEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatal(err)
	}
	if c.Mode != ModeHost || c.Port != 9000 || c.Seed != 1234 {
		t.Errorf("process settings not applied: %+v", c)
	}
	if c.Game.StartingLives != 5 || c.Game.EnemySpeedMultiplier != 1.5 || c.Game.BulletWrap {
		t.Errorf("game tuning not applied: %+v", c.Game)
	}
}

func TestEnvRejectsGarbage(t *testing.T) {
	c := Defaults()
	err := c.fromEnv(func(k string) string {
		if k == "TANK_PORT" {
			return "eighty"
		}
		return ""
	})
	if err == nil {
		t.Error("non-numeric port should fail")
	}
}

func TestFlagsWin(t *testing.T) {
	t.Setenv("TANK_PORT", "9000")
	t.Setenv("TANK_NICKNAME", "env")
	c, err := Load("", []string{"-port", "9100", "-mode", "join", "-join", "10.0.0.2:7777"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Port != 9100 || c.Mode != ModeJoin || c.JoinAddr != "10.0.0.2:7777" {
		t.Errorf("flags not applied: %+v", c)
	}
	if c.Nickname != "env" {
		t.Errorf("env should still apply where no flag is given, got %q", c.Nickname)
	}
}

func TestDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TANK_DB_TEST_ONLY=1\nTANK_PLAYERS=2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TANK_PLAYERS", "")
	os.Unsetenv("TANK_PLAYERS")
	t.Cleanup(func() { os.Unsetenv("TANK_DB_TEST_ONLY") })

	c, err := Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.Players != 2 {
		t.Errorf("expected players from .env, got %d", c.Players)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env"), nil); err != nil {
		t.Errorf("a missing .env is not an error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	bad := []func(*Config){
		func(c *Config) { c.Mode = "spectate" },
		func(c *Config) { c.Port = 0 },
		func(c *Config) { c.Players = 5 },
		func(c *Config) { c.LogLevel = "loud" },
		func(c *Config) { c.Nickname = "  " },
	}
	for i, mutate := range bad {
		c := Defaults()
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("case %d should be invalid", i)
		}
	}
}
