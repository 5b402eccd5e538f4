package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"tankbattle/internal/game"
)

// Run modes
const (
	ModeLocal = "local"
	ModeHost  = "host"
	ModeJoin  = "join"
)

const envPrefix = "TANK_"

// Config is the process configuration. Simulation tuning lives in Game
// and is handed to the world explicitly.
type Config struct {
	Mode     string
	Port     int
	JoinAddr string
	Nickname string
	Password string
	DBPath   string
	LogLevel string
	Seed     int64
	Players  int // local mode only
	QR       bool

	Game game.Config
}

// Defaults returns the configuration before any source is applied
func Defaults() Config {
	return Config{
		Mode:     ModeLocal,
		Port:     7777,
		Nickname: "Player",
		DBPath:   "tankbattle.db",
		LogLevel: "info",
		Players:  1,
		Game:     game.DefaultConfig(),
	}
}

// Load resolves defaults, then envFile (optional, usually ".env"), then
// TANK_* environment variables, then flags parsed from args
func Load(envFile string, args []string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	c := Defaults()
	if err := c.fromEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := c.fromFlags(args); err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

// fromEnv applies TANK_* variables; unset ones keep their value
func (c *Config) fromEnv(getenv func(string) string) error {
	var errs []error
	str := func(key string, dst *string) {
		if v := getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := getenv(envPrefix + key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v := getenv(envPrefix + key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = f
		}
	}
	boolean := func(key string, dst *bool) {
		if v := getenv(envPrefix + key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = b
		}
	}

	str("MODE", &c.Mode)
	num("PORT", &c.Port)
	str("JOIN", &c.JoinAddr)
	str("NICKNAME", &c.Nickname)
	str("PASSWORD", &c.Password)
	str("DB", &c.DBPath)
	str("LOG_LEVEL", &c.LogLevel)
	num("PLAYERS", &c.Players)
	boolean("QR", &c.QR)
	if v := getenv(envPrefix + "SEED"); v != "" {
		s, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSEED: %w", envPrefix, err))
		} else {
			c.Seed = s
		}
	}

	g := &c.Game
	float("PLAYER_SPEED", &g.PlayerSpeedMultiplier)
	float("ENEMY_SPEED", &g.EnemySpeedMultiplier)
	float("PLAYER_SHOOT", &g.PlayerShootMultiplier)
	float("ENEMY_SHOOT", &g.EnemyShootMultiplier)
	num("LIVES", &g.StartingLives)
	num("ENEMIES", &g.EnemiesPerLevel)
	num("MAX_ON_FIELD", &g.MaxEnemiesOnField)
	num("SPAWN_INTERVAL", &g.SpawnIntervalTicks)
	float("DROP_CHANCE", &g.DropChance)
	boolean("BOSS", &g.BossEnabled)
	boolean("BULLET_WRAP", &g.BulletWrap)
	num("FRIENDLY_STUN", &g.FriendlyStun)

	return errors.Join(errs...)
}

func (c *Config) fromFlags(args []string) error {
	fset := flag.NewFlagSet("tankbattle", flag.ContinueOnError)
	fset.StringVar(&c.Mode, "mode", c.Mode, "local, host or join")
	fset.IntVar(&c.Port, "port", c.Port, "match port when hosting")
	fset.StringVar(&c.JoinAddr, "join", c.JoinAddr, "host address to join (default: last joined)")
	fset.StringVar(&c.Nickname, "nick", c.Nickname, "nickname")
	fset.StringVar(&c.Password, "password", c.Password, "match password")
	fset.StringVar(&c.DBPath, "db", c.DBPath, "SQLite database path")
	fset.StringVar(&c.LogLevel, "log", c.LogLevel, "log level: debug, info, warn, error")
	fset.Int64Var(&c.Seed, "seed", c.Seed, "level seed (0 = random)")
	fset.IntVar(&c.Players, "players", c.Players, "local players (local mode)")
	fset.BoolVar(&c.QR, "qr", c.QR, "print a join QR code when hosting")
	fset.IntVar(&c.Game.StartingLives, "lives", c.Game.StartingLives, "starting lives")
	fset.IntVar(&c.Game.EnemiesPerLevel, "enemies", c.Game.EnemiesPerLevel, "enemies per level")
	return fset.Parse(args)
}

// Validate rejects settings no mode can run with
func (c Config) Validate() error {
	switch c.Mode {
	case ModeLocal, ModeHost, ModeJoin:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Players < 1 || c.Players > game.MaxPlayers {
		return fmt.Errorf("players must be 1-%d, got %d", game.MaxPlayers, c.Players)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if strings.TrimSpace(c.Nickname) == "" {
		return fmt.Errorf("nickname is empty")
	}
	return nil
}

// Level returns the parsed log level
func (c Config) Level() log.Level {
	l, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return l
}

// Addr is the listen address for hosting
func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }
