package game

// Cue names a gameplay moment an outside listener may react to, such as
// the audio layer or the match journal.
type Cue int

const (
	CueShot Cue = iota + 1
	CueExplosion
	CueBrickHit
	CueSteelHit
	CueTreeIgnite
	CuePowerUpAppear
	CuePowerUpPickup
	CueLifeUp
	CueEnemySpawn
	CuePlayerRespawn
	CueBaseDestroyed
	CueLevelStart
	CueVictory
	CueGameOver
)

var cueNames = map[Cue]string{
	CueShot:          "shot",
	CueExplosion:     "explosion",
	CueBrickHit:      "brick_hit",
	CueSteelHit:      "steel_hit",
	CueTreeIgnite:    "tree_ignite",
	CuePowerUpAppear: "powerup_appear",
	CuePowerUpPickup: "powerup_pickup",
	CueLifeUp:        "life_up",
	CueEnemySpawn:    "enemy_spawn",
	CuePlayerRespawn: "player_respawn",
	CueBaseDestroyed: "base_destroyed",
	CueLevelStart:    "level_start",
	CueVictory:       "victory",
	CueGameOver:      "game_over",
}

func (c Cue) String() string {
	if n, ok := cueNames[c]; ok {
		return n
	}
	return "unknown"
}

// Event is one emitted cue with context. Zero fields are unused.
type Event struct {
	Cue       Cue
	Tick      uint64
	Level     int
	Slot      int
	Archetype Archetype
	PowerUp   PowerUpKind
	X, Y      float64
}

// Listener receives events on the simulation goroutine. Implementations
// must not block.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to Listener
type ListenerFunc func(Event)

func (f ListenerFunc) OnEvent(e Event) { f(e) }
