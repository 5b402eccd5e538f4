package game

const (
	TickRate   = 60 // simulation ticks per second
	MaxPlayers = 4
)

// Config holds simulation tuning. It is passed explicitly into NewWorld and
// from there into the AI and spawner so tests can run distinct configurations
// side by side.
type Config struct {
	// Global multipliers applied on top of per-tank stats.
	PlayerSpeedMultiplier float64
	EnemySpeedMultiplier  float64
	PlayerShootMultiplier float64 // scales player shoot cooldown
	EnemyShootMultiplier  float64 // scales AI shoot re-arm intervals

	StartingLives      int
	PlayerShootTicks   int // base cooldown between player shots
	EnemiesPerLevel    int
	MaxEnemiesOnField  int
	SpawnIntervalTicks int
	BossEnabled        bool

	DropChance     float64 // chance of a power-up drop on an ordinary kill
	MaxPowerUps    int
	PowerUpTicks   int
	ShieldTicks    int
	RespawnShield  int
	FreezeTicks    int
	ProtectTicks   int
	FriendlyStun   int
	GrenadeBossDmg int

	AIBaseBias    float64 // probability a redirect heads toward the base
	AIMoveMin     int
	AIMoveMax     int
	AIStuckTicks  int
	BulletWrap    bool // bullets may tunnel through destroyed border tiles
	CarriersEvery []int
}

// DefaultConfig returns the stock tuning
func DefaultConfig() Config {
	return Config{
		PlayerSpeedMultiplier: 1,
		EnemySpeedMultiplier:  1,
		PlayerShootMultiplier: 1,
		EnemyShootMultiplier:  1,

		StartingLives:      3,
		PlayerShootTicks:   20,
		EnemiesPerLevel:    20,
		MaxEnemiesOnField:  4,
		SpawnIntervalTicks: 120,
		BossEnabled:        true,

		DropChance:     0.15,
		MaxPowerUps:    2,
		PowerUpTicks:   600,
		ShieldTicks:    600,
		RespawnShield:  180,
		FreezeTicks:    600,
		ProtectTicks:   1200,
		FriendlyStun:   120,
		GrenadeBossDmg: 3,

		AIBaseBias:    0.6,
		AIMoveMin:     30,
		AIMoveMax:     120,
		AIStuckTicks:  8,
		BulletWrap:    true,
		CarriersEvery: []int{4, 11, 18},
	}
}

// sanitized fills zero values with defaults so a partially built Config is usable
func (c Config) sanitized() Config {
	d := DefaultConfig()
	if c.PlayerSpeedMultiplier <= 0 {
		c.PlayerSpeedMultiplier = d.PlayerSpeedMultiplier
	}
	if c.EnemySpeedMultiplier <= 0 {
		c.EnemySpeedMultiplier = d.EnemySpeedMultiplier
	}
	if c.PlayerShootMultiplier <= 0 {
		c.PlayerShootMultiplier = d.PlayerShootMultiplier
	}
	if c.EnemyShootMultiplier <= 0 {
		c.EnemyShootMultiplier = d.EnemyShootMultiplier
	}
	if c.PlayerShootTicks <= 0 {
		c.PlayerShootTicks = d.PlayerShootTicks
	}
	if c.EnemiesPerLevel <= 0 {
		c.EnemiesPerLevel = d.EnemiesPerLevel
	}
	if c.MaxEnemiesOnField <= 0 {
		c.MaxEnemiesOnField = d.MaxEnemiesOnField
	}
	if c.SpawnIntervalTicks <= 0 {
		c.SpawnIntervalTicks = d.SpawnIntervalTicks
	}
	if c.MaxPowerUps <= 0 {
		c.MaxPowerUps = d.MaxPowerUps
	}
	if c.PowerUpTicks <= 0 {
		c.PowerUpTicks = d.PowerUpTicks
	}
	if c.AIMoveMin <= 0 {
		c.AIMoveMin = d.AIMoveMin
	}
	if c.AIMoveMax < c.AIMoveMin {
		c.AIMoveMax = c.AIMoveMin
	}
	if c.AIStuckTicks <= 0 {
		c.AIStuckTicks = d.AIStuckTicks
	}
	return c
}
