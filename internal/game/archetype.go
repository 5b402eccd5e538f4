package game

// Archetype identifies a tank kind. Values are wire-stable.
type Archetype int

const (
	ArchetypePlayer Archetype = 0
	ArchetypeBasic  Archetype = 1
	ArchetypeFast   Archetype = 2
	ArchetypePower  Archetype = 3
	ArchetypeArmor  Archetype = 4
	ArchetypeBoss   Archetype = 5
)

// ArchetypeDef holds the stats for an archetype
type ArchetypeDef struct {
	Name         string
	MaxHealth    int
	Speed        float64 // pixels per tick
	BulletSpeed  float64
	BulletPower  int
	BulletSize   float64
	ShootMin     int // AI shoot re-arm range in ticks
	ShootMax     int
	Score        int
	DropOnHit    bool // every hit drops a power-up
	FreezeImmune bool
	Crusher      bool // contact destroys tanks and the base
}

var Archetypes = [6]ArchetypeDef{
	{
		Name: "player", MaxHealth: 1, Speed: 2,
		BulletSpeed: 5, BulletPower: 1, BulletSize: 8,
	},
	{
		Name: "basic", MaxHealth: 1, Speed: 1,
		BulletSpeed: 5, BulletPower: 1, BulletSize: 8,
		ShootMin: 60, ShootMax: 120, Score: 100,
	},
	{
		Name: "fast", MaxHealth: 1, Speed: 2,
		BulletSpeed: 5, BulletPower: 1, BulletSize: 8,
		ShootMin: 60, ShootMax: 120, Score: 200,
	},
	// Power: every hit sheds a power-up
	{
		Name: "power", MaxHealth: 2, Speed: 1,
		BulletSpeed: 7, BulletPower: 1, BulletSize: 8,
		ShootMin: 40, ShootMax: 90, Score: 300, DropOnHit: true,
	},
	{
		Name: "armor", MaxHealth: 4, Speed: 0.8,
		BulletSpeed: 5, BulletPower: 1, BulletSize: 8,
		ShootMin: 50, ShootMax: 100, Score: 400,
	},
	// Boss: big steel-breaking shells, crushes on contact, ignores clocks
	{
		Name: "boss", MaxHealth: 10, Speed: 0.8,
		BulletSpeed: 6, BulletPower: 2, BulletSize: 12,
		ShootMin: 30, ShootMax: 60, Score: 1000,
		FreezeImmune: true, Crusher: true,
	},
}

// Valid reports whether a is a known archetype
func (a Archetype) Valid() bool {
	return a >= ArchetypePlayer && int(a) < len(Archetypes)
}

// GetArchetypeDef returns the definition for an archetype
func GetArchetypeDef(a Archetype) ArchetypeDef {
	if !a.Valid() {
		return Archetypes[ArchetypeBasic]
	}
	return Archetypes[a]
}

func (a Archetype) String() string {
	return GetArchetypeDef(a).Name
}
