package game

import "math/rand"

// Spawner paces enemy arrivals for one level. The archetype plan is
// drawn up front so a level's line-up is fixed by its seed.
type Spawner struct {
	plan       []Archetype
	carriers   map[int]bool
	spawned    int
	maxOnField int
	interval   int
	timer      int
	nextPoint  int
}

// NewSpawner builds the plan for level. Later slots and later levels lean
// toward tougher archetypes; the final slot is the boss when enabled.
func NewSpawner(cfg Config, level int, rng *rand.Rand) *Spawner {
	cfg = cfg.sanitized()
	s := &Spawner{
		plan:       make([]Archetype, cfg.EnemiesPerLevel),
		carriers:   make(map[int]bool, len(cfg.CarriersEvery)),
		maxOnField: cfg.MaxEnemiesOnField,
		interval:   cfg.SpawnIntervalTicks,
	}
	for _, i := range cfg.CarriersEvery {
		s.carriers[i-1] = true
	}
	n := len(s.plan)
	for i := range s.plan {
		if cfg.BossEnabled && i == n-1 {
			s.plan[i] = ArchetypeBoss
			continue
		}
		s.plan[i] = pickArchetype(rng, float64(i)/float64(n)+float64(level-1)*0.1)
	}
	return s
}

// pickArchetype draws a regular archetype with weights shifted by
// difficulty d (roughly 0 at the first enemy of level 1)
func pickArchetype(rng *rand.Rand, d float64) Archetype {
	weights := [...]struct {
		a Archetype
		w float64
	}{
		{ArchetypeBasic, max(0.05, 1-1.2*d)},
		{ArchetypeFast, 0.3 + 0.2*d},
		{ArchetypePower, 0.15 + 0.4*d},
		{ArchetypeArmor, max(0, d-0.3)},
	}
	total := 0.0
	for _, e := range weights {
		total += e.w
	}
	r := rng.Float64() * total
	for _, e := range weights {
		if r < e.w {
			return e.a
		}
		r -= e.w
	}
	return ArchetypeBasic
}

// Total is the number of enemies planned for the level
func (s *Spawner) Total() int { return len(s.plan) }

// Spawned is how many have entered the field
func (s *Spawner) Spawned() int { return s.spawned }

// Remaining is how many are still waiting to enter
func (s *Spawner) Remaining() int { return len(s.plan) - s.spawned }

// AllSpawned reports whether the whole plan has entered the field
func (s *Spawner) AllSpawned() bool { return s.spawned >= len(s.plan) }

// Due advances the timer and reports whether a spawn should be attempted
func (s *Spawner) Due(onField int) bool {
	if s.timer > 0 {
		s.timer--
	}
	return s.timer <= 0 && onField < s.maxOnField && !s.AllSpawned()
}

// Peek returns the next planned archetype and whether it carries a drop
func (s *Spawner) Peek() (Archetype, bool) {
	if s.AllSpawned() {
		return 0, false
	}
	return s.plan[s.spawned], s.carriers[s.spawned]
}

// Points returns spawn points in rotation order starting at the next one
func (s *Spawner) Points() []Cell {
	out := make([]Cell, 0, len(EnemySpawns))
	for i := range EnemySpawns {
		out = append(out, EnemySpawns[(s.nextPoint+i)%len(EnemySpawns)])
	}
	return out
}

// Commit records a spawn made at rotation offset used and re-arms the timer
func (s *Spawner) Commit(used int) {
	s.spawned++
	s.nextPoint = (s.nextPoint + used + 1) % len(EnemySpawns)
	s.timer = s.interval
}
