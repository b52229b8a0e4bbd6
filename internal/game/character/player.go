package character

import "sort"

// Default starting values for a new player.
const (
	startingHealth  = 100
	startingAttack  = 10
	startingDefense = 5
	startingAgility = 5
	startingCredits = 1000
	startingEnergy  = 50
)

// Per-level growth applied by LevelUp.
const (
	levelUpHealth    = 20
	levelUpAttack    = 5
	levelUpDefense   = 3
	levelUpAgility   = 2
	levelUpMaxEnergy = 10
)

// Player is the human-controlled combatant. One Player persists for the
// whole expedition; it is mutated in place and snapshotted at save points.
type Player struct {
	Combatant

	Level            int `json:"level"`
	Experience       int `json:"experience"`
	ExperienceToNext int `json:"experience_to_next"`

	Statistics Statistics `json:"statistics"`
	LevelKeys  LevelKeys  `json:"level_keys"`
}

// LevelUp records one level gained by GainExperience.
type LevelUp struct {
	NewLevel  int
	MaxHealth int // MaxHealth after the gain
}

// NewPlayer creates a level-1 player with the standard starting stats.
// Starting items are granted by the expedition layer from the difficulty
// loadout, not here.
//
// Precondition: name must be non-empty.
func NewPlayer(name string) *Player {
	return &Player{
		Combatant: Combatant{
			Name:      name,
			Symbol:    "@",
			Health:    startingHealth,
			MaxHealth: startingHealth,
			Attack:    startingAttack,
			Defense:   startingDefense,
			Agility:   startingAgility,
			Credits:   startingCredits,
			Energy:    startingEnergy,
			MaxEnergy: startingEnergy,
		},
		Level:            1,
		ExperienceToNext: 100,
		Statistics:       make(Statistics),
		LevelKeys:        make(LevelKeys),
	}
}

// GainExperience credits experience and applies every level-up it affords.
// Each level grants +20 max health (with a full heal), +5 attack, +3
// defense, +2 agility, and +10 max energy (with an energy refill); the next
// threshold becomes level*100.
//
// Precondition: amount >= 0.
// Postcondition: Experience < ExperienceToNext; one LevelUp record is
// returned per level gained, in order.
func (p *Player) GainExperience(amount int) []LevelUp {
	p.Experience += amount
	p.Statistics.Increment(StatExperienceGained, amount)

	var ups []LevelUp
	for p.Experience >= p.ExperienceToNext {
		p.Experience -= p.ExperienceToNext
		p.levelUp()
		p.ExperienceToNext = p.Level * 100
		ups = append(ups, LevelUp{NewLevel: p.Level, MaxHealth: p.MaxHealth})
	}
	if len(ups) > 0 {
		p.Statistics.Increment(StatLevelsGained, len(ups))
	}
	return ups
}

func (p *Player) levelUp() {
	p.Level++
	p.MaxHealth += levelUpHealth
	p.Health = p.MaxHealth
	p.Attack += levelUpAttack
	p.Defense += levelUpDefense
	p.Agility += levelUpAgility
	p.MaxEnergy += levelUpMaxEnergy
	p.Energy = p.MaxEnergy
}

// LevelKeys is the set of dungeon levels whose boss gate has been cleared.
type LevelKeys map[int]struct{}

// Has reports whether the gate for level is cleared.
func (k LevelKeys) Has(level int) bool {
	_, ok := k[level]
	return ok
}

// Grant marks the gate for level as cleared. Granting an already-held key is
// a no-op.
func (k LevelKeys) Grant(level int) {
	k[level] = struct{}{}
}

// Sorted returns the held keys in ascending order.
func (k LevelKeys) Sorted() []int {
	out := make([]int, 0, len(k))
	for level := range k {
		out = append(out, level)
	}
	sort.Ints(out)
	return out
}
