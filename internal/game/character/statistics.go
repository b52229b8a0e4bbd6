package character

// Statistic names tracked for every player. The set is open: consumers may
// increment names not listed here and they persist like any other counter.
const (
	StatBattlesWon       = "battles_won"
	StatBattlesLost      = "battles_lost"
	StatItemsUsed        = "items_used"
	StatDistanceTraveled = "distance_traveled"
	StatEnemiesDefeated  = "enemies_defeated"
	StatBossesDefeated   = "bosses_defeated"
	StatDamageDealt      = "damage_dealt"
	StatDamageTaken      = "damage_taken"
	StatCreditsEarned    = "credits_earned"
	StatCreditsSpent     = "credits_spent"
	StatLevelsGained     = "levels_gained"
	StatPotionsUsed      = "potions_used"
	StatDeathCount       = "death_count"
	StatExperienceGained = "experience_gained"
	StatPortalsUsed      = "portals_used"
	StatRevivalsUsed     = "revivals_used"
)

// Statistics is the open-ended set of per-player counters.
type Statistics map[string]int

// Increment adds amount to the named counter, creating it when absent.
func (s Statistics) Increment(name string, amount int) {
	s[name] += amount
}

// Get returns the named counter, zero when never incremented.
func (s Statistics) Get(name string) int {
	return s[name]
}
