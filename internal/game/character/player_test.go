package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/expedition/internal/game/character"
)

// TestNewPlayer verifies the canonical starting sheet.
func TestNewPlayer(t *testing.T) {
	p := character.NewPlayer("Rook")
	assert.Equal(t, "Rook", p.Name)
	assert.Equal(t, "@", p.Symbol)
	assert.Equal(t, 100, p.Health)
	assert.Equal(t, 100, p.MaxHealth)
	assert.Equal(t, 10, p.Attack)
	assert.Equal(t, 5, p.Defense)
	assert.Equal(t, 5, p.Agility)
	assert.Equal(t, 1000, p.Credits)
	assert.Equal(t, 50, p.Energy)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 100, p.ExperienceToNext)
	assert.Empty(t, p.Inventory)
}

// TestPlayer_GainExperience_SingleLevel verifies one level-up and its stat
// growth.
func TestPlayer_GainExperience_SingleLevel(t *testing.T) {
	p := character.NewPlayer("Rook")
	p.Health = 40 // mid-run damage; level-up fully heals

	ups := p.GainExperience(120)
	require.Len(t, ups, 1)
	assert.Equal(t, 2, ups[0].NewLevel)

	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 20, p.Experience, "120 - 100 threshold")
	assert.Equal(t, 200, p.ExperienceToNext)
	assert.Equal(t, 120, p.MaxHealth)
	assert.Equal(t, 120, p.Health, "level-up heals to full")
	assert.Equal(t, 15, p.Attack)
	assert.Equal(t, 8, p.Defense)
	assert.Equal(t, 7, p.Agility)
	assert.Equal(t, 60, p.MaxEnergy)
	assert.Equal(t, 60, p.Energy, "level-up refills energy")
}

// TestPlayer_GainExperience_Cascade verifies multiple levels from one grant:
// 100 (to 2) + 200 (to 3) = 300 consumed, 50 left over.
func TestPlayer_GainExperience_Cascade(t *testing.T) {
	p := character.NewPlayer("Rook")
	ups := p.GainExperience(350)
	require.Len(t, ups, 2)
	assert.Equal(t, 3, p.Level)
	assert.Equal(t, 50, p.Experience)
	assert.Equal(t, 300, p.ExperienceToNext)
	assert.Equal(t, 2, p.Statistics.Get(character.StatLevelsGained))
	assert.Equal(t, 350, p.Statistics.Get(character.StatExperienceGained))
}

// TestPlayer_GainExperience_Property verifies the cascade always terminates
// below the next threshold and levels monotonically.
func TestPlayer_GainExperience_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := character.NewPlayer("Rook")
		grants := rapid.SliceOfN(rapid.IntRange(0, 1000), 1, 20).Draw(rt, "grants")

		level := p.Level
		for _, g := range grants {
			p.GainExperience(g)
			assert.Less(rt, p.Experience, p.ExperienceToNext)
			assert.GreaterOrEqual(rt, p.Level, level)
			assert.Equal(rt, p.Level*100, p.ExperienceToNext)
			level = p.Level
		}
	})
}

// TestLevelKeys verifies grant, lookup, idempotence, and ordering.
func TestLevelKeys(t *testing.T) {
	p := character.NewPlayer("Rook")
	assert.False(t, p.LevelKeys.Has(1))

	p.LevelKeys.Grant(3)
	p.LevelKeys.Grant(1)
	p.LevelKeys.Grant(3) // idempotent

	assert.True(t, p.LevelKeys.Has(1))
	assert.True(t, p.LevelKeys.Has(3))
	assert.False(t, p.LevelKeys.Has(2))
	assert.Equal(t, []int{1, 3}, p.LevelKeys.Sorted())
}

// TestStatistics verifies open-ended counter behavior.
func TestStatistics(t *testing.T) {
	s := make(character.Statistics)
	s.Increment(character.StatBattlesWon, 1)
	s.Increment(character.StatBattlesWon, 2)
	s.Increment("custom_counter", 7)

	assert.Equal(t, 3, s.Get(character.StatBattlesWon))
	assert.Equal(t, 7, s.Get("custom_counter"))
	assert.Equal(t, 0, s.Get(character.StatDeathCount))
}
