package battle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/expedition/internal/game/battle"
)

func TestComboState_VictorySequence(t *testing.T) {
	combo := battle.NewComboState()
	assert.Equal(t, 0, combo.Count)
	assert.InDelta(t, 1.0, combo.Multiplier, 1e-9)

	combo.RecordVictory()
	assert.Equal(t, 1, combo.Count)
	assert.InDelta(t, 1.1, combo.Multiplier, 1e-9)

	combo.RecordVictory()
	assert.InDelta(t, 1.2, combo.Multiplier, 1e-9)

	combo.RecordVictory()
	assert.InDelta(t, 1.3, combo.Multiplier, 1e-9)
}

func TestComboState_ResetAfterDefeat(t *testing.T) {
	combo := battle.NewComboState()
	combo.RecordVictory()
	combo.RecordVictory()

	combo.Reset()
	assert.Equal(t, 0, combo.Count)
	assert.InDelta(t, 1.0, combo.Multiplier, 1e-9)
	assert.Equal(t, 0, combo.Bonus(1000))
}

func TestComboState_Bonus(t *testing.T) {
	combo := battle.NewComboState()
	assert.Equal(t, 0, combo.Bonus(30))

	combo.RecordVictory()
	assert.Equal(t, 3, combo.Bonus(30))

	combo.RecordVictory()
	assert.Equal(t, 5, combo.Bonus(30)) // 30*(1.2-1.0) lands just under 6 in float64

	combo.RecordVictory()
	assert.Equal(t, 30, combo.Bonus(100))
}

func TestComboState_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		combo := battle.NewComboState()
		wins := rapid.IntRange(1, 50).Draw(rt, "wins")
		for i := 0; i < wins; i++ {
			prev := combo.Multiplier
			combo.RecordVictory()
			require.Greater(rt, combo.Multiplier, prev)
		}
		require.Equal(rt, wins, combo.Count)
		require.InDelta(rt, 1.0+0.1*float64(wins), combo.Multiplier, 1e-9)
		require.GreaterOrEqual(rt, combo.Bonus(100), 0)
	})
}
