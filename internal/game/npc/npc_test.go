package npc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/expedition/internal/game/character"
	"github.com/cory-johannsen/expedition/internal/game/dice"
	"github.com/cory-johannsen/expedition/internal/game/grid"
	"github.com/cory-johannsen/expedition/internal/game/item"
	"github.com/cory-johannsen/expedition/internal/game/npc"
)

// queueSource feeds a fixed value sequence into a Roller.
type queueSource struct {
	values []int
	i      int
}

func (s *queueSource) Intn(n int) int {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v % n
}

func testSheet() character.Combatant {
	return character.Combatant{
		Name:      "Test Hostile",
		Symbol:    "E",
		Health:    100,
		MaxHealth: 100,
		Attack:    10,
		Defense:   5,
		Agility:   5,
	}
}

func TestNew_CoercesLevel(t *testing.T) {
	hostile := npc.New(testSheet(), 0, false, nil)
	assert.Equal(t, 1, hostile.Level)
	assert.NotEmpty(t, hostile.ID)
	assert.Nil(t, hostile.Position)
	assert.False(t, hostile.Placed())

	other := npc.New(testSheet(), -3, true, nil)
	assert.Equal(t, 1, other.Level)
	assert.NotEqual(t, hostile.ID, other.ID)
}

func TestNPC_CellKind(t *testing.T) {
	assert.Equal(t, grid.CellNPC, npc.New(testSheet(), 1, false, nil).CellKind())
	assert.Equal(t, grid.CellBoss, npc.New(testSheet(), 1, true, nil).CellKind())
}

func TestNPC_CreditValue(t *testing.T) {
	regular := npc.New(testSheet(), 3, false, nil)
	assert.Equal(t, 30, regular.CreditValue())

	boss := npc.New(testSheet(), 3, true, nil)
	assert.Equal(t, 60, boss.CreditValue())

	// A hand-built hostile can hold an invalid level; the value still
	// floors at 1.
	broken := &npc.NPC{Combatant: testSheet(), Level: 0}
	assert.Equal(t, 1, broken.CreditValue())
}

func TestNPC_ExperienceValue(t *testing.T) {
	// 0.2*100 + 2*10 + 2*5 + 1*5 = 55.
	hostile := npc.New(testSheet(), 1, false, nil)
	assert.Equal(t, 55, hostile.ExperienceValue())

	boss := npc.New(testSheet(), 1, true, nil)
	assert.Equal(t, 110, boss.ExperienceValue())

	scaled := npc.New(testSheet(), 2, false, nil)
	assert.Equal(t, 60, scaled.ExperienceValue())
}

func TestNPC_ExperienceValue_FloorAppliesAfterDoubling(t *testing.T) {
	weak := character.Combatant{Name: "Weakling", Symbol: "E", Health: 10, MaxHealth: 10, Attack: 1, Defense: 1, Agility: 1}

	hostile := npc.New(weak, 5, false, nil)
	assert.Equal(t, 100, hostile.ExperienceValue())

	// Doubling a stat value below the floor still lands on the floor.
	boss := npc.New(weak, 5, true, nil)
	assert.Equal(t, 100, boss.ExperienceValue())
}

func TestNPC_ExperienceValue_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		sheet := character.Combatant{
			Name:      "Any",
			Symbol:    "E",
			MaxHealth: rapid.IntRange(1, 500).Draw(rt, "maxHealth"),
			Attack:    rapid.IntRange(1, 60).Draw(rt, "attack"),
			Defense:   rapid.IntRange(1, 40).Draw(rt, "defense"),
			Agility:   rapid.IntRange(1, 40).Draw(rt, "agility"),
		}
		level := rapid.IntRange(1, 12).Draw(rt, "level")
		hostile := npc.New(sheet, level, false, nil)
		boss := npc.New(sheet, level, true, nil)

		require.GreaterOrEqual(rt, hostile.ExperienceValue(), 20*level)
		require.GreaterOrEqual(rt, boss.ExperienceValue(), hostile.ExperienceValue())
		require.GreaterOrEqual(rt, hostile.CreditValue(), 1)
		require.Equal(rt, 2*hostile.CreditValue(), boss.CreditValue())
	})
}

func TestNPC_RollDrops(t *testing.T) {
	catalog := item.DefaultCatalog()
	drops := []npc.Drop{
		{Item: catalog.MustGet(item.SmallPotionID), Chance: 25},
		{Item: catalog.MustGet(item.MediumPotionID), Chance: 15},
	}

	// 24 < 25 hits, 15 >= 15 misses.
	roller := dice.NewRoller(&queueSource{values: []int{24, 15}}, zap.NewNop())
	loot := npc.New(testSheet(), 1, false, drops).RollDrops(roller)
	require.Len(t, loot, 1)
	assert.Equal(t, item.SmallPotionID, loot[0].ID)

	// 25 >= 25 misses, 14 < 15 hits.
	roller = dice.NewRoller(&queueSource{values: []int{25, 14}}, zap.NewNop())
	loot = npc.New(testSheet(), 1, false, drops).RollDrops(roller)
	require.Len(t, loot, 1)
	assert.Equal(t, item.MediumPotionID, loot[0].ID)
}

func TestNPC_RollDrops_GuaranteedConsumesNoRoll(t *testing.T) {
	catalog := item.DefaultCatalog()
	drops := []npc.Drop{
		{Item: catalog.MustGet(item.LargePotionID), Chance: 100},
		{Item: catalog.MustGet(item.SmallPotionID), Chance: 50},
	}

	// A single scripted value: the guaranteed entry must not draw, leaving
	// the 10 for the 50% entry.
	roller := dice.NewRoller(&queueSource{values: []int{10}}, zap.NewNop())
	loot := npc.New(testSheet(), 1, false, drops).RollDrops(roller)
	require.Len(t, loot, 2)
	assert.Equal(t, item.LargePotionID, loot[0].ID)
	assert.Equal(t, item.SmallPotionID, loot[1].ID)
}

func TestNPC_RollDrops_EmptyTable(t *testing.T) {
	roller := dice.NewRoller(dice.NewCryptoSource(), zap.NewNop())
	assert.Empty(t, npc.New(testSheet(), 1, false, nil).RollDrops(roller))
}
