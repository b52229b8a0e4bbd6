package battle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/expedition/internal/game/battle"
	"github.com/cory-johannsen/expedition/internal/game/character"
	"github.com/cory-johannsen/expedition/internal/game/item"
	"github.com/cory-johannsen/expedition/internal/game/npc"
)

func newGuardian(name string, maxHealth, attack, defense, agility, credits int) *npc.NPC {
	return npc.New(character.Combatant{
		Name:      name,
		Symbol:    "B",
		Health:    maxHealth,
		MaxHealth: maxHealth,
		Attack:    attack,
		Defense:   defense,
		Agility:   agility,
		Credits:   credits,
	}, 1, true, nil)
}

func TestOrchestrator_FightGuardians_CarriesHealthBetweenFights(t *testing.T) {
	player := character.NewPlayer("Aria")
	player.Attack = 20
	first := newGuardian("First Guardian", 30, 1, 0, 1, 100)
	second := newGuardian("Second Guardian", 10, 1, 0, 1, 100)
	combo := battle.NewComboState()
	src := &queueSource{values: []int{0, 99, 0, 99}}
	o := newTestOrchestrator(battle.Config{}, src, nil)

	report := o.FightGuardians(player, []*npc.NPC{first, second}, 0, combo, nil)

	require.Equal(t, battle.PlayerVictory, report.Result)
	assert.Equal(t, 2, report.GuardiansDefeated)
	assert.Equal(t, 3, report.Rounds)
	require.Len(t, report.Battles, 2)

	assert.Equal(t, 100, report.Battles[0].PlayerStartHealth)
	assert.Equal(t, 99, report.Battles[0].PlayerEndHealth)
	assert.Equal(t, 99, report.Battles[1].PlayerStartHealth)
	assert.Equal(t, 99, report.PlayerEndHealth)
	assert.Equal(t, 99, player.Health)

	assert.Equal(t, 17, report.CreditsGained)
	assert.Equal(t, 40, report.ExperienceGained)
	assert.Equal(t, 0, report.RevivalsUsed)
	assert.Empty(t, report.Loot)
	assert.Equal(t, 2, combo.Count)
	assert.Equal(t, 2, player.Statistics.Get(character.StatBossesDefeated))

	require.NotNil(t, report.Bonus)
	assert.Equal(t, 500, report.Bonus.Credits)
	assert.Empty(t, report.Bonus.StatBoosted)
	assert.Equal(t, 20, report.Bonus.EnergyRestored)
	assert.Equal(t, 4, report.Bonus.MaxEnergyGained)
	assert.Empty(t, report.Bonus.Items)

	assert.Equal(t, 1517, player.Credits)
	assert.Equal(t, 54, player.Energy)
	assert.Equal(t, 54, player.MaxEnergy)
	assert.Equal(t, 517, player.Statistics.Get(character.StatCreditsEarned))
}

func TestOrchestrator_FightGuardians_DefeatStopsSequence(t *testing.T) {
	player := character.NewPlayer("Aria")
	wall := newGuardian("First Guardian", 1000, 200, 50, 5, 0)
	unreached := newGuardian("Second Guardian", 10, 1, 0, 1, 100)
	combo := battle.NewComboState()
	o := newTestOrchestrator(battle.Config{}, &queueSource{values: []int{0}}, nil)

	var seen []string
	report := o.FightGuardians(player, []*npc.NPC{wall, unreached}, 2, combo, func(next *npc.NPC) {
		seen = append(seen, next.Name)
	})

	assert.Equal(t, battle.PlayerDefeat, report.Result)
	assert.Equal(t, 0, report.GuardiansDefeated)
	require.Len(t, report.Battles, 1)
	assert.Nil(t, report.Bonus)
	assert.Equal(t, 0, report.PlayerEndHealth)
	assert.Equal(t, []string{"First Guardian"}, seen)

	assert.Equal(t, 0, combo.Count)
	assert.Equal(t, 920, player.Credits)
	assert.Equal(t, 1, player.Statistics.Get(character.StatBattlesLost))
}

func TestOrchestrator_FightGuardians_InterludeBeforeEachFight(t *testing.T) {
	player := character.NewPlayer("Aria")
	player.Attack = 20
	first := newGuardian("First Guardian", 10, 1, 0, 1, 0)
	second := newGuardian("Second Guardian", 10, 1, 0, 1, 0)
	o := newTestOrchestrator(battle.Config{}, &queueSource{values: []int{99}}, nil)

	var seen []string
	report := o.FightGuardians(player, []*npc.NPC{first, second}, 0, battle.NewComboState(), func(next *npc.NPC) {
		seen = append(seen, next.Name)
	})

	require.Equal(t, battle.PlayerVictory, report.Result)
	assert.Equal(t, []string{"First Guardian", "Second Guardian"}, seen)
}

func TestOrchestrator_FightGuardians_BonusScalesWithDungeonLevel(t *testing.T) {
	player := character.NewPlayer("Aria")
	player.Attack = 20
	first := newGuardian("First Guardian", 10, 1, 0, 1, 100)
	second := newGuardian("Second Guardian", 10, 1, 0, 1, 100)
	src := &queueSource{values: []int{0, 0, 0, 0, 0, 0, 0, 0, 99}}
	o := newTestOrchestrator(battle.Config{}, src, nil)

	report := o.FightGuardians(player, []*npc.NPC{first, second}, 5, battle.NewComboState(), nil)

	require.Equal(t, battle.PlayerVictory, report.Result)
	require.NotNil(t, report.Bonus)
	assert.Equal(t, 750, report.Bonus.Credits)
	assert.Equal(t, "max_health", report.Bonus.StatBoosted)
	assert.Equal(t, 15, report.Bonus.StatAmount)
	assert.Equal(t, 30, report.Bonus.EnergyRestored)
	assert.Equal(t, 6, report.Bonus.MaxEnergyGained)

	assert.Equal(t, 115, player.MaxHealth)
	assert.Equal(t, 115, player.Health)
	assert.Equal(t, 56, player.Energy)
	assert.Equal(t, 56, player.MaxEnergy)
	assert.Equal(t, 1767, player.Credits)

	require.Len(t, report.Bonus.Items, 2)
	assert.Equal(t, item.SmallPotionID, report.Bonus.Items[0].ID)
	assert.Equal(t, item.PhoenixDownID, report.Bonus.Items[1].ID)
	require.Len(t, player.Inventory, 2)
}

func TestOrchestrator_FightGuardians_AttackBoost(t *testing.T) {
	player := character.NewPlayer("Aria")
	player.Attack = 20
	lone := newGuardian("First Guardian", 10, 1, 0, 1, 0)
	src := &queueSource{values: []int{0, 0, 1, 0, 0, 99}}
	o := newTestOrchestrator(battle.Config{}, src, nil)

	report := o.FightGuardians(player, []*npc.NPC{lone}, 0, battle.NewComboState(), nil)

	require.Equal(t, battle.PlayerVictory, report.Result)
	require.NotNil(t, report.Bonus)
	assert.Equal(t, "attack", report.Bonus.StatBoosted)
	assert.Equal(t, 2, report.Bonus.StatAmount)
	assert.Equal(t, 22, player.Attack)
}
