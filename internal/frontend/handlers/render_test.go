package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/expedition/internal/frontend/telnet"
	"github.com/cory-johannsen/expedition/internal/game/battle"
	"github.com/cory-johannsen/expedition/internal/game/character"
	"github.com/cory-johannsen/expedition/internal/game/expedition"
	"github.com/cory-johannsen/expedition/internal/game/item"
	"github.com/cory-johannsen/expedition/internal/storage/postgres"
)

func TestRenderMapShowsRowsAndLegend(t *testing.T) {
	rows := []string{"....", ".@E.", "..O.", "...."}
	out := telnet.StripANSI(RenderMap(rows, 1))
	assert.Contains(t, out, "Dungeon Level 1")
	assert.Contains(t, out, ".@E.")
	assert.Contains(t, out, "@ you")
	assert.Contains(t, out, "O portal")
}

func TestRenderStats(t *testing.T) {
	p := character.NewPlayer("Rin")
	p.LevelKeys.Grant(0)
	p.LevelKeys.Grant(2)
	out := telnet.StripANSI(RenderStats(p, 3, 1.3))
	assert.Contains(t, out, "Rin")
	assert.Contains(t, out, "HP: 100/100")
	assert.Contains(t, out, "Energy: 50/50")
	assert.Contains(t, out, "Credits: 1000")
	assert.Contains(t, out, "Victory streak: 3 (rewards x1.3)")
	assert.Contains(t, out, "Gate keys: L0, L2")
}

func TestRenderStatsHidesEmptyStreak(t *testing.T) {
	p := character.NewPlayer("Rin")
	out := telnet.StripANSI(RenderStats(p, 0, 1.0))
	assert.NotContains(t, out, "Victory streak")
}

func TestRenderInventoryNumbersItems(t *testing.T) {
	p := character.NewPlayer("Rin")
	p.AddItem(item.Item{ID: "p", Name: "Small Potion", Kind: item.KindPotion, Heal: 20})
	p.AddItem(item.Item{ID: "e", Name: "Energy Tonic", Kind: item.KindEnergy, Energy: 25})
	out := telnet.StripANSI(RenderInventory(p))
	assert.Contains(t, out, " 1  Small Potion [potion]")
	assert.Contains(t, out, " 2  Energy Tonic [energy]")
}

func TestRenderInventoryEmpty(t *testing.T) {
	p := character.NewPlayer("Rin")
	out := telnet.StripANSI(RenderInventory(p))
	assert.Contains(t, out, "Your pack is empty.")
}

func TestRenderOutcomeVictory(t *testing.T) {
	o := battle.Outcome{
		HostileName:      "Dire Wolf",
		Result:           battle.PlayerVictory,
		Rounds:           5,
		DamageDealt:      60,
		DamageTaken:      22,
		CreditsGained:    30,
		ExperienceGained: 90,
		LevelUps:         []character.LevelUp{{NewLevel: 2, MaxHealth: 120}},
		Loot:             []item.Item{{Name: "Small Potion"}},
	}
	out := telnet.StripANSI(RenderOutcome(o))
	assert.Contains(t, out, "You defeated Dire Wolf in 5 rounds!")
	assert.Contains(t, out, "Damage dealt: 60")
	assert.Contains(t, out, "+30 credits")
	assert.Contains(t, out, "+90 experience")
	assert.Contains(t, out, "now level 2")
	assert.Contains(t, out, "Loot: Small Potion")
}

func TestRenderOutcomeDefeat(t *testing.T) {
	o := battle.Outcome{
		HostileName: "Gate Warden",
		Result:      battle.PlayerDefeat,
		Rounds:      9,
		CreditsLost: 120,
	}
	out := telnet.StripANSI(RenderOutcome(o))
	assert.Contains(t, out, "You were defeated by Gate Warden after 9 rounds.")
	assert.Contains(t, out, "-120 credits")
}

func TestRenderHostileReport(t *testing.T) {
	r := expedition.HostileReport{
		Name:       "Cave Stalker",
		Symbol:     "E",
		Level:      3,
		Health:     35,
		MaxHealth:  50,
		Bounty:     30,
		Experience: 110,
	}
	out := telnet.StripANSI(RenderHostileReport(r))
	assert.Contains(t, out, "E Cave Stalker")
	assert.Contains(t, out, "Level 3   HP: 35/50")
	assert.Contains(t, out, "Bounty: 30 credits   Worth: 110 XP")
}

func TestRenderHostileReportBossTag(t *testing.T) {
	r := expedition.HostileReport{Name: "Gate Warden", Symbol: "B", Boss: true}
	out := telnet.StripANSI(RenderHostileReport(r))
	assert.Contains(t, out, "Gate Warden (BOSS)")
}

func TestRenderGateResultVictory(t *testing.T) {
	g := expedition.GateResult{
		Report: battle.BossReport{
			Result:            battle.PlayerVictory,
			DungeonLevel:      1,
			GuardiansDefeated: 2,
			Battles: []battle.Outcome{
				{HostileName: "First Warden", Result: battle.PlayerVictory, Rounds: 3},
				{HostileName: "Second Warden", Result: battle.PlayerVictory, Rounds: 4},
			},
			Bonus: &battle.BonusReward{Credits: 600, StatBoosted: "attack", StatAmount: 3},
		},
		KeyGranted:     true,
		GateExperience: 170,
		Traversal:      &expedition.PortalResult{Level: 1},
	}
	out := telnet.StripANSI(RenderGateResult(g))
	assert.Contains(t, out, "You defeated First Warden")
	assert.Contains(t, out, "You defeated Second Warden")
	assert.Contains(t, out, "The gate to level 1 yields!")
	assert.Contains(t, out, "+170 gate experience")
	assert.Contains(t, out, "+600 bonus credits")
	assert.Contains(t, out, "+3 attack")
	assert.Contains(t, out, "You step through to level 1.")
}

func TestRenderGateResultFailure(t *testing.T) {
	g := expedition.GateResult{
		Report: battle.BossReport{
			Result:            battle.PlayerDefeat,
			DungeonLevel:      1,
			GuardiansDefeated: 1,
			Battles: []battle.Outcome{
				{HostileName: "First Warden", Result: battle.PlayerVictory},
				{HostileName: "Second Warden", Result: battle.PlayerDefeat},
			},
		},
	}
	out := telnet.StripANSI(RenderGateResult(g))
	assert.Contains(t, out, "The gate holds. Guardians defeated: 1 of 2.")
	assert.NotContains(t, out, "yields")
}

func TestRenderItemResult(t *testing.T) {
	heal := expedition.ItemResult{Item: item.Item{Name: "Small Potion"}, HealthRestored: 20}
	assert.Contains(t, telnet.StripANSI(RenderItemResult(heal)), "recover 20 HP")

	tonic := expedition.ItemResult{Item: item.Item{Name: "Energy Tonic"}, EnergyRestored: 25}
	assert.Contains(t, telnet.StripANSI(RenderItemResult(tonic)), "recover 25 energy")

	revive := expedition.ItemResult{Item: item.Item{Name: "Phoenix Feather"}, HealthRestored: 120, Revived: true}
	assert.Contains(t, telnet.StripANSI(RenderItemResult(revive)), "back to your feet")
}

func TestRenderHistory(t *testing.T) {
	entries := []expedition.HistoryEntry{
		{Outcome: battle.Outcome{HostileName: "Dire Wolf", Result: battle.PlayerVictory, Rounds: 3, CreditsGained: 20, ExperienceGained: 80}},
		{Outcome: battle.Outcome{HostileName: "Gate Warden", Result: battle.PlayerDefeat, Rounds: 7}},
	}
	out := telnet.StripANSI(RenderHistory(entries))
	assert.Contains(t, out, "WON ")
	assert.Contains(t, out, "Dire Wolf")
	assert.Contains(t, out, "LOST")
	assert.Contains(t, out, "Gate Warden")
}

func TestRenderHistoryEmpty(t *testing.T) {
	out := telnet.StripANSI(RenderHistory(nil))
	assert.Contains(t, out, "No battles fought yet.")
}

func TestRenderSaves(t *testing.T) {
	infos := []postgres.SaveInfo{
		{Slot: 1, PlayerName: "Rin", PlayerLevel: 4, SavedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)},
	}
	out := telnet.StripANSI(RenderSaves(infos))
	assert.Contains(t, out, "slot 1: Rin (level 4), saved 2026-03-14 09:30")
}

func TestRenderBattleRecords(t *testing.T) {
	records := []postgres.HistoryRecord{
		{At: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
			Outcome: battle.Outcome{HostileName: "Dire Wolf", Result: battle.PlayerVictory, Rounds: 3}},
	}
	out := telnet.StripANSI(RenderBattleRecords(records))
	assert.Contains(t, out, "2026-03-14 09:30")
	assert.Contains(t, out, "Dire Wolf")

	assert.Contains(t, telnet.StripANSI(RenderBattleRecords(nil)), "No battle records yet.")
}
