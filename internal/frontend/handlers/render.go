package handlers

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/expedition/internal/frontend/telnet"
	"github.com/cory-johannsen/expedition/internal/game/battle"
	"github.com/cory-johannsen/expedition/internal/game/character"
	"github.com/cory-johannsen/expedition/internal/game/expedition"
	"github.com/cory-johannsen/expedition/internal/storage/postgres"
)

// RenderMap formats the level's display rows as colored Telnet text with a
// legend underneath.
func RenderMap(rows []string, level int) string {
	var b strings.Builder
	b.WriteString("\r\n")
	b.WriteString(telnet.Colorf(telnet.BrightYellow, "=== Dungeon Level %d ===", level))
	b.WriteString("\r\n")
	for _, row := range rows {
		b.WriteString("  ")
		b.WriteString(telnet.Colorize(telnet.White, row))
		b.WriteString("\r\n")
	}
	b.WriteString(telnet.Colorize(telnet.Dim,
		"  @ you   E hostile   B boss   O portal   $ store   . empty"))
	b.WriteString("\r\n")
	return b.String()
}

// RenderStats formats the player sheet as a multi-line Telnet stats block.
//
// Precondition: p must be non-nil.
func RenderStats(p *character.Player, streak int, multiplier float64) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  %s%s%s  (level %d)\r\n", telnet.BrightWhite, p.Name, telnet.Reset, p.Level))
	b.WriteString(fmt.Sprintf("  HP: %d/%d   Energy: %d/%d\r\n", p.Health, p.MaxHealth, p.Energy, p.MaxEnergy))
	b.WriteString(fmt.Sprintf("  Attack: %d   Defense: %d   Agility: %d\r\n", p.TotalAttack(), p.Defense, p.Agility))
	b.WriteString(fmt.Sprintf("  Credits: %d   XP: %d/%d\r\n", p.Credits, p.Experience, p.ExperienceToNext))
	if streak > 0 {
		b.WriteString(telnet.Colorf(telnet.BrightMagenta, "  Victory streak: %d (rewards x%.1f)", streak, multiplier))
		b.WriteString("\r\n")
	}
	if keys := p.LevelKeys.Sorted(); len(keys) > 0 {
		labels := make([]string, 0, len(keys))
		for _, k := range keys {
			labels = append(labels, fmt.Sprintf("L%d", k))
		}
		b.WriteString(fmt.Sprintf("  Gate keys: %s\r\n", strings.Join(labels, ", ")))
	}
	return b.String()
}

// RenderInventory formats the player's consumables as numbered Telnet text.
// The numbers are what the use command takes.
func RenderInventory(p *character.Player) string {
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightWhite, "=== Inventory ==="))
	b.WriteString("\r\n")
	if len(p.Inventory) == 0 {
		b.WriteString(telnet.Colorize(telnet.Dim, "  Your pack is empty."))
		b.WriteString("\r\n")
		return b.String()
	}
	for i, it := range p.Inventory {
		b.WriteString(fmt.Sprintf("  %s%2d%s  %s%s%s [%s]",
			telnet.BrightCyan, i+1, telnet.Reset,
			telnet.BrightWhite, it.Name, telnet.Reset, it.Kind))
		if it.Description != "" {
			b.WriteString(fmt.Sprintf(" %s%s%s", telnet.Dim, it.Description, telnet.Reset))
		}
		b.WriteString("\r\n")
	}
	return b.String()
}

// RenderOutcome formats one resolved battle as colored Telnet text.
func RenderOutcome(o battle.Outcome) string {
	var b strings.Builder
	if o.Result == battle.PlayerVictory {
		b.WriteString(telnet.Colorf(telnet.BrightGreen, "You defeated %s in %d rounds!", o.HostileName, o.Rounds))
	} else {
		b.WriteString(telnet.Colorf(telnet.BrightRed, "You were defeated by %s after %d rounds.", o.HostileName, o.Rounds))
	}
	b.WriteString("\r\n")
	b.WriteString(fmt.Sprintf("  Damage dealt: %d   Damage taken: %d\r\n", o.DamageDealt, o.DamageTaken))
	if o.RevivalsUsed > 0 {
		b.WriteString(telnet.Colorf(telnet.Magenta, "  Revivals used: %d", o.RevivalsUsed))
		b.WriteString("\r\n")
	}
	if o.CreditsGained > 0 {
		b.WriteString(telnet.Colorf(telnet.BrightYellow, "  +%d credits", o.CreditsGained))
		b.WriteString("\r\n")
	}
	if o.CreditsLost > 0 {
		b.WriteString(telnet.Colorf(telnet.Red, "  -%d credits", o.CreditsLost))
		b.WriteString("\r\n")
	}
	if o.ExperienceGained > 0 {
		b.WriteString(fmt.Sprintf("  +%d experience\r\n", o.ExperienceGained))
	}
	for _, up := range o.LevelUps {
		b.WriteString(telnet.Colorf(telnet.BrightMagenta, "  *** Level up! You are now level %d (max HP %d). ***", up.NewLevel, up.MaxHealth))
		b.WriteString("\r\n")
	}
	if len(o.Loot) > 0 {
		names := make([]string, 0, len(o.Loot))
		for _, it := range o.Loot {
			names = append(names, it.Name)
		}
		b.WriteString(telnet.Colorf(telnet.Cyan, "  Loot: %s", strings.Join(names, ", ")))
		b.WriteString("\r\n")
	}
	if o.HostileRespawned {
		b.WriteString(telnet.Colorize(telnet.Yellow, "  Something stirs in the depths..."))
		b.WriteString("\r\n")
	}
	return b.String()
}

// RenderHostileReport formats an inspection as Telnet text.
func RenderHostileReport(r expedition.HostileReport) string {
	var b strings.Builder
	label := r.Name
	if r.Boss {
		label += " (BOSS)"
	}
	b.WriteString(telnet.Colorf(telnet.BrightYellow, "%s %s", r.Symbol, label))
	b.WriteString("\r\n")
	b.WriteString(fmt.Sprintf("  Level %d   HP: %d/%d\r\n", r.Level, r.Health, r.MaxHealth))
	b.WriteString(fmt.Sprintf("  Bounty: %d credits   Worth: %d XP\r\n", r.Bounty, r.Experience))
	return b.String()
}

// RenderGateResult formats a guardian gate challenge as Telnet text: every
// guardian battle, then the gate verdict and any portal bonus.
func RenderGateResult(g expedition.GateResult) string {
	var b strings.Builder
	for _, outcome := range g.Report.Battles {
		b.WriteString(RenderOutcome(outcome))
	}
	if g.Report.Result != battle.PlayerVictory {
		b.WriteString(telnet.Colorf(telnet.BrightRed,
			"The gate holds. Guardians defeated: %d of %d.",
			g.Report.GuardiansDefeated, len(g.Report.Battles)))
		b.WriteString("\r\n")
		return b.String()
	}

	b.WriteString(telnet.Colorf(telnet.BrightGreen, "The gate to level %d yields!", g.Report.DungeonLevel))
	b.WriteString("\r\n")
	if g.GateExperience > 0 {
		b.WriteString(fmt.Sprintf("  +%d gate experience\r\n", g.GateExperience))
	}
	for _, up := range g.LevelUps {
		b.WriteString(telnet.Colorf(telnet.BrightMagenta, "  *** Level up! You are now level %d (max HP %d). ***", up.NewLevel, up.MaxHealth))
		b.WriteString("\r\n")
	}
	if bonus := g.Report.Bonus; bonus != nil {
		b.WriteString(telnet.Colorize(telnet.BrightCyan, "  The portal's energy surges through you:"))
		b.WriteString("\r\n")
		if bonus.Credits > 0 {
			b.WriteString(fmt.Sprintf("    +%d bonus credits\r\n", bonus.Credits))
		}
		if bonus.StatBoosted != "" {
			b.WriteString(fmt.Sprintf("    +%d %s\r\n", bonus.StatAmount, bonus.StatBoosted))
		}
		if bonus.EnergyRestored > 0 || bonus.MaxEnergyGained > 0 {
			b.WriteString(fmt.Sprintf("    +%d energy (+%d max)\r\n", bonus.EnergyRestored, bonus.MaxEnergyGained))
		}
		for _, it := range bonus.Items {
			b.WriteString(fmt.Sprintf("    found: %s\r\n", it.Name))
		}
	}
	if g.Traversal != nil {
		b.WriteString(telnet.Colorf(telnet.Cyan, "You step through to level %d.", g.Traversal.Level))
		b.WriteString("\r\n")
	}
	return b.String()
}

// RenderItemResult formats one consumed item's effect as Telnet text.
func RenderItemResult(r expedition.ItemResult) string {
	switch {
	case r.Revived:
		return telnet.Colorf(telnet.BrightMagenta, "The %s drags you back to your feet at full health.", r.Item.Name)
	case r.HealthRestored > 0:
		return telnet.Colorf(telnet.BrightGreen, "You use the %s and recover %d HP.", r.Item.Name, r.HealthRestored)
	case r.EnergyRestored > 0:
		return telnet.Colorf(telnet.BrightCyan, "You drink the %s and recover %d energy.", r.Item.Name, r.EnergyRestored)
	default:
		return telnet.Colorf(telnet.White, "You use the %s.", r.Item.Name)
	}
}

// RenderHistory formats the session's battle history, oldest first.
func RenderHistory(entries []expedition.HistoryEntry) string {
	if len(entries) == 0 {
		return telnet.Colorize(telnet.Dim, "No battles fought yet.") + "\r\n"
	}
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightWhite, "=== Battle History ==="))
	b.WriteString("\r\n")
	for i, e := range entries {
		verdict := telnet.Colorize(telnet.BrightGreen, "WON ")
		if e.Outcome.Result == battle.PlayerDefeat {
			verdict = telnet.Colorize(telnet.BrightRed, "LOST")
		}
		b.WriteString(fmt.Sprintf("  %2d. %s  %-24s %2d rounds  +%d cr  +%d xp\r\n",
			i+1, verdict, e.Outcome.HostileName, e.Outcome.Rounds,
			e.Outcome.CreditsGained, e.Outcome.ExperienceGained))
	}
	return b.String()
}

// RenderBattleRecords formats a profile's durable battle record, newest
// first, as Telnet text.
func RenderBattleRecords(records []postgres.HistoryRecord) string {
	if len(records) == 0 {
		return telnet.Colorize(telnet.Dim, "No battle records yet.") + "\r\n"
	}
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightWhite, "=== Battle Record ==="))
	b.WriteString("\r\n")
	for _, rec := range records {
		verdict := telnet.Colorize(telnet.BrightGreen, "WON ")
		if rec.Outcome.Result == battle.PlayerDefeat {
			verdict = telnet.Colorize(telnet.BrightRed, "LOST")
		}
		b.WriteString(fmt.Sprintf("  %s  %s  %-24s %2d rounds\r\n",
			rec.At.Format("2006-01-02 15:04"), verdict,
			rec.Outcome.HostileName, rec.Outcome.Rounds))
	}
	return b.String()
}

// RenderSaves formats the profile's occupied save slots as Telnet text.
func RenderSaves(infos []postgres.SaveInfo) string {
	if len(infos) == 0 {
		return telnet.Colorize(telnet.Dim, "No saved expeditions.") + "\r\n"
	}
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightWhite, "=== Saved Expeditions ==="))
	b.WriteString("\r\n")
	for _, info := range infos {
		b.WriteString(fmt.Sprintf("  slot %d: %s%s%s (level %d), saved %s\r\n",
			info.Slot, telnet.BrightWhite, info.PlayerName, telnet.Reset,
			info.PlayerLevel, info.SavedAt.Format("2006-01-02 15:04")))
	}
	return b.String()
}
