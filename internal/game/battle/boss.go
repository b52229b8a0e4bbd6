package battle

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/expedition/internal/game/character"
	"github.com/cory-johannsen/expedition/internal/game/item"
	"github.com/cory-johannsen/expedition/internal/game/npc"
)

// portalBonusScaling raises the portal bonus rewards by 10% per dungeon
// level.
const portalBonusScaling = 0.1

// BossReport aggregates one portal guardian sequence.
type BossReport struct {
	Result            State        `json:"result"`
	DungeonLevel      int          `json:"dungeon_level"`
	Rounds            int          `json:"rounds"`
	GuardiansDefeated int          `json:"guardians_defeated"`
	Battles           []Outcome    `json:"battles"`
	CreditsGained     int          `json:"credits_gained"`
	ExperienceGained  int          `json:"experience_gained"`
	RevivalsUsed      int          `json:"revivals_used"`
	Loot              []item.Item  `json:"loot,omitempty"`
	PlayerEndHealth   int          `json:"player_end_health"`
	Bonus             *BonusReward `json:"bonus,omitempty"`
}

// BonusReward records what the portal energy granted after a full guardian
// victory.
type BonusReward struct {
	Credits         int         `json:"credits"`
	StatBoosted     string      `json:"stat_boosted,omitempty"`
	StatAmount      int         `json:"stat_amount,omitempty"`
	EnergyRestored  int         `json:"energy_restored"`
	MaxEnergyGained int         `json:"max_energy_gained"`
	Items           []item.Item `json:"items,omitempty"`
}

// FightGuardians runs the guardian battles in sequence. The player's
// health carries between fights; each guardian opens at its own max. The
// interlude hook, when non-nil, runs before each fight so a frontend can
// offer item use; a defeat stops the sequence immediately. Full victory
// awards the portal bonus rewards.
//
// Postcondition: Result is PlayerVictory iff every guardian fell; Bonus is
// non-nil iff Result is PlayerVictory.
func (o *Orchestrator) FightGuardians(player *character.Player, guardians []*npc.NPC, dungeonLevel int, combo *ComboState, interlude func(next *npc.NPC)) BossReport {
	report := BossReport{DungeonLevel: dungeonLevel}

	for _, guardian := range guardians {
		if interlude != nil {
			interlude(guardian)
		}
		outcome := o.fight(player, guardian, combo, true)
		report.Battles = append(report.Battles, outcome)
		report.Rounds += outcome.Rounds
		report.CreditsGained += outcome.CreditsGained
		report.ExperienceGained += outcome.ExperienceGained
		report.RevivalsUsed += outcome.RevivalsUsed
		report.Loot = append(report.Loot, outcome.Loot...)

		if outcome.Result == PlayerDefeat {
			report.Result = PlayerDefeat
			report.PlayerEndHealth = player.Health
			o.logger.Debug("guardian sequence failed",
				zap.Int("dungeonLevel", dungeonLevel),
				zap.Int("guardiansDefeated", report.GuardiansDefeated))
			return report
		}
		report.GuardiansDefeated++
	}

	report.Result = PlayerVictory
	bonus := o.awardPortalBonus(player, dungeonLevel)
	report.Bonus = &bonus
	report.PlayerEndHealth = player.Health
	o.logger.Debug("guardian sequence cleared",
		zap.Int("dungeonLevel", dungeonLevel),
		zap.Int("rounds", report.Rounds),
		zap.Int("bonusCredits", bonus.Credits))
	return report
}

// awardPortalBonus rolls and commits the post-victory grants: bonus
// credits always, a 70%-chance permanent stat boost, an energy restore
// with a max-energy bump always, a 50%-chance item, and a 25%-chance
// second item at dungeon level 5 or deeper. All magnitudes scale with the
// dungeon level.
func (o *Orchestrator) awardPortalBonus(player *character.Player, dungeonLevel int) BonusReward {
	multiplier := 1.0 + portalBonusScaling*float64(dungeonLevel)
	var bonus BonusReward

	bonus.Credits = int(float64(o.roller.Range(500, 1000)) * multiplier)
	player.AddCredits(bonus.Credits)
	player.Statistics.Increment(character.StatCreditsEarned, bonus.Credits)

	if o.roller.Chance(70) {
		switch o.roller.Intn(4) {
		case 0:
			amount := int(float64(o.roller.Range(10, 20)) * multiplier)
			player.MaxHealth += amount
			player.Health += amount
			bonus.StatBoosted, bonus.StatAmount = "max_health", amount
		case 1:
			amount := int(float64(o.roller.Range(2, 5)) * multiplier)
			player.Attack += amount
			bonus.StatBoosted, bonus.StatAmount = "attack", amount
		case 2:
			amount := int(float64(o.roller.Range(2, 5)) * multiplier)
			player.Defense += amount
			bonus.StatBoosted, bonus.StatAmount = "defense", amount
		default:
			amount := int(float64(o.roller.Range(1, 3)) * multiplier)
			player.Agility += amount
			bonus.StatBoosted, bonus.StatAmount = "agility", amount
		}
	}

	restored := int(float64(o.roller.Range(20, 50)) * multiplier)
	capGain := int(float64(restored) * 0.2)
	if player.Energy+restored > player.MaxEnergy+capGain {
		player.Energy = player.MaxEnergy + capGain
	} else {
		player.Energy += restored
	}
	player.MaxEnergy += capGain
	bonus.EnergyRestored = restored
	bonus.MaxEnergyGained = capGain

	if o.roller.Chance(50) {
		bonus.Items = append(bonus.Items, o.catalog.RollReward(o.roller, dungeonLevel))
		if dungeonLevel >= 5 && o.roller.Chance(25) {
			bonus.Items = append(bonus.Items, o.catalog.RollReward(o.roller, dungeonLevel))
		}
		for _, found := range bonus.Items {
			player.AddItem(found)
		}
	}
	return bonus
}
