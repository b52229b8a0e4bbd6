package battle

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/expedition/internal/game/character"
	"github.com/cory-johannsen/expedition/internal/game/dice"
	"github.com/cory-johannsen/expedition/internal/game/item"
	"github.com/cory-johannsen/expedition/internal/game/npc"
)

// creditTransferRate is the share of the loser's credits moved by a battle:
// 8% of the hostile's purse on victory, 8% of the player's on defeat.
const creditTransferRate = 0.08

// DefaultMaxRounds bounds a single battle. Valid combatants finish far
// below it because every exchange removes at least 1 health and revivals
// are limited by inventory.
const DefaultMaxRounds = 10000

// Respawner returns a defeated hostile to the grid. *npc.Arena satisfies
// it.
type Respawner interface {
	RespawnDefeated(id string) (*npc.NPC, error)
}

// Config tunes battle resolution. The zero value is the default ruleset:
// player acts first, drop-table loot, symmetric credit penalty,
// auto-accepted revivals.
type Config struct {
	TurnOrder TurnOrderPolicy
	Loot      LootMode
	Penalty   PenaltyMode
	// Confirm gates revival item consumption; nil auto-accepts.
	Confirm ConfirmFunc
	// MaxRounds overrides DefaultMaxRounds when positive.
	MaxRounds int
}

// Orchestrator drives battles from start to a terminal state and commits
// their reward and penalty transfers.
type Orchestrator struct {
	cfg       Config
	roller    *dice.Roller
	catalog   *item.Catalog
	respawner Respawner
	logger    *zap.Logger
}

// NewOrchestrator wires an Orchestrator. respawner may be nil when no
// arena is in play; a nil logger is replaced with a no-op.
func NewOrchestrator(cfg Config, roller *dice.Roller, catalog *item.Catalog, respawner Respawner, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = DefaultMaxRounds
	}
	return &Orchestrator{
		cfg:       cfg,
		roller:    roller,
		catalog:   catalog,
		respawner: respawner,
		logger:    logger,
	}
}

// Fight resolves one battle to a terminal state. Both sides open at max
// health; all state mutations (health, credits, experience, inventory,
// statistics, combo, respawn) are committed before it returns.
//
// Postcondition: the returned Outcome.Result is PlayerVictory or
// PlayerDefeat, never Ongoing.
func (o *Orchestrator) Fight(player *character.Player, hostile *npc.NPC, combo *ComboState) Outcome {
	return o.fight(player, hostile, combo, false)
}

func (o *Orchestrator) fight(player *character.Player, hostile *npc.NPC, combo *ComboState, carryPlayerHealth bool) Outcome {
	outcome := Outcome{
		PlayerName:         player.Name,
		HostileID:          hostile.ID,
		HostileName:        hostile.Name,
		HostileSymbol:      hostile.Symbol,
		HostileLevel:       hostile.Level,
		Boss:               hostile.Boss,
		PlayerStartHealth:  player.Health,
		HostileStartHealth: hostile.Health,
	}

	// Equalizing reset: both sides open at max health regardless of prior
	// incidental damage. Guardian sequences instead carry the player's
	// health between fights.
	if !carryPlayerHealth {
		player.Health = player.MaxHealth
	}
	hostile.Health = hostile.MaxHealth

	revive := func(defender *character.Combatant) bool {
		if !AttemptRevival(defender, o.cfg.Confirm) {
			return false
		}
		outcome.RevivalsUsed++
		player.Statistics.Increment(character.StatRevivalsUsed, 1)
		return true
	}

	playerStrike := func() State {
		r := ResolveAttack(&player.Combatant, &hostile.Combatant, nil)
		outcome.DamageDealt += r.Damage
		if !r.DefenderAlive {
			return PlayerVictory
		}
		return Ongoing
	}
	hostileStrike := func() State {
		r := ResolveAttack(&hostile.Combatant, &player.Combatant, revive)
		outcome.DamageTaken += r.Damage
		if !r.DefenderAlive {
			return PlayerDefeat
		}
		return Ongoing
	}

	first, second := playerStrike, hostileStrike
	if o.cfg.TurnOrder == AgilityOrder && hostile.Agility > player.Agility {
		first, second = hostileStrike, playerStrike
	}

	state := Ongoing
	for state == Ongoing {
		outcome.Rounds++
		if outcome.Rounds > o.cfg.MaxRounds {
			o.logger.Error("battle exceeded round bound, forcing defeat",
				zap.String("hostile", hostile.Name),
				zap.Int("maxRounds", o.cfg.MaxRounds))
			state = PlayerDefeat
			break
		}
		if state = first(); state != Ongoing {
			break
		}
		state = second()
	}

	outcome.Result = state
	outcome.PlayerEndHealth = player.Health
	outcome.HostileEndHealth = hostile.Health
	player.Statistics.Increment(character.StatDamageDealt, outcome.DamageDealt)
	player.Statistics.Increment(character.StatDamageTaken, outcome.DamageTaken)

	switch state {
	case PlayerVictory:
		o.settleVictory(player, hostile, combo, &outcome)
	case PlayerDefeat:
		o.settleDefeat(player, hostile, combo, &outcome)
	}

	o.logger.Debug("battle resolved",
		zap.String("player", player.Name),
		zap.String("hostile", hostile.Name),
		zap.String("result", state.String()),
		zap.Int("rounds", outcome.Rounds),
		zap.Int("creditsGained", outcome.CreditsGained),
		zap.Int("creditsLost", outcome.CreditsLost),
		zap.Int("experience", outcome.ExperienceGained),
		zap.Int("comboCount", combo.Count))
	return outcome
}

// settleVictory commits the victory transfers: streak-boosted credits,
// experience, loot, and the hostile's return to the grid.
func (o *Orchestrator) settleVictory(player *character.Player, hostile *npc.NPC, combo *ComboState, out *Outcome) {
	combo.RecordVictory()
	base := int(float64(hostile.Credits) * creditTransferRate)
	reward := base + combo.Bonus(base)
	player.AddCredits(reward)
	out.CreditsGained = reward

	out.ExperienceGained = hostile.ExperienceValue()
	out.LevelUps = player.GainExperience(out.ExperienceGained)

	player.Statistics.Increment(character.StatBattlesWon, 1)
	player.Statistics.Increment(character.StatEnemiesDefeated, 1)
	if hostile.Boss {
		player.Statistics.Increment(character.StatBossesDefeated, 1)
	}
	player.Statistics.Increment(character.StatCreditsEarned, reward)

	var loot []item.Item
	switch o.cfg.Loot {
	case LootInventory:
		loot = hostile.Inventory
		hostile.Inventory = nil
	default:
		loot = hostile.RollDrops(o.roller)
	}
	for _, found := range loot {
		player.AddItem(found)
	}
	out.Loot = loot

	if !hostile.Boss && o.respawner != nil {
		if _, err := o.respawner.RespawnDefeated(hostile.ID); err != nil {
			o.logger.Warn("respawn after defeat failed",
				zap.String("hostile", hostile.ID),
				zap.Error(err))
		} else {
			out.HostileRespawned = true
		}
	}
}

// settleDefeat commits the defeat transfers: the streak resets and 8% of
// the player's purse moves to the hostile.
func (o *Orchestrator) settleDefeat(player *character.Player, hostile *npc.NPC, combo *ComboState, out *Outcome) {
	combo.Reset()
	loss := int(float64(player.Credits) * creditTransferRate)
	hostile.AddCredits(loss)
	if o.cfg.Penalty == PenaltySymmetric {
		player.SpendCredits(loss)
		out.CreditsLost = loss
	}

	player.Statistics.Increment(character.StatBattlesLost, 1)
	player.Statistics.Increment(character.StatDeathCount, 1)
}
