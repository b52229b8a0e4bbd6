// Package battle resolves turn-based fights between the player and the
// grid's hostiles: single battles, the portal guardian sequence, combo
// bookkeeping, and the reward and penalty transfers they commit.
package battle

import (
	"fmt"

	"github.com/cory-johannsen/expedition/internal/game/character"
	"github.com/cory-johannsen/expedition/internal/game/item"
)

// State is the battle state machine. A battle starts Ongoing and always
// terminates in PlayerVictory or PlayerDefeat.
type State int

const (
	Ongoing State = iota
	PlayerVictory
	PlayerDefeat
)

// String returns a human-readable state label.
func (s State) String() string {
	switch s {
	case Ongoing:
		return "ongoing"
	case PlayerVictory:
		return "victory"
	case PlayerDefeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// TurnOrderPolicy selects who acts first each round. The zero value is
// FixedPlayerFirst.
type TurnOrderPolicy int

const (
	// FixedPlayerFirst always gives the player the opening attack.
	FixedPlayerFirst TurnOrderPolicy = iota
	// AgilityOrder gives the opening attack to the higher-agility side;
	// the player wins ties.
	AgilityOrder
)

// String returns the policy's configuration name.
func (p TurnOrderPolicy) String() string {
	switch p {
	case FixedPlayerFirst:
		return "player_first"
	case AgilityOrder:
		return "agility"
	default:
		return "unknown"
	}
}

// ParseTurnOrderPolicy maps a configuration name to its policy.
func ParseTurnOrderPolicy(name string) (TurnOrderPolicy, error) {
	switch name {
	case "player_first":
		return FixedPlayerFirst, nil
	case "agility":
		return AgilityOrder, nil
	default:
		return FixedPlayerFirst, fmt.Errorf("unknown turn order policy %q", name)
	}
}

// LootMode selects how a defeated hostile yields items. The zero value is
// LootDrops.
type LootMode int

const (
	// LootDrops rolls the hostile's probabilistic drop table.
	LootDrops LootMode = iota
	// LootInventory transfers the hostile's whole inventory unconditionally.
	LootInventory
)

// String returns the mode's configuration name.
func (m LootMode) String() string {
	switch m {
	case LootDrops:
		return "drops"
	case LootInventory:
		return "inventory"
	default:
		return "unknown"
	}
}

// ParseLootMode maps a configuration name to its mode.
func ParseLootMode(name string) (LootMode, error) {
	switch name {
	case "drops":
		return LootDrops, nil
	case "inventory":
		return LootInventory, nil
	default:
		return LootDrops, fmt.Errorf("unknown loot mode %q", name)
	}
}

// PenaltyMode selects how the defeat credit penalty settles. The zero
// value is PenaltySymmetric.
type PenaltyMode int

const (
	// PenaltySymmetric moves the credits: the hostile gains what the
	// player loses.
	PenaltySymmetric PenaltyMode = iota
	// PenaltyHostileOnly credits the hostile without debiting the player.
	PenaltyHostileOnly
)

// String returns the mode's configuration name.
func (m PenaltyMode) String() string {
	switch m {
	case PenaltySymmetric:
		return "symmetric"
	case PenaltyHostileOnly:
		return "hostile_only"
	default:
		return "unknown"
	}
}

// ParsePenaltyMode maps a configuration name to its mode.
func ParsePenaltyMode(name string) (PenaltyMode, error) {
	switch name {
	case "symmetric":
		return PenaltySymmetric, nil
	case "hostile_only":
		return PenaltyHostileOnly, nil
	default:
		return PenaltySymmetric, fmt.Errorf("unknown penalty mode %q", name)
	}
}

// Outcome is the record of one resolved battle, suitable for history
// storage. Start health values are captured before the equalizing reset.
type Outcome struct {
	PlayerName         string              `json:"player_name"`
	HostileID          string              `json:"hostile_id"`
	HostileName        string              `json:"hostile_name"`
	HostileSymbol      string              `json:"hostile_symbol"`
	HostileLevel       int                 `json:"hostile_level"`
	Boss               bool                `json:"boss"`
	Result             State               `json:"result"`
	Rounds             int                 `json:"rounds"`
	PlayerStartHealth  int                 `json:"player_start_health"`
	HostileStartHealth int                 `json:"hostile_start_health"`
	PlayerEndHealth    int                 `json:"player_end_health"`
	HostileEndHealth   int                 `json:"hostile_end_health"`
	DamageDealt        int                 `json:"damage_dealt"`
	DamageTaken        int                 `json:"damage_taken"`
	RevivalsUsed       int                 `json:"revivals_used"`
	CreditsGained      int                 `json:"credits_gained"`
	CreditsLost        int                 `json:"credits_lost"`
	ExperienceGained   int                 `json:"experience_gained"`
	LevelUps           []character.LevelUp `json:"level_ups,omitempty"`
	Loot               []item.Item         `json:"loot,omitempty"`
	HostileRespawned   bool                `json:"hostile_respawned"`
}
