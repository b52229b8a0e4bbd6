// Package expedition owns one player's run: the grid, the hostile arena,
// battle orchestration, movement with energy gating, portal traversal
// behind guardian gates, item use, and the battle history. A Session
// serializes its command surface behind a mutex so a frontend connection
// drives it from its own goroutine; the Manager tracks all active runs.
package expedition

import (
	"errors"
	"time"

	"github.com/cory-johannsen/expedition/internal/game/battle"
	"github.com/cory-johannsen/expedition/internal/game/character"
	"github.com/cory-johannsen/expedition/internal/game/grid"
	"github.com/cory-johannsen/expedition/internal/game/item"
	"github.com/cory-johannsen/expedition/internal/game/npc"
)

// Energy costs of expedition actions. A move's cost is spent after the
// step; battles and traversals gate up front.
const (
	MoveCost          = 1
	BattleCost        = 3
	PortalCost        = 2
	GateChallengeCost = 15
)

// Gate-clear experience: a flat base plus a bonus per target level depth.
const (
	gateBaseExperience  = 150
	gateLevelExperience = 20
)

// Sentinel errors for expedition actions.
var (
	// ErrExhausted marks an action the player lacks the energy for.
	ErrExhausted = errors.New("not enough energy")
	// ErrNoHostile marks a battle or inspection aimed at a cell holding no
	// hostile.
	ErrNoHostile = errors.New("no hostile there")
	// ErrNoPortal marks a portal action with no portal in reach.
	ErrNoPortal = errors.New("no portal in reach")
	// ErrAtBoundary marks a traversal off the top or bottom level.
	ErrAtBoundary = errors.New("no level in that direction")
	// ErrGateLocked marks a traversal into a level whose gate is uncleared.
	ErrGateLocked = errors.New("gate not cleared")
	// ErrItemUnusable marks an item use that would have no effect.
	ErrItemUnusable = errors.New("item not usable")
	// ErrUnknownSession marks a session ID the Manager does not hold.
	ErrUnknownSession = errors.New("unknown session")
)

// Hooks receives expedition lifecycle events, called synchronously from
// the session's goroutine. A nil Hooks is skipped everywhere.
type Hooks interface {
	OnBattleStart(dungeonLevel int, player *character.Player, hostile *npc.NPC)
	OnVictory(dungeonLevel int, player *character.Player, outcome battle.Outcome)
	OnDefeat(dungeonLevel int, player *character.Player, outcome battle.Outcome)
	OnRespawn(dungeonLevel int, hostile *npc.NPC)
}

// MoveResult reports what a single-cell step did. A step into a hostile's
// cell fights instead of moving; a step into the portal cell reports the
// portal and leaves the player in place.
type MoveResult struct {
	Position grid.Position   `json:"position"`
	Moved    bool            `json:"moved"`
	Portal   bool            `json:"portal"`
	Battle   *battle.Outcome `json:"battle,omitempty"`
}

// PortalResult reports a completed portal traversal.
type PortalResult struct {
	Level    int           `json:"level"`
	Position grid.Position `json:"position"`
	PassUsed bool          `json:"pass_used"`
}

// GateResult reports a guardian gate challenge. Traversal is nil when the
// challenge failed or the arrival placement could not complete.
type GateResult struct {
	Report         battle.BossReport   `json:"report"`
	KeyGranted     bool                `json:"key_granted"`
	GateExperience int                 `json:"gate_experience"`
	LevelUps       []character.LevelUp `json:"level_ups,omitempty"`
	Traversal      *PortalResult       `json:"traversal,omitempty"`
}

// ItemResult reports one consumed item's effect.
type ItemResult struct {
	Item           item.Item `json:"item"`
	HealthRestored int       `json:"health_restored"`
	EnergyRestored int       `json:"energy_restored"`
	Revived        bool      `json:"revived"`
}

// HostileReport is a read-only inspection of an adjacent hostile: its
// vitals plus the bounty and experience its defeat would price.
type HostileReport struct {
	Name       string `json:"name"`
	Symbol     string `json:"symbol"`
	Level      int    `json:"level"`
	Boss       bool   `json:"boss"`
	Health     int    `json:"health"`
	MaxHealth  int    `json:"max_health"`
	Bounty     int    `json:"bounty"`
	Experience int    `json:"experience"`
}

// HistoryEntry is one battle in a session's append-only history.
type HistoryEntry struct {
	ID      string         `json:"id"`
	At      time.Time      `json:"at"`
	Outcome battle.Outcome `json:"outcome"`
}
