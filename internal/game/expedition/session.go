package expedition

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/expedition/internal/game/battle"
	"github.com/cory-johannsen/expedition/internal/game/character"
	"github.com/cory-johannsen/expedition/internal/game/dice"
	"github.com/cory-johannsen/expedition/internal/game/grid"
	"github.com/cory-johannsen/expedition/internal/game/item"
	"github.com/cory-johannsen/expedition/internal/game/npc"
)

// Session is one player's live run. Every command method serializes on an
// internal mutex; Player is safe to read between commands from the
// goroutine driving the session.
//
// Concurrency: one frontend goroutine issues commands; the Manager may
// look sessions up concurrently.
type Session struct {
	ID         string
	CreatedAt  time.Time
	Difficulty item.Difficulty
	Player     *character.Player

	mu        sync.Mutex
	grid      *grid.Grid
	arena     *npc.Arena
	generator *npc.Generator
	orch      *battle.Orchestrator
	roller    *dice.Roller
	combo     *battle.ComboState
	hooks     Hooks
	logger    *zap.Logger
	attempts  int

	position grid.Position
	portals  map[int]grid.Position
	stores   []grid.Position
	visited  map[int]bool
	history  []HistoryEntry
}

// Position returns the player's current cell.
func (s *Session) Position() grid.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// Render returns the display rows for the player's current level.
func (s *Session) Render() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Render(s.position.Level)
}

// Streak returns the current victory streak and its reward multiplier.
func (s *Session) Streak() (count int, multiplier float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.combo.Count, s.combo.Multiplier
}

// History returns a copy of the session's battle history, oldest first.
func (s *Session) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneHistory(s.history)
}

// Hostiles returns the hostiles prowling the player's current level.
func (s *Session) Hostiles() []*npc.NPC {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.arena.OnLevel(s.position.Level)
}

// Move steps the player one cell. A step into a hostile's cell starts a
// battle for BattleCost energy and leaves the player in place; a step
// into the portal cell reports the portal without moving or spending; an
// empty cell is taken for MoveCost, spent after the step.
//
// Postcondition: exactly one of Moved, Portal, or Battle is set on a nil
// error.
func (s *Session) Move(d grid.Direction) (MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stay := MoveResult{Position: s.position}
	if !s.Player.HasEnergy(MoveCost) {
		return stay, fmt.Errorf("move %s: %w", d, ErrExhausted)
	}
	target := s.position.Step(d)
	kind, err := s.grid.Kind(target)
	if err != nil {
		return stay, fmt.Errorf("move %s: %w", d, err)
	}

	switch kind {
	case grid.CellPortal:
		stay.Portal = true
		return stay, nil
	case grid.CellNPC, grid.CellBoss:
		outcome, err := s.fightAtLocked(target)
		if err != nil {
			return stay, err
		}
		stay.Battle = outcome
		return stay, nil
	case grid.CellEmpty:
		if err := s.grid.Relocate(s.position, target); err != nil {
			return stay, fmt.Errorf("move %s: %w", d, err)
		}
		s.position = target
		s.Player.UseEnergy(MoveCost)
		s.Player.Statistics.Increment(character.StatDistanceTraveled, 1)
		return MoveResult{Position: target, Moved: true}, nil
	default:
		return stay, fmt.Errorf("move %s into %s cell: %w", d, kind, grid.ErrCellOccupied)
	}
}

// Inspect reports the hostile one cell away without engaging it. The
// bounty and experience are what its defeat would price.
func (s *Session) Inspect(d grid.Direction) (HostileReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.position.Step(d)
	hostile, ok := s.arena.AtPosition(target)
	if !ok {
		return HostileReport{}, fmt.Errorf("inspect %s at %s: %w", d, target, ErrNoHostile)
	}
	return HostileReport{
		Name:       hostile.Name,
		Symbol:     hostile.Symbol,
		Level:      hostile.Level,
		Boss:       hostile.Boss,
		Health:     hostile.Health,
		MaxHealth:  hostile.MaxHealth,
		Bounty:     hostile.CreditValue(),
		Experience: hostile.ExperienceValue(),
	}, nil
}

// EnterPortal crosses the portal beside the player. up picks the deeper
// level, down the shallower one; the target level's gate must already be
// cleared.
func (s *Session) EnterPortal(up bool) (PortalResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.portalTargetLocked(up)
	if err != nil {
		return PortalResult{}, err
	}
	if !s.Player.LevelKeys.Has(target) {
		return PortalResult{}, fmt.Errorf("portal to level %d: %w", target, ErrGateLocked)
	}
	if !s.Player.UseEnergy(PortalCost) {
		return PortalResult{}, fmt.Errorf("portal to level %d: %w", target, ErrExhausted)
	}
	return s.traverseLocked(target)
}

// ChallengeGate fights the target level's guardian pair for
// PortalCost+GateChallengeCost energy. Victory grants the level key and
// the gate experience and carries the player through; defeat spends the
// energy and leaves the gate locked. The interlude hook, when non-nil,
// runs before each guardian so the caller can offer item use.
//
// Postcondition: on a nil error the Report is complete even when the
// arrival placement failed (Traversal nil).
func (s *Session) ChallengeGate(up bool, interlude func(*character.Player, *npc.NPC)) (GateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.portalTargetLocked(up)
	if err != nil {
		return GateResult{}, err
	}
	if s.Player.LevelKeys.Has(target) {
		return GateResult{}, fmt.Errorf("challenge level %d: gate already cleared", target)
	}
	if !s.Player.UseEnergy(PortalCost + GateChallengeCost) {
		return GateResult{}, fmt.Errorf("challenge level %d: %w", target, ErrExhausted)
	}

	guardians := []*npc.NPC{
		s.generator.GenerateGuardian(s.Player, 0, target),
		s.generator.GenerateGuardian(s.Player, 1, target),
	}
	report := s.orch.FightGuardians(s.Player, guardians, target, s.combo, func(next *npc.NPC) {
		if s.hooks != nil {
			s.hooks.OnBattleStart(target, s.Player, next)
		}
		if interlude != nil {
			interlude(s.Player, next)
		}
	})
	for _, outcome := range report.Battles {
		s.commitOutcomeLocked(target, outcome)
	}

	result := GateResult{Report: report}
	if report.Result != battle.PlayerVictory {
		s.logger.Info("gate challenge failed",
			zap.String("session", s.ID),
			zap.Int("targetLevel", target),
			zap.Int("guardiansDefeated", report.GuardiansDefeated))
		return result, nil
	}

	s.Player.LevelKeys.Grant(target)
	result.KeyGranted = true
	result.GateExperience = gateBaseExperience + gateLevelExperience*target
	result.LevelUps = s.Player.GainExperience(result.GateExperience)
	s.logger.Info("gate cleared",
		zap.String("session", s.ID),
		zap.Int("targetLevel", target),
		zap.Int("gateExperience", result.GateExperience))

	traversal, err := s.traverseLocked(target)
	if err != nil {
		s.logger.Warn("arrival after gate clear failed",
			zap.String("session", s.ID),
			zap.Int("targetLevel", target),
			zap.Error(err))
		return result, nil
	}
	result.Traversal = &traversal
	return result, nil
}

// BypassGate spends a held gate pass to cross a locked gate without
// fighting. No key is granted and no gate experience awarded; the pass
// buys one crossing.
func (s *Session) BypassGate(up bool) (PortalResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.portalTargetLocked(up)
	if err != nil {
		return PortalResult{}, err
	}
	if s.Player.LevelKeys.Has(target) {
		return PortalResult{}, fmt.Errorf("bypass to level %d: gate already cleared", target)
	}
	idx := s.Player.FindItem(item.KindGatePass)
	if idx < 0 {
		return PortalResult{}, fmt.Errorf("bypass to level %d: no gate pass held: %w", target, ErrItemUnusable)
	}
	if !s.Player.UseEnergy(PortalCost) {
		return PortalResult{}, fmt.Errorf("bypass to level %d: %w", target, ErrExhausted)
	}
	s.Player.RemoveItemAt(idx)
	s.Player.Statistics.Increment(character.StatItemsUsed, 1)

	result, err := s.traverseLocked(target)
	if err != nil {
		return result, err
	}
	result.PassUsed = true
	return result, nil
}

// UseItem consumes the inventory item at index outside battle. Potions
// heal, energy tonics restore energy, a revival item raises a downed
// player to full health; each fails without consuming when it would have
// no effect. Gate passes are spent at a portal, not here.
func (s *Session) UseItem(index int) (ItemResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.Player.Inventory) {
		return ItemResult{}, fmt.Errorf("use item %d: no such inventory slot", index)
	}
	consumable := s.Player.Inventory[index]
	result := ItemResult{Item: consumable}

	switch consumable.Kind {
	case item.KindPotion:
		if s.Player.Health >= s.Player.MaxHealth {
			return ItemResult{}, fmt.Errorf("use %s at full health: %w", consumable.Name, ErrItemUnusable)
		}
		result.HealthRestored = s.Player.Heal(consumable.Heal)
		s.Player.Statistics.Increment(character.StatPotionsUsed, 1)
	case item.KindEnergy:
		if s.Player.Energy >= s.Player.MaxEnergy {
			return ItemResult{}, fmt.Errorf("use %s at full energy: %w", consumable.Name, ErrItemUnusable)
		}
		result.EnergyRestored = s.Player.RestoreEnergy(consumable.Energy)
	case item.KindRevival:
		if s.Player.Alive() {
			return ItemResult{}, fmt.Errorf("use %s while standing: %w", consumable.Name, ErrItemUnusable)
		}
		result.HealthRestored = s.Player.Heal(s.Player.MaxHealth)
		result.Revived = true
		s.Player.Statistics.Increment(character.StatRevivalsUsed, 1)
	default:
		return ItemResult{}, fmt.Errorf("use %s: spent at a boss gate, not here: %w", consumable.Name, ErrItemUnusable)
	}

	s.Player.RemoveItemAt(index)
	s.Player.Statistics.Increment(character.StatItemsUsed, 1)
	return result, nil
}

// fightAtLocked runs one battle against the hostile at p and commits it.
func (s *Session) fightAtLocked(p grid.Position) (*battle.Outcome, error) {
	hostile, ok := s.arena.AtPosition(p)
	if !ok {
		return nil, fmt.Errorf("battle at %s: %w", p, ErrNoHostile)
	}
	if !s.Player.UseEnergy(BattleCost) {
		return nil, fmt.Errorf("battle with %s: %w", hostile.Name, ErrExhausted)
	}
	if s.hooks != nil {
		s.hooks.OnBattleStart(s.position.Level, s.Player, hostile)
	}
	outcome := s.orch.Fight(s.Player, hostile, s.combo)
	s.commitOutcomeLocked(s.position.Level, outcome)
	return &outcome, nil
}

// commitOutcomeLocked appends the outcome to the history, retires fallen
// bosses, and fires the lifecycle hooks.
func (s *Session) commitOutcomeLocked(dungeonLevel int, outcome battle.Outcome) {
	s.history = append(s.history, HistoryEntry{
		ID:      uuid.NewString(),
		At:      time.Now().UTC(),
		Outcome: outcome,
	})

	if outcome.Result == battle.PlayerVictory && outcome.Boss {
		if _, held := s.arena.Get(outcome.HostileID); held {
			if err := s.arena.Remove(outcome.HostileID); err != nil {
				s.logger.Warn("failed to retire fallen boss",
					zap.String("hostile", outcome.HostileID),
					zap.Error(err))
			}
		}
	}

	if s.hooks == nil {
		return
	}
	switch outcome.Result {
	case battle.PlayerVictory:
		s.hooks.OnVictory(dungeonLevel, s.Player, outcome)
		if outcome.HostileRespawned {
			if respawned, ok := s.arena.Get(outcome.HostileID); ok {
				s.hooks.OnRespawn(respawned.DungeonLevel, respawned)
			}
		}
	case battle.PlayerDefeat:
		s.hooks.OnDefeat(dungeonLevel, s.Player, outcome)
	}
}

// portalTargetLocked resolves the portal beside the player into the
// target level for a traversal in the given direction.
func (s *Session) portalTargetLocked(up bool) (int, error) {
	portal, ok := s.portals[s.position.Level]
	if !ok || !adjacent(s.position, portal) {
		return 0, fmt.Errorf("portal from %s: %w", s.position, ErrNoPortal)
	}
	target := s.position.Level - 1
	if up {
		target = s.position.Level + 1
	}
	if target < 0 || target >= s.grid.Depth() {
		return 0, fmt.Errorf("portal to level %d: %w", target, ErrAtBoundary)
	}
	return target, nil
}

// traverseLocked moves the player to the target level, arriving at the
// same row and column when that cell is free and at a random empty cell
// otherwise. First visits populate the level with hostiles and a portal.
func (s *Session) traverseLocked(target int) (PortalResult, error) {
	s.ensureLevelLocked(target)

	arrival := grid.Position{Level: target, Row: s.position.Row, Col: s.position.Col}
	if empty, err := s.grid.IsCellEmpty(arrival); err == nil && empty {
		if err := s.grid.Relocate(s.position, arrival); err != nil {
			return PortalResult{}, fmt.Errorf("arrive on level %d: %w", target, err)
		}
	} else {
		pos, err := s.grid.PlaceAtRandomEmpty(target, grid.CellPlayer, s.attempts, s.roller)
		if err != nil {
			return PortalResult{}, fmt.Errorf("arrive on level %d: %w", target, err)
		}
		if err := s.grid.Clear(s.position); err != nil {
			s.logger.Warn("failed to clear departed cell",
				zap.String("position", s.position.String()),
				zap.Error(err))
		}
		arrival = pos
	}

	s.position = arrival
	s.Player.Statistics.Increment(character.StatPortalsUsed, 1)
	s.logger.Info("portal traversal",
		zap.String("session", s.ID),
		zap.Int("level", target),
		zap.String("arrival", arrival.String()))
	return PortalResult{Level: target, Position: arrival}, nil
}

// ensureLevelLocked populates a level on its first visit: a pack of
// hostiles, the level's portal, and on the surface level 1-2 stores.
// Placement exhaustion is tolerated.
func (s *Session) ensureLevelLocked(level int) {
	if s.visited[level] {
		return
	}
	s.visited[level] = true

	if _, err := s.arena.PopulateLevel(level); err != nil {
		s.logger.Warn("failed to populate level",
			zap.Int("level", level),
			zap.Error(err))
	}
	if _, ok := s.portals[level]; !ok {
		pos, err := s.grid.PlaceAtRandomEmpty(level, grid.CellPortal, s.attempts, s.roller)
		if err != nil {
			s.logger.Warn("no cell for portal",
				zap.Int("level", level),
				zap.Error(err))
			return
		}
		s.portals[level] = pos
	}
	if level == 0 {
		count := s.roller.Range(1, 2)
		for i := 0; i < count; i++ {
			pos, err := s.grid.PlaceAtRandomEmpty(level, grid.CellStore, s.attempts, s.roller)
			if err != nil {
				s.logger.Warn("no cell for store",
					zap.Int("level", level),
					zap.Error(err))
				break
			}
			s.stores = append(s.stores, pos)
		}
	}
}

// adjacent reports whether a and b are the same cell or one step apart on
// the same level.
func adjacent(a, b grid.Position) bool {
	if a.Level != b.Level {
		return false
	}
	dr, dc := a.Row-b.Row, a.Col-b.Col
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	return dr+dc <= 1
}
