package npc

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/expedition/internal/game/dice"
	"github.com/cory-johannsen/expedition/internal/game/grid"
)

// ErrUnknownHostile is returned when an operation names a hostile the arena
// does not track.
var ErrUnknownHostile = errors.New("unknown hostile")

// respawnHealthGrowth multiplies a defeated hostile's max health when it
// returns to the grid.
const respawnHealthGrowth = 1.10

// Arena tracks every living hostile of one expedition and owns their grid
// placement. Hostiles whose placement search exhausts its attempts remain
// registered but unplaced, and re-enter the grid on their next respawn.
//
// Concurrency: all methods are safe for concurrent use. Placement runs
// under the arena lock, so two hostiles can never claim the same cell.
type Arena struct {
	mu         sync.RWMutex
	grid       *grid.Grid
	generator  *Generator
	roller     *dice.Roller
	logger     *zap.Logger
	attempts   int
	entries    map[string]*NPC
	byPosition map[grid.Position]string
	byLevel    map[int]map[string]bool
}

// NewArena wires an Arena over the given grid. A nil logger is replaced
// with a no-op; attempts <= 0 falls back to grid.DefaultPlacementAttempts.
func NewArena(g *grid.Grid, generator *Generator, roller *dice.Roller, attempts int, logger *zap.Logger) *Arena {
	if logger == nil {
		logger = zap.NewNop()
	}
	if attempts <= 0 {
		attempts = grid.DefaultPlacementAttempts
	}
	return &Arena{
		grid:       g,
		generator:  generator,
		roller:     roller,
		logger:     logger,
		attempts:   attempts,
		entries:    make(map[string]*NPC),
		byPosition: make(map[grid.Position]string),
		byLevel:    make(map[int]map[string]bool),
	}
}

// Spawn generates a hostile for dungeonLevel and places it at a random
// empty cell there. Placement exhaustion is tolerated: the hostile is
// registered unplaced and a warning is logged.
//
// Postcondition: the hostile is registered; err is non-nil only when
// dungeonLevel is out of range.
func (a *Arena) Spawn(dungeonLevel int, boss bool) (*NPC, error) {
	hostile := a.generator.Generate(dungeonLevel, boss)
	hostile.DungeonLevel = dungeonLevel

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.placeLocked(hostile); err != nil {
		return nil, err
	}
	a.registerLocked(hostile)
	return hostile, nil
}

// PopulateLevel spawns between 2 and 4 hostiles on dungeonLevel.
func (a *Arena) PopulateLevel(dungeonLevel int) ([]*NPC, error) {
	count := a.roller.Range(2, 4)
	spawned := make([]*NPC, 0, count)
	for i := 0; i < count; i++ {
		hostile, err := a.Spawn(dungeonLevel, false)
		if err != nil {
			return spawned, fmt.Errorf("populate level %d: %w", dungeonLevel, err)
		}
		spawned = append(spawned, hostile)
	}
	a.logger.Debug("populated dungeon level",
		zap.Int("dungeonLevel", dungeonLevel),
		zap.Int("count", len(spawned)))
	return spawned, nil
}

// Get returns the hostile with the given id.
func (a *Arena) Get(id string) (*NPC, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	hostile, ok := a.entries[id]
	return hostile, ok
}

// AtPosition returns the hostile occupying the cell at p.
func (a *Arena) AtPosition(p grid.Position) (*NPC, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	id, ok := a.byPosition[p]
	if !ok {
		return nil, false
	}
	return a.entries[id], true
}

// OnLevel returns every hostile homed on dungeonLevel, placed or not.
func (a *Arena) OnLevel(dungeonLevel int) []*NPC {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var hostiles []*NPC
	for id := range a.byLevel[dungeonLevel] {
		hostiles = append(hostiles, a.entries[id])
	}
	return hostiles
}

// All returns every tracked hostile.
func (a *Arena) All() []*NPC {
	a.mu.RLock()
	defer a.mu.RUnlock()
	hostiles := make([]*NPC, 0, len(a.entries))
	for _, hostile := range a.entries {
		hostiles = append(hostiles, hostile)
	}
	return hostiles
}

// Restore re-registers a hostile from a saved snapshot, claiming its
// recorded cell. A hostile recorded unplaced stays unplaced.
//
// Precondition: the hostile's ID must not already be tracked.
func (a *Arena) Restore(hostile *NPC) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, dup := a.entries[hostile.ID]; dup {
		return fmt.Errorf("restore %s: hostile already tracked", hostile.ID)
	}
	if hostile.Position != nil {
		pos := *hostile.Position
		if err := a.grid.Place(pos, hostile.CellKind()); err != nil {
			return fmt.Errorf("restore %s at %s: %w", hostile.ID, pos, err)
		}
		a.byPosition[pos] = hostile.ID
	}
	a.registerLocked(hostile)
	return nil
}

// Remove deletes the hostile from the arena and vacates its cell. Used for
// hostiles that do not respawn.
func (a *Arena) Remove(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	hostile, ok := a.entries[id]
	if !ok {
		return fmt.Errorf("remove %s: %w", id, ErrUnknownHostile)
	}
	a.vacateLocked(hostile)
	delete(a.entries, id)
	if set := a.byLevel[hostile.DungeonLevel]; set != nil {
		delete(set, id)
		if len(set) == 0 {
			delete(a.byLevel, hostile.DungeonLevel)
		}
	}
	a.logger.Debug("removed hostile", zap.String("id", id), zap.String("name", hostile.Name))
	return nil
}

// RespawnDefeated returns a defeated hostile to play: max health grows by
// 10% (rounded) and is fully restored, one of attack, defense, or agility
// rises by 1, and the hostile moves to a new random cell on its home level.
//
// Postcondition: the hostile is alive and strictly stronger; placement
// exhaustion leaves it registered but unplaced.
func (a *Arena) RespawnDefeated(id string) (*NPC, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	hostile, ok := a.entries[id]
	if !ok {
		return nil, fmt.Errorf("respawn %s: %w", id, ErrUnknownHostile)
	}

	hostile.MaxHealth = int(math.Round(float64(hostile.MaxHealth) * respawnHealthGrowth))
	hostile.Health = hostile.MaxHealth
	var boosted string
	switch a.roller.Intn(3) {
	case 0:
		hostile.Attack++
		boosted = "attack"
	case 1:
		hostile.Defense++
		boosted = "defense"
	default:
		hostile.Agility++
		boosted = "agility"
	}

	a.vacateLocked(hostile)
	if err := a.placeLocked(hostile); err != nil {
		return nil, err
	}
	a.logger.Debug("respawned hostile",
		zap.String("id", id),
		zap.String("name", hostile.Name),
		zap.Int("maxHealth", hostile.MaxHealth),
		zap.String("boosted", boosted),
		zap.Bool("placed", hostile.Placed()))
	return hostile, nil
}

// registerLocked adds the hostile to the entry and level indexes.
func (a *Arena) registerLocked(hostile *NPC) {
	a.entries[hostile.ID] = hostile
	set := a.byLevel[hostile.DungeonLevel]
	if set == nil {
		set = make(map[string]bool)
		a.byLevel[hostile.DungeonLevel] = set
	}
	set[hostile.ID] = true
}

// placeLocked claims a random empty cell on the hostile's home level.
// Exhaustion leaves the hostile unplaced and returns nil.
func (a *Arena) placeLocked(hostile *NPC) error {
	pos, err := a.grid.PlaceAtRandomEmpty(hostile.DungeonLevel, hostile.CellKind(), a.attempts, a.roller)
	if err != nil {
		if errors.Is(err, grid.ErrNoEmptyCell) {
			a.logger.Warn("no empty cell for hostile",
				zap.String("id", hostile.ID),
				zap.Int("dungeonLevel", hostile.DungeonLevel))
			hostile.Position = nil
			return nil
		}
		return fmt.Errorf("place hostile %s: %w", hostile.ID, err)
	}
	hostile.Position = &pos
	a.byPosition[pos] = hostile.ID
	return nil
}

// vacateLocked releases the hostile's cell if the arena still owns it. A
// cell claimed by another occupant since the hostile's defeat is left
// alone.
func (a *Arena) vacateLocked(hostile *NPC) {
	if hostile.Position == nil {
		return
	}
	pos := *hostile.Position
	hostile.Position = nil
	delete(a.byPosition, pos)
	kind, err := a.grid.Kind(pos)
	if err != nil || kind != hostile.CellKind() {
		return
	}
	if err := a.grid.Clear(pos); err != nil {
		a.logger.Warn("failed to vacate hostile cell",
			zap.String("id", hostile.ID),
			zap.String("position", pos.String()),
			zap.Error(err))
	}
}
