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

// Default expedition grid dimensions.
const (
	DefaultGridWidth  = 12
	DefaultGridHeight = 12
	DefaultGridDepth  = 3
)

// Config assembles the machinery every new session is wired with. The
// zero value works: every field has a default.
type Config struct {
	GridWidth  int
	GridHeight int
	GridDepth  int
	// PlacementAttempts bounds random-placement searches; non-positive
	// falls back to grid.DefaultPlacementAttempts.
	PlacementAttempts int

	// Battle tunes the orchestrator shared by all of a session's fights.
	Battle battle.Config

	// Catalog defaults to the built-in item set.
	Catalog *item.Catalog
	// Tables defaults to the built-in hostile name tables.
	Tables *npc.NameTables
	// Loadouts overrides the built-in starting kits per difficulty.
	Loadouts map[item.Difficulty]item.Loadout

	// Hooks receives lifecycle events for every session; nil is skipped.
	Hooks Hooks
	// Source defaults to the crypto-backed source.
	Source dice.Source
	Logger *zap.Logger
}

// Manager creates and tracks the active expedition sessions.
//
// Concurrency: safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	cfg      Config
	logger   *zap.Logger
	sessions map[string]*Session
}

// NewManager applies Config defaults and returns an empty Manager.
func NewManager(cfg Config) *Manager {
	if cfg.GridWidth <= 0 {
		cfg.GridWidth = DefaultGridWidth
	}
	if cfg.GridHeight <= 0 {
		cfg.GridHeight = DefaultGridHeight
	}
	if cfg.GridDepth <= 0 {
		cfg.GridDepth = DefaultGridDepth
	}
	if cfg.PlacementAttempts <= 0 {
		cfg.PlacementAttempts = grid.DefaultPlacementAttempts
	}
	if cfg.Catalog == nil {
		cfg.Catalog = item.DefaultCatalog()
	}
	if cfg.Tables == nil {
		cfg.Tables = npc.DefaultNameTables()
	}
	if cfg.Source == nil {
		cfg.Source = dice.NewCryptoSource()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Manager{
		cfg:      cfg,
		logger:   cfg.Logger,
		sessions: make(map[string]*Session),
	}
}

// Start creates a session: a fresh player carrying the difficulty's
// starting kit, placed at the start cell of a new grid whose first level
// is populated with hostiles and its portal. The player holds the
// starting level's gate key from the outset.
func (m *Manager) Start(playerName string, difficulty item.Difficulty) (*Session, error) {
	if difficulty == "" {
		difficulty = item.DifficultyMedium
	}

	player := character.NewPlayer(playerName)
	grants, err := m.loadoutFor(difficulty).Grants(m.cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("start expedition for %q: %w", playerName, err)
	}
	for _, granted := range grants {
		player.AddItem(granted)
	}

	g, err := grid.New(m.cfg.GridWidth, m.cfg.GridHeight, m.cfg.GridDepth)
	if err != nil {
		return nil, fmt.Errorf("start expedition for %q: %w", playerName, err)
	}
	roller := dice.NewRoller(m.cfg.Source, m.logger)
	generator := npc.NewGenerator(roller, m.cfg.Tables, m.cfg.Catalog, m.logger)
	arena := npc.NewArena(g, generator, roller, m.cfg.PlacementAttempts, m.logger)
	orch := battle.NewOrchestrator(m.cfg.Battle, roller, m.cfg.Catalog, arena, m.logger)

	start := g.StartPosition()
	if err := g.Place(start, grid.CellPlayer); err != nil {
		return nil, fmt.Errorf("start expedition for %q: %w", playerName, err)
	}
	player.LevelKeys.Grant(start.Level)

	s := &Session{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		Difficulty: difficulty,
		Player:     player,
		grid:       g,
		arena:      arena,
		generator:  generator,
		orch:       orch,
		roller:     roller,
		combo:      battle.NewComboState(),
		hooks:      m.cfg.Hooks,
		logger:     m.logger,
		attempts:   m.cfg.PlacementAttempts,
		position:   start,
		portals:    make(map[int]grid.Position),
		visited:    make(map[int]bool),
	}
	s.mu.Lock()
	s.ensureLevelLocked(start.Level)
	s.mu.Unlock()

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("expedition started",
		zap.String("session", s.ID),
		zap.String("player", playerName),
		zap.String("difficulty", string(difficulty)))
	return s, nil
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrUnknownSession)
	}
	return s, nil
}

// End removes the session with the given id. The session's state is gone
// once ended; callers snapshot first when they mean to save.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, ErrUnknownSession)
	}
	delete(m.sessions, id)
	m.logger.Info("expedition ended", zap.String("session", id))
	return nil
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// loadoutFor resolves the starting kit for a difficulty, preferring the
// configured override.
func (m *Manager) loadoutFor(d item.Difficulty) item.Loadout {
	if l, ok := m.cfg.Loadouts[d]; ok {
		return l
	}
	return item.LoadoutFor(d)
}
