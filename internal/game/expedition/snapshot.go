package expedition

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/expedition/internal/game/battle"
	"github.com/cory-johannsen/expedition/internal/game/character"
	"github.com/cory-johannsen/expedition/internal/game/dice"
	"github.com/cory-johannsen/expedition/internal/game/grid"
	"github.com/cory-johannsen/expedition/internal/game/item"
	"github.com/cory-johannsen/expedition/internal/game/npc"
)

// Snapshot is a complete, self-contained record of one session, fit for
// JSON persistence. Everything reachable from it is deep-copied: mutating
// the live session after the snapshot never changes the snapshot.
type Snapshot struct {
	SessionID  string          `json:"session_id"`
	CreatedAt  time.Time       `json:"created_at"`
	TakenAt    time.Time       `json:"taken_at"`
	Difficulty item.Difficulty `json:"difficulty"`

	GridWidth  int `json:"grid_width"`
	GridHeight int `json:"grid_height"`
	GridDepth  int `json:"grid_depth"`

	Player   *character.Player     `json:"player"`
	Position grid.Position         `json:"position"`
	Portals  map[int]grid.Position `json:"portals"`
	Stores   []grid.Position       `json:"stores,omitempty"`
	Visited  []int                 `json:"visited"`
	Hostiles []*npc.NPC            `json:"hostiles"`
	Combo    battle.ComboState     `json:"combo"`
	History  []HistoryEntry        `json:"history"`
}

// Snapshot captures the session's full state at this moment. Hostiles are
// recorded in ID order so equal states snapshot identically.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID:  s.ID,
		CreatedAt:  s.CreatedAt,
		TakenAt:    time.Now().UTC(),
		Difficulty: s.Difficulty,
		GridWidth:  s.grid.Width(),
		GridHeight: s.grid.Height(),
		GridDepth:  s.grid.Depth(),
		Player:     clonePlayer(s.Player),
		Position:   s.position,
		Portals:    make(map[int]grid.Position, len(s.portals)),
		Combo:      *s.combo,
		History:    cloneHistory(s.history),
	}
	for level, pos := range s.portals {
		snap.Portals[level] = pos
	}
	snap.Stores = append([]grid.Position(nil), s.stores...)
	for level, seen := range s.visited {
		if seen {
			snap.Visited = append(snap.Visited, level)
		}
	}
	sort.Ints(snap.Visited)

	hostiles := s.arena.All()
	sort.Slice(hostiles, func(i, j int) bool { return hostiles[i].ID < hostiles[j].ID })
	for _, hostile := range hostiles {
		snap.Hostiles = append(snap.Hostiles, cloneNPC(hostile))
	}
	return snap
}

// Restore rebuilds a session from a snapshot and registers it under its
// recorded ID. The snapshot is not consumed: the restored session owns
// copies of everything.
//
// Precondition: the snapshot's session ID must not be active.
func (m *Manager) Restore(snap Snapshot) (*Session, error) {
	if snap.Player == nil {
		return nil, fmt.Errorf("restore session %s: snapshot has no player", snap.SessionID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.sessions[snap.SessionID]; dup {
		return nil, fmt.Errorf("restore session %s: session already active", snap.SessionID)
	}

	g, err := grid.New(snap.GridWidth, snap.GridHeight, snap.GridDepth)
	if err != nil {
		return nil, fmt.Errorf("restore session %s: %w", snap.SessionID, err)
	}
	roller := dice.NewRoller(m.cfg.Source, m.logger)
	generator := npc.NewGenerator(roller, m.cfg.Tables, m.cfg.Catalog, m.logger)
	arena := npc.NewArena(g, generator, roller, m.cfg.PlacementAttempts, m.logger)
	orch := battle.NewOrchestrator(m.cfg.Battle, roller, m.cfg.Catalog, arena, m.logger)

	if err := g.Place(snap.Position, grid.CellPlayer); err != nil {
		return nil, fmt.Errorf("restore session %s: place player: %w", snap.SessionID, err)
	}
	portals := make(map[int]grid.Position, len(snap.Portals))
	for level, pos := range snap.Portals {
		if err := g.Place(pos, grid.CellPortal); err != nil {
			return nil, fmt.Errorf("restore session %s: place portal on level %d: %w", snap.SessionID, level, err)
		}
		portals[level] = pos
	}
	for _, pos := range snap.Stores {
		if err := g.Place(pos, grid.CellStore); err != nil {
			return nil, fmt.Errorf("restore session %s: place store: %w", snap.SessionID, err)
		}
	}
	for _, hostile := range snap.Hostiles {
		if err := arena.Restore(cloneNPC(hostile)); err != nil {
			return nil, fmt.Errorf("restore session %s: %w", snap.SessionID, err)
		}
	}

	visited := make(map[int]bool, len(snap.Visited))
	for _, level := range snap.Visited {
		visited[level] = true
	}

	// Multiplier is derived from Count, not trusted from the document.
	combo := battle.ComboState{
		Count:      snap.Combo.Count,
		Multiplier: 1.0 + 0.1*float64(snap.Combo.Count),
	}

	s := &Session{
		ID:         snap.SessionID,
		CreatedAt:  snap.CreatedAt,
		Difficulty: snap.Difficulty,
		Player:     clonePlayer(snap.Player),
		grid:       g,
		arena:      arena,
		generator:  generator,
		orch:       orch,
		roller:     roller,
		combo:      &combo,
		hooks:      m.cfg.Hooks,
		logger:     m.logger,
		attempts:   m.cfg.PlacementAttempts,
		position:   snap.Position,
		portals:    portals,
		stores:     append([]grid.Position(nil), snap.Stores...),
		visited:    visited,
		history:    cloneHistory(snap.History),
	}
	m.sessions[s.ID] = s

	m.logger.Info("expedition restored",
		zap.String("session", s.ID),
		zap.String("player", s.Player.Name),
		zap.Time("takenAt", snap.TakenAt))
	return s, nil
}

// clonePlayer deep-copies a player, detaching inventory, weapon,
// statistics, and keys.
func clonePlayer(p *character.Player) *character.Player {
	out := *p
	out.Inventory = append([]item.Item(nil), p.Inventory...)
	if p.Weapon != nil {
		w := *p.Weapon
		out.Weapon = &w
	}
	out.Statistics = make(character.Statistics, len(p.Statistics))
	for name, count := range p.Statistics {
		out.Statistics[name] = count
	}
	out.LevelKeys = make(character.LevelKeys, len(p.LevelKeys))
	for level := range p.LevelKeys {
		out.LevelKeys.Grant(level)
	}
	return &out
}

// cloneHistory deep-copies history entries, detaching each outcome's
// level-up and loot slices.
func cloneHistory(entries []HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, len(entries))
	for i, entry := range entries {
		entry.Outcome.LevelUps = append([]character.LevelUp(nil), entry.Outcome.LevelUps...)
		entry.Outcome.Loot = append([]item.Item(nil), entry.Outcome.Loot...)
		out[i] = entry
	}
	return out
}

// cloneNPC deep-copies a hostile, detaching inventory, weapon, position,
// and drop table.
func cloneNPC(n *npc.NPC) *npc.NPC {
	out := *n
	out.Inventory = append([]item.Item(nil), n.Inventory...)
	if n.Weapon != nil {
		w := *n.Weapon
		out.Weapon = &w
	}
	if n.Position != nil {
		pos := *n.Position
		out.Position = &pos
	}
	out.Drops = append([]npc.Drop(nil), n.Drops...)
	return &out
}
