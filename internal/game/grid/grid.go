package grid

import (
	"fmt"
	"sync"

	"github.com/cory-johannsen/expedition/internal/game/dice"
)

// Default grid dimensions.
const (
	DefaultWidth  = 12
	DefaultHeight = 12
	DefaultDepth  = 3
)

// DefaultPlacementAttempts bounds the random search for an empty cell.
const DefaultPlacementAttempts = 100

// Grid is the thread-safe occupancy map for one expedition: Depth dungeon
// levels, each Height rows by Width columns.
//
// Concurrency: all methods are safe for concurrent use. Find-and-place
// operations hold the write lock for the whole search, so two callers can
// never claim the same cell.
type Grid struct {
	mu     sync.RWMutex
	width  int
	height int
	depth  int
	cells  [][][]CellKind // [level][row][col]
}

// New creates an empty grid.
//
// Precondition: width, height, and depth must be positive.
// Postcondition: every cell is CellEmpty.
func New(width, height, depth int) (*Grid, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive; got %dx%dx%d", width, height, depth)
	}
	cells := make([][][]CellKind, depth)
	for l := range cells {
		cells[l] = make([][]CellKind, height)
		for r := range cells[l] {
			row := make([]CellKind, width)
			for c := range row {
				row[c] = CellEmpty
			}
			cells[l][r] = row
		}
	}
	return &Grid{width: width, height: height, depth: depth, cells: cells}, nil
}

// Width returns the number of columns per level.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows per level.
func (g *Grid) Height() int { return g.height }

// Depth returns the number of dungeon levels.
func (g *Grid) Depth() int { return g.depth }

// StartPosition returns the player's initial cell: the middle of level 0.
func (g *Grid) StartPosition() Position {
	return Position{Level: 0, Row: g.height / 2, Col: g.width / 2}
}

// InBounds reports whether p addresses a cell on this grid.
func (g *Grid) InBounds(p Position) bool {
	return p.Level >= 0 && p.Level < g.depth &&
		p.Row >= 0 && p.Row < g.height &&
		p.Col >= 0 && p.Col < g.width
}

// Kind returns the occupant kind of the cell at p.
//
// Postcondition: returns ErrMalformedPosition when p is out of bounds.
func (g *Grid) Kind(p Position) (CellKind, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.InBounds(p) {
		return CellEmpty, fmt.Errorf("kind at %s: %w", p, ErrMalformedPosition)
	}
	return g.cells[p.Level][p.Row][p.Col], nil
}

// IsCellEmpty reports whether the cell at p is empty.
//
// Postcondition: returns ErrMalformedPosition when p is out of bounds.
func (g *Grid) IsCellEmpty(p Position) (bool, error) {
	k, err := g.Kind(p)
	if err != nil {
		return false, err
	}
	return k == CellEmpty, nil
}

// Place writes kind into the empty cell at p.
//
// Postcondition: returns ErrMalformedPosition out of bounds, ErrCellOccupied
// when the cell already holds something, nil on success.
func (g *Grid) Place(p Position, kind CellKind) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.InBounds(p) {
		return fmt.Errorf("place %s at %s: %w", kind, p, ErrMalformedPosition)
	}
	if g.cells[p.Level][p.Row][p.Col] != CellEmpty {
		return fmt.Errorf("place %s at %s: %w", kind, p, ErrCellOccupied)
	}
	g.cells[p.Level][p.Row][p.Col] = kind
	return nil
}

// Clear empties the cell at p. Clearing an already-empty cell is a no-op.
//
// Postcondition: returns ErrMalformedPosition when p is out of bounds.
func (g *Grid) Clear(p Position) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.InBounds(p) {
		return fmt.Errorf("clear %s: %w", p, ErrMalformedPosition)
	}
	g.cells[p.Level][p.Row][p.Col] = CellEmpty
	return nil
}

// Relocate atomically clears from and claims to with the kind previously at
// from. The write lock covers both cells, so no observer sees the entity in
// two places or neither.
//
// Postcondition: returns ErrMalformedPosition when either position is out of
// bounds, ErrCellOccupied when to is taken; from is untouched on error.
func (g *Grid) Relocate(from, to Position) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.InBounds(from) || !g.InBounds(to) {
		return fmt.Errorf("relocate %s to %s: %w", from, to, ErrMalformedPosition)
	}
	if g.cells[to.Level][to.Row][to.Col] != CellEmpty {
		return fmt.Errorf("relocate %s to %s: %w", from, to, ErrCellOccupied)
	}
	g.cells[to.Level][to.Row][to.Col] = g.cells[from.Level][from.Row][from.Col]
	g.cells[from.Level][from.Row][from.Col] = CellEmpty
	return nil
}

// PlaceAtRandomEmpty claims a uniformly-random empty cell on level for kind,
// retrying up to attempts times. The search and the claim happen under one
// lock acquisition.
//
// Precondition: src must be non-nil; attempts > 0; 0 <= level < Depth().
// Postcondition: returns the claimed position, or ErrNoEmptyCell after
// exhausting attempts. Callers treat exhaustion as non-fatal.
func (g *Grid) PlaceAtRandomEmpty(level int, kind CellKind, attempts int, src dice.Source) (Position, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if level < 0 || level >= g.depth {
		return Position{}, fmt.Errorf("random place on level %d: %w", level, ErrMalformedPosition)
	}
	for i := 0; i < attempts; i++ {
		p := Position{Level: level, Row: src.Intn(g.height), Col: src.Intn(g.width)}
		if g.cells[p.Level][p.Row][p.Col] == CellEmpty {
			g.cells[p.Level][p.Row][p.Col] = kind
			return p, nil
		}
	}
	return Position{}, fmt.Errorf("random place on level %d after %d attempts: %w", level, attempts, ErrNoEmptyCell)
}

// EmptyCellCount returns the number of empty cells on level, or 0 for an
// out-of-range level.
func (g *Grid) EmptyCellCount(level int) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if level < 0 || level >= g.depth {
		return 0
	}
	n := 0
	for _, row := range g.cells[level] {
		for _, k := range row {
			if k == CellEmpty {
				n++
			}
		}
	}
	return n
}

// Render returns the level's rows as display strings, one symbol per cell.
// Intended for the text console and logs, not for game logic.
func (g *Grid) Render(level int) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if level < 0 || level >= g.depth {
		return nil
	}
	out := make([]string, g.height)
	for r, row := range g.cells[level] {
		line := make([]byte, 0, g.width)
		for _, k := range row {
			line = append(line, k.Symbol()...)
		}
		out[r] = string(line)
	}
	return out
}
