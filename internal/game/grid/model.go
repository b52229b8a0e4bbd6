// Package grid provides the multi-level expedition grid: cell occupancy,
// bounds checking, and bounded random placement. The grid knows what kind of
// thing occupies each cell but nothing about the things themselves; entity
// state lives with its owner (arena, session).
package grid

import (
	"errors"
	"fmt"
)

// CellKind identifies what occupies a grid cell.
type CellKind string

const (
	CellEmpty  CellKind = "empty"
	CellPlayer CellKind = "player"
	CellNPC    CellKind = "npc"
	CellBoss   CellKind = "boss"
	CellPortal CellKind = "portal"
	CellStore  CellKind = "store"
)

// Symbol returns the single-glyph display symbol for a cell kind.
func (k CellKind) Symbol() string {
	switch k {
	case CellPlayer:
		return "@"
	case CellNPC:
		return "E"
	case CellBoss:
		return "B"
	case CellPortal:
		return "O"
	case CellStore:
		return "$"
	default:
		return "."
	}
}

// Sentinel errors for grid operations.
var (
	// ErrMalformedPosition marks a position outside the grid's bounds.
	ErrMalformedPosition = errors.New("position out of bounds")
	// ErrCellOccupied marks a placement into a non-empty cell.
	ErrCellOccupied = errors.New("cell occupied")
	// ErrNoEmptyCell marks random-placement exhaustion after bounded attempts.
	ErrNoEmptyCell = errors.New("no empty cell found")
)

// Position addresses one cell: dungeon level, then row and column within it.
type Position struct {
	Level int `json:"level"`
	Row   int `json:"row"`
	Col   int `json:"col"`
}

// String renders the position as "L12:(3,4)".
func (p Position) String() string {
	return fmt.Sprintf("L%d:(%d,%d)", p.Level, p.Row, p.Col)
}

// Direction is a single-cell movement on a level's plane.
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// Directions lists the four movement directions.
var Directions = []Direction{North, South, East, West}

// ParseDirection resolves a direction name or its single-letter shorthand.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "north", "n":
		return North, nil
	case "south", "s":
		return South, nil
	case "east", "e":
		return East, nil
	case "west", "w":
		return West, nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

// Offset returns the row and column deltas for a direction.
//
// Precondition: d must be one of the four Direction constants; anything else
// returns (0, 0).
func (d Direction) Offset() (dr, dc int) {
	switch d {
	case North:
		return -1, 0
	case South:
		return 1, 0
	case East:
		return 0, 1
	case West:
		return 0, -1
	default:
		return 0, 0
	}
}

// Step returns the position one cell away in the given direction. Bounds are
// the grid's concern, not the position's.
func (p Position) Step(d Direction) Position {
	dr, dc := d.Offset()
	return Position{Level: p.Level, Row: p.Row + dr, Col: p.Col + dc}
}
