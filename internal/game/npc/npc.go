// Package npc generates hostile combatants, prices their bounty and
// experience, and tracks their placement on the expedition grid.
package npc

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/expedition/internal/game/character"
	"github.com/cory-johannsen/expedition/internal/game/dice"
	"github.com/cory-johannsen/expedition/internal/game/grid"
	"github.com/cory-johannsen/expedition/internal/game/item"
)

// Drop is a single probabilistic loot entry. Chance is a percentage in
// [0, 100]; 100 means the item always drops.
type Drop struct {
	Item   item.Item `json:"item"`
	Chance int       `json:"chance"`
}

// NPC is a hostile combatant. Level is always at least 1. DungeonLevel is
// the grid level the hostile prowls; Position is nil while the hostile is
// not placed on a cell.
type NPC struct {
	character.Combatant

	ID           string         `json:"id"`
	Level        int            `json:"level"`
	Boss         bool           `json:"boss"`
	DungeonLevel int            `json:"dungeon_level"`
	Position     *grid.Position `json:"position,omitempty"`
	Drops        []Drop         `json:"drops,omitempty"`
}

// New builds a hostile from an assembled combatant sheet, coercing Level
// to a minimum of 1 and assigning a fresh identity.
func New(sheet character.Combatant, level int, boss bool, drops []Drop) *NPC {
	if level < 1 {
		level = 1
	}
	return &NPC{
		Combatant: sheet,
		ID:        uuid.NewString(),
		Level:     level,
		Boss:      boss,
		Drops:     drops,
	}
}

// CellKind is the grid occupant kind the hostile claims when placed.
func (n *NPC) CellKind() grid.CellKind {
	if n.Boss {
		return grid.CellBoss
	}
	return grid.CellNPC
}

// Placed reports whether the hostile currently occupies a grid cell.
func (n *NPC) Placed() bool { return n.Position != nil }

// CreditValue is the bounty transferred to the victor when the hostile
// falls. Always at least 1.
func (n *NPC) CreditValue() int {
	value := 10 * n.Level
	if n.Boss {
		value *= 2
	}
	if value < 1 {
		value = 1
	}
	return value
}

// ExperienceValue prices the hostile for the victor's experience award.
// The stat-derived value scales with level and doubles for bosses; the
// floor of 20 per level applies after the doubling.
func (n *NPC) ExperienceValue() int {
	statValue := 0.2*float64(n.MaxHealth) +
		2.0*float64(n.Attack) +
		2.0*float64(n.Defense) +
		1.0*float64(n.Agility)
	scaled := statValue * (1.0 + 0.1*float64(n.Level-1))
	if n.Boss {
		scaled *= 2.0
	}
	floor := float64(20 * n.Level)
	if scaled < floor {
		scaled = floor
	}
	return int(scaled)
}

// RollDrops resolves the hostile's loot table, drawing each entry's chance
// independently. The returned slice preserves table order.
func (n *NPC) RollDrops(roller *dice.Roller) []item.Item {
	var loot []item.Item
	for _, drop := range n.Drops {
		if roller.Chance(drop.Chance) {
			loot = append(loot, drop.Item)
		}
	}
	return loot
}
