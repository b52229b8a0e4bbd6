// Package character defines the combatant domain model shared by the player
// and NPC variants: vitals, combat stats, equipment, credits, inventory, and
// energy. All operations are total functions over valid inputs; none return
// errors.
package character

import "github.com/cory-johannsen/expedition/internal/game/item"

// Combatant is the capability set every battle participant carries. Player
// and NPC embed it; the battle engine operates on the embedded value.
//
// Invariant: 0 <= Health <= MaxHealth, 0 <= Energy <= MaxEnergy, and
// Credits >= 0 after every method on this type.
type Combatant struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"` // single-glyph display symbol

	Health    int `json:"health"`
	MaxHealth int `json:"max_health"`

	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Agility int `json:"agility"`

	Weapon    *item.Weapon `json:"weapon,omitempty"`
	Credits   int          `json:"credits"`
	Inventory []item.Item  `json:"inventory"` // acquisition order

	Energy    int `json:"energy"`
	MaxEnergy int `json:"max_energy"`
}

// TakeDamage applies a raw attack value, reduced by Defense but never below
// 1; Health floors at 0.
//
// Postcondition: return value == max(1, raw - Defense) and Health decreased
// by at most that amount.
func (c *Combatant) TakeDamage(raw int) int {
	actual := raw - c.Defense
	if actual < 1 {
		actual = 1
	}
	c.Health -= actual
	if c.Health < 0 {
		c.Health = 0
	}
	return actual
}

// TotalAttack returns Attack plus the equipped weapon's contribution.
func (c *Combatant) TotalAttack() int {
	if c.Weapon != nil {
		return c.Attack + c.Weapon.Attack
	}
	return c.Attack
}

// Alive reports whether the combatant can still act.
func (c *Combatant) Alive() bool {
	return c.Health > 0
}

// Heal restores up to n health, clamped at MaxHealth, and returns the amount
// actually restored.
//
// Precondition: n >= 0.
func (c *Combatant) Heal(n int) int {
	before := c.Health
	c.Health += n
	if c.Health > c.MaxHealth {
		c.Health = c.MaxHealth
	}
	return c.Health - before
}

// HasEnergy reports whether at least n energy is available.
func (c *Combatant) HasEnergy(n int) bool {
	return c.Energy >= n
}

// UseEnergy decrements energy by n only when enough is available.
//
// Postcondition: returns true and Energy decreased by n, or returns false
// with no mutation.
func (c *Combatant) UseEnergy(n int) bool {
	if !c.HasEnergy(n) {
		return false
	}
	c.Energy -= n
	return true
}

// RestoreEnergy restores up to n energy, clamped at MaxEnergy, and returns
// the amount actually restored.
//
// Precondition: n >= 0.
func (c *Combatant) RestoreEnergy(n int) int {
	before := c.Energy
	c.Energy += n
	if c.Energy > c.MaxEnergy {
		c.Energy = c.MaxEnergy
	}
	return c.Energy - before
}

// AddCredits adds n credits.
//
// Precondition: n >= 0.
func (c *Combatant) AddCredits(n int) {
	c.Credits += n
}

// SpendCredits removes n credits only when the balance covers it.
//
// Postcondition: returns true and Credits decreased by n, or returns false
// with no mutation. Credits never go negative.
func (c *Combatant) SpendCredits(n int) bool {
	if n > c.Credits {
		return false
	}
	c.Credits -= n
	return true
}

// AddItem appends an item to the inventory, preserving acquisition order.
func (c *Combatant) AddItem(it item.Item) {
	c.Inventory = append(c.Inventory, it)
}

// FindItem returns the index of the first inventory item of the given kind,
// or -1 when none is held.
func (c *Combatant) FindItem(kind item.Kind) int {
	for i, it := range c.Inventory {
		if it.Kind == kind {
			return i
		}
	}
	return -1
}

// RemoveItemAt removes and returns the inventory item at index i.
//
// Postcondition: returns the removed item and true, or the zero Item and
// false when i is out of range.
func (c *Combatant) RemoveItemAt(i int) (item.Item, bool) {
	if i < 0 || i >= len(c.Inventory) {
		return item.Item{}, false
	}
	it := c.Inventory[i]
	c.Inventory = append(c.Inventory[:i], c.Inventory[i+1:]...)
	return it, true
}

// Equip sets the combatant's weapon, returning the previous one (nil when
// unarmed).
func (c *Combatant) Equip(w *item.Weapon) *item.Weapon {
	prev := c.Weapon
	c.Weapon = w
	return prev
}
