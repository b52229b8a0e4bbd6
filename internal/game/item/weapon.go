package item

import (
	"errors"
	"fmt"
)

// Weapon is a piece of equipment contributing additively to its wielder's
// attack. A combatant holds at most one.
type Weapon struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Attack      int    `yaml:"attack" json:"attack"`
	Value       int    `yaml:"value" json:"value"`
}

// Validate checks that the Weapon satisfies its invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (w Weapon) Validate() error {
	var errs []error
	if w.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if w.Attack <= 0 {
		errs = append(errs, errors.New("Attack must be > 0"))
	}
	if w.Value < 0 {
		errs = append(errs, errors.New("Value must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("weapon validation failed: %v", errs)
	}
	return nil
}

// weaponTiers are the built-in weapons by tier. Tier index = level - 1.
var weaponTiers = []Weapon{
	{Name: "Wooden Sword", Description: "A basic training weapon", Attack: 5, Value: 50},
	{Name: "Iron Sword", Description: "A sturdy iron blade", Attack: 10, Value: 100},
	{Name: "Steel Sword", Description: "A well-crafted steel sword", Attack: 15, Value: 200},
	{Name: "Silver Sword", Description: "A finely crafted silver blade", Attack: 20, Value: 400},
	{Name: "Mythril Blade", Description: "A legendary sword of mythril", Attack: 25, Value: 800},
}

// WeaponForLevel returns the built-in weapon appropriate for level, clamping
// to the highest tier above it.
//
// Precondition: level >= 1.
// Postcondition: the returned weapon passes Validate.
func WeaponForLevel(level int) Weapon {
	if level < 1 {
		level = 1
	}
	if level > len(weaponTiers) {
		level = len(weaponTiers)
	}
	return weaponTiers[level-1]
}
