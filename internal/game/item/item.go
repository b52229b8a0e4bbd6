// Package item provides the consumable and equipment definitions used by the
// expedition engine: healing potions, the revival item, energy restoratives,
// the boss-gate pass, and weapons. Definitions are built in but can be
// overridden from YAML content files.
package item

import (
	"errors"
	"fmt"
)

// Kind is the serialization discriminator for an item. Every save document
// carries it so a snapshot can be reconstructed without probing fields.
type Kind string

const (
	// KindPotion restores Heal health on use.
	KindPotion Kind = "potion"
	// KindRevival restores a downed combatant to full health.
	KindRevival Kind = "revival"
	// KindEnergy restores Energy energy on use.
	KindEnergy Kind = "energy"
	// KindGatePass bypasses a boss gate, consuming the pass.
	KindGatePass Kind = "gate_pass"
)

// validKinds is the set of valid Item kinds.
var validKinds = map[Kind]bool{
	KindPotion:   true,
	KindRevival:  true,
	KindEnergy:   true,
	KindGatePass: true,
}

// IDs of the built-in items.
const (
	SmallPotionID  = "small_potion"
	MediumPotionID = "medium_potion"
	LargePotionID  = "large_potion"
	MaxPotionID    = "max_potion"
	PhoenixDownID  = "phoenix_down"
	EnergyPotionID = "energy_potion"
	SickNoteID     = "sick_note"
)

// Item defines one consumable. Items are plain values: effects are applied by
// the consumer (battle revival, expedition item use), never by the item itself.
type Item struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Kind        Kind   `yaml:"kind" json:"kind"`
	Heal        int    `yaml:"heal" json:"heal"`     // health restored, KindPotion only
	Energy      int    `yaml:"energy" json:"energy"` // energy restored, KindEnergy only
	Value       int    `yaml:"value" json:"value"`   // trade value in credits
}

// Validate checks that the Item satisfies its invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (it Item) Validate() error {
	var errs []error
	if it.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if it.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if !validKinds[it.Kind] {
		errs = append(errs, fmt.Errorf("Kind must be one of potion, revival, energy, gate_pass; got %q", it.Kind))
	}
	if it.Kind == KindPotion && it.Heal <= 0 {
		errs = append(errs, errors.New("Heal must be > 0 when Kind is potion"))
	}
	if it.Kind == KindEnergy && it.Energy <= 0 {
		errs = append(errs, errors.New("Energy must be > 0 when Kind is energy"))
	}
	if it.Value < 0 {
		errs = append(errs, errors.New("Value must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %v", errs)
	}
	return nil
}

// Catalog is an immutable-after-construction set of item definitions keyed by
// ID, preserving definition order.
type Catalog struct {
	byID  map[string]Item
	order []string
}

// NewCatalog builds a Catalog from defs.
//
// Precondition: every def must pass Validate; IDs must be unique.
// Postcondition: returns a Catalog or the first validation/duplicate error.
func NewCatalog(defs []Item) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Item, len(defs))}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("catalog item %q: %w", d.ID, err)
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("catalog item %q: duplicate ID", d.ID)
		}
		c.byID[d.ID] = d
		c.order = append(c.order, d.ID)
	}
	return c, nil
}

// DefaultCatalog returns the built-in item set.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog([]Item{
		{ID: SmallPotionID, Name: "Small Potion", Description: "Restores 20 HP", Kind: KindPotion, Heal: 20, Value: 10},
		{ID: MediumPotionID, Name: "Medium Potion", Description: "Restores 50 HP", Kind: KindPotion, Heal: 50, Value: 25},
		{ID: LargePotionID, Name: "Large Potion", Description: "Restores 100 HP", Kind: KindPotion, Heal: 100, Value: 50},
		{ID: MaxPotionID, Name: "Max Potion", Description: "Fully restores health", Kind: KindPotion, Heal: 200, Value: 100},
		{ID: PhoenixDownID, Name: "Phoenix Down", Description: "Revives a fallen character with full HP", Kind: KindRevival, Value: 150},
		{ID: EnergyPotionID, Name: "Energy Potion", Description: "Restores 50 energy", Kind: KindEnergy, Energy: 50, Value: 15},
		{ID: SickNoteID, Name: "Sick Note", Description: "Allows you to skip a boss gate", Kind: KindGatePass, Value: 50},
	})
	if err != nil {
		panic("item: built-in catalog is invalid: " + err.Error())
	}
	return c
}

// Get returns the item with the given ID.
func (c *Catalog) Get(id string) (Item, bool) {
	it, ok := c.byID[id]
	return it, ok
}

// MustGet returns the item with the given ID, panicking when absent.
//
// Precondition: id must exist in the catalog.
func (c *Catalog) MustGet(id string) Item {
	it, ok := c.byID[id]
	if !ok {
		panic("item: MustGet of unknown item " + id)
	}
	return it
}

// All returns the catalog's items in definition order.
func (c *Catalog) All() []Item {
	out := make([]Item, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Len returns the number of definitions in the catalog.
func (c *Catalog) Len() int {
	return len(c.order)
}
