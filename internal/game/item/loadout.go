package item

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Difficulty selects a starting loadout for a new expedition.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ConsumableGrant is an item+quantity pair for starting consumables.
type ConsumableGrant struct {
	ItemID   string `yaml:"item"`
	Quantity int    `yaml:"quantity"`
}

// Loadout is the starting kit granted to a player at expedition start.
type Loadout struct {
	Consumables []ConsumableGrant `yaml:"consumables"`
}

// defaultLoadouts are the built-in kits per difficulty.
var defaultLoadouts = map[Difficulty]Loadout{
	DifficultyEasy: {Consumables: []ConsumableGrant{
		{ItemID: SmallPotionID, Quantity: 5},
		{ItemID: MediumPotionID, Quantity: 2},
		{ItemID: PhoenixDownID, Quantity: 2},
	}},
	DifficultyMedium: {Consumables: []ConsumableGrant{
		{ItemID: SmallPotionID, Quantity: 3},
		{ItemID: MediumPotionID, Quantity: 1},
		{ItemID: PhoenixDownID, Quantity: 1},
	}},
	DifficultyHard: {Consumables: []ConsumableGrant{
		{ItemID: SmallPotionID, Quantity: 1},
	}},
}

// LoadoutFor returns the built-in kit for the given difficulty.
//
// Precondition: d must be one of the Difficulty constants. Unknown
// difficulties fall back to DifficultyMedium.
func LoadoutFor(d Difficulty) Loadout {
	if l, ok := defaultLoadouts[d]; ok {
		return l
	}
	return defaultLoadouts[DifficultyMedium]
}

// Grants resolves the loadout against a catalog, expanding quantities into a
// flat item list in grant order.
//
// Postcondition: returns an error naming the first grant whose ItemID is not
// in the catalog; on success every granted item passes Validate.
func (l Loadout) Grants(c *Catalog) ([]Item, error) {
	var out []Item
	for _, g := range l.Consumables {
		it, ok := c.Get(g.ItemID)
		if !ok {
			return nil, fmt.Errorf("loadout grant: unknown item %q", g.ItemID)
		}
		for i := 0; i < g.Quantity; i++ {
			out = append(out, it)
		}
	}
	return out, nil
}

// loadoutFile is the YAML structure for a loadouts override file.
type loadoutFile struct {
	Easy   *Loadout `yaml:"easy"`
	Medium *Loadout `yaml:"medium"`
	Hard   *Loadout `yaml:"hard"`
}

// LoadLoadouts reads a YAML file mapping difficulties to kits. Difficulties
// absent from the file keep their built-in kit.
//
// Precondition: path must be a readable YAML file.
// Postcondition: returns a complete map over all three difficulties.
func LoadLoadouts(path string) (map[Difficulty]Loadout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadLoadouts: cannot read file %q: %w", path, err)
	}
	var lf loadoutFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("LoadLoadouts: cannot parse file %q: %w", path, err)
	}

	out := map[Difficulty]Loadout{
		DifficultyEasy:   defaultLoadouts[DifficultyEasy],
		DifficultyMedium: defaultLoadouts[DifficultyMedium],
		DifficultyHard:   defaultLoadouts[DifficultyHard],
	}
	if lf.Easy != nil {
		out[DifficultyEasy] = *lf.Easy
	}
	if lf.Medium != nil {
		out[DifficultyMedium] = *lf.Medium
	}
	if lf.Hard != nil {
		out[DifficultyHard] = *lf.Hard
	}
	return out, nil
}
