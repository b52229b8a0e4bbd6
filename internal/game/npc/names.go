package npc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/expedition/internal/game/dice"
)

// NameTables holds the word lists used to synthesize hostile and guardian
// names. The zero value is not usable; start from DefaultNameTables or
// LoadNameTables.
type NameTables struct {
	Adjectives     []string `yaml:"adjectives"`
	Types          []string `yaml:"types"`
	BossAdjectives []string `yaml:"boss_adjectives"`
	BossTypes      []string `yaml:"boss_types"`
	BossSymbols    []string `yaml:"boss_symbols"`
	WeaponPrefixes []string `yaml:"weapon_prefixes"`
	WeaponTypes    []string `yaml:"weapon_types"`
}

// DefaultNameTables returns the built-in word lists.
func DefaultNameTables() *NameTables {
	return &NameTables{
		Adjectives:     []string{"Fierce", "Mighty", "Swift", "Cunning", "Ancient", "Dark", "Wild"},
		Types:          []string{"Warrior", "Hunter", "Rogue", "Brute", "Knight", "Guard"},
		BossAdjectives: []string{"Ancient", "Corrupted", "Void", "Eternal", "Shadow", "Infernal", "Celestial", "Abyssal", "Divine", "Phantom"},
		BossTypes:      []string{"Guardian", "Warden"},
		BossSymbols:    []string{"B", "K"},
		WeaponPrefixes: []string{"Soul", "Doom", "Void", "Dragon", "Ancient", "Chaos", "Abyssal", "Divine"},
		WeaponTypes:    []string{"Sword", "Axe", "Spear", "Bow", "Dagger", "Mace", "Staff", "Crossbow"},
	}
}

// Validate reports every defect in the tables.
func (t *NameTables) Validate() []error {
	var errs []error
	check := func(field string, list []string) {
		if len(list) == 0 {
			errs = append(errs, fmt.Errorf("name tables: %s is empty", field))
			return
		}
		for i, entry := range list {
			if entry == "" {
				errs = append(errs, fmt.Errorf("name tables: %s[%d] is blank", field, i))
			}
		}
	}
	check("adjectives", t.Adjectives)
	check("types", t.Types)
	check("boss_adjectives", t.BossAdjectives)
	check("boss_types", t.BossTypes)
	check("boss_symbols", t.BossSymbols)
	check("weapon_prefixes", t.WeaponPrefixes)
	check("weapon_types", t.WeaponTypes)
	if len(t.BossSymbols) != len(t.BossTypes) {
		errs = append(errs, fmt.Errorf("name tables: boss_symbols has %d entries, boss_types has %d", len(t.BossSymbols), len(t.BossTypes)))
	}
	return errs
}

// LoadNameTables reads a YAML word list file. Fields absent from the file
// keep their built-in defaults.
func LoadNameTables(path string) (*NameTables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read name tables %s: %w", path, err)
	}
	tables := DefaultNameTables()
	if err := yaml.Unmarshal(data, tables); err != nil {
		return nil, fmt.Errorf("parse name tables %s: %w", path, err)
	}
	if errs := tables.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid name tables %s: %v", path, errs)
	}
	return tables, nil
}

// HostileName composes a display name for a generated hostile, e.g.
// "Level 3 Fierce Warrior" or "Boss 5 Ancient Knight".
func (t *NameTables) HostileName(roller *dice.Roller, level int, boss bool) string {
	prefix := "Level"
	if boss {
		prefix = "Boss"
	}
	adjective := dice.Pick(roller, t.Adjectives)
	kind := dice.Pick(roller, t.Types)
	return fmt.Sprintf("%s %d %s %s", prefix, level, adjective, kind)
}

// GuardianName composes the display name, map symbol, and role for the
// guardian at the given ordinal, e.g. "Corrupted Guardian of Level 4".
func (t *NameTables) GuardianName(roller *dice.Roller, ordinal, dungeonLevel int) (name, symbol string) {
	role := t.BossTypes[ordinal%len(t.BossTypes)]
	symbol = t.BossSymbols[ordinal%len(t.BossSymbols)]
	adjective := dice.Pick(roller, t.BossAdjectives)
	return fmt.Sprintf("%s %s of Level %d", adjective, role, dungeonLevel), symbol
}

// GuardianWeaponName composes a guardian armament name, e.g. "Doom Spear".
func (t *NameTables) GuardianWeaponName(roller *dice.Roller) string {
	return dice.Pick(roller, t.WeaponPrefixes) + " " + dice.Pick(roller, t.WeaponTypes)
}
