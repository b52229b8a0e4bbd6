package npc

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/expedition/internal/game/character"
	"github.com/cory-johannsen/expedition/internal/game/dice"
	"github.com/cory-johannsen/expedition/internal/game/item"
)

// Base stat ranges for a level 1 hostile. Higher levels scale these by
// 1 + 0.15 per level above 1; bosses double the scaled result.
const (
	baseHealthMin  = 60
	baseHealthMax  = 90
	baseAttackMin  = 8
	baseAttackMax  = 15
	baseDefenseMin = 5
	baseDefenseMax = 8
	baseAgilityMin = 5
	baseAgilityMax = 8

	baseCreditsMin = 50
	baseCreditsMax = 200

	hostileEnergy = 50

	levelScaling    = 0.15
	guardianScaling = 0.08

	guardianHealthFactor = 0.8
	guardianStatFactor   = 0.7
	guardianWeaponFactor = 0.5

	guardianCreditsMin = 1000
	guardianCreditsMax = 3000
	guardianDropCount  = 2
)

// Generator assembles hostiles from the dice roller, the name tables, and
// the item catalog.
type Generator struct {
	roller  *dice.Roller
	tables  *NameTables
	catalog *item.Catalog
	logger  *zap.Logger
}

// NewGenerator wires a Generator. A nil logger is replaced with a no-op.
func NewGenerator(roller *dice.Roller, tables *NameTables, catalog *item.Catalog, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{roller: roller, tables: tables, catalog: catalog, logger: logger}
}

// Generate rolls a hostile for the given level. Levels below 1 are coerced
// to 1. Bosses carry doubled stats and the "B" symbol.
//
// Postcondition: the hostile is alive, unplaced, and Level >= 1.
func (g *Generator) Generate(level int, boss bool) *NPC {
	if level < 1 {
		level = 1
	}
	multiplier := 1.0 + levelScaling*float64(level-1)
	health := scaleStat(g.roller.Range(baseHealthMin, baseHealthMax), multiplier, boss)
	attack := scaleStat(g.roller.Range(baseAttackMin, baseAttackMax), multiplier, boss)
	defense := scaleStat(g.roller.Range(baseDefenseMin, baseDefenseMax), multiplier, boss)
	agility := scaleStat(g.roller.Range(baseAgilityMin, baseAgilityMax), multiplier, boss)

	name := g.tables.HostileName(g.roller, level, boss)
	symbol := "E"
	if boss {
		symbol = "B"
	}
	credits := g.roller.Range(baseCreditsMin, baseCreditsMax) * level

	sheet := character.Combatant{
		Name:      name,
		Symbol:    symbol,
		Health:    health,
		MaxHealth: health,
		Attack:    attack,
		Defense:   defense,
		Agility:   agility,
		Credits:   credits,
		Energy:    hostileEnergy,
		MaxEnergy: hostileEnergy,
	}
	hostile := New(sheet, level, boss, g.dropsForLevel(level))
	g.logger.Debug("generated hostile",
		zap.String("id", hostile.ID),
		zap.String("name", name),
		zap.Int("level", level),
		zap.Bool("boss", boss),
		zap.Int("health", health),
		zap.Int("attack", attack),
		zap.Int("defense", defense),
		zap.Int("agility", agility),
		zap.Int("credits", credits))
	return hostile
}

// dropsForLevel builds the default loot table for a generated hostile.
// Stronger hostiles carry deeper tables.
func (g *Generator) dropsForLevel(level int) []Drop {
	drops := []Drop{{Item: g.catalog.MustGet(item.SmallPotionID), Chance: 25}}
	if level >= 3 {
		drops = append(drops, Drop{Item: g.catalog.MustGet(item.MediumPotionID), Chance: 15})
	}
	if level >= 6 {
		drops = append(drops, Drop{Item: g.catalog.MustGet(item.LargePotionID), Chance: 10})
	}
	return drops
}

// GenerateGuardian builds one of a portal's guardian pair from the
// challenger's current sheet. Ordinal selects the guardian's role and
// symbol; stats, bounty, and armament all scale with the dungeon level.
//
// Postcondition: the guardian is alive, armed, carries exactly two
// guaranteed drops, and Level >= 1.
func (g *Generator) GenerateGuardian(challenger *character.Player, ordinal, dungeonLevel int) *NPC {
	multiplier := 1.0 + guardianScaling*float64(dungeonLevel)
	health := int(guardianHealthFactor * float64(challenger.MaxHealth) * multiplier)
	attack := int(guardianStatFactor * float64(challenger.Attack) * multiplier)
	defense := int(guardianStatFactor * float64(challenger.Defense) * multiplier)
	agility := int(guardianStatFactor * float64(challenger.Agility) * multiplier)

	name, symbol := g.tables.GuardianName(g.roller, ordinal, dungeonLevel)
	credits := int(float64(g.roller.Range(guardianCreditsMin, guardianCreditsMax)) * multiplier)

	weaponBase := challenger.Attack
	if challenger.Weapon != nil {
		weaponBase = challenger.Weapon.Attack
	}
	weaponAttack := int(guardianWeaponFactor * float64(weaponBase) * multiplier)
	if weaponAttack < 1 {
		weaponAttack = 1
	}
	weapon := &item.Weapon{
		Name:        g.tables.GuardianWeaponName(g.roller),
		Description: fmt.Sprintf("Armament of the guardians of level %d", dungeonLevel),
		Attack:      weaponAttack,
		Value:       weaponAttack * 10,
	}

	drops := make([]Drop, 0, guardianDropCount)
	for i := 0; i < guardianDropCount; i++ {
		drops = append(drops, Drop{Item: g.catalog.RollBossDrop(g.roller), Chance: 100})
	}

	sheet := character.Combatant{
		Name:      name,
		Symbol:    symbol,
		Health:    health,
		MaxHealth: health,
		Attack:    attack,
		Defense:   defense,
		Agility:   agility,
		Weapon:    weapon,
		Credits:   credits,
		Energy:    hostileEnergy,
		MaxEnergy: hostileEnergy,
	}
	guardian := New(sheet, dungeonLevel, true, drops)
	guardian.DungeonLevel = dungeonLevel
	g.logger.Debug("generated guardian",
		zap.String("id", guardian.ID),
		zap.String("name", name),
		zap.Int("dungeonLevel", dungeonLevel),
		zap.Int("health", health),
		zap.Int("attack", attack),
		zap.String("weapon", weapon.Name),
		zap.Int("weaponAttack", weaponAttack))
	return guardian
}

func scaleStat(base int, multiplier float64, boss bool) int {
	scaled := int(float64(base) * multiplier)
	if boss {
		scaled *= 2
	}
	return scaled
}
