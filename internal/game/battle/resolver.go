package battle

import (
	"github.com/cory-johannsen/expedition/internal/game/character"
)

// AttackResult reports one attacker-to-defender exchange.
type AttackResult struct {
	// Damage is the health actually removed, after the defense reduction
	// and the minimum-1 floor.
	Damage int
	// DefenderAlive is the defender's state after the exchange, including
	// any revival.
	DefenderAlive bool
	// RevivalUsed is true when the defender went down and a revival item
	// brought them back.
	RevivalUsed bool
}

// ReviveFunc is invoked when the defender goes down; it reports whether a
// revival brought them back. Pass nil for defenders that cannot revive.
type ReviveFunc func(defender *character.Combatant) bool

// ResolveAttack executes exactly one exchange: the attacker's total attack
// lands on the defender, and a downed defender gets its revival chance
// before the result is final.
//
// Precondition: attacker and defender are non-nil.
// Postcondition: only the defender's health (and, on revival, inventory)
// change.
func ResolveAttack(attacker, defender *character.Combatant, revive ReviveFunc) AttackResult {
	damage := defender.TakeDamage(attacker.TotalAttack())
	result := AttackResult{
		Damage:        damage,
		DefenderAlive: defender.Alive(),
	}
	if !result.DefenderAlive && revive != nil && revive(defender) {
		result.DefenderAlive = true
		result.RevivalUsed = true
	}
	return result
}
