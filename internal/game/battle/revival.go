package battle

import (
	"github.com/cory-johannsen/expedition/internal/game/character"
	"github.com/cory-johannsen/expedition/internal/game/item"
)

// ConfirmFunc decides whether a found revival item should be consumed. An
// interactive frontend prompts the user here; headless callers install one
// of the Auto functions.
type ConfirmFunc func(consumable item.Item) bool

// AutoAccept always consumes the revival item.
func AutoAccept(item.Item) bool { return true }

// AutoDecline never consumes the revival item.
func AutoDecline(item.Item) bool { return false }

// AttemptRevival consumes one revival item from the combatant's inventory
// and restores health to max. It succeeds only when the combatant is down;
// on a living combatant it returns false and mutates nothing. Items that
// fail validation are treated as unusable and skipped. A nil confirm
// auto-accepts.
//
// Postcondition: on success, exactly one revival item is gone and
// health == max health; on failure, inventory and health are untouched.
func AttemptRevival(c *character.Combatant, confirm ConfirmFunc) bool {
	if c.Alive() {
		return false
	}
	if confirm == nil {
		confirm = AutoAccept
	}
	for i, consumable := range c.Inventory {
		if consumable.Kind != item.KindRevival {
			continue
		}
		if err := consumable.Validate(); err != nil {
			continue
		}
		if !confirm(consumable) {
			return false
		}
		c.RemoveItemAt(i)
		c.Heal(c.MaxHealth)
		return true
	}
	return false
}
