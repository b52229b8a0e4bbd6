package item

import "github.com/cory-johannsen/expedition/internal/game/dice"

// rewardOrder is the reward draw pool, ordered to match the weight vectors:
// small, medium, large potion, then the revival item.
var rewardOrder = []string{SmallPotionID, MediumPotionID, LargePotionID, PhoenixDownID}

// BossDropWeights is the weight vector for drops carried by generated bosses.
var BossDropWeights = []int{30, 30, 25, 15}

// RewardWeights returns the weight vector over the reward pool for a dungeon
// level. Deeper levels shift weight toward large potions and revival items.
//
// Postcondition: len(result) == 4 and the weights sum to 100.
func RewardWeights(dungeonLevel int) []int {
	switch {
	case dungeonLevel >= 8:
		return []int{5, 15, 40, 40}
	case dungeonLevel >= 4:
		return []int{10, 30, 40, 20}
	default:
		return []int{20, 40, 30, 10}
	}
}

// RewardPool returns the reward candidates in weight order.
//
// Precondition: the catalog must contain every built-in reward item ID.
func (c *Catalog) RewardPool() []Item {
	pool := make([]Item, len(rewardOrder))
	for i, id := range rewardOrder {
		pool[i] = c.MustGet(id)
	}
	return pool
}

// RollReward draws one item from the level-weighted reward table.
//
// Precondition: roller must be non-nil; the catalog must contain the built-in
// reward item IDs.
func (c *Catalog) RollReward(roller *dice.Roller, dungeonLevel int) Item {
	pool := c.RewardPool()
	return pool[roller.WeightedIndex(RewardWeights(dungeonLevel))]
}

// RollBossDrop draws one item from the boss drop table.
//
// Precondition: roller must be non-nil; the catalog must contain the built-in
// reward item IDs.
func (c *Catalog) RollBossDrop(roller *dice.Roller) Item {
	pool := c.RewardPool()
	return pool[roller.WeightedIndex(BossDropWeights)]
}
