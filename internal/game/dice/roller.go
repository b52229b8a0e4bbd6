package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged random draws.
// All draws are logged at debug level with the draw kind, bounds, and result.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller creates a Roller that draws from src and logs each draw to logger.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Intn returns a random int in [0, n).
//
// Precondition: n > 0.
func (r *Roller) Intn(n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("draw intn", zap.Int("n", n), zap.Int("result", v))
	return v
}

// Range returns a random int in [min, max], both bounds inclusive.
//
// Precondition: max >= min. Panics with "dice: Range called with max < min"
// otherwise.
func (r *Roller) Range(min, max int) int {
	if max < min {
		panic("dice: Range called with max < min")
	}
	v := min + r.src.Intn(max-min+1)
	r.logger.Debug("draw range", zap.Int("min", min), zap.Int("max", max), zap.Int("result", v))
	return v
}

// Chance reports whether a roll in [0, 100) landed below percent. Chance(0)
// is always false, Chance(100) always true.
//
// Precondition: 0 <= percent <= 100.
func (r *Roller) Chance(percent int) bool {
	if percent <= 0 {
		return false
	}
	if percent >= 100 {
		return true
	}
	v := r.src.Intn(100)
	hit := v < percent
	r.logger.Debug("draw chance", zap.Int("percent", percent), zap.Int("roll", v), zap.Bool("hit", hit))
	return hit
}

// WeightedIndex returns an index into weights, selected with probability
// proportional to each weight. Zero-weight entries are never selected.
//
// Precondition: weights must be non-empty and sum to a positive total.
// Panics with "dice: WeightedIndex called with non-positive total" otherwise.
// Postcondition: 0 <= result < len(weights) and weights[result] > 0.
func (r *Roller) WeightedIndex(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		panic("dice: WeightedIndex called with non-positive total")
	}
	roll := r.src.Intn(total)
	for i, w := range weights {
		roll -= w
		if roll < 0 {
			r.logger.Debug("draw weighted", zap.Ints("weights", weights), zap.Int("index", i))
			return i
		}
	}
	// Unreachable: roll < total and the loop consumes the full total.
	panic("dice: WeightedIndex walked past the final weight")
}

// Pick returns a uniformly chosen element of items.
//
// Precondition: items must be non-empty.
func Pick[T any](r *Roller, items []T) T {
	if len(items) == 0 {
		panic("dice: Pick called with no items")
	}
	return items[r.Intn(len(items))]
}
