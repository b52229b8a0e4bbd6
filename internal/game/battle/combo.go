package battle

// ComboState tracks the player's consecutive-victory streak. The
// orchestrator mutates it at battle commit points only; callers own its
// lifetime so reward math stays testable in isolation.
//
// Invariant: Multiplier == 1 + 0.1*Count.
type ComboState struct {
	Count      int     `json:"count"`
	Multiplier float64 `json:"multiplier"`
}

// NewComboState returns a fresh streak at multiplier 1.0.
func NewComboState() *ComboState {
	return &ComboState{Multiplier: 1.0}
}

// RecordVictory extends the streak and raises the multiplier by 0.1.
func (c *ComboState) RecordVictory() {
	c.Count++
	c.Multiplier = 1.0 + 0.1*float64(c.Count)
}

// Reset clears the streak after a defeat.
func (c *ComboState) Reset() {
	c.Count = 0
	c.Multiplier = 1.0
}

// Bonus returns the streak bonus on top of base: floor(base*(multiplier-1)).
func (c *ComboState) Bonus(base int) int {
	return int(float64(base) * (c.Multiplier - 1.0))
}
