// Package dice provides the randomness abstraction shared by every
// chance-taking component of the expedition engine: stat generation,
// loot rolls, respawn placement, and reward scaling.
package dice

// Source is the randomness provider for all rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
