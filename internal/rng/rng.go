// Package rng provides the deterministic 32-bit PRNG threaded through every
// stochastic subsystem of the simulation. Given the same seed and the same
// call sequence, it produces the same outputs on any platform.
package rng

import "fmt"

// RNG is a seeded, stateful 32-bit pseudo-random generator. Its entire state
// is a single 32-bit word, so it serializes trivially alongside a
// SimulationState snapshot.
type RNG struct {
	state uint32
}

// New creates an RNG seeded with the given 32-bit value.
func New(seed uint32) *RNG {
	return &RNG{state: seed}
}

// State returns the current internal state word, suitable for persisting
// and later restoring via Restore.
func (r *RNG) State() uint32 {
	return r.state
}

// Restore resets the generator to a previously observed state.
func (r *RNG) Restore(state uint32) {
	r.state = state
}

// Next advances the generator and returns a float64 in [0, 1).
// Implements the mulberry32 mix: state = state + 0x6d2b79f5, then a
// fixed-point avalanche over the advanced state.
func (r *RNG) Next() float64 {
	r.state += 0x6d2b79f5
	t := r.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}

// Integer returns a pseudo-random integer in [0, max).
func (r *RNG) Integer(max int) int {
	if max <= 0 {
		return 0
	}
	return int(r.Next() * float64(max))
}

// Range returns a pseudo-random integer in [min, max).
func (r *RNG) Range(min, max int) int {
	if max <= min {
		return min
	}
	return min + r.Integer(max-min)
}

// Pick selects a uniformly random element from items. It is a fatal
// programming error to call Pick on an empty slice — callers must guard the
// call site (e.g. the idle-fallback path only runs when the agent pool is
// non-empty).
func Pick[T any](r *RNG, items []T) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, fmt.Errorf("rng: Pick called on empty slice")
	}
	return items[r.Integer(len(items))], nil
}

// Shuffle performs an in-place Fisher-Yates shuffle driven by r.
func Shuffle[T any](r *RNG, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := r.Integer(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// NextSeed draws a fresh 32-bit seed from the current stream, used by the
// orchestrator to produce the resume seed stored at the end of each day so
// that replays from a snapshot remain bit-exact.
func (r *RNG) NextSeed() uint32 {
	return uint32(r.Next() * 1e9)
}
