// Package xmath holds small generic numeric helpers shared across the
// engine's drag, atmosphere, and solver packages.
package xmath

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Clamp restricts v to [lo, hi]. If lo > hi the result is unspecified in the
// same way it would be for a naive min/max chain.
func Clamp[T constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates between a and b at fraction t (0 at a, 1 at b).
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}

// IsFinite reports whether v is neither NaN nor +/-Inf.
func IsFinite[T constraints.Float](v T) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
