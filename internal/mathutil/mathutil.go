// Package mathutil contains small scalar helpers shared by the terrain,
// hydrology and decoration packages.
package mathutil

import "golang.org/x/exp/constraints"

// Clamp limits v to the inclusive range [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// InvLerp returns where v sits between a and b, clamped to [0, 1]. Equal
// bounds degenerate to a step at a.
func InvLerp(a, b, v float64) float64 {
	if a == b {
		if v < a {
			return 0
		}
		return 1
	}
	return Clamp((v-a)/(b-a), 0, 1)
}

// SmoothstepUnit applies the cubic 3t²-2t³ ease to a t already in [0, 1].
func SmoothstepUnit(t float64) float64 {
	t = Clamp(t, 0, 1)
	return t * t * (3 - 2*t)
}

// Smoothstep maps v through a smooth hermite curve rising from 0 at edge0 to
// 1 at edge1.
func Smoothstep(edge0, edge1, v float64) float64 {
	return SmoothstepUnit(InvLerp(edge0, edge1, v))
}
