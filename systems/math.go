package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vector helpers on top of gonum's r2.

// unitOr returns v scaled to unit length, or fallback when v has zero length.
// r2.Unit yields NaN components for a zero vector.
func unitOr(v, fallback r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n == 0 {
		return fallback
	}
	return r2.Scale(1/n, v)
}

// Unit returns v scaled to unit length, or the zero vector.
func Unit(v r2.Vec) r2.Vec {
	return unitOr(v, r2.Vec{})
}

// distance returns the Euclidean distance between two points.
func distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(b, a))
}

// finiteNonNegative reports whether dt is usable as a time step.
func finiteNonNegative(dt float64) bool {
	return dt >= 0 && !math.IsInf(dt, 0) && !math.IsNaN(dt)
}

// finite reports whether v is neither NaN nor infinite.
func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
