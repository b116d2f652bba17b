package sim

import "math"

// Vec3 is a plain 3D vector. X spans the field width, Y points up, Z runs
// along the field length toward the team-2 goal.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// horizontal returns the length of the XZ projection.
func (v Vec3) horizontal() float64 {
	return math.Hypot(v.X, v.Z)
}

// scaled returns the vector multiplied by s.
func (v Vec3) scaled(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// isFinite reports whether a coordinate is a usable number.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// clamp bounds v to the [min, max] interval.
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
