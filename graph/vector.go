package graph

import "math"

// Vector3 is a point or displacement in 3D space. Positions, velocities and
// forces are all Vector3 values; the zero value is the origin.
type Vector3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Add returns v + w.
func (v Vector3) Add(w Vector3) Vector3 {
	return Vector3{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z}
}

// Sub returns v - w.
func (v Vector3) Sub(w Vector3) Vector3 {
	return Vector3{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

// Scale returns v multiplied by s.
func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Length returns the Euclidean norm of v.
func (v Vector3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// DistanceTo returns the Euclidean distance between v and w.
func (v Vector3) DistanceTo(w Vector3) float64 {
	return v.Sub(w).Length()
}

// Normalized returns the unit vector in the direction of v. A zero vector
// stays zero so callers never divide by a zero length.
func (v Vector3) Normalized() Vector3 {
	l := v.Length()
	if l == 0 {
		return Vector3{}
	}
	return v.Scale(1 / l)
}

// Clamp limits every component of v to [-r, r].
func (v Vector3) Clamp(r float64) Vector3 {
	return Vector3{
		X: math.Max(-r, math.Min(r, v.X)),
		Y: math.Max(-r, math.Min(r, v.Y)),
		Z: math.Max(-r, math.Min(r, v.Z)),
	}
}
