// Package vecmath provides the fixed-size vector primitives the grid and
// particle packages build on: a 3-component float64 vector for positions,
// velocities and affine rows, and a 3-component int vector for cell
// indices.
package vecmath

import "math"

// Vec3 is a 3-component float64 vector.
type Vec3 struct {
	X, Y, Z float64
}

// Vec3i is a 3-component integer vector, used for grid cell indices.
type Vec3i struct {
	X, Y, Z int
}

// Add returns a + b.
func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Sub returns a - b.
func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// Scale returns a * s.
func (a Vec3) Scale(s float64) Vec3 {
	return Vec3{a.X * s, a.Y * s, a.Z * s}
}

// Mul returns the component-wise (Hadamard) product of a and b.
func (a Vec3) Mul(b Vec3) Vec3 {
	return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z}
}

// Dot returns the dot product of a and b.
func (a Vec3) Dot(b Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// SquaredLength returns a.Dot(a).
func (a Vec3) SquaredLength() float64 {
	return a.Dot(a)
}

// Length returns the Euclidean length of a.
func (a Vec3) Length() float64 {
	return math.Sqrt(a.SquaredLength())
}

// Abs returns the component-wise absolute value of a.
func (a Vec3) Abs() Vec3 {
	return Vec3{math.Abs(a.X), math.Abs(a.Y), math.Abs(a.Z)}
}

// Floor returns the component-wise floor of a as a Vec3i. Negative
// components floor toward negative infinity, matching math.Floor.
func (a Vec3) Floor() Vec3i {
	return Vec3i{int(math.Floor(a.X)), int(math.Floor(a.Y)), int(math.Floor(a.Z))}
}

// IsFinite reports whether every component of a is finite.
func (a Vec3) IsFinite() bool {
	return !math.IsInf(a.X, 0) && !math.IsInf(a.Y, 0) && !math.IsInf(a.Z, 0) &&
		!math.IsNaN(a.X) && !math.IsNaN(a.Y) && !math.IsNaN(a.Z)
}

// Component returns the value of axis a (0=X, 1=Y, 2=Z). It panics on an
// out-of-range axis, since axis indices in this package are always
// compile-time constants or loop counters bounded to [0,3).
func (v Vec3) Component(axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	default:
		panic("vecmath: axis out of range")
	}
}

// WithComponent returns a copy of v with axis a set to value.
func (v Vec3) WithComponent(axis int, value float64) Vec3 {
	switch axis {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	case 2:
		v.Z = value
	default:
		panic("vecmath: axis out of range")
	}
	return v
}

// Lerp linearly interpolates between a and b by t (t=0 -> a, t=1 -> b).
func Lerp(a, b, t float64) float64 {
	return a*(1.0-t) + b*t
}

// LerpVec3 applies Lerp component-wise.
func LerpVec3(a, b Vec3, t Vec3) Vec3 {
	return Vec3{Lerp(a.X, b.X, t.X), Lerp(a.Y, b.Y, t.Y), Lerp(a.Z, b.Z, t.Z)}
}

// Clamp clamps v between lo and hi.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampVec3 applies Clamp component-wise.
func ClampVec3(v, lo, hi Vec3) Vec3 {
	return Vec3{
		Clamp(v.X, lo.X, hi.X),
		Clamp(v.Y, lo.Y, hi.Y),
		Clamp(v.Z, lo.Z, hi.Z),
	}
}

// Add returns a + b.
func (a Vec3i) Add(b Vec3i) Vec3i {
	return Vec3i{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Sub returns a - b.
func (a Vec3i) Sub(b Vec3i) Vec3i {
	return Vec3i{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// AsVec3 converts an integer vector to a float64 vector.
func (a Vec3i) AsVec3() Vec3 {
	return Vec3{float64(a.X), float64(a.Y), float64(a.Z)}
}

// ClampInt clamps v between lo and hi (inclusive).
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampVec3i clamps each component of v between the corresponding
// components of lo and hi.
func ClampVec3i(v, lo, hi Vec3i) Vec3i {
	return Vec3i{
		ClampInt(v.X, lo.X, hi.X),
		ClampInt(v.Y, lo.Y, hi.Y),
		ClampInt(v.Z, lo.Z, hi.Z),
	}
}

// Axis returns the unit vector along the given axis (0=X, 1=Y, 2=Z).
func Axis(axis int) Vec3i {
	switch axis {
	case 0:
		return Vec3i{1, 0, 0}
	case 1:
		return Vec3i{0, 1, 0}
	case 2:
		return Vec3i{0, 0, 1}
	default:
		panic("vecmath: axis out of range")
	}
}

// Component returns the value of axis a (0=X, 1=Y, 2=Z).
func (v Vec3i) Component(axis int) int {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	default:
		panic("vecmath: axis out of range")
	}
}
