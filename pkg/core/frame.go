package core

import "math"

// Frame is an orthonormal basis (S, T, N) used for shading computations
type Frame struct {
	S, T, N Vec3
}

// NewFrame builds a frame around the unit normal n
func NewFrame(n Vec3) Frame {
	s, t := CoordinateSystem(n)
	return Frame{S: s, T: t, N: n}
}

// ToLocal expresses a world-space vector in this frame
func (f Frame) ToLocal(v Vec3) Vec3 {
	return Vec3{v.Dot(f.S), v.Dot(f.T), v.Dot(f.N)}
}

// ToWorld converts a vector from this frame back into world space
func (f Frame) ToWorld(v Vec3) Vec3 {
	return f.S.Multiply(v.X).Add(f.T.Multiply(v.Y)).Add(f.N.Multiply(v.Z))
}

// CoordinateSystem completes the unit vector n into an orthonormal basis.
// Uses the branchless construction of Duff et al. (2017).
func CoordinateSystem(n Vec3) (Vec3, Vec3) {
	sign := math.Copysign(1, n.Z)
	a := -1.0 / (sign + n.Z)
	b := n.X * n.Y * a

	s := Vec3{1 + sign*n.X*n.X*a, sign * b, -sign * n.X}
	t := Vec3{b, sign + n.Y*n.Y*a, -n.Y}
	return s, t
}
