// Package lanes provides the masked execution substrate shared by every
// primitive: batches of logically independent sample lanes, each carrying
// an explicit activity bit instead of control flow.
//
// Kernels are written for a single lane and must be safe to evaluate on an
// inactive lane (guarded divisions, no panics). The packet drivers in this
// package run a kernel across every lane and select the zero value for
// lanes whose mask bit is false, so garbage computed on an inactive lane
// never reaches the caller.
package lanes

import "math"

// Mask holds one activity bit per lane
type Mask []bool

// Full returns a mask of n active lanes
func Full(n int) Mask {
	m := make(Mask, n)
	for i := range m {
		m[i] = true
	}
	return m
}

// Empty returns a mask of n inactive lanes
func Empty(n int) Mask {
	return make(Mask, n)
}

// And returns the lane-wise conjunction of two masks of equal width
func (m Mask) And(other Mask) Mask {
	out := make(Mask, len(m))
	for i := range m {
		out[i] = m[i] && other[i]
	}
	return out
}

// Or returns the lane-wise disjunction of two masks of equal width
func (m Mask) Or(other Mask) Mask {
	out := make(Mask, len(m))
	for i := range m {
		out[i] = m[i] || other[i]
	}
	return out
}

// Not returns the lane-wise negation
func (m Mask) Not() Mask {
	out := make(Mask, len(m))
	for i := range m {
		out[i] = !m[i]
	}
	return out
}

// Any reports whether at least one lane is active
func (m Mask) Any() bool {
	for _, b := range m {
		if b {
			return true
		}
	}
	return false
}

// All reports whether every lane is active
func (m Mask) All() bool {
	for _, b := range m {
		if !b {
			return false
		}
	}
	return true
}

// Count returns the number of active lanes
func (m Mask) Count() int {
	n := 0
	for _, b := range m {
		if b {
			n++
		}
	}
	return n
}

// Select returns a when active is true, b otherwise
func Select[T any](active bool, a, b T) T {
	if active {
		return a
	}
	return b
}

// SafeDiv divides a by b and reports whether the result is usable. A zero
// divisor or a non-finite quotient yields 0 and false.
func SafeDiv(a, b float64) (float64, bool) {
	if b == 0 {
		return 0, false
	}
	q := a / b
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0, false
	}
	return q, true
}

// ZeroInactive replaces the values of inactive lanes with the zero value
func ZeroInactive[T any](values []T, active Mask) {
	var zero T
	for i := range values {
		if !active[i] {
			values[i] = zero
		}
	}
}
