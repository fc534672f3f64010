package core

import (
	"fmt"
	"math"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns an invalid box that acts as the identity for Union.
// Primitives that do not occupy a region of space (directional sensors,
// environment emitters) report it.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	box := EmptyAABB()
	for _, point := range points {
		box = box.ExpandToPoint(point)
	}
	return box
}

// ExpandToPoint grows the box to contain p
func (aabb AABB) ExpandToPoint(p Vec3) AABB {
	return AABB{
		Min: Vec3{math.Min(aabb.Min.X, p.X), math.Min(aabb.Min.Y, p.Y), math.Min(aabb.Min.Z, p.Z)},
		Max: Vec3{math.Max(aabb.Max.X, p.X), math.Max(aabb.Max.Y, p.Y), math.Max(aabb.Max.Z, p.Z)},
	}
}

// Hit tests if a ray intersects with this AABB using the slab method
func (aabb AABB) Hit(ray Ray, tMin, tMax float64) bool {
	if !aabb.IsValid() {
		return false
	}
	for axis := 0; axis < 3; axis++ {
		minVal := aabb.Min.Component(axis)
		maxVal := aabb.Max.Component(axis)
		origin := ray.Origin.Component(axis)
		direction := ray.Direction.Component(axis)

		// Handle parallel rays (direction near zero)
		if math.Abs(direction) < 1e-12 {
			if origin < minVal || origin > maxVal {
				return false
			}
			continue
		}

		invDirection := 1.0 / direction
		t1 := (minVal - origin) * invDirection
		t2 := (maxVal - origin) * invDirection
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}

	return true
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	return AABB{
		Min: Vec3{
			X: math.Min(aabb.Min.X, other.Min.X),
			Y: math.Min(aabb.Min.Y, other.Min.Y),
			Z: math.Min(aabb.Min.Z, other.Min.Z),
		},
		Max: Vec3{
			X: math.Max(aabb.Max.X, other.Max.X),
			Y: math.Max(aabb.Max.Y, other.Max.Y),
			Z: math.Max(aabb.Max.Z, other.Max.Z),
		},
	}
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the longest extent
func (aabb AABB) LongestAxis() int {
	size := aabb.Size()
	if size.X > size.Y && size.X > size.Z {
		return 0
	}
	if size.Y > size.Z {
		return 1
	}
	return 2
}

// IsValid returns true if this is a valid AABB (min <= max for all axes)
func (aabb AABB) IsValid() bool {
	return aabb.Min.X <= aabb.Max.X &&
		aabb.Min.Y <= aabb.Max.Y &&
		aabb.Min.Z <= aabb.Max.Z
}

// Expand returns an AABB expanded by the given amount in all directions
func (aabb AABB) Expand(amount float64) AABB {
	expansion := Splat(amount)
	return AABB{
		Min: aabb.Min.Subtract(expansion),
		Max: aabb.Max.Add(expansion),
	}
}

// BoundingSphere returns the sphere centered on the box that encloses it.
// The radius is rounded up so that Contains accepts both corners.
// An invalid box yields a zero sphere at the origin.
func (aabb AABB) BoundingSphere() BoundingSphere {
	if !aabb.IsValid() {
		return BoundingSphere{}
	}
	center := aabb.Center()
	hi, lo := aabb.Max.Subtract(center), center.Subtract(aabb.Min)
	half := Vec3{math.Max(hi.X, lo.X), math.Max(hi.Y, lo.Y), math.Max(hi.Z, lo.Z)}
	d2 := half.LengthSquared()
	radius := math.Sqrt(d2)
	for radius*radius < d2 {
		radius = math.Nextafter(radius, math.Inf(1))
	}
	return BoundingSphere{Center: center, Radius: radius}
}

func (aabb AABB) String() string {
	if !aabb.IsValid() {
		return "AABB[invalid]"
	}
	return fmt.Sprintf("AABB[min=%v, max=%v]", aabb.Min, aabb.Max)
}

// BoundingSphere is a sphere given by center and radius
type BoundingSphere struct {
	Center Vec3
	Radius float64
}

// Contains reports whether p lies inside or on the sphere
func (s BoundingSphere) Contains(p Vec3) bool {
	return p.Subtract(s.Center).LengthSquared() <= s.Radius*s.Radius
}

// Inflate grows the radius by the relative amount eps, never returning a
// radius below eps so that degenerate scenes still get a usable sphere
func (s BoundingSphere) Inflate(eps float64) BoundingSphere {
	return BoundingSphere{Center: s.Center, Radius: math.Max(eps, s.Radius*(1+eps))}
}

func (s BoundingSphere) String() string {
	return fmt.Sprintf("BoundingSphere[center=%v, radius=%g]", s.Center, s.Radius)
}
