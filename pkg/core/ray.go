package core

import (
	"fmt"
	"math"
)

const (
	// RayEpsilon is the relative offset keeping ray origins off surfaces and
	// inflating derived scene bounds
	RayEpsilon = 1e-5

	// ShadowEpsilon is the tolerance used when testing intersections against
	// a finite segment
	ShadowEpsilon = RayEpsilon * 10
)

// Wavelengths holds the wavelengths carried by a ray. RGB variants leave it
// zero-valued.
type Wavelengths [4]float64

// Ray represents a ray with an origin, direction, time and wavelengths
type Ray struct {
	Origin      Vec3
	Direction   Vec3
	Time        float64
	Wavelengths Wavelengths
}

// NewRay creates a new ray
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

func (r Ray) String() string {
	return fmt.Sprintf("Ray[o=%v, d=%v, time=%g]", r.Origin, r.Direction, r.Time)
}

// RayDifferential is a ray with optional offset rays for neighbouring film samples
type RayDifferential struct {
	Ray
	OriginX, OriginY       Vec3
	DirectionX, DirectionY Vec3
	HasDifferentials       bool
}

// NewRayDifferential wraps a ray without differentials
func NewRayDifferential(ray Ray) RayDifferential {
	return RayDifferential{Ray: ray}
}

// ScaleDifferential scales the offsets relative to the main ray
func (r *RayDifferential) ScaleDifferential(amount float64) {
	r.OriginX = r.OriginX.Subtract(r.Origin).Multiply(amount).Add(r.Origin)
	r.OriginY = r.OriginY.Subtract(r.Origin).Multiply(amount).Add(r.Origin)
	r.DirectionX = r.DirectionX.Subtract(r.Direction).Multiply(amount).Add(r.Direction)
	r.DirectionY = r.DirectionY.Subtract(r.Direction).Multiply(amount).Add(r.Direction)
}

// SurfaceInteraction describes a ray-surface intersection. Directions in Wi
// are expressed in the local shading frame and point away from the surface.
type SurfaceInteraction struct {
	Valid       bool
	T           float64
	P           Vec3  // World-space position
	N           Vec3  // Geometric normal
	Sh          Frame // Shading frame
	UV          Vec2
	Wi          Vec3 // Incident direction in the shading frame
	Time        float64
	Wavelengths Wavelengths
}

// InvalidInteraction returns an interaction marking a miss
func InvalidInteraction() SurfaceInteraction {
	return SurfaceInteraction{T: math.Inf(1)}
}

// IsValid reports whether the interaction represents a hit
func (si SurfaceInteraction) IsValid() bool {
	return si.Valid
}

// ToLocal converts a world-space direction into the shading frame
func (si SurfaceInteraction) ToLocal(v Vec3) Vec3 {
	return si.Sh.ToLocal(v)
}

// ToWorld converts a shading-frame direction into world space
func (si SurfaceInteraction) ToWorld(v Vec3) Vec3 {
	return si.Sh.ToWorld(v)
}

// SpawnRay creates a ray leaving the surface in world direction d, offset
// along the geometric normal to avoid self-intersection
func (si SurfaceInteraction) SpawnRay(d Vec3) Ray {
	offset := si.N.Multiply(RayEpsilon * max(1, si.P.Length()))
	if d.Dot(si.N) < 0 {
		offset = offset.Negate()
	}
	return Ray{Origin: si.P.Add(offset), Direction: d, Time: si.Time, Wavelengths: si.Wavelengths}
}

// PositionSample is a point sampled on a surface together with its density
type PositionSample struct {
	P     Vec3
	N     Vec3
	UV    Vec2
	Time  float64
	PDF   float64 // Density per unit area (or 1 for delta positions)
	Delta bool
}
