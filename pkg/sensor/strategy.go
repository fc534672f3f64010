package sensor

import (
	"fmt"
	"math"

	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/geometry"
	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/pkg/plugin"
)

type targetKind int

const (
	targetShape targetKind = iota
	targetPoint
	targetNone
)

func (k targetKind) String() string {
	switch k {
	case targetShape:
		return "Shape"
	case targetPoint:
		return "Point"
	case targetNone:
		return "None"
	}
	return fmt.Sprintf("targetKind(%d)", int(k))
}

type originKind int

const (
	originShape originKind = iota
	originBoundingSphere
)

func (k originKind) String() string {
	switch k {
	case originShape:
		return "Shape"
	case originBoundingSphere:
		return "BoundingSphere"
	}
	return fmt.Sprintf("originKind(%d)", int(k))
}

type directionMode int

const (
	directionSingle directionMode = iota
	directionSampleWidth
	directionSampleAll
)

func (m directionMode) String() string {
	switch m {
	case directionSingle:
		return "single"
	case directionSampleWidth:
		return "sample_width"
	}
	return "sample_all"
}

// sampleDirection returns the local base direction v0
func (m directionMode) sampleDirection(filmSample core.Vec2) core.Vec3 {
	switch m {
	case directionSampleAll:
		return core.SquareToUniformHemisphere(filmSample)
	case directionSampleWidth:
		// Directions in the plane spanned by the local X and Z axes
		s, c := math.Sincos(math.Pi * filmSample.X)
		return core.NewVec3(c, 0, s)
	}
	return core.NewVec3(0, 0, 1)
}

// rayQuery carries the per-lane state the strategies read
type rayQuery struct {
	time     float64
	aperture core.Vec2
	trafo    core.Transform
	v0       core.Vec3 // Local base direction
	dir      core.Vec3 // World ray direction
	sphere   core.BoundingSphere
}

// rayTarget chooses the point a ray aims at. weight is the spatial factor
// of the importance weight.
type rayTarget interface {
	kind() targetKind
	target(q rayQuery, active bool) (point core.Vec3, weight float64, ok bool)
	// originOffset is the number of bounding sphere radii between the
	// target and a bounding-sphere origin
	originOffset() float64
	describe() string
}

// rayOrigin places the ray origin given its target
type rayOrigin interface {
	kind() originKind
	origin(q rayQuery, target core.Vec3, offset float64, active bool) (core.Vec3, bool)
	describe() string
}

type fixedTarget struct {
	point core.Vec3
}

func bindFixedTarget(props *plugin.Properties) (fixedTarget, error) {
	p, err := props.Point3("ray_target")
	if err != nil {
		return fixedTarget{}, err
	}
	return fixedTarget{point: p}, nil
}

func (fixedTarget) kind() targetKind      { return targetPoint }
func (fixedTarget) originOffset() float64 { return 2 }
func (t fixedTarget) describe() string    { return fmt.Sprintf("%v", t.point) }
func (t fixedTarget) target(q rayQuery, active bool) (core.Vec3, float64, bool) {
	return t.point, 1, active
}

type shapeTarget struct {
	shape geometry.Shape
}

func bindShapeTarget(props *plugin.Properties) (shapeTarget, error) {
	obj, err := props.Object("ray_target")
	if err != nil {
		return shapeTarget{}, plugin.Errorf(distantName, "ray_target", plugin.ErrWrongType, "must be a point or a shape")
	}
	shape, ok := obj.(geometry.Shape)
	if !ok {
		return shapeTarget{}, plugin.Errorf(distantName, "ray_target", plugin.ErrWrongType,
			"must be a point or a shape, got %s", obj.Class().Name())
	}
	return shapeTarget{shape: shape}, nil
}

func (shapeTarget) kind() targetKind      { return targetShape }
func (shapeTarget) originOffset() float64 { return 2 }
func (t shapeTarget) describe() string    { return t.shape.String() }

// target samples the surface uniformly by area; dividing by pdf*area turns
// the result into an average over the shape
func (t shapeTarget) target(q rayQuery, active bool) (core.Vec3, float64, bool) {
	ps := t.shape.SamplePosition(q.time, q.aperture, active)
	weight, ok := lanes.SafeDiv(1, ps.PDF*t.shape.SurfaceArea())
	return ps.P, weight, active && ok
}

type sphereTarget struct{}

func (sphereTarget) kind() targetKind      { return targetNone }
func (sphereTarget) originOffset() float64 { return 1 }
func (sphereTarget) describe() string      { return "none" }

// target samples the cross section of the scene bounding sphere
// perpendicular to the sensor axis. The weight corrects for the projection
// of that disk onto the plane perpendicular to the ray.
func (sphereTarget) target(q rayQuery, active bool) (core.Vec3, float64, bool) {
	offset := core.SquareToUniformDiskConcentric(q.aperture)
	perp := q.trafo.TransformVector(core.NewVec3(offset.X, offset.Y, 0))
	point := q.sphere.Center.Add(perp.Multiply(q.sphere.Radius))
	weight, ok := lanes.SafeDiv(1, math.Abs(q.v0.Z))
	return point, weight, active && ok
}

type shapeOrigin struct {
	shape geometry.Shape
}

func bindShapeOrigin(props *plugin.Properties) (shapeOrigin, error) {
	obj, err := props.Object("ray_origin")
	if err != nil {
		return shapeOrigin{}, plugin.Errorf(distantName, "ray_origin", plugin.ErrWrongType, "must be a shape")
	}
	shape, ok := obj.(geometry.Shape)
	if !ok {
		return shapeOrigin{}, plugin.Errorf(distantName, "ray_origin", plugin.ErrWrongType,
			"must be a shape, got %s", obj.Class().Name())
	}
	return shapeOrigin{shape: shape}, nil
}

func (shapeOrigin) kind() originKind   { return originShape }
func (o shapeOrigin) describe() string { return o.shape.String() }

// origin projects the target back onto the shape along the ray. Lanes whose
// probe ray misses the shape are deactivated.
func (o shapeOrigin) origin(q rayQuery, target core.Vec3, offset float64, active bool) (core.Vec3, bool) {
	probe := core.Ray{Origin: target, Direction: q.dir.Negate(), Time: q.time}
	si := geometry.RayIntersect(o.shape, probe, active)
	return si.P, active && si.IsValid()
}

func bindSphereOrigin(*plugin.Properties) (sphereOrigin, error) {
	return sphereOrigin{}, nil
}

type sphereOrigin struct{}

func (sphereOrigin) kind() originKind { return originBoundingSphere }
func (sphereOrigin) describe() string { return "bounding_sphere" }
func (sphereOrigin) origin(q rayQuery, target core.Vec3, offset float64, active bool) (core.Vec3, bool) {
	return target.Subtract(q.dir.Multiply(offset * q.sphere.Radius)), active
}
