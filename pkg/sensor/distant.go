package sensor

import (
	"errors"
	"fmt"

	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/pkg/plugin"
	"github.com/sirupsen/logrus"
)

const distantName = "distant"

var (
	errSceneAlreadySet = errors.New("scene already set")
	errNotExpanded     = errors.New("distant sensor must be expanded before sampling")
)

// distantKeys are the parameters the front consumes on behalf of its
// expansion
var distantKeys = []string{"direction", "flip_directions", "orientation", "to_world", "ray_target", "ray_origin"}

// DistantSensor is the configuration front of the distant sensor. It only
// classifies the ray target and ray origin strategies; Expand replaces it
// with the implementation specialized to that pair.
type DistantSensor struct {
	base
	props  *plugin.Properties
	target targetKind
	origin originKind
}

// NewDistantSensor classifies "ray_target" as a point, a shape or absent
// and "ray_origin" as a shape or absent
func NewDistantSensor(v lanes.Variant, props *plugin.Properties) (*DistantSensor, error) {
	b, err := newBase(plugin.ClassFor("DistantSensor", ClassName, v), v, props)
	if err != nil {
		return nil, err
	}
	s := &DistantSensor{base: b, props: props.Copy(), target: targetNone, origin: originBoundingSphere}

	if typ, ok := props.Type("ray_target"); ok {
		if typ == plugin.TypePoint3 || typ == plugin.TypeVector3 {
			s.target = targetPoint
		} else {
			s.target = targetShape
		}
	}
	if props.Has("ray_origin") {
		s.origin = originShape
	}

	for _, key := range distantKeys {
		props.MarkQueried(key)
	}
	return s, nil
}

// Expand builds the specialized implementation from a fresh copy of the
// retained configuration
func (s *DistantSensor) Expand() ([]plugin.Object, error) {
	v, props := s.variant, s.props.Copy()

	var (
		impl Sensor
		err  error
	)
	switch s.target {
	case targetShape:
		switch s.origin {
		case originBoundingSphere:
			impl, err = newDistantImpl(v, props, bindShapeTarget, bindSphereOrigin)
		case originShape:
			impl, err = newDistantImpl(v, props, bindShapeTarget, bindShapeOrigin)
		default:
			return nil, s.unsupported()
		}
	case targetPoint:
		switch s.origin {
		case originBoundingSphere:
			impl, err = newDistantImpl(v, props, bindFixedTarget, bindSphereOrigin)
		case originShape:
			impl, err = newDistantImpl(v, props, bindFixedTarget, bindShapeOrigin)
		default:
			return nil, s.unsupported()
		}
	case targetNone:
		switch s.origin {
		case originBoundingSphere:
			impl, err = newDistantImpl(v, props, bindSphereTarget, bindSphereOrigin)
		case originShape:
			impl, err = newDistantImpl(v, props, bindSphereTarget, bindShapeOrigin)
		default:
			return nil, s.unsupported()
		}
	default:
		return nil, s.unsupported()
	}
	if err != nil {
		return nil, err
	}
	return []plugin.Object{impl}, nil
}

func (s *DistantSensor) unsupported() error {
	return plugin.Errorf(distantName, "", plugin.ErrUnsupportedCombination,
		"ray target %s with ray origin %s", s.target, s.origin)
}

// BoundingBox is empty: the sensor sits at infinity
func (s *DistantSensor) BoundingBox() core.AABB { return core.EmptyAABB() }

// SampleRay panics; only the expanded sensor can generate rays
func (s *DistantSensor) SampleRay(float64, float64, core.Vec2, core.Vec2, bool) (core.Ray, core.Vec3, bool) {
	panic(errNotExpanded)
}

func (s *DistantSensor) SampleRayDifferential(float64, float64, core.Vec2, core.Vec2, bool) (core.RayDifferential, core.Vec3, bool) {
	panic(errNotExpanded)
}

func (s *DistantSensor) String() string {
	return fmt.Sprintf("DistantSensor[\n  ray_target = %s,\n  ray_origin = %s\n]", s.target, s.origin)
}

func bindSphereTarget(*plugin.Properties) (sphereTarget, error) {
	return sphereTarget{}, nil
}

// distantImpl is the distant sensor specialized to one target strategy T
// and one origin strategy O. Each strategy only stores the data it needs.
type distantImpl[T rayTarget, O rayOrigin] struct {
	base
	target   T
	origin   O
	flip     bool
	mode     directionMode
	sphere   core.BoundingSphere
	sceneSet bool
}

func newDistantImpl[T rayTarget, O rayOrigin](
	v lanes.Variant,
	props *plugin.Properties,
	bindTarget func(*plugin.Properties) (T, error),
	bindOrigin func(*plugin.Properties) (O, error),
) (*distantImpl[T, O], error) {
	var zeroT T
	var zeroO O
	className := fmt.Sprintf("DistantSensor_%s_%s", zeroT.kind(), zeroO.kind())

	b, err := newBase(plugin.ClassFor(className, ClassName, v), v, props)
	if err != nil {
		return nil, err
	}
	s := &distantImpl[T, O]{base: b}

	if s.flip, err = props.BoolOr("flip_directions", false); err != nil {
		return nil, err
	}

	film := s.film
	switch {
	case film.Width == 1 && film.Height == 1:
		s.mode = directionSingle
	case film.Height == 1:
		logrus.Infof("%s: directions in plane", className)
		s.mode = directionSampleWidth
	default:
		s.mode = directionSampleAll
	}

	if film.FilterRadius() > 0.5+core.RayEpsilon {
		logrus.Warnf("%s: this sensor should be used with a reconstruction filter with a radius of 0.5 or lower (e.g. box), got %s",
			className, film.Filter)
	}

	if props.Has("direction") {
		if props.Has("to_world") {
			return nil, plugin.Errorf(distantName, "direction", plugin.ErrConflict,
				"only one of the parameters 'direction' and 'to_world' can be specified at the same time")
		}
		if s.toWorld, err = directionTransform(props); err != nil {
			return nil, err
		}
	}

	if s.target, err = bindTarget(props); err != nil {
		return nil, err
	}
	if zeroT.kind() == targetNone {
		logrus.Debugf("%s: no target specified", className)
	}
	if s.origin, err = bindOrigin(props); err != nil {
		return nil, err
	}
	if zeroO.kind() == originBoundingSphere {
		logrus.Debugf("%s: using bounding sphere for ray origins", className)
	}
	return s, nil
}

// directionTransform builds the sensor frame from "direction" and the
// optional "orientation"
func directionTransform(props *plugin.Properties) (core.Transform, error) {
	direction, err := props.Vector3("direction")
	if err != nil {
		return core.Transform{}, err
	}
	if direction.IsZero() {
		return core.Transform{}, plugin.Errorf(distantName, "direction", plugin.ErrInvalidValue, "must be non-zero")
	}
	direction = direction.Normalize()

	var up core.Vec3
	if props.Has("orientation") {
		orientation, err := props.Vector3("orientation")
		if err != nil {
			return core.Transform{}, err
		}
		up = direction.Cross(orientation)
		if up.IsZero() {
			return core.Transform{}, plugin.Errorf(distantName, "orientation", plugin.ErrInvalidValue,
				"must not be parallel to direction %v", direction)
		}
		up = up.Normalize()
	} else {
		_, up = core.CoordinateSystem(direction)
	}
	return core.LookAt(core.Vec3{}, direction, up), nil
}

// SetScene records the scene bounding sphere, inflated so that points on
// the original bound lie strictly inside it
func (s *distantImpl[T, O]) SetScene(scene plugin.Scene) error {
	if s.sceneSet {
		return fmt.Errorf("%s %s: %w", s.Class().Name(), s.ID(), errSceneAlreadySet)
	}
	s.sceneSet = true
	s.sphere = scene.BoundingBox().BoundingSphere().Inflate(core.RayEpsilon)
	return nil
}

func (s *distantImpl[T, O]) sampleRay(time, wavelengthSample float64, filmSample, apertureSample core.Vec2, active bool) (core.Ray, core.Vec3, bool) {
	// 1. Spectrum
	wavelengths, weight := s.variant.SampleWavelengths(wavelengthSample)
	ray := core.Ray{Time: time, Wavelengths: wavelengths}

	// 2. Direction: rays point into the configured direction unless flipped
	q := rayQuery{time: time, aperture: apertureSample, trafo: s.toWorld, sphere: s.sphere}
	q.v0 = s.mode.sampleDirection(filmSample)
	if s.flip {
		ray.Direction = s.toWorld.TransformVector(q.v0)
	} else {
		ray.Direction = s.toWorld.TransformVector(q.v0.Negate())
	}
	q.dir = ray.Direction

	// 3. Target point
	target, factor, active := s.target.target(q, active)
	weight = weight.Multiply(factor)

	// 4. Origin point
	ray.Origin, active = s.origin.origin(q, target, s.target.originOffset(), active)

	// 5. Inactive lanes carry a zero weight
	return ray, lanes.Select(active, weight, core.Vec3{}), active
}

func (s *distantImpl[T, O]) SampleRay(time, wavelengthSample float64, filmSample, apertureSample core.Vec2, active bool) (core.Ray, core.Vec3, bool) {
	return s.sampleRay(time, wavelengthSample, filmSample, apertureSample, active)
}

// SampleRayDifferential returns the ray of SampleRay without differentials
func (s *distantImpl[T, O]) SampleRayDifferential(time, wavelengthSample float64, filmSample, apertureSample core.Vec2, active bool) (core.RayDifferential, core.Vec3, bool) {
	ray, weight, active := s.sampleRay(time, wavelengthSample, filmSample, apertureSample, active)
	return core.NewRayDifferential(ray), weight, active
}

// BoundingBox is empty: the sensor sits at infinity
func (s *distantImpl[T, O]) BoundingBox() core.AABB { return core.EmptyAABB() }

// BoundingSphere returns the sphere recorded by SetScene
func (s *distantImpl[T, O]) BoundingSphere() core.BoundingSphere { return s.sphere }

func (s *distantImpl[T, O]) String() string {
	return fmt.Sprintf("DistantSensor[\n  world_transform = %v,\n  film = %s,\n  flip_directions = %v,\n  ray_target = %s,\n  ray_origin = %s\n]",
		s.toWorld, s.film, s.flip, s.target.describe(), s.origin.describe())
}

func init() {
	plugin.Register(distantName, ClassName, func(v lanes.Variant, props *plugin.Properties) (plugin.Object, error) {
		return NewDistantSensor(v, props)
	})
}
