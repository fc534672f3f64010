package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/pkg/plugin"
)

// Sphere represents a sphere shape
type Sphere struct {
	surface
	Center core.Vec3
	Radius float64
}

// NewSphere reads "center" (default origin) and "radius" (default 1)
func NewSphere(v lanes.Variant, props *plugin.Properties) (*Sphere, error) {
	center, err := props.Point3Or("center", core.Vec3{})
	if err != nil {
		return nil, err
	}
	radius, err := props.FloatOr("radius", 1)
	if err != nil {
		return nil, err
	}
	if radius <= 0 {
		return nil, plugin.Errorf("sphere", "radius", plugin.ErrInvalidValue, "must be positive, got %g", radius)
	}
	s, err := newSurface("Sphere", v, props)
	if err != nil {
		return nil, err
	}
	return &Sphere{surface: s, Center: center, Radius: radius}, nil
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (core.SurfaceInteraction, bool) {
	// Quadratic equation coefficients: at² + bt + c = 0
	oc := ray.Origin.Subtract(s.Center)
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 || a == 0 {
		return core.SurfaceInteraction{}, false
	}

	// Try the closer intersection point first
	sqrtD := math.Sqrt(discriminant)
	root := (-halfB - sqrtD) / a
	if root <= tMin || root > tMax {
		root = (-halfB + sqrtD) / a
		if root <= tMin || root > tMax {
			return core.SurfaceInteraction{}, false
		}
	}

	p := ray.At(root)
	n := p.Subtract(s.Center).Multiply(1 / s.Radius)
	return interaction(ray, root, p, n, sphereUV(n)), true
}

func sphereUV(n core.Vec3) core.Vec2 {
	phi := math.Atan2(n.Y, n.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	theta := math.Acos(math.Max(-1, math.Min(1, n.Z)))
	return core.NewVec2(phi/(2*math.Pi), theta/math.Pi)
}

func (s *Sphere) SamplePosition(time float64, sample core.Vec2, active bool) core.PositionSample {
	n := core.SquareToUniformSphere(sample)
	return core.PositionSample{
		P:    s.Center.Add(n.Multiply(s.Radius)),
		N:    n,
		UV:   sphereUV(n),
		Time: time,
		PDF:  uniformAreaPDF(s.SurfaceArea(), active),
	}
}

func (s *Sphere) PDFPosition(ps core.PositionSample, active bool) float64 {
	return uniformAreaPDF(s.SurfaceArea(), active)
}

func (s *Sphere) SurfaceArea() float64 {
	return 4 * math.Pi * s.Radius * s.Radius
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	radius := core.Splat(s.Radius)
	return core.NewAABB(s.Center.Subtract(radius), s.Center.Add(radius))
}

func (s *Sphere) String() string {
	return fmt.Sprintf("Sphere[\n  center = %v,\n  radius = %g,\n  bsdf = %s\n]", s.Center, s.Radius, s.bsdf)
}

func init() {
	plugin.Register("sphere", ClassName, func(v lanes.Variant, props *plugin.Properties) (plugin.Object, error) {
		return NewSphere(v, props)
	})
}
