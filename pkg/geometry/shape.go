// Package geometry provides the shape plugins and the acceleration
// structure that answers ray queries against them.
package geometry

import (
	"math"

	"github.com/df07/go-plugin-renderer/pkg/bsdf"
	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/emitter"
	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/pkg/plugin"
)

// ClassName is the base class of every shape plugin
const ClassName = "Shape"

// Shape is a surface that can be intersected and sampled
type Shape interface {
	plugin.Object

	// Hit returns the closest intersection with parameter in (tMin, tMax]
	Hit(ray core.Ray, tMin, tMax float64) (core.SurfaceInteraction, bool)
	// SamplePosition draws a point uniformly with respect to surface area
	SamplePosition(time float64, sample core.Vec2, active bool) core.PositionSample
	PDFPosition(ps core.PositionSample, active bool) float64
	SurfaceArea() float64
	BoundingBox() core.AABB
	BSDF() bsdf.BSDF
	Emitter() emitter.Emitter
}

// RayIntersect queries a single shape. Misses and inactive lanes return
// the invalid interaction.
func RayIntersect(shape Shape, ray core.Ray, active bool) core.SurfaceInteraction {
	if !active || shape == nil {
		return core.InvalidInteraction()
	}
	si, ok := shape.Hit(ray, 0, math.Inf(1))
	if !ok {
		return core.InvalidInteraction()
	}
	return si
}

// surface holds the state shared by all shapes
type surface struct {
	plugin.Base
	bsdf    bsdf.BSDF
	emitter emitter.Emitter
}

func newSurface(name string, v lanes.Variant, props *plugin.Properties) (surface, error) {
	s := surface{Base: plugin.NewBase(plugin.ClassFor(name, ClassName, v), props)}
	for _, named := range props.Objects() {
		switch obj := named.Object.(type) {
		case bsdf.BSDF:
			if s.bsdf != nil {
				return surface{}, plugin.Errorf(name, named.Key, plugin.ErrConflict, "only one BSDF can be attached to a shape")
			}
			s.bsdf = obj
		case emitter.Emitter:
			if obj.IsEnvironment() {
				return surface{}, plugin.Errorf(name, named.Key, plugin.ErrInvalidValue, "environment emitter %s cannot be attached to a shape", obj.Class().Name())
			}
			if s.emitter != nil {
				return surface{}, plugin.Errorf(name, named.Key, plugin.ErrConflict, "only one emitter can be attached to a shape")
			}
			s.emitter = obj
		default:
			continue
		}
		props.MarkQueried(named.Key)
	}
	if s.bsdf == nil {
		d, err := bsdf.NewDiffuse(v, plugin.NewProperties("diffuse"))
		if err != nil {
			return surface{}, err
		}
		s.bsdf = d
	}
	return s, nil
}

func (s *surface) BSDF() bsdf.BSDF          { return s.bsdf }
func (s *surface) Emitter() emitter.Emitter { return s.emitter }

// interaction fills the fields common to every hit
func interaction(ray core.Ray, t float64, p, n core.Vec3, uv core.Vec2) core.SurfaceInteraction {
	si := core.SurfaceInteraction{
		Valid:       true,
		T:           t,
		P:           p,
		N:           n,
		Sh:          core.NewFrame(n),
		UV:          uv,
		Time:        ray.Time,
		Wavelengths: ray.Wavelengths,
	}
	si.Wi = si.ToLocal(ray.Direction.Negate().Normalize())
	return si
}

func uniformAreaPDF(area float64, active bool) float64 {
	pdf, ok := lanes.SafeDiv(1, area)
	return lanes.Select(active && ok, pdf, 0)
}
