package renderer

import (
	"github.com/df07/go-plugin-renderer/pkg/bsdf"
	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/geometry"
	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/pkg/scene"
)

// Estimator computes the radiance arriving along a sensor ray: the
// environment on a miss, otherwise the emission of the hit surface plus one
// BSDF-sampled bounce. It is not a full path tracer.
type Estimator struct {
	scene *scene.Scene
	ctx   bsdf.Context
}

// NewEstimator creates an estimator for s
func NewEstimator(s *scene.Scene) *Estimator {
	return &Estimator{scene: s, ctx: bsdf.NewContext()}
}

// Li returns the radiance arriving along ray. Inactive lanes return zero.
func (e *Estimator) Li(ray core.Ray, sampler core.Sampler, active bool) core.Vec3 {
	si, shape := e.scene.Intersect(ray, active)
	if !si.IsValid() {
		return e.environment(ray, active)
	}
	result := emitted(shape, si, active)

	bs, weight := shape.BSDF().Sample(e.ctx, si, sampler.Get1D(), sampler.Get2D(), active)
	active = active && bs.PDF > 0

	next := si.SpawnRay(si.ToWorld(bs.Wo))
	nextSI, nextShape := e.scene.Intersect(next, active)
	incoming := e.environment(next, active)
	if nextSI.IsValid() {
		incoming = emitted(nextShape, nextSI, active)
	}
	return result.Add(lanes.Select(active, weight.MultiplyVec(incoming), core.Vec3{}))
}

func (e *Estimator) environment(ray core.Ray, active bool) core.Vec3 {
	env := e.scene.Environment()
	if env == nil {
		return core.Vec3{}
	}
	si := core.InvalidInteraction()
	si.Wi = ray.Direction.Negate()
	return env.Eval(si, active)
}

func emitted(shape geometry.Shape, si core.SurfaceInteraction, active bool) core.Vec3 {
	if shape.Emitter() == nil {
		return core.Vec3{}
	}
	return shape.Emitter().Eval(si, active)
}
