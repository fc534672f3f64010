// Package emitter provides the light sources that can be attached to
// shapes or to the scene environment.
package emitter

import (
	"errors"
	"fmt"

	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/pkg/plugin"
)

// ClassName is the base class of every emitter plugin
const ClassName = "Emitter"

var errSceneAlreadySet = errors.New("scene already set")

// Emitter returns the radiance arriving along -si.Wi. For environment
// emitters si is the invalid interaction of an escaped ray and Wi points
// back along the ray in world space; for area emitters Wi is local to the
// emitting surface.
type Emitter interface {
	plugin.Object
	Eval(si core.SurfaceInteraction, active bool) core.Vec3
	IsEnvironment() bool
}

// Constant is an environment emitting the same radiance in every direction
type Constant struct {
	plugin.Base
	Radiance core.Vec3
	sphere   core.BoundingSphere
	sceneSet bool
}

// NewConstant reads "radiance" (default 1)
func NewConstant(v lanes.Variant, props *plugin.Properties) (*Constant, error) {
	radiance, err := props.ColorOr("radiance", core.Splat(1))
	if err != nil {
		return nil, err
	}
	return &Constant{
		Base:     plugin.NewBase(plugin.ClassFor("ConstantBackgroundEmitter", ClassName, v), props),
		Radiance: radiance,
	}, nil
}

func (c *Constant) Eval(si core.SurfaceInteraction, active bool) core.Vec3 {
	return lanes.Select(active, c.Radiance, core.Vec3{})
}

func (c *Constant) IsEnvironment() bool { return true }

// SetScene records the scene bounding sphere, inflated so that it
// strictly encloses the geometry
func (c *Constant) SetScene(scene plugin.Scene) error {
	if c.sceneSet {
		return fmt.Errorf("constant emitter %s: %w", c.ID(), errSceneAlreadySet)
	}
	c.sceneSet = true
	c.sphere = scene.BoundingBox().BoundingSphere().Inflate(core.RayEpsilon)
	return nil
}

// BoundingSphere returns the sphere recorded by SetScene
func (c *Constant) BoundingSphere() core.BoundingSphere { return c.sphere }

func (c *Constant) String() string {
	return fmt.Sprintf("ConstantBackgroundEmitter[\n  radiance = %v,\n  bsphere = %v\n]", c.Radiance, c.sphere)
}

// Area emits uniformly from the front side of the shape it is attached to
type Area struct {
	plugin.Base
	Radiance core.Vec3
}

// NewArea reads "radiance" (default 1)
func NewArea(v lanes.Variant, props *plugin.Properties) (*Area, error) {
	radiance, err := props.ColorOr("radiance", core.Splat(1))
	if err != nil {
		return nil, err
	}
	return &Area{
		Base:     plugin.NewBase(plugin.ClassFor("AreaLight", ClassName, v), props),
		Radiance: radiance,
	}, nil
}

func (a *Area) Eval(si core.SurfaceInteraction, active bool) core.Vec3 {
	active = active && si.Wi.Z > 0
	return lanes.Select(active, a.Radiance, core.Vec3{})
}

func (a *Area) IsEnvironment() bool { return false }

func (a *Area) String() string {
	return fmt.Sprintf("AreaLight[\n  radiance = %v\n]", a.Radiance)
}

func init() {
	plugin.Register("constant", ClassName, func(v lanes.Variant, props *plugin.Properties) (plugin.Object, error) {
		return NewConstant(v, props)
	})
	plugin.Register("area", ClassName, func(v lanes.Variant, props *plugin.Properties) (plugin.Object, error) {
		return NewArea(v, props)
	})
}
