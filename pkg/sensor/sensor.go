// Package sensor defines the sensor interface and the distant sensor,
// which records radiance leaving the scene in a given direction.
package sensor

import (
	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/pkg/plugin"
)

// ClassName is the base class of every sensor plugin
const ClassName = "Sensor"

// Sensor generates primary rays together with their importance weights.
// The returned mask bit is false when the ray is invalid, in which case the
// weight is zero.
type Sensor interface {
	plugin.Object

	SampleRay(time, wavelengthSample float64, filmSample, apertureSample core.Vec2, active bool) (core.Ray, core.Vec3, bool)
	SampleRayDifferential(time, wavelengthSample float64, filmSample, apertureSample core.Vec2, active bool) (core.RayDifferential, core.Vec3, bool)

	BoundingBox() core.AABB
	Film() *Film
	WorldTransform() core.Transform
}

// base holds the configuration shared by all sensors
type base struct {
	plugin.Base
	film    *Film
	toWorld core.Transform
	variant lanes.Variant
}

// newBase reads "to_world" and the optional nested film
func newBase(class *plugin.Class, v lanes.Variant, props *plugin.Properties) (base, error) {
	toWorld, err := props.TransformOr("to_world", core.Identity())
	if err != nil {
		return base{}, err
	}
	b := base{Base: plugin.NewBase(class, props), toWorld: toWorld, variant: v}
	for _, named := range props.Objects() {
		if film, ok := named.Object.(*Film); ok {
			if b.film != nil {
				return base{}, plugin.Errorf(class.Name(), named.Key, plugin.ErrConflict, "only one film can be attached to a sensor")
			}
			b.film = film
			props.MarkQueried(named.Key)
		}
	}
	if b.film == nil {
		b.film = defaultFilm(v)
	}
	return b, nil
}

func (b *base) Film() *Film                    { return b.film }
func (b *base) WorldTransform() core.Transform { return b.toWorld }
