package bsdf

import (
	"fmt"
	"math"

	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/pkg/plugin"
)

// SmoothDiffuse is an ideal Lambertian reflector
type SmoothDiffuse struct {
	plugin.Base
	Components
	Reflectance core.Vec3
}

// NewDiffuse creates a diffuse BSDF. The "reflectance" parameter defaults to 0.5.
func NewDiffuse(v lanes.Variant, props *plugin.Properties) (*SmoothDiffuse, error) {
	reflectance, err := props.ColorOr("reflectance", core.Splat(0.5))
	if err != nil {
		return nil, err
	}
	return &SmoothDiffuse{
		Base:        plugin.NewBase(plugin.ClassFor("SmoothDiffuse", ClassName, v), props),
		Components:  NewComponents(DiffuseReflection | FrontSide),
		Reflectance: reflectance,
	}, nil
}

func (d *SmoothDiffuse) Sample(ctx Context, si core.SurfaceInteraction, sample1 float64, sample2 core.Vec2, active bool) (Sample, core.Vec3) {
	active = active && cosTheta(si.Wi) > 0 && ctx.IsEnabled(DiffuseReflection, 0)

	bs := NoSample()
	bs.Wo = core.SquareToCosineHemisphere(sample2)
	bs.PDF = core.SquareToCosineHemispherePDF(bs.Wo)
	bs.SampledType = DiffuseReflection
	bs.SampledComponent = 0

	// Cosine-weighted sampling cancels the foreshortening and 1/pi terms
	active = active && bs.PDF > 0
	return lanes.Select(active, bs, NoSample()), lanes.Select(active, d.Reflectance, core.Vec3{})
}

func (d *SmoothDiffuse) Eval(ctx Context, si core.SurfaceInteraction, wo core.Vec3, active bool) core.Vec3 {
	cosI, cosO := cosTheta(si.Wi), cosTheta(wo)
	active = active && cosI > 0 && cosO > 0 && ctx.IsEnabled(DiffuseReflection, 0)
	value := d.Reflectance.Multiply(cosO / math.Pi)
	return lanes.Select(active, value, core.Vec3{})
}

func (d *SmoothDiffuse) PDF(ctx Context, si core.SurfaceInteraction, wo core.Vec3, active bool) float64 {
	cosI, cosO := cosTheta(si.Wi), cosTheta(wo)
	active = active && cosI > 0 && cosO > 0 && ctx.IsEnabled(DiffuseReflection, 0)
	return lanes.Select(active, core.SquareToCosineHemispherePDF(wo), 0)
}

func (d *SmoothDiffuse) EvalPDF(ctx Context, si core.SurfaceInteraction, wo core.Vec3, active bool) (core.Vec3, float64) {
	return d.Eval(ctx, si, wo, active), d.PDF(ctx, si, wo, active)
}

func (d *SmoothDiffuse) String() string {
	return fmt.Sprintf("SmoothDiffuse[\n  reflectance = %v\n]", d.Reflectance)
}

func init() {
	plugin.Register("diffuse", ClassName, func(v lanes.Variant, props *plugin.Properties) (plugin.Object, error) {
		return NewDiffuse(v, props)
	})
}
