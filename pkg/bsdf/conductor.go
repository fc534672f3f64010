package bsdf

import (
	"fmt"

	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/pkg/plugin"
	"github.com/sirupsen/logrus"
)

// Conductor is a perfectly smooth metal. Without "eta" and "k" it acts as
// an ideal mirror.
type Conductor struct {
	plugin.Base
	Components
	Eta, K              core.Vec3
	Mirror              bool
	SpecularReflectance core.Vec3
}

// NewConductor reads "eta", "k" and "specular_reflectance"
func NewConductor(v lanes.Variant, props *plugin.Properties) (*Conductor, error) {
	c := &Conductor{
		Base:       plugin.NewBase(plugin.ClassFor("SmoothConductor", ClassName, v), props),
		Components: NewComponents(DeltaReflection | FrontSide),
		Mirror:     !props.Has("eta") && !props.Has("k"),
	}

	var err error
	if c.SpecularReflectance, err = props.ColorOr("specular_reflectance", core.Splat(1)); err != nil {
		return nil, err
	}
	if !c.Mirror {
		if c.Eta, err = props.ColorOr("eta", core.Splat(0)); err != nil {
			return nil, err
		}
		if c.K, err = props.ColorOr("k", core.Splat(1)); err != nil {
			return nil, err
		}
	}
	logrus.Debugf("conductor %s: mirror=%v eta=%v k=%v", c.ID(), c.Mirror, c.Eta, c.K)
	return c, nil
}

func (c *Conductor) reflectance(cosThetaI float64) core.Vec3 {
	if c.Mirror {
		return c.SpecularReflectance
	}
	f := core.NewVec3(
		fresnelConductor(cosThetaI, c.Eta.X, c.K.X),
		fresnelConductor(cosThetaI, c.Eta.Y, c.K.Y),
		fresnelConductor(cosThetaI, c.Eta.Z, c.K.Z),
	)
	return f.MultiplyVec(c.SpecularReflectance)
}

func (c *Conductor) Sample(ctx Context, si core.SurfaceInteraction, sample1 float64, sample2 core.Vec2, active bool) (Sample, core.Vec3) {
	cosI := cosTheta(si.Wi)
	active = active && cosI > 0 && ctx.IsEnabled(DeltaReflection, 0)

	bs := NoSample()
	bs.Wo = reflect(si.Wi)
	bs.PDF = 1
	bs.SampledType = DeltaReflection
	bs.SampledComponent = 0

	return lanes.Select(active, bs, NoSample()), lanes.Select(active, c.reflectance(cosI), core.Vec3{})
}

// Eval is zero: a delta lobe has no density with respect to solid angle
func (c *Conductor) Eval(ctx Context, si core.SurfaceInteraction, wo core.Vec3, active bool) core.Vec3 {
	return core.Vec3{}
}

func (c *Conductor) PDF(ctx Context, si core.SurfaceInteraction, wo core.Vec3, active bool) float64 {
	return 0
}

func (c *Conductor) EvalPDF(ctx Context, si core.SurfaceInteraction, wo core.Vec3, active bool) (core.Vec3, float64) {
	return c.Eval(ctx, si, wo, active), c.PDF(ctx, si, wo, active)
}

func (c *Conductor) String() string {
	if c.Mirror {
		return fmt.Sprintf("SmoothConductor[\n  mirror = true,\n  specular_reflectance = %v\n]", c.SpecularReflectance)
	}
	return fmt.Sprintf("SmoothConductor[\n  eta = %v,\n  k = %v,\n  specular_reflectance = %v\n]", c.Eta, c.K, c.SpecularReflectance)
}

func init() {
	plugin.Register("conductor", ClassName, func(v lanes.Variant, props *plugin.Properties) (plugin.Object, error) {
		return NewConductor(v, props)
	})
}
