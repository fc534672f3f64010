package bsdf

import (
	"fmt"

	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/pkg/plugin"
)

// Named indices of refraction accepted by "int_ior" and "ext_ior"
var iorTable = map[string]float64{
	"vacuum":        1.0,
	"air":           1.000277,
	"water":         1.3330,
	"acrylic glass": 1.49,
	"bk7":           1.5046,
	"sapphire":      1.77,
	"diamond":       2.419,
}

const (
	defaultIntIOR = 1.5046
	defaultExtIOR = 1.000277
)

func lookupIOR(name string, props *plugin.Properties, key string, def float64) (float64, error) {
	typ, ok := props.Type(key)
	if !ok {
		return def, nil
	}
	if typ == plugin.TypeString {
		s, err := props.Text(key)
		if err != nil {
			return 0, err
		}
		ior, ok := iorTable[s]
		if !ok {
			return 0, plugin.Errorf(name, key, plugin.ErrInvalidValue, "unknown index of refraction %q", s)
		}
		return ior, nil
	}
	ior, err := props.Float(key)
	if err != nil {
		return 0, err
	}
	if ior <= 0 {
		return 0, plugin.Errorf(name, key, plugin.ErrInvalidValue, "index of refraction must be positive, got %g", ior)
	}
	return ior, nil
}

// Dielectric is a smooth interface between two transparent media
type Dielectric struct {
	plugin.Base
	Components
	Eta                   float64 // Interior over exterior index
	SpecularReflectance   core.Vec3
	SpecularTransmittance core.Vec3
}

// NewDielectric reads "int_ior", "ext_ior", "specular_reflectance" and
// "specular_transmittance"
func NewDielectric(v lanes.Variant, props *plugin.Properties) (*Dielectric, error) {
	intIOR, err := lookupIOR("dielectric", props, "int_ior", defaultIntIOR)
	if err != nil {
		return nil, err
	}
	extIOR, err := lookupIOR("dielectric", props, "ext_ior", defaultExtIOR)
	if err != nil {
		return nil, err
	}
	d := &Dielectric{
		Base: plugin.NewBase(plugin.ClassFor("SmoothDielectric", ClassName, v), props),
		Components: NewComponents(
			DeltaReflection|FrontSide|BackSide,
			DeltaTransmission|FrontSide|BackSide|NonSymmetric,
		),
		Eta: intIOR / extIOR,
	}
	if d.SpecularReflectance, err = props.ColorOr("specular_reflectance", core.Splat(1)); err != nil {
		return nil, err
	}
	if d.SpecularTransmittance, err = props.ColorOr("specular_transmittance", core.Splat(1)); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dielectric) Sample(ctx Context, si core.SurfaceInteraction, sample1 float64, sample2 core.Vec2, active bool) (Sample, core.Vec3) {
	hasReflection := ctx.IsEnabled(DeltaReflection, 0)
	hasTransmission := ctx.IsEnabled(DeltaTransmission, 1)

	cosI := cosTheta(si.Wi)
	rI, cosT, etaIT, etaTI := fresnel(cosI, d.Eta)
	tI := 1 - rI

	bs := NoSample()
	var selectedR bool
	switch {
	case hasReflection && hasTransmission:
		selectedR = sample1 <= rI
		bs.PDF = lanes.Select(selectedR, rI, tI)
	case hasReflection || hasTransmission:
		selectedR = hasReflection
		bs.PDF = 1
	default:
		return NoSample(), core.Vec3{}
	}

	var weight core.Vec3
	if selectedR {
		bs.SampledComponent = 0
		bs.SampledType = DeltaReflection
		bs.Wo = reflect(si.Wi)
		bs.Eta = 1
		weight = d.SpecularReflectance
		if !hasTransmission {
			weight = weight.Multiply(rI)
		}
	} else {
		bs.SampledComponent = 1
		bs.SampledType = DeltaTransmission
		bs.Wo = refract(si.Wi, cosT, etaTI)
		bs.Eta = etaIT
		weight = d.SpecularTransmittance
		if !hasReflection {
			weight = weight.Multiply(tI)
		}
		// Radiance is compressed into a smaller solid angle on the dense side
		if ctx.Mode == Radiance {
			weight = weight.Multiply(etaTI * etaTI)
		}
	}

	active = active && bs.PDF > 0
	return lanes.Select(active, bs, NoSample()), lanes.Select(active, weight, core.Vec3{})
}

func (d *Dielectric) Eval(ctx Context, si core.SurfaceInteraction, wo core.Vec3, active bool) core.Vec3 {
	return core.Vec3{}
}

func (d *Dielectric) PDF(ctx Context, si core.SurfaceInteraction, wo core.Vec3, active bool) float64 {
	return 0
}

func (d *Dielectric) EvalPDF(ctx Context, si core.SurfaceInteraction, wo core.Vec3, active bool) (core.Vec3, float64) {
	return d.Eval(ctx, si, wo, active), d.PDF(ctx, si, wo, active)
}

func (d *Dielectric) String() string {
	return fmt.Sprintf("SmoothDielectric[\n  eta = %g,\n  specular_reflectance = %v,\n  specular_transmittance = %v\n]",
		d.Eta, d.SpecularReflectance, d.SpecularTransmittance)
}

func init() {
	plugin.Register("dielectric", ClassName, func(v lanes.Variant, props *plugin.Properties) (plugin.Object, error) {
		return NewDielectric(v, props)
	})
}
