package bsdf

import (
	"fmt"
	"math"

	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/pkg/plugin"
)

// Blend linearly interpolates between two nested BSDFs. A weight of 0
// selects the first one, 1 the second. Component indices of the second
// BSDF follow those of the first.
type Blend struct {
	plugin.Base
	Components
	Weight float64
	Nested [2]BSDF
}

// NewBlend reads "weight" (default 0.5) and exactly two nested BSDFs
func NewBlend(v lanes.Variant, props *plugin.Properties) (*Blend, error) {
	weight, err := props.FloatOr("weight", 0.5)
	if err != nil {
		return nil, err
	}
	if weight < 0 || weight > 1 {
		return nil, plugin.Errorf("blendbsdf", "weight", plugin.ErrInvalidValue, "must lie in [0, 1], got %g", weight)
	}

	var nested []BSDF
	for _, named := range props.Objects() {
		if b, ok := named.Object.(BSDF); ok {
			nested = append(nested, b)
			props.MarkQueried(named.Key)
		}
	}
	if len(nested) != 2 {
		return nil, plugin.Errorf("blendbsdf", "", plugin.ErrInvalidValue, "needs exactly two nested BSDFs, got %d", len(nested))
	}

	b := &Blend{
		Base:   plugin.NewBase(plugin.ClassFor("BlendedBSDF", ClassName, v), props),
		Weight: weight,
		Nested: [2]BSDF{nested[0], nested[1]},
	}
	var flags []Flags
	for _, n := range b.Nested {
		for i := 0; i < n.ComponentCount(); i++ {
			flags = append(flags, n.FlagsAt(i))
		}
	}
	b.SetComponents(flags...)
	return b, nil
}

// route maps a component-restricted context to the nested BSDF that owns
// the component and the probability of that BSDF
func (b *Blend) route(ctx Context) (int, Context, float64) {
	first := b.Nested[0].ComponentCount()
	if ctx.Component < first {
		return 0, ctx, 1 - b.Weight
	}
	ctx.Component -= first
	return 1, ctx, b.Weight
}

func (b *Blend) Sample(ctx Context, si core.SurfaceInteraction, sample1 float64, sample2 core.Vec2, active bool) (Sample, core.Vec3) {
	if ctx.Component != AllComponents {
		index, sub, weight := b.route(ctx)
		bs, value := b.Nested[index].Sample(sub, si, sample1, sample2, active)
		if index == 1 && bs.SampledComponent != AllComponents {
			bs.SampledComponent += b.Nested[0].ComponentCount()
		}
		return bs, value.Multiply(weight)
	}

	// Reuse sample1 for the nested event after choosing the BSDF
	index, prob := 0, 1-b.Weight
	rescaled, ok := lanes.SafeDiv(sample1-b.Weight, 1-b.Weight)
	if sample1 < b.Weight {
		index, prob = 1, b.Weight
		rescaled, ok = lanes.SafeDiv(sample1, b.Weight)
	}
	active = active && ok
	rescaled = math.Min(rescaled, math.Nextafter(1, 0))

	bs, weight := b.Nested[index].Sample(ctx, si, rescaled, sample2, active)
	if index == 1 && bs.SampledComponent != AllComponents {
		bs.SampledComponent += b.Nested[0].ComponentCount()
	}

	if bs.SampledType.Has(Delta) {
		// The other BSDF cannot reach a delta direction
		bs.PDF *= prob
	} else {
		value, pdf := b.EvalPDF(ctx, si, bs.Wo, active)
		bs.PDF = pdf
		var invPDF float64
		invPDF, ok = lanes.SafeDiv(1, pdf)
		weight = value.Multiply(invPDF)
		active = active && ok
	}

	active = active && bs.PDF > 0
	return lanes.Select(active, bs, NoSample()), lanes.Select(active, weight, core.Vec3{})
}

func (b *Blend) Eval(ctx Context, si core.SurfaceInteraction, wo core.Vec3, active bool) core.Vec3 {
	if ctx.Component != AllComponents {
		index, sub, weight := b.route(ctx)
		return b.Nested[index].Eval(sub, si, wo, active).Multiply(weight)
	}
	e0 := b.Nested[0].Eval(ctx, si, wo, active)
	e1 := b.Nested[1].Eval(ctx, si, wo, active)
	return e0.Multiply(1 - b.Weight).Add(e1.Multiply(b.Weight))
}

func (b *Blend) PDF(ctx Context, si core.SurfaceInteraction, wo core.Vec3, active bool) float64 {
	if ctx.Component != AllComponents {
		index, sub, weight := b.route(ctx)
		return b.Nested[index].PDF(sub, si, wo, active) * weight
	}
	p0 := b.Nested[0].PDF(ctx, si, wo, active)
	p1 := b.Nested[1].PDF(ctx, si, wo, active)
	return p0*(1-b.Weight) + p1*b.Weight
}

func (b *Blend) EvalPDF(ctx Context, si core.SurfaceInteraction, wo core.Vec3, active bool) (core.Vec3, float64) {
	return b.Eval(ctx, si, wo, active), b.PDF(ctx, si, wo, active)
}

func (b *Blend) String() string {
	return fmt.Sprintf("BlendedBSDF[\n  weight = %g,\n  nested_bsdf[0] = %s,\n  nested_bsdf[1] = %s\n]",
		b.Weight, b.Nested[0], b.Nested[1])
}

func init() {
	plugin.Register("blendbsdf", ClassName, func(v lanes.Variant, props *plugin.Properties) (plugin.Object, error) {
		return NewBlend(v, props)
	})
}
