package bsdf

import (
	"math"
	"math/rand"
	"os"
	"testing"

	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/pkg/plugin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logrus.SetLevel(logrus.WarnLevel)
	os.Exit(m.Run())
}

func localSI(wi core.Vec3) core.SurfaceInteraction {
	return core.SurfaceInteraction{Valid: true, Wi: wi.Normalize(), Sh: core.NewFrame(core.NewVec3(0, 0, 1))}
}

func newTestDiffuse(t *testing.T, reflectance float64) *SmoothDiffuse {
	props := plugin.NewProperties("diffuse")
	props.SetFloat("reflectance", reflectance)
	d, err := NewDiffuse(lanes.ScalarRGB, props)
	require.NoError(t, err)
	return d
}

func newTestDielectric(t *testing.T) *Dielectric {
	props := plugin.NewProperties("dielectric")
	props.SetFloat("int_ior", 1.5)
	props.SetFloat("ext_ior", 1.0)
	d, err := NewDielectric(lanes.ScalarRGB, props)
	require.NoError(t, err)
	return d
}

func TestFlags_String(t *testing.T) {
	assert.Equal(t, "Null", Null.String())
	assert.Equal(t, "DiffuseReflection | FrontSide", (DiffuseReflection | FrontSide).String())
	assert.True(t, All.Has(DeltaTransmission))
	assert.False(t, Smooth.Has(Delta))
}

func TestContext_IsEnabled(t *testing.T) {
	ctx := NewContext()
	assert.True(t, ctx.IsEnabled(DeltaReflection, 3))

	ctx.Component = 1
	assert.False(t, ctx.IsEnabled(DeltaReflection, 0))
	assert.True(t, ctx.IsEnabled(DeltaTransmission, 1))

	ctx = NewContext()
	ctx.TypeMask = Reflection
	assert.False(t, ctx.IsEnabled(DeltaTransmission, 1))

	ctx.Reverse()
	assert.Equal(t, Importance, ctx.Mode)
}

func TestDiffuse_SampleWeightMatchesEvalOverPDF(t *testing.T) {
	d := newTestDiffuse(t, 0.7)
	ctx := NewContext()
	si := localSI(core.NewVec3(0.3, -0.2, 1))
	random := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		bs, weight := d.Sample(ctx, si, random.Float64(), core.NewVec2(random.Float64(), random.Float64()), true)
		if bs.PDF == 0 {
			continue
		}
		assert.Equal(t, 1.0, bs.Eta)
		assert.Equal(t, DiffuseReflection, bs.SampledType)

		value, pdf := d.EvalPDF(ctx, si, bs.Wo, true)
		assert.InDelta(t, pdf, bs.PDF, 1e-12)
		assert.InDelta(t, value.X/pdf, weight.X, 1e-9)
	}
}

func TestDiffuse_EvalPDFIsBitIdentical(t *testing.T) {
	d := newTestDiffuse(t, 0.5)
	ctx := NewContext()
	si := localSI(core.NewVec3(0, 0.5, 1))
	random := rand.New(rand.NewSource(7))

	for i := 0; i < 100; i++ {
		wo := core.SquareToUniformSphere(core.NewVec2(random.Float64(), random.Float64()))
		value, pdf := d.EvalPDF(ctx, si, wo, true)
		assert.Equal(t, d.Eval(ctx, si, wo, true), value)
		assert.Equal(t, d.PDF(ctx, si, wo, true), pdf)
	}
}

func TestDiffuse_BelowHorizonIsZero(t *testing.T) {
	d := newTestDiffuse(t, 0.5)
	ctx := NewContext()

	// Incident direction below the surface
	si := localSI(core.NewVec3(0, 0, -1))
	bs, weight := d.Sample(ctx, si, 0.5, core.NewVec2(0.5, 0.5), true)
	assert.Equal(t, 0.0, bs.PDF)
	assert.True(t, weight.IsZero())

	// Outgoing direction below the surface
	si = localSI(core.NewVec3(0, 0, 1))
	assert.True(t, d.Eval(ctx, si, core.NewVec3(0, 0, -1), true).IsZero())
	assert.Equal(t, 0.0, d.PDF(ctx, si, core.NewVec3(0, 0, -1), true))
}

func TestBSDFs_InactiveLanesAreZero(t *testing.T) {
	nan := math.NaN()
	si := core.SurfaceInteraction{Wi: core.NewVec3(nan, nan, nan)}
	ctx := NewContext()

	for _, b := range []BSDF{newTestDiffuse(t, 0.5), newTestDielectric(t), &Conductor{Mirror: true, SpecularReflectance: core.Splat(1)}} {
		bs, weight := b.Sample(ctx, si, 0.5, core.NewVec2(0.5, 0.5), false)
		assert.Equal(t, NoSample(), bs)
		assert.True(t, weight.IsZero())
		value, pdf := b.EvalPDF(ctx, si, core.NewVec3(0, 0, 1), false)
		assert.True(t, value.IsZero())
		assert.Equal(t, 0.0, pdf)
	}
}

func TestDiffuse_DisabledByContext(t *testing.T) {
	d := newTestDiffuse(t, 0.5)
	ctx := NewContext()
	ctx.TypeMask = Delta
	bs, weight := d.Sample(ctx, localSI(core.NewVec3(0, 0, 1)), 0.5, core.NewVec2(0.3, 0.3), true)
	assert.Equal(t, 0.0, bs.PDF)
	assert.True(t, weight.IsZero())
}

func TestConductor_MirrorReflects(t *testing.T) {
	c, err := NewConductor(lanes.ScalarRGB, plugin.NewProperties("conductor"))
	require.NoError(t, err)
	require.True(t, c.Mirror)

	wi := core.NewVec3(0.3, 0.4, 0.866).Normalize()
	bs, weight := c.Sample(NewContext(), localSI(wi), 0.1, core.NewVec2(0.1, 0.1), true)
	assert.Equal(t, 1.0, bs.PDF)
	assert.Equal(t, 1.0, bs.Eta)
	assert.Equal(t, DeltaReflection, bs.SampledType)
	assert.InDelta(t, -wi.X, bs.Wo.X, 1e-12)
	assert.InDelta(t, wi.Z, bs.Wo.Z, 1e-12)
	assert.Equal(t, core.Splat(1), weight)

	assert.True(t, c.Eval(NewContext(), localSI(wi), bs.Wo, true).IsZero())
	assert.Equal(t, 0.0, c.PDF(NewContext(), localSI(wi), bs.Wo, true))
}

func TestConductor_FresnelBounds(t *testing.T) {
	props := plugin.NewProperties("conductor")
	props.SetColor("eta", core.NewVec3(0.2, 0.9, 1.1))
	props.SetColor("k", core.NewVec3(3.9, 2.4, 2.2))
	c, err := NewConductor(lanes.ScalarRGB, props)
	require.NoError(t, err)

	for _, cosI := range []float64{1, 0.7, 0.3, 0.05} {
		wi := core.NewVec3(math.Sqrt(1-cosI*cosI), 0, cosI)
		_, weight := c.Sample(NewContext(), localSI(wi), 0.5, core.NewVec2(0, 0), true)
		for axis := 0; axis < 3; axis++ {
			assert.Greater(t, weight.Component(axis), 0.0)
			assert.LessOrEqual(t, weight.Component(axis), 1.0)
		}
	}
}

func TestFresnel(t *testing.T) {
	// Normal incidence from outside: ((eta-1)/(eta+1))^2
	r, cosT, etaIT, etaTI := fresnel(1, 1.5)
	assert.InDelta(t, 0.04, r, 1e-12)
	assert.InDelta(t, -1, cosT, 1e-12)
	assert.Equal(t, 1.5, etaIT)
	assert.InDelta(t, 1/1.5, etaTI, 1e-15)

	// Total internal reflection from inside at a grazing angle
	r, _, _, _ = fresnel(-0.1, 1.5)
	assert.Equal(t, 1.0, r)

	r, _, _, _ = fresnel(0.5, 1)
	assert.Equal(t, 0.0, r)
}

func TestDielectric_EtaRules(t *testing.T) {
	d := newTestDielectric(t)
	ctx := NewContext()
	wi := core.NewVec3(0.5, 0, 0.866).Normalize()
	si := localSI(wi)
	rI, _, _, etaTI := fresnel(wi.Z, 1.5)

	// sample1 below the reflectance selects reflection
	bs, weight := d.Sample(ctx, si, rI/2, core.Vec2{}, true)
	assert.Equal(t, DeltaReflection, bs.SampledType)
	assert.Equal(t, 0, bs.SampledComponent)
	assert.Equal(t, 1.0, bs.Eta)
	assert.InDelta(t, rI, bs.PDF, 1e-12)
	assert.Equal(t, core.Splat(1), weight)

	bs, weight = d.Sample(ctx, si, 0.99, core.Vec2{}, true)
	assert.Equal(t, DeltaTransmission, bs.SampledType)
	assert.Equal(t, 1, bs.SampledComponent)
	assert.Equal(t, 1.5, bs.Eta)
	assert.InDelta(t, 1-rI, bs.PDF, 1e-12)
	assert.Less(t, bs.Wo.Z, 0.0)
	assert.InDelta(t, 1, bs.Wo.Length(), 1e-12)
	assert.InDelta(t, etaTI*etaTI, weight.X, 1e-12, "radiance is scaled by eta^2 when entering")

	ctx.Mode = Importance
	_, weight = d.Sample(ctx, si, 0.99, core.Vec2{}, true)
	assert.InDelta(t, 1.0, weight.X, 1e-12)
}

func TestDielectric_SingleLobeContext(t *testing.T) {
	d := newTestDielectric(t)
	wi := core.NewVec3(0, 0, 1)
	rI, _, _, _ := fresnel(1, 1.5)

	ctx := NewContext()
	ctx.Component = 0
	bs, weight := d.Sample(ctx, localSI(wi), 0.99, core.Vec2{}, true)
	assert.Equal(t, DeltaReflection, bs.SampledType)
	assert.Equal(t, 1.0, bs.PDF)
	assert.InDelta(t, rI, weight.X, 1e-12)

	ctx.Component = 3
	bs, weight = d.Sample(ctx, localSI(wi), 0.5, core.Vec2{}, true)
	assert.Equal(t, 0.0, bs.PDF)
	assert.True(t, weight.IsZero())
}

func TestDielectric_NamedIOR(t *testing.T) {
	props := plugin.NewProperties("dielectric")
	props.SetString("int_ior", "water")
	props.SetString("ext_ior", "vacuum")
	d, err := NewDielectric(lanes.ScalarRGB, props)
	require.NoError(t, err)
	assert.InDelta(t, 1.333, d.Eta, 1e-12)

	props.SetString("int_ior", "unobtainium")
	_, err = NewDielectric(lanes.ScalarRGB, props)
	assert.ErrorIs(t, err, plugin.ErrInvalidValue)
}

func TestComponents(t *testing.T) {
	d := newTestDielectric(t)
	assert.Equal(t, 2, d.ComponentCount())
	assert.True(t, d.FlagsAt(1).Has(DeltaTransmission))
	assert.Equal(t, Null, d.FlagsAt(5))
	assert.True(t, d.Flags().Has(DeltaReflection|DeltaTransmission))
}
