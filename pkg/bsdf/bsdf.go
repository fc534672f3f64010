// Package bsdf defines the scattering model interface and the built-in
// BSDF plugins.
//
// All directions are expressed in the local shading frame of the
// interaction: si.Wi points away from the surface and the normal is +Z.
// Eval returns the BSDF value times the foreshortening term |cos theta_o|,
// and the weight returned by Sample is Eval/PDF for the sampled direction.
// Operations evaluated with active=false, or on events that are impossible
// under the given context, yield a zero PDF and a zero value.
package bsdf

import (
	"math"

	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/plugin"
)

// Sample describes a sampled scattering event
type Sample struct {
	Wo               core.Vec3 // Local direction of the scattered ray
	PDF              float64   // Solid angle density, or the discrete probability of a delta lobe
	Eta              float64   // Relative index of refraction in the sampled direction
	SampledType      Flags
	SampledComponent int
}

// NoSample is the value returned for inactive lanes and impossible events
func NoSample() Sample {
	return Sample{Eta: 1, SampledComponent: AllComponents}
}

// BSDF is implemented by every scattering model
type BSDF interface {
	plugin.Object

	// Sample draws an outgoing direction and returns it with its weight
	Sample(ctx Context, si core.SurfaceInteraction, sample1 float64, sample2 core.Vec2, active bool) (Sample, core.Vec3)
	Eval(ctx Context, si core.SurfaceInteraction, wo core.Vec3, active bool) core.Vec3
	PDF(ctx Context, si core.SurfaceInteraction, wo core.Vec3, active bool) float64
	// EvalPDF returns exactly what Eval and PDF would return separately
	EvalPDF(ctx Context, si core.SurfaceInteraction, wo core.Vec3, active bool) (core.Vec3, float64)

	Flags() Flags
	FlagsAt(index int) Flags
	ComponentCount() int
}

// ClassName is the base class every BSDF plugin derives from
const ClassName = "BSDF"

func cosTheta(v core.Vec3) float64 { return v.Z }

// reflect mirrors a local direction about the normal
func reflect(wi core.Vec3) core.Vec3 {
	return core.NewVec3(-wi.X, -wi.Y, wi.Z)
}

// refract bends a local direction given the cosine of the transmitted
// direction and the inverse relative index of refraction
func refract(wi core.Vec3, cosThetaT, etaTI float64) core.Vec3 {
	return core.NewVec3(-etaTI*wi.X, -etaTI*wi.Y, cosThetaT)
}

func safeSqrt(x float64) float64 {
	return math.Sqrt(math.Max(0, x))
}

// fresnel evaluates the unpolarized dielectric Fresnel reflectance for an
// interface with relative index eta. It also returns the signed cosine of
// the transmitted direction and the relative indices in both directions
// across the interface (eta_it, eta_ti) as seen from the incident side.
func fresnel(cosThetaI, eta float64) (r, cosThetaT, etaIT, etaTI float64) {
	outside := cosThetaI >= 0
	etaIT, etaTI = 1/eta, eta
	if outside {
		etaIT, etaTI = eta, 1/eta
	}

	cosThetaTSqr := 1 - (1-cosThetaI*cosThetaI)*etaTI*etaTI
	cosIAbs := math.Abs(cosThetaI)
	cosTAbs := safeSqrt(cosThetaTSqr)

	indexMatched := eta == 1
	if indexMatched || cosIAbs == 0 {
		r = 1
		if indexMatched {
			r = 0
		}
	} else {
		aS := (cosIAbs - etaIT*cosTAbs) / (cosIAbs + etaIT*cosTAbs)
		aP := (cosTAbs - etaIT*cosIAbs) / (cosTAbs + etaIT*cosIAbs)
		r = 0.5 * (aS*aS + aP*aP)
	}

	cosThetaT = -math.Copysign(cosTAbs, cosThetaI)
	return r, cosThetaT, etaIT, etaTI
}

// fresnelConductor evaluates the unpolarized Fresnel reflectance of a
// conductor with complex index eta + i k
func fresnelConductor(cosThetaI, eta, k float64) float64 {
	cos2 := cosThetaI * cosThetaI
	sin2 := 1 - cos2
	sin4 := sin2 * sin2

	temp1 := eta*eta - k*k - sin2
	a2pb2 := safeSqrt(temp1*temp1 + 4*k*k*eta*eta)
	a := safeSqrt(0.5 * (a2pb2 + temp1))

	term1 := a2pb2 + cos2
	term2 := 2 * cosThetaI * a
	rS := (term1 - term2) / (term1 + term2)

	term3 := a2pb2*cos2 + sin4
	term4 := term2 * sin2
	rP := rS * (term3 - term4) / (term3 + term4)

	return 0.5 * (rS + rP)
}
