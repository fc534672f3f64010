package core

import (
	"math"
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// FixedSampler replays a fixed sequence of values, wrapping around at the end
type FixedSampler struct {
	Values []float64
	next   int
}

// Get1D returns the next value in the sequence
func (f *FixedSampler) Get1D() float64 {
	if len(f.Values) == 0 {
		return 0
	}
	v := f.Values[f.next%len(f.Values)]
	f.next++
	return v
}

// Get2D returns the next two values in the sequence
func (f *FixedSampler) Get2D() Vec2 {
	x := f.Get1D()
	return NewVec2(x, f.Get1D())
}

// SquareToUniformDiskConcentric maps the unit square to the unit disk using
// the concentric mapping of Shirley and Chiu
func SquareToUniformDiskConcentric(sample Vec2) Vec2 {
	// Map sample to [-1,1]² and handle degeneracy at the origin
	x := 2*sample.X - 1
	y := 2*sample.Y - 1
	if x == 0 && y == 0 {
		return Vec2{}
	}

	var phi, r float64
	if math.Abs(x) > math.Abs(y) {
		r = x
		phi = math.Pi / 4 * (y / x)
	} else {
		r = y
		phi = math.Pi/2 - math.Pi/4*(x/y)
	}

	return Vec2{r * math.Cos(phi), r * math.Sin(phi)}
}

// SquareToUniformDiskConcentricPDF is the density of the concentric disk mapping
func SquareToUniformDiskConcentricPDF(p Vec2) float64 {
	if p.X*p.X+p.Y*p.Y > 1 {
		return 0
	}
	return 1 / math.Pi
}

// SquareToUniformHemisphere maps the unit square to the +Z hemisphere with
// uniform density over solid angle
func SquareToUniformHemisphere(sample Vec2) Vec3 {
	p := SquareToUniformDiskConcentric(sample)
	z := 1 - (p.X*p.X + p.Y*p.Y)
	s := math.Sqrt(z + 1)
	return Vec3{p.X * s, p.Y * s, z}
}

// SquareToUniformHemispherePDF returns 1/(2π) on the +Z hemisphere
func SquareToUniformHemispherePDF(v Vec3) float64 {
	if v.Z < 0 {
		return 0
	}
	return 1 / (2 * math.Pi)
}

// SquareToCosineHemisphere maps the unit square to the +Z hemisphere with
// density proportional to cos(θ)
func SquareToCosineHemisphere(sample Vec2) Vec3 {
	p := SquareToUniformDiskConcentric(sample)
	z := math.Sqrt(math.Max(0, 1-p.X*p.X-p.Y*p.Y))
	return Vec3{p.X, p.Y, z}
}

// SquareToCosineHemispherePDF returns cos(θ)/π on the +Z hemisphere
func SquareToCosineHemispherePDF(v Vec3) float64 {
	if v.Z < 0 {
		return 0
	}
	return v.Z / math.Pi
}

// SquareToUniformSphere maps the unit square to the unit sphere uniformly
func SquareToUniformSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample.Y // z ∈ [-1, 1]
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * sample.X
	return Vec3{r * math.Cos(phi), r * math.Sin(phi), z}
}

// SquareToUniformSpherePDF returns 1/(4π)
func SquareToUniformSpherePDF(Vec3) float64 {
	return 1 / (4 * math.Pi)
}
