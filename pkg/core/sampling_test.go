package core

import (
	"math"
	"math/rand"
	"testing"
)

func TestSquareToUniformDiskConcentric(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		p := SquareToUniformDiskConcentric(NewVec2(random.Float64(), random.Float64()))
		if p.X*p.X+p.Y*p.Y > 1+1e-12 {
			t.Fatalf("Sample %v lies outside the unit disk", p)
		}
	}

	center := SquareToUniformDiskConcentric(NewVec2(0.5, 0.5))
	if center != (Vec2{}) {
		t.Errorf("Expected center of square to map to origin, got %v", center)
	}
}

func TestHemisphereWarps(t *testing.T) {
	random := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		sample := NewVec2(random.Float64(), random.Float64())

		uniform := SquareToUniformHemisphere(sample)
		if math.Abs(uniform.Length()-1) > 1e-9 || uniform.Z < 0 {
			t.Fatalf("Uniform hemisphere sample %v is not a unit +Z direction", uniform)
		}

		cosine := SquareToCosineHemisphere(sample)
		if math.Abs(cosine.Length()-1) > 1e-9 || cosine.Z < 0 {
			t.Fatalf("Cosine hemisphere sample %v is not a unit +Z direction", cosine)
		}
		if math.Abs(SquareToCosineHemispherePDF(cosine)-cosine.Z/math.Pi) > 1e-12 {
			t.Fatalf("Unexpected cosine pdf for %v", cosine)
		}
	}

	if SquareToUniformHemispherePDF(NewVec3(0, 0, -1)) != 0 {
		t.Error("Expected zero density below the hemisphere")
	}
}

func TestSquareToUniformSphere(t *testing.T) {
	random := rand.New(rand.NewSource(3))
	var mean Vec3
	const n = 20000
	for i := 0; i < n; i++ {
		v := SquareToUniformSphere(NewVec2(random.Float64(), random.Float64()))
		if math.Abs(v.Length()-1) > 1e-9 {
			t.Fatalf("Sphere sample %v is not unit length", v)
		}
		mean = mean.Add(v)
	}
	mean = mean.Multiply(1.0 / n)
	if mean.Length() > 0.03 {
		t.Errorf("Expected samples centered on origin, mean %v", mean)
	}
}

func TestFixedSampler(t *testing.T) {
	s := &FixedSampler{Values: []float64{0.1, 0.2, 0.3}}
	if s.Get1D() != 0.1 {
		t.Error("Expected first value")
	}
	if got := s.Get2D(); got != NewVec2(0.2, 0.3) {
		t.Errorf("Expected (0.2, 0.3), got %v", got)
	}
	if s.Get1D() != 0.1 {
		t.Error("Expected sequence to wrap around")
	}
}
