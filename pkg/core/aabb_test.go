package core

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAABB_EmptyIsUnionIdentity(t *testing.T) {
	box := NewAABB(NewVec3(-1, -2, -3), NewVec3(1, 2, 3))
	empty := EmptyAABB()

	assert.False(t, empty.IsValid())
	assert.Equal(t, box, empty.Union(box))
	assert.Equal(t, box, box.Union(empty))
}

func TestAABB_Hit(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	tests := []struct {
		name     string
		ray      Ray
		expected bool
	}{
		{"Through center", NewRay(NewVec3(0, 0, -5), NewVec3(0, 0, 1)), true},
		{"Parallel outside", NewRay(NewVec3(2, 0, -5), NewVec3(0, 0, 1)), false},
		{"Pointing away", NewRay(NewVec3(0, 0, -5), NewVec3(0, 0, -1)), false},
		{"Diagonal", NewRay(NewVec3(-5, -5, -5), NewVec3(1, 1, 1)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.Hit(tt.ray, 0, math.Inf(1)); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}

	assert.False(t, EmptyAABB().Hit(NewRay(Vec3{}, NewVec3(0, 0, 1)), 0, math.Inf(1)))
}

func TestAABB_BoundingSphere(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))
	sphere := box.BoundingSphere()

	assert.Equal(t, Vec3{}, sphere.Center)
	assert.InDelta(t, math.Sqrt(3), sphere.Radius, 1e-12)
	assert.True(t, sphere.Contains(box.Max))

	degenerate := EmptyAABB().BoundingSphere()
	assert.Equal(t, 0.0, degenerate.Radius)

	point := NewAABB(NewVec3(2, 2, 2), NewVec3(2, 2, 2)).BoundingSphere()
	assert.Equal(t, 0.0, point.Radius)
	assert.True(t, point.Contains(NewVec3(2, 2, 2)))
}

func TestAABB_BoundingSphereContainsCorners(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		a := NewVec3(rng.NormFloat64()*100, rng.NormFloat64(), rng.NormFloat64()*1e-3)
		b := NewVec3(rng.NormFloat64()*100, rng.NormFloat64(), rng.NormFloat64()*1e-3)
		box := NewAABBFromPoints(a, b)
		sphere := box.BoundingSphere()
		for _, x := range []float64{box.Min.X, box.Max.X} {
			for _, y := range []float64{box.Min.Y, box.Max.Y} {
				for _, z := range []float64{box.Min.Z, box.Max.Z} {
					require.True(t, sphere.Contains(NewVec3(x, y, z)), "box %v corner (%g, %g, %g)", box, x, y, z)
				}
			}
		}
	}
}

func TestBoundingSphere_Inflate(t *testing.T) {
	sphere := BoundingSphere{Radius: 10}.Inflate(RayEpsilon)
	assert.Greater(t, sphere.Radius, 10.0)
	assert.GreaterOrEqual(t, sphere.Radius-10.0, 10*RayEpsilon*(1-1e-9))

	zero := BoundingSphere{}.Inflate(RayEpsilon)
	assert.Equal(t, RayEpsilon, zero.Radius)
}
