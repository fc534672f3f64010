package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-plugin-renderer/pkg/bsdf"
	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/emitter"
	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/pkg/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSphere(t *testing.T, center core.Vec3, radius float64) *Sphere {
	props := plugin.NewProperties("sphere")
	props.SetPoint3("center", center)
	props.SetFloat("radius", radius)
	s, err := NewSphere(lanes.ScalarRGB, props)
	require.NoError(t, err)
	return s
}

func newTestRectangle(t *testing.T, toWorld core.Transform) *Rectangle {
	props := plugin.NewProperties("rectangle")
	props.SetTransform("to_world", toWorld)
	r, err := NewRectangle(lanes.ScalarRGB, props)
	require.NoError(t, err)
	return r
}

func TestSphere_Hit(t *testing.T) {
	s := newTestSphere(t, core.NewVec3(0, 0, -5), 1)

	si, ok := s.Hit(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), 0, math.Inf(1))
	require.True(t, ok)
	assert.InDelta(t, 4.0, si.T, 1e-12)
	assert.InDelta(t, 1.0, si.N.Z, 1e-12)
	// Wi points back towards the ray origin, above the surface
	assert.InDelta(t, 1.0, si.Wi.Z, 1e-12)

	_, ok = s.Hit(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0)), 0, math.Inf(1))
	assert.False(t, ok)

	// From inside the sphere the far root is used
	si, ok = s.Hit(core.NewRay(core.NewVec3(0, 0, -5), core.NewVec3(1, 0, 0)), 0, math.Inf(1))
	require.True(t, ok)
	assert.InDelta(t, 1.0, si.T, 1e-12)
	assert.Less(t, si.Wi.Z, 0.0)
}

func TestSphere_SamplePosition(t *testing.T) {
	s := newTestSphere(t, core.NewVec3(1, 2, 3), 2)
	random := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		ps := s.SamplePosition(0.5, core.NewVec2(random.Float64(), random.Float64()), true)
		assert.InDelta(t, 2.0, ps.P.Subtract(s.Center).Length(), 1e-9)
		assert.InDelta(t, 1/(16*math.Pi), ps.PDF, 1e-15)
		assert.Equal(t, 0.5, ps.Time)
	}
	assert.Equal(t, 0.0, s.SamplePosition(0, core.NewVec2(0.5, 0.5), false).PDF)
}

func TestShape_DefaultBSDFAndNestedObjects(t *testing.T) {
	s := newTestSphere(t, core.Vec3{}, 1)
	assert.IsType(t, &bsdf.SmoothDiffuse{}, s.BSDF())
	assert.Nil(t, s.Emitter())

	area, err := emitter.NewArea(lanes.ScalarRGB, plugin.NewProperties("area"))
	require.NoError(t, err)
	props := plugin.NewProperties("disk")
	props.SetObject("light", area)
	d, err := NewDisk(lanes.ScalarRGB, props)
	require.NoError(t, err)
	assert.Same(t, area, d.Emitter())
	assert.Empty(t, props.Unqueried())

	env, err := emitter.NewConstant(lanes.ScalarRGB, plugin.NewProperties("constant"))
	require.NoError(t, err)
	props = plugin.NewProperties("disk")
	props.SetObject("light", env)
	_, err = NewDisk(lanes.ScalarRGB, props)
	assert.ErrorIs(t, err, plugin.ErrInvalidValue)
}

func TestRectangle(t *testing.T) {
	toWorld := core.Translate(core.NewVec3(0, 0, 2)).Compose(core.Scale(core.NewVec3(2, 3, 1)))
	r := newTestRectangle(t, toWorld)
	assert.InDelta(t, 24.0, r.SurfaceArea(), 1e-12)

	si, ok := r.Hit(core.NewRay(core.NewVec3(1.5, -2.5, 0), core.NewVec3(0, 0, 1)), 0, math.Inf(1))
	require.True(t, ok)
	assert.InDelta(t, 2.0, si.T, 1e-12)
	assert.InDelta(t, 1.0, si.N.Z, 1e-12)
	assert.Less(t, si.Wi.Z, 0.0, "ray arrives from the back side")

	_, ok = r.Hit(core.NewRay(core.NewVec3(2.5, 0, 0), core.NewVec3(0, 0, 1)), 0, math.Inf(1))
	assert.False(t, ok)

	box := r.BoundingBox()
	assert.Equal(t, core.NewVec3(-2, -3, 2), box.Min)
	assert.Equal(t, core.NewVec3(2, 3, 2), box.Max)

	ps := r.SamplePosition(0, core.NewVec2(1, 1), true)
	assert.InDelta(t, 2.0, ps.P.X, 1e-12)
	assert.InDelta(t, 3.0, ps.P.Y, 1e-12)
	assert.InDelta(t, 1.0/24, ps.PDF, 1e-15)
	assert.InDelta(t, ps.PDF, r.PDFPosition(ps, true), 1e-15)
}

func TestDisk(t *testing.T) {
	props := plugin.NewProperties("disk")
	d, err := NewDisk(lanes.ScalarRGB, props)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi, d.SurfaceArea(), 1e-12)

	_, ok := d.Hit(core.NewRay(core.NewVec3(0.9, 0.9, 1), core.NewVec3(0, 0, -1)), 0, math.Inf(1))
	assert.False(t, ok, "corner of the bounding square is outside the disk")

	si, ok := d.Hit(core.NewRay(core.NewVec3(0.5, 0, 1), core.NewVec3(0, 0, -1)), 0, math.Inf(1))
	require.True(t, ok)
	assert.InDelta(t, 0.5, si.UV.X, 1e-12)
	assert.InDelta(t, 1.0, si.Wi.Z, 1e-12)
}

func TestRayIntersect_Masked(t *testing.T) {
	s := newTestSphere(t, core.NewVec3(0, 0, -5), 1)
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))

	assert.True(t, RayIntersect(s, ray, true).IsValid())
	si := RayIntersect(s, ray, false)
	assert.False(t, si.IsValid())
	assert.True(t, math.IsInf(si.T, 1))
}

func TestBVH_AgreesWithBruteForce(t *testing.T) {
	random := rand.New(rand.NewSource(5))
	var shapes []Shape
	for i := 0; i < 40; i++ {
		center := core.NewVec3(random.Float64()*20-10, random.Float64()*20-10, random.Float64()*20-10)
		shapes = append(shapes, newTestSphere(t, center, 0.2+random.Float64()))
	}
	bvh := NewBVH(shapes)
	stats := bvh.Stats()
	assert.Equal(t, 40, stats.TotalShapes)
	assert.Greater(t, stats.LeafNodes, 1)

	for i := 0; i < 200; i++ {
		origin := core.NewVec3(random.Float64()*30-15, random.Float64()*30-15, random.Float64()*30-15)
		dir := core.SquareToUniformSphere(core.NewVec2(random.Float64(), random.Float64()))
		ray := core.NewRay(origin, dir)

		best := math.Inf(1)
		var bestShape Shape
		for _, s := range shapes {
			if si, ok := s.Hit(ray, 0, best); ok {
				best, bestShape = si.T, s
			}
		}

		si, shape := bvh.Intersect(ray, true)
		if bestShape == nil {
			assert.False(t, si.IsValid())
			assert.Nil(t, shape)
			continue
		}
		require.True(t, si.IsValid())
		assert.InDelta(t, best, si.T, 1e-9)
		assert.Same(t, bestShape, shape)
	}
}

func TestBVH_Empty(t *testing.T) {
	bvh := NewBVH(nil)
	assert.False(t, bvh.BoundingBox().IsValid())
	si, shape := bvh.Intersect(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1)), true)
	assert.False(t, si.IsValid())
	assert.Nil(t, shape)
}
