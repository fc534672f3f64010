package sensor

import (
	"math"
	"math/rand"
	"os"
	"testing"

	"github.com/df07/go-plugin-renderer/pkg/bsdf"
	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/geometry"
	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/pkg/plugin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logrus.SetLevel(logrus.ErrorLevel)
	os.Exit(m.Run())
}

type boxScene core.AABB

func (b boxScene) BoundingBox() core.AABB { return core.AABB(b) }

var unitBox = boxScene(core.NewAABB(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1)))

func newTestFilm(t *testing.T, width, height int) *Film {
	props := plugin.NewProperties("hdrfilm")
	props.SetInt("width", int64(width))
	props.SetInt("height", int64(height))
	props.SetString("rfilter", "box")
	film, err := NewFilm(lanes.ScalarRGB, props)
	require.NoError(t, err)
	return film
}

func newTestRectangle(t *testing.T, toWorld core.Transform) *geometry.Rectangle {
	props := plugin.NewProperties("rectangle")
	props.SetTransform("to_world", toWorld)
	r, err := geometry.NewRectangle(lanes.ScalarRGB, props)
	require.NoError(t, err)
	return r
}

func distantProps(t *testing.T, width, height int) *plugin.Properties {
	props := plugin.NewProperties(distantName)
	props.SetObject("film", newTestFilm(t, width, height))
	return props
}

// expandDistant builds, expands and binds a distant sensor to scene
func expandDistant(t *testing.T, props *plugin.Properties, scene plugin.Scene) Sensor {
	front, err := NewDistantSensor(lanes.ScalarRGB, props)
	require.NoError(t, err)
	objects, err := front.Expand()
	require.NoError(t, err)
	require.Len(t, objects, 1)

	s, ok := objects[0].(Sensor)
	require.True(t, ok)
	require.NoError(t, s.(plugin.SceneAware).SetScene(scene))
	return s
}

func assertVecInDelta(t *testing.T, want, got core.Vec3, delta float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, delta, "x of %v", got)
	assert.InDelta(t, want.Y, got.Y, delta, "y of %v", got)
	assert.InDelta(t, want.Z, got.Z, delta, "z of %v", got)
}

func TestDistant_SingleDirectionIgnoresFilmSample(t *testing.T) {
	direction := core.NewVec3(1, 2, 3)
	props := distantProps(t, 1, 1)
	props.SetVector3("direction", direction)
	s := expandDistant(t, props, unitBox)

	random := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		film := core.NewVec2(random.Float64(), random.Float64())
		aperture := core.NewVec2(random.Float64(), random.Float64())
		ray, _, ok := s.SampleRay(0, 0.5, film, aperture, true)
		require.True(t, ok)
		assertVecInDelta(t, direction.Normalize().Negate(), ray.Direction, 1e-12)
	}
}

func TestDistant_FlipDirections(t *testing.T) {
	props := distantProps(t, 1, 1)
	props.SetVector3("direction", core.NewVec3(0, 1, 0))
	props.SetBool("flip_directions", true)
	s := expandDistant(t, props, unitBox)

	ray, _, ok := s.SampleRay(0, 0.5, core.NewVec2(0.5, 0.5), core.NewVec2(0.5, 0.5), true)
	require.True(t, ok)
	assertVecInDelta(t, core.NewVec3(0, 1, 0), ray.Direction, 1e-12)
}

func TestDistant_SampleAllStaysInHemisphere(t *testing.T) {
	s := expandDistant(t, distantProps(t, 8, 8), unitBox)

	random := rand.New(rand.NewSource(2))
	for i := 0; i < 200; i++ {
		film := core.NewVec2(random.Float64(), random.Float64())
		ray, _, _ := s.SampleRay(0, 0.5, film, core.NewVec2(0.5, 0.5), true)
		assert.LessOrEqual(t, ray.Direction.Z, 0.0)
		assert.InDelta(t, 1.0, ray.Direction.Length(), 1e-9)
	}
}

func TestDistant_PointTargetReconstruction(t *testing.T) {
	props := distantProps(t, 16, 16)
	props.SetPoint3("ray_target", core.Vec3{})
	s := expandDistant(t, props, unitBox)
	radius := unitBox.BoundingBox().BoundingSphere().Inflate(core.RayEpsilon).Radius

	random := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		film := core.NewVec2(random.Float64(), random.Float64())
		aperture := core.NewVec2(random.Float64(), random.Float64())
		ray, weight, ok := s.SampleRay(0, 0.5, film, aperture, true)
		require.True(t, ok)
		assert.Equal(t, core.Splat(1), weight)
		assertVecInDelta(t, core.Vec3{}, ray.At(2*radius), 1e-9)
	}
}

func TestDistant_ShapeTargetWeightIsWavelengthWeight(t *testing.T) {
	props := distantProps(t, 1, 1)
	props.SetObject("ray_target", newTestRectangle(t, core.Scale(core.NewVec3(2, 3, 1))))
	s := expandDistant(t, props, unitBox)

	random := rand.New(rand.NewSource(4))
	for i := 0; i < 100; i++ {
		aperture := core.NewVec2(random.Float64(), random.Float64())
		ray, weight, ok := s.SampleRay(0, 0.5, core.NewVec2(0.5, 0.5), aperture, true)
		require.True(t, ok)
		assertVecInDelta(t, core.Splat(1), weight, 1e-9)

		// The target lies on the rectangle, two radii down the ray
		radius := s.(interface{ BoundingSphere() core.BoundingSphere }).BoundingSphere().Radius
		target := ray.At(2 * radius)
		assert.InDelta(t, 0.0, target.Z, 1e-9)
		assert.LessOrEqual(t, math.Abs(target.X), 2.0+1e-9)
		assert.LessOrEqual(t, math.Abs(target.Y), 3.0+1e-9)
	}
}

func TestDistant_NoTargetSamplesSphereCrossSection(t *testing.T) {
	s := expandDistant(t, distantProps(t, 1, 1), unitBox)
	sphere := unitBox.BoundingBox().BoundingSphere().Inflate(core.RayEpsilon)

	random := rand.New(rand.NewSource(5))
	for i := 0; i < 100; i++ {
		aperture := core.NewVec2(random.Float64(), random.Float64())
		ray, weight, ok := s.SampleRay(0, 0.5, core.NewVec2(0.5, 0.5), aperture, true)
		require.True(t, ok)
		assertVecInDelta(t, core.Splat(1), weight, 1e-12)

		// One radius along the ray reaches the cross-section disk
		target := ray.At(sphere.Radius)
		assert.InDelta(t, 0.0, target.Z, 1e-9)
		assert.LessOrEqual(t, target.Subtract(sphere.Center).Length(), sphere.Radius+1e-9)
	}
}

func TestDistant_NoTargetWeightFollowsSensorAxis(t *testing.T) {
	direction := core.NewVec3(1, 2, 3)
	props := distantProps(t, 8, 8)
	props.SetVector3("direction", direction)
	s := expandDistant(t, props, unitBox)
	axis := direction.Normalize()

	random := rand.New(rand.NewSource(6))
	active := 0
	for i := 0; i < 2000; i++ {
		film := core.NewVec2(random.Float64(), random.Float64())
		aperture := core.NewVec2(random.Float64(), random.Float64())
		ray, weight, ok := s.SampleRay(0, 0.5, film, aperture, true)
		if !ok {
			assert.True(t, weight.IsZero())
			continue
		}
		active++
		require.True(t, weight.IsFinite(), "weight %v", weight)
		assert.GreaterOrEqual(t, weight.X, 1-1e-12)
		// The cosine is taken against the sensor axis, not world +Z
		cosAxis := ray.Direction.Dot(axis)
		assert.Less(t, cosAxis, 0.0)
		assert.InDelta(t, 1/math.Abs(cosAxis), weight.X, 1e-6*weight.X)
		assertVecInDelta(t, core.Splat(weight.X), weight, 1e-12)
	}
	assert.Greater(t, active, 1900)
}

func TestDistant_SampleWidthGrazingDirectionDeactivatesLane(t *testing.T) {
	s := expandDistant(t, distantProps(t, 4, 1), unitBox)

	ray, weight, ok := s.SampleRay(0, 0.5, core.NewVec2(0, 0.5), core.NewVec2(0.5, 0.5), true)
	assert.False(t, ok)
	assert.True(t, weight.IsZero())
	assert.InDelta(t, 0.0, ray.Direction.Z, 1e-12)

	ray, weight, ok = s.SampleRay(0, 0.5, core.NewVec2(0.5, 0.5), core.NewVec2(0.5, 0.5), true)
	require.True(t, ok)
	assertVecInDelta(t, core.NewVec3(0, 0, -1), ray.Direction, 1e-12)
	assertVecInDelta(t, core.Splat(1), weight, 1e-12)
	// Directions stay in the local XZ plane
	assert.InDelta(t, 0.0, ray.Direction.Y, 1e-12)
}

func TestDistant_ShapeOrigin(t *testing.T) {
	// Origin plane at z=3, target fixed at the world origin
	props := distantProps(t, 1, 1)
	props.SetPoint3("ray_target", core.Vec3{})
	props.SetObject("ray_origin", newTestRectangle(t, core.Translate(core.NewVec3(0, 0, 3))))
	s := expandDistant(t, props, unitBox)

	ray, weight, ok := s.SampleRay(0, 0.5, core.NewVec2(0.5, 0.5), core.NewVec2(0.5, 0.5), true)
	require.True(t, ok)
	assertVecInDelta(t, core.NewVec3(0, 0, 3), ray.Origin, 1e-9)
	assert.Equal(t, core.Splat(1), weight)

	t.Run("miss deactivates the lane", func(t *testing.T) {
		props := distantProps(t, 1, 1)
		props.SetPoint3("ray_target", core.NewVec3(10, 0, 0))
		props.SetObject("ray_origin", newTestRectangle(t, core.Translate(core.NewVec3(0, 0, 3))))
		s := expandDistant(t, props, unitBox)

		_, weight, ok := s.SampleRay(0, 0.5, core.NewVec2(0.5, 0.5), core.NewVec2(0.5, 0.5), true)
		assert.False(t, ok)
		assert.True(t, weight.IsZero())
	})
}

func TestDistant_InactiveLaneHasZeroWeight(t *testing.T) {
	s := expandDistant(t, distantProps(t, 1, 1), unitBox)
	_, weight, ok := s.SampleRay(0, 0.5, core.NewVec2(0.5, 0.5), core.NewVec2(0.5, 0.5), false)
	assert.False(t, ok)
	assert.True(t, weight.IsZero())

	rd, _, ok := s.SampleRayDifferential(0, 0.5, core.NewVec2(0.5, 0.5), core.NewVec2(0.5, 0.5), true)
	assert.True(t, ok)
	assert.False(t, rd.HasDifferentials)
}

func TestDistant_ExpansionClasses(t *testing.T) {
	tests := []struct {
		name   string
		target func(t *testing.T, props *plugin.Properties)
		origin bool
		class  string
	}{
		{"None/BoundingSphere", nil, false, "DistantSensor_None_BoundingSphere"},
		{"None/Shape", nil, true, "DistantSensor_None_Shape"},
		{"Point/BoundingSphere", setPointTarget, false, "DistantSensor_Point_BoundingSphere"},
		{"Point/Shape", setPointTarget, true, "DistantSensor_Point_Shape"},
		{"Shape/BoundingSphere", setShapeTarget, false, "DistantSensor_Shape_BoundingSphere"},
		{"Shape/Shape", setShapeTarget, true, "DistantSensor_Shape_Shape"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			props := distantProps(t, 1, 1)
			if tt.target != nil {
				tt.target(t, props)
			}
			if tt.origin {
				props.SetObject("ray_origin", newTestRectangle(t, core.Translate(core.NewVec3(0, 0, 3))))
			}
			s := expandDistant(t, props, unitBox)
			assert.Equal(t, tt.class, s.Class().Name())
			assert.True(t, s.Class().DerivesFrom(ClassName))
			assert.False(t, s.BoundingBox().IsValid())
			assert.NotEmpty(t, s.String())
		})
	}
}

func setPointTarget(t *testing.T, props *plugin.Properties) {
	props.SetPoint3("ray_target", core.NewVec3(0.5, 0, 0))
}

func setShapeTarget(t *testing.T, props *plugin.Properties) {
	props.SetObject("ray_target", newTestRectangle(t, core.Identity()))
}

func TestDistant_Front(t *testing.T) {
	props := distantProps(t, 1, 1)
	props.SetVector3("direction", core.NewVec3(0, 0, 1))
	props.SetBool("flip_directions", true)
	front, err := NewDistantSensor(lanes.ScalarRGB, props)
	require.NoError(t, err)

	assert.Equal(t, "DistantSensor", front.Class().Name())
	assert.False(t, front.BoundingBox().IsValid())
	for _, key := range []string{"direction", "flip_directions", "film"} {
		assert.True(t, props.WasQueried(key), key)
	}
	assert.Panics(t, func() {
		front.SampleRay(0, 0.5, core.NewVec2(0.5, 0.5), core.NewVec2(0.5, 0.5), true)
	})

	// Each expansion is independent of the previous one
	first, err := front.Expand()
	require.NoError(t, err)
	second, err := front.Expand()
	require.NoError(t, err)
	assert.NotSame(t, first[0], second[0])
}

func TestDistant_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, props *plugin.Properties)
		want  error
	}{
		{
			name: "direction and to_world",
			setup: func(t *testing.T, props *plugin.Properties) {
				props.SetVector3("direction", core.NewVec3(0, 0, 1))
				props.SetTransform("to_world", core.Identity())
			},
			want: plugin.ErrConflict,
		},
		{
			name: "zero direction",
			setup: func(t *testing.T, props *plugin.Properties) {
				props.SetVector3("direction", core.Vec3{})
			},
			want: plugin.ErrInvalidValue,
		},
		{
			name: "orientation parallel to direction",
			setup: func(t *testing.T, props *plugin.Properties) {
				props.SetVector3("direction", core.NewVec3(0, 0, 1))
				props.SetVector3("orientation", core.NewVec3(0, 0, -2))
			},
			want: plugin.ErrInvalidValue,
		},
		{
			name: "numeric target",
			setup: func(t *testing.T, props *plugin.Properties) {
				props.SetFloat("ray_target", 1)
			},
			want: plugin.ErrWrongType,
		},
		{
			name: "target is not a shape",
			setup: func(t *testing.T, props *plugin.Properties) {
				d, err := bsdf.NewDiffuse(lanes.ScalarRGB, plugin.NewProperties("diffuse"))
				require.NoError(t, err)
				props.SetObject("ray_target", d)
			},
			want: plugin.ErrWrongType,
		},
		{
			name: "origin is not a shape",
			setup: func(t *testing.T, props *plugin.Properties) {
				props.SetPoint3("ray_origin", core.Vec3{})
			},
			want: plugin.ErrWrongType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			props := distantProps(t, 1, 1)
			tt.setup(t, props)
			front, err := NewDistantSensor(lanes.ScalarRGB, props)
			require.NoError(t, err)
			_, err = front.Expand()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDistant_UnsupportedCombination(t *testing.T) {
	front, err := NewDistantSensor(lanes.ScalarRGB, distantProps(t, 1, 1))
	require.NoError(t, err)

	front.target = targetKind(7)
	_, err = front.Expand()
	assert.ErrorIs(t, err, plugin.ErrUnsupportedCombination)

	front.target, front.origin = targetNone, originKind(9)
	_, err = front.Expand()
	assert.ErrorIs(t, err, plugin.ErrUnsupportedCombination)
}

func TestDistant_SetScene(t *testing.T) {
	props := distantProps(t, 1, 1)
	front, err := NewDistantSensor(lanes.ScalarRGB, props)
	require.NoError(t, err)
	objects, err := front.Expand()
	require.NoError(t, err)
	s := objects[0].(*distantImpl[sphereTarget, sphereOrigin])

	require.NoError(t, s.SetScene(unitBox))
	assert.InDelta(t, math.Sqrt(3)*(1+core.RayEpsilon), s.BoundingSphere().Radius, 1e-12)
	assert.ErrorIs(t, s.SetScene(unitBox), errSceneAlreadySet)

	t.Run("degenerate scene", func(t *testing.T) {
		objects, err := front.Expand()
		require.NoError(t, err)
		s := objects[0].(*distantImpl[sphereTarget, sphereOrigin])
		point := boxScene(core.NewAABB(core.NewVec3(1, 2, 3), core.NewVec3(1, 2, 3)))
		require.NoError(t, s.SetScene(point))
		assert.Equal(t, core.RayEpsilon, s.BoundingSphere().Radius)
		assert.Equal(t, core.NewVec3(1, 2, 3), s.BoundingSphere().Center)
	})
}

func TestSampleRays(t *testing.T) {
	s := expandDistant(t, distantProps(t, 4, 1), unitBox)
	in := []RayQuery{
		{FilmSample: core.NewVec2(0.5, 0), ApertureSample: core.NewVec2(0.5, 0.5)},
		{FilmSample: core.NewVec2(0, 0), ApertureSample: core.NewVec2(0.5, 0.5)},
		{FilmSample: core.NewVec2(0.25, 0), ApertureSample: core.NewVec2(0.5, 0.5)},
	}

	rays, weights, mask := SampleRays(s, in, lanes.Mask{true, true, false})
	assert.Equal(t, lanes.Mask{true, false, false}, mask)
	assertVecInDelta(t, core.NewVec3(0, 0, -1), rays[0].Direction, 1e-12)
	assert.True(t, weights[1].IsZero())
	assert.True(t, weights[2].IsZero())

	diffs, _, mask := SampleRayDifferentials(s, in, lanes.Full(3))
	assert.Equal(t, lanes.Mask{true, false, true}, mask)
	assert.Len(t, diffs, 3)
}

func TestFilm(t *testing.T) {
	film := newTestFilm(t, 4, 3)
	assert.Equal(t, 12, film.Pixels())
	assert.Equal(t, 0.5, film.FilterRadius())

	def := defaultFilm(lanes.ScalarRGB)
	assert.Equal(t, 768, def.Width)
	assert.Equal(t, 2.0, def.FilterRadius())

	props := plugin.NewProperties("hdrfilm")
	props.SetString("rfilter", "lanczos")
	_, err := NewFilm(lanes.ScalarRGB, props)
	assert.ErrorIs(t, err, plugin.ErrInvalidValue)

	props = plugin.NewProperties("hdrfilm")
	props.SetInt("width", 0)
	_, err = NewFilm(lanes.ScalarRGB, props)
	assert.ErrorIs(t, err, plugin.ErrInvalidValue)
}
