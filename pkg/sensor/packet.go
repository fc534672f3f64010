package sensor

import (
	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/lanes"
)

// RayQuery is the per-lane input of SampleRays
type RayQuery struct {
	Time             float64
	WavelengthSample float64
	FilmSample       core.Vec2
	ApertureSample   core.Vec2
}

type weightedRay[R any] struct {
	ray    R
	weight core.Vec3
}

// SampleRays samples one ray per lane. Inactive and invalid lanes carry a
// zero weight and a cleared mask bit.
func SampleRays(s Sensor, in []RayQuery, active lanes.Mask) ([]core.Ray, []core.Vec3, lanes.Mask) {
	out, mask := lanes.Map(in, active, func(q RayQuery, active bool) (weightedRay[core.Ray], bool) {
		ray, weight, ok := s.SampleRay(q.Time, q.WavelengthSample, q.FilmSample, q.ApertureSample, active)
		return weightedRay[core.Ray]{ray, weight}, ok
	})
	return split(out, mask)
}

// SampleRayDifferentials is SampleRays for ray differentials
func SampleRayDifferentials(s Sensor, in []RayQuery, active lanes.Mask) ([]core.RayDifferential, []core.Vec3, lanes.Mask) {
	out, mask := lanes.Map(in, active, func(q RayQuery, active bool) (weightedRay[core.RayDifferential], bool) {
		ray, weight, ok := s.SampleRayDifferential(q.Time, q.WavelengthSample, q.FilmSample, q.ApertureSample, active)
		return weightedRay[core.RayDifferential]{ray, weight}, ok
	})
	return split(out, mask)
}

func split[R any](out []weightedRay[R], mask lanes.Mask) ([]R, []core.Vec3, lanes.Mask) {
	rays := make([]R, len(out))
	weights := make([]core.Vec3, len(out))
	for i, w := range out {
		rays[i], weights[i] = w.ray, w.weight
	}
	return rays, weights, mask
}
