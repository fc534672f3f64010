package bsdf

import (
	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/lanes"
)

// SampleQuery is the per-lane input of SamplePacket
type SampleQuery struct {
	SI      core.SurfaceInteraction
	Sample1 float64
	Sample2 core.Vec2
}

// DirectionQuery is the per-lane input of EvalPacket and PDFPacket
type DirectionQuery struct {
	SI core.SurfaceInteraction
	Wo core.Vec3
}

type sampled struct {
	bs     Sample
	weight core.Vec3
}

// SamplePacket samples every lane of in. Lanes that are inactive, or whose
// event is impossible, come back with a zero sample and a cleared mask bit.
func SamplePacket(b BSDF, ctx Context, in []SampleQuery, active lanes.Mask) ([]Sample, []core.Vec3, lanes.Mask) {
	out, mask := lanes.Map(in, active, func(q SampleQuery, active bool) (sampled, bool) {
		bs, weight := b.Sample(ctx, q.SI, q.Sample1, q.Sample2, active)
		return sampled{bs, weight}, active && bs.PDF > 0
	})
	samples := make([]Sample, len(out))
	weights := make([]core.Vec3, len(out))
	for i, s := range out {
		samples[i], weights[i] = s.bs, s.weight
	}
	return samples, weights, mask
}

// EvalPacket evaluates every lane of in
func EvalPacket(b BSDF, ctx Context, in []DirectionQuery, active lanes.Mask) []core.Vec3 {
	out, _ := lanes.Map(in, active, func(q DirectionQuery, active bool) (core.Vec3, bool) {
		return b.Eval(ctx, q.SI, q.Wo, active), active
	})
	return out
}

// PDFPacket evaluates the sampling density of every lane of in
func PDFPacket(b BSDF, ctx Context, in []DirectionQuery, active lanes.Mask) lanes.Float {
	out, _ := lanes.Map(in, active, func(q DirectionQuery, active bool) (float64, bool) {
		return b.PDF(ctx, q.SI, q.Wo, active), active
	})
	return out
}
