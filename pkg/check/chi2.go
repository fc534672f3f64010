package check

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/df07/go-plugin-renderer/pkg/bsdf"
	"github.com/df07/go-plugin-renderer/pkg/core"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrNoContinuousSamples is returned when a BSDF only produced delta or
// invalid samples, which a histogram test cannot assess
var ErrNoContinuousSamples = errors.New("no samples from non-delta lobes")

// ChiSquareOptions configures the goodness-of-fit test
type ChiSquareOptions struct {
	Options
	ThetaBins    int     // Bins over cos(theta) in [-1, 1] (default 10)
	PhiBins      int     // Bins over phi in [0, 2pi) (default 20)
	Resolution   int     // Integration points per bin and axis (default 4)
	MinExpected  float64 // Bins expecting fewer samples are pooled (default 5)
	Significance float64 // Rejection level (default 0.01)
}

func (o ChiSquareOptions) withDefaults() ChiSquareOptions {
	o.Options = o.Options.withDefaults()
	if o.ThetaBins <= 0 {
		o.ThetaBins = 10
	}
	if o.PhiBins <= 0 {
		o.PhiBins = 20
	}
	if o.Resolution <= 0 {
		o.Resolution = 4
	}
	if o.MinExpected <= 0 {
		o.MinExpected = 5
	}
	if o.Significance <= 0 {
		o.Significance = 0.01
	}
	return o
}

// ChiSquareResult is the outcome of ChiSquare
type ChiSquareResult struct {
	Statistic float64
	DoF       int
	PValue    float64
	Observed  int // Non-delta samples histogrammed
	Passed    bool
}

func (r ChiSquareResult) String() string {
	status := "ok"
	if !r.Passed {
		status = "FAILED"
	}
	return fmt.Sprintf("chi2: %s (statistic %.4g, %d dof, p-value %.4g, %d samples)",
		status, r.Statistic, r.DoF, r.PValue, r.Observed)
}

// ChiSquare compares the histogram of sampled directions against the
// histogram predicted by integrating PDF over the same bins
func ChiSquare(b bsdf.BSDF, si core.SurfaceInteraction, opts ChiSquareOptions) (ChiSquareResult, error) {
	opts = opts.withDefaults()
	bins := opts.ThetaBins * opts.PhiBins
	observed := make([]float64, bins)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(opts.Seed)))

	var result ChiSquareResult
	for i := 0; i < opts.Samples; i++ {
		bs, _ := b.Sample(opts.bsdfCtx, si, sampler.Get1D(), sampler.Get2D(), true)
		if bs.PDF == 0 || bs.SampledType.Has(bsdf.Delta) {
			continue
		}
		observed[binOf(bs.Wo, opts.ThetaBins, opts.PhiBins)]++
		result.Observed++
	}
	if result.Observed == 0 {
		return result, ErrNoContinuousSamples
	}

	expected := expectedCounts(b, si, opts)
	result.Statistic, result.DoF = pooledStatistic(observed, expected, opts.MinExpected)
	if result.DoF < 1 {
		return result, fmt.Errorf("too few populated bins for a chi-square test (%d dof)", result.DoF)
	}
	result.PValue = 1 - distuv.ChiSquared{K: float64(result.DoF)}.CDF(result.Statistic)
	result.Passed = result.PValue > opts.Significance
	return result, nil
}

func binOf(wo core.Vec3, thetaBins, phiBins int) int {
	cosTheta := math.Max(-1, math.Min(1, wo.Z))
	phi := math.Atan2(wo.Y, wo.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	t := min(int((cosTheta+1)/2*float64(thetaBins)), thetaBins-1)
	p := min(int(phi/(2*math.Pi)*float64(phiBins)), phiBins-1)
	return t*phiBins + p
}

// expectedCounts integrates PDF over each bin with the midpoint rule. Bins
// are uniform in cos(theta) and phi, so the solid angle measure is constant.
func expectedCounts(b bsdf.BSDF, si core.SurfaceInteraction, opts ChiSquareOptions) []float64 {
	expected := make([]float64, opts.ThetaBins*opts.PhiBins)
	dCos := 2 / float64(opts.ThetaBins*opts.Resolution)
	dPhi := 2 * math.Pi / float64(opts.PhiBins*opts.Resolution)
	for t := 0; t < opts.ThetaBins*opts.Resolution; t++ {
		cosTheta := -1 + (float64(t)+0.5)*dCos
		sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
		for p := 0; p < opts.PhiBins*opts.Resolution; p++ {
			sinPhi, cosPhi := math.Sincos((float64(p) + 0.5) * dPhi)
			wo := core.NewVec3(sinTheta*cosPhi, sinTheta*sinPhi, cosTheta)
			bin := (t/opts.Resolution)*opts.PhiBins + p/opts.Resolution
			expected[bin] += b.PDF(opts.bsdfCtx, si, wo, true) * dCos * dPhi
		}
	}
	for i := range expected {
		expected[i] *= float64(opts.Samples)
	}
	return expected
}

// pooledStatistic sums (o-e)²/e over the bins, merging the sparsest bins
// until every pooled cell expects at least minExpected samples
func pooledStatistic(observed, expected []float64, minExpected float64) (float64, int) {
	order := make([]int, len(expected))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return expected[order[a]] < expected[order[b]] })

	var statistic, poolObs, poolExp float64
	cells := 0
	for _, i := range order {
		if expected[i] == 0 {
			if observed[i] > 0 {
				// Samples where the density vanishes can never be explained
				return math.Inf(1), len(expected) - 1
			}
			continue
		}
		if expected[i] < minExpected {
			poolObs += observed[i]
			poolExp += expected[i]
			if poolExp >= minExpected {
				statistic += sq(poolObs-poolExp) / poolExp
				cells++
				poolObs, poolExp = 0, 0
			}
			continue
		}
		statistic += sq(observed[i]-expected[i]) / expected[i]
		cells++
	}
	if poolExp > 0 {
		statistic += sq(poolObs-poolExp) / poolExp
		cells++
	}
	return statistic, cells - 1
}

func sq(x float64) float64 { return x * x }
