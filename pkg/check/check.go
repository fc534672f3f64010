// Package check verifies that BSDF implementations honor the sampling
// contract: Sample, Eval, PDF and EvalPDF must describe the same
// distribution.
package check

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/df07/go-plugin-renderer/pkg/bsdf"
	"github.com/df07/go-plugin-renderer/pkg/core"
	"gonum.org/v1/gonum/stat"
)

// maxFailures bounds the number of failure messages kept in a report
const maxFailures = 10

// Options configures a consistency check
type Options struct {
	Samples   int           // Number of samples drawn (default 10000)
	Seed      int64         // Random seed
	Tolerance float64       // Relative tolerance for value comparisons (default 1e-4)
	Context   *bsdf.Context // Query context (default bsdf.NewContext())

	bsdfCtx bsdf.Context
}

func (o Options) withDefaults() Options {
	if o.Samples <= 0 {
		o.Samples = 10000
	}
	if o.Tolerance <= 0 {
		o.Tolerance = 1e-4
	}
	if o.Context != nil {
		o.bsdfCtx = *o.Context
	} else {
		o.bsdfCtx = bsdf.NewContext()
	}
	return o
}

// Report summarizes a check. RelErrMean and RelErrStdDev describe the
// relative error of every compared value.
type Report struct {
	Name         string
	Checked      int
	Skipped      int // Invalid samples or zero-density directions
	Failed       int
	Failures     []string // First failures, for diagnostics
	RelErrMean   float64
	RelErrStdDev float64
}

// Passed reports whether no comparison failed
func (r Report) Passed() bool {
	return r.Failed == 0
}

func (r Report) String() string {
	status := "ok"
	if !r.Passed() {
		status = "FAILED"
	}
	return fmt.Sprintf("%s: %s (%d checked, %d skipped, %d failed, rel. error %.3g ± %.3g)",
		r.Name, status, r.Checked, r.Skipped, r.Failed, r.RelErrMean, r.RelErrStdDev)
}

// recorder accumulates comparisons for one report
type recorder struct {
	report    Report
	tolerance float64
	errs      []float64
}

func (r *recorder) fail(format string, args ...any) {
	r.report.Failed++
	if len(r.report.Failures) < maxFailures {
		r.report.Failures = append(r.report.Failures, fmt.Sprintf(format, args...))
	}
}

// compare records the relative error between got and want
func (r *recorder) compare(what string, got, want float64) bool {
	e := relErr(got, want)
	r.errs = append(r.errs, e)
	if e > r.tolerance || math.IsNaN(e) {
		r.fail("%s: got %g, want %g", what, got, want)
		return false
	}
	return true
}

func (r *recorder) compareVec(what string, got, want core.Vec3) bool {
	ok := r.compare(what+".r", got.X, want.X)
	ok = r.compare(what+".g", got.Y, want.Y) && ok
	return r.compare(what+".b", got.Z, want.Z) && ok
}

func (r *recorder) finish() Report {
	if len(r.errs) > 0 {
		r.report.RelErrMean, r.report.RelErrStdDev = stat.MeanStdDev(r.errs, nil)
		if len(r.errs) == 1 {
			r.report.RelErrStdDev = 0
		}
	}
	return r.report
}

func relErr(got, want float64) float64 {
	diff := math.Abs(got - want)
	if diff == 0 {
		return 0
	}
	return diff / math.Max(math.Max(math.Abs(got), math.Abs(want)), 1e-8)
}

// EvalPDFIdentity checks that EvalPDF matches separate Eval and PDF calls
// for outgoing directions drawn uniformly over the sphere
func EvalPDFIdentity(b bsdf.BSDF, si core.SurfaceInteraction, opts Options) Report {
	opts = opts.withDefaults()
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(opts.Seed)))
	r := &recorder{report: Report{Name: "eval_pdf identity"}, tolerance: opts.Tolerance}

	for i := 0; i < opts.Samples; i++ {
		wo := core.SquareToUniformSphere(sampler.Get2D())
		value, pdf := b.EvalPDF(opts.bsdfCtx, si, wo, true)
		r.compareVec("eval", value, b.Eval(opts.bsdfCtx, si, wo, true))
		r.compare("pdf", pdf, b.PDF(opts.bsdfCtx, si, wo, true))
		r.report.Checked++
	}
	return r.finish()
}

// SampleConsistency draws samples and checks every valid one: eta must be
// positive and 1 for reflection, and for non-delta lobes the weight must
// equal eval/pdf while the sample density must equal PDF(wo)
func SampleConsistency(b bsdf.BSDF, si core.SurfaceInteraction, opts Options) Report {
	opts = opts.withDefaults()
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(opts.Seed)))
	r := &recorder{report: Report{Name: "sample consistency"}, tolerance: opts.Tolerance}

	for i := 0; i < opts.Samples; i++ {
		bs, weight := b.Sample(opts.bsdfCtx, si, sampler.Get1D(), sampler.Get2D(), true)
		if bs.PDF == 0 {
			r.report.Skipped++
			if !weight.IsZero() {
				r.fail("sample %d: zero pdf with non-zero weight %v", i, weight)
			}
			continue
		}
		r.report.Checked++

		if !weight.IsFinite() || weight.X < 0 || weight.Y < 0 || weight.Z < 0 {
			r.fail("sample %d: invalid weight %v", i, weight)
			continue
		}
		if !(bs.Eta > 0) {
			r.fail("sample %d: eta %g is not positive", i, bs.Eta)
		}
		if bs.SampledType.Has(bsdf.Reflection) && bs.Eta != 1 {
			r.fail("sample %d: reflection with eta %g", i, bs.Eta)
		}
		if bs.SampledType.Has(bsdf.Delta) {
			continue
		}

		value, pdf := b.EvalPDF(opts.bsdfCtx, si, bs.Wo, true)
		if pdf == 0 {
			r.fail("sample %d: sampled direction %v has zero density", i, bs.Wo)
			continue
		}
		r.compare(fmt.Sprintf("sample %d pdf", i), bs.PDF, pdf)
		r.compareVec(fmt.Sprintf("sample %d weight", i), weight, value.Multiply(1/pdf))
	}
	return r.finish()
}
