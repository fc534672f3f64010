package lanes

import (
	"fmt"

	"github.com/df07/go-plugin-renderer/pkg/core"
)

// Float is one float64 per lane
type Float []float64

// Point2 is one 2D sample per lane
type Point2 []core.Vec2

// Kernel evaluates one lane. It receives the lane's activity bit and
// returns its result together with the updated bit.
type Kernel[In, Out any] func(in In, active bool) (Out, bool)

// Map runs kernel on every lane of in. The kernel is invoked for inactive
// lanes as well, with active=false, which keeps every lane on the same code
// path; their results are then replaced by the zero value.
func Map[In, Out any](in []In, active Mask, kernel Kernel[In, Out]) ([]Out, Mask) {
	if len(in) != len(active) {
		panic(fmt.Sprintf("lanes: input width %d does not match mask width %d", len(in), len(active)))
	}
	out := make([]Out, len(in))
	mask := make(Mask, len(in))
	for i := range in {
		out[i], mask[i] = kernel(in[i], active[i])
		mask[i] = mask[i] && active[i]
	}
	ZeroInactive(out, mask)
	return out, mask
}

// Chunks splits n lanes into batches of at most width lanes, invoking fn
// with the half-open lane range of each batch
func Chunks(n, width int, fn func(start, end int)) {
	if width <= 0 {
		width = 1
	}
	for start := 0; start < n; start += width {
		fn(start, min(start+width, n))
	}
}
