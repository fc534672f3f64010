package cmd

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/df07/go-plugin-renderer/pkg/bsdf"
	"github.com/df07/go-plugin-renderer/pkg/check"
	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	checkSamples int       // Samples per check
	checkSeed    int64     // Seed of the check generators
	checkAngles  []float64 // Incidence angles in degrees, measured from the normal
)

// incident returns the local incident direction at angle degrees from +Z
func incident(degrees float64) core.Vec3 {
	theta := degrees * math.Pi / 180
	return core.NewVec3(math.Sin(theta), 0, math.Cos(theta))
}

// CheckBSDF runs the sampling checks on b for every incidence angle and
// reports whether all of them passed
func CheckBSDF(w io.Writer, name string, b bsdf.BSDF, angles []float64, samples int, seed int64) bool {
	passed := true
	ctx := bsdf.NewContext()
	opts := check.Options{Samples: samples, Seed: seed, Context: &ctx}
	for _, angle := range angles {
		si := core.SurfaceInteraction{Valid: true, Wi: incident(angle), Sh: core.NewFrame(core.NewVec3(0, 0, 1))}
		fmt.Fprintf(w, "%s at %g°\n", name, angle)

		for _, report := range []check.Report{check.EvalPDFIdentity(b, si, opts), check.SampleConsistency(b, si, opts)} {
			fmt.Fprintf(w, "  %s\n", report)
			for _, failure := range report.Failures {
				fmt.Fprintf(w, "    %s\n", failure)
			}
			passed = passed && report.Passed()
		}

		result, err := check.ChiSquare(b, si, check.ChiSquareOptions{Options: opts})
		switch {
		case errors.Is(err, check.ErrNoContinuousSamples):
			fmt.Fprintf(w, "  chi2: skipped (%v)\n", err)
		case err != nil:
			fmt.Fprintf(w, "  chi2: %v\n", err)
			passed = false
		default:
			fmt.Fprintf(w, "  %s\n", result)
			passed = passed && result.Passed
		}
	}
	return passed
}

// checkCmd verifies the BSDF of every shape in a scene
var checkCmd = &cobra.Command{
	Use:   "check <scene.yaml>",
	Short: "Check that the BSDFs of a scene sample their own density",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadScene(args[0])
		if err != nil {
			return err
		}
		failed := 0
		for i, shape := range s.Shapes() {
			name := fmt.Sprintf("shape %d (%s) %s", i, shape.Class().Name(), shape.BSDF().Class().Name())
			logrus.Debugf("check: %s", name)
			if !CheckBSDF(cmd.OutOrStdout(), name, shape.BSDF(), checkAngles, checkSamples, checkSeed) {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d BSDF(s) failed", failed, len(s.Shapes()))
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().IntVar(&checkSamples, "samples", 100000, "Samples per check")
	checkCmd.Flags().Int64Var(&checkSeed, "seed", 7, "Seed for the check generators")
	checkCmd.Flags().Float64SliceVar(&checkAngles, "angles", []float64{10, 45, 80}, "Incidence angles in degrees")
	rootCmd.AddCommand(checkCmd)
}
