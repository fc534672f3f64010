package cmd

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/pkg/sensor"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

var (
	sampleCount  int   // Rays drawn by the sample command
	sampleSeed   int64 // Seed of the sample generator
	sampleSensor int   // Sensor index within the scene
)

// SampleSummary aggregates the rays drawn from a sensor
type SampleSummary struct {
	Sensor        string
	Drawn         int
	Valid         int
	WeightMean    float64 // Luminance of the weights of valid rays
	WeightStdDev  float64
	MeanDirection core.Vec3
	Origins       core.AABB
}

// SummarizeSensor draws count rays from s in packets of the variant width
func SummarizeSensor(s sensor.Sensor, v lanes.Variant, count int, seed int64) SampleSummary {
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(seed)))
	summary := SampleSummary{Sensor: s.Class().Name(), Drawn: count, Origins: core.EmptyAABB()}
	var weights []float64
	var dirSum core.Vec3

	queries := make([]sensor.RayQuery, 0, v.Width)
	lanes.Chunks(count, v.Width, func(start, end int) {
		queries = queries[:0]
		for i := start; i < end; i++ {
			queries = append(queries, sensor.RayQuery{
				WavelengthSample: sampler.Get1D(),
				FilmSample:       sampler.Get2D(),
				ApertureSample:   sampler.Get2D(),
			})
		}
		rays, w, mask := sensor.SampleRays(s, queries, lanes.Full(len(queries)))
		for i := range rays {
			if !mask[i] {
				continue
			}
			summary.Valid++
			weights = append(weights, w[i].Luminance())
			dirSum = dirSum.Add(rays[i].Direction.Normalize())
			summary.Origins = summary.Origins.ExpandToPoint(rays[i].Origin)
		}
	})

	if summary.Valid > 0 {
		summary.WeightMean, summary.WeightStdDev = stat.MeanStdDev(weights, nil)
		summary.MeanDirection = dirSum.Multiply(1 / float64(summary.Valid))
	}
	return summary
}

func (s SampleSummary) print(w io.Writer) {
	fmt.Fprintf(w, "sensor:         %s\n", s.Sensor)
	fmt.Fprintf(w, "valid rays:     %d / %d\n", s.Valid, s.Drawn)
	fmt.Fprintf(w, "weight:         %.6g ± %.3g\n", s.WeightMean, s.WeightStdDev)
	fmt.Fprintf(w, "mean direction: %v\n", s.MeanDirection)
	fmt.Fprintf(w, "origin bounds:  %v\n", s.Origins)
}

// sampleCmd draws sensor rays and prints their statistics
var sampleCmd = &cobra.Command{
	Use:   "sample <scene.yaml>",
	Short: "Draw rays from a scene sensor and summarize them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadScene(args[0])
		if err != nil {
			return err
		}
		if sampleSensor < 0 || sampleSensor >= len(s.Sensors()) {
			return fmt.Errorf("scene has %d sensor(s), cannot sample sensor %d", len(s.Sensors()), sampleSensor)
		}
		SummarizeSensor(s.Sensors()[sampleSensor], s.Variant(), sampleCount, sampleSeed).print(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	sampleCmd.Flags().IntVar(&sampleCount, "count", 10000, "Number of rays to draw")
	sampleCmd.Flags().Int64Var(&sampleSeed, "seed", 42, "Seed for the sample generator")
	sampleCmd.Flags().IntVar(&sampleSensor, "sensor", 0, "Index of the sensor to sample")
	rootCmd.AddCommand(sampleCmd)
}
