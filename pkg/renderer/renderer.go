// Package renderer estimates the image seen by a scene sensor. Tiles of
// the sensor film are rendered concurrently by a pool of workers.
package renderer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/scene"
	"github.com/df07/go-plugin-renderer/pkg/sensor"
	"github.com/sirupsen/logrus"
)

// Options configures a render
type Options struct {
	SamplesPerPixel int   // Default 16
	Workers         int   // Default runtime.NumCPU()
	TileSize        int   // Default 32
	Seed            int64 // Base seed of the tile samplers
	SensorIndex     int   // Which scene sensor to render
}

func (o Options) withDefaults() Options {
	if o.SamplesPerPixel <= 0 {
		o.SamplesPerPixel = 16
	}
	if o.TileSize <= 0 {
		o.TileSize = 32
	}
	return o
}

// Result is a rendered film in linear RGB, stored row by row
type Result struct {
	Width, Height int
	Pixels        []core.Vec3
	Stats         RenderStats
}

// At returns the pixel in column x of row y
func (r *Result) At(x, y int) core.Vec3 {
	return r.Pixels[y*r.Width+x]
}

// Render estimates every pixel of the selected sensor's film. It returns
// ctx's error if ctx is done before all tiles are rendered.
func Render(ctx context.Context, s *scene.Scene, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	if opts.SensorIndex < 0 || opts.SensorIndex >= len(s.Sensors()) {
		return nil, fmt.Errorf("scene has %d sensor(s), cannot render sensor %d", len(s.Sensors()), opts.SensorIndex)
	}
	sens := s.Sensors()[opts.SensorIndex]
	return renderSensor(ctx, s, sens, opts)
}

func renderSensor(ctx context.Context, s *scene.Scene, sens sensor.Sensor, opts Options) (*Result, error) {
	film := sens.Film()
	width, height := film.Width, film.Height

	pixelStats := make([][]PixelStats, height)
	for y := range pixelStats {
		pixelStats[y] = make([]PixelStats, width)
	}

	tiles := NewTileGrid(width, height, opts.TileSize, opts.Seed)
	tr := NewTileRenderer(sens, NewEstimator(s), s.Variant())
	pool := NewWorkerPool(tr, len(tiles), opts.Workers)

	start := time.Now()
	logrus.Infof("renderer: %dx%d film, %d tiles, %d spp, %d workers", width, height, len(tiles), opts.SamplesPerPixel, pool.GetNumWorkers())

	pool.Start(ctx)
	for i, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile, TaskID: i, PixelStats: pixelStats, Samples: opts.SamplesPerPixel})
	}
	pool.Stop()

	var stats RenderStats
	var firstErr error
	for {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		if result.Error != nil {
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}
		stats.merge(result.Stats)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	stats.finalize()
	logrus.Infof("renderer: done in %v (%d samples, %d invalid)", time.Since(start).Round(time.Millisecond), stats.TotalSamples, stats.InvalidSamples)

	res := &Result{Width: width, Height: height, Pixels: make([]core.Vec3, width*height), Stats: stats}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			res.Pixels[y*width+x] = pixelStats[y][x].GetColor()
		}
	}
	return res, nil
}

// ToImage converts the film to 8-bit RGBA with gamma 2.2
func (r *Result) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			img.SetRGBA(x, y, vec3ToColor(r.At(x, y)))
		}
	}
	return img
}

func vec3ToColor(colorVec core.Vec3) color.RGBA {
	colorVec = colorVec.Clamp(0.0, 1.0).GammaCorrect(2.2)
	return color.RGBA{
		R: uint8(255 * colorVec.X),
		G: uint8(255 * colorVec.Y),
		B: uint8(255 * colorVec.Z),
		A: 255,
	}
}
