package renderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestPixelStats(t *testing.T) {
	var ps PixelStats
	assert.True(t, ps.GetColor().IsZero())
	ps.AddSample(core.Splat(1))
	ps.AddSample(core.Splat(3))
	assert.Equal(t, core.Splat(2), ps.GetColor())
	assert.InDelta(t, 2.0, ps.Variance(), 1e-12)
}

func TestCalculateAverageLuminance(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 255, 0, 255})
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})
	img.Set(1, 1, color.RGBA{0, 0, 0, 255})
	assert.InDelta(t, 0.25, CalculateAverageLuminance(img), 1e-4)

	white := image.NewRGBA(image.Rect(0, 0, 1, 1))
	white.Set(0, 0, color.RGBA{255, 255, 255, 255})
	assert.InDelta(t, 1.0, CalculateAverageLuminance(white), 1e-4)
}

func TestRenderStats_Merge(t *testing.T) {
	var total RenderStats
	total.merge(RenderStats{TotalPixels: 4, TotalSamples: 8, InvalidSamples: 1, Tiles: 1})
	total.merge(RenderStats{TotalPixels: 2, TotalSamples: 4, Tiles: 1})
	total.finalize()
	assert.Equal(t, 6, total.TotalPixels)
	assert.Equal(t, 1, total.InvalidSamples)
	assert.Equal(t, 2, total.Tiles)
	assert.InDelta(t, 2.0, total.AverageSamples, 1e-12)
}
