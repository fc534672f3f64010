package renderer

import (
	"image"
	"math/rand"

	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/pkg/sensor"
)

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID      int                 // Unique tile identifier
	Bounds  image.Rectangle     // Pixel bounds (x0,y0,x1,y1)
	Sampler *core.RandomSampler // Tile-specific sampler for deterministic results
}

// NewTile creates a new tile whose sampler is seeded from seed and id
func NewTile(id int, bounds image.Rectangle, seed int64) *Tile {
	random := rand.New(rand.NewSource(seed + int64(id) + 42)) // +42 to avoid seed 0
	return &Tile{ID: id, Bounds: bounds, Sampler: core.NewRandomSampler(random)}
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int, seed int64) []*Tile {
	var tiles []*Tile
	tileID := 0

	// Calculate number of tiles in each dimension
	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1), seed))
			tileID++
		}
	}
	return tiles
}

// TileRenderer renders individual tiles by sampling sensor rays in packets
// of the variant's lane width
type TileRenderer struct {
	sensor    sensor.Sensor
	estimator *Estimator
	width     int // Packet width
}

// NewTileRenderer creates a tile renderer for s
func NewTileRenderer(s sensor.Sensor, estimator *Estimator, v lanes.Variant) *TileRenderer {
	return &TileRenderer{sensor: s, estimator: estimator, width: v.Width}
}

// RenderTileBounds takes spp samples for every pixel within bounds and
// accumulates them into pixelStats. Tiles never overlap, so concurrent calls
// on distinct tiles may share pixelStats.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, pixelStats [][]PixelStats, sampler core.Sampler, spp int) RenderStats {
	film := tr.sensor.Film()
	stats := RenderStats{TotalPixels: bounds.Dx() * bounds.Dy(), Tiles: 1}
	queries := make([]sensor.RayQuery, 0, tr.width)

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			ps := &pixelStats[j][i]
			lanes.Chunks(spp, tr.width, func(start, end int) {
				queries = queries[:0]
				for s := start; s < end; s++ {
					offset := sampler.Get2D()
					queries = append(queries, sensor.RayQuery{
						WavelengthSample: sampler.Get1D(),
						FilmSample: core.NewVec2(
							(float64(i)+offset.X)/float64(film.Width),
							(float64(j)+offset.Y)/float64(film.Height),
						),
						ApertureSample: sampler.Get2D(),
					})
				}

				rays, weights, mask := sensor.SampleRays(tr.sensor, queries, lanes.Full(len(queries)))
				for k := range rays {
					radiance := tr.estimator.Li(rays[k], sampler, mask[k])
					ps.AddSample(weights[k].MultiplyVec(radiance))
					if !mask[k] {
						stats.InvalidSamples++
					}
				}
				stats.TotalSamples += len(queries)
			})
		}
	}
	stats.finalize()
	return stats
}
