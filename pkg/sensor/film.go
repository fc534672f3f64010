package sensor

import (
	"fmt"
	"math"

	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/pkg/plugin"
)

// FilmClassName is the base class of film plugins
const FilmClassName = "Film"

// Reconstruction filter radii in pixels
var filterRadii = map[string]float64{
	"box":      0.5,
	"tent":     1.0,
	"gaussian": 2.0,
}

// Film describes the sensor's output raster
type Film struct {
	plugin.Base
	Width, Height int
	Filter        string
}

// NewFilm reads "width" (default 768), "height" (default 576) and
// "rfilter" (box, tent or gaussian; default gaussian)
func NewFilm(v lanes.Variant, props *plugin.Properties) (*Film, error) {
	width, err := props.IntOr("width", 768)
	if err != nil {
		return nil, err
	}
	height, err := props.IntOr("height", 576)
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 || width > math.MaxInt32 || height > math.MaxInt32 {
		return nil, plugin.Errorf("hdrfilm", "", plugin.ErrInvalidValue, "invalid film size %dx%d", width, height)
	}
	filter, err := props.TextOr("rfilter", "gaussian")
	if err != nil {
		return nil, err
	}
	if _, ok := filterRadii[filter]; !ok {
		return nil, plugin.Errorf("hdrfilm", "rfilter", plugin.ErrInvalidValue, "unknown reconstruction filter %q", filter)
	}
	return &Film{
		Base:   plugin.NewBase(plugin.ClassFor("HDRFilm", FilmClassName, v), props),
		Width:  int(width),
		Height: int(height),
		Filter: filter,
	}, nil
}

func defaultFilm(v lanes.Variant) *Film {
	film, err := NewFilm(v, plugin.NewProperties("hdrfilm"))
	if err != nil {
		panic(err)
	}
	return film
}

// FilterRadius returns the reconstruction filter radius in pixels
func (f *Film) FilterRadius() float64 {
	return filterRadii[f.Filter]
}

// Pixels returns the number of pixels on the film
func (f *Film) Pixels() int {
	return f.Width * f.Height
}

func (f *Film) String() string {
	return fmt.Sprintf("HDRFilm[size=%dx%d, rfilter=%s]", f.Width, f.Height, f.Filter)
}

func init() {
	plugin.Register("hdrfilm", FilmClassName, func(v lanes.Variant, props *plugin.Properties) (plugin.Object, error) {
		return NewFilm(v, props)
	})
}
