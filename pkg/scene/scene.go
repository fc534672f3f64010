// Package scene assembles constructed plugins into a finalized scene that
// sensors and integrators can query.
package scene

import (
	"fmt"
	"strings"

	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/emitter"
	"github.com/df07/go-plugin-renderer/pkg/geometry"
	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/pkg/plugin"
	"github.com/df07/go-plugin-renderer/pkg/sensor"
	"github.com/sirupsen/logrus"
)

// ClassName is the class of the scene plugin
const ClassName = "Scene"

// Scene contains all the elements needed for rendering
type Scene struct {
	plugin.Base
	variant     lanes.Variant
	shapes      []geometry.Shape
	sensors     []sensor.Sensor
	environment emitter.Emitter
	bvh         *geometry.BVH
}

// NewScene expands every nested expander once, classifies the results and
// hands the finished scene to every scene-aware object
func NewScene(v lanes.Variant, props *plugin.Properties) (*Scene, error) {
	s := &Scene{
		Base:    plugin.NewBase(plugin.ClassFor(ClassName, "Object", v), props),
		variant: v,
	}

	var objects []plugin.Object
	for _, named := range props.Objects() {
		props.MarkQueried(named.Key)
		expander, ok := named.Object.(plugin.Expander)
		if !ok {
			objects = append(objects, named.Object)
			continue
		}
		expanded, err := expander.Expand()
		if err != nil {
			return nil, fmt.Errorf("failed to expand %q: %w", named.Key, err)
		}
		logrus.Debugf("scene: expanded %s into %d object(s)", named.Object.Class().Name(), len(expanded))
		objects = append(objects, expanded...)
	}

	for _, obj := range objects {
		switch o := obj.(type) {
		case geometry.Shape:
			s.shapes = append(s.shapes, o)
		case sensor.Sensor:
			s.sensors = append(s.sensors, o)
		case emitter.Emitter:
			if !o.IsEnvironment() {
				return nil, plugin.Errorf("scene", "", plugin.ErrInvalidValue,
					"emitter %s must be attached to a shape", o.Class().Name())
			}
			if s.environment != nil {
				return nil, plugin.Errorf("scene", "", plugin.ErrConflict, "only one environment emitter can be specified")
			}
			s.environment = o
		default:
			logrus.Debugf("scene: keeping %s %q unclassified", o.Class().Name(), o.ID())
		}
	}

	s.bvh = geometry.NewBVH(s.shapes)
	stats := s.bvh.Stats()
	logrus.Debugf("scene: %d shape(s), BVH with %d node(s) and depth %d", len(s.shapes), stats.TotalNodes, stats.MaxDepth)

	for _, obj := range objects {
		if aware, ok := obj.(plugin.SceneAware); ok {
			if err := aware.SetScene(s); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// Intersect returns the closest intersection with the scene and the shape
// that was hit. Inactive lanes and misses return the invalid interaction.
func (s *Scene) Intersect(ray core.Ray, active bool) (core.SurfaceInteraction, geometry.Shape) {
	return s.bvh.Intersect(ray, active)
}

// BoundingBox returns the box enclosing every shape, invalid when the scene
// has no shapes
func (s *Scene) BoundingBox() core.AABB {
	return s.bvh.BoundingBox()
}

func (s *Scene) Shapes() []geometry.Shape     { return s.shapes }
func (s *Scene) Sensors() []sensor.Sensor     { return s.sensors }
func (s *Scene) Environment() emitter.Emitter { return s.environment }
func (s *Scene) Variant() lanes.Variant       { return s.variant }

func (s *Scene) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scene[\n  variant = %s,\n  bbox = %v,\n", s.variant, s.BoundingBox())
	writeList(&b, "sensors", len(s.sensors), func(i int) string { return s.sensors[i].String() })
	writeList(&b, "shapes", len(s.shapes), func(i int) string { return s.shapes[i].String() })
	if s.environment != nil {
		fmt.Fprintf(&b, "  environment = %s,\n", indent(s.environment.String()))
	}
	b.WriteString("]")
	return b.String()
}

func writeList(b *strings.Builder, name string, n int, item func(int) string) {
	fmt.Fprintf(b, "  %s = [\n", name)
	for i := 0; i < n; i++ {
		fmt.Fprintf(b, "    %s,\n", indent(indent(item(i))))
	}
	b.WriteString("  ],\n")
}

func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n  ")
}

func init() {
	plugin.Register("scene", "Object", func(v lanes.Variant, props *plugin.Properties) (plugin.Object, error) {
		return NewScene(v, props)
	})
}
