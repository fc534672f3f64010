package loaders

import (
	"fmt"

	"github.com/df07/go-plugin-renderer/pkg/core"
	"gopkg.in/yaml.v3"
)

// decodeVec3 reads a sequence of three numbers. Colors also accept a single
// number as a grey value.
func decodeVec3(node *yaml.Node, allowScalar bool) (core.Vec3, error) {
	// Drop the local tag so the node decodes as a plain value
	plain := *node
	plain.Tag = ""
	if allowScalar && plain.Kind == yaml.ScalarNode {
		var grey float64
		if err := plain.Decode(&grey); err != nil {
			return core.Vec3{}, err
		}
		return core.Splat(grey), nil
	}
	var xyz []float64
	if err := plain.Decode(&xyz); err != nil {
		return core.Vec3{}, err
	}
	if len(xyz) != 3 {
		return core.Vec3{}, fmt.Errorf("expected 3 components, found %d", len(xyz))
	}
	return core.NewVec3(xyz[0], xyz[1], xyz[2]), nil
}

type rotateStep struct {
	Axis  []float64 `yaml:"axis"`
	Angle float64   `yaml:"angle"` // Degrees
}

type lookAtStep struct {
	Origin []float64 `yaml:"origin"`
	Target []float64 `yaml:"target"`
	Up     []float64 `yaml:"up"`
}

// decodeTransform reads a sequence of single-key steps. Each step applies
// after the steps listed before it.
func decodeTransform(node *yaml.Node) (core.Transform, error) {
	if node.Kind != yaml.SequenceNode {
		return core.Transform{}, fmt.Errorf("expected a sequence of transform steps")
	}
	result := core.Identity()
	for _, stepNode := range node.Content {
		if stepNode.Kind != yaml.MappingNode || len(stepNode.Content) != 2 {
			return core.Transform{}, fmt.Errorf("line %d: a transform step is a mapping with exactly one key", stepNode.Line)
		}
		step, err := decodeStep(stepNode.Content[0].Value, stepNode.Content[1])
		if err != nil {
			return core.Transform{}, fmt.Errorf("line %d: %s: %w", stepNode.Line, stepNode.Content[0].Value, err)
		}
		result = step.Compose(result)
	}
	return result, nil
}

func decodeStep(kind string, node *yaml.Node) (core.Transform, error) {
	switch kind {
	case "translate":
		v, err := decodeVec3(node, false)
		if err != nil {
			return core.Transform{}, err
		}
		return core.Translate(v), nil
	case "scale":
		v, err := decodeVec3(node, true)
		if err != nil {
			return core.Transform{}, err
		}
		if v.X == 0 || v.Y == 0 || v.Z == 0 {
			return core.Transform{}, fmt.Errorf("scale factors must be non-zero")
		}
		return core.Scale(v), nil
	case "rotate":
		var r rotateStep
		if err := node.Decode(&r); err != nil {
			return core.Transform{}, err
		}
		axis, err := vec3From(r.Axis)
		if err != nil {
			return core.Transform{}, fmt.Errorf("axis: %w", err)
		}
		if axis.IsZero() {
			return core.Transform{}, fmt.Errorf("axis must be non-zero")
		}
		return core.Rotate(axis, r.Angle), nil
	case "look_at":
		var l lookAtStep
		if err := node.Decode(&l); err != nil {
			return core.Transform{}, err
		}
		origin, err := vec3From(l.Origin)
		if err != nil {
			return core.Transform{}, fmt.Errorf("origin: %w", err)
		}
		target, err := vec3From(l.Target)
		if err != nil {
			return core.Transform{}, fmt.Errorf("target: %w", err)
		}
		up, err := vec3From(l.Up)
		if err != nil {
			return core.Transform{}, fmt.Errorf("up: %w", err)
		}
		if target.Subtract(origin).IsZero() {
			return core.Transform{}, fmt.Errorf("origin and target coincide")
		}
		return core.LookAt(origin, target, up), nil
	case "matrix":
		var values []float64
		if err := node.Decode(&values); err != nil {
			return core.Transform{}, err
		}
		if len(values) != 16 {
			return core.Transform{}, fmt.Errorf("expected 16 values in row-major order, found %d", len(values))
		}
		return core.FromMatrix([16]float64(values))
	}
	return core.Transform{}, fmt.Errorf("unknown transform step")
}

func vec3From(xyz []float64) (core.Vec3, error) {
	if len(xyz) != 3 {
		return core.Vec3{}, fmt.Errorf("expected 3 components, found %d", len(xyz))
	}
	return core.NewVec3(xyz[0], xyz[1], xyz[2]), nil
}
