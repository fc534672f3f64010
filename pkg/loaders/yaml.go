// Package loaders builds plugin objects from YAML scene descriptions.
//
// A description is a mapping whose "type" key names a plugin. Every other
// key becomes a property of that plugin. Nested mappings with a "type" key
// are constructed first and passed as nested objects; their id defaults to
// the key they are stored under. Typed values use tags:
//
//	center: !point [0, 0, 1]
//	direction: !vector [0, 0, -1]
//	reflectance: !rgb [0.8, 0.2, 0.2]
//	to_world: !transform
//	  - translate: [0, 0, 1]
//	  - rotate: {axis: [1, 0, 0], angle: 90}
//	bsdf: !ref glass
package loaders

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/pkg/plugin"
	"github.com/df07/go-plugin-renderer/pkg/scene"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Options configures how a description is turned into objects
type Options struct {
	Registry    *plugin.Registry // Defaults to plugin.Default
	Variant     lanes.Variant    // Defaults to lanes.ScalarRGB
	AllowUnused bool             // Log unused parameters instead of failing
}

// LoadError locates a failure in the YAML source
type LoadError struct {
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func errorAt(node *yaml.Node, err error) error {
	var located *LoadError
	if errors.As(err, &located) {
		return err
	}
	return &LoadError{Line: node.Line, Err: err}
}

// Load reads and constructs the object described by the file at path
func Load(path string, opts Options) (plugin.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene description: %w", err)
	}
	return Parse(bytes.NewReader(data), opts)
}

// LoadScene loads path and checks that it describes a scene
func LoadScene(path string, opts Options) (*scene.Scene, error) {
	obj, err := Load(path, opts)
	if err != nil {
		return nil, err
	}
	s, ok := obj.(*scene.Scene)
	if !ok {
		return nil, fmt.Errorf("%s describes a %s, not a scene", path, obj.Class().Name())
	}
	return s, nil
}

// Parse constructs the object described by the YAML document in r
func Parse(r io.Reader, opts Options) (plugin.Object, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing scene description: empty document")
		}
		return nil, fmt.Errorf("parsing scene description: %w", err)
	}
	if opts.Registry == nil {
		opts.Registry = plugin.Default
	}
	if opts.Variant.Name == "" {
		opts.Variant = lanes.ScalarRGB
	}

	b := &builder{opts: opts, objects: make(map[string]plugin.Object)}
	root := resolve(&doc)
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = resolve(root.Content[0])
	}
	return b.object(root, "")
}

// builder walks one document. objects holds every constructed object by id
// for !ref lookups; only objects defined earlier in the document resolve.
type builder struct {
	opts    Options
	objects map[string]plugin.Object
}

func (b *builder) object(node *yaml.Node, defaultID string) (plugin.Object, error) {
	if node.Kind != yaml.MappingNode {
		return nil, errorAt(node, fmt.Errorf("expected a mapping with a \"type\" key"))
	}

	pluginType, id := "", defaultID
	var params []*yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], resolve(node.Content[i+1])
		switch key.Value {
		case "type":
			if err := value.Decode(&pluginType); err != nil {
				return nil, errorAt(value, err)
			}
		case "id":
			if err := value.Decode(&id); err != nil {
				return nil, errorAt(value, err)
			}
		default:
			params = append(params, key, value)
		}
	}
	if pluginType == "" {
		return nil, errorAt(node, fmt.Errorf("object %q has no \"type\"", defaultID))
	}
	if _, exists := b.objects[id]; exists && id != "" {
		return nil, errorAt(node, fmt.Errorf("duplicate object id %q", id))
	}

	props := plugin.NewProperties(pluginType)
	props.SetID(id)
	for i := 0; i < len(params); i += 2 {
		if err := b.property(props, params[i].Value, params[i+1]); err != nil {
			return nil, err
		}
	}

	obj, err := b.opts.Registry.Create(pluginType, b.opts.Variant, props)
	if err != nil {
		return nil, errorAt(node, err)
	}
	if err := b.checkUnused(node, props); err != nil {
		return nil, err
	}
	logrus.Debugf("loaders: created %s %q", obj.Class().Name(), obj.ID())

	if id != "" {
		b.objects[id] = obj
	}
	return obj, nil
}

func (b *builder) checkUnused(node *yaml.Node, props *plugin.Properties) error {
	for _, key := range props.Unqueried() {
		err := plugin.Errorf(props.PluginName(), key, plugin.ErrUnusedKey, "property was never queried")
		if !b.opts.AllowUnused {
			return errorAt(keyNode(node, key), err)
		}
		logrus.Warnf("loaders: %v", err)
	}
	return nil
}

// keyNode returns the key node named key in mapping, or mapping itself
func keyNode(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i]
		}
	}
	return mapping
}

func (b *builder) property(props *plugin.Properties, key string, node *yaml.Node) error {
	switch tag := node.ShortTag(); tag {
	case "!point", "!vector", "!rgb":
		v, err := decodeVec3(node, tag == "!rgb")
		if err != nil {
			return errorAt(node, fmt.Errorf("property %q: %w", key, err))
		}
		switch tag {
		case "!point":
			props.SetPoint3(key, v)
		case "!vector":
			props.SetVector3(key, v)
		default:
			props.SetColor(key, v)
		}
	case "!transform":
		t, err := decodeTransform(node)
		if err != nil {
			return errorAt(node, fmt.Errorf("property %q: %w", key, err))
		}
		props.SetTransform(key, t)
	case "!ref":
		if node.Kind != yaml.ScalarNode {
			return errorAt(node, fmt.Errorf("property %q: !ref expects an object id", key))
		}
		id := node.Value
		obj, ok := b.objects[id]
		if !ok {
			return errorAt(node, fmt.Errorf("property %q: reference to undefined object %q", key, id))
		}
		props.SetObject(key, obj)
	case "!!map":
		obj, err := b.object(node, key)
		if err != nil {
			return err
		}
		props.SetObject(key, obj)
	case "!!bool":
		var v bool
		if err := node.Decode(&v); err != nil {
			return errorAt(node, err)
		}
		props.SetBool(key, v)
	case "!!int":
		var v int64
		if err := node.Decode(&v); err != nil {
			return errorAt(node, err)
		}
		props.SetInt(key, v)
	case "!!float":
		var v float64
		if err := node.Decode(&v); err != nil {
			return errorAt(node, err)
		}
		props.SetFloat(key, v)
	case "!!str":
		props.SetString(key, node.Value)
	case "!!seq":
		return errorAt(node, fmt.Errorf("property %q: untagged sequence, use !point, !vector, !rgb or !transform", key))
	default:
		return errorAt(node, fmt.Errorf("property %q: unsupported value of type %s", key, tag))
	}
	return nil
}

// resolve follows YAML aliases to the node they point at
func resolve(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}
