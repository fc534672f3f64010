package plugin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/df07/go-plugin-renderer/pkg/core"
)

// Type identifies the kind of value stored under a Properties key
type Type int

const (
	TypeBool Type = iota
	TypeInt
	TypeFloat
	TypeString
	TypeVector3
	TypePoint3
	TypeTransform
	TypeColor
	TypeObject
)

var typeNames = map[Type]string{
	TypeBool:      "bool",
	TypeInt:       "integer",
	TypeFloat:     "float",
	TypeString:    "string",
	TypeVector3:   "vector",
	TypePoint3:    "point",
	TypeTransform: "transform",
	TypeColor:     "color",
	TypeObject:    "object",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

type entry struct {
	key     string
	typ     Type
	value   any
	queried bool
}

// Properties is the ordered key/value configuration record handed to plugin
// constructors. Every accessor marks the key it reads as queried so that
// the owner can report parameters nobody consumed.
type Properties struct {
	pluginName string
	id         string
	entries    []*entry
	index      map[string]int
}

// NewProperties creates an empty record for the named plugin
func NewProperties(pluginName string) *Properties {
	return &Properties{pluginName: pluginName, index: make(map[string]int)}
}

// PluginName returns the plugin the record configures
func (p *Properties) PluginName() string {
	return p.pluginName
}

// SetPluginName changes the plugin name used in error messages
func (p *Properties) SetPluginName(name string) {
	p.pluginName = name
}

// ID returns the user-assigned identifier, or "" when unset
func (p *Properties) ID() string {
	return p.id
}

// SetID assigns the identifier of the object being configured
func (p *Properties) SetID(id string) {
	p.id = id
}

func (p *Properties) set(key string, typ Type, value any) {
	if i, ok := p.index[key]; ok {
		p.entries[i] = &entry{key: key, typ: typ, value: value}
		return
	}
	p.index[key] = len(p.entries)
	p.entries = append(p.entries, &entry{key: key, typ: typ, value: value})
}

func (p *Properties) SetBool(key string, v bool) { p.set(key, TypeBool, v) }

func (p *Properties) SetInt(key string, v int64) { p.set(key, TypeInt, v) }

func (p *Properties) SetFloat(key string, v float64) { p.set(key, TypeFloat, v) }

func (p *Properties) SetString(key string, v string) { p.set(key, TypeString, v) }

func (p *Properties) SetVector3(key string, v core.Vec3) { p.set(key, TypeVector3, v) }

func (p *Properties) SetPoint3(key string, v core.Vec3) { p.set(key, TypePoint3, v) }

func (p *Properties) SetColor(key string, v core.Vec3) { p.set(key, TypeColor, v) }

func (p *Properties) SetObject(key string, v Object) { p.set(key, TypeObject, v) }

func (p *Properties) SetTransform(key string, v core.Transform) { p.set(key, TypeTransform, v) }

// Has reports whether key is present. It does not mark the key queried.
func (p *Properties) Has(key string) bool {
	_, ok := p.index[key]
	return ok
}

// Type returns the type stored under key
func (p *Properties) Type(key string) (Type, bool) {
	i, ok := p.index[key]
	if !ok {
		return 0, false
	}
	return p.entries[i].typ, true
}

// Keys returns all keys in insertion order
func (p *Properties) Keys() []string {
	keys := make([]string, len(p.entries))
	for i, e := range p.entries {
		keys[i] = e.key
	}
	return keys
}

// Remove deletes key and reports whether it was present
func (p *Properties) Remove(key string) bool {
	i, ok := p.index[key]
	if !ok {
		return false
	}
	p.entries = append(p.entries[:i], p.entries[i+1:]...)
	delete(p.index, key)
	for j := i; j < len(p.entries); j++ {
		p.index[p.entries[j].key] = j
	}
	return true
}

// MarkQueried flags key as consumed without reading it
func (p *Properties) MarkQueried(key string) {
	if i, ok := p.index[key]; ok {
		p.entries[i].queried = true
	}
}

// WasQueried reports whether key has been read or marked
func (p *Properties) WasQueried(key string) bool {
	i, ok := p.index[key]
	return ok && p.entries[i].queried
}

// Unqueried returns the keys no accessor has consumed, in insertion order
func (p *Properties) Unqueried() []string {
	var keys []string
	for _, e := range p.entries {
		if !e.queried {
			keys = append(keys, e.key)
		}
	}
	return keys
}

// Copy returns an independent record with the same values and fresh query
// bookkeeping. Nested objects are shared, not cloned.
func (p *Properties) Copy() *Properties {
	c := NewProperties(p.pluginName)
	c.id = p.id
	for _, e := range p.entries {
		c.set(e.key, e.typ, e.value)
	}
	return c
}

// Objects returns the nested objects in insertion order together with their keys
func (p *Properties) Objects() []NamedObject {
	var objects []NamedObject
	for _, e := range p.entries {
		if e.typ == TypeObject {
			objects = append(objects, NamedObject{Key: e.key, Object: e.value.(Object)})
		}
	}
	return objects
}

// NamedObject pairs a nested object with the key it was stored under
type NamedObject struct {
	Key    string
	Object Object
}

func (p *Properties) lookup(key string) (*entry, error) {
	i, ok := p.index[key]
	if !ok {
		return nil, Errorf(p.pluginName, key, ErrMissingKey, "property is not specified")
	}
	e := p.entries[i]
	e.queried = true
	return e, nil
}

func (p *Properties) wrongType(e *entry, want string) error {
	return Errorf(p.pluginName, e.key, ErrWrongType, "expected %s, found %s", want, e.typ)
}

// Bool returns the boolean stored under key
func (p *Properties) Bool(key string) (bool, error) {
	e, err := p.lookup(key)
	if err != nil {
		return false, err
	}
	if e.typ != TypeBool {
		return false, p.wrongType(e, "bool")
	}
	return e.value.(bool), nil
}

// BoolOr returns the boolean under key, or def when key is absent
func (p *Properties) BoolOr(key string, def bool) (bool, error) {
	if !p.Has(key) {
		return def, nil
	}
	return p.Bool(key)
}

// Int returns the integer stored under key
func (p *Properties) Int(key string) (int64, error) {
	e, err := p.lookup(key)
	if err != nil {
		return 0, err
	}
	if e.typ != TypeInt {
		return 0, p.wrongType(e, "integer")
	}
	return e.value.(int64), nil
}

// IntOr returns the integer under key, or def when key is absent
func (p *Properties) IntOr(key string, def int64) (int64, error) {
	if !p.Has(key) {
		return def, nil
	}
	return p.Int(key)
}

// Float returns the number stored under key. Integers are widened.
func (p *Properties) Float(key string) (float64, error) {
	e, err := p.lookup(key)
	if err != nil {
		return 0, err
	}
	switch e.typ {
	case TypeFloat:
		return e.value.(float64), nil
	case TypeInt:
		return float64(e.value.(int64)), nil
	}
	return 0, p.wrongType(e, "float")
}

// FloatOr returns the number under key, or def when key is absent
func (p *Properties) FloatOr(key string, def float64) (float64, error) {
	if !p.Has(key) {
		return def, nil
	}
	return p.Float(key)
}

// Text returns the string stored under key
func (p *Properties) Text(key string) (string, error) {
	e, err := p.lookup(key)
	if err != nil {
		return "", err
	}
	if e.typ != TypeString {
		return "", p.wrongType(e, "string")
	}
	return e.value.(string), nil
}

// TextOr returns the string under key, or def when key is absent
func (p *Properties) TextOr(key string, def string) (string, error) {
	if !p.Has(key) {
		return def, nil
	}
	return p.Text(key)
}

// Vector3 returns the vector stored under key. Points are accepted too.
func (p *Properties) Vector3(key string) (core.Vec3, error) {
	e, err := p.lookup(key)
	if err != nil {
		return core.Vec3{}, err
	}
	if e.typ != TypeVector3 && e.typ != TypePoint3 {
		return core.Vec3{}, p.wrongType(e, "vector")
	}
	return e.value.(core.Vec3), nil
}

// Point3 returns the point stored under key. Vectors are accepted too.
func (p *Properties) Point3(key string) (core.Vec3, error) {
	e, err := p.lookup(key)
	if err != nil {
		return core.Vec3{}, err
	}
	if e.typ != TypePoint3 && e.typ != TypeVector3 {
		return core.Vec3{}, p.wrongType(e, "point")
	}
	return e.value.(core.Vec3), nil
}

// Vector3Or returns the vector under key, or def when key is absent
func (p *Properties) Vector3Or(key string, def core.Vec3) (core.Vec3, error) {
	if !p.Has(key) {
		return def, nil
	}
	return p.Vector3(key)
}

// Point3Or returns the point under key, or def when key is absent
func (p *Properties) Point3Or(key string, def core.Vec3) (core.Vec3, error) {
	if !p.Has(key) {
		return def, nil
	}
	return p.Point3(key)
}

// Transform returns the transform stored under key
func (p *Properties) Transform(key string) (core.Transform, error) {
	e, err := p.lookup(key)
	if err != nil {
		return core.Transform{}, err
	}
	if e.typ != TypeTransform {
		return core.Transform{}, p.wrongType(e, "transform")
	}
	return e.value.(core.Transform), nil
}

// TransformOr returns the transform under key, or def when key is absent
func (p *Properties) TransformOr(key string, def core.Transform) (core.Transform, error) {
	if !p.Has(key) {
		return def, nil
	}
	return p.Transform(key)
}

// Color returns the RGB value under key. A plain number is a grey value.
func (p *Properties) Color(key string) (core.Vec3, error) {
	e, err := p.lookup(key)
	if err != nil {
		return core.Vec3{}, err
	}
	switch e.typ {
	case TypeColor:
		return e.value.(core.Vec3), nil
	case TypeFloat:
		return core.Splat(e.value.(float64)), nil
	case TypeInt:
		return core.Splat(float64(e.value.(int64))), nil
	}
	return core.Vec3{}, p.wrongType(e, "color")
}

// ColorOr returns the RGB value under key, or def when key is absent
func (p *Properties) ColorOr(key string, def core.Vec3) (core.Vec3, error) {
	if !p.Has(key) {
		return def, nil
	}
	return p.Color(key)
}

// Object returns the nested object stored under key
func (p *Properties) Object(key string) (Object, error) {
	e, err := p.lookup(key)
	if err != nil {
		return nil, err
	}
	if e.typ != TypeObject {
		return nil, p.wrongType(e, "object")
	}
	return e.value.(Object), nil
}

// Dump renders the record for diagnostics
func (p *Properties) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Properties[\n  plugin_name = %q,\n  id = %q,\n", p.pluginName, p.id)
	keys := p.Keys()
	sort.Strings(keys)
	for _, key := range keys {
		e := p.entries[p.index[key]]
		switch v := e.value.(type) {
		case Object:
			fmt.Fprintf(&b, "  %s = <%s %s>,\n", key, v.Class().Name(), v.ID())
		default:
			fmt.Fprintf(&b, "  %s = %v,\n", key, v)
		}
	}
	b.WriteString("]")
	return b.String()
}
