package plugin

import (
	"sync"

	"github.com/df07/go-plugin-renderer/pkg/lanes"
)

// Class describes the runtime type of a plugin object. Classes are
// interned per (name, variant), so pointer equality identifies a class.
type Class struct {
	name    string
	parent  string
	variant lanes.Variant
}

type classKey struct {
	name    string
	variant string
}

var (
	classMu sync.Mutex
	classes = make(map[classKey]*Class)
	bases   = make(map[string]string)
)

// DeclareBase records an abstract base class and its parent, so that
// DerivesFrom can walk past it. An empty parent ends the chain.
func DeclareBase(name, parent string) {
	classMu.Lock()
	defer classMu.Unlock()
	bases[name] = parent
}

// ClassFor returns the interned class for name under variant, creating
// it on first use. Later calls with a different parent keep the first one.
func ClassFor(name, parent string, v lanes.Variant) *Class {
	classMu.Lock()
	defer classMu.Unlock()
	key := classKey{name: name, variant: v.Name}
	if c, ok := classes[key]; ok {
		return c
	}
	c := &Class{name: name, parent: parent, variant: v}
	classes[key] = c
	return c
}

func (c *Class) Name() string           { return c.name }
func (c *Class) Parent() string         { return c.parent }
func (c *Class) Variant() lanes.Variant { return c.variant }

// DerivesFrom reports whether the class is name or inherits from it
func (c *Class) DerivesFrom(name string) bool {
	if c.name == name {
		return true
	}
	classMu.Lock()
	defer classMu.Unlock()
	seen := map[string]bool{c.name: true}
	for cur := c.parent; cur != "" && !seen[cur]; cur = bases[cur] {
		if cur == name {
			return true
		}
		seen[cur] = true
	}
	return false
}

func (c *Class) String() string {
	if c.parent == "" {
		return c.name + "[" + c.variant.Name + "]"
	}
	return c.name + ":" + c.parent + "[" + c.variant.Name + "]"
}

func init() {
	DeclareBase("Object", "")
	DeclareBase("BSDF", "Object")
	DeclareBase("Emitter", "Object")
	DeclareBase("Shape", "Object")
	DeclareBase("Film", "Object")
	DeclareBase("Sensor", "Object")
	DeclareBase("Scene", "Object")
}
