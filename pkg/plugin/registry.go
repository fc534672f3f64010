package plugin

import (
	"fmt"
	"sort"
	"sync"

	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/sirupsen/logrus"
)

// Factory constructs a plugin object for a variant from its configuration
type Factory func(v lanes.Variant, props *Properties) (Object, error)

type registration struct {
	parent  string
	factory Factory
}

// Registry maps plugin names to factories. Registration happens while
// the program loads; the first Create seals the registry.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registration
	sealed  bool
}

// Default is the registry the built-in plugins add themselves to
var Default = NewRegistry()

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registration)}
}

// Register adds a factory under name. It panics on a duplicate name or
// when called after the registry has been used to create objects.
func (r *Registry) Register(name, parent string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		panic(fmt.Sprintf("plugin: Register(%q) after the registry was sealed", name))
	}
	if _, dup := r.entries[name]; dup {
		panic(fmt.Sprintf("plugin: Register called twice for %q", name))
	}
	r.entries[name] = registration{parent: parent, factory: factory}
}

// Create instantiates the plugin registered under name
func (r *Registry) Create(name string, v lanes.Variant, props *Properties) (Object, error) {
	r.mu.Lock()
	r.sealed = true
	reg, ok := r.entries[name]
	r.mu.Unlock()
	if !ok {
		return nil, Errorf(name, "", ErrUnknownPlugin, "no plugin named %q is registered", name)
	}
	if props == nil {
		props = NewProperties(name)
	}
	if props.PluginName() == "" {
		props.SetPluginName(name)
	}
	logrus.Debugf("plugin: creating %q (%s) for variant %s", name, reg.parent, v.Name)
	return reg.factory(v, props)
}

// Parent returns the base class name a plugin was registered under
func (r *Registry) Parent(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[name]
	return reg.parent, ok
}

// Names returns the registered plugin names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds a factory to the Default registry
func Register(name, parent string, factory Factory) {
	Default.Register(name, parent, factory)
}

// Create instantiates a plugin from the Default registry
func Create(name string, v lanes.Variant, props *Properties) (Object, error) {
	return Default.Create(name, v, props)
}
