// Package script holds the override table that lets externally defined
// code supply the behaviour of a primitive. Overrides are keyed by object
// instance, with a class-wide fallback, and are resolved on every call so
// that later definitions take effect immediately.
package script

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/df07/go-plugin-renderer/pkg/plugin"
)

// ErrNotImplemented is wrapped by NotImplementedError
var ErrNotImplemented = errors.New("method not implemented")

// NotImplementedError reports a required method that has no override
// and no native implementation
type NotImplementedError struct {
	Class  string
	Method string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("%s.%s(): %v", e.Class, e.Method, ErrNotImplemented)
}

func (e *NotImplementedError) Unwrap() error { return ErrNotImplemented }

// SignatureError reports an override whose Go type does not match the
// method it was registered for
type SignatureError struct {
	Class  string
	Method string
	Want   string
	Got    string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("%s.%s(): override has type %s, want %s", e.Class, e.Method, e.Got, e.Want)
}

type methods map[string]any

// Table maps objects and classes to method overrides. It is safe for
// concurrent use.
type Table struct {
	mu        sync.RWMutex
	instances map[string]methods
	classes   map[string]methods
}

// NewTable creates an empty override table
func NewTable() *Table {
	return &Table{
		instances: make(map[string]methods),
		classes:   make(map[string]methods),
	}
}

// Define installs fn as method for the object with the given instance id
func (t *Table) Define(id, method string, fn any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.instances[id] == nil {
		t.instances[id] = make(methods)
	}
	t.instances[id][method] = fn
}

// DefineClass installs fn as method for every object of the named class
// that has no instance override
func (t *Table) DefineClass(class, method string, fn any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.classes[class] == nil {
		t.classes[class] = make(methods)
	}
	t.classes[class][method] = fn
}

// Remove drops the instance override of method for id
func (t *Table) Remove(id, method string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.instances[id], method)
}

// Lookup returns the override of method for obj, preferring the instance
// entry over the class entry
func (t *Table) Lookup(obj plugin.Object, method string) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if fn, ok := t.instances[obj.ID()][method]; ok {
		return fn, true
	}
	if fn, ok := t.classes[obj.Class().Name()][method]; ok {
		return fn, true
	}
	return nil, false
}

// Resolve looks up method for obj and asserts it to F. It returns false
// when no override exists and a *SignatureError when one exists with a
// different type.
func Resolve[F any](t *Table, obj plugin.Object, method string) (F, bool, error) {
	var zero F
	if t == nil {
		return zero, false, nil
	}
	raw, ok := t.Lookup(obj, method)
	if !ok {
		return zero, false, nil
	}
	if fn, ok := raw.(F); ok {
		return fn, true, nil
	}
	// Function literals carry an unnamed type; accept them for a named
	// function type with the same underlying signature
	want := reflect.TypeOf((*F)(nil)).Elem()
	got := reflect.TypeOf(raw)
	if got != nil && got.Kind() == reflect.Func && want.Kind() == reflect.Func && got.ConvertibleTo(want) {
		return reflect.ValueOf(raw).Convert(want).Interface().(F), true, nil
	}
	gotName := "nil"
	if got != nil {
		gotName = got.String()
	}
	return zero, false, &SignatureError{
		Class:  obj.Class().Name(),
		Method: method,
		Want:   want.String(),
		Got:    gotName,
	}
}
