package plugin

import "github.com/google/uuid"

// Object is implemented by every plugin instance
type Object interface {
	Class() *Class
	ID() string
	String() string
}

// Expander is implemented by front objects that are replaced by one or
// more concrete objects once their configuration is known
type Expander interface {
	Expand() ([]Object, error)
}

// Base carries the class and identifier shared by all plugin objects.
// Embed it and implement String to satisfy Object.
type Base struct {
	class *Class
	id    string
}

// NewBase binds class to the id recorded in props, generating a random
// one when the record has none
func NewBase(class *Class, props *Properties) Base {
	id := ""
	if props != nil {
		id = props.ID()
	}
	if id == "" {
		id = uuid.NewString()
	}
	return Base{class: class, id: id}
}

func (b Base) Class() *Class { return b.class }
func (b Base) ID() string    { return b.id }
