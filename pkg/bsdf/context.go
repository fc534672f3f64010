package bsdf

// TransportMode tells a BSDF which quantity is being transported
type TransportMode int

const (
	// Radiance is transported from emitters towards the sensor
	Radiance TransportMode = iota
	// Importance is transported from the sensor towards emitters
	Importance
)

func (m TransportMode) String() string {
	if m == Importance {
		return "Importance"
	}
	return "Radiance"
}

// AllComponents selects every component in Context.Component
const AllComponents = -1

// Context restricts which lobes a query may use
type Context struct {
	Mode      TransportMode
	TypeMask  Flags
	Component int
}

// NewContext returns a context that enables every lobe in radiance mode
func NewContext() Context {
	return Context{Mode: Radiance, TypeMask: All, Component: AllComponents}
}

// Reverse swaps the transport mode
func (c *Context) Reverse() {
	if c.Mode == Radiance {
		c.Mode = Importance
	} else {
		c.Mode = Radiance
	}
}

// IsEnabled reports whether the lobe of the given type and component index
// participates in the query
func (c Context) IsEnabled(flag Flags, component int) bool {
	return (c.Component == AllComponents || c.Component == component) && c.TypeMask.Has(flag)
}
