package bsdf

import "strings"

// Flags classifies the lobes of a BSDF and the sides it applies to
type Flags uint32

const (
	Null                Flags = 0
	DiffuseReflection   Flags = 1 << 0
	DiffuseTransmission Flags = 1 << 1
	GlossyReflection    Flags = 1 << 2
	GlossyTransmission  Flags = 1 << 3
	DeltaReflection     Flags = 1 << 4
	DeltaTransmission   Flags = 1 << 5
	Anisotropic         Flags = 1 << 6
	SpatiallyVarying    Flags = 1 << 7
	NonSymmetric        Flags = 1 << 8
	FrontSide           Flags = 1 << 9
	BackSide            Flags = 1 << 10
	NeedsDifferentials  Flags = 1 << 11

	Reflection   = DiffuseReflection | GlossyReflection | DeltaReflection
	Transmission = DiffuseTransmission | GlossyTransmission | DeltaTransmission
	Diffuse      = DiffuseReflection | DiffuseTransmission
	Glossy       = GlossyReflection | GlossyTransmission
	Smooth       = Diffuse | Glossy
	Delta        = DeltaReflection | DeltaTransmission
	All          = Diffuse | Glossy | Delta
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{DiffuseReflection, "DiffuseReflection"},
	{DiffuseTransmission, "DiffuseTransmission"},
	{GlossyReflection, "GlossyReflection"},
	{GlossyTransmission, "GlossyTransmission"},
	{DeltaReflection, "DeltaReflection"},
	{DeltaTransmission, "DeltaTransmission"},
	{Anisotropic, "Anisotropic"},
	{SpatiallyVarying, "SpatiallyVarying"},
	{NonSymmetric, "NonSymmetric"},
	{FrontSide, "FrontSide"},
	{BackSide, "BackSide"},
	{NeedsDifferentials, "NeedsDifferentials"},
}

// Has reports whether f shares at least one bit with other
func (f Flags) Has(other Flags) bool {
	return f&other != 0
}

func (f Flags) String() string {
	if f == Null {
		return "Null"
	}
	var parts []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, " | ")
}

// Components holds the per-component flags of a BSDF. Embedding it
// provides Flags, FlagsAt and ComponentCount.
type Components struct {
	flags []Flags
	union Flags
}

// NewComponents records one flag set per component
func NewComponents(flags ...Flags) Components {
	var c Components
	c.SetComponents(flags...)
	return c
}

// SetComponents replaces the component flags
func (c *Components) SetComponents(flags ...Flags) {
	c.flags = append([]Flags(nil), flags...)
	c.union = Null
	for _, f := range flags {
		c.union |= f
	}
}

// Flags returns the union of all component flags
func (c Components) Flags() Flags { return c.union }

// FlagsAt returns the flags of component index, or Null when out of range
func (c Components) FlagsAt(index int) Flags {
	if index < 0 || index >= len(c.flags) {
		return Null
	}
	return c.flags[index]
}

func (c Components) ComponentCount() int { return len(c.flags) }
