package lanes

import (
	"fmt"
	"sort"

	"github.com/df07/go-plugin-renderer/pkg/core"
)

// Backend identifies how lanes are mapped onto execution
type Backend string

const (
	BackendScalar Backend = "scalar"
	BackendPacket Backend = "packet"
)

// Variant is a numeric configuration under which primitives are instantiated
type Variant struct {
	Name    string
	Backend Backend
	Width   int // Lanes processed per call
}

var (
	ScalarRGB = Variant{Name: "scalar_rgb", Backend: BackendScalar, Width: 1}
	PacketRGB = Variant{Name: "packet_rgb", Backend: BackendPacket, Width: 16}
)

var variants = map[string]Variant{
	ScalarRGB.Name: ScalarRGB,
	PacketRGB.Name: PacketRGB,
}

// LookupVariant returns the variant registered under name
func LookupVariant(name string) (Variant, error) {
	v, ok := variants[name]
	if !ok {
		return Variant{}, fmt.Errorf("unknown variant %q; valid: %v", name, VariantNames())
	}
	return v, nil
}

// VariantNames returns the sorted names of all variants
func VariantNames() []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (v Variant) String() string {
	return v.Name
}

// SampleWavelengths draws the wavelengths carried by a ray and their
// importance weight. RGB variants carry no wavelengths and use a unit weight.
func (v Variant) SampleWavelengths(sample float64) (core.Wavelengths, core.Vec3) {
	return core.Wavelengths{}, core.Splat(1)
}
