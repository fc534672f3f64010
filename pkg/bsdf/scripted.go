package bsdf

import (
	"fmt"

	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/pkg/plugin"
	"github.com/df07/go-plugin-renderer/pkg/script"
)

// Signatures of the overrides a Scripted BSDF resolves from its table
type (
	SampleFunc   func(ctx Context, si core.SurfaceInteraction, sample1 float64, sample2 core.Vec2, active bool) (Sample, core.Vec3)
	EvalFunc     func(ctx Context, si core.SurfaceInteraction, wo core.Vec3, active bool) core.Vec3
	PDFFunc      func(ctx Context, si core.SurfaceInteraction, wo core.Vec3, active bool) float64
	EvalPDFFunc  func(ctx Context, si core.SurfaceInteraction, wo core.Vec3, active bool) (core.Vec3, float64)
	ToStringFunc func() string
	// InitFunc runs once when a registered scripted plugin is constructed
	InitFunc func(b *Scripted, props *plugin.Properties) error
)

// Override method names
const (
	MethodSample   = "sample"
	MethodEval     = "eval"
	MethodPDF      = "pdf"
	MethodEvalPDF  = "eval_pdf"
	MethodToString = "to_string"
	MethodInit     = "init"
)

// Scripted is a BSDF whose operations are supplied at run time through a
// script.Table. Each call resolves the override anew, and inactive lanes
// of an override's result are zeroed. Without an override
// the call falls back to the optional native BSDF; with neither, sample,
// eval and pdf panic with a *script.NotImplementedError.
type Scripted struct {
	plugin.Base
	Components
	table  *script.Table
	native BSDF
}

// NewScripted creates a scripted BSDF of the given class. native may be nil.
func NewScripted(class *plugin.Class, props *plugin.Properties, table *script.Table, native BSDF) *Scripted {
	s := &Scripted{
		Base:   plugin.NewBase(class, props),
		table:  table,
		native: native,
	}
	if native != nil {
		flags := make([]Flags, native.ComponentCount())
		for i := range flags {
			flags[i] = native.FlagsAt(i)
		}
		s.SetComponents(flags...)
	}
	return s
}

// RegisterScripted adds a scripted BSDF plugin under name. The "init"
// class override of table, when present, configures each new instance.
func RegisterScripted(r *plugin.Registry, name string, table *script.Table) {
	r.Register(name, ClassName, func(v lanes.Variant, props *plugin.Properties) (plugin.Object, error) {
		s := NewScripted(plugin.ClassFor(name, ClassName, v), props, table, nil)
		initFn, ok, err := script.Resolve[InitFunc](table, s, MethodInit)
		if err != nil {
			return nil, err
		}
		if ok {
			if err := initFn(s, props); err != nil {
				return nil, fmt.Errorf("initializing scripted BSDF %q: %w", name, err)
			}
		}
		return s, nil
	})
}

func resolve[F any](s *Scripted, method string) (F, bool) {
	fn, ok, err := script.Resolve[F](s.table, s, method)
	if err != nil {
		panic(err)
	}
	return fn, ok
}

func (s *Scripted) notImplemented(method string) error {
	return &script.NotImplementedError{Class: s.Class().Name(), Method: method}
}

func (s *Scripted) Sample(ctx Context, si core.SurfaceInteraction, sample1 float64, sample2 core.Vec2, active bool) (Sample, core.Vec3) {
	if fn, ok := resolve[SampleFunc](s, MethodSample); ok {
		bs, weight := fn(ctx, si, sample1, sample2, active)
		return lanes.Select(active, bs, NoSample()), lanes.Select(active, weight, core.Vec3{})
	}
	if s.native != nil {
		return s.native.Sample(ctx, si, sample1, sample2, active)
	}
	panic(s.notImplemented(MethodSample))
}

func (s *Scripted) Eval(ctx Context, si core.SurfaceInteraction, wo core.Vec3, active bool) core.Vec3 {
	if fn, ok := resolve[EvalFunc](s, MethodEval); ok {
		return lanes.Select(active, fn(ctx, si, wo, active), core.Vec3{})
	}
	if s.native != nil {
		return s.native.Eval(ctx, si, wo, active)
	}
	panic(s.notImplemented(MethodEval))
}

func (s *Scripted) PDF(ctx Context, si core.SurfaceInteraction, wo core.Vec3, active bool) float64 {
	if fn, ok := resolve[PDFFunc](s, MethodPDF); ok {
		return lanes.Select(active, fn(ctx, si, wo, active), 0)
	}
	if s.native != nil {
		return s.native.PDF(ctx, si, wo, active)
	}
	panic(s.notImplemented(MethodPDF))
}

// EvalPDF uses the eval_pdf override when present and otherwise combines
// Eval and PDF
func (s *Scripted) EvalPDF(ctx Context, si core.SurfaceInteraction, wo core.Vec3, active bool) (core.Vec3, float64) {
	if fn, ok := resolve[EvalPDFFunc](s, MethodEvalPDF); ok {
		value, pdf := fn(ctx, si, wo, active)
		return lanes.Select(active, value, core.Vec3{}), lanes.Select(active, pdf, 0)
	}
	if s.native != nil {
		return s.native.EvalPDF(ctx, si, wo, active)
	}
	return s.Eval(ctx, si, wo, active), s.PDF(ctx, si, wo, active)
}

func (s *Scripted) String() string {
	if fn, ok := resolve[ToStringFunc](s, MethodToString); ok {
		return fn()
	}
	if s.native != nil {
		return s.native.String()
	}
	return fmt.Sprintf("%s[id=%q, flags=%s]", s.Class().Name(), s.ID(), s.Flags())
}
