package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/pkg/plugin"
)

// planar is a flat shape defined in the z=0 plane of its local frame and
// placed in the world by toWorld
type planar struct {
	surface
	toWorld core.Transform
	toLocal core.Transform
	normal  core.Vec3
	area    float64
}

// newPlanar reads "to_world". unitArea is the area of the local shape.
func newPlanar(name string, unitArea float64, v lanes.Variant, props *plugin.Properties) (planar, error) {
	toWorld, err := props.TransformOr("to_world", core.Identity())
	if err != nil {
		return planar{}, err
	}
	ex := toWorld.TransformVector(core.NewVec3(1, 0, 0))
	ey := toWorld.TransformVector(core.NewVec3(0, 1, 0))
	area := ex.Cross(ey).Length() * unitArea
	if area == 0 {
		return planar{}, plugin.Errorf(name, "to_world", plugin.ErrInvalidValue, "transform collapses the surface")
	}
	s, err := newSurface(name, v, props)
	if err != nil {
		return planar{}, err
	}
	return planar{
		surface: s,
		toWorld: toWorld,
		toLocal: toWorld.Inverse(),
		normal:  toWorld.TransformNormal(core.NewVec3(0, 0, 1)).Normalize(),
		area:    area,
	}, nil
}

// hitPlane intersects the local z=0 plane and returns the local hit point
func (p *planar) hitPlane(ray core.Ray, tMin, tMax float64) (float64, core.Vec3, bool) {
	o := p.toLocal.TransformPoint(ray.Origin)
	d := p.toLocal.TransformVector(ray.Direction)
	if math.Abs(d.Z) < 1e-12 {
		return 0, core.Vec3{}, false
	}
	t := -o.Z / d.Z
	if t <= tMin || t > tMax {
		return 0, core.Vec3{}, false
	}
	return t, o.Add(d.Multiply(t)), true
}

func (p *planar) sampleLocal(local core.Vec3, uv core.Vec2, time float64, active bool) core.PositionSample {
	return core.PositionSample{
		P:    p.toWorld.TransformPoint(local),
		N:    p.normal,
		UV:   uv,
		Time: time,
		PDF:  uniformAreaPDF(p.area, active),
	}
}

func (p *planar) PDFPosition(ps core.PositionSample, active bool) float64 {
	return uniformAreaPDF(p.area, active)
}

func (p *planar) SurfaceArea() float64 { return p.area }

// BoundingBox encloses the transformed local square [-1,1]²
func (p *planar) BoundingBox() core.AABB {
	box := core.EmptyAABB()
	for _, c := range [][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
		box = box.ExpandToPoint(p.toWorld.TransformPoint(core.NewVec3(c[0], c[1], 0)))
	}
	return box
}

// Rectangle is the square [-1,1]² of the local z=0 plane
type Rectangle struct {
	planar
}

// NewRectangle reads "to_world"
func NewRectangle(v lanes.Variant, props *plugin.Properties) (*Rectangle, error) {
	p, err := newPlanar("Rectangle", 4, v, props)
	if err != nil {
		return nil, err
	}
	return &Rectangle{planar: p}, nil
}

func (r *Rectangle) Hit(ray core.Ray, tMin, tMax float64) (core.SurfaceInteraction, bool) {
	t, local, ok := r.hitPlane(ray, tMin, tMax)
	if !ok || math.Abs(local.X) > 1 || math.Abs(local.Y) > 1 {
		return core.SurfaceInteraction{}, false
	}
	uv := core.NewVec2(0.5*(local.X+1), 0.5*(local.Y+1))
	return interaction(ray, t, ray.At(t), r.normal, uv), true
}

func (r *Rectangle) SamplePosition(time float64, sample core.Vec2, active bool) core.PositionSample {
	local := core.NewVec3(2*sample.X-1, 2*sample.Y-1, 0)
	return r.sampleLocal(local, sample, time, active)
}

func (r *Rectangle) String() string {
	return fmt.Sprintf("Rectangle[\n  to_world = %v,\n  surface_area = %g,\n  bsdf = %s\n]", r.toWorld, r.area, r.bsdf)
}

// Disk is the unit disk of the local z=0 plane
type Disk struct {
	planar
}

// NewDisk reads "to_world"
func NewDisk(v lanes.Variant, props *plugin.Properties) (*Disk, error) {
	p, err := newPlanar("Disk", math.Pi, v, props)
	if err != nil {
		return nil, err
	}
	return &Disk{planar: p}, nil
}

func (d *Disk) Hit(ray core.Ray, tMin, tMax float64) (core.SurfaceInteraction, bool) {
	t, local, ok := d.hitPlane(ray, tMin, tMax)
	r2 := local.X*local.X + local.Y*local.Y
	if !ok || r2 > 1 {
		return core.SurfaceInteraction{}, false
	}
	phi := math.Atan2(local.Y, local.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	uv := core.NewVec2(math.Sqrt(r2), phi/(2*math.Pi))
	return interaction(ray, t, ray.At(t), d.normal, uv), true
}

func (d *Disk) SamplePosition(time float64, sample core.Vec2, active bool) core.PositionSample {
	p := core.SquareToUniformDiskConcentric(sample)
	return d.sampleLocal(core.NewVec3(p.X, p.Y, 0), sample, time, active)
}

func (d *Disk) String() string {
	return fmt.Sprintf("Disk[\n  to_world = %v,\n  surface_area = %g,\n  bsdf = %s\n]", d.toWorld, d.area, d.bsdf)
}

func init() {
	plugin.Register("rectangle", ClassName, func(v lanes.Variant, props *plugin.Properties) (plugin.Object, error) {
		return NewRectangle(v, props)
	})
	plugin.Register("disk", ClassName, func(v lanes.Variant, props *plugin.Properties) (plugin.Object, error) {
		return NewDisk(v, props)
	})
}
