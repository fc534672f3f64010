package core

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is an affine 4x4 transformation together with its inverse
type Transform struct {
	matrix  mgl64.Mat4
	inverse mgl64.Mat4
}

// Identity returns the identity transform
func Identity() Transform {
	return Transform{matrix: mgl64.Ident4(), inverse: mgl64.Ident4()}
}

// FromMatrix builds a transform from a row-major 4x4 matrix
func FromMatrix(rows [16]float64) (Transform, error) {
	var m mgl64.Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			m.Set(row, col, rows[row*4+col])
		}
	}
	if math.Abs(m.Det()) < 1e-12 {
		return Transform{}, fmt.Errorf("matrix is singular")
	}
	return Transform{matrix: m, inverse: m.Inv()}, nil
}

// Translate returns a translation by v
func Translate(v Vec3) Transform {
	return Transform{
		matrix:  mgl64.Translate3D(v.X, v.Y, v.Z),
		inverse: mgl64.Translate3D(-v.X, -v.Y, -v.Z),
	}
}

// Scale returns a non-uniform scale. Components must be non-zero.
func Scale(v Vec3) Transform {
	return Transform{
		matrix:  mgl64.Scale3D(v.X, v.Y, v.Z),
		inverse: mgl64.Scale3D(1/v.X, 1/v.Y, 1/v.Z),
	}
}

// Rotate returns a rotation of angle degrees around axis
func Rotate(axis Vec3, angle float64) Transform {
	a := axis.Normalize()
	m := mgl64.HomogRotate3D(mgl64.DegToRad(angle), mgl64.Vec3{a.X, a.Y, a.Z})
	return Transform{matrix: m, inverse: m.Transpose()}
}

// LookAt returns the camera-to-world transform placing the origin at
// origin with local +Z pointing at target and local +Y aligned with up
func LookAt(origin, target, up Vec3) Transform {
	dir := target.Subtract(origin).Normalize()
	left := up.Normalize().Cross(dir)
	if left.LengthSquared() == 0 {
		// up is parallel to dir, pick any perpendicular axis
		left, _ = CoordinateSystem(dir)
	}
	left = left.Normalize()
	newUp := dir.Cross(left)

	m := mgl64.Mat4FromCols(
		mgl64.Vec4{left.X, left.Y, left.Z, 0},
		mgl64.Vec4{newUp.X, newUp.Y, newUp.Z, 0},
		mgl64.Vec4{dir.X, dir.Y, dir.Z, 0},
		mgl64.Vec4{origin.X, origin.Y, origin.Z, 1},
	)
	return Transform{matrix: m, inverse: m.Inv()}
}

// Compose returns the transform applying other first, then t
func (t Transform) Compose(other Transform) Transform {
	return Transform{
		matrix:  t.matrix.Mul4(other.matrix),
		inverse: other.inverse.Mul4(t.inverse),
	}
}

// Inverse returns the inverse transform
func (t Transform) Inverse() Transform {
	return Transform{matrix: t.inverse, inverse: t.matrix}
}

// TransformPoint applies the transform to a point
func (t Transform) TransformPoint(p Vec3) Vec3 {
	r := t.matrix.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	if r[3] != 1 && r[3] != 0 {
		return Vec3{r[0] / r[3], r[1] / r[3], r[2] / r[3]}
	}
	return Vec3{r[0], r[1], r[2]}
}

// TransformVector applies the linear part of the transform to a vector
func (t Transform) TransformVector(v Vec3) Vec3 {
	r := t.matrix.Mul4x1(mgl64.Vec4{v.X, v.Y, v.Z, 0})
	return Vec3{r[0], r[1], r[2]}
}

// TransformNormal applies the inverse transpose to a normal
func (t Transform) TransformNormal(n Vec3) Vec3 {
	r := t.inverse.Transpose().Mul4x1(mgl64.Vec4{n.X, n.Y, n.Z, 0})
	return Vec3{r[0], r[1], r[2]}
}

// IsIdentity reports whether the transform equals the identity
func (t Transform) IsIdentity() bool {
	return t.matrix.ApproxEqual(mgl64.Ident4())
}

// Matrix returns the row-major entries of the transform
func (t Transform) Matrix() [16]float64 {
	var rows [16]float64
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			rows[row*4+col] = t.matrix.At(row, col)
		}
	}
	return rows
}

func (t Transform) String() string {
	m := t.Matrix()
	return fmt.Sprintf("[[%g, %g, %g, %g], [%g, %g, %g, %g], [%g, %g, %g, %g], [%g, %g, %g, %g]]",
		m[0], m[1], m[2], m[3], m[4], m[5], m[6], m[7],
		m[8], m[9], m[10], m[11], m[12], m[13], m[14], m[15])
}
