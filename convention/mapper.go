// Package convention converts values from the studio's coordinate convention into the
// target one. Positions keep their axes and quaternions are reinterpreted component for
// component; a Mirror mapper additionally flips handedness, which is required for skinned
// data (skeleton rest pose, animation samples, skinned vertices and the locators of skinned scenes).
//
// Pick the mapper once per value source and pass values through it exactly once.
package convention

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Mapper struct {
	Mirror bool
}

var (
	Static  = Mapper{}
	Skinned = Mapper{Mirror: true}
)

// For returns Skinned for mirrored sources and Static otherwise.
func For(mirror bool) Mapper {
	return Mapper{Mirror: mirror}
}

func (m Mapper) Position(v mgl32.Vec3) mgl32.Vec3 {
	if m.Mirror {
		v[0] = -v[0]
	}
	return v
}

// Direction maps normals, which mirror the same way positions do.
func (m Mapper) Direction(v mgl32.Vec3) mgl32.Vec3 {
	return m.Position(v)
}

// Rotation does not renormalize; a mirrored rotation has its x and w negated.
func (m Mapper) Rotation(q mgl32.Quat) mgl32.Quat {
	if m.Mirror {
		q.V[0] = -q.V[0]
		q.W = -q.W
	}
	return q
}

// Matrix reinterprets a stored matrix. Stored order is already the column-major layout mgl32 uses,
// so the translation lives in column 3. Mirroring applies to decomposed parts only (see Transform).
func (m Mapper) Matrix(mat mgl32.Mat4) mgl32.Mat4 {
	return mat
}

// Transform decomposes a stored matrix into a mapped position and rotation.
// Scale is discarded before the rotation is extracted.
func (m Mapper) Transform(mat mgl32.Mat4) (mgl32.Vec3, mgl32.Quat) {
	mat = m.Matrix(mat)
	position := mat.Col(3).Vec3()

	var basis mgl32.Mat3
	for col := 0; col < 3; col++ {
		c := mat.Col(col).Vec3()
		if l := c.Len(); l > 0 {
			c = c.Mul(1 / l)
		}
		basis.SetCol(col, c)
	}
	rotation := mgl32.Mat4ToQuat(basis.Mat4())

	return m.Position(position), m.Rotation(rotation)
}
