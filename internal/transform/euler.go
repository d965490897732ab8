package transform

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// RotationMatrix composes the 3x3 rotation matrix for the given Euler angles
// (degrees, intrinsic XYZ order). It is the inverse of the angle extraction
// in Decompose, so Decompose followed by RotationMatrix reproduces the
// rotation block of the input transform.
func RotationMatrix(r Rotation) *mat.Dense {
	rx := r.X * math.Pi / 180
	ry := r.Y * math.Pi / 180
	rz := r.Z * math.Pi / 180

	cx, sx := math.Cos(rx), math.Sin(rx)
	cy, sy := math.Cos(ry), math.Sin(ry)
	cz, sz := math.Cos(rz), math.Sin(rz)

	mx := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, cx, -sx,
		0, sx, cx,
	})
	my := mat.NewDense(3, 3, []float64{
		cy, 0, sy,
		0, 1, 0,
		-sy, 0, cy,
	})
	mz := mat.NewDense(3, 3, []float64{
		cz, -sz, 0,
		sz, cz, 0,
		0, 0, 1,
	})

	var zy, out mat.Dense
	zy.Mul(mz, my)
	out.Mul(&zy, mx)
	return &out
}

// Compose builds a Transform from a position and Euler angles. The result
// round-trips through Decompose away from the gimbal-lock boundary.
func Compose(pos Position, rot Rotation) Transform {
	r := RotationMatrix(rot)
	var t Transform
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			t[row*4+col] = r.At(row, col)
		}
	}
	t[12], t[13], t[14] = pos.X, pos.Y, pos.Z
	t[15] = 1
	return t
}
