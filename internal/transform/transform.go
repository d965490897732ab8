// Package transform decomposes tracked-camera transforms into the
// position and Euler-angle representation sent downstream.
package transform

import "math"

// Transform is a row-major 4x4 homogeneous matrix encoding the rotation and
// translation of a tracked camera. The upper-left 3x3 block is assumed
// orthonormal; no validation is performed, so a degenerate matrix yields
// well-defined but physically meaningless angles.
type Transform [16]float64

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Position is a camera translation in scene units.
type Position struct {
	X, Y, Z float64
}

// Rotation is a camera orientation as Euler angles in degrees, applied in
// intrinsic XYZ order.
type Rotation struct {
	X, Y, Z float64
}

// Decompose extracts position and Euler angles from t. Position is the raw
// translation column; rotation is recovered from the 3x3 block with the
// gimbal-lock singularity (|t[8]| >= 1, pitch at ±90°) handled by pinning
// roll to zero. Pure function, safe for concurrent use.
func Decompose(t Transform) (Position, Rotation) {
	pos := Position{X: t[12], Y: t[13], Z: t[14]}

	rzx := t[8]
	var rx, ry, rz float64
	if math.Abs(rzx) >= 1.0 {
		// Gimbal lock: yaw and roll collapse into one degree of freedom.
		ry = math.Copysign(math.Pi/2, -rzx)
		rz = 0
		rx = math.Atan2(-t[6], t[5])
	} else {
		ry = math.Asin(-rzx)
		rx = math.Atan2(t[9], t[10])
		rz = math.Atan2(t[4], t[0])
	}

	return pos, Rotation{
		X: rx * 180 / math.Pi,
		Y: ry * 180 / math.Pi,
		Z: rz * 180 / math.Pi,
	}
}
