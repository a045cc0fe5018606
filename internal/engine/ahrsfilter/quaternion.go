package ahrsfilter

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Quaternion is a unit orientation quaternion, scalar-first (w, x, y, z).
type Quaternion struct {
	W, X, Y, Z float64
}

// Identity returns the identity orientation quaternion.
func Identity() Quaternion { return Quaternion{W: 1} }

// Normalize returns q scaled to unit length. If q is (numerically) the zero
// vector, Identity is returned rather than dividing by zero.
func (q Quaternion) Normalize() Quaternion {
	n := math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if n <= 0 {
		return Identity()
	}
	inv := 1.0 / n
	return Quaternion{q.W * inv, q.X * inv, q.Y * inv, q.Z * inv}
}

// Pitch returns the nose-up pitch angle in radians.
func (q Quaternion) Pitch() float64 {
	sinp := 2 * (q.W*q.Y - q.Z*q.X)
	if sinp > 1 {
		sinp = 1
	}
	if sinp < -1 {
		sinp = -1
	}
	return math.Asin(sinp)
}

// Roll returns the right-wing-down roll angle in radians.
func (q Quaternion) Roll() float64 {
	sinrCosp := 2 * (q.W*q.X + q.Y*q.Z)
	cosrCosp := 1 - 2*(q.X*q.X+q.Y*q.Y)
	return math.Atan2(sinrCosp, cosrCosp)
}

// Yaw returns the clockwise-from-north yaw angle in radians.
func (q Quaternion) Yaw() float64 {
	sinyCosp := 2 * (q.W*q.Z + q.X*q.Y)
	cosyCosp := 1 - 2*(q.Y*q.Y+q.Z*q.Z)
	return math.Atan2(sinyCosp, cosyCosp)
}

// DCM returns the body-to-world direction-cosine matrix for q.
func (q Quaternion) DCM() *mat.Dense {
	w, x, y, z := q.W, q.X, q.Y, q.Z
	return mat.NewDense(3, 3, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y),
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x),
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y),
	})
}
