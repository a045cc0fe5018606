// Package magcal implements magnetometer hard/soft-iron calibration,
// field-magnitude disturbance detection, and declination-aware heading
// computation.
package magcal

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Field magnitude bounds (microtesla) considered a plausible undisturbed
// reading of Earth's magnetic field.
const (
	MinFieldUT = 20.0
	MaxFieldUT = 70.0
)

// Calibration holds the hard-iron offset and soft-iron correction matrix,
// plus the magnetic declination used for true-heading computation.
type Calibration struct {
	hardIron    [3]float64
	softIron    *mat.Dense // 3x3, row-major
	declination float64    // degrees, east positive

	isDisturbed bool
}

// New returns a Calibration with a zero hard-iron offset and an identity
// soft-iron matrix.
func New() *Calibration {
	c := &Calibration{}
	c.Init()
	return c
}

// Init resets the calibration to identity (no correction, zero
// declination).
func (c *Calibration) Init() {
	c.hardIron = [3]float64{}
	c.softIron = mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
	c.declination = 0
	c.isDisturbed = false
}

// SetCalibration sets the hard-iron offset vector and the row-major 3x3
// soft-iron correction matrix. A nil hardIron or softIron is treated as
// zero/identity respectively, matching the reference API's null-pointer
// boundary defaulting.
func (c *Calibration) SetCalibration(hardIron *[3]float64, softIron *[9]float64) {
	if hardIron == nil {
		c.hardIron = [3]float64{}
	} else {
		c.hardIron = *hardIron
	}
	if softIron == nil {
		c.softIron = mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	} else {
		c.softIron = mat.NewDense(3, 3, softIron[:])
	}
}

// SetDeclination sets the magnetic declination in degrees, east positive.
func (c *Calibration) SetDeclination(deg float64) { c.declination = deg }

// Declination returns the currently configured declination in degrees.
func (c *Calibration) Declination() float64 { return c.declination }

// Apply corrects a raw magnetometer reading (hard-iron subtraction then
// soft-iron matrix multiply) and reports whether the corrected field
// magnitude falls within the expected Earth-field range. The latched
// disturbance flag is updated as a side effect and is separately queryable
// via IsDisturbed, keeping the pure correction math distinct from that
// mutable diagnostic bookkeeping.
func (c *Calibration) Apply(mx, my, mz float64) (cx, cy, cz float64, ok bool) {
	raw := mat.NewVecDense(3, []float64{mx - c.hardIron[0], my - c.hardIron[1], mz - c.hardIron[2]})
	var corrected mat.VecDense
	corrected.MulVec(c.softIron, raw)

	cx, cy, cz = corrected.AtVec(0), corrected.AtVec(1), corrected.AtVec(2)
	mag := math.Sqrt(cx*cx + cy*cy + cz*cz)
	ok = mag >= MinFieldUT && mag <= MaxFieldUT
	c.isDisturbed = !ok
	return cx, cy, cz, ok
}

// IsDisturbed reports whether the most recent Apply call's corrected field
// magnitude fell outside the expected range.
func (c *Calibration) IsDisturbed() bool { return c.isDisturbed }

// ComputeHeading derives true heading in degrees [0, 360) from an AHRS yaw
// (radians) and the configured declination.
func (c *Calibration) ComputeHeading(yawRad float64) float64 {
	heading := yawRad*180.0/math.Pi + c.declination
	for heading < 0 {
		heading += 360
	}
	for heading >= 360 {
		heading -= 360
	}
	return heading
}
