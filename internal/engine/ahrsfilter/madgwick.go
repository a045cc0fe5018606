package ahrsfilter

import "math"

// DefaultMadgwickBeta is the gradient-descent step gain used unless an
// algorithm is explicitly reconfigured.
const DefaultMadgwickBeta = 0.1

// Madgwick is Sebastian Madgwick's gradient-descent orientation filter. It
// is used as a value (not behind a heap-allocated interface) and dispatched
// on by Manager's algorithm tag.
type Madgwick struct {
	Beta float64
	q    Quaternion
}

// NewMadgwick returns a Madgwick filter at the identity orientation with the
// default beta gain.
func NewMadgwick() *Madgwick {
	return &Madgwick{Beta: DefaultMadgwickBeta, q: Identity()}
}

// Reset returns the filter to the identity orientation without altering
// Beta.
func (m *Madgwick) Reset() { m.q = Identity() }

// Quaternion returns the current orientation estimate.
func (m *Madgwick) Quaternion() Quaternion { return m.q }

// Update advances the filter by dt seconds given bias-corrected gyro
// (rad/s), accel (m/s^2), and optionally magnetometer (uT) samples. useMag
// selects between the 6-axis (IMU-only) and 9-axis gradient paths.
func (m *Madgwick) Update(ax, ay, az, gx, gy, gz, mx, my, mz float64, useMag bool, dt float64) {
	q0, q1, q2, q3 := m.q.W, m.q.X, m.q.Y, m.q.Z

	// Rate of change from gyroscope.
	qDot1 := 0.5 * (-q1*gx - q2*gy - q3*gz)
	qDot2 := 0.5 * (q0*gx + q2*gz - q3*gy)
	qDot3 := 0.5 * (q0*gy - q1*gz + q3*gx)
	qDot4 := 0.5 * (q0*gz + q1*gy - q2*gx)

	accelOK := !(ax == 0 && ay == 0 && az == 0)
	if accelOK {
		norm := math.Sqrt(ax*ax + ay*ay + az*az)
		ax, ay, az = ax/norm, ay/norm, az/norm

		if useMag && !(mx == 0 && my == 0 && mz == 0) {
			mnorm := math.Sqrt(mx*mx + my*my + mz*mz)
			mx, my, mz = mx/mnorm, my/mnorm, mz/mnorm

			// Reference direction of Earth's magnetic field.
			hx := 2 * (mx*(0.5-q2*q2-q3*q3) + my*(q1*q2-q0*q3) + mz*(q1*q3+q0*q2))
			hy := 2 * (mx*(q1*q2+q0*q3) + my*(0.5-q1*q1-q3*q3) + mz*(q2*q3-q0*q1))
			bz := 2 * (mx*(q1*q3-q0*q2) + my*(q2*q3+q0*q1) + mz*(0.5-q1*q1-q2*q2))
			bx := math.Sqrt(hx*hx + hy*hy)

			// Gradient descent corrective step for accel+mag.
			f1 := 2*(q1*q3-q0*q2) - ax
			f2 := 2*(q0*q1+q2*q3) - ay
			f3 := 2*(0.5-q1*q1-q2*q2) - az
			f4 := 2*bx*(0.5-q2*q2-q3*q3) + 2*bz*(q1*q3-q0*q2) - mx
			f5 := 2*bx*(q1*q2-q0*q3) + 2*bz*(q0*q1+q2*q3) - my
			f6 := 2*bx*(q0*q2+q1*q3) + 2*bz*(0.5-q1*q1-q2*q2) - mz

			j11or24, j12or23, j13or22, j14or21 := 2*q2, 2*q3, 2*q0, 2*q1
			j32, j33 := 2*q1, 2*q2
			j41, j42, j43, j44 := 2*bz*q2, 2*bz*q3, 2*bx*q2+2*bz*q0, 2*bx*q3-4*bz*q1
			j51, j52, j53, j54 := 2*bx*q3-2*bz*q1, 2*bx*q2+2*bz*q0, 2*bx*q1+2*bz*q3, 2*bx*q0-2*bz*q2
			j61, j62, j63, j64 := 2*bx*q2, 2*bx*q3-4*bz*q1, 2*bx*q0-4*bz*q2, 2*bx*q1

			s0 := j14or21*f2 - j11or24*f1 - j41*f4 - j51*f5 + j61*f6
			s1 := j12or23*f1 + j13or22*f2 - j32*f3 + j42*f4 + j52*f5 + j62*f6
			s2 := j12or23*f2 - j33*f3 - j13or22*f1 - j43*f4 + j53*f5 + j63*f6
			s3 := j14or21*f1 + j11or24*f2 - j44*f4 - j54*f5 + j64*f6

			applyGradient(m, &qDot1, &qDot2, &qDot3, &qDot4, s0, s1, s2, s3)
		} else {
			// 6-axis accel-only gradient descent.
			f1 := 2*(q1*q3-q0*q2) - ax
			f2 := 2*(q0*q1+q2*q3) - ay
			f3 := 2*(0.5-q1*q1-q2*q2) - az

			j11or24, j12or23, j13or22, j14or21 := 2*q2, 2*q3, 2*q0, 2*q1
			j32, j33 := 2*q1, 2*q2

			s0 := j14or21*f2 - j11or24*f1
			s1 := j12or23*f1 + j13or22*f2 - j32*f3
			s2 := j12or23*f2 - j33*f3 - j13or22*f1
			s3 := j14or21*f1 + j11or24*f2

			applyGradient(m, &qDot1, &qDot2, &qDot3, &qDot4, s0, s1, s2, s3)
		}
	}

	q0 += qDot1 * dt
	q1 += qDot2 * dt
	q2 += qDot3 * dt
	q3 += qDot4 * dt

	m.q = Quaternion{q0, q1, q2, q3}.Normalize()
}

func applyGradient(m *Madgwick, qDot1, qDot2, qDot3, qDot4 *float64, s0, s1, s2, s3 float64) {
	norm := math.Sqrt(s0*s0 + s1*s1 + s2*s2 + s3*s3)
	if norm <= 0 {
		return
	}
	s0, s1, s2, s3 = s0/norm, s1/norm, s2/norm, s3/norm
	*qDot1 -= m.Beta * s0
	*qDot2 -= m.Beta * s1
	*qDot3 -= m.Beta * s2
	*qDot4 -= m.Beta * s3
}
