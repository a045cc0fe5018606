package ahrsfilter

import "math"

// Default Mahony complementary-filter gains.
const (
	DefaultMahonyKp = 2.0
	DefaultMahonyKi = 0.005
)

// Mahony is the Mahony explicit complementary filter: proportional feedback
// from the cross-product error plus an integral accumulator. Used as a
// value, dispatched on by Manager's algorithm tag, matching Madgwick's
// calling convention.
type Mahony struct {
	Kp, Ki float64
	q      Quaternion

	integralFBx, integralFBy, integralFBz float64
}

// NewMahony returns a Mahony filter at the identity orientation with the
// default gains.
func NewMahony() *Mahony {
	return &Mahony{Kp: DefaultMahonyKp, Ki: DefaultMahonyKi, q: Identity()}
}

// Reset returns the filter to the identity orientation and clears the
// integral feedback accumulator.
func (m *Mahony) Reset() {
	m.q = Identity()
	m.integralFBx, m.integralFBy, m.integralFBz = 0, 0, 0
}

// Quaternion returns the current orientation estimate.
func (m *Mahony) Quaternion() Quaternion { return m.q }

// Update advances the filter by dt seconds, following the same convention
// as Madgwick.Update.
func (m *Mahony) Update(ax, ay, az, gx, gy, gz, mx, my, mz float64, useMag bool, dt float64) {
	q0, q1, q2, q3 := m.q.W, m.q.X, m.q.Y, m.q.Z

	var ex, ey, ez float64

	accelOK := !(ax == 0 && ay == 0 && az == 0)
	if accelOK {
		norm := math.Sqrt(ax*ax + ay*ay + az*az)
		ax, ay, az = ax/norm, ay/norm, az/norm

		// Estimated gravity direction.
		vx := 2 * (q1*q3 - q0*q2)
		vy := 2 * (q0*q1 + q2*q3)
		vz := q0*q0 - q1*q1 - q2*q2 + q3*q3

		ex += ay*vz - az*vy
		ey += az*vx - ax*vz
		ez += ax*vy - ay*vx

		if useMag && !(mx == 0 && my == 0 && mz == 0) {
			mnorm := math.Sqrt(mx*mx + my*my + mz*mz)
			mx, my, mz = mx/mnorm, my/mnorm, mz/mnorm

			hx := 2 * (mx*(0.5-q2*q2-q3*q3) + my*(q1*q2-q0*q3) + mz*(q1*q3+q0*q2))
			hy := 2 * (mx*(q1*q2+q0*q3) + my*(0.5-q1*q1-q3*q3) + mz*(q2*q3-q0*q1))
			bz := 2 * (mx*(q1*q3-q0*q2) + my*(q2*q3+q0*q1) + mz*(0.5-q1*q1-q2*q2))
			bx := math.Sqrt(hx*hx + hy*hy)

			wx := 2*bx*(0.5-q2*q2-q3*q3) + 2*bz*(q1*q3-q0*q2)
			wy := 2*bx*(q1*q2-q0*q3) + 2*bz*(q0*q1+q2*q3)
			wz := 2*bx*(q0*q2+q1*q3) + 2*bz*(0.5-q1*q1-q2*q2)

			ex += my*wz - mz*wy
			ey += mz*wx - mx*wz
			ez += mx*wy - my*wx
		}
	}

	if ex != 0 || ey != 0 || ez != 0 {
		if m.Ki > 0 {
			m.integralFBx += m.Ki * ex * dt
			m.integralFBy += m.Ki * ey * dt
			m.integralFBz += m.Ki * ez * dt
			gx += m.integralFBx
			gy += m.integralFBy
			gz += m.integralFBz
		}
		gx += m.Kp * ex
		gy += m.Kp * ey
		gz += m.Kp * ez
	}

	qDot1 := 0.5 * (-q1*gx - q2*gy - q3*gz)
	qDot2 := 0.5 * (q0*gx + q2*gz - q3*gy)
	qDot3 := 0.5 * (q0*gy - q1*gz + q3*gx)
	qDot4 := 0.5 * (q0*gz + q1*gy - q2*gx)

	q0 += qDot1 * dt
	q1 += qDot2 * dt
	q2 += qDot3 * dt
	q3 += qDot4 * dt

	m.q = Quaternion{q0, q1, q2, q3}.Normalize()
}
