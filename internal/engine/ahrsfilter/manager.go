package ahrsfilter

import "math"

// Algorithm selects which filter variant the Manager dispatches to.
type Algorithm uint8

const (
	AlgorithmMadgwick Algorithm = 0
	AlgorithmMahony   Algorithm = 1
)

// StaticWindow is the ring-buffer size (in samples) the static/dynamic
// detector uses.
const StaticWindow = 64

// StaticThreshold is the accel-magnitude variance ((m/s^2)^2) below which
// the device is considered static.
const StaticThreshold = 0.05

// Manager owns both filter variants as value members and dispatches to the
// selected one by tag, applying bias correction first and running the
// static/dynamic detector on every sample regardless of which filter is
// active. This mirrors spec.md §9's guidance to express the {Madgwick,
// Mahony} choice as a tagged sum rather than a heap-allocated interface.
type Manager struct {
	algorithm Algorithm
	madgwick  Madgwick
	mahony    Mahony

	accelBias [3]float64
	gyroBias  [3]float64

	accelMagBuf [StaticWindow]float64
	bufIndex    int
	sampleCount uint32
	isStatic    bool

	lastGyro [3]float64
}

// NewManager returns a Manager defaulted to the Madgwick algorithm.
func NewManager() *Manager {
	m := &Manager{}
	m.Init()
	return m
}

// Init resets the manager to its power-on state: identity orientation on
// both filters, zero biases, empty static-detection window, Madgwick
// selected.
func (m *Manager) Init() {
	*m = Manager{
		madgwick: *NewMadgwick(),
		mahony:   *NewMahony(),
	}
}

// SetAlgorithm switches the active filter. The inactive filter retains its
// own internal state (it is not reset), so switching back and forth does
// not lose convergence, mirroring the reference engine's behavior.
func (m *Manager) SetAlgorithm(a Algorithm) { m.algorithm = a }

// Algorithm returns the currently selected filter variant.
func (m *Manager) Algorithm() Algorithm { return m.algorithm }

// SetAccelBias sets the accelerometer bias vector (m/s^2) subtracted before
// dispatch.
func (m *Manager) SetAccelBias(b [3]float64) { m.accelBias = b }

// SetGyroBias sets the gyroscope bias vector (rad/s) subtracted before
// dispatch.
func (m *Manager) SetGyroBias(b [3]float64) { m.gyroBias = b }

// CaptureGyroBias adds the last observed (already bias-corrected) gyro
// sample to the bias vector, so the new bias equals that sample's raw
// reading. The caller is responsible for ensuring the device is stationary
// when calling this.
func (m *Manager) CaptureGyroBias() {
	m.gyroBias[0] += m.lastGyro[0]
	m.gyroBias[1] += m.lastGyro[1]
	m.gyroBias[2] += m.lastGyro[2]
}

// Update feeds one raw (uncorrected) IMU sample, and optionally a
// magnetometer sample, into the active filter after subtracting the
// configured biases. It also updates the static/dynamic detector.
func (m *Manager) Update(ax, ay, az, gx, gy, gz, mx, my, mz float64, useMag bool, dt float64) {
	ax -= m.accelBias[0]
	ay -= m.accelBias[1]
	az -= m.accelBias[2]
	gx -= m.gyroBias[0]
	gy -= m.gyroBias[1]
	gz -= m.gyroBias[2]

	m.lastGyro = [3]float64{gx, gy, gz}
	m.updateStaticDetection(ax, ay, az)

	switch m.algorithm {
	case AlgorithmMahony:
		m.mahony.Update(ax, ay, az, gx, gy, gz, mx, my, mz, useMag, dt)
	default:
		m.madgwick.Update(ax, ay, az, gx, gy, gz, mx, my, mz, useMag, dt)
	}
}

// Quaternion returns the active filter's current orientation.
func (m *Manager) Quaternion() Quaternion {
	if m.algorithm == AlgorithmMahony {
		return m.mahony.Quaternion()
	}
	return m.madgwick.Quaternion()
}

// Pitch, Roll, and Yaw return the active filter's orientation decomposed
// into Euler angles, passed through unmodified from the active filter's
// Quaternion helpers. This is the decomposition the engine orchestrator
// consumes.
func (m *Manager) Pitch() float64 { return m.Quaternion().Pitch() }
func (m *Manager) Roll() float64  { return m.Quaternion().Roll() }
func (m *Manager) Yaw() float64   { return m.Quaternion().Yaw() }

// IsStatic reports whether the device is currently judged stationary.
func (m *Manager) IsStatic() bool { return m.isStatic }

// IsStable reports whether the static detector has both filled its window
// and currently judges the device stationary.
func (m *Manager) IsStable() bool {
	return m.sampleCount >= StaticWindow && m.isStatic
}

func (m *Manager) updateStaticDetection(ax, ay, az float64) {
	mag := sqrt3(ax, ay, az)
	m.accelMagBuf[m.bufIndex] = mag
	m.bufIndex = (m.bufIndex + 1) % StaticWindow
	if m.sampleCount < StaticWindow {
		m.sampleCount++
	}

	n := int(m.sampleCount)
	if n == 0 {
		return
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += m.accelMagBuf[i]
	}
	mean := sum / float64(n)
	var variance float64
	for i := 0; i < n; i++ {
		d := m.accelMagBuf[i] - mean
		variance += d * d
	}
	variance /= float64(n)
	m.isStatic = variance < StaticThreshold
}

func sqrt3(x, y, z float64) float64 {
	return math.Sqrt(x*x + y*y + z*z)
}
