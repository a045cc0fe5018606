package ahrsfilter

import (
	"math"
	"testing"
)

func TestManager_QuaternionStaysNormalizedOverManySteps(t *testing.T) {
	m := NewManager()
	for i := 0; i < 10000; i++ {
		m.Update(0, 0, 9.81, 0.01, -0.02, 0.03, 22, 5, 43, true, 0.01)
		q := m.Quaternion()
		n := math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
		if math.Abs(n-1) > 1e-3 {
			t.Fatalf("step %d: quaternion norm = %v, want within 1e-3 of 1", i, n)
		}
	}
}

func TestManager_StaticDetector_RequiresFullWindow(t *testing.T) {
	m := NewManager()
	for i := 0; i < StaticWindow-1; i++ {
		m.Update(0, 0, 9.81, 0, 0, 0, 0, 0, 0, false, 0.01)
	}
	if m.IsStable() {
		t.Fatalf("IsStable should be false before the window fills")
	}
	m.Update(0, 0, 9.81, 0, 0, 0, 0, 0, 0, false, 0.01)
	if !m.IsStable() {
		t.Fatalf("IsStable should be true once the window fills with constant gravity samples")
	}
}

func TestManager_StaticDetector_DetectsMotion(t *testing.T) {
	m := NewManager()
	for i := 0; i < StaticWindow; i++ {
		m.Update(0, 0, 9.81, 0, 0, 0, 0, 0, 0, false, 0.01)
	}
	if !m.IsStatic() {
		t.Fatalf("expected static after constant-gravity samples")
	}
	for i := 0; i < StaticWindow; i++ {
		jitter := 5.0
		if i%2 == 0 {
			jitter = -5.0
		}
		m.Update(jitter, jitter, 9.81+jitter, 0, 0, 0, 0, 0, 0, false, 0.01)
	}
	if m.IsStatic() {
		t.Fatalf("expected non-static after large accel swings")
	}
}

func TestManager_AlgorithmSwitchPreservesEachFilterState(t *testing.T) {
	m := NewManager()
	m.SetAlgorithm(AlgorithmMahony)
	for i := 0; i < 50; i++ {
		m.Update(0.1, 0, 9.81, 0, 0, 0.05, 0, 0, 0, false, 0.01)
	}
	mahonyQ := m.Quaternion()

	m.SetAlgorithm(AlgorithmMadgwick)
	madgwickQ := m.Quaternion()
	if madgwickQ == mahonyQ {
		t.Fatalf("switching algorithms should expose the other filter's independent state")
	}

	m.SetAlgorithm(AlgorithmMahony)
	if m.Quaternion() != mahonyQ {
		t.Fatalf("switching back to Mahony should resume its own unreset state")
	}
}

func TestManager_BiasSubtractionAppliedBeforeDispatch(t *testing.T) {
	m := NewManager()
	m.SetGyroBias([3]float64{0.02, 0, 0})
	m.Update(0, 0, 9.81, 0.02, 0, 0, 0, 0, 0, false, 0.01)
	if math.Abs(m.lastGyro[0]) > 1e-9 {
		t.Fatalf("gyro bias should cancel the input rate, got %v", m.lastGyro[0])
	}
}

func TestManager_CaptureGyroBiasUsesLastBiasFreeSample(t *testing.T) {
	m := NewManager()
	m.Update(0, 0, 9.81, 0.05, -0.03, 0.02, 0, 0, 0, false, 0.01)
	m.CaptureGyroBias()
	m.Update(0, 0, 9.81, 0.05, -0.03, 0.02, 0, 0, 0, false, 0.01)
	if math.Abs(m.lastGyro[0]) > 1e-9 || math.Abs(m.lastGyro[1]) > 1e-9 || math.Abs(m.lastGyro[2]) > 1e-9 {
		t.Fatalf("after capturing bias from a constant input, next sample should be bias-free: %v", m.lastGyro)
	}
}
