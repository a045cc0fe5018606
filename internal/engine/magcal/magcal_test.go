package magcal

import (
	"math"
	"testing"
)

func TestApply_IdentityCalibrationPassesThroughField(t *testing.T) {
	c := New()
	cx, cy, cz, ok := c.Apply(25, 0, 0)
	if !ok {
		t.Fatalf("expected 25uT field to be within range")
	}
	if cx != 25 || cy != 0 || cz != 0 {
		t.Fatalf("identity calibration changed the field: (%v,%v,%v)", cx, cy, cz)
	}
}

func TestApply_HardIronSubtractsOffset(t *testing.T) {
	c := New()
	hard := [3]float64{5, -3, 2}
	c.SetCalibration(&hard, nil)
	cx, cy, cz, _ := c.Apply(30, -3, 2)
	if math.Abs(cx-25) > 1e-9 || math.Abs(cy-0) > 1e-9 || math.Abs(cz-0) > 1e-9 {
		t.Fatalf("hard-iron subtraction wrong: (%v,%v,%v)", cx, cy, cz)
	}
}

func TestApply_SoftIronScalesAxis(t *testing.T) {
	c := New()
	soft := [9]float64{
		2, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
	c.SetCalibration(nil, &soft)
	cx, _, _, _ := c.Apply(10, 0, 0)
	if math.Abs(cx-20) > 1e-9 {
		t.Fatalf("soft-iron scaling wrong: got %v, want 20", cx)
	}
}

func TestApply_DisturbanceDetection(t *testing.T) {
	c := New()
	if _, _, _, ok := c.Apply(100, 0, 0); ok {
		t.Fatalf("100uT should be flagged disturbed (outside [20,70])")
	}
	if !c.IsDisturbed() {
		t.Fatalf("IsDisturbed should latch true after an out-of-range reading")
	}
	if _, _, _, ok := c.Apply(30, 0, 0); !ok {
		t.Fatalf("30uT should not be disturbed")
	}
	if c.IsDisturbed() {
		t.Fatalf("IsDisturbed should clear after a subsequent in-range reading")
	}
}

func TestComputeHeading_NormalizesTo360Range(t *testing.T) {
	c := New()
	c.SetDeclination(-10)
	h := c.ComputeHeading(0) // yaw = 0 -> -10 deg -> normalize to 350
	if math.Abs(h-350) > 1e-9 {
		t.Fatalf("heading = %v, want 350", h)
	}

	c.SetDeclination(0)
	h = c.ComputeHeading(3 * math.Pi / 2) // 270 deg, already in range: no wrap needed
	if h < 0 || h >= 360 {
		t.Fatalf("heading out of [0,360): %v", h)
	}

	c.SetDeclination(400) // force a positive wrap path
	h = c.ComputeHeading(0)
	if math.Abs(h-40) > 1e-9 {
		t.Fatalf("heading = %v, want 40 after wrapping 400 deg declination", h)
	}
}
