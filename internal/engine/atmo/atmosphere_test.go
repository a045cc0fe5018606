package atmo

import (
	"math"
	"testing"
)

func TestNew_ISADefaults(t *testing.T) {
	a := New()
	if a.AirDensity() <= 0 || math.IsNaN(a.AirDensity()) {
		t.Fatalf("air density = %v, want positive finite", a.AirDensity())
	}
	if a.SpeedOfSound() <= 0 {
		t.Fatalf("speed of sound = %v, want positive", a.SpeedOfSound())
	}
	if a.DiagFlags()&DiagDefaultPressure == 0 {
		t.Fatalf("expected DiagDefaultPressure on a freshly initialized atmosphere")
	}
}

func TestUpdateFromBaro_SanitizesNonFiniteInputs(t *testing.T) {
	a := New()
	a.UpdateFromBaro(math.NaN(), math.Inf(1), -1)
	if !a.HadInvalidInput() {
		t.Fatalf("expected HadInvalidInput true for NaN/Inf baro input")
	}
	if a.Pressure() != defaultPressurePa {
		t.Fatalf("pressure = %v, want ISA default after NaN sanitization", a.Pressure())
	}
	if a.Temperature() != 15.0 {
		t.Fatalf("temperature = %v, want 15.0 after Inf sanitization", a.Temperature())
	}
}

func TestUpdateFromBaro_HumidityNegativeMeansNotProvided(t *testing.T) {
	a := New()
	a.UpdateFromBaro(101325, 15, 0.40)
	a.UpdateFromBaro(101325, 15, -1)
	if a.Humidity() != 0.40 {
		t.Fatalf("humidity = %v, want 0.40 preserved when not provided this sample", a.Humidity())
	}
	if a.HadInvalidInput() {
		t.Fatalf("humidity<0 (not provided) must not flag invalid input")
	}
}

func TestUpdateFromBaro_HumidityOutOfRangeClampedAndFlagged(t *testing.T) {
	a := New()
	a.UpdateFromBaro(101325, 15, 1.5)
	if a.Humidity() != 1.0 {
		t.Fatalf("humidity = %v, want clamped to 1.0", a.Humidity())
	}
	if !a.HadInvalidInput() {
		t.Fatalf("expected HadInvalidInput for out-of-range humidity")
	}
}

func TestUpdateFromBaro_PressureAndTemperatureClamp(t *testing.T) {
	a := New()
	a.UpdateFromBaro(1.0, -200, 0.5)
	if a.Pressure() != 1000.0 {
		t.Fatalf("pressure = %v, want clamped to 1000 Pa", a.Pressure())
	}
	if a.Temperature() != -80.0 {
		t.Fatalf("temperature = %v, want clamped to -80C", a.Temperature())
	}
	if !a.HadInvalidInput() {
		t.Fatalf("expected HadInvalidInput when clamping out-of-range baro values")
	}
}

func TestApplyDefaults_SensorTakesPrecedenceOverOverride(t *testing.T) {
	a := New()
	a.UpdateFromBaro(95000, 10, 0.3)
	a.ApplyDefaults(Defaults{UsePressure: true, PressurePa: 50000, UseTemperature: true, TemperatureC: 40})
	if a.Pressure() != 95000 {
		t.Fatalf("pressure = %v, want sensor value to win over override", a.Pressure())
	}
	if a.Temperature() != 10 {
		t.Fatalf("temperature = %v, want sensor value to win over override", a.Temperature())
	}
}

func TestApplyDefaults_AltitudeOverrideAlwaysWins(t *testing.T) {
	a := New()
	a.ApplyDefaults(Defaults{UseAltitude: true, AltitudeM: 1500})
	if a.Altitude() != 1500 {
		t.Fatalf("altitude = %v, want override applied", a.Altitude())
	}
	if a.DiagFlags()&DiagDefaultAltitude != 0 {
		t.Fatalf("altitude override set, DiagDefaultAltitude should be clear")
	}
}

func TestCalibrateBaro_MakesCurrentReadingReportAsStandard(t *testing.T) {
	a := New()
	a.UpdateFromBaro(95000, 15, 0.5)
	a.CalibrateBaro()
	a.UpdateFromBaro(95000, 15, 0.5)
	if math.Abs(a.Pressure()-stdPressurePa) > 1e-6 {
		t.Fatalf("pressure after calibration+reread = %v, want %v", a.Pressure(), stdPressurePa)
	}
}

func TestConsumeZeroRecomputeHint_LatchesAndClears(t *testing.T) {
	a := New()
	a.UpdateFromBaro(70000, -20, 0.1) // large atmosphere shift
	if !a.ConsumeZeroRecomputeHint() {
		t.Fatalf("expected zero recompute hint after large atmosphere shift")
	}
	if a.ConsumeZeroRecomputeHint() {
		t.Fatalf("hint should be cleared after consuming once")
	}
}

func TestCorrectBC_NeverBelowFloor(t *testing.T) {
	a := New()
	a.ApplyDefaults(Defaults{UseHumidity: true, HumidityFraction: 1.0})
	a.UpdateFromBaro(1000, 80, -1)
	got := a.CorrectBC(0.0001)
	if got < 0.01 {
		t.Fatalf("CorrectBC = %v, want floor of 0.01", got)
	}
}
