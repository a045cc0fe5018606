// Package atmo implements the atmospheric model: air density, speed of
// sound, and the 4-factor ballistic-coefficient correction, derived from
// barometer readings and/or configured defaults.
package atmo

import (
	"math"

	"github.com/koenig-jacob/DOPE/internal/engine/xmath"
)

// Diagnostic flags this package can contribute to the engine's diag mask.
// Values match the engine-level BCE_Diag bit layout; kept local so this
// package has no dependency on the engine package.
const (
	DiagDefaultPressure uint32 = 1 << 1
	DiagDefaultTemp     uint32 = 1 << 2
	DiagDefaultHumidity uint32 = 1 << 3
	DiagDefaultAltitude uint32 = 1 << 4
)

const (
	defaultAltitudeM    = 0.0
	defaultPressurePa   = 101325.0
	defaultTemperatureC = 15.0
	defaultHumidity     = 0.50

	rDryAir           = 287.05
	stdAirDensity     = 1.2250
	speedOfSound15C   = 340.29
	stdPressurePa     = 101325.0
	kelvinOffset      = 273.15
	zeroRecomputeBC  = 0.0015
	zeroRecomputeRho = 0.005
	zeroRecomputeSoS = 0.75
)

// Defaults mirrors the per-field default-override structure (spec.md §3
// DefaultOverrides, restricted to the atmospheric fields this package owns).
type Defaults struct {
	UseAltitude bool
	AltitudeM   float64

	UsePressure bool
	PressurePa  float64

	UseTemperature bool
	TemperatureC   float64

	UseHumidity      bool
	HumidityFraction float64
}

// Atmosphere holds the current environment state and derived quantities.
type Atmosphere struct {
	pressurePa   float64
	temperatureC float64
	humidity     float64
	altitudeM    float64

	airDensity    float64
	speedOfSound  float64
	baroOffsetPa  float64

	hasBaroPressure    bool
	hasBaroTemperature bool
	hasBaroHumidity    bool
	hasOverrideAltitude    bool
	hasOverridePressure    bool
	hasOverrideTemperature bool
	hasOverrideHumidity    bool

	hadInvalidInput     bool
	zeroRecomputeHint   bool
	lastBCFactor        float64

	diagFlags uint32
}

// New returns an Atmosphere initialized to ISA defaults.
func New() *Atmosphere {
	a := &Atmosphere{}
	a.Init()
	return a
}

// Init resets the atmosphere to ISA defaults, as if newly constructed.
func (a *Atmosphere) Init() {
	*a = Atmosphere{
		pressurePa:   defaultPressurePa,
		temperatureC: defaultTemperatureC,
		humidity:     defaultHumidity,
		altitudeM:    defaultAltitudeM,
		airDensity:   stdAirDensity,
		speedOfSound: speedOfSound15C,
		lastBCFactor: 1.0,
	}
	a.recompute()
}

// UpdateFromBaro feeds one barometer sample. humidity < 0 means "not
// provided this sample" and is treated as absent rather than invalid.
func (a *Atmosphere) UpdateFromBaro(pressurePa, temperatureC, humidity float64) {
	a.hadInvalidInput = false

	p := pressurePa + a.baroOffsetPa
	if !xmath.IsFinite(p) {
		p = defaultPressurePa
		a.hadInvalidInput = true
	}
	clampedP := xmath.Clamp(p, 1000.0, 120000.0)
	if clampedP != p {
		a.hadInvalidInput = true
	}
	p = clampedP
	a.pressurePa = p
	a.hasBaroPressure = true

	tc := temperatureC
	if !xmath.IsFinite(tc) {
		tc = 15.0
		a.hadInvalidInput = true
	}
	clampedT := xmath.Clamp(tc, -80.0, 80.0)
	if clampedT != tc {
		a.hadInvalidInput = true
	}
	tc = clampedT
	a.temperatureC = tc
	a.hasBaroTemperature = true

	if humidity >= 0 && humidity <= 1 {
		a.humidity = humidity
		a.hasBaroHumidity = true
	} else if humidity >= 0 {
		// Finite but out of [0,1]: sanitize and flag, but it was "provided".
		a.humidity = xmath.Clamp(humidity, 0, 1)
		a.hasBaroHumidity = true
		a.hadInvalidInput = true
	}
	// humidity < 0: not provided this sample; has_baro_humidity_ unchanged.

	a.recompute()
}

// ApplyDefaults applies per-field default overrides. Altitude has no sensor
// counterpart so an override always wins; pressure/temperature/humidity
// overrides only take effect when the corresponding baro field is absent.
func (a *Atmosphere) ApplyDefaults(d Defaults) {
	if d.UseAltitude {
		a.altitudeM = d.AltitudeM
		a.hasOverrideAltitude = true
	}
	if d.UsePressure {
		a.hasOverridePressure = true
		if !a.hasBaroPressure {
			a.pressurePa = d.PressurePa
		}
	}
	if d.UseTemperature {
		a.hasOverrideTemperature = true
		if !a.hasBaroTemperature {
			a.temperatureC = d.TemperatureC
		}
	}
	if d.UseHumidity {
		a.hasOverrideHumidity = true
		if !a.hasBaroHumidity {
			a.humidity = d.HumidityFraction
		}
	}
	a.recompute()
}

// CalibrateBaro captures the current pressure as the ISA-standard reference,
// storing an offset so the next identical reading reports as standard
// pressure.
func (a *Atmosphere) CalibrateBaro() {
	a.baroOffsetPa = stdPressurePa - (a.pressurePa - a.baroOffsetPa)
	a.recompute()
}

// AirDensity returns the current derived air density (kg/m^3).
func (a *Atmosphere) AirDensity() float64 { return a.airDensity }

// SpeedOfSound returns the current derived speed of sound (m/s).
func (a *Atmosphere) SpeedOfSound() float64 { return a.speedOfSound }

// Pressure returns the current pressure (Pa).
func (a *Atmosphere) Pressure() float64 { return a.pressurePa }

// Temperature returns the current temperature (deg C).
func (a *Atmosphere) Temperature() float64 { return a.temperatureC }

// Humidity returns the current humidity fraction.
func (a *Atmosphere) Humidity() float64 { return a.humidity }

// Altitude returns the current station altitude (m).
func (a *Atmosphere) Altitude() float64 { return a.altitudeM }

// HadInvalidInput reports whether the most recent UpdateFromBaro call
// sanitized a non-physical input.
func (a *Atmosphere) HadInvalidInput() bool { return a.hadInvalidInput }

// DiagFlags returns diagnostic bits for which fields are currently running
// on a default rather than a live sensor reading.
func (a *Atmosphere) DiagFlags() uint32 { return a.diagFlags }

// ConsumeZeroRecomputeHint returns and clears the latched "atmosphere
// changed enough to justify a zero recompute" flag.
func (a *Atmosphere) ConsumeZeroRecomputeHint() bool {
	hint := a.zeroRecomputeHint
	a.zeroRecomputeHint = false
	return hint
}

// CorrectBC applies the Litz/Army-Metro 4-factor correction (altitude,
// temperature, pressure, humidity) to a standard-condition BC, computed in
// imperial units for reference compatibility.
func (a *Atmosphere) CorrectBC(bcStandard float64) float64 {
	altitudeFt := a.altitudeM * 3.28084
	tempF := a.temperatureC*9.0/5.0 + 32.0
	pressureInHg := a.pressurePa / 3386.389

	fa := math.Max(0.5, 1-3.158e-5*altitudeFt)
	ft := (tempF - 59) / (59 + 460)
	fp := (29.53 - pressureInHg) / 29.53
	fr := 1 + 2e-5*(a.humidity*100-50)

	return math.Max(0.01, bcStandard*fa*(1+ft-fp)*fr)
}

func (a *Atmosphere) recompute() {
	tK := math.Max(a.temperatureC+kelvinOffset, 1.0)
	eSat := 611.21 * math.Exp((18.678-a.temperatureC/234.5)*(a.temperatureC/(257.14+a.temperatureC)))
	tV := tK * (1 + 0.378*a.humidity*eSat/a.pressurePa)

	newDensity := a.pressurePa / (rDryAir * tV)
	newSoS := 20.05 * math.Sqrt(tV)

	newBCFactor := a.CorrectBC(1.0)

	if math.Abs(newBCFactor-a.lastBCFactor) >= zeroRecomputeBC ||
		math.Abs(newDensity-a.airDensity) >= zeroRecomputeRho ||
		math.Abs(newSoS-a.speedOfSound) >= zeroRecomputeSoS {
		a.zeroRecomputeHint = true
	}

	a.airDensity = newDensity
	a.speedOfSound = newSoS
	a.lastBCFactor = newBCFactor

	var diag uint32
	if !a.hasBaroPressure && !a.hasOverridePressure {
		diag |= DiagDefaultPressure
	}
	if !a.hasBaroTemperature && !a.hasOverrideTemperature {
		diag |= DiagDefaultTemp
	}
	if !a.hasBaroHumidity && !a.hasOverrideHumidity {
		diag |= DiagDefaultHumidity
	}
	if !a.hasOverrideAltitude {
		diag |= DiagDefaultAltitude
	}
	a.diagFlags = diag
}
