// Package corrections implements the two pure geometric correction
// transforms: wind decomposition and cant (roll) correction.
package corrections

import "math"

// Wind holds a manually-set wind vector (speed + heading wind comes FROM,
// degrees true), persisting until changed.
type Wind struct {
	speedMS    float64
	headingDeg float64
	isSet      bool
}

// SetWind sets the manual wind speed (m/s) and heading (degrees true, the
// direction the wind blows FROM).
func (w *Wind) SetWind(speedMS, headingDeg float64) {
	w.speedMS = speedMS
	w.headingDeg = headingDeg
	w.isSet = true
}

// Speed returns the configured wind speed in m/s.
func (w *Wind) Speed() float64 { return w.speedMS }

// Heading returns the configured wind heading in degrees true.
func (w *Wind) Heading() float64 { return w.headingDeg }

// IsSet reports whether SetWind has ever been called.
func (w *Wind) IsSet() bool { return w.isSet }

// Decompose splits the configured wind into headwind (positive = into the
// shooter's face) and crosswind (positive = right-to-left) components
// relative to the given firing azimuth (degrees true). Returns (0, 0) if
// wind was never set or is negligibly slow (< 1 mm/s).
func (w *Wind) Decompose(azimuthDeg float64) (headwind, crosswind float64) {
	if !w.isSet || w.speedMS < 0.001 {
		return 0, 0
	}
	angle := (w.headingDeg - azimuthDeg) * math.Pi / 180.0
	headwind = w.speedMS * math.Cos(angle)
	crosswind = w.speedMS * math.Sin(angle)
	return headwind, crosswind
}
