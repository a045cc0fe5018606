// Package drag implements G1-G8 reference drag-coefficient tables and the
// deceleration model the solver integrates against.
package drag

import "github.com/koenig-jacob/DOPE/internal/engine/xmath"

// Model identifies a standard small-arms reference drag curve.
type Model uint8

const (
	G1 Model = 1
	G2 Model = 2
	G3 Model = 3
	G4 Model = 4
	G5 Model = 5
	G6 Model = 6
	G7 Model = 7
	G8 Model = 8
)

func (m Model) String() string {
	switch m {
	case G1:
		return "G1"
	case G2:
		return "G2"
	case G3:
		return "G3"
	case G4:
		return "G4"
	case G5:
		return "G5"
	case G6:
		return "G6"
	case G7:
		return "G7"
	case G8:
		return "G8"
	default:
		return "unknown"
	}
}

// point is one (Mach, Cd) entry of a reference table.
type point struct {
	mach float64
	cd   float64
}

// legacyDragConstant is a non-physical scale factor in the deceleration
// model, retained exactly as the reference implementation defines it. Do
// not change without re-validating the whole system against historical
// calibration data.
const legacyDragConstant = 900.0

// stdAirDensity is the ISA sea-level reference density (kg/m^3) the
// deceleration model normalizes against.
const stdAirDensity = 1.2250

// table returns the reference points for m, or nil if m is not recognized.
func table(m Model) []point {
	switch m {
	case G1:
		return g1Table
	case G2:
		return g2Table
	case G3:
		return g3Table
	case G4:
		return g4Table
	case G5:
		return g5Table
	case G6:
		return g6Table
	case G7:
		return g7Table
	case G8:
		return g8Table
	default:
		return nil
	}
}

// Cd returns the reference drag coefficient for model at the given Mach
// number. mach is clamped to the table's domain before lookup; the result
// is always positive and finite for a recognized model. Unrecognized
// models fall back to G1.
func Cd(model Model, mach float64) float64 {
	pts := table(model)
	if pts == nil {
		pts = g1Table
	}
	if mach <= pts[0].mach {
		return pts[0].cd
	}
	last := len(pts) - 1
	if mach >= pts[last].mach {
		return pts[last].cd
	}

	lo, hi := 0, last
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if pts[mid].mach <= mach {
			lo = mid
		} else {
			hi = mid
		}
	}
	t := (mach - pts[lo].mach) / (pts[hi].mach - pts[lo].mach)
	return xmath.Lerp(pts[lo].cd, pts[hi].cd, t)
}

// Deceleration returns the drag deceleration magnitude (m/s^2) for a
// bullet traveling at v (m/s) through air of the given density, using a
// BC already corrected for current atmosphere. referenceScale applies an
// additional tuning multiplier clamped to [0.2, 2.0] (1.0 = legacy
// baseline, 0.84 = external-reference calibration mode).
func Deceleration(v, speedOfSound, bcCorrected float64, model Model, airDensity, referenceScale float64) float64 {
	if v < 1.0 || bcCorrected < 1e-3 {
		return 0
	}
	mach := 0.0
	if speedOfSound > 0 {
		mach = v / speedOfSound
	}
	cd := Cd(model, mach)
	scale := xmath.Clamp(referenceScale, 0.2, 2.0)
	return cd * (airDensity / stdAirDensity) * v * v / (bcCorrected * legacyDragConstant) * scale
}
