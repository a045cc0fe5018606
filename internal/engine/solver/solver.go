// Package solver implements the point-mass ballistic trajectory integrator:
// adaptive-step RK4, a fixed-size per-meter trajectory table, binary-search
// zero-angle finding, and the optional spin-drift/Coriolis corrections
// applied on top of an integrated trajectory.
package solver

import (
	"math"

	"github.com/koenig-jacob/DOPE/internal/engine/drag"
	"github.com/koenig-jacob/DOPE/internal/engine/xmath"
)

const (
	gravity        = 9.80665
	omegaEarth     = 7.2921e-5
	minVelocity    = 30.0
	dtMin          = 0.00001
	dtMax          = 0.001
	maxStepDistM   = 0.25
	maxIterations  = 500000
	zeroToleranceM = 0.001
	zeroMaxIters   = 50
	radToMOA       = (180.0 * 60.0) / math.Pi

	// MaxRangeM is the furthest downrange distance the trajectory table
	// covers, at 1-meter resolution.
	MaxRangeM = 2500
	// TableSize is MaxRangeM+1 entries, indices 0..MaxRangeM inclusive.
	TableSize = MaxRangeM + 1
)

// Point is one per-meter trajectory record.
type Point struct {
	DropM      float64
	WindageM   float64
	VelocityMS float64
	TOFS       float64
	EnergyJ    float64
}

// Params bundles everything one trajectory solve needs. LaunchAngleRad is
// ignored by SolveZeroAngle (it solves for this value) and required by
// Integrate.
type Params struct {
	BC                  float64
	DragModel           drag.Model
	MuzzleVelocityMS    float64
	BulletMassKg        float64
	SightHeightM        float64
	AirDensity          float64
	SpeedOfSound        float64
	DragReferenceScale  float64
	LaunchAngleRad      float64
	TargetRangeM        float64
	HeadwindMS          float64
	CrosswindMS         float64
	CoriolisLatRad      float64
	AzimuthRad          float64
	CoriolisEnabled     bool
	TwistRateInches     float64
	CaliberM            float64
	SpinDriftEnabled    bool
}

// Result is the outcome of integrating one trajectory to its target range.
type Result struct {
	Valid               bool
	DropAtTargetM       float64
	WindageAtTargetM    float64
	TOFS                float64
	VelocityAtTargetMS  float64
	EnergyAtTargetJ     float64
	HorizontalRangeM    float64
	CoriolisElevMOA     float64
	CoriolisWindMOA     float64
	SpinDriftMOA        float64
}

// Solver owns the trajectory table and the bound of its valid range. Call
// Init before relying on PointAt: a zero-value Solver reports index 0 as
// valid before any Integrate call.
type Solver struct {
	table         [TableSize]Point
	maxValidRange int
}

// Init resets the solver's trajectory table. maxValidRange starts at -1:
// no range has been reached yet, since no Integrate call has run.
func (s *Solver) Init() {
	s.table = [TableSize]Point{}
	s.maxValidRange = -1
}

// PointAt returns the trajectory table entry at the given integer meter
// range, or (Point{}, false) if rangeM is out of [0, MaxRangeM] or beyond
// the furthest range reached by the most recent Integrate call.
func (s *Solver) PointAt(rangeM int) (Point, bool) {
	if rangeM < 0 || rangeM > s.maxValidRange || rangeM > MaxRangeM {
		return Point{}, false
	}
	return s.table[rangeM], true
}

// SolveZeroAngle finds the launch angle (radians above horizontal) that
// makes the trajectory cross the line of sight at zeroRangeM, accounting
// for params.SightHeightM. Returns NaN if zeroRangeM is out of [1,
// MaxRangeM] or the search does not converge within its iteration cap.
func (s *Solver) SolveZeroAngle(params Params, zeroRangeM float64) float64 {
	if zeroRangeM < 1 || zeroRangeM > MaxRangeM {
		return math.NaN()
	}

	lo := -5.0 * math.Pi / 180.0
	hi := 5.0 * math.Pi / 180.0
	target := -params.SightHeightM

	var lastErr float64
	var lastAngle float64
	converged := false

	for i := 0; i < zeroMaxIters; i++ {
		mid := (lo + hi) / 2
		p := params
		p.LaunchAngleRad = mid
		p.TargetRangeM = zeroRangeM
		drop, _, _, _, _, ok := s.integrateToRange(p, zeroRangeM, false)
		lastAngle = mid

		if !ok {
			// Bullet never reached zero range at this angle: needs more
			// angle (push the low bound up).
			lo = mid
			lastErr = math.Inf(1)
			continue
		}

		errv := drop - target
		lastErr = errv
		if math.Abs(errv) < zeroToleranceM {
			converged = true
			lastAngle = mid
			break
		}
		if errv < 0 {
			// Too much drop: needs more angle (less negative / more up).
			lo = mid
		} else {
			hi = mid
		}
	}

	if !converged && math.Abs(lastErr) >= zeroToleranceM {
		return math.NaN()
	}
	return lastAngle
}

// Integrate runs the full trajectory with params.LaunchAngleRad, filling
// the trajectory table as it goes, and returns the result at
// params.TargetRangeM plus any enabled spin-drift/Coriolis corrections.
func (s *Solver) Integrate(params Params) Result {
	drop, windage, v, tof, energy, ok := s.integrateToRange(params, params.TargetRangeM, true)
	if !ok {
		return Result{Valid: false}
	}

	res := Result{
		Valid:              true,
		DropAtTargetM:      drop,
		WindageAtTargetM:   windage,
		TOFS:               tof,
		VelocityAtTargetMS: v,
		EnergyAtTargetJ:     energy,
		HorizontalRangeM:   params.TargetRangeM * math.Cos(params.LaunchAngleRad),
	}

	if params.SpinDriftEnabled && math.Abs(params.TwistRateInches) > 0.1 {
		const sg = 1.5
		driftM := 0.0254 * 1.25 * (sg + 1.2) * math.Pow(tof, 1.83)
		if params.TwistRateInches < 0 {
			driftM = -driftM
		}
		if params.TargetRangeM > 0 {
			res.SpinDriftMOA = driftM / params.TargetRangeM * radToMOA
		}
	}

	if params.CoriolisEnabled && params.TargetRangeM > 0 {
		windDrift := omegaEarth * params.TargetRangeM * tof * math.Sin(params.CoriolisLatRad)
		vertDrift := omegaEarth * params.TargetRangeM * tof * math.Cos(params.CoriolisLatRad) * math.Sin(params.AzimuthRad)
		res.CoriolisWindMOA = windDrift / params.TargetRangeM * radToMOA
		res.CoriolisElevMOA = vertDrift / params.TargetRangeM * radToMOA
	}

	return res
}

// integrateToRange runs the adaptive RK4 loop up to rangeM. When fillTable
// is true it lazily populates s.table at every integer meter crossed,
// using post-step state, and advances s.maxValidRange. It returns the
// interpolated state at exactly rangeM, or ok=false if the bullet never
// reached it (velocity fell below minVelocity or the iteration cap was
// hit) or rangeM is non-positive.
func (s *Solver) integrateToRange(params Params, rangeM float64, fillTable bool) (drop, windage, velocity, tof, energy float64, ok bool) {
	if rangeM <= 0 {
		return 0, 0, params.MuzzleVelocityMS, 0, 0, true
	}

	theta := params.LaunchAngleRad
	x, y, z := 0.0, 0.0, 0.0
	vx := params.MuzzleVelocityMS * math.Cos(theta)
	vy := params.MuzzleVelocityMS * math.Sin(theta)
	vz := 0.0
	t := 0.0

	prevX := x
	fillUpTo := 0

	if fillTable {
		s.table[0] = Point{
			DropM:      0,
			WindageM:   0,
			VelocityMS: params.MuzzleVelocityMS,
			TOFS:       0,
			EnergyJ:    0.5 * params.BulletMassKg * params.MuzzleVelocityMS * params.MuzzleVelocityMS,
		}
	}

	accel := func(vx, vy, vz float64) (ax, ay, az float64) {
		vxRel := vx - params.HeadwindMS
		vyRel := vy
		vzRel := vz + params.CrosswindMS
		vrel := math.Sqrt(vxRel*vxRel + vyRel*vyRel + vzRel*vzRel)
		if vrel < 1.0 {
			return 0, -gravity, 0
		}
		decel := drag.Deceleration(vrel, params.SpeedOfSound, params.BC, params.DragModel, params.AirDensity, params.DragReferenceScale)
		return -decel * vxRel / vrel, -decel*vy/vrel - gravity, -decel * vzRel / vrel
	}

	deriv := func(vx, vy, vz float64) (dx, dy, dz, dvx, dvy, dvz float64) {
		ax, ay, az := accel(vx, vy, vz)
		return vx, vy, vz, ax, ay, az
	}

	for i := 0; i < maxIterations; i++ {
		v := math.Sqrt(vx*vx + vy*vy + vz*vz)
		if v < minVelocity {
			return 0, 0, 0, 0, 0, false
		}

		dt := 0.5 / v
		mach := 0.0
		if params.SpeedOfSound > 0 {
			mach = v / params.SpeedOfSound
		}
		if mach >= 0.9 && mach < 1.2 {
			dt = dtMin
		}
		if stepBound := maxStepDistM / v; dt > stepBound {
			dt = stepBound
		}
		dt = xmath.Clamp(dt, dtMin, dtMax)

		// Stage 1.
		k1x, k1y, k1z, k1vx, k1vy, k1vz := deriv(vx, vy, vz)
		// Stage 2.
		k2x, k2y, k2z, k2vx, k2vy, k2vz := deriv(vx+dt/2*k1vx, vy+dt/2*k1vy, vz+dt/2*k1vz)
		// Stage 3.
		k3x, k3y, k3z, k3vx, k3vy, k3vz := deriv(vx+dt/2*k2vx, vy+dt/2*k2vy, vz+dt/2*k2vz)
		// Stage 4.
		k4x, k4y, k4z, k4vx, k4vy, k4vz := deriv(vx+dt*k3vx, vy+dt*k3vy, vz+dt*k3vz)

		newX := x + dt/6*(k1x+2*k2x+2*k3x+k4x)
		newY := y + dt/6*(k1y+2*k2y+2*k3y+k4y)
		newZ := z + dt/6*(k1z+2*k2z+2*k3z+k4z)
		newVx := vx + dt/6*(k1vx+2*k2vx+2*k3vx+k4vx)
		newVy := vy + dt/6*(k1vy+2*k2vy+2*k3vy+k4vy)
		newVz := vz + dt/6*(k1vz+2*k2vz+2*k3vz+k4vz)
		newT := t + dt

		if fillTable {
			from := int(math.Floor(prevX)) + 1
			to := int(math.Floor(newX))
			if to > MaxRangeM {
				to = MaxRangeM
			}
			newV := math.Sqrt(newVx*newVx + newVy*newVy + newVz*newVz)
			for m := from; m <= to; m++ {
				if m < 0 || m > MaxRangeM {
					continue
				}
				s.table[m] = Point{
					DropM:      newY,
					WindageM:   newZ,
					VelocityMS: newV,
					TOFS:       newT,
					EnergyJ:    0.5 * params.BulletMassKg * newV * newV,
				}
				if m > fillUpTo {
					fillUpTo = m
				}
			}
		}

		if newX >= rangeM {
			// Linear interpolation between the bracketing samples for the
			// exact requested range.
			frac := 0.0
			if newX != prevX {
				frac = (rangeM - prevX) / (newX - prevX)
			}
			drop = xmath.Lerp(y, newY, frac)
			windage = xmath.Lerp(z, newZ, frac)
			velocity = xmath.Lerp(math.Sqrt(vx*vx+vy*vy+vz*vz), math.Sqrt(newVx*newVx+newVy*newVy+newVz*newVz), frac)
			tof = xmath.Lerp(t, newT, frac)
			energy = 0.5 * params.BulletMassKg * velocity * velocity
			if fillTable && fillUpTo > s.maxValidRange {
				s.maxValidRange = fillUpTo
			}
			return drop, windage, velocity, tof, energy, true
		}

		prevX, x, y, z = newX, newX, newY, newZ
		vx, vy, vz, t = newVx, newVy, newVz, newT
	}

	return 0, 0, 0, 0, 0, false
}
