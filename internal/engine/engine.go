// Package engine implements the per-frame orchestrator: it sequences AHRS,
// atmosphere, and LRF ingestion, evaluates the fault/diagnostic state
// machine, and assembles the FiringSolution.
package engine

import (
	"math"

	"github.com/koenig-jacob/DOPE/internal/engine/ahrsfilter"
	"github.com/koenig-jacob/DOPE/internal/engine/atmo"
	"github.com/koenig-jacob/DOPE/internal/engine/corrections"
	"github.com/koenig-jacob/DOPE/internal/engine/magcal"
	"github.com/koenig-jacob/DOPE/internal/engine/solver"
	"github.com/koenig-jacob/DOPE/internal/engine/xmath"
)

const (
	lrfStaleUs    = 2_000_000
	lrfFilterGain = 0.2
	gramsPerGrain = 6.479891e-5 // kg per grain
	radToMOA      = (180.0 * 60.0) / math.Pi
)

// Engine is a single process-wide ballistic firing-solution instance. The
// zero value is not ready to use; call Init (or construct with New).
type Engine struct {
	atmosphere *atmo.Atmosphere
	ahrs       *ahrsfilter.Manager
	mag        *magcal.Calibration
	solver     solver.Solver
	wind       corrections.Wind

	hasBullet bool
	bullet    BulletProfile

	hasZero bool
	zero    ZeroConfig

	zeroDirty    bool
	zeroAngleRad float64

	hasLatitude bool
	latitudeRad float64

	boresight Offset
	reticle   Offset

	externalReferenceMode bool

	hasRange       bool
	lrfRangeRawM   float64
	lrfFilteredM   float64
	lrfHasFilter   bool
	lrfTimestampUs int64
	snapshotQuat   ahrsfilter.Quaternion

	lastFrameTimestampUs int64
	firstFrame           bool
	frameSensorInvalid   bool

	mode       Mode
	faultFlags Fault
	diagFlags  Diag

	solution FiringSolution
}

// New returns an initialized Engine.
func New() *Engine {
	e := &Engine{}
	e.Init()
	return e
}

// Init zeroes all state: atmosphere to ISA defaults, AHRS to identity
// orientation, biases to zero, soft-iron to identity, all has_* flags
// false, mode IDLE, external-reference mode off.
func (e *Engine) Init() {
	*e = Engine{
		atmosphere: atmo.New(),
		ahrs:       ahrsfilter.NewManager(),
		mag:        magcal.New(),
		firstFrame: true,
	}
	e.solver.Init()
}

// Update is the sole driver of AHRS/atmosphere/LRF ingestion and state
// evaluation for one tick.
func (e *Engine) Update(frame SensorFrame) {
	e.ingestIMU(frame)
	e.ingestBaro(frame)
	e.ingestLRF(frame)
	e.evaluateState()
}

func (e *Engine) ingestIMU(frame SensorFrame) {
	var dt float64
	switch {
	case e.firstFrame:
		dt = 0.01
	case frame.TimestampUs <= e.lastFrameTimestampUs:
		dt = 0.01
	default:
		dt = xmath.Clamp(float64(frame.TimestampUs-e.lastFrameTimestampUs)/1e6, 0.0001, 0.1)
	}
	e.lastFrameTimestampUs = frame.TimestampUs
	e.firstFrame = false

	mx, my, mz := 0.0, 0.0, 0.0
	useMag := false
	if frame.MagValid {
		if xmath.IsFinite(frame.MagX) && xmath.IsFinite(frame.MagY) && xmath.IsFinite(frame.MagZ) {
			cx, cy, cz, ok := e.mag.Apply(frame.MagX, frame.MagY, frame.MagZ)
			if ok {
				mx, my, mz = cx, cy, cz
				useMag = true
			}
		} else {
			e.frameSensorInvalid = true
		}
	}

	if frame.ImuValid {
		finite := xmath.IsFinite(frame.AccelX) && xmath.IsFinite(frame.AccelY) && xmath.IsFinite(frame.AccelZ) &&
			xmath.IsFinite(frame.GyroX) && xmath.IsFinite(frame.GyroY) && xmath.IsFinite(frame.GyroZ)
		if finite {
			e.ahrs.Update(frame.AccelX, frame.AccelY, frame.AccelZ, frame.GyroX, frame.GyroY, frame.GyroZ, mx, my, mz, useMag, dt)
		} else {
			e.frameSensorInvalid = true
		}
	}
}

func (e *Engine) ingestBaro(frame SensorFrame) {
	if !frame.BaroValid {
		return
	}
	humidity := -1.0
	if frame.BaroHumidityValid {
		humidity = frame.BaroHumidity
	}
	e.atmosphere.UpdateFromBaro(frame.BaroPressurePa, frame.BaroTemperatureC, humidity)
	if e.atmosphere.ConsumeZeroRecomputeHint() {
		e.zeroDirty = true
	}
}

func (e *Engine) ingestLRF(frame SensorFrame) {
	if !frame.LRFValid {
		return
	}
	if !xmath.IsFinite(frame.LRFRangeM) || frame.LRFRangeM <= 0 || frame.LRFRangeM > solver.MaxRangeM {
		e.frameSensorInvalid = true
		return
	}
	if frame.LRFConfidence != 0 {
		if !xmath.IsFinite(frame.LRFConfidence) || frame.LRFConfidence < 0 || frame.LRFConfidence > 1 {
			e.frameSensorInvalid = true
			return
		}
		if frame.LRFConfidence < 0.5 {
			return
		}
	}

	if !e.lrfHasFilter {
		e.lrfFilteredM = frame.LRFRangeM
		e.lrfHasFilter = true
	} else {
		e.lrfFilteredM = lrfFilterGain*frame.LRFRangeM + (1-lrfFilterGain)*e.lrfFilteredM
	}
	e.lrfRangeRawM = frame.LRFRangeM
	e.lrfTimestampUs = frame.LRFTimestampUs
	e.hasRange = true
	e.snapshotQuat = e.ahrs.Quaternion()
}

func (e *Engine) evaluateState() {
	e.faultFlags = 0
	e.diagFlags = Diag(e.atmosphere.DiagFlags())

	lrfStale := e.lrfHasFilter && e.lastFrameTimestampUs > e.lrfTimestampUs+lrfStaleUs
	if lrfStale {
		e.hasRange = false
		e.diagFlags |= DiagLRFStale
	}
	if !e.hasRange {
		e.faultFlags |= FaultNoRange
	}

	if !e.hasBullet {
		e.faultFlags |= FaultNoBullet
	} else {
		if e.bullet.MuzzleVelocityMS < 1 {
			e.faultFlags |= FaultNoMV
		}
		if e.bullet.BC < 1e-3 {
			e.faultFlags |= FaultNoBC
		}
		if e.hasZero && (e.zero.ZeroRangeM < 1 || e.zero.ZeroRangeM > solver.MaxRangeM) {
			e.faultFlags |= FaultZeroUnsolvable
		}
	}

	if !e.ahrs.IsStable() {
		e.faultFlags |= FaultAHRSUnstable
	}

	if !e.hasLatitude {
		e.diagFlags |= DiagCoriolisDisabled
	}
	if e.mag.IsDisturbed() {
		e.diagFlags |= DiagMagSuppressed
	}
	if !e.wind.IsSet() {
		e.diagFlags |= DiagDefaultWind
	}

	if e.atmosphere.HadInvalidInput() || e.frameSensorInvalid {
		e.faultFlags |= FaultSensorInvalid
	}
	e.frameSensorInvalid = false

	if e.faultFlags&hardFaultMask != 0 {
		e.setFaultMode()
		return
	}

	if e.hasRange && e.hasBullet && e.bullet.MuzzleVelocityMS >= 1 && e.bullet.BC >= 1e-3 {
		e.computeSolution()
		return
	}

	e.mode = ModeIdle
	e.solution.Mode = e.mode
	e.solution.FaultFlags = e.faultFlags
	e.solution.DiagFlags = e.diagFlags
}

func (e *Engine) setFaultMode() {
	e.mode = ModeFault
	e.solution.Mode = e.mode
	e.solution.FaultFlags = e.faultFlags
	e.solution.DiagFlags = e.diagFlags
}

func (e *Engine) computeSolution() {
	if e.zeroDirty && e.hasZero {
		params := e.buildSolverParams(e.zero.ZeroRangeM)
		angle := e.solver.SolveZeroAngle(params, e.zero.ZeroRangeM)
		if math.IsNaN(angle) {
			e.faultFlags |= FaultZeroUnsolvable
			e.setFaultMode()
			return
		}
		e.zeroAngleRad = angle
		e.zeroDirty = false
	}

	targetRangeM := e.lrfFilteredM
	params := e.buildSolverParams(targetRangeM)
	params.LaunchAngleRad = e.zeroAngleRad + e.snapshotQuat.Pitch()

	res := e.solver.Integrate(params)
	if !res.Valid {
		e.faultFlags |= FaultZeroUnsolvable
		e.setFaultMode()
		return
	}

	zeroRangeForSightLine := targetRangeM
	sightHeightM := 0.0
	if e.hasZero {
		zeroRangeForSightLine = e.zero.ZeroRangeM
		sightHeightM = e.zero.SightHeightMM * 1e-3
	}
	var sightLineDropAtR float64
	if zeroRangeForSightLine > 0 {
		sightLineDropAtR = sightHeightM - (sightHeightM/zeroRangeForSightLine)*targetRangeM
	}

	var dropMOA, windFromWindMOA float64
	if targetRangeM > 0 {
		dropMOA = -(res.DropAtTargetM - sightLineDropAtR) / targetRangeM * radToMOA
		windFromWindMOA = -res.WindageAtTargetM / targetRangeM * radToMOA
	}

	earthSpin := res.CoriolisWindMOA + res.SpinDriftMOA
	offsets := e.boresight.HorizontalMOA + e.reticle.HorizontalMOA

	elevMOA := dropMOA + res.CoriolisElevMOA + e.boresight.VerticalMOA + e.reticle.VerticalMOA
	windMOA := windFromWindMOA + earthSpin + offsets

	rollRad := e.snapshotQuat.Roll()
	elevMOA, cantWindMOA := corrections.ApplyCant(rollRad, elevMOA)
	windMOA += cantWindMOA

	e.mode = ModeSolutionReady
	e.solution = FiringSolution{
		Mode:       e.mode,
		FaultFlags: e.faultFlags,
		DiagFlags:  e.diagFlags,

		ElevationMOA: elevMOA,
		WindageMOA:   windMOA,

		SlantRangeM:      e.lrfRangeRawM,
		HorizontalRangeM: res.HorizontalRangeM,

		TOFms:              res.TOFS * 1000,
		VelocityAtTargetMS: res.VelocityAtTargetMS,
		EnergyAtTargetJ:    res.EnergyAtTargetJ,

		CoriolisElevMOA: res.CoriolisElevMOA,
		CoriolisWindMOA: res.CoriolisWindMOA,
		SpinDriftMOA:    res.SpinDriftMOA,

		WindageWindMOA:      windFromWindMOA,
		WindageEarthSpinMOA: earthSpin,
		WindageOffsetsMOA:   offsets,
		WindageCantMOA:      cantWindMOA,

		CantAngleDeg:   rollRad * 180.0 / math.Pi,
		TrueHeadingDeg: e.mag.ComputeHeading(e.snapshotQuat.Yaw()),
		AirDensity:     e.atmosphere.AirDensity(),
	}
}

func (e *Engine) buildSolverParams(targetRangeM float64) solver.Params {
	bc := e.atmosphere.CorrectBC(e.bullet.BC)

	mvFps := e.bullet.MuzzleVelocityMS*3.28084 + (e.bullet.BarrelLengthIn-24)*math.Abs(e.bullet.MVAdjustmentFpsPerInch)
	mvMS := mvFps / 3.28084

	sightHeightM := 0.0
	if e.hasZero {
		sightHeightM = e.zero.SightHeightMM * 1e-3
	}

	dragScale := 1.0
	if e.externalReferenceMode {
		dragScale = 0.84
	}

	heading := e.mag.ComputeHeading(e.snapshotQuat.Yaw())
	headwind, crosswind := e.wind.Decompose(heading)

	return solver.Params{
		BC:                 bc,
		DragModel:          e.bullet.DragModel,
		MuzzleVelocityMS:   mvMS,
		BulletMassKg:       e.bullet.MassGrains * gramsPerGrain,
		SightHeightM:       sightHeightM,
		AirDensity:         e.atmosphere.AirDensity(),
		SpeedOfSound:       e.atmosphere.SpeedOfSound(),
		DragReferenceScale: dragScale,
		TargetRangeM:       targetRangeM,
		HeadwindMS:         headwind,
		CrosswindMS:        crosswind,
		CoriolisLatRad:     e.latitudeRad,
		AzimuthRad:         heading * math.Pi / 180.0,
		CoriolisEnabled:    e.hasLatitude,
		TwistRateInches:    e.bullet.TwistRateIn,
		CaliberM:           e.bullet.CaliberIn * 0.0254,
		SpinDriftEnabled:   math.Abs(e.bullet.TwistRateIn) > 0.1,
	}
}

// SetBulletProfile sets the projectile profile and dirties the zero angle.
func (e *Engine) SetBulletProfile(p BulletProfile) {
	e.bullet = p
	e.hasBullet = true
	e.zeroDirty = true
}

// SetZeroConfig sets the zero distance and sight height and dirties the
// zero angle.
func (e *Engine) SetZeroConfig(z ZeroConfig) {
	e.zero = z
	e.hasZero = true
	e.zeroDirty = true
}

// SetWindManual sets a manual wind vector.
func (e *Engine) SetWindManual(speedMS, headingDegFrom float64) {
	e.wind.SetWind(speedMS, headingDegFrom)
}

// SetLatitude sets the firing latitude in degrees. Passing NaN disables
// Coriolis/Eötvös correction.
func (e *Engine) SetLatitude(deg float64) {
	if math.IsNaN(deg) {
		e.hasLatitude = false
		e.latitudeRad = 0
		return
	}
	e.latitudeRad = deg * math.Pi / 180.0
	e.hasLatitude = true
}

// SetDefaultOverrides applies per-field opt-in overrides for atmosphere,
// wind, and latitude, and dirties the zero angle.
func (e *Engine) SetDefaultOverrides(o DefaultOverrides) {
	e.atmosphere.ApplyDefaults(atmo.Defaults{
		UseAltitude:      o.UseAltitude,
		AltitudeM:        o.AltitudeM,
		UsePressure:      o.UsePressure,
		PressurePa:       o.PressurePa,
		UseTemperature:   o.UseTemperature,
		TemperatureC:     o.TemperatureC,
		UseHumidity:      o.UseHumidity,
		HumidityFraction: o.HumidityFraction,
	})
	if o.UseWind {
		e.wind.SetWind(o.WindSpeedMS, o.WindHeadingDeg)
	}
	if o.UseLatitude {
		e.SetLatitude(o.LatitudeDeg)
	}
	e.zeroDirty = true
}

// SetIMUBias sets the accelerometer/gyroscope bias vectors. A nil pointer is
// treated as zero.
func (e *Engine) SetIMUBias(accel, gyro *[3]float64) {
	var a, g [3]float64
	if accel != nil {
		a = *accel
	}
	if gyro != nil {
		g = *gyro
	}
	e.ahrs.SetAccelBias(a)
	e.ahrs.SetGyroBias(g)
}

// SetMagCalibration sets the hard/soft-iron magnetometer correction. A nil
// pointer is treated as zero/identity respectively.
func (e *Engine) SetMagCalibration(hard *[3]float64, soft *[9]float64) {
	e.mag.SetCalibration(hard, soft)
}

// SetBoresightOffset sets the boresight MOA offset, added to the computed
// hold.
func (e *Engine) SetBoresightOffset(verticalMOA, horizontalMOA float64) {
	e.boresight = Offset{VerticalMOA: verticalMOA, HorizontalMOA: horizontalMOA}
}

// SetReticleMechanicalOffset sets the reticle mechanical MOA offset, added
// to the computed hold.
func (e *Engine) SetReticleMechanicalOffset(verticalMOA, horizontalMOA float64) {
	e.reticle = Offset{VerticalMOA: verticalMOA, HorizontalMOA: horizontalMOA}
}

// CalibrateBaro snapshots the current barometer reading as the ISA-standard
// reference and dirties the zero angle.
func (e *Engine) CalibrateBaro() {
	e.atmosphere.CalibrateBaro()
	e.zeroDirty = true
}

// CalibrateGyro snapshots the last observed gyro sample as the new gyro
// bias. The caller must ensure the device is stationary.
func (e *Engine) CalibrateGyro() {
	e.ahrs.CaptureGyroBias()
}

// SetAHRSAlgorithm switches the active AHRS filter variant.
func (e *Engine) SetAHRSAlgorithm(tag ahrsfilter.Algorithm) {
	e.ahrs.SetAlgorithm(tag)
}

// SetMagDeclination sets the magnetic declination used for true-heading
// computation.
func (e *Engine) SetMagDeclination(deg float64) {
	e.mag.SetDeclination(deg)
}

// SetExternalReferenceMode toggles the solver's drag reference scale
// between 1.0 (default) and 0.84 (external-reference mode), and dirties the
// zero angle since it changes the integrated trajectory.
func (e *Engine) SetExternalReferenceMode(enabled bool) {
	e.externalReferenceMode = enabled
	e.zeroDirty = true
}

// GetSolution copies out the current firing solution.
func (e *Engine) GetSolution() FiringSolution { return e.solution }

// GetMode returns the current engine mode.
func (e *Engine) GetMode() Mode { return e.mode }

// GetFaultFlags returns the current fault bitmask.
func (e *Engine) GetFaultFlags() Fault { return e.faultFlags }

// GetDiagFlags returns the current diagnostic bitmask.
func (e *Engine) GetDiagFlags() Diag { return e.diagFlags }
