package engine

import "github.com/koenig-jacob/DOPE/internal/engine/drag"

// SensorFrame is the normalized, value-typed input the caller builds once
// per tick and hands to Update.
type SensorFrame struct {
	TimestampUs int64

	AccelX, AccelY, AccelZ float64 // m/s^2
	GyroX, GyroY, GyroZ    float64 // rad/s
	ImuValid               bool

	MagX, MagY, MagZ float64 // microtesla
	MagValid         bool

	BaroPressurePa     float64
	BaroTemperatureC   float64
	BaroHumidity       float64 // [0,1]; meaningless unless BaroHumidityValid
	BaroHumidityValid  bool
	BaroValid          bool

	LRFRangeM      float64
	LRFTimestampUs int64
	LRFConfidence  float64 // 0 means "unprovided"
	LRFValid       bool

	EncoderFocalLengthMM float64
	EncoderValid         bool
}

// BulletProfile describes the projectile and its launch characteristics.
type BulletProfile struct {
	BC                     float64
	DragModel              drag.Model
	MuzzleVelocityMS       float64
	BarrelLengthIn         float64
	MVAdjustmentFpsPerInch float64 // fps per inch of barrel-length delta from 24in
	MassGrains             float64
	LengthMM               float64
	CaliberIn              float64
	TwistRateIn            float64 // signed; positive = right-hand
}

// ZeroConfig describes the sight's zero distance and mounting height.
type ZeroConfig struct {
	ZeroRangeM    float64
	SightHeightMM float64
}

// DefaultOverrides lets the caller opt in to replacing atmospheric/wind/
// latitude defaults in the absence of (or, for wind/latitude, regardless
// of) a live sensor reading.
type DefaultOverrides struct {
	UseAltitude bool
	AltitudeM   float64

	UsePressure bool
	PressurePa  float64

	UseTemperature bool
	TemperatureC   float64

	UseHumidity      bool
	HumidityFraction float64

	UseWind         bool
	WindSpeedMS     float64
	WindHeadingDeg  float64

	UseLatitude  bool
	LatitudeDeg  float64
}

// Offset is a vertical/horizontal MOA pair, used for both boresight and
// reticle mechanical offsets.
type Offset struct {
	VerticalMOA   float64
	HorizontalMOA float64
}

// FiringSolution is the engine's full output, copied out on demand.
type FiringSolution struct {
	Mode       Mode
	FaultFlags Fault
	DiagFlags  Diag

	ElevationMOA float64
	WindageMOA   float64

	SlantRangeM      float64
	HorizontalRangeM float64

	TOFms              float64
	VelocityAtTargetMS float64
	EnergyAtTargetJ    float64

	CoriolisElevMOA float64
	CoriolisWindMOA float64
	SpinDriftMOA    float64

	WindageWindMOA      float64
	WindageEarthSpinMOA float64
	WindageOffsetsMOA   float64
	WindageCantMOA      float64

	CantAngleDeg    float64
	TrueHeadingDeg  float64
	AirDensity      float64
}
