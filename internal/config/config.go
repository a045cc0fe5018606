// Package config loads the YAML startup configuration for the ballistic
// engine CLI front-end: bullet profile, zero, atmosphere/wind defaults,
// latitude, AHRS algorithm, and sensor calibration.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/koenig-jacob/DOPE/internal/engine"
	"github.com/koenig-jacob/DOPE/internal/engine/ahrsfilter"
	"github.com/koenig-jacob/DOPE/internal/engine/drag"
)

type Config struct {
	Bullet      BulletConfig      `yaml:"bullet"`
	Zero        ZeroConfig        `yaml:"zero"`
	Defaults    DefaultsConfig    `yaml:"defaults"`
	Wind        WindConfig        `yaml:"wind"`
	LatitudeDeg *float64          `yaml:"latitude_deg"`
	AHRS        AHRSConfig        `yaml:"ahrs"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Network     NetworkConfig     `yaml:"network"`
}

type BulletConfig struct {
	BC                     float64 `yaml:"bc"`
	DragModel              string  `yaml:"drag_model"`
	MuzzleVelocityMS       float64 `yaml:"muzzle_velocity_ms"`
	BarrelLengthIn         float64 `yaml:"barrel_length_in"`
	MVAdjustmentFpsPerInch float64 `yaml:"mv_adjustment_fps_per_inch"`
	MassGrains             float64 `yaml:"mass_grains"`
	LengthMM               float64 `yaml:"length_mm"`
	CaliberIn              float64 `yaml:"caliber_in"`
	TwistRateIn            float64 `yaml:"twist_rate_in"`
}

type ZeroConfig struct {
	ZeroRangeM    float64 `yaml:"zero_range_m"`
	SightHeightMM float64 `yaml:"sight_height_mm"`
}

type DefaultsConfig struct {
	AltitudeM    *float64 `yaml:"altitude_m"`
	PressurePa   *float64 `yaml:"pressure_pa"`
	TemperatureC *float64 `yaml:"temperature_c"`
	HumidityPct  *float64 `yaml:"humidity_pct"`
	WindSpeedMS  *float64 `yaml:"wind_speed_ms"`
	WindFromDeg  *float64 `yaml:"wind_from_deg"`
}

type WindConfig struct {
	SpeedMS    float64 `yaml:"speed_ms"`
	FromDegree float64 `yaml:"from_deg"`
}

type AHRSConfig struct {
	Algorithm      string  `yaml:"algorithm"`
	MagDeclination float64 `yaml:"mag_declination_deg"`
}

type CalibrationConfig struct {
	AccelBias              *[3]float64 `yaml:"accel_bias"`
	GyroBias               *[3]float64 `yaml:"gyro_bias"`
	MagHard                *[3]float64 `yaml:"mag_hard_iron"`
	MagSoft                *[9]float64 `yaml:"mag_soft_iron"`
	BoresightVerticalMOA   float64     `yaml:"boresight_vertical_moa"`
	BoresightHorizontalMOA float64     `yaml:"boresight_horizontal_moa"`
	ReticleVerticalMOA     float64     `yaml:"reticle_vertical_moa"`
	ReticleHorizontalMOA   float64     `yaml:"reticle_horizontal_moa"`
}

type NetworkConfig struct {
	BroadcastDest     string        `yaml:"broadcast_dest"`
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`
	StatusListen      string        `yaml:"status_listen"`
}

var dragModelsByName = map[string]drag.Model{
	"G1": drag.G1,
	"G2": drag.G2,
	"G3": drag.G3,
	"G4": drag.G4,
	"G5": drag.G5,
	"G6": drag.G6,
	"G7": drag.G7,
	"G8": drag.G8,
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if cfg.Bullet.BC <= 0 {
		return Config{}, fmt.Errorf("bullet.bc is required and must be > 0")
	}
	if cfg.Bullet.MuzzleVelocityMS <= 0 {
		return Config{}, fmt.Errorf("bullet.muzzle_velocity_ms is required and must be > 0")
	}
	if cfg.Bullet.DragModel == "" {
		cfg.Bullet.DragModel = "G1"
	}
	if _, ok := dragModelsByName[strings.ToUpper(cfg.Bullet.DragModel)]; !ok {
		return Config{}, fmt.Errorf("bullet.drag_model %q is not a recognized drag model", cfg.Bullet.DragModel)
	}

	if cfg.Zero.ZeroRangeM <= 0 {
		return Config{}, fmt.Errorf("zero.zero_range_m is required and must be > 0")
	}

	if cfg.AHRS.Algorithm == "" {
		cfg.AHRS.Algorithm = "madgwick"
	}
	switch strings.ToLower(cfg.AHRS.Algorithm) {
	case "madgwick", "mahony":
	default:
		return Config{}, fmt.Errorf("ahrs.algorithm %q must be one of: madgwick, mahony", cfg.AHRS.Algorithm)
	}

	if cfg.Network.BroadcastDest != "" && cfg.Network.BroadcastInterval <= 0 {
		cfg.Network.BroadcastInterval = 100 * time.Millisecond
	}

	return cfg, nil
}

// DragModelValue resolves the validated drag-model name to its drag.Model value.
func (c BulletConfig) DragModelValue() drag.Model {
	return dragModelsByName[strings.ToUpper(c.DragModel)]
}

// AHRSAlgorithm resolves the validated algorithm name to its tag.
func (c AHRSConfig) AHRSAlgorithm() ahrsfilter.Algorithm {
	if strings.ToLower(c.Algorithm) == "mahony" {
		return ahrsfilter.AlgorithmMahony
	}
	return ahrsfilter.AlgorithmMadgwick
}

// Apply configures eng with everything this Config describes: bullet
// profile, zero, atmosphere/wind defaults, latitude, AHRS algorithm and
// calibration.
func (c Config) Apply(eng *engine.Engine) {
	eng.SetBulletProfile(engine.BulletProfile{
		BC:                     c.Bullet.BC,
		DragModel:              c.Bullet.DragModelValue(),
		MuzzleVelocityMS:       c.Bullet.MuzzleVelocityMS,
		BarrelLengthIn:         c.Bullet.BarrelLengthIn,
		MVAdjustmentFpsPerInch: c.Bullet.MVAdjustmentFpsPerInch,
		MassGrains:             c.Bullet.MassGrains,
		LengthMM:               c.Bullet.LengthMM,
		CaliberIn:              c.Bullet.CaliberIn,
		TwistRateIn:            c.Bullet.TwistRateIn,
	})

	eng.SetZeroConfig(engine.ZeroConfig{
		ZeroRangeM:    c.Zero.ZeroRangeM,
		SightHeightMM: c.Zero.SightHeightMM,
	})

	overrides := engine.DefaultOverrides{}
	if c.Defaults.AltitudeM != nil {
		overrides.UseAltitude, overrides.AltitudeM = true, *c.Defaults.AltitudeM
	}
	if c.Defaults.PressurePa != nil {
		overrides.UsePressure, overrides.PressurePa = true, *c.Defaults.PressurePa
	}
	if c.Defaults.TemperatureC != nil {
		overrides.UseTemperature, overrides.TemperatureC = true, *c.Defaults.TemperatureC
	}
	if c.Defaults.HumidityPct != nil {
		overrides.UseHumidity, overrides.HumidityFraction = true, *c.Defaults.HumidityPct/100
	}
	if c.Defaults.WindSpeedMS != nil && c.Defaults.WindFromDeg != nil {
		overrides.UseWind, overrides.WindSpeedMS, overrides.WindHeadingDeg = true, *c.Defaults.WindSpeedMS, *c.Defaults.WindFromDeg
	}
	eng.SetDefaultOverrides(overrides)

	if c.Wind.SpeedMS != 0 || c.Wind.FromDegree != 0 {
		eng.SetWindManual(c.Wind.SpeedMS, c.Wind.FromDegree)
	}

	if c.LatitudeDeg != nil {
		eng.SetLatitude(*c.LatitudeDeg)
	}

	eng.SetAHRSAlgorithm(c.AHRS.AHRSAlgorithm())
	eng.SetMagDeclination(c.AHRS.MagDeclination)

	eng.SetIMUBias(c.Calibration.AccelBias, c.Calibration.GyroBias)
	eng.SetMagCalibration(c.Calibration.MagHard, c.Calibration.MagSoft)
	eng.SetBoresightOffset(c.Calibration.BoresightVerticalMOA, c.Calibration.BoresightHorizontalMOA)
	eng.SetReticleMechanicalOffset(c.Calibration.ReticleVerticalMOA, c.Calibration.ReticleHorizontalMOA)
}
