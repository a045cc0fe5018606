// Package i2cframe assembles an engine.SensorFrame from the onboard IMU and
// barometer each tick, for builds that run against real hardware instead of
// a replay log.
package i2cframe

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/koenig-jacob/DOPE/internal/engine"
	"github.com/koenig-jacob/DOPE/internal/i2c"
	"github.com/koenig-jacob/DOPE/internal/sensors/bmp280"
	"github.com/koenig-jacob/DOPE/internal/sensors/icm20948"
)

const (
	gravityMS2 = 9.80665
	degToRad   = math.Pi / 180.0
	baroPeriod = 8 // read the barometer every Nth IMU tick
)

// imu is the subset of *icm20948.Device this package depends on.
type imu interface {
	Read() (icm20948.Sample, error)
}

// baro is the subset of *bmp280.Device this package depends on.
type baro interface {
	Read() (tempC float64, pressPa float64, err error)
}

// Source assembles a SensorFrame from a real IMU and barometer on every
// Next call. It caches the most recent barometer reading between calls
// since pressure/temperature change slowly relative to gyro rate.
type Source struct {
	imu  imu
	baro baro

	mu         sync.Mutex
	tickCount  int64
	lastBaroPa float64
	lastBaroC  float64
	haveBaro   bool
}

// Open opens the IMU and barometer on bus at their default addresses and
// returns a Source ready to be polled.
func Open(bus *i2c.Bus) (*Source, error) {
	if bus == nil {
		return nil, fmt.Errorf("i2cframe: bus is nil")
	}
	im, err := icm20948.New(bus.Dev(icm20948.DefaultAddress()))
	if err != nil {
		return nil, fmt.Errorf("i2cframe: open imu: %w", err)
	}
	bp, err := bmp280.New(bus.Dev(bmp280.DefaultAddress()))
	if err != nil {
		return nil, fmt.Errorf("i2cframe: open baro: %w", err)
	}
	return newSource(im, bp), nil
}

func newSource(im imu, bp baro) *Source {
	return &Source{imu: im, baro: bp}
}

// Next reads the IMU (and, every baroPeriod ticks, the barometer) and
// returns a populated SensorFrame timestamped at now. The barometer
// fields hold the most recent reading on ticks where it isn't re-sampled.
func (s *Source) Next(now time.Time) engine.SensorFrame {
	frame := engine.SensorFrame{TimestampUs: now.UnixMicro()}

	sample, err := s.imu.Read()
	if err == nil {
		frame.ImuValid = true
		frame.AccelX = sample.Ax * gravityMS2
		frame.AccelY = sample.Ay * gravityMS2
		frame.AccelZ = sample.Az * gravityMS2
		frame.GyroX = sample.Gx * degToRad
		frame.GyroY = sample.Gy * degToRad
		frame.GyroZ = sample.Gz * degToRad
	}

	s.mu.Lock()
	s.tickCount++
	dueForBaro := s.tickCount%baroPeriod == 0 || !s.haveBaro
	s.mu.Unlock()

	if dueForBaro {
		tempC, pressPa, err := s.baro.Read()
		if err == nil {
			s.mu.Lock()
			s.lastBaroC, s.lastBaroPa, s.haveBaro = tempC, pressPa, true
			s.mu.Unlock()
		}
	}

	s.mu.Lock()
	if s.haveBaro {
		frame.BaroValid = true
		frame.BaroPressurePa = s.lastBaroPa
		frame.BaroTemperatureC = s.lastBaroC
	}
	s.mu.Unlock()

	return frame
}

// Pump reads Next on every tick of a time.Ticker at the given period and
// feeds each resulting frame to eng.Update, until stop is closed.
func Pump(src *Source, eng *engine.Engine, period time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case t := <-ticker.C:
			eng.Update(src.Next(t))
		}
	}
}
