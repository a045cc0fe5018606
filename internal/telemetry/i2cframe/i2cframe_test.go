package i2cframe

import (
	"fmt"
	"testing"
	"time"

	"github.com/koenig-jacob/DOPE/internal/sensors/icm20948"
)

type fakeIMU struct {
	sample icm20948.Sample
	err    error
	reads  int
}

func (f *fakeIMU) Read() (icm20948.Sample, error) {
	f.reads++
	return f.sample, f.err
}

type fakeBaro struct {
	tempC, pressPa float64
	err            error
	reads          int
}

func (f *fakeBaro) Read() (float64, float64, error) {
	f.reads++
	return f.tempC, f.pressPa, f.err
}

func TestNext_PopulatesImuAndBaroOnFirstTick(t *testing.T) {
	im := &fakeIMU{sample: icm20948.Sample{Ax: 0, Ay: -1, Az: 0, Gx: 1, Gy: 0, Gz: 0}}
	bp := &fakeBaro{tempC: 15, pressPa: 101325}
	s := newSource(im, bp)

	frame := s.Next(time.Unix(0, 0))
	if !frame.ImuValid {
		t.Fatalf("expected ImuValid")
	}
	if !frame.BaroValid {
		t.Fatalf("expected BaroValid on first tick")
	}
	if frame.AccelY >= 0 {
		t.Fatalf("AccelY = %v, want negative (1g down)", frame.AccelY)
	}
	if frame.BaroPressurePa != 101325 {
		t.Fatalf("BaroPressurePa = %v, want 101325", frame.BaroPressurePa)
	}
}

func TestNext_BaroReadIsThrottledBetweenPeriods(t *testing.T) {
	im := &fakeIMU{}
	bp := &fakeBaro{tempC: 20, pressPa: 100000}
	s := newSource(im, bp)

	for i := 0; i < baroPeriod-1; i++ {
		s.Next(time.Unix(int64(i), 0))
	}
	if bp.reads != 1 {
		t.Fatalf("baro reads = %d, want 1 (only the first-tick read)", bp.reads)
	}

	s.Next(time.Unix(int64(baroPeriod), 0))
	if bp.reads != 2 {
		t.Fatalf("baro reads = %d, want 2 after reaching baroPeriod", bp.reads)
	}
}

func TestNext_ImuErrorLeavesFrameImuInvalid(t *testing.T) {
	im := &fakeIMU{err: fmt.Errorf("bus error")}
	bp := &fakeBaro{tempC: 20, pressPa: 100000}
	s := newSource(im, bp)

	frame := s.Next(time.Unix(0, 0))
	if frame.ImuValid {
		t.Fatalf("expected ImuValid=false on read error")
	}
	if !frame.BaroValid {
		t.Fatalf("expected BaroValid to still be set")
	}
}

func TestNext_BaroErrorKeepsPreviousReading(t *testing.T) {
	im := &fakeIMU{}
	bp := &fakeBaro{tempC: 20, pressPa: 100000}
	s := newSource(im, bp)

	first := s.Next(time.Unix(0, 0))
	if !first.BaroValid || first.BaroPressurePa != 100000 {
		t.Fatalf("unexpected first frame: %+v", first)
	}

	bp.err = fmt.Errorf("bus error")
	for i := 1; i < baroPeriod; i++ {
		s.Next(time.Unix(int64(i), 0))
	}
	last := s.Next(time.Unix(int64(baroPeriod), 0))
	if !last.BaroValid {
		t.Fatalf("expected BaroValid to stay true using cached reading")
	}
	if last.BaroPressurePa != 100000 {
		t.Fatalf("BaroPressurePa = %v, want cached 100000", last.BaroPressurePa)
	}
}
