// Package gpsfix feeds a GPS-derived latitude into the engine so Coriolis
// correction doesn't require a human to hand-enter latitude.
package gpsfix

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/koenig-jacob/DOPE/internal/engine"
	"github.com/koenig-jacob/DOPE/internal/gps"
)

// source is the subset of *gps.Service's contract this package depends on,
// narrowed for testability.
type source interface {
	Start(ctx context.Context) error
	Close()
	Snapshot() gps.Snapshot
}

// Feed polls a GPS source and calls engine.SetLatitude whenever it reports
// a valid fix.
type Feed struct {
	src      source
	eng      *engine.Engine
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns a Feed that polls src every interval and updates eng's
// latitude.
func New(src *gps.Service, eng *engine.Engine, interval time.Duration) *Feed {
	return newFeed(src, eng, interval)
}

func newFeed(src source, eng *engine.Engine, interval time.Duration) *Feed {
	return &Feed{src: src, eng: eng, interval: interval}
}

// Start starts the underlying GPS source and the latitude-polling loop.
func (f *Feed) Start(ctx context.Context) error {
	if err := f.src.Start(ctx); err != nil {
		return fmt.Errorf("gpsfix: start gps source: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		return nil
	}
	childCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		for {
			select {
			case <-childCtx.Done():
				return
			case <-ticker.C:
				f.pollOnce()
			}
		}
	}()
	return nil
}

func (f *Feed) pollOnce() {
	snap := f.src.Snapshot()
	if !snap.Valid {
		return
	}
	f.eng.SetLatitude(snap.LatDeg)
}

// Close stops the polling loop and the underlying GPS source.
func (f *Feed) Close() {
	f.mu.Lock()
	cancel := f.cancel
	f.cancel = nil
	f.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	f.wg.Wait()
	f.src.Close()
}
