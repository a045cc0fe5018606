// Package replayframe records and replays engine.SensorFrame sequences as
// newline-delimited JSON, so an end-to-end scenario can be captured once
// and replayed deterministically.
package replayframe

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/koenig-jacob/DOPE/internal/engine"
)

// Record is one logged frame plus its relative record time.
type Record struct {
	At    time.Duration    `json:"at_ns"`
	Frame engine.SensorFrame `json:"frame"`
}

// Writer appends SensorFrame records to a log file as they're recorded.
type Writer struct {
	f      *os.File
	w      *bufio.Writer
	enc    *json.Encoder
	start  time.Time
	closed bool
}

// CreateWriter creates (or truncates) a log file at path and opens it for
// recording, with its time origin set to now.
func CreateWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("replayframe: create %s: %w", path, err)
	}
	bw := bufio.NewWriterSize(f, 64*1024)
	return &Writer{f: f, w: bw, enc: json.NewEncoder(bw), start: time.Now()}, nil
}

// WriteFrame appends one frame, timestamped relative to the writer's start.
func (w *Writer) WriteFrame(now time.Time, frame engine.SensorFrame) error {
	if w.closed {
		return errors.New("replayframe: writer is closed")
	}
	d := now.Sub(w.start)
	if d < 0 {
		d = 0
	}
	return w.enc.Encode(Record{At: d, Frame: frame})
}

// Flush flushes buffered output without closing the file.
func (w *Writer) Flush() error {
	if w.closed {
		return nil
	}
	return w.w.Flush()
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.w.Flush(); err != nil {
		_ = w.f.Close()
		return err
	}
	return w.f.Close()
}

// Reader parses a newline-delimited JSON frame log.
type Reader struct {
	r io.Reader
}

// NewReader wraps r for reading.
func NewReader(r io.Reader) *Reader { return &Reader{r: r} }

// ReadAll decodes every record in the log, in order.
func (rr *Reader) ReadAll() ([]Record, error) {
	dec := json.NewDecoder(rr.r)
	recs := make([]Record, 0, 1024)
	for {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("replayframe: decode: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Sleeper abstracts time.Sleep for deterministic tests.
type Sleeper interface {
	Sleep(d time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// Play feeds records through cb in order, honoring their relative timing
// scaled by speedMultiplier (1.0 = real time, 2.0 = twice as fast). If loop
// is true, Play repeats indefinitely until cb returns an error.
func Play(records []Record, speedMultiplier float64, loop bool, sleeper Sleeper, cb func(engine.SensorFrame) error) error {
	if speedMultiplier <= 0 {
		return errors.New("replayframe: speedMultiplier must be > 0")
	}
	if sleeper == nil {
		sleeper = realSleeper{}
	}
	if cb == nil {
		return errors.New("replayframe: callback is nil")
	}
	if len(records) == 0 {
		return errors.New("replayframe: no records")
	}

	for {
		var lastAt time.Duration
		for i, r := range records {
			if i > 0 {
				wait := r.At - lastAt
				if wait < 0 {
					wait = 0
				}
				wait = time.Duration(float64(wait) / speedMultiplier)
				if wait > 0 {
					sleeper.Sleep(wait)
				}
			}
			if err := cb(r.Frame); err != nil {
				return err
			}
			lastAt = r.At
		}
		if !loop {
			return nil
		}
	}
}
