// Package web serves the engine's current firing solution over HTTP for a
// remote display to poll, in place of (or alongside) the UDP push in
// internal/telemetry/udpbroadcast.
package web

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/koenig-jacob/DOPE/internal/engine"
)

// Status tracks server-uptime bookkeeping around the engine's solution.
// Engine state itself is read live from Source on every request rather
// than cached here, since the solution already changes every frame.
type Status struct {
	startUnixNano int64
	requestsTotal uint64
	lastPollNano  int64
}

func NewStatus() *Status {
	s := &Status{}
	atomic.StoreInt64(&s.startUnixNano, time.Now().UTC().UnixNano())
	return s
}

func (s *Status) markPoll(nowUTC time.Time) {
	atomic.StoreInt64(&s.lastPollNano, nowUTC.UnixNano())
	atomic.AddUint64(&s.requestsTotal, 1)
}

// Source is the subset of *engine.Engine the handler depends on.
type Source interface {
	GetSolution() engine.FiringSolution
	GetMode() engine.Mode
	GetFaultFlags() engine.Fault
	GetDiagFlags() engine.Diag
}

// StatusSnapshot is the JSON shape served by Handler.
type StatusSnapshot struct {
	Service       string                `json:"service"`
	NowUTC        string                `json:"now_utc"`
	UptimeSec     int64                 `json:"uptime_sec"`
	RequestsTotal uint64                `json:"requests_total"`
	Mode          string                `json:"mode"`
	FaultFlags    uint32                `json:"fault_flags"`
	DiagFlags     uint32                `json:"diag_flags"`
	Solution      engine.FiringSolution `json:"solution"`
}

func (s *Status) snapshot(nowUTC time.Time, eng Source) StatusSnapshot {
	start := time.Unix(0, atomic.LoadInt64(&s.startUnixNano)).UTC()
	return StatusSnapshot{
		Service:       "dope",
		NowUTC:        nowUTC.Format(time.RFC3339Nano),
		UptimeSec:     int64(nowUTC.Sub(start).Seconds()),
		RequestsTotal: atomic.LoadUint64(&s.requestsTotal),
		Mode:          eng.GetMode().String(),
		FaultFlags:    uint32(eng.GetFaultFlags()),
		DiagFlags:     uint32(eng.GetDiagFlags()),
		Solution:      eng.GetSolution(),
	}
}

// Handler serves GET /status with the engine's current solution and flags.
type Handler struct {
	status *Status
	eng    Source
}

func NewHandler(eng Source) *Handler {
	return &Handler{status: NewStatus(), eng: eng}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	now := time.Now().UTC()
	h.status.markPoll(now)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.status.snapshot(now, h.eng))
}
