package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/koenig-jacob/DOPE/internal/engine"
)

type fakeSource struct {
	sol   engine.FiringSolution
	mode  engine.Mode
	fault engine.Fault
	diag  engine.Diag
}

func (f fakeSource) GetSolution() engine.FiringSolution { return f.sol }
func (f fakeSource) GetMode() engine.Mode               { return f.mode }
func (f fakeSource) GetFaultFlags() engine.Fault        { return f.fault }
func (f fakeSource) GetDiagFlags() engine.Diag          { return f.diag }

func TestHandler_ServesCurrentSolutionAsJSON(t *testing.T) {
	src := fakeSource{
		sol:  engine.FiringSolution{ElevationMOA: 4.2, WindageMOA: -0.8},
		mode: engine.ModeSolutionReady,
	}
	h := NewHandler(src)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got StatusSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.Mode != "SOLUTION_READY" {
		t.Fatalf("mode = %q, want SOLUTION_READY", got.Mode)
	}
	if got.Solution.ElevationMOA != 4.2 {
		t.Fatalf("elevation_moa = %v, want 4.2", got.Solution.ElevationMOA)
	}
	if got.RequestsTotal != 1 {
		t.Fatalf("requests_total = %d, want 1", got.RequestsTotal)
	}
}

func TestHandler_RejectsNonGet(t *testing.T) {
	h := NewHandler(fakeSource{})
	req := httptest.NewRequest(http.MethodPost, "/status", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
