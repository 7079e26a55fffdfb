package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Bubblyworld/slackline/internal/statics"
)

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRigEndpoint(t *testing.T) {
	h := New().Handler()
	rec := postJSON(t, h, "/rig", `{"gap_length": 30, "anchor_tension": 2000}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("CORS header %q", got)
	}

	var rig statics.Rig
	if err := json.Unmarshal(rec.Body.Bytes(), &rig); err != nil {
		t.Fatal(err)
	}
	if len(rig.X) == 0 || rig.Span() != 30 {
		t.Errorf("bad rig: %d samples, span %v", len(rig.X), rig.Span())
	}
	if rig.MaxDrop() <= 0 {
		t.Error("rig has no sag")
	}
}

func TestRigValidation(t *testing.T) {
	h := New().Handler()

	cases := []struct {
		name, body string
		status     int
	}{
		{"missing gap", `{"anchor_tension": 2000}`, http.StatusBadRequest},
		{"no target", `{"gap_length": 30}`, http.StatusBadRequest},
		{"both targets", `{"gap_length": 30, "anchor_tension": 2000, "natural_length": 29}`, http.StatusBadRequest},
		{"unknown field", `{"gap_length": 30, "anchor_tension": 2000, "bogus": 1}`, http.StatusBadRequest},
		{"unknown line", `{"gap_length": 30, "anchor_tension": 2000, "line": "unobtainium"}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, h, "/rig", tc.body)
			if rec.Code != tc.status {
				t.Errorf("status %d, want %d: %s", rec.Code, tc.status, rec.Body)
			}
		})
	}
}

func TestRigMethodNotAllowed(t *testing.T) {
	h := New().Handler()
	req := httptest.NewRequest(http.MethodGet, "/rig", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status %d, want 405", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := New().Handler()
	req := httptest.NewRequest(http.MethodOptions, "/rig", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("missing preflight headers")
	}
}

func TestSimulateEndpoint(t *testing.T) {
	h := New().Handler()
	body := `{
		"gap_length": 30, "anchor_tension": 2000,
		"nodes": 17, "duration": 1, "frames": 11,
		"scenario": "pluck", "displacement": -0.2
	}`
	rec := postJSON(t, h, "/simulate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}

	var resp SimulateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Rig == nil || resp.Sim == nil {
		t.Fatal("missing rig or sim in response")
	}
	if len(resp.Sim.T) != 11 {
		t.Errorf("got %d frames, want 11", len(resp.Sim.T))
	}
	if len(resp.Sim.Y[0]) != 17 {
		t.Errorf("got %d nodes, want 17", len(resp.Sim.Y[0]))
	}
}

func TestSimulateBadScenario(t *testing.T) {
	h := New().Handler()
	body := `{"gap_length": 30, "anchor_tension": 2000, "scenario": "warp"}`
	rec := postJSON(t, h, "/simulate", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400: %s", rec.Code, rec.Body)
	}
}
