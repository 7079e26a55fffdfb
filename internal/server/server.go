// Package server exposes the solvers over a small JSON HTTP API, for use by
// web frontends.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Bubblyworld/slackline/internal/dynamics"
	"github.com/Bubblyworld/slackline/internal/line"
	"github.com/Bubblyworld/slackline/internal/statics"
)

// RigRequest is the payload of POST /rig. GapLength is required; exactly one
// of AnchorTension and NaturalLength must be set.
type RigRequest struct {
	Line          string              `json:"line"`
	GapLength     *float64            `json:"gap_length"`
	AnchorTension float64             `json:"anchor_tension"`
	NaturalLength float64             `json:"natural_length"`
	Form          string              `json:"form"`
	Loads         []statics.PointLoad `json:"loads"`
}

func (r *RigRequest) constraints() (statics.Constraints, error) {
	if r.GapLength == nil {
		return statics.Constraints{}, fmt.Errorf("%w: gap_length is required", statics.ErrInvalidConfig)
	}
	name := r.Line
	if name == "" {
		name = line.DyneemitePro.Name
	}
	w, err := line.ByName(name)
	if err != nil {
		return statics.Constraints{}, fmt.Errorf("%w: %v", statics.ErrInvalidConfig, err)
	}
	return statics.Constraints{
		Line:          w,
		GapLength:     *r.GapLength,
		AnchorTension: r.AnchorTension,
		NaturalLength: r.NaturalLength,
		Form:          r.Form,
		Loads:         r.Loads,
	}, nil
}

// SimulateRequest is the payload of POST /simulate: a rig plus the
// discretization and scenario parameters.
type SimulateRequest struct {
	RigRequest

	Nodes        int     `json:"nodes"`
	Damping      float64 `json:"damping"`
	TensionFloor float64 `json:"tension_floor"`
	Duration     float64 `json:"duration"`
	Frames       int     `json:"frames"`

	Scenario     string  `json:"scenario"`
	Position     float64 `json:"position"`
	Displacement float64 `json:"displacement"`
	Width        float64 `json:"width"`
	Frequency    float64 `json:"frequency"`
	Amplitude    float64 `json:"amplitude"`
	Phase        float64 `json:"phase"`
	Magnitude    float64 `json:"magnitude"`
	Kick         float64 `json:"kick_duration"`
}

func (r *SimulateRequest) options(gap float64) (dynamics.SimOptions, error) {
	opt := dynamics.SimOptions{TEnd: r.Duration, Frames: r.Frames}
	pos := r.Position
	if pos == 0 {
		pos = gap / 2
	}
	switch r.Scenario {
	case "", "none":
	case "pluck":
		opt.Perturbation = dynamics.Pluck(pos, r.Displacement, r.Width)
	case "bounce":
		opt.Forcing = dynamics.Bounce(pos, r.Frequency, r.Amplitude, r.Phase)
	case "impulse":
		opt.Forcing = dynamics.Impulse(pos, r.Magnitude, r.Kick)
	default:
		return opt, fmt.Errorf("%w: unknown scenario %q", statics.ErrInvalidConfig, r.Scenario)
	}
	return opt, nil
}

// SimulateResponse bundles the equilibrium with the simulated frames.
type SimulateResponse struct {
	Rig *statics.Rig         `json:"rig"`
	Sim *dynamics.DynamicRig `json:"sim"`
}

type Server struct {
	mux *http.ServeMux
}

func New() *Server {
	s := &Server{mux: http.NewServeMux()}
	s.mux.HandleFunc("/rig", s.handleRig)
	s.mux.HandleFunc("/simulate", s.handleSimulate)
	return s
}

// Handler returns the API with CORS applied, so browser frontends on other
// origins can call it.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.mux)
}

func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.Handler())
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("use POST"))
		return
	}

	var req RigRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cons, err := req.constraints()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rig, err := cons.Solve()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, rig)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("use POST"))
		return
	}

	var req SimulateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cons, err := req.constraints()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	opt, err := req.options(cons.GapLength)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	dc := dynamics.Constraints{
		Static:       cons,
		Nodes:        req.Nodes,
		Damping:      req.Damping,
		TensionFloor: req.TensionFloor,
	}
	dyn, rig, err := dc.Simulate(opt)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, SimulateResponse{Rig: rig, Sim: dyn})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, statics.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, statics.ErrNoConvergence):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
