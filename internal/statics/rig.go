package statics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/Bubblyworld/slackline/internal/line"
)

// Rig is a solved equilibrium profile, sampled over the gap. All columns
// share one index; at each point load the x value appears twice, carrying
// the left- and right-hand values of the discontinuous columns.
type Rig struct {
	X []float64 `json:"x"` // horizontal position (m)
	N []float64 `json:"n"` // natural webbing length consumed (m)
	L []float64 `json:"l"` // stretched arc length (m)
	Y []float64 `json:"y"` // vertical position, negative below the anchors (m)
	T []float64 `json:"T"` // scalar tension (N)
	A []float64 `json:"A"` // inclination from horizontal (degrees)

	// Warnings carry non-fatal diagnostics, e.g. slack (negative tension)
	// regions where the model is unreliable.
	Warnings []string `json:"warnings,omitempty"`
}

// newRig post-processes a raw profile into user-facing columns: tension via
// Hooke's law from the local strain, inclination from the slope, and arc
// length by trapezoidal accumulation of the stretched element ds = s·dx.
func newRig(l line.Line, prof *profile) *Rig {
	n := len(prof.xs)
	r := &Rig{
		X: prof.xs,
		N: prof.ns,
		Y: prof.ys,
		L: make([]float64, n),
		T: make([]float64, n),
		A: make([]float64, n),
	}

	sPrev := 0.0
	for i := 0; i < n; i++ {
		s := math.Sqrt(1 + prof.as[i]*prof.as[i])
		r.T[i] = l.K * (s/prof.bs[i] - 1)
		r.A[i] = math.Abs(math.Atan(prof.as[i])) * 180 / math.Pi
		if i > 0 {
			r.L[i] = r.L[i-1] + (prof.xs[i]-prof.xs[i-1])*(s+sPrev)/2
		}
		sPrev = s
	}

	if minT := floats.Min(r.T); minT < -1e-9 {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("line goes slack (minimum tension %.1f N); the inextensible-element model is unreliable there", minT))
	}
	return r
}

// Span is the horizontal extent of the rig.
func (r *Rig) Span() float64 { return r.X[len(r.X)-1] }

// NaturalLength is the unstretched webbing length consumed by the gap.
func (r *Rig) NaturalLength() float64 { return r.N[len(r.N)-1] }

// ArcLength is the stretched length of the hanging line.
func (r *Rig) ArcLength() float64 { return r.L[len(r.L)-1] }

// MaxTension is the peak scalar tension along the line.
func (r *Rig) MaxTension() float64 { return floats.Max(r.T) }

// MaxDrop is the depth of the lowest point below the anchors, as a positive
// number of meters.
func (r *Rig) MaxDrop() float64 {
	drop := 0.0
	for _, y := range r.Y {
		if -y > drop {
			drop = -y
		}
	}
	return drop
}

// ToMap flattens the rig into named columns for exporters that work on
// generic tabular data.
func (r *Rig) ToMap() map[string][]float64 {
	return map[string][]float64{
		"x": r.X, "n": r.N, "l": r.L, "y": r.Y, "T": r.T, "A": r.A,
	}
}
