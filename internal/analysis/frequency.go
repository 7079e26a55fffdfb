// Package analysis extracts frequency-domain characteristics from simulated
// line motion.
package analysis

import (
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/Bubblyworld/slackline/internal/dynamics"
)

// Spectrum is the one-sided amplitude spectrum of a single node's height
// history.
type Spectrum struct {
	Freqs []float64 `json:"freqs"` // Hz
	Amps  []float64 `json:"amps"`  // meters
}

// NodeSpectrum computes the amplitude spectrum of an evenly sampled height
// series. The mean is removed first, so the static sag does not swamp the
// oscillation peaks.
func NodeSpectrum(times, series []float64) (*Spectrum, error) {
	n := len(series)
	if n != len(times) {
		return nil, fmt.Errorf("got %d times for %d samples", len(times), n)
	}
	if n < 8 {
		return nil, fmt.Errorf("need at least 8 samples, got %d", n)
	}
	dt := (times[n-1] - times[0]) / float64(n-1)
	if dt <= 0 {
		return nil, fmt.Errorf("sample times must be increasing")
	}

	var mean float64
	for _, y := range series {
		mean += y
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, y := range series {
		centered[i] = y - mean
	}

	coeffs := fft.FFTReal(centered)
	half := n / 2
	s := &Spectrum{
		Freqs: make([]float64, half),
		Amps:  make([]float64, half),
	}
	for k := 0; k < half; k++ {
		s.Freqs[k] = float64(k) / (float64(n) * dt)
		amp := 2 * cmplx.Abs(coeffs[k]) / float64(n)
		if k == 0 {
			amp /= 2
		}
		s.Amps[k] = amp
	}
	return s, nil
}

// Fundamental is the frequency of the strongest non-DC spectral peak.
func (s *Spectrum) Fundamental() float64 {
	best, amp := 0.0, 0.0
	for k := 1; k < len(s.Freqs); k++ {
		if s.Amps[k] > amp {
			best, amp = s.Freqs[k], s.Amps[k]
		}
	}
	return best
}

// MidpointSpectrum is the spectrum of the center node of a simulated rig,
// the usual probe for the fundamental transverse mode.
func MidpointSpectrum(dyn *dynamics.DynamicRig) (*Spectrum, error) {
	if len(dyn.Y) == 0 {
		return nil, fmt.Errorf("no frames to analyze")
	}
	mid := len(dyn.X) / 2
	series := make([]float64, len(dyn.Y))
	for f := range dyn.Y {
		series[f] = dyn.Y[f][mid]
	}
	return NodeSpectrum(dyn.T, series)
}
