package dynamics

import "math"

// Perturbation reshapes the initial height profile away from equilibrium.
// It is evaluated at every interior node; anchors are never displaced.
type Perturbation func(x float64) float64

// Pluck displaces the line by a Gaussian bump centered on position: the
// shape of a line pulled down (or up) at one point and released.
func Pluck(position, displacement, width float64) Perturbation {
	if width <= 0 {
		width = 2.0
	}
	return func(x float64) float64 {
		d := (x - position) / width
		return displacement * math.Exp(-d*d)
	}
}

// Forcing drives the line with an external vertical force. It is sampled
// once per derivative evaluation with the instantaneous node heights, so a
// drive can react to the line's state; ys must be treated as read-only. out
// has one entry per node and arrives zeroed, in newtons.
type Forcing func(t float64, xs, ys, out []float64)

// Bounce applies a sinusoidal force at the node nearest to position, the
// way a slackliner pumps the line.
func Bounce(position, freq, amplitude, phase float64) Forcing {
	return func(t float64, xs, ys, out []float64) {
		out[nearestInterior(xs, position)] = amplitude * math.Sin(2*math.Pi*freq*t+phase)
	}
}

// Impulse applies a half-sine kick at the node nearest to position, over the
// given duration from t=0.
func Impulse(position, magnitude, duration float64) Forcing {
	return func(t float64, xs, ys, out []float64) {
		if t < 0 || t > duration {
			return
		}
		out[nearestInterior(xs, position)] = magnitude * math.Sin(math.Pi*t/duration)
	}
}

func nearestInterior(xs []float64, pos float64) int {
	best, dist := 1, math.Inf(1)
	for i := 1; i < len(xs)-1; i++ {
		if v := math.Abs(xs[i] - pos); v < dist {
			best, dist = i, v
		}
	}
	return best
}
