package integrators

import "math"

// Options control an adaptive solve. Zero values pick defaults.
type Options struct {
	Rtol      float64 // relative tolerance (default 1e-6)
	Atol      float64 // absolute tolerance (default 1e-8)
	InitialDt float64
	MinDt     float64
	MaxDt     float64
	MaxSteps  int
}

func (o Options) withDefaults(span float64) Options {
	if o.Rtol <= 0 {
		o.Rtol = 1e-6
	}
	if o.Atol <= 0 {
		o.Atol = 1e-8
	}
	if o.InitialDt <= 0 {
		o.InitialDt = span / 100
	}
	if o.MinDt <= 0 {
		o.MinDt = span * 1e-13
	}
	if o.MaxDt <= 0 {
		o.MaxDt = span / 10
	}
	if o.MaxSteps <= 0 {
		o.MaxSteps = 1_000_000
	}
	return o
}

// Solution is the sampled result of an adaptive solve. If Diverged is set
// the integration stopped early and only the samples reached so far are
// filled in; T and X still hold the last healthy state.
type Solution struct {
	Ts       []float64
	Xs       []State
	T        float64
	X        State
	Steps    int
	Diverged bool
}

// Solve integrates sys from t0 to t1 with adaptive Dormand-Prince stepping,
// sampling the solution at the given times (sorted, within [t0, t1]). The
// internal step sequence is independent of the samples: output values come
// from the dense-output polynomial of the accepted step, so their accuracy
// follows the integration tolerance even when steps grow large.
func Solve(sys System, x0 State, t0, t1 float64, samples []float64, opt Options) Solution {
	span := t1 - t0
	opt = opt.withDefaults(span)
	rk := NewRK45()
	eps := 1e-12 * math.Max(span, 1)

	sol := Solution{
		Ts: make([]float64, 0, len(samples)),
		Xs: make([]State, 0, len(samples)),
	}

	x := x0.Clone()
	t := t0
	si := 0
	for si < len(samples) && samples[si] <= t0+eps {
		sol.Ts = append(sol.Ts, samples[si])
		sol.Xs = append(sol.Xs, x0.Clone())
		si++
	}

	dt := math.Min(opt.InitialDt, opt.MaxDt)
	for t < t1-eps {
		if dt > t1-t {
			dt = t1 - t
		}

		at := rk.Try(sys, x, t, dt, opt.Rtol, opt.Atol)
		sol.Steps++
		if sol.Steps > opt.MaxSteps {
			sol.Diverged = true
			break
		}

		if !at.X.IsValid() {
			if dt/2 < opt.MinDt {
				sol.Diverged = true
				break
			}
			dt /= 2
			continue
		}
		if at.Err > 1 {
			dt = rk.NextDt(dt, at.Err)
			if dt < opt.MinDt {
				sol.Diverged = true
				break
			}
			continue
		}

		for si < len(samples) && samples[si] <= t+dt+eps {
			sol.Ts = append(sol.Ts, samples[si])
			sol.Xs = append(sol.Xs, interpolate(x, at, t, dt, samples[si]))
			si++
		}

		x = at.X
		t += dt
		dt = math.Min(rk.NextDt(dt, at.Err), opt.MaxDt)
	}

	sol.T = t
	sol.X = x
	return sol
}

// interpolate evaluates the fourth-order dense-output polynomial of an
// accepted step on [t, t+dt] at s, from the endpoint states, the FSAL
// derivative pair, and the mid-stage correction.
func interpolate(x0 State, at Attempt, t, dt, s float64) State {
	th := (s - t) / dt
	if th < 0 {
		th = 0
	}
	if th > 1 {
		th = 1
	}
	th1 := 1 - th

	out := make(State, len(x0))
	for i := range out {
		dy := at.X[i] - x0[i]
		r3 := dt*at.K0[i] - dy
		r4 := dy - dt*at.K1[i] - r3
		out[i] = x0[i] + th*(dy+th1*(r3+th*(r4+th1*at.D[i])))
	}
	return out
}
