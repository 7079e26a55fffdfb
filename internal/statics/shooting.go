package statics

import (
	"errors"
	"fmt"
	"math"

	"github.com/Bubblyworld/slackline/internal/integrators"
	"github.com/Bubblyworld/slackline/internal/lagrangian"
)

// Shooting tolerances: the right anchor must be hit to within a micrometer,
// and natural-length targets matched to the same scale. Bisection brackets
// the launch angle between nearly-flat and ~86 degrees.
const (
	yTol     = 1e-6
	nTol     = 1e-6
	thetaLo  = 1e-8
	thetaHi  = 1.5
	maxIters = 200
)

// errDiverged flags a trial integration that blew up before reaching the
// right anchor. The shooting searches treat it as an overly steep launch,
// since the profile curvature grows without bound as the line plunges.
var errDiverged = errors.New("profile integration diverged")

// profile is a solved static shape sampled over the gap, in raw state
// columns. Load positions appear twice, once per side of the jump.
type profile struct {
	xs, ys, ns, as, bs []float64
}

func (pr *profile) extend(sol integrators.Solution) {
	for i, x := range sol.Ts {
		st := sol.Xs[i]
		pr.xs = append(pr.xs, x)
		pr.ys = append(pr.ys, st[0])
		pr.ns = append(pr.ns, st[1])
		pr.as = append(pr.as, st[2])
		pr.bs = append(pr.bs, st[3])
	}
}

// profileODE adapts a compiled Lagrangian to the integrator interface over
// the state vector [y, n, a, b].
type profileODE struct {
	sys *lagrangian.System
	p   lagrangian.Params
}

func (o profileODE) Dim() int { return 4 }

func (o profileODE) Derive(_ float64, x integrators.State) integrators.State {
	d := o.sys.RHS(o.p, lagrangian.State{Y: x[0], N: x[1], A: x[2], B: x[3]})
	return integrators.State{d.Y, d.N, d.A, d.B}
}

// shooter runs shooting-method searches for one compiled system over one gap.
type shooter struct {
	sys *lagrangian.System
	p   lagrangian.Params
	gap float64
	pts int
}

// initial builds the left-anchor state for a launch angle theta (radians
// below horizontal) and a left anchor tension. The strain at the anchor
// follows from Hooke's law: ds/dn = T/K + 1.
func (sh *shooter) initial(theta, tension float64) lagrangian.State {
	a := math.Tan(-theta)
	s := math.Sqrt(1 + a*a)
	return lagrangian.State{Y: 0, N: 0, A: a, B: s / (tension/sh.p.K + 1)}
}

func (sh *shooter) segmentSamples(x0, x1 float64) []float64 {
	n := int(math.Round((x1-x0)/sh.gap*float64(sh.pts-1))) + 1
	if n < 2 {
		n = 2
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = x0 + (x1-x0)*float64(i)/float64(n-1)
	}
	out[n-1] = x1
	return out
}

// shootOnce integrates the profile from the left anchor across the whole
// gap, solving the jump conditions at each load boundary. With grid set it
// also assembles the sampled profile; searches pass grid=false and only look
// at the terminal state.
func (sh *shooter) shootOnce(theta, tension float64, loads []PointLoad, grid bool) (lagrangian.State, *profile, error) {
	ode := profileODE{sys: sh.sys, p: sh.p}
	opts := integrators.Options{Rtol: 1e-9, Atol: 1e-11}

	bounds := make([]float64, 0, len(loads)+2)
	bounds = append(bounds, 0)
	for _, ld := range loads {
		bounds = append(bounds, ld.Position)
	}
	bounds = append(bounds, sh.gap)

	var prof *profile
	if grid {
		prof = &profile{}
	}

	st := sh.initial(theta, tension)
	for i := 0; i+1 < len(bounds); i++ {
		x0, x1 := bounds[i], bounds[i+1]
		var samples []float64
		if grid {
			samples = sh.segmentSamples(x0, x1)
		}

		sol := integrators.Solve(ode, integrators.State{st.Y, st.N, st.A, st.B}, x0, x1, samples, opts)
		if sol.Diverged {
			return st, nil, fmt.Errorf("%w at x=%f", errDiverged, sol.T)
		}
		if grid {
			prof.extend(sol)
		}
		st = lagrangian.State{Y: sol.X[0], N: sol.X[1], A: sol.X[2], B: sol.X[3]}

		if i+1 < len(loads)+1 {
			aR, bR, err := solveJump(sh.sys, sh.p, loads[i].Mass, st.Y, st.A, st.B)
			if err != nil {
				return st, nil, fmt.Errorf("load at x=%f: %w", x1, err)
			}
			st.A, st.B = aR, bR
		}
	}
	return st, prof, nil
}

// shootUnloaded finds the launch angle that lands the bare line on the right
// anchor for a given anchor tension. The terminal height is monotonically
// decreasing in the launch angle, so plain bisection applies: too shallow
// and the line overshoots above the anchor, too steep and it plunges below.
func (sh *shooter) shootUnloaded(tension float64) (*profile, error) {
	f := func(theta float64) float64 {
		end, _, err := sh.shootOnce(theta, tension, nil, false)
		if err != nil {
			return math.Inf(-1)
		}
		return end.Y
	}

	lo, hi := thetaLo, thetaHi
	for i := 0; i < maxIters; i++ {
		mid := (lo + hi) / 2
		fm := f(mid)
		if math.Abs(fm) < yTol {
			_, prof, err := sh.shootOnce(mid, tension, nil, true)
			return prof, err
		}
		if fm > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return nil, fmt.Errorf("%w: launch angle search exhausted at tension %f N", ErrNoConvergence, tension)
}

// matchAngle is the inner search of the loaded solve: for a fixed left
// anchor tension it finds the launch angle that lands on the right anchor
// with all jump conditions satisfied. An unsolvable jump reads as a shallow
// launch (the line meets the load with too little slope to spare), a
// divergence as a steep one.
func (sh *shooter) matchAngle(tension float64, loads []PointLoad) (float64, lagrangian.State, error) {
	if _, _, err := sh.shootOnce(thetaHi, tension, loads, false); errors.Is(err, errJumpUnsolvable) {
		// Even the steepest launch cannot carry the loads: the anchor
		// tension itself is too low.
		return 0, lagrangian.State{}, err
	}

	lo, hi := thetaLo, thetaHi
	for i := 0; i < maxIters; i++ {
		mid := (lo + hi) / 2
		end, _, err := sh.shootOnce(mid, tension, loads, false)
		switch {
		case errors.Is(err, errJumpUnsolvable):
			lo = mid
		case err != nil:
			hi = mid
		case math.Abs(end.Y) < yTol:
			return mid, end, nil
		case end.Y > 0:
			lo = mid
		default:
			hi = mid
		}
	}
	return 0, lagrangian.State{}, fmt.Errorf("%w: launch angle search exhausted at tension %f N", ErrNoConvergence, tension)
}

// shootNaturalLength finds the left anchor tension at which the solved
// profile consumes exactly the target natural length of webbing, by
// bisection over tension with a full angle search per trial. Consumed
// natural length decreases as tension rises (the line stretches more and
// sags less), which orients the bracket updates.
func (sh *shooter) shootNaturalLength(target float64, loads []PointLoad) (*profile, error) {
	g := func(tension float64) (float64, float64, error) {
		theta, end, err := sh.matchAngle(tension, loads)
		if err != nil {
			return 0, 0, err
		}
		return end.N - target, theta, nil
	}

	lo, hi := 1.0, sh.p.K
	for tries := 0; ; tries++ {
		gh, _, err := g(hi)
		if err == nil && gh < 0 {
			break
		}
		if tries == 4 {
			return nil, fmt.Errorf("%w: no anchor tension up to %f N matches natural length %f m", ErrNoConvergence, hi, target)
		}
		lo, hi = hi, hi*10
	}

	for i := 0; i < maxIters; i++ {
		mid := (lo + hi) / 2
		gm, theta, err := g(mid)
		switch {
		case errors.Is(err, errJumpUnsolvable):
			lo = mid
		case err != nil:
			return nil, err
		case math.Abs(gm) < nTol:
			_, prof, perr := sh.shootOnce(theta, mid, loads, true)
			return prof, perr
		case gm > 0:
			lo = mid
		default:
			hi = mid
		}
	}
	return nil, fmt.Errorf("%w: tension search exhausted for natural length %f m", ErrNoConvergence, target)
}
