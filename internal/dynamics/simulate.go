package dynamics

import (
	"fmt"

	"github.com/Bubblyworld/slackline/internal/integrators"
	"github.com/Bubblyworld/slackline/internal/statics"
)

// Constraints describe a dynamic simulation: the static rig to start from
// plus the discretization and dissipation parameters of the lumped model.
type Constraints struct {
	Static statics.Constraints `json:"static" yaml:"static"`

	// Nodes is the number of chain nodes, anchors included (default 65).
	Nodes int `json:"nodes,omitempty" yaml:"nodes,omitempty"`

	// Damping is the per-node damping ratio against critical (default 0,
	// an undamped line).
	Damping float64 `json:"damping,omitempty" yaml:"damping,omitempty"`

	// TensionFloor clamps segment tension from below. It must be
	// non-negative; the default of zero makes slack segments exert no
	// force, like real webbing.
	TensionFloor float64 `json:"tension_floor,omitempty" yaml:"tension_floor,omitempty"`
}

// SimOptions control one simulation run. Zero values pick defaults.
type SimOptions struct {
	TEnd   float64 // simulated seconds (default 10)
	Frames int     // output frames, evenly spaced over [0, TEnd] (default 300)

	Perturbation Perturbation // initial shape change, optional
	Forcing      Forcing      // external drive, optional

	Rtol float64 // integrator relative tolerance (default 1e-6)
	Atol float64 // integrator absolute tolerance (default 1e-8)
}

func (o SimOptions) withDefaults() SimOptions {
	if o.TEnd <= 0 {
		o.TEnd = 10
	}
	if o.Frames < 2 {
		o.Frames = 300
	}
	return o
}

// DynamicRig is a simulated line: node positions, frame times, and the
// height and velocity of every node per frame.
type DynamicRig struct {
	X []float64   `json:"x"` // node positions (m)
	T []float64   `json:"t"` // frame times (s)
	Y [][]float64 `json:"y"` // heights per frame, Y[frame][node]
	V [][]float64 `json:"v,omitempty"`

	Steps       int      `json:"-"` // integrator steps taken
	EnergyDrift float64  `json:"energy_drift,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

// chainSystem adapts the lumped line to the integrator interface over the
// state vector [y..., v...].
type chainSystem struct {
	d       *discreteLine
	forcing Forcing
	ext     []float64
	acc     []float64
}

func newChainSystem(d *discreteLine, forcing Forcing) *chainSystem {
	n := len(d.xs)
	s := &chainSystem{d: d, forcing: forcing, acc: make([]float64, n)}
	if forcing != nil {
		s.ext = make([]float64, n)
	}
	return s
}

func (s *chainSystem) Dim() int { return 2 * len(s.d.xs) }

func (s *chainSystem) Derive(t float64, x integrators.State) integrators.State {
	n := len(s.d.xs)
	y, v := x[:n], x[n:]

	if s.forcing != nil {
		for i := range s.ext {
			s.ext[i] = 0
		}
		s.forcing(t, s.d.xs, y, s.ext)
	}
	s.d.accelerations(y, v, s.ext, s.acc)

	out := make(integrators.State, 2*n)
	copy(out[:n], v)
	copy(out[n:], s.acc)
	return out
}

// Simulate solves the static rig, discretizes it, and integrates the chain
// over time. It returns the frames together with the underlying equilibrium,
// so callers can relate motion to the rest shape. A diverging simulation is
// not an error: the frames reached are returned with a warning attached.
func (c *Constraints) Simulate(opt SimOptions) (*DynamicRig, *statics.Rig, error) {
	opt = opt.withDefaults()

	rig, err := c.Static.Solve()
	if err != nil {
		return nil, nil, err
	}

	nodes := c.Nodes
	if nodes == 0 {
		nodes = 65
	}
	d, err := discretize(rig, c.Static.Line, nodes, c.Damping, c.TensionFloor)
	if err != nil {
		return nil, rig, err
	}

	x0 := make(integrators.State, 2*nodes)
	copy(x0[:nodes], d.yEq)
	if opt.Perturbation != nil {
		for i := 1; i < nodes-1; i++ {
			x0[i] += opt.Perturbation(d.xs[i])
		}
	}

	times := make([]float64, opt.Frames)
	for i := range times {
		times[i] = opt.TEnd * float64(i) / float64(opt.Frames-1)
	}

	sys := newChainSystem(d, opt.Forcing)
	sol := integrators.Solve(sys, x0, 0, opt.TEnd, times, integrators.Options{
		Rtol: opt.Rtol,
		Atol: opt.Atol,
	})

	dyn := &DynamicRig{
		X:     d.xs,
		T:     sol.Ts,
		Y:     make([][]float64, len(sol.Xs)),
		V:     make([][]float64, len(sol.Xs)),
		Steps: sol.Steps,
	}
	for i, st := range sol.Xs {
		y := make([]float64, nodes)
		v := make([]float64, nodes)
		copy(y, st[:nodes])
		copy(v, st[nodes:])
		dyn.Y[i] = y
		dyn.V[i] = v
	}
	if n := len(dyn.Y); n > 1 {
		e0 := d.energy(dyn.Y[0], dyn.V[0])
		e1 := d.energy(dyn.Y[n-1], dyn.V[n-1])
		if e0 != 0 {
			dyn.EnergyDrift = (e1 - e0) / e0
		}
	}
	if sol.Diverged {
		dyn.Warnings = append(dyn.Warnings,
			fmt.Sprintf("simulation diverged at t=%.3fs; returning %d of %d frames", sol.T, len(sol.Ts), opt.Frames))
	}
	return dyn, rig, nil
}
