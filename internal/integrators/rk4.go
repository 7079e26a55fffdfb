package integrators

// RK4 is a fixed-step classic Runge-Kutta stepper, kept for cross-checking
// the adaptive integrator in tests and benchmarks.
type RK4 struct {
	scratch State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(sys System, x State, t, dt float64) State {
	n := len(x)
	if len(r.scratch) != n {
		r.scratch = make(State, n)
	}

	k1 := sys.Derive(t, x)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*k1[i]
	}
	k2 := sys.Derive(t+dt*0.5, r.scratch)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*k2[i]
	}
	k3 := sys.Derive(t+dt*0.5, r.scratch)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*k3[i]
	}
	k4 := sys.Derive(t+dt, r.scratch)

	result := make(State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return result
}
