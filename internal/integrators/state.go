package integrators

import "math"

// State is a flat vector of solution variables.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is a first-order ODE system dx/dt = f(t, x). The independent
// variable is time for dynamic solves and the horizontal coordinate for
// static profile solves.
type System interface {
	Derive(t float64, x State) State
	Dim() int
}

// SystemFunc adapts a plain function to a System.
type SystemFunc struct {
	N int
	F func(t float64, x State) State
}

func (s SystemFunc) Derive(t float64, x State) State { return s.F(t, x) }
func (s SystemFunc) Dim() int                        { return s.N }
