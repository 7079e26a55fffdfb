// Package lagrangian holds the energy formulations of the webbing and the
// first-order ODE systems derived from them.
//
// The governing equations come from the Euler-Lagrange operator applied to a
// Lagrangian density L(y, n, y', n') over the horizontal coordinate x, where
// y(x) is the vertical drop (negative below the anchors) and n(x) is the
// natural (unstretched) length of webbing consumed up to x. The derivation
// was done symbolically offline; each Form carries the resulting closed
// forms, solved for the leading derivatives, together with the canonical
// momenta used to build jump conditions at point loads.
package lagrangian

import (
	"fmt"
	"math"
)

// Params are the material constants a compiled system is evaluated with.
type Params struct {
	M float64 // webbing mass per meter (kg/m)
	G float64 // gravitational acceleration (m/s^2)
	K float64 // newtons per 100% stretch (N)
}

// State is a point of the static profile: drop, natural length, and their
// derivatives with respect to x (a = y', b = n').
type State struct {
	Y, N, A, B float64
}

// System is a compiled Lagrangian: the explicit first-order RHS of the
// profile ODEs plus the canonical momenta (∂L/∂y', ∂L/∂n'). Across a point
// load of weight W the momenta satisfy
//
//	py(right) - py(left) = W
//	pn(right) - pn(left) = 0
//
// which JumpResiduals exposes in root-finding form.
type System struct {
	Form    string
	Derive  func(p Params, s State) (da, db float64)
	Momenta func(p Params, y, a, b float64) (py, pn float64)
}

// RHS returns the full first-order derivative of the profile state.
func (sys *System) RHS(p Params, s State) State {
	da, db := sys.Derive(p, s)
	return State{Y: s.A, N: s.B, A: da, B: db}
}

// JumpResiduals returns the residual function of the jump conditions at a
// point load of mass M, as a function of the unknown right-hand derivatives.
// Both residuals vanish at the physical post-load state.
func (sys *System) JumpResiduals(p Params, loadMass, y, aL, bL float64) func(aR, bR float64) (r1, r2 float64) {
	pyL, pnL := sys.Momenta(p, y, aL, bL)
	w := loadMass * p.G
	return func(aR, bR float64) (float64, float64) {
		pyR, pnR := sys.Momenta(p, y, aR, bR)
		return pyR - pyL - w, pnR - pnL
	}
}

// Form identifies a Lagrangian formulation. Compile turns it into a System,
// memoized per form for the process lifetime.
type Form struct {
	name   string
	derive func() (*System, error)
}

func (f Form) Name() string { return f.name }

// Ideal is the exact elastic-webbing Lagrangian
//
//	L = m·g·y·n' + K/2·(1+y'^2)/n' - K·sqrt(1+y'^2) + K/2·n'
//
// with EL equations solved for y'' and n'' (s = sqrt(1+a^2)):
//
//	y'' = m·g·b^2·s / (K·(s-b))
//	n'' = m·g·a·b^4 / (K·s^2·(s-b))
var Ideal = Form{
	name: "ideal",
	derive: func() (*System, error) {
		return &System{
			Form: "ideal",
			Derive: func(p Params, st State) (float64, float64) {
				a, b := st.A, st.B
				s := math.Sqrt(1 + a*a)
				den := p.K * (s - b)
				da := p.M * p.G * b * b * s / den
				db := p.M * p.G * a * b * b * b * b / (s * s * den)
				return da, db
			},
			Momenta: func(p Params, y, a, b float64) (float64, float64) {
				s := math.Sqrt(1 + a*a)
				py := p.K * a * (1/b - 1/s)
				pn := p.M*p.G*y - p.K*(1+a*a)/(2*b*b) + p.K/2
				return py, pn
			},
		}, nil
	},
}

// SmallSag approximates sqrt(1+y'^2) by 1+y'^2/2, valid for shallow lines.
// With D = (1-b)(1+a^2) - a^2:
//
//	y'' = m·g·b^2 / (K·D)
//	n'' = m·g·a·b^4 / (K·D)
var SmallSag = Form{
	name: "small-sag",
	derive: func() (*System, error) {
		return &System{
			Form: "small-sag",
			Derive: func(p Params, st State) (float64, float64) {
				a, b := st.A, st.B
				d := (1-b)*(1+a*a) - a*a
				den := p.K * d
				da := p.M * p.G * b * b / den
				db := p.M * p.G * a * b * b * b * b / den
				return da, db
			},
			Momenta: func(p Params, y, a, b float64) (float64, float64) {
				py := p.K * a * (1/b - 1)
				pn := p.M*p.G*y - p.K*(1+a*a)/(2*b*b) + p.K/2
				return py, pn
			},
		}, nil
	},
}

// Forms lists the known formulations.
func Forms() []Form { return []Form{Ideal, SmallSag} }

// FormByName resolves a formulation by its identity string.
func FormByName(name string) (Form, error) {
	for _, f := range Forms() {
		if f.name == name {
			return f, nil
		}
	}
	return Form{}, fmt.Errorf("unknown lagrangian form: %q", name)
}
