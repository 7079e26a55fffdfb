package statics

import (
	"errors"
	"math"

	"github.com/Bubblyworld/slackline/internal/lagrangian"
)

// errJumpUnsolvable flags a point load that the line cannot hold statically:
// the tension at the load is too low for any post-load slope to balance the
// weight.
var errJumpUnsolvable = errors.New("jump conditions unsolvable: line tension too low for the load")

// solveJump finds the post-load derivatives (a, b) satisfying the momentum
// jump conditions at a point load, by damped Newton iteration on the
// residuals with a finite-difference Jacobian.
//
// The iteration is seeded with the closed-form solution of the exact
// formulation, for which the scalar tension T = K(s/b - 1) is continuous
// across the load and the vertical component alone jumps by the weight.
// Writing q for the post-load value of a/s, that gives q = aL/sL + M·g/T,
// solvable only when |q| < 1. Other formulations start from the same seed
// and let the iteration walk to their own root.
func solveJump(sys *lagrangian.System, p lagrangian.Params, mass, y, aL, bL float64) (float64, float64, error) {
	sL := math.Sqrt(1 + aL*aL)
	tension := p.K * (sL/bL - 1)
	if tension <= 0 {
		return 0, 0, errJumpUnsolvable
	}
	q := aL/sL + mass*p.G/tension
	if math.Abs(q) >= 1-1e-12 {
		return 0, 0, errJumpUnsolvable
	}
	a := q / math.Sqrt(1-q*q)
	b := bL * math.Sqrt(1+a*a) / sL

	res := sys.JumpResiduals(p, mass, y, aL, bL)
	tol := 1e-9 * p.K

	r1, r2 := res(a, b)
	norm := math.Hypot(r1, r2)
	for it := 0; it < 50 && norm > tol; it++ {
		ha := 1e-7 * (1 + math.Abs(a))
		hb := 1e-7 * (1 + math.Abs(b))
		r1a, r2a := res(a+ha, b)
		r1b, r2b := res(a, b+hb)
		j11 := (r1a - r1) / ha
		j21 := (r2a - r2) / ha
		j12 := (r1b - r1) / hb
		j22 := (r2b - r2) / hb

		det := j11*j22 - j12*j21
		if det == 0 || math.IsNaN(det) {
			return 0, 0, errJumpUnsolvable
		}
		da := -(r1*j22 - r2*j12) / det
		db := -(j11*r2 - j21*r1) / det

		// Halve the step until the residual shrinks and the strain
		// derivative stays positive.
		lam := 1.0
		for {
			na, nb := a+lam*da, b+lam*db
			if nb > 1e-12 {
				n1, n2 := res(na, nb)
				if nn := math.Hypot(n1, n2); nn < norm || lam < 1.0/64 {
					a, b, r1, r2, norm = na, nb, n1, n2, nn
					break
				}
			}
			lam /= 2
			if lam < 1.0/1024 {
				return 0, 0, errJumpUnsolvable
			}
		}
	}
	if norm > tol || math.IsNaN(norm) {
		return 0, 0, errJumpUnsolvable
	}
	return a, b, nil
}
