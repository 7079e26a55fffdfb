// Package dynamics simulates the time-domain motion of a rigged slackline
// by lumping the webbing onto a chain of point masses joined by elastic
// segments, anchored at both ends, and integrating the resulting ODE system.
package dynamics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"

	"github.com/Bubblyworld/slackline/internal/line"
	"github.com/Bubblyworld/slackline/internal/statics"
)

// discreteLine is the lumped model built from a static equilibrium: node
// positions and heights, per-segment natural lengths, per-node masses and
// damping coefficients. Nodes move vertically only; the end nodes are pinned
// to the anchors.
type discreteLine struct {
	xs   []float64 // node x positions, uniform over the span
	yEq  []float64 // equilibrium heights
	nat  []float64 // natural length per segment, len(xs)-1
	mass []float64 // lumped node mass
	damp []float64 // per-node damping coefficient

	k     float64 // webbing stiffness (N per 100% strain)
	g     float64
	floor float64 // tension clamp for slack segments
}

// dedupColumns strips the duplicated samples a rig carries at point loads,
// keeping the first of each pair. The interpolators need strictly increasing
// abscissae; y and n are continuous, so either side works.
func dedupColumns(rig *statics.Rig) (xs, ys, ns []float64) {
	for i := range rig.X {
		if i > 0 && rig.X[i] <= xs[len(xs)-1] {
			continue
		}
		xs = append(xs, rig.X[i])
		ys = append(ys, rig.Y[i])
		ns = append(ns, rig.N[i])
	}
	return xs, ys, ns
}

// discretize resamples a solved equilibrium onto a uniform grid of nodes.
// Natural lengths come from the equilibrium natural-length column, so the
// chain at rest reproduces the static tension profile; node masses lump the
// webbing mass of the adjacent half-segments.
func discretize(rig *statics.Rig, l line.Line, nodes int, zeta, floor float64) (*discreteLine, error) {
	if nodes < 3 {
		return nil, fmt.Errorf("%w: need at least 3 nodes, got %d", statics.ErrInvalidConfig, nodes)
	}
	if floor < 0 {
		return nil, fmt.Errorf("%w: tension floor must be non-negative, got %f", statics.ErrInvalidConfig, floor)
	}

	xs, ys, ns := dedupColumns(rig)
	var yFit, nFit interp.PiecewiseLinear
	if err := yFit.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("fitting height profile: %w", err)
	}
	if err := nFit.Fit(xs, ns); err != nil {
		return nil, fmt.Errorf("fitting natural length profile: %w", err)
	}

	span := rig.Span()
	d := &discreteLine{
		xs:    make([]float64, nodes),
		yEq:   make([]float64, nodes),
		nat:   make([]float64, nodes-1),
		mass:  make([]float64, nodes),
		damp:  make([]float64, nodes),
		k:     l.K,
		g:     l.G,
		floor: floor,
	}

	nEq := make([]float64, nodes)
	for i := 0; i < nodes; i++ {
		d.xs[i] = span * float64(i) / float64(nodes-1)
		d.yEq[i] = yFit.Predict(d.xs[i])
		nEq[i] = nFit.Predict(d.xs[i])
	}
	for j := 0; j < nodes-1; j++ {
		d.nat[j] = nEq[j+1] - nEq[j]
		if d.nat[j] <= 0 {
			return nil, fmt.Errorf("non-positive natural length in segment %d", j)
		}
	}

	// Webbing mass lives on natural length: each node carries half of each
	// adjacent segment.
	for i := 0; i < nodes; i++ {
		var n float64
		if i > 0 {
			n += d.nat[i-1] / 2
		}
		if i < nodes-1 {
			n += d.nat[i] / 2
		}
		d.mass[i] = l.M * n
	}

	// Damping is specified as a ratio against the local critical damping
	// of a node on its segment springs.
	if zeta > 0 {
		for i := 1; i < nodes-1; i++ {
			natAvg := (d.nat[i-1] + d.nat[i]) / 2
			d.damp[i] = zeta * 2 * math.Sqrt(d.k*d.mass[i]/natAvg)
		}
	}
	return d, nil
}

// accelerations computes the vertical acceleration of every node given
// heights, velocities, and an optional external force per node. Anchors stay
// pinned.
func (d *discreteLine) accelerations(y, v, ext, out []float64) {
	n := len(d.xs)

	// Per-segment tension and the vertical direction cosine toward the
	// right neighbor.
	tPrev, sinPrev := 0.0, 0.0
	for i := 0; i < n; i++ {
		var tNext, sinNext float64
		if i < n-1 {
			dx := d.xs[i+1] - d.xs[i]
			dy := y[i+1] - y[i]
			length := math.Hypot(dx, dy)
			tension := d.k * (length/d.nat[i] - 1)
			if tension < d.floor {
				tension = d.floor
			}
			tNext = tension
			sinNext = dy / length
		}

		if i == 0 || i == n-1 {
			out[i] = 0
		} else {
			f := tNext*sinNext - tPrev*sinPrev
			f -= d.mass[i] * d.g
			f -= d.damp[i] * v[i]
			if ext != nil {
				f += ext[i]
			}
			out[i] = f / d.mass[i]
		}

		tPrev, sinPrev = tNext, sinNext
	}
}

// energy is the total mechanical energy of a chain state: kinetic plus
// gravitational plus elastic, with the zero of gravity at anchor height.
func (d *discreteLine) energy(y, v []float64) float64 {
	var e float64
	for i := range d.xs {
		e += 0.5*d.mass[i]*v[i]*v[i] + d.mass[i]*d.g*y[i]
	}
	for j := 0; j < len(d.xs)-1; j++ {
		dx := d.xs[j+1] - d.xs[j]
		dy := y[j+1] - y[j]
		stretch := math.Hypot(dx, dy) - d.nat[j]
		if stretch > 0 {
			e += 0.5 * d.k * stretch * stretch / d.nat[j]
		}
	}
	return e
}
