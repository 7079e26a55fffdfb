// Package statics computes the equilibrium shape of a rigged slackline by
// shooting-method integration of the Euler-Lagrange profile equations, with
// jump conditions applied across point loads.
package statics

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Bubblyworld/slackline/internal/lagrangian"
	"github.com/Bubblyworld/slackline/internal/line"
)

var (
	// ErrInvalidConfig marks configuration errors: no solve was attempted
	// and no partial result exists.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNoConvergence marks a shooting solve that exhausted its iteration
	// budget without meeting tolerance.
	ErrNoConvergence = errors.New("solver did not converge")
)

// PointLoad is a slackliner standing on the line: a point mass at a fixed
// horizontal position.
type PointLoad struct {
	Position float64 `json:"position" yaml:"position"` // meters from the left anchor
	Mass     float64 `json:"mass" yaml:"mass"`         // kilograms
}

// Constraints describe a rigged line: the webbing, the gap it spans, either
// the standing anchor tension or the natural length of webbing in the gap,
// and any point loads. A Constraints value is immutable once solved.
type Constraints struct {
	Line       line.Line   `json:"line" yaml:"line"`
	GapLength  float64     `json:"gap_length" yaml:"gap_length"`
	Loads      []PointLoad `json:"slackliners" yaml:"loads"`
	Form       string      `json:"form,omitempty" yaml:"form,omitempty"` // lagrangian identity, default "ideal"

	// Exactly one of the two targets must be positive. AnchorTension is the
	// standing tension (before anyone is on the line); NaturalLength pins
	// the unstretched webbing length directly.
	AnchorTension float64 `json:"anchor_tension,omitempty" yaml:"anchor_tension,omitempty"`
	NaturalLength float64 `json:"natural_length,omitempty" yaml:"natural_length,omitempty"`

	// GridPoints is the target sample count of the solved profile
	// (default 1001).
	GridPoints int `json:"-" yaml:"grid_points,omitempty"`
}

func (c *Constraints) form() (lagrangian.Form, error) {
	if c.Form == "" {
		return lagrangian.Ideal, nil
	}
	return lagrangian.FormByName(c.Form)
}

func (c *Constraints) gridPoints() int {
	if c.GridPoints <= 1 {
		return 1001
	}
	return c.GridPoints
}

func (c *Constraints) params() lagrangian.Params {
	return lagrangian.Params{M: c.Line.M, G: c.Line.G, K: c.Line.K}
}

// sortedLoads returns the loads ordered by position, which fixes the
// left-to-right order the jump conditions are applied in.
func (c *Constraints) sortedLoads() []PointLoad {
	loads := make([]PointLoad, len(c.Loads))
	copy(loads, c.Loads)
	sort.Slice(loads, func(i, j int) bool { return loads[i].Position < loads[j].Position })
	return loads
}

func (c *Constraints) validate() error {
	if err := c.Line.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.GapLength <= 0 {
		return fmt.Errorf("%w: gap length must be positive, got %f", ErrInvalidConfig, c.GapLength)
	}
	hasTension := c.AnchorTension > 0
	hasNatural := c.NaturalLength > 0
	if hasTension == hasNatural {
		return fmt.Errorf("%w: exactly one of anchor tension and natural length must be set", ErrInvalidConfig)
	}
	if c.AnchorTension < 0 || c.NaturalLength < 0 {
		return fmt.Errorf("%w: targets must be positive", ErrInvalidConfig)
	}

	loads := c.sortedLoads()
	for i, ld := range loads {
		if ld.Mass <= 0 {
			return fmt.Errorf("%w: load mass must be positive, got %f", ErrInvalidConfig, ld.Mass)
		}
		if ld.Position <= 0 || ld.Position >= c.GapLength {
			return fmt.Errorf("%w: load position %f outside (0, %f)", ErrInvalidConfig, ld.Position, c.GapLength)
		}
		if i > 0 && ld.Position == loads[i-1].Position {
			return fmt.Errorf("%w: coincident loads at position %f", ErrInvalidConfig, ld.Position)
		}
	}
	if _, err := c.form(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Solve computes the equilibrium rig for the constraints.
//
// With an anchor-tension target the standing (unloaded) line is solved
// first; if loads are present, the standing solve fixes the natural length
// and the loaded profile is then found by matching that natural length,
// since a line is rigged before anyone steps on it.
func (c *Constraints) Solve() (*Rig, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	form, _ := c.form()
	sys, err := lagrangian.Compile(form)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	sh := &shooter{
		sys: sys,
		p:   c.params(),
		gap: c.GapLength,
		pts: c.gridPoints(),
	}

	var prof *profile
	natural := c.NaturalLength
	if c.AnchorTension > 0 {
		prof, err = sh.shootUnloaded(c.AnchorTension)
		if err != nil {
			return nil, err
		}
		natural = prof.ns[len(prof.ns)-1]
	}

	loads := c.sortedLoads()
	if len(loads) > 0 || c.AnchorTension <= 0 {
		prof, err = sh.shootNaturalLength(natural, loads)
		if err != nil {
			return nil, err
		}
	}

	return newRig(c.Line, prof), nil
}
