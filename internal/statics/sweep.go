package statics

import (
	"context"
	"sync"
)

// SweepPoint summarizes one solved rig of a tension sweep.
type SweepPoint struct {
	Tension       float64 `json:"tension"`
	MaxDrop       float64 `json:"max_drop"`
	MaxTension    float64 `json:"max_tension"`
	NaturalLength float64 `json:"natural_length"`
}

// SweepTensions solves the same rig across a range of standing tensions, one
// goroutine per tension since the solves are independent. Results come back
// in input order. The first solver error aborts the sweep; a canceled
// context returns early with ctx.Err().
func SweepTensions(ctx context.Context, base Constraints, tensions []float64) ([]SweepPoint, error) {
	points := make([]SweepPoint, len(tensions))
	errs := make([]error, len(tensions))

	var wg sync.WaitGroup
	for i, tension := range tensions {
		wg.Add(1)
		go func(idx int, t float64) {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				errs[idx] = err
				return
			}

			c := base
			c.AnchorTension = t
			c.NaturalLength = 0
			rig, err := c.Solve()
			if err != nil {
				errs[idx] = err
				return
			}
			points[idx] = SweepPoint{
				Tension:       t,
				MaxDrop:       rig.MaxDrop(),
				MaxTension:    rig.MaxTension(),
				NaturalLength: rig.NaturalLength(),
			}
		}(i, tension)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return points, nil
}
