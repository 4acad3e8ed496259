package portfolio

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/wonny/fiscalrisk/internal/contracts"
)

// efficientFrontier searches, for evenly spaced target returns between the
// lowest and highest asset return, the least volatile portfolio whose return
// is within tolerance of the target. Targets no draw reaches are omitted.
// Tolerance windows overlap, so points are ordered by return.
func (o *Optimizer) efficientFrontier(ctx context.Context, p problem) ([]contracts.FrontierPoint, error) {
	lo, hi := floats.Min(p.mu), floats.Max(p.mu)
	points := o.config.FrontierPoints
	if lo == hi {
		points = 1
	}

	targets := make([]float64, points)
	if points == 1 {
		targets[0] = lo
	} else {
		floats.Span(targets, lo, hi)
	}

	frontier := make([]contracts.FrontierPoint, 0, points)
	for i, target := range targets {
		best, err := search(ctx, p, o.config.FrontierDraws, o.config.Workers, o.seedFor(searchFrontier+i), nearTarget(target, o.config.FrontierTolerance))
		if err != nil {
			return nil, err
		}
		if !best.found {
			continue
		}

		ret, variance := p.evaluate(best.weights)
		frontier = append(frontier, contracts.FrontierPoint{
			Return:  ret,
			Risk:    math.Sqrt(variance),
			Weights: best.weights,
		})
	}
	sort.SliceStable(frontier, func(i, j int) bool {
		return frontier[i].Return < frontier[j].Return
	})
	return frontier, nil
}

func nearTarget(target, tolerance float64) objective {
	return func(ret, variance float64) (float64, bool) {
		if math.Abs(ret-target) > tolerance {
			return 0, false
		}
		return -variance, true
	}
}
