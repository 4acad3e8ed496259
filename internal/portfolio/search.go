package portfolio

import (
	"context"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// objective scores a candidate from its return and variance. Higher is
// better; ok=false discards the candidate.
type objective func(ret, variance float64) (score float64, ok bool)

// problem is the shared, read-only input of every search.
type problem struct {
	mu  []float64
	cov *mat.SymDense
}

func (p problem) evaluate(w []float64) (ret, variance float64) {
	v := mat.NewVecDense(len(w), w)
	return floats.Dot(w, p.mu), mat.Inner(v, p.cov, v)
}

type candidate struct {
	weights []float64
	score   float64
	found   bool
}

// search draws random weight vectors and keeps the best by obj. Draws are
// split across workers, each with its own source seeded from seed; the final
// reduction breaks ties by worker index, so the result depends only on the seed.
func search(ctx context.Context, p problem, draws, workers int, seed int64, obj objective) (candidate, error) {
	if workers < 1 {
		workers = 1
	}
	if workers > draws {
		workers = max(draws, 1)
	}

	locals := make([]candidate, workers)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		i := i
		quota := draws / workers
		if i < draws%workers {
			quota++
		}
		g.Go(func() error {
			c, err := searchWorker(gctx, p, quota, seed+int64(i), obj)
			locals[i] = c
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return candidate{}, err
	}

	best := candidate{score: math.Inf(-1)}
	for _, c := range locals {
		if c.found && (!best.found || c.score > best.score) {
			best = c
		}
	}
	return best, nil
}

func searchWorker(ctx context.Context, p problem, draws int, seed int64, obj objective) (candidate, error) {
	rng := rand.New(rand.NewSource(seed))
	n := len(p.mu)
	w := make([]float64, n)
	best := candidate{score: math.Inf(-1)}

	for d := 0; d < draws; d++ {
		if d%64 == 0 {
			if err := ctx.Err(); err != nil {
				return best, err
			}
		}

		randomWeights(rng, w)
		score, ok := obj(p.evaluate(w))
		if ok && (!best.found || score > best.score) {
			best.weights = append(best.weights[:0], w...)
			best.score = score
			best.found = true
		}
	}
	return best, nil
}

// randomWeights fills w with uniform draws normalized to sum 1.
func randomWeights(rng *rand.Rand, w []float64) {
	for i := range w {
		w[i] = rng.Float64()
	}
	sum := floats.Sum(w)
	if sum == 0 {
		for i := range w {
			w[i] = 1 / float64(len(w))
		}
		return
	}
	floats.Scale(1/sum, w)
}
