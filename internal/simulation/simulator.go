// Package simulation runs Geometric Brownian Motion Monte Carlo simulations of an investment.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/wonny/fiscalrisk/internal/contracts"
	"github.com/wonny/fiscalrisk/pkg/config"
	"github.com/wonny/fiscalrisk/pkg/logger"
)

// Parameter bounds. Larger runs belong in batch tooling, not a request.
const (
	MaxIterations = 1_000_000
	MaxYears      = 100
	MaxBins       = 500

	// maxLogGrowth bounds ln(terminal value) so the fourth moment of the
	// outcomes stays finite.
	maxLogGrowth = 150

	// cancelCheckEvery trials the context is polled.
	cancelCheckEvery = 256
)

var (
	ErrInvalidParameters = errors.New("invalid simulation parameters")
)

// Config holds simulator defaults.
type Config struct {
	Bins         int     // histogram bins when the request sets none
	RiskFreeRate float64 // percent, for Sharpe and Sortino
}

// DefaultConfig returns 20 bins and a 2% risk-free rate.
func DefaultConfig() Config {
	return Config{Bins: 20, RiskFreeRate: 2.0}
}

// ConfigFrom maps the service configuration.
func ConfigFrom(cfg config.SimulationConfig) Config {
	return Config{Bins: cfg.Bins, RiskFreeRate: cfg.RiskFreeRate}
}

// Simulator is a stateless GBM engine. Each Run owns its random source.
type Simulator struct {
	config Config
	logger *logger.Logger
}

// NewSimulator creates a simulator.
func NewSimulator(cfg Config, log *logger.Logger) *Simulator {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Bins <= 0 {
		cfg.Bins = DefaultConfig().Bins
	}
	return &Simulator{config: cfg, logger: log.Component("simulation")}
}

// Simulate runs params with the default configuration.
func Simulate(ctx context.Context, params contracts.SimulationParameters) (*contracts.SimulationResult, error) {
	return NewSimulator(DefaultConfig(), nil).Run(ctx, params)
}

// Validate checks params without running them.
func Validate(p contracts.SimulationParameters) error {
	switch {
	case math.IsNaN(p.Investment) || math.IsInf(p.Investment, 0) || p.Investment <= 0:
		return fmt.Errorf("%w: investment must be > 0", ErrInvalidParameters)
	case math.IsNaN(p.ExpectedReturn) || math.IsInf(p.ExpectedReturn, 0):
		return fmt.Errorf("%w: expected return must be finite", ErrInvalidParameters)
	case math.IsNaN(p.Volatility) || math.IsInf(p.Volatility, 0) || p.Volatility < 0:
		return fmt.Errorf("%w: volatility must be >= 0", ErrInvalidParameters)
	case p.Years < 1 || p.Years > MaxYears:
		return fmt.Errorf("%w: years must be in [1, %d]", ErrInvalidParameters, MaxYears)
	case p.Iterations < 1 || p.Iterations > MaxIterations:
		return fmt.Errorf("%w: iterations must be in [1, %d]", ErrInvalidParameters, MaxIterations)
	case p.Bins < 0 || p.Bins > MaxBins:
		return fmt.Errorf("%w: bins must be in [0, %d]", ErrInvalidParameters, MaxBins)
	case logGrowthBound(p) > maxLogGrowth:
		return fmt.Errorf("%w: expected return and volatility overflow over %d years", ErrInvalidParameters, p.Years)
	}
	return nil
}

// logGrowthBound is an upper bound on ln(terminal value): the positive drift
// over every year plus eight standard deviations of the summed shocks.
func logGrowthBound(p contracts.SimulationParameters) float64 {
	mu := p.ExpectedReturn / 100
	sigma := p.Volatility / 100
	years := float64(p.Years)
	drift := math.Max(mu-0.5*sigma*sigma, 0)
	return math.Log(p.Investment) + years*drift + 8*sigma*math.Sqrt(years)
}

// Run simulates params.Iterations independent paths of params.Years annual steps.
//
// Each step applies value *= exp((mu − sigma²/2)·dt + sigma·√dt·z), dt = 1,
// so the expected terminal value is investment·e^(mu·years). The context is
// polled between trials.
func (s *Simulator) Run(ctx context.Context, params contracts.SimulationParameters) (*contracts.SimulationResult, error) {
	if err := Validate(params); err != nil {
		return nil, err
	}
	if params.Bins == 0 {
		params.Bins = s.config.Bins
	}

	seed := params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	mu := params.ExpectedReturn / 100
	sigma := params.Volatility / 100
	const dt = 1.0
	drift := (mu - 0.5*sigma*sigma) * dt
	diffusion := sigma * math.Sqrt(dt)

	start := time.Now()
	outcomes := make([]float64, params.Iterations)
	for i := range outcomes {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("simulation stopped after %d trials: %w", i, err)
			}
		}

		value := params.Investment
		for y := 0; y < params.Years; y++ {
			value *= math.Exp(drift + diffusion*boxMuller(rng))
		}
		outcomes[i] = value
	}

	sorted := make([]float64, len(outcomes))
	copy(sorted, outcomes)
	sort.Float64s(sorted)

	if !allFinite(sorted[len(sorted)-1]) {
		return nil, fmt.Errorf("%w: terminal values overflow", ErrInvalidParameters)
	}

	stats := statistics(sorted)
	if !allFinite(stats.Mean, stats.Variance, stats.Skewness, stats.Kurtosis) {
		return nil, fmt.Errorf("%w: outcome moments overflow", ErrInvalidParameters)
	}
	result := &contracts.SimulationResult{
		Parameters:  params,
		Results:     sorted,
		Statistics:  stats,
		Percentiles: percentiles(sorted),
		Metrics:     metrics(outcomes, stats, params, s.config.RiskFreeRate),
		Histogram:   histogram(sorted, params.Bins),
	}

	s.logger.WithFields(map[string]interface{}{
		"iterations": params.Iterations,
		"years":      params.Years,
		"mean":       stats.Mean,
		"elapsed_ms": time.Since(start).Milliseconds(),
	}).Debug("Simulation completed")

	return result, nil
}

// boxMuller draws a standard normal variate from two uniforms.
func boxMuller(rng *rand.Rand) float64 {
	u1 := 1 - rng.Float64() // (0, 1], keeps the log finite
	u2 := rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
