// Package portfolio approximates Modern Portfolio Theory portfolios over a
// basket of candidate investments by randomized search.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/wonny/fiscalrisk/internal/contracts"
	"github.com/wonny/fiscalrisk/pkg/config"
	"github.com/wonny/fiscalrisk/pkg/logger"
)

var (
	ErrNoAssets     = errors.New("no assets to optimize")
	ErrInvalidAsset = errors.New("invalid asset")
)

// MaxAssets bounds a basket: the covariance matrix and every draw grow with n².
const MaxAssets = 200

// Search identifiers, mixed into the seed so every search has its own stream.
const (
	searchMaxSharpe = iota
	searchMinVariance
	searchMaxReturn
	searchFrontier // + point index
)

// Config defines the search budget.
type Config struct {
	RiskFreeRate      float64 // fraction
	Seed              int64   // same seed, same output
	Workers           int     // goroutines per search
	SharpeDraws       int
	MinVarianceDraws  int
	MaxReturnDraws    int
	FrontierPoints    int
	FrontierDraws     int // per point
	FrontierTolerance float64
}

// DefaultConfig returns the standard budget.
func DefaultConfig() Config {
	return Config{
		RiskFreeRate:      0.02,
		Seed:              42,
		Workers:           4,
		SharpeDraws:       1000,
		MinVarianceDraws:  1000,
		MaxReturnDraws:    1000,
		FrontierPoints:    50,
		FrontierDraws:     500,
		FrontierTolerance: 0.01,
	}
}

// ConfigFrom maps the service configuration onto the default budget.
func ConfigFrom(cfg config.OptimizerConfig) Config {
	c := DefaultConfig()
	c.RiskFreeRate = cfg.RiskFreeRate
	c.Seed = cfg.Seed
	if cfg.Workers > 0 {
		c.Workers = cfg.Workers
	}
	return c
}

// Optimizer runs the searches. It holds no request state.
type Optimizer struct {
	config Config
	logger *logger.Logger
}

// NewOptimizer creates an optimizer.
func NewOptimizer(cfg Config, log *logger.Logger) *Optimizer {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.FrontierPoints < 1 {
		cfg.FrontierPoints = 1
	}
	return &Optimizer{config: cfg, logger: log.Component("portfolio")}
}

// Optimize approximates the max-Sharpe, min-variance and max-return portfolios
// and the efficient frontier. Weights follow the order of assets.
func (o *Optimizer) Optimize(ctx context.Context, assets []contracts.Asset, constraints contracts.PortfolioConstraints) (*contracts.PortfolioResult, error) {
	if len(assets) == 0 {
		return nil, ErrNoAssets
	}
	if err := validateAssets(assets); err != nil {
		return nil, err
	}

	start := time.Now()
	p := problem{mu: ExpectedReturns(assets), cov: CovarianceMatrix(assets)}
	warnings := make([]string, 0)

	// 1. Max Sharpe
	sharpe, err := search(ctx, p, o.config.SharpeDraws, o.config.Workers, o.seedFor(searchMaxSharpe), o.sharpeObjective())
	if err != nil {
		return nil, fmt.Errorf("max-sharpe search: %w", err)
	}
	if !sharpe.found {
		// every draw had zero volatility
		sharpe, err = search(ctx, p, o.config.SharpeDraws, o.config.Workers, o.seedFor(searchMaxSharpe), maxReturnObjective(0))
		if err != nil {
			return nil, fmt.Errorf("max-sharpe search: %w", err)
		}
	}

	// 2. Min variance
	minVar, err := search(ctx, p, o.config.MinVarianceDraws, o.config.Workers, o.seedFor(searchMinVariance), minVarianceObjective)
	if err != nil {
		return nil, fmt.Errorf("min-variance search: %w", err)
	}

	// 3. Max return under the risk cap
	maxRet, err := search(ctx, p, o.config.MaxReturnDraws, o.config.Workers, o.seedFor(searchMaxReturn), maxReturnObjective(constraints.MaxRisk))
	if err != nil {
		return nil, fmt.Errorf("max-return search: %w", err)
	}
	if !maxRet.found {
		maxRet = minVar
		warnings = append(warnings, fmt.Sprintf("no portfolio satisfies max risk %.2f%%; max-return falls back to min-variance",
			constraints.MaxRisk*100))
	}

	// 4. Efficient frontier
	frontier, err := o.efficientFrontier(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("efficient frontier: %w", err)
	}

	result := &contracts.PortfolioResult{
		AssetIDs:          assetIDs(assets),
		ExpectedReturns:   p.mu,
		MaxSharpe:         o.allocation(p, sharpe.weights),
		MinVariance:       o.allocation(p, minVar.weights),
		MaxReturn:         o.allocation(p, maxRet.weights),
		EfficientFrontier: frontier,
	}
	result.DiversificationMetrics = Diversification(assets, result.MaxSharpe.Weights)
	result.Warnings = append(warnings, checkConstraints(assets, result.MaxSharpe, constraints)...)

	o.logger.WithFields(map[string]interface{}{
		"assets":          len(assets),
		"frontier_points": len(frontier),
		"sharpe":          result.MaxSharpe.SharpeRatio,
		"warnings":        len(result.Warnings),
		"elapsed_ms":      time.Since(start).Milliseconds(),
	}).Debug("Portfolio optimized")

	return result, nil
}

func (o *Optimizer) seedFor(searchID int) int64 {
	return o.config.Seed + int64(searchID)*1_000_003
}

func (o *Optimizer) sharpeObjective() objective {
	rf := o.config.RiskFreeRate
	return func(ret, variance float64) (float64, bool) {
		vol := math.Sqrt(variance)
		if vol <= 0 {
			return 0, false
		}
		return (ret - rf) / vol, true
	}
}

func minVarianceObjective(_, variance float64) (float64, bool) {
	return -variance, true
}

// maxReturnObjective discards candidates above maxRisk volatility; 0 disables the cap.
func maxReturnObjective(maxRisk float64) objective {
	return func(ret, variance float64) (float64, bool) {
		if maxRisk > 0 && math.Sqrt(variance) > maxRisk {
			return 0, false
		}
		return ret, true
	}
}

func (o *Optimizer) allocation(p problem, weights []float64) contracts.PortfolioAllocation {
	ret, variance := p.evaluate(weights)
	vol := math.Sqrt(variance)
	var sharpe float64
	if vol > 0 {
		sharpe = (ret - o.config.RiskFreeRate) / vol
	}
	return contracts.PortfolioAllocation{
		Weights:        weights,
		ExpectedReturn: ret,
		Risk:           contracts.PortfolioRisk{Variance: variance, Volatility: vol},
		SharpeRatio:    sharpe,
	}
}

func validateAssets(assets []contracts.Asset) error {
	if len(assets) > MaxAssets {
		return fmt.Errorf("%w: %d assets exceeds the limit of %d", ErrInvalidAsset, len(assets), MaxAssets)
	}
	for i, a := range assets {
		fields := []struct {
			name  string
			value float64
		}{
			{"volatility", a.Volatility},
			{"expected_return", a.ExpectedReturn},
			{"fiscal_return", a.FiscalReturn},
		}
		for _, f := range fields {
			if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
				return fmt.Errorf("%w: assets[%d].%s must be finite", ErrInvalidAsset, i, f.name)
			}
		}
		if a.Volatility < 0 {
			return fmt.Errorf("%w: assets[%d].volatility must be >= 0", ErrInvalidAsset, i)
		}
	}
	return nil
}

func assetIDs(assets []contracts.Asset) []string {
	ids := make([]string, len(assets))
	for i, a := range assets {
		ids[i] = a.ID
	}
	return ids
}
