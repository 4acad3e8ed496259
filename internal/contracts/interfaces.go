package contracts

import "context"

// Each engine is a pure calculator; these interfaces let the API and CLI layers
// depend on behavior rather than concrete engines.

// DeductionAllocator splits an investment between the national and regional pools.
type DeductionAllocator interface {
	Allocate(ctx context.Context, req AllocationRequest) AllocationResult
}

// RiskAnalyzer quantifies the risk of an allocated position.
type RiskAnalyzer interface {
	Analyze(usedInvestment, totalDeduction float64) *RiskAnalysis
}

// Simulator runs a Monte Carlo simulation, honoring ctx cancellation.
type Simulator interface {
	Run(ctx context.Context, params SimulationParameters) (*SimulationResult, error)
}

// PortfolioOptimizer computes optimized weights over a basket of assets.
type PortfolioOptimizer interface {
	Optimize(ctx context.Context, assets []Asset, constraints PortfolioConstraints) (*PortfolioResult, error)
}
