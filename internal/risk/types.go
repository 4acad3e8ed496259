package risk

import (
	"errors"
	"fmt"
	"math"

	"github.com/wonny/fiscalrisk/internal/contracts"
)

// VaRConvention: losses are positive amounts (VaR=5000 means up to 5000 can be lost).
const VaRConvention = "loss_positive"

var (
	ErrInvalidConfig = errors.New("invalid risk configuration")
)

// =============================================================================
// Configuration
// =============================================================================

// Config holds the market assumptions behind the parametric grid.
type Config struct {
	AnnualVolatility float64   // 0.35 for early-stage equity
	ExpectedReturn   float64   // annual log-return, 0.25
	Confidences      []float64 // 0.90, 0.95, 0.99
	Horizons         []int     // years
}

// DefaultConfig returns the calibrated assumptions.
func DefaultConfig() Config {
	return Config{
		AnnualVolatility: 0.35,
		ExpectedReturn:   0.25,
		Confidences:      []float64{0.90, 0.95, 0.99},
		Horizons:         []int{1, 3, 5, 10},
	}
}

// Validate rejects configurations that would break the grid.
func (c Config) Validate() error {
	if c.AnnualVolatility <= 0 || math.IsNaN(c.AnnualVolatility) {
		return fmt.Errorf("%w: annual volatility must be > 0", ErrInvalidConfig)
	}
	if math.IsNaN(c.ExpectedReturn) || math.IsInf(c.ExpectedReturn, 0) {
		return fmt.Errorf("%w: expected return must be finite", ErrInvalidConfig)
	}
	if len(c.Confidences) == 0 || len(c.Horizons) == 0 {
		return fmt.Errorf("%w: confidences and horizons required", ErrInvalidConfig)
	}
	for _, conf := range c.Confidences {
		if conf <= 0 || conf >= 1 {
			return fmt.Errorf("%w: confidence %v not in (0, 1)", ErrInvalidConfig, conf)
		}
	}
	for _, h := range c.Horizons {
		if h < 1 {
			return fmt.Errorf("%w: horizon %d < 1", ErrInvalidConfig, h)
		}
	}
	return nil
}

// =============================================================================
// Input
// =============================================================================

// Input is the slice of an allocation the risk model consumes.
type Input struct {
	UsedInvestment       float64 `json:"used_investment"`
	TotalDeduction       float64 `json:"total_deduction"`
	NationallyCompatible bool    `json:"nationally_compatible"`
}

// InputFromAllocation extracts the risk input of an allocation.
func InputFromAllocation(r contracts.AllocationResult) Input {
	return Input{
		UsedInvestment:       r.TotalUsedInvestment,
		TotalDeduction:       r.TotalDeduction,
		NationallyCompatible: r.NationallyCompatible,
	}
}

// NetInvestment is the capital at stake after the deduction.
func (in Input) NetInvestment() float64 {
	return in.UsedInvestment - in.TotalDeduction
}

func (in Input) sanitized() Input {
	in.UsedInvestment = nonNegative(in.UsedInvestment)
	in.TotalDeduction = nonNegative(in.TotalDeduction)
	return in
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// percentOf returns part/whole*100, 0 when whole is 0.
func percentOf(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}
