package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wonny/fiscalrisk/internal/contracts"
	"github.com/wonny/fiscalrisk/pkg/currency"
)

// =============================================================================
// Parametric VaR / Expected Shortfall (normal log-returns)
// =============================================================================

// ValueAtRisk computes one VaR cell.
// worst log-return = mu·h − z(c)·sigma·√h, loss = net·(1 − e^worst), clamped at 0.
func ValueAtRisk(in Input, cfg Config, confidence float64, horizon int) contracts.TailEstimate {
	scaledVol := cfg.AnnualVolatility * math.Sqrt(float64(horizon))
	worst := cfg.ExpectedReturn*float64(horizon) - NormInv(confidence)*scaledVol

	amount := lossAmount(in.NetInvestment(), worst)
	est := contracts.TailEstimate{
		Confidence:   confidence,
		HorizonYears: horizon,
		Amount:       amount,
		Percentage:   percentOf(amount, in.UsedInvestment),
	}
	est.Interpretation = fmt.Sprintf("With %.0f%% confidence the loss over %d years will not exceed %s (%.1f%% of the investment)",
		confidence*100, horizon, currency.Format(amount), est.Percentage)
	return est
}

// ExpectedShortfall computes one ES cell. The z-score is replaced by the tail
// multiplier phi(z)/(1−c).
func ExpectedShortfall(in Input, cfg Config, confidence float64, horizon int) contracts.TailEstimate {
	scaledVol := cfg.AnnualVolatility * math.Sqrt(float64(horizon))
	multiplier := NormPDF(NormInv(confidence)) / (1 - confidence)
	tail := cfg.ExpectedReturn*float64(horizon) - multiplier*scaledVol

	amount := lossAmount(in.NetInvestment(), tail)
	est := contracts.TailEstimate{
		Confidence:   confidence,
		HorizonYears: horizon,
		Amount:       amount,
		Percentage:   percentOf(amount, in.UsedInvestment),
	}
	est.Interpretation = fmt.Sprintf("In the worst %.0f%% of outcomes over %d years the average loss is %s (%.1f%% of the investment)",
		(1-confidence)*100, horizon, currency.Format(amount), est.Percentage)
	return est
}

func lossAmount(net, logReturn float64) float64 {
	loss := net * (1 - math.Exp(logReturn))
	if loss < 0 || math.IsNaN(loss) {
		return 0
	}
	return loss
}

// tailGrid evaluates fn over every (confidence, horizon) pair.
func tailGrid(in Input, cfg Config, fn func(Input, Config, float64, int) contracts.TailEstimate) map[string]contracts.TailEstimate {
	grid := make(map[string]contracts.TailEstimate, len(cfg.Confidences)*len(cfg.Horizons))
	for _, c := range cfg.Confidences {
		for _, h := range cfg.Horizons {
			grid[contracts.GridKey(c, h)] = fn(in, cfg, c, h)
		}
	}
	return grid
}

// =============================================================================
// Statistics utilities
// =============================================================================

// NormInv is the standard normal quantile. The usual confidence levels
// return the rounded table values the risk grid is calibrated on.
func NormInv(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}

	switch p {
	case 0.99:
		return 2.326
	case 0.95:
		return 1.645
	case 0.90:
		return 1.282
	case 0.975:
		return 1.96
	}

	return distuv.UnitNormal.Quantile(p)
}

// NormPDF is the standard normal density.
func NormPDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}
