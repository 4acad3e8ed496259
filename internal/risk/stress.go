package risk

import (
	"github.com/wonny/fiscalrisk/internal/contracts"
)

// Stress severity categories, by loss percentage.
const (
	SeverityLeve     = "Leve"     // < 10%
	SeverityModerada = "Moderada" // < 25%
	SeveritySevera   = "Severa"   // < 50%
	SeverityExtrema  = "Extrema"  // >= 50%
)

var scenarios = [...]contracts.StressScenario{
	{
		Name:           "crisis_economica",
		Description:    "Recession: startup valuations fall and exits dry up",
		MarketShock:    -0.30,
		LiquidityShock: -0.20,
		Probability:    0.15,
	},
	{
		Name:           "burbuja_tecnologica",
		Description:    "Technology bubble burst with a sharp repricing of growth companies",
		MarketShock:    -0.50,
		LiquidityShock: -0.30,
		Probability:    0.10,
	},
	{
		Name:            "cambio_fiscal",
		Description:     "Tax reform halves the deductions already claimed",
		RegulatoryShock: -0.50,
		Probability:     0.20,
	},
	{
		Name:            "pandemia",
		Description:     "Pandemic: activity freeze, funding rounds postponed, emergency tax measures",
		MarketShock:     -0.40,
		LiquidityShock:  -0.40,
		RegulatoryShock: -0.10,
		Probability:     0.05,
	},
	{
		Name:           "crisis_sectorial",
		Description:    "Crisis concentrated in the investee's sector",
		MarketShock:    -0.35,
		LiquidityShock: -0.15,
		Probability:    0.12,
	},
}

// Scenarios returns a copy of the fixed stress catalog, in evaluation order.
func Scenarios() []contracts.StressScenario {
	out := make([]contracts.StressScenario, len(scenarios))
	copy(out, scenarios[:])
	return out
}

// ApplyScenario shocks the net investment (market and liquidity compound) and
// the deduction (regulatory) independently.
func ApplyScenario(in Input, s contracts.StressScenario) contracts.StressResult {
	net := in.NetInvestment()
	stressedNet := net * (1 + s.MarketShock) * (1 + s.LiquidityShock)
	stressedDed := in.TotalDeduction * (1 + s.RegulatoryShock)

	invLoss := net - stressedNet
	dedLoss := in.TotalDeduction - stressedDed
	total := invLoss + dedLoss
	pct := percentOf(total, in.UsedInvestment)

	return contracts.StressResult{
		Scenario:          s,
		StressedNet:       stressedNet,
		StressedDeduction: stressedDed,
		InvestmentLoss:    invLoss,
		DeductionLoss:     dedLoss,
		TotalLoss:         total,
		LossPercentage:    pct,
		Severity:          StressSeverity(pct),
	}
}

// StressSeverity buckets a loss percentage.
func StressSeverity(lossPct float64) string {
	switch {
	case lossPct < 10:
		return SeverityLeve
	case lossPct < 25:
		return SeverityModerada
	case lossPct < 50:
		return SeveritySevera
	default:
		return SeverityExtrema
	}
}

func stressTests(in Input) map[string]contracts.StressResult {
	out := make(map[string]contracts.StressResult, len(scenarios))
	for _, s := range scenarios {
		out[s.Name] = ApplyScenario(in, s)
	}
	return out
}

// averageStressLoss is the mean loss percentage across scenarios, summed in
// catalog order so the result is identical on every call.
func averageStressLoss(tests map[string]contracts.StressResult) float64 {
	var sum float64
	var n int
	for _, s := range scenarios {
		r, ok := tests[s.Name]
		if !ok {
			continue
		}
		sum += r.LossPercentage
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
