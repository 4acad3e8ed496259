package risk

import (
	"sort"

	"github.com/wonny/fiscalrisk/internal/contracts"
)

// mitigationStrategies applies the rule set and orders the result high > medium > low.
func mitigationStrategies(a *contracts.RiskAnalysis) []contracts.MitigationStrategy {
	out := make([]contracts.MitigationStrategy, 0, 4)

	if a.OverallRiskScore > diversificationScoreThreshold {
		out = append(out, contracts.MitigationStrategy{
			Strategy:    "diversification",
			Priority:    contracts.PriorityHigh,
			Description: "Spread the capital over several companies to reduce single-company risk",
			Actions: []string{
				"Invest in at least 5 to 10 companies",
				"Use co-investment vehicles or syndicates",
				"Limit any single company to 20% of the allocation",
			},
		})
	}

	if f, ok := a.LiquidityRisks["immediate_liquidity"]; ok && f.Probability < liquidityStrategyThreshold {
		out = append(out, contracts.MitigationStrategy{
			Strategy:    "liquidity_management",
			Priority:    contracts.PriorityMedium,
			Description: "Keep an emergency reserve outside the illiquid position",
			Actions: []string{
				"Hold 6 to 12 months of expenses in liquid assets",
				"Plan the exit horizon before investing",
			},
		})
	}

	if f, ok := a.RegulatoryRisks["fiscal_change"]; ok && f.Probability > regulatoryStrategyThreshold {
		out = append(out, contracts.MitigationStrategy{
			Strategy:    "regulatory_monitoring",
			Priority:    contracts.PriorityLow,
			Description: "Track changes to national and regional deduction rules",
			Actions: []string{
				"Review the regional rules every tax year",
				"Keep the eligibility documentation of each investment",
			},
		})
	}

	if f, ok := a.ConcentrationRisks["sector"]; ok && f.Probability > concentrationStrategyThreshold {
		out = append(out, contracts.MitigationStrategy{
			Strategy:    "sector_diversification",
			Priority:    contracts.PriorityHigh,
			Description: "Avoid concentrating the position in one sector",
			Actions: []string{
				"Combine companies from uncorrelated sectors",
				"Cap any sector at 40% of the allocation",
			},
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() < out[j].Priority.Rank()
	})
	return out
}
