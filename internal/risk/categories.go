package risk

import "github.com/wonny/fiscalrisk/internal/contracts"

// Calibration constants of the category blocks. Impacts are fractions of the
// exposed amount (used investment, or deduction for fiscal risks).
const (
	incompatibilityCompatible   = 0.1
	incompatibilityIncompatible = 0.8

	liquidityStrategyThreshold     = 0.10 // immediate-liquidity availability
	regulatoryStrategyThreshold    = 0.20 // fiscal-change probability
	concentrationStrategyThreshold = 0.60 // sector concentration
	diversificationScoreThreshold  = 70
)

func factor(prob, impact, exposed float64, desc string) contracts.RiskFactor {
	return contracts.RiskFactor{
		Probability: prob,
		Impact:      impact,
		Amount:      exposed * impact,
		Description: desc,
	}
}

func startupRisks(in Input) map[string]contracts.RiskFactor {
	used := in.UsedInvestment
	return map[string]contracts.RiskFactor{
		"business_failure": factor(0.7, 0.9, used, "Most early-stage companies fail before reaching profitability"),
		"dilution":         factor(0.8, 0.3, used, "Later funding rounds dilute the investor's stake"),
		"exit_delay":       factor(0.6, 0.2, used, "Exit takes longer than planned, tying up capital"),
		"key_person":       factor(0.5, 0.4, used, "Dependence on founders and a small team"),
	}
}

func regulatoryRisks(in Input) map[string]contracts.RiskFactor {
	ded := in.TotalDeduction
	incompat := incompatibilityCompatible
	if !in.NationallyCompatible {
		incompat = incompatibilityIncompatible
	}
	return map[string]contracts.RiskFactor{
		"fiscal_change":   factor(0.25, 0.5, ded, "Changes to the deduction regime reduce the tax benefit"),
		"incompatibility": factor(incompat, 1.0, ded, "National and regional deductions cannot be combined"),
		"audit":           factor(0.1, 0.2, ded, "Tax audit challenges the eligibility of the investment"),
	}
}

func liquidityRisks(in Input) map[string]contracts.RiskFactor {
	used := in.UsedInvestment
	return map[string]contracts.RiskFactor{
		// Probability is the availability of an immediate exit.
		"immediate_liquidity":       factor(0.05, 1.0, used, "Shares of unlisted companies can rarely be sold at short notice"),
		"lockup":                    factor(1.0, 0.15, used, "Minimum holding period required to keep the deduction"),
		"secondary_market_discount": factor(0.6, 0.3, used, "Secondary sales happen at a steep discount"),
	}
}

func concentrationRisks(in Input) map[string]contracts.RiskFactor {
	used := in.UsedInvestment
	return map[string]contracts.RiskFactor{
		"sector":         factor(0.7, 0.5, used, "Exposure concentrated in a single sector"),
		"single_company": factor(0.8, 0.9, used, "The whole position depends on one company"),
		"geographic":     factor(0.5, 0.3, used, "The regional deduction ties the investment to one region"),
	}
}

func temporalRisks(in Input) map[string]contracts.RiskFactor {
	return map[string]contracts.RiskFactor{
		"holding_period": factor(0.3, 0.2, in.UsedInvestment, "Capital must stay invested for several years"),
		"exit_timing":    factor(0.5, 0.25, in.UsedInvestment, "Exit may coincide with an unfavourable market"),
		"tax_clawback":   factor(0.15, 1.0, in.TotalDeduction, "Early sale forces repayment of the deduction"),
	}
}
