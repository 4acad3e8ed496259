package contracts

import "fmt"

// GridKey identifies a (confidence, horizon) cell of the VaR/ES grid, e.g. "95%_3y".
func GridKey(confidence float64, horizonYears int) string {
	return fmt.Sprintf("%.0f%%_%dy", confidence*100, horizonYears)
}

// TailEstimate is one cell of the VaR or Expected Shortfall grid.
// Amounts are losses expressed as positive numbers.
type TailEstimate struct {
	Confidence     float64 `json:"confidence"`
	HorizonYears   int     `json:"horizon_years"`
	Amount         float64 `json:"amount"`
	Percentage     float64 `json:"percentage"` // of used investment
	Interpretation string  `json:"interpretation"`
}

// StressScenario is an immutable entry of the stress test catalog.
// Shocks are signed fractions (-0.3 = 30% drop).
type StressScenario struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	MarketShock     float64 `json:"market_shock"`
	LiquidityShock  float64 `json:"liquidity_shock"`
	RegulatoryShock float64 `json:"regulatory_shock"`
	Probability     float64 `json:"probability"`
}

// StressResult is the outcome of applying one scenario.
type StressResult struct {
	Scenario          StressScenario `json:"scenario"`
	StressedNet       float64        `json:"stressed_net_investment"`
	StressedDeduction float64        `json:"stressed_deduction"`
	InvestmentLoss    float64        `json:"investment_loss"`
	DeductionLoss     float64        `json:"deduction_loss"`
	TotalLoss         float64        `json:"total_loss"`
	LossPercentage    float64        `json:"loss_percentage"`
	Severity          string         `json:"severity"` // Leve, Moderada, Severa, Extrema
}

// RiskFactor is one named entry of a category risk block.
type RiskFactor struct {
	Probability float64 `json:"probability"`
	Impact      float64 `json:"impact"` // fraction of the exposed amount
	Amount      float64 `json:"amount"` // currency at risk
	Description string  `json:"description"`
}

// Priority orders mitigation strategies.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns 0 for high, 1 for medium, 2 for low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// MitigationStrategy is a recommended action emitted by the risk model.
type MitigationStrategy struct {
	Strategy    string   `json:"strategy"`
	Priority    Priority `json:"priority"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

// RiskRating is the coarse label derived from the overall score.
type RiskRating string

const (
	RatingVeryLow  RiskRating = "Very Low"
	RatingLow      RiskRating = "Low"
	RatingMedium   RiskRating = "Medium"
	RatingHigh     RiskRating = "High"
	RatingVeryHigh RiskRating = "Very High"
)

// RiskAnalysis is the full output of the risk model.
type RiskAnalysis struct {
	UsedInvestment float64 `json:"used_investment"`
	TotalDeduction float64 `json:"total_deduction"`
	NetInvestment  float64 `json:"net_investment"`

	ValueAtRisk       map[string]TailEstimate `json:"value_at_risk"`
	ExpectedShortfall map[string]TailEstimate `json:"expected_shortfall"`
	StressTests       map[string]StressResult `json:"stress_tests"`

	StartupRisks       map[string]RiskFactor `json:"startup_risks"`
	RegulatoryRisks    map[string]RiskFactor `json:"regulatory_risks"`
	LiquidityRisks     map[string]RiskFactor `json:"liquidity_risks"`
	ConcentrationRisks map[string]RiskFactor `json:"concentration_risks"`
	TemporalRisks      map[string]RiskFactor `json:"temporal_risks"`

	OverallRiskScore     int                  `json:"overall_risk_score"`
	RiskRating           RiskRating           `json:"risk_rating"`
	MitigationStrategies []MitigationStrategy `json:"mitigation_strategies"`
}
