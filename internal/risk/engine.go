package risk

import (
	"fmt"

	"github.com/wonny/fiscalrisk/internal/contracts"
)

// =============================================================================
// Engine - pure calculator
// =============================================================================

// Engine is the risk model. It holds only immutable configuration, so one
// Engine may serve concurrent callers.
type Engine struct {
	config Config
}

// NewEngine creates an engine with DefaultConfig.
func NewEngine() *Engine {
	return &Engine{config: DefaultConfig()}
}

// NewEngineWithConfig creates an engine with custom market assumptions.
func NewEngineWithConfig(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{config: cfg}, nil
}

// Analyze runs the full model assuming a nationally compatible jurisdiction.
func (e *Engine) Analyze(usedInvestment, totalDeduction float64) *contracts.RiskAnalysis {
	return e.AnalyzeInput(Input{
		UsedInvestment:       usedInvestment,
		TotalDeduction:       totalDeduction,
		NationallyCompatible: true,
	})
}

// AnalyzeInput runs the full model. Negative or non-finite amounts count as 0.
func (e *Engine) AnalyzeInput(in Input) *contracts.RiskAnalysis {
	in = in.sanitized()

	a := &contracts.RiskAnalysis{
		UsedInvestment: in.UsedInvestment,
		TotalDeduction: in.TotalDeduction,
		NetInvestment:  in.NetInvestment(),

		ValueAtRisk:       tailGrid(in, e.config, ValueAtRisk),
		ExpectedShortfall: tailGrid(in, e.config, ExpectedShortfall),
		StressTests:       stressTests(in),

		StartupRisks:       startupRisks(in),
		RegulatoryRisks:    regulatoryRisks(in),
		LiquidityRisks:     liquidityRisks(in),
		ConcentrationRisks: concentrationRisks(in),
		TemporalRisks:      temporalRisks(in),
	}

	a.OverallRiskScore = OverallScore(ScoreInputs{
		VaRPercentage:              ValueAtRisk(in, e.config, 0.95, 3).Percentage,
		AverageStressLoss:          averageStressLoss(a.StressTests),
		IncompatibilityProbability: a.RegulatoryRisks["incompatibility"].Probability,
	})
	a.RiskRating = Rating(a.OverallRiskScore)
	a.MitigationStrategies = mitigationStrategies(a)

	return a
}

// =============================================================================
// Limit check
// =============================================================================

// Limits are investor-side thresholds. Zero disables a check.
type Limits struct {
	MaxVaR95Pct float64 `json:"max_var95_pct"` // 95% / 3y VaR, percent of used investment
	MaxScore    int     `json:"max_score"`
}

// LimitCheck is the outcome of CheckLimits.
type LimitCheck struct {
	Passed     bool     `json:"passed"`
	VaR95Pct   float64  `json:"var95_pct"`
	Score      int      `json:"score"`
	Violations []string `json:"violations"`
}

// CheckLimits compares an analysis against investor limits.
func CheckLimits(a *contracts.RiskAnalysis, limits Limits) *LimitCheck {
	res := &LimitCheck{
		Passed:     true,
		VaR95Pct:   a.ValueAtRisk[contracts.GridKey(0.95, 3)].Percentage,
		Score:      a.OverallRiskScore,
		Violations: make([]string, 0),
	}

	if limits.MaxVaR95Pct > 0 && res.VaR95Pct > limits.MaxVaR95Pct {
		res.Passed = false
		res.Violations = append(res.Violations,
			fmt.Sprintf("VaR95 %.2f%% exceeds limit %.2f%%", res.VaR95Pct, limits.MaxVaR95Pct))
	}

	if limits.MaxScore > 0 && res.Score > limits.MaxScore {
		res.Passed = false
		res.Violations = append(res.Violations,
			fmt.Sprintf("risk score %d exceeds limit %d", res.Score, limits.MaxScore))
	}

	return res
}
