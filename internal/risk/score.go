package risk

import (
	"math"

	"github.com/wonny/fiscalrisk/internal/contracts"
)

// Weights of the overall score components.
const (
	weightVaR           = 0.25
	weightStress        = 0.20
	weightStartup       = 0.20
	weightRegulatory    = 0.15
	weightLiquidity     = 0.10
	weightConcentration = 0.10

	startupScore       = 70
	liquidityScore     = 80
	concentrationScore = 75

	varScoreCeiling = 50 // VaR% at which the VaR component saturates
)

// ScoreInputs are the variable parts of the overall score.
type ScoreInputs struct {
	VaRPercentage              float64 // 95% / 3y VaR as percent of used investment
	AverageStressLoss          float64 // mean stress loss percentage
	IncompatibilityProbability float64
}

// OverallScore combines the component scores into [0, 100].
func OverallScore(in ScoreInputs) int {
	varScore := math.Min(nonNegative(in.VaRPercentage), varScoreCeiling) / varScoreCeiling * 100
	stressScore := math.Min(nonNegative(in.AverageStressLoss), 100)
	regulatoryScore := nonNegative(in.IncompatibilityProbability) * 100

	score := weightVaR*varScore +
		weightStress*stressScore +
		weightStartup*startupScore +
		weightRegulatory*regulatoryScore +
		weightLiquidity*liquidityScore +
		weightConcentration*concentrationScore

	return int(math.Max(0, math.Min(100, math.Round(score))))
}

// Rating maps a score to its band.
func Rating(score int) contracts.RiskRating {
	switch {
	case score < 20:
		return contracts.RatingVeryLow
	case score < 40:
		return contracts.RatingLow
	case score < 60:
		return contracts.RatingMedium
	case score < 80:
		return contracts.RatingHigh
	default:
		return contracts.RatingVeryHigh
	}
}
