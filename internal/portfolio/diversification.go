package portfolio

import (
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/wonny/fiscalrisk/internal/contracts"
)

// AssumedPortfolioVolatility is the fixed denominator of the diversification
// ratio. It is a placeholder, not the volatility of the weights being measured.
const AssumedPortfolioVolatility = 0.2

const unknownLabel = "unknown"

// Diversification measures how spread weights are over assets, sectors and regions.
func Diversification(assets []contracts.Asset, weights []float64) contracts.DiversificationMetrics {
	hhi := floats.Dot(weights, weights)

	var effective float64
	if hhi > 0 {
		effective = 1 / hhi
	}

	sectors := make(map[string]float64)
	regions := make(map[string]float64)
	var weightedVol float64
	for i, a := range assets {
		sectors[label(a.Sector)] += weights[i]
		regions[label(a.Region)] += weights[i]
		weightedVol += weights[i] * a.Volatility
	}

	return contracts.DiversificationMetrics{
		HerfindahlIndex:         hhi,
		EffectiveNumberOfAssets: effective,
		SectorConcentration:     maxValue(sectors),
		RegionConcentration:     maxValue(regions),
		DiversificationRatio:    weightedVol / AssumedPortfolioVolatility,
		SectorDistribution:      sectors,
		RegionDistribution:      regions,
	}
}

func label(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return unknownLabel
	}
	return s
}

func maxValue(m map[string]float64) float64 {
	var out float64
	for _, v := range m {
		if v > out {
			out = v
		}
	}
	return out
}
