package portfolio

import (
	"strings"

	"github.com/wonny/fiscalrisk/internal/contracts"
)

var stageRiskAdjustment = map[contracts.Stage]float64{
	contracts.StageSeed:    0.05,
	contracts.StageSeriesA: 0.03,
	contracts.StageSeriesB: 0.02,
	contracts.StageOther:   0.04,
}

var highRiskSectors = map[string]bool{
	"biotech": true,
	"crypto":  true,
	"gaming":  true,
}

const highRiskSectorAdjustment = 0.03

// RiskAdjustment is the return haircut for an asset's stage and sector.
// Unknown stages are treated as "other".
func RiskAdjustment(a contracts.Asset) float64 {
	adj, ok := stageRiskAdjustment[contracts.Stage(strings.ToLower(string(a.Stage)))]
	if !ok {
		adj = stageRiskAdjustment[contracts.StageOther]
	}
	if highRiskSectors[strings.ToLower(strings.TrimSpace(a.Sector))] {
		adj += highRiskSectorAdjustment
	}
	return adj
}

// ExpectedReturns returns expected + fiscal − risk adjustment per asset.
func ExpectedReturns(assets []contracts.Asset) []float64 {
	mu := make([]float64, len(assets))
	for i, a := range assets {
		mu[i] = a.ExpectedReturn + a.FiscalReturn - RiskAdjustment(a)
	}
	return mu
}
