package portfolio

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/wonny/fiscalrisk/internal/contracts"
)

// Heuristic correlation between two assets.
const (
	baseCorrelation    = 0.3
	sameSectorBonus    = 0.2
	sameRegionBonus    = 0.15
	sameStageBonus     = 0.1
	correlationCeiling = 0.8
)

// Correlation estimates the correlation of two distinct assets from shared attributes.
func Correlation(a, b contracts.Asset) float64 {
	c := baseCorrelation
	if sameLabel(a.Sector, b.Sector) {
		c += sameSectorBonus
	}
	if sameLabel(a.Region, b.Region) {
		c += sameRegionBonus
	}
	if sameLabel(string(a.Stage), string(b.Stage)) {
		c += sameStageBonus
	}
	return math.Min(c, correlationCeiling)
}

// CovarianceMatrix builds the n×n covariance: vol² on the diagonal,
// correlation·vol_i·vol_j elsewhere.
func CovarianceMatrix(assets []contracts.Asset) *mat.SymDense {
	n := len(assets)
	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		cov.SetSym(i, i, assets[i].Volatility*assets[i].Volatility)
		for j := i + 1; j < n; j++ {
			cov.SetSym(i, j, Correlation(assets[i], assets[j])*assets[i].Volatility*assets[j].Volatility)
		}
	}
	return cov
}

func sameLabel(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}
