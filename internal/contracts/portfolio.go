package contracts

// Stage is the funding stage of a candidate investment.
type Stage string

const (
	StageSeed    Stage = "seed"
	StageSeriesA Stage = "series_a"
	StageSeriesB Stage = "series_b"
	StageOther   Stage = "other"
)

// Asset is a hypothetical investment in the optimizer basket.
// Volatility and returns are annual fractions (0.35 = 35%).
type Asset struct {
	ID             string  `json:"id"`
	Volatility     float64 `json:"volatility"`
	Sector         string  `json:"sector"`
	Region         string  `json:"region"`
	Stage          Stage   `json:"stage"`
	ExpectedReturn float64 `json:"expected_return"`
	FiscalReturn   float64 `json:"fiscal_return"`
}

// PortfolioConstraints bound the optimizer. Zero values mean "no constraint".
type PortfolioConstraints struct {
	MaxRisk          float64  `json:"max_risk"`          // volatility cap for the max-return portfolio
	MinReturn        float64  `json:"min_return"`        // advisory floor for the max-Sharpe portfolio
	MaxConcentration float64  `json:"max_concentration"` // advisory cap on any single weight
	Sectors          []string `json:"sectors"`           // advisory allow-list
	Regions          []string `json:"regions"`           // advisory allow-list
}

// PortfolioRisk is the variance and volatility of a weight vector.
type PortfolioRisk struct {
	Variance   float64 `json:"variance"`
	Volatility float64 `json:"volatility"`
}

// PortfolioAllocation is one optimized weight vector and its metrics.
// Weights are non-negative, ordered like the input assets and sum to 1.
type PortfolioAllocation struct {
	Weights        []float64     `json:"weights"`
	ExpectedReturn float64       `json:"expected_return"`
	Risk           PortfolioRisk `json:"risk"`
	SharpeRatio    float64       `json:"sharpe_ratio"`
}

// TotalWeight returns the sum of all weights
func (p PortfolioAllocation) TotalWeight() float64 {
	total := 0.0
	for _, w := range p.Weights {
		total += w
	}
	return total
}

// FrontierPoint is one point of the efficient frontier.
type FrontierPoint struct {
	Return  float64   `json:"return"`
	Risk    float64   `json:"risk"`
	Weights []float64 `json:"weights"`
}

// DiversificationMetrics describe how spread a weight vector is.
type DiversificationMetrics struct {
	HerfindahlIndex         float64            `json:"herfindahl_index"`
	EffectiveNumberOfAssets float64            `json:"effective_number_of_assets"`
	SectorConcentration     float64            `json:"sector_concentration"`
	RegionConcentration     float64            `json:"region_concentration"`
	DiversificationRatio    float64            `json:"diversification_ratio"`
	SectorDistribution      map[string]float64 `json:"sector_distribution"`
	RegionDistribution      map[string]float64 `json:"region_distribution"`
}

// PortfolioResult is the optimizer output.
type PortfolioResult struct {
	AssetIDs               []string               `json:"asset_ids"`
	ExpectedReturns        []float64              `json:"expected_returns"`
	MaxSharpe              PortfolioAllocation    `json:"max_sharpe"`
	MinVariance            PortfolioAllocation    `json:"min_variance"`
	MaxReturn              PortfolioAllocation    `json:"max_return"`
	EfficientFrontier      []FrontierPoint        `json:"efficient_frontier"`
	DiversificationMetrics DiversificationMetrics `json:"diversification_metrics"`
	Warnings               []string               `json:"warnings"`
}
