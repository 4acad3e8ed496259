package contracts

import (
	"encoding/json"
	"math"
)

// SimulationParameters configures one Monte Carlo run.
// ExpectedReturn and Volatility are annual percentages.
type SimulationParameters struct {
	Investment     float64 `json:"investment"`
	ExpectedReturn float64 `json:"expected_return"`
	Volatility     float64 `json:"volatility"`
	Years          int     `json:"years"`
	Iterations     int     `json:"iterations"`
	Bins           int     `json:"bins,omitempty"` // histogram bins, 0 = default
	Seed           int64   `json:"seed,omitempty"` // 0 = time seeded
}

// SimulationStatistics are the moments of the outcome distribution.
type SimulationStatistics struct {
	Mean              float64 `json:"mean"`
	Median            float64 `json:"median"`
	StandardDeviation float64 `json:"standard_deviation"`
	Variance          float64 `json:"variance"`
	Skewness          float64 `json:"skewness"`
	Kurtosis          float64 `json:"kurtosis"` // excess
	Min               float64 `json:"min"`
	Max               float64 `json:"max"`
}

// Percentiles of the sorted outcomes.
type Percentiles struct {
	P5  float64 `json:"p5"`
	P10 float64 `json:"p10"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
	P95 float64 `json:"p95"`
}

// SimulationMetrics are the performance ratios of the run.
// SortinoRatio is +Inf when no outcome falls below the target; JSON renders it as null.
type SimulationMetrics struct {
	ProbabilityOfLoss float64 `json:"probability_of_loss"`
	SuccessRate       float64 `json:"success_rate"`
	AverageReturn     float64 `json:"average_return"` // percent
	SharpeRatio       float64 `json:"sharpe_ratio"`
	SortinoRatio      float64 `json:"sortino_ratio"`
	CalmarRatio       float64 `json:"calmar_ratio"`
	MaxDrawdown       float64 `json:"max_drawdown"` // percent
}

// MarshalJSON encodes non-finite ratios as null, which encoding/json cannot do on its own.
func (m SimulationMetrics) MarshalJSON() ([]byte, error) {
	type alias SimulationMetrics
	return json.Marshal(struct {
		alias
		SharpeRatio  *float64 `json:"sharpe_ratio"`
		SortinoRatio *float64 `json:"sortino_ratio"`
		CalmarRatio  *float64 `json:"calmar_ratio"`
	}{
		alias:        alias(m),
		SharpeRatio:  finite(m.SharpeRatio),
		SortinoRatio: finite(m.SortinoRatio),
		CalmarRatio:  finite(m.CalmarRatio),
	})
}

// UnmarshalJSON reads a null or missing Sortino ratio back as +Inf. Sharpe
// and Calmar are always finite and decode to 0 when absent.
func (m *SimulationMetrics) UnmarshalJSON(data []byte) error {
	type alias SimulationMetrics
	*m = SimulationMetrics{}
	aux := struct {
		*alias
		SortinoRatio *float64 `json:"sortino_ratio"`
	}{alias: (*alias)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.SortinoRatio = orInf(aux.SortinoRatio)
	return nil
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

func orInf(v *float64) float64 {
	if v == nil {
		return math.Inf(1)
	}
	return *v
}

// HistogramBin is one equal-width bucket of the outcome histogram.
type HistogramBin struct {
	BinStart  float64 `json:"bin_start"`
	BinEnd    float64 `json:"bin_end"`
	Count     int     `json:"count"`
	Frequency float64 `json:"frequency"`
}

// SimulationResult is the output of a Monte Carlo run. Results is sorted ascending.
type SimulationResult struct {
	Parameters  SimulationParameters `json:"parameters"`
	Results     []float64            `json:"results"`
	Statistics  SimulationStatistics `json:"statistics"`
	Percentiles Percentiles          `json:"percentiles"`
	Metrics     SimulationMetrics    `json:"metrics"`
	Histogram   []HistogramBin       `json:"histogram"`
}
