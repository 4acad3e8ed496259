package simulation

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fiscalrisk/internal/contracts"
)

func baseParams() contracts.SimulationParameters {
	return contracts.SimulationParameters{
		Investment:     10206.9,
		ExpectedReturn: 8,
		Volatility:     25,
		Years:          5,
		Iterations:     5000,
		Seed:           42,
	}
}

func TestSimulate_Shape(t *testing.T) {
	p := baseParams()
	res, err := Simulate(context.Background(), p)
	require.NoError(t, err)

	assert.Len(t, res.Results, p.Iterations)
	assert.True(t, sort.Float64sAreSorted(res.Results))

	pc := res.Percentiles
	assert.LessOrEqual(t, pc.P5, pc.P10)
	assert.LessOrEqual(t, pc.P10, pc.P25)
	assert.LessOrEqual(t, pc.P25, pc.P50)
	assert.LessOrEqual(t, pc.P50, pc.P75)
	assert.LessOrEqual(t, pc.P75, pc.P90)
	assert.LessOrEqual(t, pc.P90, pc.P95)

	st := res.Statistics
	assert.Equal(t, res.Results[0], st.Min)
	assert.Equal(t, res.Results[len(res.Results)-1], st.Max)
	assert.InDelta(t, st.StandardDeviation*st.StandardDeviation, st.Variance, 1e-6)
	assert.Greater(t, st.Skewness, 0.0, "log-normal outcomes are right skewed")

	require.Len(t, res.Histogram, DefaultConfig().Bins)
	var count int
	var freq float64
	for _, b := range res.Histogram {
		count += b.Count
		freq += b.Frequency
		assert.LessOrEqual(t, b.BinStart, b.BinEnd)
	}
	assert.Equal(t, p.Iterations, count)
	assert.InDelta(t, 1, freq, 1e-9)
	assert.Equal(t, st.Min, res.Histogram[0].BinStart)
	assert.InDelta(t, st.Max, res.Histogram[len(res.Histogram)-1].BinEnd, 1e-6)

	m := res.Metrics
	assert.GreaterOrEqual(t, m.ProbabilityOfLoss, 0.0)
	assert.LessOrEqual(t, m.ProbabilityOfLoss, 1.0)
	assert.GreaterOrEqual(t, m.MaxDrawdown, 0.0)
	assert.InDelta(t, (st.Mean-p.Investment)/p.Investment*100, m.AverageReturn, 1e-9)
}

func TestSimulate_ConvergesToExpectedValue(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large simulation in short mode")
	}

	p := baseParams()
	p.Iterations = 200000
	res, err := Simulate(context.Background(), p)
	require.NoError(t, err)

	want := p.Investment * math.Exp(p.ExpectedReturn/100*float64(p.Years))
	assert.InEpsilon(t, want, res.Statistics.Mean, 0.01)
}

func TestSimulate_SeedIsDeterministic(t *testing.T) {
	a, err := Simulate(context.Background(), baseParams())
	require.NoError(t, err)
	b, err := Simulate(context.Background(), baseParams())
	require.NoError(t, err)
	assert.Equal(t, a.Results, b.Results)

	other := baseParams()
	other.Seed = 7
	c, err := Simulate(context.Background(), other)
	require.NoError(t, err)
	assert.NotEqual(t, a.Results, c.Results)
}

func TestSimulate_ZeroVolatility(t *testing.T) {
	p := baseParams()
	p.Volatility = 0
	p.Iterations = 100
	res, err := Simulate(context.Background(), p)
	require.NoError(t, err)

	want := p.Investment * math.Exp(p.ExpectedReturn/100*float64(p.Years))
	for _, v := range res.Results {
		assert.InDelta(t, want, v, 1e-6)
	}
	assert.Zero(t, res.Statistics.Skewness)
	assert.Zero(t, res.Metrics.SharpeRatio)
	assert.True(t, math.IsInf(res.Metrics.SortinoRatio, 1), "no downside sample")
	assert.Zero(t, res.Metrics.CalmarRatio)
	require.Len(t, res.Histogram, 1)
	assert.Equal(t, 100, res.Histogram[0].Count)

	data, err := json.Marshal(res.Metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sortino_ratio":null`)
}

func TestSimulate_SingleIteration(t *testing.T) {
	p := baseParams()
	p.Iterations = 1
	p.Bins = 5
	res, err := Simulate(context.Background(), p)
	require.NoError(t, err)
	assert.Len(t, res.Results, 1)
	assert.Zero(t, res.Statistics.Variance)
	assert.Equal(t, res.Results[0], res.Percentiles.P95)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*contracts.SimulationParameters)
	}{
		{"zero investment", func(p *contracts.SimulationParameters) { p.Investment = 0 }},
		{"nan investment", func(p *contracts.SimulationParameters) { p.Investment = math.NaN() }},
		{"infinite return", func(p *contracts.SimulationParameters) { p.ExpectedReturn = math.Inf(1) }},
		{"negative volatility", func(p *contracts.SimulationParameters) { p.Volatility = -1 }},
		{"zero years", func(p *contracts.SimulationParameters) { p.Years = 0 }},
		{"too many years", func(p *contracts.SimulationParameters) { p.Years = MaxYears + 1 }},
		{"zero iterations", func(p *contracts.SimulationParameters) { p.Iterations = 0 }},
		{"too many iterations", func(p *contracts.SimulationParameters) { p.Iterations = MaxIterations + 1 }},
		{"negative bins", func(p *contracts.SimulationParameters) { p.Bins = -1 }},
		{"overflowing growth", func(p *contracts.SimulationParameters) {
			p.Investment, p.ExpectedReturn, p.Volatility, p.Years = 1000, 750, 100, 100
		}},
		{"overflowing drift", func(p *contracts.SimulationParameters) {
			p.ExpectedReturn, p.Volatility, p.Years = 2000, 1, 50
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseParams()
			tt.mutate(&p)
			assert.ErrorIs(t, Validate(p), ErrInvalidParameters)

			_, err := Simulate(context.Background(), p)
			assert.ErrorIs(t, err, ErrInvalidParameters)
		})
	}

	assert.NoError(t, Validate(baseParams()))
}

func TestSimulate_LongHorizonStaysFinite(t *testing.T) {
	p := contracts.SimulationParameters{
		Investment:     1000,
		ExpectedReturn: 750,
		Volatility:     100,
		Years:          100,
		Iterations:     200,
		Seed:           7,
	}
	_, err := Simulate(context.Background(), p)
	require.ErrorIs(t, err, ErrInvalidParameters)

	// Largest accepted horizon for an aggressive but plausible asset.
	p.ExpectedReturn, p.Volatility = 12, 60
	res, err := Simulate(context.Background(), p)
	require.NoError(t, err)

	for _, v := range []float64{res.Statistics.Mean, res.Statistics.Variance, res.Statistics.Kurtosis, res.Metrics.SharpeRatio} {
		assert.False(t, math.IsInf(v, 0) || math.IsNaN(v))
	}
	assert.NotEmpty(t, res.Histogram)
	_, err = json.Marshal(res)
	assert.NoError(t, err)
}

func TestHistogram_NonFiniteBounds(t *testing.T) {
	assert.Nil(t, histogram([]float64{1, 2, math.Inf(1)}, 10))
	assert.Nil(t, histogram([]float64{math.Inf(1), math.Inf(1)}, 10))

	bins := histogram([]float64{1, 2, 3, 4}, 2)
	require.Len(t, bins, 2)
	assert.Equal(t, 2, bins[0].Count)
	assert.Equal(t, 2, bins[1].Count)
}

func TestSimulate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Simulate(ctx, baseParams())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPercentileAt(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, 1.0, percentileAt(sorted, 0.05))
	assert.Equal(t, 3.0, percentileAt(sorted, 0.25))
	assert.Equal(t, 6.0, percentileAt(sorted, 0.50))
	assert.Equal(t, 10.0, percentileAt(sorted, 0.95))
	assert.Equal(t, 10.0, percentileAt(sorted, 1.0))
}

func TestMaxDrawdown(t *testing.T) {
	assert.Zero(t, maxDrawdown(nil))
	assert.Zero(t, maxDrawdown([]float64{1, 2, 3}))
	assert.InDelta(t, 50, maxDrawdown([]float64{100, 120, 60, 110, 90}), 1e-9)
}

func TestStatistics(t *testing.T) {
	st := statistics([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5, st.Mean, 1e-12)
	assert.InDelta(t, 4.5, st.Median, 1e-12)
	assert.InDelta(t, 32.0/7, st.Variance, 1e-12)
	assert.Equal(t, 2.0, st.Min)
	assert.Equal(t, 9.0, st.Max)
}
