package simulation

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/fiscalrisk/internal/contracts"
)

// successMultiple is the terminal value, relative to the investment, that counts as a success.
const successMultiple = 1.1

// statistics computes the moments of sorted outcomes.
// Variance is the unbiased sample variance; skewness and excess kurtosis are
// standardized by the sample standard deviation.
func statistics(sorted []float64) contracts.SimulationStatistics {
	n := len(sorted)
	mean := stat.Mean(sorted, nil)

	var variance float64
	if n > 1 && sorted[0] != sorted[n-1] && allFinite(sorted[0], sorted[n-1]) {
		variance = stat.Variance(sorted, nil)
	}
	sd := math.Sqrt(variance)

	var skew, kurt float64
	if sd > 0 && !math.IsInf(sd, 0) {
		skew = stat.Moment(3, sorted, nil) / math.Pow(sd, 3)
		kurt = stat.Moment(4, sorted, nil)/math.Pow(sd, 4) - 3
	}

	return contracts.SimulationStatistics{
		Mean:              mean,
		Median:            median(sorted),
		StandardDeviation: sd,
		Variance:          variance,
		Skewness:          skew,
		Kurtosis:          kurt,
		Min:               floats.Min(sorted),
		Max:               floats.Max(sorted),
	}
}

func allFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// percentileAt returns sorted[floor(p·n)], clamped to the last element.
func percentileAt(sorted []float64, p float64) float64 {
	idx := int(math.Floor(p * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

func percentiles(sorted []float64) contracts.Percentiles {
	return contracts.Percentiles{
		P5:  percentileAt(sorted, 0.05),
		P10: percentileAt(sorted, 0.10),
		P25: percentileAt(sorted, 0.25),
		P50: percentileAt(sorted, 0.50),
		P75: percentileAt(sorted, 0.75),
		P90: percentileAt(sorted, 0.90),
		P95: percentileAt(sorted, 0.95),
	}
}

// metrics computes the performance ratios. outcomes must be in trial order:
// the drawdown scan depends on it.
func metrics(outcomes []float64, stats contracts.SimulationStatistics, p contracts.SimulationParameters, riskFreePct float64) contracts.SimulationMetrics {
	n := float64(len(outcomes))
	inv := p.Investment
	years := float64(p.Years)

	var losses, successes int
	var downsideSq float64
	for _, v := range outcomes {
		if v < inv {
			losses++
		}
		if v > inv*successMultiple {
			successes++
		}
		if r := (v - inv) / inv * 100; r < 0 {
			downsideSq += r * r
		}
	}

	avgReturn := (stats.Mean - inv) / inv * 100
	annReturn := avgReturn / years
	annVol := (stats.StandardDeviation / inv * 100) / math.Sqrt(years)

	var sharpe float64
	if annVol > 0 {
		sharpe = (annReturn - riskFreePct) / annVol
	}

	sortino := math.Inf(1)
	if downsideSq > 0 {
		annDownside := math.Sqrt(downsideSq/n) / math.Sqrt(years)
		sortino = (annReturn - riskFreePct) / annDownside
	}

	dd := maxDrawdown(outcomes)
	var calmar float64
	if dd > 0 {
		calmar = avgReturn / dd
	}

	return contracts.SimulationMetrics{
		ProbabilityOfLoss: float64(losses) / n,
		SuccessRate:       float64(successes) / n,
		AverageReturn:     avgReturn,
		SharpeRatio:       sharpe,
		SortinoRatio:      sortino,
		CalmarRatio:       calmar,
		MaxDrawdown:       dd,
	}
}

// maxDrawdown is the largest peak-to-trough decline, in percent, scanning values in order.
func maxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	peak := values[0]
	var worst float64
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak * 100; dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

// histogram buckets sorted values into bins equal-width bins over [min, max].
// The max value lands in the last bin. Non-finite bounds yield no bins.
func histogram(sorted []float64, bins int) []contracts.HistogramBin {
	n := len(sorted)
	lo, hi := sorted[0], sorted[n-1]
	if !allFinite(lo, hi) {
		return nil
	}
	if hi == lo {
		return []contracts.HistogramBin{{BinStart: lo, BinEnd: hi, Count: n, Frequency: 1}}
	}

	width := (hi - lo) / float64(bins)
	if !allFinite(width) || width == 0 {
		return nil
	}
	edges := floats.Span(make([]float64, bins+1), lo, hi)

	out := make([]contracts.HistogramBin, bins)
	for i := range out {
		out[i].BinStart = edges[i]
		out[i].BinEnd = edges[i+1]
	}
	for _, v := range sorted {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		out[idx].Count++
	}
	for i := range out {
		out[i].Frequency = float64(out[i].Count) / float64(n)
	}
	return out
}
