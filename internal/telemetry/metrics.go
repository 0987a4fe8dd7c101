// Package telemetry computes portfolio performance metrics and persists
// them as an append-only CSV series, with optional archival to blob
// storage.
package telemetry

import "math"

const secondsPerYear = 365.0 * 24 * 3600

// Sharpe is the annualized Sharpe ratio of the bar-to-bar returns of an
// equity series sampled every barSeconds. It assumes a zero risk-free rate.
// Fewer than three points, or a flat series, yields zero.
func Sharpe(equity []float64, barSeconds float64) float64 {
	if len(equity) < 3 || barSeconds <= 0 {
		return 0
	}

	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1] <= 0 {
			continue
		}
		returns = append(returns, equity[i]/equity[i-1]-1)
	}
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))
	if variance == 0 {
		return 0
	}

	barsPerYear := secondsPerYear / barSeconds
	return mean / math.Sqrt(variance) * math.Sqrt(barsPerYear)
}

// MaxDrawdown is the largest peak-to-trough decline of an equity series,
// as a fraction of the running peak. Zero for series that never decline.
func MaxDrawdown(equity []float64) float64 {
	if len(equity) == 0 {
		return 0
	}

	peak := equity[0]
	worst := 0.0
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if peak > 0 {
			if dd := (peak - e) / peak; dd > worst {
				worst = dd
			}
		}
	}
	return worst
}
