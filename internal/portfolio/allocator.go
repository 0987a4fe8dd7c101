// Package portfolio converts per-asset volatility estimates into
// inverse-volatility (risk-parity) target weights.
package portfolio

// volEpsilon floors input volatilities so a zero-vol asset cannot absorb the
// whole allocation through division by zero.
const volEpsilon = 1e-8

// InverseVolWeights computes allocation weights inversely proportional to
// each asset's volatility, normalized to sum 1 across all inputs. In
// long-only mode any negative weight is clamped to zero; the result is NOT
// re-normalized after clamping, so callers must treat the output as final.
//
// Equal input volatilities yield exactly equal weights. An empty input
// returns an empty map.
func InverseVolWeights(vols map[string]float64, longOnly bool) map[string]float64 {
	weights := make(map[string]float64, len(vols))
	if len(vols) == 0 {
		return weights
	}

	var total float64
	for sym, v := range vols {
		if v < volEpsilon {
			v = volEpsilon
		}
		inv := 1 / v
		weights[sym] = inv
		total += inv
	}
	if total == 0 {
		total = 1
	}

	for sym, w := range weights {
		w /= total
		if longOnly && w < 0 {
			w = 0
		}
		weights[sym] = w
	}
	return weights
}
