package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInverseVolWeights_EqualVolsYieldEqualWeights(t *testing.T) {
	vols := map[string]float64{"A": 0.5, "B": 0.5, "C": 0.5, "D": 0.5}

	weights := InverseVolWeights(vols, true)

	require.Len(t, weights, 4)
	for sym, w := range weights {
		assert.InDelta(t, 0.25, w, 1e-12, "symbol %s", sym)
	}
}

func TestInverseVolWeights_SumToOne(t *testing.T) {
	vols := map[string]float64{"A": 0.1, "B": 0.25, "C": 0.9}

	weights := InverseVolWeights(vols, true)

	var sum float64
	for _, w := range weights {
		assert.GreaterOrEqual(t, w, 0.0)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestInverseVolWeights_InverseProportionality(t *testing.T) {
	vols := map[string]float64{"LOW": 0.1, "HIGH": 0.2}

	weights := InverseVolWeights(vols, true)

	// Half the volatility earns twice the weight.
	assert.InDelta(t, 2.0, weights["LOW"]/weights["HIGH"], 1e-9)
}

func TestInverseVolWeights_ZeroVolIsFloored(t *testing.T) {
	vols := map[string]float64{"FLAT": 0, "NORMAL": 0.2}

	weights := InverseVolWeights(vols, true)

	// The floored asset dominates but the result stays finite.
	assert.Greater(t, weights["FLAT"], weights["NORMAL"])
	assert.InDelta(t, 1.0, weights["FLAT"]+weights["NORMAL"], 1e-9)
}

func TestInverseVolWeights_EmptyInput(t *testing.T) {
	weights := InverseVolWeights(map[string]float64{}, true)
	assert.Empty(t, weights)
}

func TestInverseVolWeights_NegativeVolIsFlooredLikeZero(t *testing.T) {
	// Negative volatility is nonsensical input; the epsilon floor treats it
	// like a zero-vol asset rather than producing a negative weight.
	vols := map[string]float64{"BAD": -0.1, "GOOD": 0.1}

	weights := InverseVolWeights(vols, true)

	assert.Greater(t, weights["BAD"], weights["GOOD"])
	for _, w := range weights {
		assert.GreaterOrEqual(t, w, 0.0)
	}
}
