package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSharpe_TooFewPoints(t *testing.T) {
	assert.Zero(t, Sharpe(nil, 30))
	assert.Zero(t, Sharpe([]float64{100}, 30))
	assert.Zero(t, Sharpe([]float64{100, 101}, 30))
}

func TestSharpe_FlatSeriesIsZero(t *testing.T) {
	assert.Zero(t, Sharpe([]float64{100, 100, 100, 100}, 30))
}

func TestSharpe_RisingSeriesIsPositive(t *testing.T) {
	equity := []float64{1000, 1010, 1025, 1030, 1055, 1060}
	assert.Positive(t, Sharpe(equity, 30))
}

func TestSharpe_FallingSeriesIsNegative(t *testing.T) {
	equity := []float64{1000, 990, 985, 970, 950, 945}
	assert.Negative(t, Sharpe(equity, 30))
}

func TestSharpe_ZeroBarSeconds(t *testing.T) {
	assert.Zero(t, Sharpe([]float64{100, 101, 102}, 0))
}

func TestMaxDrawdown_Empty(t *testing.T) {
	assert.Zero(t, MaxDrawdown(nil))
}

func TestMaxDrawdown_MonotonicRiseIsZero(t *testing.T) {
	assert.Zero(t, MaxDrawdown([]float64{100, 110, 120, 130}))
}

func TestMaxDrawdown_PeakToTrough(t *testing.T) {
	// Peak 1000, trough 800 -> 20% drawdown, later recovery ignored.
	equity := []float64{900, 1000, 950, 800, 990, 1000}
	assert.InDelta(t, 0.20, MaxDrawdown(equity), 1e-9)
}

func TestMaxDrawdown_UsesRunningPeak(t *testing.T) {
	// The second decline is measured against the newer, higher peak.
	equity := []float64{1000, 900, 1200, 840}
	assert.InDelta(t, 0.30, MaxDrawdown(equity), 1e-9)
}
