package signal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func risingPrices(start float64, step float64, n int) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = start + step*float64(i)
	}
	return prices
}

func flatPrices(value float64, n int) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = value
	}
	return prices
}

func TestCompute_WarmupReturnsNeutral(t *testing.T) {
	e := NewEngine(3, 10, 10, 1.0, 0.2)

	for n := 0; n < e.MinHistory(); n++ {
		sig := e.Compute(risingPrices(100, 1, n))
		assert.True(t, sig.Neutral(), "history of %d prices must be neutral", n)
		assert.Zero(t, sig.Weight)
		assert.Zero(t, sig.Z)
	}
}

func TestCompute_FlatHistoryIsNeutral(t *testing.T) {
	e := NewEngine(3, 10, 10, 1.0, 0.2)

	sig := e.Compute(flatPrices(100, 50))
	assert.Zero(t, sig.Z)
	assert.Zero(t, sig.Weight)
	// Momentum and vol are still reported for a flat window.
	assert.Zero(t, sig.Momentum)
}

func TestCompute_RisingHistoryGoesLong(t *testing.T) {
	e := NewEngine(3, 10, 10, 1.0, 0.2)

	sig := e.Compute(risingPrices(100, 2, 10))
	assert.Positive(t, sig.Z)
	assert.Positive(t, sig.Weight)
	assert.Positive(t, sig.Momentum)
	assert.Positive(t, sig.Vol)
}

func TestCompute_FallingHistoryStaysFlat(t *testing.T) {
	e := NewEngine(3, 10, 10, 1.0, 0.2)

	sig := e.Compute(risingPrices(200, -2, 10))
	assert.Negative(t, sig.Z)
	assert.Zero(t, sig.Weight, "long-only engine never shorts")
}

func TestWeight_PiecewiseSchedule(t *testing.T) {
	e := NewEngine(3, 10, 10, 1.0, 0.2)

	// Exit zone: at or below zExit the weight is zero.
	assert.Zero(t, e.weight(-1))
	assert.Zero(t, e.weight(0))
	assert.Zero(t, e.weight(0.2))

	// Partial-conviction ramp between zExit and zEntry, capped at 0.3.
	assert.InDelta(t, 0.15, e.weight(0.6), 1e-9)
	assert.InDelta(t, 0.2925, e.weight(0.98), 1e-9)

	// Entry zone scales with conviction and caps at 1.
	assert.InDelta(t, 0.5, e.weight(1.0), 1e-9)
	assert.InDelta(t, 1.0, e.weight(1.5), 1e-9)
	assert.Equal(t, 1.0, e.weight(10))
}

func TestMinHistory(t *testing.T) {
	assert.Equal(t, 120, NewEngine(20, 120, 100, 1, 0.2).MinHistory())
	assert.Equal(t, 150, NewEngine(20, 120, 150, 1, 0.2).MinHistory())
}

func TestRealizedVol(t *testing.T) {
	assert.Zero(t, RealizedVol([]float64{100}))
	assert.Zero(t, RealizedVol([]float64{100, 101}))

	// Flat prices floor at the epsilon rather than zero.
	assert.Equal(t, volFloor, RealizedVol(flatPrices(100, 10)))

	vol := RealizedVol([]float64{100, 110, 95, 120, 90})
	assert.Greater(t, vol, volFloor)
}

func TestSeries_CapacityEviction(t *testing.T) {
	s := NewSeries(3)

	require.True(t, s.Append(1))
	require.True(t, s.Append(2))
	require.True(t, s.Append(3))
	require.True(t, s.Append(4))

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []float64{2, 3, 4}, s.Values())
	assert.Equal(t, 4.0, s.Last())
}

func TestSeries_RejectsInvalidPrices(t *testing.T) {
	s := NewSeries(10)

	assert.False(t, s.Append(0))
	assert.False(t, s.Append(-1))
	assert.False(t, s.Append(math.NaN()))
	assert.False(t, s.Append(math.Inf(1)))
	assert.Equal(t, 0, s.Len())
	assert.Zero(t, s.Last())
}

func TestSeries_ValuesIsACopy(t *testing.T) {
	s := NewSeries(5)
	s.Append(10)
	s.Append(20)

	vals := s.Values()
	vals[0] = 999
	assert.Equal(t, []float64{10, 20}, s.Values())
}
