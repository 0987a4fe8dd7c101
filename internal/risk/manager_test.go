package risk

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	current time.Time
}

func (c *testClock) now() time.Time { return c.current }

func (c *testClock) advance(d time.Duration) { c.current = c.current.Add(d) }

func defaultParams() Params {
	return Params{
		MaxDailyTrades:       60,
		MinDailyTrades:       3,
		Cooldown:             30 * time.Second,
		MaxDrawdownStop:      0.20,
		MaxTradeEquityFrac:   0.10,
		MaxAssetExposureFrac: 0.35,
	}
}

func newTestManager(params Params) (*Manager, *testClock) {
	clock := &testClock{current: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewManager(params, logger)
	m.now = clock.now
	m.dayStart = clock.current.Unix() / secondsPerDay
	return m, clock
}

func TestCheckPretrade_AllowsWhenHealthy(t *testing.T) {
	m, _ := newTestManager(defaultParams())

	ok, reason := m.CheckPretrade(1000, 0)
	assert.True(t, ok)
	assert.Equal(t, "OK", reason)
}

func TestCheckPretrade_DrawdownStopLatches(t *testing.T) {
	m, clock := newTestManager(defaultParams())

	ok, _ := m.CheckPretrade(1000, 0)
	require.True(t, ok)

	// 1000 -> 799 is a 20.1% drawdown against a 20% stop.
	ok, reason := m.CheckPretrade(799, 0)
	require.False(t, ok)
	assert.Contains(t, reason, "Drawdown")
	assert.True(t, m.Stopped())

	// The stop is one-way: recovery, even above the old peak, never
	// re-enables trading within the process lifetime.
	clock.advance(time.Hour)
	ok, reason = m.CheckPretrade(2000, 0)
	assert.False(t, ok)
	assert.Contains(t, reason, "halted")
}

func TestCheckPretrade_DrawdownJustUnderThreshold(t *testing.T) {
	m, _ := newTestManager(defaultParams())

	ok, _ := m.CheckPretrade(1000, 0)
	require.True(t, ok)

	// 19.9% drawdown stays under a 20% stop.
	ok, _ = m.CheckPretrade(801, 0)
	assert.True(t, ok)
	assert.False(t, m.Stopped())
}

func TestPeakEquity_MonotonicWithinDay(t *testing.T) {
	m, _ := newTestManager(defaultParams())

	m.CheckPretrade(1000, 0)
	assert.Equal(t, 1000.0, m.PeakEquity())

	m.CheckPretrade(900, 0)
	assert.Equal(t, 1000.0, m.PeakEquity())

	m.CheckPretrade(1100, 0)
	assert.Equal(t, 1100.0, m.PeakEquity())
}

func TestCheckPretrade_DailyCap(t *testing.T) {
	params := defaultParams()
	params.MaxDailyTrades = 2
	params.Cooldown = 0
	m, _ := newTestManager(params)

	m.MarkTrade()
	m.MarkTrade()

	ok, reason := m.CheckPretrade(1000, 0)
	require.False(t, ok)
	assert.Contains(t, reason, "Daily trade cap")
}

func TestCheckPretrade_Cooldown(t *testing.T) {
	params := defaultParams()
	params.Cooldown = 30 * time.Second
	m, clock := newTestManager(params)

	m.MarkTrade()

	ok, reason := m.CheckPretrade(1000, 0)
	require.False(t, ok)
	assert.Contains(t, reason, "Cooldown")

	clock.advance(31 * time.Second)
	ok, _ = m.CheckPretrade(1000, 0)
	assert.True(t, ok)
}

func TestDailyRollover_ResetsCountOnce(t *testing.T) {
	params := defaultParams()
	params.Cooldown = 0
	m, clock := newTestManager(params)

	m.MarkTrade()
	m.MarkTrade()
	m.MarkTrade()
	assert.Equal(t, 3, m.DailyTradeCount())

	// Crossing the UTC day boundary resets lazily on the next read.
	clock.advance(24 * time.Hour)
	assert.Equal(t, 0, m.DailyTradeCount())

	// The reset happens exactly once per crossing.
	m.MarkTrade()
	assert.Equal(t, 1, m.DailyTradeCount())
	assert.Equal(t, 1, m.DailyTradeCount())
}

func TestDailyRollover_BelowMinimumDoesNotBlock(t *testing.T) {
	params := defaultParams()
	params.MinDailyTrades = 5
	params.Cooldown = 0
	m, clock := newTestManager(params)

	m.MarkTrade()
	clock.advance(24 * time.Hour)

	// A short previous day is a warning only; trading continues.
	ok, _ := m.CheckPretrade(1000, 0)
	assert.True(t, ok)
	assert.Equal(t, 0, m.DailyTradeCount())
}

func TestNeedsMoreTrades(t *testing.T) {
	params := defaultParams()
	params.MinDailyTrades = 2
	m, _ := newTestManager(params)

	assert.True(t, m.NeedsMoreTrades())
	m.MarkTrade()
	assert.True(t, m.NeedsMoreTrades())
	m.MarkTrade()
	assert.False(t, m.NeedsMoreTrades())
}

func TestCheckTradeSize(t *testing.T) {
	m, _ := newTestManager(defaultParams())

	ok, _ := m.CheckTradeSize(100, 1000)
	assert.True(t, ok, "10% of equity is at the cap")

	ok, reason := m.CheckTradeSize(101, 1000)
	require.False(t, ok)
	assert.Contains(t, reason, "Trade size")

	ok, reason = m.CheckTradeSize(10, 0)
	require.False(t, ok)
	assert.Contains(t, reason, "No equity")
}

func TestCheckAssetExposure(t *testing.T) {
	m, _ := newTestManager(defaultParams())

	ok, _ := m.CheckAssetExposure(350, 1000)
	assert.True(t, ok, "35% of equity is at the ceiling")

	ok, reason := m.CheckAssetExposure(351, 1000)
	require.False(t, ok)
	assert.Contains(t, reason, "exposure")
}
