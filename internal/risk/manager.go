// Package risk implements the stateful guardrail that approves or rejects
// every prospective trading action. The manager is a two-state machine:
// ACTIVE from startup, and STOPPED once drawdown from peak equity reaches the
// configured threshold. STOPPED is one-way; only a process restart clears it.
package risk

import (
	"fmt"
	"log/slog"
	"time"
)

const secondsPerDay = 86400

// Params holds the risk limits. All fields are immutable for the process
// lifetime.
type Params struct {
	MaxDailyTrades       int
	MinDailyTrades       int
	Cooldown             time.Duration
	MaxDrawdownStop      float64 // fraction of peak equity, e.g. 0.20
	MaxTradeEquityFrac   float64 // max single trade as a fraction of equity
	MaxAssetExposureFrac float64 // max per-asset exposure as a fraction of equity
}

// Manager owns all risk state. It is not safe for concurrent use; the control
// loop is its only caller and no other component may mutate its state.
type Manager struct {
	params Params
	logger *slog.Logger

	dailyCount int
	dayStart   int64 // UTC day bucket: unix seconds / 86400
	tradeTimes []time.Time
	lastTrade  time.Time
	peak       float64
	hasPeak    bool
	stopped    bool

	now func() time.Time
}

// NewManager creates an ACTIVE Manager with the given limits.
func NewManager(params Params, logger *slog.Logger) *Manager {
	m := &Manager{
		params: params,
		logger: logger.With(slog.String("component", "risk")),
		now:    time.Now,
	}
	m.dayStart = m.now().Unix() / secondsPerDay
	return m
}

// rolloverIfNeeded resets the daily counters when the wall clock has crossed
// into a new UTC day. It is invoked at the top of every state-reading or
// state-mutating operation (lazy detection; there is no background timer).
// A previous day that ended with a positive count below the configured
// minimum is logged as a warning, never treated as an error.
func (m *Manager) rolloverIfNeeded() {
	day := m.now().Unix() / secondsPerDay
	if day == m.dayStart {
		return
	}
	if m.dailyCount > 0 && m.dailyCount < m.params.MinDailyTrades {
		m.logger.Warn("previous day ended below minimum trade count",
			slog.Int("trades", m.dailyCount),
			slog.Int("minimum", m.params.MinDailyTrades),
		)
	}
	m.dayStart = day
	m.dailyCount = 0
	m.tradeTimes = nil
}

// CheckPretrade decides whether any trading action may proceed right now.
// It updates peak equity (monotonic max), evaluates drawdown, the daily
// trade cap, and the cooldown interval, in that order. Exposure headroom is
// deliberately not checked here; see CheckAssetExposure.
//
// The returned reason is human-readable and is the only explanation callers
// get; rejections are expected control flow, not errors.
func (m *Manager) CheckPretrade(equityUSD, exposureUSD float64) (bool, string) {
	if m.stopped {
		return false, "Drawdown stop (halted)"
	}
	m.rolloverIfNeeded()

	if !m.hasPeak {
		m.peak = equityUSD
		m.hasPeak = true
	} else if equityUSD > m.peak {
		m.peak = equityUSD
	} else if m.peak > 0 {
		dd := (m.peak - equityUSD) / m.peak
		if dd >= m.params.MaxDrawdownStop {
			m.stopped = true
			m.logger.Error("drawdown stop triggered, trading halted",
				slog.Float64("drawdown", dd),
				slog.Float64("peak", m.peak),
				slog.Float64("equity", equityUSD),
			)
			return false, fmt.Sprintf("Drawdown stop reached (%.1f%% >= %.1f%%)", dd*100, m.params.MaxDrawdownStop*100)
		}
	}

	if m.dailyCount >= m.params.MaxDailyTrades {
		return false, fmt.Sprintf("Daily trade cap reached (%d/%d)", m.dailyCount, m.params.MaxDailyTrades)
	}

	if since := m.now().Sub(m.lastTrade); since < m.params.Cooldown {
		return false, fmt.Sprintf("Cooldown active (%.0fs remaining)", (m.params.Cooldown - since).Seconds())
	}

	_ = exposureUSD // reported by callers for logging only
	return true, "OK"
}

// CheckTradeSize rejects trades larger than the configured fraction of total
// equity.
func (m *Manager) CheckTradeSize(tradeUSD, equityUSD float64) (bool, string) {
	if equityUSD <= 0 {
		return false, "No equity to trade against"
	}
	frac := tradeUSD / equityUSD
	if frac > m.params.MaxTradeEquityFrac {
		return false, fmt.Sprintf("Trade size %.1f%% of equity exceeds %.1f%% cap", frac*100, m.params.MaxTradeEquityFrac*100)
	}
	return true, "OK"
}

// CheckAssetExposure rejects a trade whose resulting per-asset exposure would
// exceed the configured ceiling as a fraction of total equity.
func (m *Manager) CheckAssetExposure(prospectiveUSD, equityUSD float64) (bool, string) {
	if equityUSD <= 0 {
		return false, "No equity to trade against"
	}
	frac := prospectiveUSD / equityUSD
	if frac > m.params.MaxAssetExposureFrac {
		return false, fmt.Sprintf("Asset exposure %.1f%% of equity exceeds %.1f%% ceiling", frac*100, m.params.MaxAssetExposureFrac*100)
	}
	return true, "OK"
}

// MarkTrade records one successfully submitted order. Callers must invoke it
// exactly once per accepted order and never for rejected or failed ones.
func (m *Manager) MarkTrade() {
	m.rolloverIfNeeded()
	now := m.now()
	m.dailyCount++
	m.lastTrade = now
	m.tradeTimes = append(m.tradeTimes, now)
}

// DailyTradeCount returns the number of trades marked so far today.
func (m *Manager) DailyTradeCount() int {
	m.rolloverIfNeeded()
	return m.dailyCount
}

// NeedsMoreTrades reports whether today's count is still below the
// configured daily minimum.
func (m *Manager) NeedsMoreTrades() bool {
	m.rolloverIfNeeded()
	return m.dailyCount < m.params.MinDailyTrades
}

// Stopped reports whether the drawdown stop has latched.
func (m *Manager) Stopped() bool { return m.stopped }

// PeakEquity returns the highest equity observed so far (0 before the first
// pretrade check).
func (m *Manager) PeakEquity() float64 { return m.peak }
