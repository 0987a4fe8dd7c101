// Package ratelimit implements a sliding-window rate limiter shared by every
// caller that talks to the venue. Admission is checked against the endpoint's
// category window and against two global windows (per-minute and per-hour)
// simultaneously; the most restrictive constraint determines the wait time.
package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Window durations. Category windows and the global per-minute window span
// one minute; the global per-hour window spans one hour.
const (
	categoryWindow = time.Minute
	hourWindow     = time.Hour

	// slack is added to computed wait times so a caller that sleeps the
	// returned duration lands just past the window boundary.
	minuteSlack = 100 * time.Millisecond
	hourSlack   = time.Second
)

// Limits holds the request quotas per category window and per global window.
type Limits struct {
	TradeOperations int
	PriceQueries    int
	BalanceChecks   int
	GlobalRPM       int
	GlobalRPH       int
}

// Limiter is a mutex-guarded set of sliding windows. It is safe for
// concurrent use; every Acquire is a single critical section over the
// read-modify-write of window state.
type Limiter struct {
	limits Limits

	mu      sync.Mutex
	trade   []time.Time
	price   []time.Time
	balance []time.Time
	rpm     []time.Time
	rph     []time.Time

	now func() time.Time
}

// New creates a Limiter with the given quotas.
func New(limits Limits) *Limiter {
	return &Limiter{
		limits: limits,
		now:    time.Now,
	}
}

// purge drops timestamps older than dur from the window and returns the
// trimmed slice.
func purge(window []time.Time, now time.Time, dur time.Duration) []time.Time {
	cutoff := now.Add(-dur)
	i := 0
	for i < len(window) && window[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		window = window[i:]
	}
	return window
}

// classify maps an endpoint name onto its category window, quota, and
// duration. Classification is by substring match; unrecognized endpoints fall
// back to the global per-minute window only.
func (l *Limiter) classify(endpoint string) (window *[]time.Time, limit int) {
	switch {
	case strings.Contains(endpoint, "trade"):
		return &l.trade, l.limits.TradeOperations
	case strings.Contains(endpoint, "price"):
		return &l.price, l.limits.PriceQueries
	case strings.Contains(endpoint, "balance"), strings.Contains(endpoint, "portfolio"):
		return &l.balance, l.limits.BalanceChecks
	default:
		return &l.rpm, l.limits.GlobalRPM
	}
}

// Acquire attempts to take a slot for the given endpoint. On success it
// records the request in the category window and both global windows and
// returns (true, 0). On refusal it returns (false, wait) where wait is how
// long the caller should sleep before the most restrictive window frees a
// slot. Acquire never blocks.
func (l *Limiter) Acquire(endpoint string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	window, limit := l.classify(endpoint)

	*window = purge(*window, now, categoryWindow)

	l.rpm = purge(l.rpm, now, categoryWindow)
	if len(l.rpm) >= l.limits.GlobalRPM {
		wait := categoryWindow - now.Sub(l.rpm[0]) + minuteSlack
		return false, maxDuration(wait, 0)
	}

	l.rph = purge(l.rph, now, hourWindow)
	if len(l.rph) >= l.limits.GlobalRPH {
		wait := hourWindow - now.Sub(l.rph[0]) + hourSlack
		return false, maxDuration(wait, 0)
	}

	if len(*window) >= limit {
		wait := categoryWindow - now.Sub((*window)[0]) + minuteSlack
		return false, maxDuration(wait, 0)
	}

	// Record the admitted request. When the endpoint fell back to the
	// global per-minute window, window aliases l.rpm and must only be
	// appended once.
	if window != &l.rpm {
		*window = append(*window, now)
	}
	l.rpm = append(l.rpm, now)
	l.rph = append(l.rph, now)

	return true, 0
}

// WaitAndAcquire retries Acquire with bounded sleeps until a slot is granted
// or maxWait has elapsed. It returns false on timeout or context
// cancellation; callers must treat false as "proceed without the slot" or
// "skip this cycle", never as a fatal condition.
func (l *Limiter) WaitAndAcquire(ctx context.Context, endpoint string, maxWait time.Duration) bool {
	deadline := l.now().Add(maxWait)
	for {
		ok, wait := l.Acquire(endpoint)
		if ok {
			return true
		}
		now := l.now()
		if now.Add(wait).After(deadline) {
			return false
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
