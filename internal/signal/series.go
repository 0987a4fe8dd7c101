// Package signal converts per-asset price history into a continuous position
// weight using a volatility-normalized momentum z-score.
package signal

import "math"

// Series is a fixed-capacity, insertion-ordered price history. When full,
// appending evicts the oldest value. Only positive finite prices are
// accepted; everything else is dropped.
type Series struct {
	values []float64
	cap    int
}

// NewSeries creates a Series that holds at most capacity prices.
func NewSeries(capacity int) *Series {
	if capacity < 1 {
		capacity = 1
	}
	return &Series{
		values: make([]float64, 0, capacity),
		cap:    capacity,
	}
}

// Append records a price observation. It returns false when the value is
// rejected (non-positive, NaN, or infinite).
func (s *Series) Append(price float64) bool {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return false
	}
	if len(s.values) == s.cap {
		copy(s.values, s.values[1:])
		s.values[len(s.values)-1] = price
		return true
	}
	s.values = append(s.values, price)
	return true
}

// Len returns the number of recorded prices.
func (s *Series) Len() int { return len(s.values) }

// Ready reports whether at least n prices have accumulated.
func (s *Series) Ready(n int) bool { return len(s.values) >= n }

// Values returns a copy of the recorded prices, oldest first. The returned
// slice is safe to mutate.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// Last returns the most recent price, or 0 when the series is empty.
func (s *Series) Last() float64 {
	if len(s.values) == 0 {
		return 0
	}
	return s.values[len(s.values)-1]
}
