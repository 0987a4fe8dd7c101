package signal

import "math"

// volFloor prevents downstream division by zero for near-flat return series.
const volFloor = 1e-8

// partialZoneCap bounds the weight assigned inside the partial-conviction
// ramp between zExit and zEntry.
const partialZoneCap = 0.3

// Signal is the ephemeral per-asset output of one Compute call.
type Signal struct {
	Z        float64 // spread-over-dispersion z-score
	Weight   float64 // position weight in [0,1]
	Momentum float64 // shortMean/longMean - 1
	Vol      float64 // realized volatility of log returns
}

// Neutral reports whether the signal carries no conviction (warm-up or
// flat-price output).
func (s Signal) Neutral() bool { return s.Weight == 0 && s.Z == 0 }

// Engine computes momentum/volatility signals with fixed lookback windows.
// The zero value is not usable; construct with NewEngine.
type Engine struct {
	lookShort   int
	lookLong    int
	volLookback int
	zEntry      float64
	zExit       float64
}

// NewEngine creates an Engine. The caller is responsible for validating
// zEntry > zExit at configuration time; the weight ramp is undefined
// otherwise.
func NewEngine(lookShort, lookLong, volLookback int, zEntry, zExit float64) *Engine {
	return &Engine{
		lookShort:   lookShort,
		lookLong:    lookLong,
		volLookback: volLookback,
		zEntry:      zEntry,
		zExit:       zExit,
	}
}

// MinHistory returns the number of prices required before Compute produces a
// non-neutral signal.
func (e *Engine) MinHistory() int {
	if e.lookLong > e.volLookback {
		return e.lookLong
	}
	return e.volLookback
}

// Compute derives the signal for one asset from its price history, oldest
// first. Histories shorter than MinHistory yield the neutral signal; this is
// the warm-up policy, not an error. A flat price window (zero dispersion)
// also yields the neutral signal.
func (e *Engine) Compute(prices []float64) Signal {
	if len(prices) < e.MinHistory() {
		return Signal{}
	}

	shortMean := mean(prices[len(prices)-e.lookShort:])
	longMean := mean(prices[len(prices)-e.lookLong:])

	var momentum float64
	if longMean != 0 {
		momentum = shortMean/longMean - 1
	}

	volWindow := prices[len(prices)-e.volLookback:]
	dispersion := stdDev(volWindow)
	vol := RealizedVol(volWindow)

	if dispersion == 0 {
		return Signal{Momentum: momentum, Vol: vol}
	}

	z := (shortMean - longMean) / dispersion
	return Signal{
		Z:        z,
		Weight:   e.weight(z),
		Momentum: momentum,
		Vol:      vol,
	}
}

// weight maps a z-score onto a position weight using the piecewise-linear
// schedule: flat at or below zExit, a 0..0.3 ramp between zExit and zEntry,
// and a conviction-scaled weight capped at 1 above zEntry.
func (e *Engine) weight(z float64) float64 {
	switch {
	case z <= e.zExit:
		return 0
	case z >= e.zEntry:
		return math.Min(1, (z-e.zEntry)/e.zEntry+0.5)
	default:
		return math.Max(0, (z-e.zExit)/(e.zEntry-e.zExit)) * partialZoneCap
	}
}

// RealizedVol returns the standard deviation of log returns over prices,
// floored at volFloor. Fewer than three prices yield 0.
func RealizedVol(prices []float64) float64 {
	if len(prices) < 3 {
		return 0
	}
	rets := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		rets = append(rets, math.Log(prices[i]+1e-9)-math.Log(prices[i-1]+1e-9))
	}
	sd := stdDev(rets)
	if sd < volFloor {
		return volFloor
	}
	return sd
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdDev returns the population standard deviation.
func stdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var variance float64
	for _, x := range xs {
		d := x - m
		variance += d * d
	}
	variance /= float64(len(xs))
	return math.Sqrt(variance)
}
