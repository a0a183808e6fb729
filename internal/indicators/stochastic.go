package indicators

import (
	"context"
	"fmt"

	"tickbacktest/internal/domain"
)

// StochasticConfig holds configuration for the stochastic oscillator
type StochasticConfig struct {
	KPeriod int // Lookback window for the raw %K
	DPeriod int // Smoothing window for %D (SMA of %K)
}

// Stochastic implements the stochastic oscillator. %K locates the
// latest close inside the high/low range of the last KPeriod candles;
// %D is the simple moving average of %K over DPeriod.
type Stochastic struct {
	config StochasticConfig
}

// NewStochastic creates a new stochastic oscillator instance
func NewStochastic(config StochasticConfig) *Stochastic {
	return &Stochastic{config: config}
}

// Name returns the name of the indicator
func (s *Stochastic) Name() string {
	return "Stochastic"
}

// RequiredDataPoints returns the minimum number of candles needed to
// produce %K. %D lags behind during warm-up, averaging whatever %K
// values exist so far.
func (s *Stochastic) RequiredDataPoints() int {
	return s.config.KPeriod
}

// Calculate computes %K and %D at the last candle of the given
// history. %K is available as soon as KPeriod candles exist; until
// KPeriod+DPeriod-1 candles have been seen, %D averages the %K values
// that are defined so far. %K is defined as 0 when the high/low range
// over the window is zero.
func (s *Stochastic) Calculate(ctx context.Context, candles []*domain.Candle) (k, d float64, err error) {
	if len(candles) < s.config.KPeriod {
		return 0, 0, fmt.Errorf("not enough data (%d) to calculate stochastic for k=%d d=%d", len(candles), s.config.KPeriod, s.config.DPeriod)
	}

	windows := s.config.DPeriod
	if avail := len(candles) - s.config.KPeriod + 1; avail < windows {
		windows = avail
	}

	// %D averages the %K values of the last windows.
	sum := 0.0
	for j := 0; j < windows; j++ {
		end := len(candles) - j
		kj := s.rawK(candles[end-s.config.KPeriod : end])
		if j == 0 {
			k = kj
		}
		sum += kj
	}
	d = sum / float64(windows)
	return k, d, nil
}

// rawK computes %K over exactly one window of KPeriod candles.
func (s *Stochastic) rawK(window []*domain.Candle) float64 {
	lowest := window[0].Low
	highest := window[0].High
	for _, c := range window[1:] {
		if c.Low < lowest {
			lowest = c.Low
		}
		if c.High > highest {
			highest = c.High
		}
	}

	rng := highest - lowest
	if rng == 0 {
		return 0
	}
	return 100 * (window[len(window)-1].Close - lowest) / rng
}
