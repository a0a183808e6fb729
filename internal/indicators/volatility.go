package indicators

import (
	"context"
	"fmt"
	"math"

	"tickbacktest/internal/domain"
)

// RealizedVolatilityConfig holds configuration for the realized
// volatility indicator
type RealizedVolatilityConfig struct {
	IndicatorConfig // Period is the number of returns in the window
}

// RealizedVolatility measures recent price variability as the sample
// standard deviation of simple close-to-close returns. The RSI
// strategy uses it to derive dynamic oversold/overbought levels.
type RealizedVolatility struct {
	BaseIndicator
	config RealizedVolatilityConfig
}

// NewRealizedVolatility creates a new realized volatility indicator instance
func NewRealizedVolatility(config RealizedVolatilityConfig) *RealizedVolatility {
	return &RealizedVolatility{
		BaseIndicator: BaseIndicator{Config: config.IndicatorConfig},
		config:        config,
	}
}

// Name returns the name of the indicator
func (v *RealizedVolatility) Name() string {
	return "RealizedVolatility"
}

// RequiredDataPoints returns the minimum number of candles needed for
// calculation. One extra candle forms the first return.
func (v *RealizedVolatility) RequiredDataPoints() int {
	return v.Config.Period + 1
}

// Calculate computes the standard deviation of the last Period simple
// returns.
func (v *RealizedVolatility) Calculate(ctx context.Context, candles []*domain.Candle) (float64, error) {
	period := v.Config.Period
	if len(candles) < period+1 {
		return 0, fmt.Errorf("not enough data (%d) to calculate realized volatility for window %d", len(candles), period)
	}

	start := len(candles) - period
	returns := make([]float64, 0, period)
	for i := start; i < len(candles); i++ {
		prev := candles[i-1].Close
		if prev == 0 {
			return 0, fmt.Errorf("zero close at index %d, cannot form return", i-1)
		}
		returns = append(returns, candles[i].Close/prev-1)
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	if len(returns) > 1 {
		variance /= float64(len(returns) - 1)
	}

	return math.Sqrt(variance), nil
}
