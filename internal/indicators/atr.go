package indicators

import (
	"context"
	"fmt"
	"math"

	"tickbacktest/internal/domain"
)

// ATRConfig holds configuration for the Average True Range indicator
type ATRConfig struct {
	IndicatorConfig
}

// ATR implements the Average True Range indicator
type ATR struct {
	config ATRConfig
}

// NewATR creates a new Average True Range indicator instance
func NewATR(config ATRConfig) *ATR {
	return &ATR{config: config}
}

// Name returns the name of the indicator
func (a *ATR) Name() string {
	return "ATR"
}

// RequiredDataPoints returns the minimum number of candles needed for calculation
func (a *ATR) RequiredDataPoints() int {
	return a.config.Period + 1
}

// Calculate computes the Average True Range value for the given candles
func (a *ATR) Calculate(ctx context.Context, candles []*domain.Candle) (float64, error) {
	period := a.config.Period
	if len(candles) < period+1 {
		return 0, fmt.Errorf("not enough data points for ATR calculation: need %d, got %d", period+1, len(candles))
	}

	trueRanges := make([]float64, len(candles))

	// First TR is just the high-low range
	trueRanges[0] = candles[0].High - candles[0].Low

	for i := 1; i < len(candles); i++ {
		high := candles[i].High
		low := candles[i].Low
		prevClose := candles[i-1].Close

		// True Range is the greatest of:
		// 1. Current High - Current Low
		// 2. |Current High - Previous Close|
		// 3. |Current Low - Previous Close|
		tr1 := high - low
		tr2 := math.Abs(high - prevClose)
		tr3 := math.Abs(low - prevClose)

		trueRanges[i] = math.Max(tr1, math.Max(tr2, tr3))
	}

	// Wilder's smoothing: simple average of the first 'period' true
	// ranges, then smoothed over the remainder.
	atr := 0.0
	for i := 0; i < period; i++ {
		atr += trueRanges[i]
	}
	atr /= float64(period)

	for i := period; i < len(candles); i++ {
		atr = (atr*float64(period-1) + trueRanges[i]) / float64(period)
	}

	return atr, nil
}
