package indicators

import (
	"context"
	"testing"

	"tickbacktest/internal/domain"
)

func TestStochastic_Calculate(t *testing.T) {
	candles := []*domain.Candle{
		{OpenTime: 0, High: 10, Low: 8, Close: 9},
		{OpenTime: 1000, High: 11, Low: 9, Close: 10},
		{OpenTime: 2000, High: 12, Low: 10, Close: 11},
		{OpenTime: 3000, High: 12, Low: 9, Close: 11},
	}

	stoch := NewStochastic(StochasticConfig{KPeriod: 3, DPeriod: 2})

	k, d, err := stoch.Calculate(context.Background(), candles)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Last window (candles 1..3): low 9, high 12, close 11 -> %K = 66.67.
	if k-66.666667 > 0.0001 || k-66.666667 < -0.0001 {
		t.Errorf("Expected %%K 66.666667, got %f", k)
	}
	// Previous window (candles 0..2): low 8, high 12, close 11 -> 75.
	// %D = (66.67 + 75) / 2 = 70.83.
	if d-70.833333 > 0.0001 || d-70.833333 < -0.0001 {
		t.Errorf("Expected %%D 70.833333, got %f", d)
	}
}

func TestStochastic_ZeroRange(t *testing.T) {
	// Flat prices: high == low over the whole window, %K defined as 0.
	var candles []*domain.Candle
	for i := 0; i < 5; i++ {
		candles = append(candles, &domain.Candle{OpenTime: int64(i) * 1000, High: 50, Low: 50, Close: 50})
	}

	stoch := NewStochastic(StochasticConfig{KPeriod: 3, DPeriod: 2})
	k, d, err := stoch.Calculate(context.Background(), candles)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if k != 0 || d != 0 {
		t.Errorf("Expected %%K and %%D of 0 for zero range, got %f and %f", k, d)
	}
}

func TestStochastic_RisingClosesApproach100(t *testing.T) {
	// Strictly rising closes keep the latest close at the top of the
	// window range, so %K sits at 100.
	var candles []*domain.Candle
	for i := 0; i < 7; i++ {
		price := 100.0 + float64(i)
		candles = append(candles, &domain.Candle{OpenTime: int64(i) * 1000, High: price, Low: price - 0.5, Close: price})
	}

	stoch := NewStochastic(StochasticConfig{KPeriod: 5, DPeriod: 3})
	k, _, err := stoch.Calculate(context.Background(), candles)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if k < 99.0 {
		t.Errorf("Expected %%K near 100 for rising closes, got %f", k)
	}
}

func TestStochastic_KAvailableBeforeDWarmsUp(t *testing.T) {
	stoch := NewStochastic(StochasticConfig{KPeriod: 3, DPeriod: 3})

	candles := []*domain.Candle{
		{OpenTime: 0, High: 10, Low: 8, Close: 9},
		{OpenTime: 1000, High: 11, Low: 9, Close: 10},
		{OpenTime: 2000, High: 12, Low: 10, Close: 11},
	}

	// Exactly KPeriod candles: %K is defined and %D, with only one
	// window to average, equals it.
	k, d, err := stoch.Calculate(context.Background(), candles)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// Window low 8, high 12, close 11 -> %K = 75.
	if k-75.0 > 0.0001 || k-75.0 < -0.0001 {
		t.Errorf("Expected %%K 75, got %f", k)
	}
	if d != k {
		t.Errorf("Expected %%D to equal %%K during warm-up, got %f and %f", d, k)
	}

	// One more candle: %D averages the two windows seen so far.
	candles = append(candles, &domain.Candle{OpenTime: 3000, High: 12, Low: 9, Close: 11})
	k, d, err = stoch.Calculate(context.Background(), candles)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// Last window (candles 1..3): low 9, high 12, close 11 -> 66.67.
	if k-66.666667 > 0.0001 || k-66.666667 < -0.0001 {
		t.Errorf("Expected %%K 66.666667, got %f", k)
	}
	// %D = (66.67 + 75) / 2 = 70.83.
	if d-70.833333 > 0.0001 || d-70.833333 < -0.0001 {
		t.Errorf("Expected %%D 70.833333, got %f", d)
	}

	if got := stoch.RequiredDataPoints(); got != 3 {
		t.Errorf("Expected required data points to match the %%K window, got %d", got)
	}
}

func TestStochastic_InsufficientData(t *testing.T) {
	stoch := NewStochastic(StochasticConfig{KPeriod: 5, DPeriod: 3})
	candles := []*domain.Candle{{High: 10, Low: 9, Close: 9.5}}
	if _, _, err := stoch.Calculate(context.Background(), candles); err == nil {
		t.Error("Expected error for insufficient data")
	}
}
