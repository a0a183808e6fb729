package strategy

import (
	"context"
	"fmt"

	"tickbacktest/internal/domain"
	"tickbacktest/internal/indicators"
	"tickbacktest/internal/pipeline"
	"tickbacktest/internal/ports"
)

// StochasticConfig holds configuration for the stochastic oscillator
// strategy.
type StochasticConfig struct {
	KPeriod             int     // Lookback for %K (e.g., 5)
	DPeriod             int     // Smoothing for %D (e.g., 3)
	OversoldThreshold   float64 // Entry level (e.g., 20)
	OverboughtThreshold float64 // Exit level (e.g., 80)
	PositionSize        float64 // Quantity per entry
	ATRPeriod           int     // ATR lookback for the protective stop (e.g., 5)
	ATRMultiplier       float64 // Stop distance in ATR units (e.g., 2)
}

// Stochastic trades %K crossovers. An entry requires %K to cross up
// through the oversold threshold, not merely sit below it; the exit is
// the crossover up through the overbought threshold, or a protective
// stop ATRMultiplier*ATR below the entry for a long.
type Stochastic struct {
	*core
	config StochasticConfig
	stoch  *indicators.Stochastic
	atr    *indicators.ATR

	prevK    float64
	hasPrevK bool
}

// NewStochastic validates the configuration and creates a stochastic
// strategy instance trading the given symbol with the given starting
// cash.
func NewStochastic(cfg StochasticConfig, symbol string, initialCash float64, logger ports.Logger) (*Stochastic, error) {
	if cfg.KPeriod < 1 || cfg.DPeriod < 1 || cfg.ATRPeriod < 1 {
		return nil, fmt.Errorf("%w: stochastic periods must be >= 1", ports.ErrConfiguration)
	}
	if err := validateOscillatorThreshold("oversold threshold", cfg.OversoldThreshold); err != nil {
		return nil, err
	}
	if err := validateOscillatorThreshold("overbought threshold", cfg.OverboughtThreshold); err != nil {
		return nil, err
	}
	if cfg.OversoldThreshold >= cfg.OverboughtThreshold {
		return nil, fmt.Errorf("%w: oversold threshold must be below overbought threshold", ports.ErrConfiguration)
	}
	if cfg.PositionSize <= 0 {
		return nil, fmt.Errorf("%w: position size must be positive, got %v", ports.ErrConfiguration, cfg.PositionSize)
	}
	if cfg.ATRMultiplier <= 0 {
		return nil, fmt.Errorf("%w: ATR multiplier must be positive, got %v", ports.ErrConfiguration, cfg.ATRMultiplier)
	}

	need := cfg.KPeriod + cfg.DPeriod - 1
	if atrNeed := cfg.ATRPeriod + 1; atrNeed > need {
		need = atrNeed
	}

	c, err := newCore("Stochastic", symbol, initialCash, need*3, logger)
	if err != nil {
		return nil, err
	}

	return &Stochastic{
		core:   c,
		config: cfg,
		stoch: indicators.NewStochastic(indicators.StochasticConfig{
			KPeriod: cfg.KPeriod,
			DPeriod: cfg.DPeriod,
		}),
		atr: indicators.NewATR(indicators.ATRConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: cfg.ATRPeriod},
		}),
	}, nil
}

// OnCandle implements Strategy.
func (s *Stochastic) OnCandle(ctx context.Context, candle *domain.Candle) (*pipeline.Result, error) {
	s.record(candle)

	k, d, err := s.stoch.Calculate(ctx, s.history())
	if err != nil {
		// Not enough history yet; no proposal, not an error.
		return nil, nil
	}
	s.setIndicator("%K", k)
	s.setIndicator("%D", d)

	crossedUp := func(threshold float64) bool {
		return s.hasPrevK && s.prevK <= threshold && k > threshold
	}
	defer func() {
		s.prevK = k
		s.hasPrevK = true
	}()

	if pos := s.OpenPosition(); pos != nil {
		// Protective stop first: it fires intrabar at the stop price.
		if atrVal, atrErr := s.atr.Calculate(ctx, s.history()); atrErr == nil {
			s.setIndicator("ATR", atrVal)
			stop := pos.EntryPrice - s.config.ATRMultiplier*atrVal
			if pos.Side == domain.Long && candle.Low <= stop {
				s.logger.Debug(ctx, "Protective stop hit", map[string]interface{}{
					"stop": stop, "low": candle.Low,
				})
				return s.submit(ctx, &domain.ProposedTrade{
					Side:      pos.Side.Opposite(),
					Price:     stop,
					Quantity:  pos.Quantity,
					Timestamp: candle.OpenTime,
				}, nil), nil
			}
		}

		if crossedUp(s.config.OverboughtThreshold) {
			return s.submit(ctx, &domain.ProposedTrade{
				Side:      pos.Side.Opposite(),
				Price:     candle.Close,
				Quantity:  pos.Quantity,
				Timestamp: candle.OpenTime,
			}, nil), nil
		}
		return nil, nil
	}

	if crossedUp(s.config.OversoldThreshold) {
		return s.submit(ctx, &domain.ProposedTrade{
			Side:      domain.Long,
			Price:     candle.Close,
			Quantity:  s.config.PositionSize,
			Timestamp: candle.OpenTime,
		}, nil), nil
	}

	return nil, nil
}
