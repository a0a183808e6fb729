package strategy

import (
	"context"
	"fmt"

	"tickbacktest/internal/domain"
	"tickbacktest/internal/indicators"
	"tickbacktest/internal/pipeline"
	"tickbacktest/internal/ports"
)

// RSIConfig holds configuration for the RSI strategy.
type RSIConfig struct {
	Period       int     // RSI lookback (e.g., 14)
	PositionSize float64 // Quantity per entry

	// Fixed thresholds, used when UseDynamicLevels is false.
	Oversold   float64 // e.g., 30
	Overbought float64 // e.g., 70

	// Dynamic levels derive the thresholds each candle from realized
	// volatility over VolatilityWindow, mapped linearly into the
	// ranges below. Higher relative volatility pushes both levels
	// outward, demanding stronger extremes before signalling.
	UseDynamicLevels bool
	VolatilityWindow int
	OversoldMin      float64
	OversoldMax      float64
	OverboughtMin    float64
	OverboughtMax    float64
}

// RSI trades Wilder RSI crossovers: a buy on the upward crossover
// through the oversold level, a sell on the downward crossover through
// the overbought level. Every submission carries an RSIContext with
// the RSI value and the levels in force at the signal candle.
type RSI struct {
	*core
	config RSIConfig
	rsi    *indicators.RSI
	vol    *indicators.RealizedVolatility

	prevRSI    float64
	hasPrevRSI bool

	// Rolling realized-volatility window used to normalize the
	// current reading for the dynamic level mapping.
	volWindow []float64
}

// NewRSI validates the configuration and creates an RSI strategy
// instance.
func NewRSI(cfg RSIConfig, symbol string, initialCash float64, logger ports.Logger) (*RSI, error) {
	if cfg.Period < 1 {
		return nil, fmt.Errorf("%w: RSI period must be >= 1, got %d", ports.ErrConfiguration, cfg.Period)
	}
	if cfg.PositionSize <= 0 {
		return nil, fmt.Errorf("%w: position size must be positive, got %v", ports.ErrConfiguration, cfg.PositionSize)
	}

	var vol *indicators.RealizedVolatility
	if cfg.UseDynamicLevels {
		if cfg.VolatilityWindow < 1 {
			return nil, fmt.Errorf("%w: volatility window must be >= 1, got %d", ports.ErrConfiguration, cfg.VolatilityWindow)
		}
		for name, v := range map[string]float64{
			"oversold min":   cfg.OversoldMin,
			"oversold max":   cfg.OversoldMax,
			"overbought min": cfg.OverboughtMin,
			"overbought max": cfg.OverboughtMax,
		} {
			if err := validateOscillatorThreshold(name, v); err != nil {
				return nil, err
			}
		}
		if cfg.OversoldMin > cfg.OversoldMax || cfg.OverboughtMin > cfg.OverboughtMax {
			return nil, fmt.Errorf("%w: dynamic level ranges must satisfy min <= max", ports.ErrConfiguration)
		}
		if cfg.OversoldMax >= cfg.OverboughtMin {
			return nil, fmt.Errorf("%w: oversold range must sit below overbought range", ports.ErrConfiguration)
		}
		vol = indicators.NewRealizedVolatility(indicators.RealizedVolatilityConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: cfg.VolatilityWindow},
		})
	} else {
		if err := validateOscillatorThreshold("oversold threshold", cfg.Oversold); err != nil {
			return nil, err
		}
		if err := validateOscillatorThreshold("overbought threshold", cfg.Overbought); err != nil {
			return nil, err
		}
		if cfg.Oversold >= cfg.Overbought {
			return nil, fmt.Errorf("%w: oversold threshold must be below overbought threshold", ports.ErrConfiguration)
		}
	}

	need := cfg.Period + 1
	if cfg.UseDynamicLevels && cfg.VolatilityWindow+1 > need {
		need = cfg.VolatilityWindow + 1
	}

	c, err := newCore("RSI", symbol, initialCash, need*3, logger)
	if err != nil {
		return nil, err
	}

	return &RSI{
		core:   c,
		config: cfg,
		rsi: indicators.NewRSI(indicators.RSIConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: cfg.Period},
		}),
		vol: vol,
	}, nil
}

// OnCandle implements Strategy.
func (r *RSI) OnCandle(ctx context.Context, candle *domain.Candle) (*pipeline.Result, error) {
	r.record(candle)

	value, err := r.rsi.Calculate(ctx, r.history())
	if err != nil {
		return nil, nil // Insufficient history; no proposal.
	}
	r.setIndicator("RSI", value)

	oversold, overbought := r.levels(ctx)
	r.setIndicator("Oversold", oversold)
	r.setIndicator("Overbought", overbought)

	sctx := domain.RSIContext{
		RSIValue:          value,
		DynamicOversold:   oversold,
		DynamicOverbought: overbought,
	}

	crossedUp := r.hasPrevRSI && r.prevRSI <= oversold && value > oversold
	crossedDown := r.hasPrevRSI && r.prevRSI >= overbought && value < overbought
	r.prevRSI = value
	r.hasPrevRSI = true

	if pos := r.OpenPosition(); pos != nil {
		if crossedDown {
			return r.submit(ctx, &domain.ProposedTrade{
				Side:      pos.Side.Opposite(),
				Price:     candle.Close,
				Quantity:  pos.Quantity,
				Timestamp: candle.OpenTime,
			}, sctx), nil
		}
		return nil, nil
	}

	if crossedUp {
		return r.submit(ctx, &domain.ProposedTrade{
			Side:      domain.Long,
			Price:     candle.Close,
			Quantity:  r.config.PositionSize,
			Timestamp: candle.OpenTime,
		}, sctx), nil
	}

	return nil, nil
}

// levels returns the oversold/overbought thresholds in force for the
// current candle.
func (r *RSI) levels(ctx context.Context) (oversold, overbought float64) {
	if !r.config.UseDynamicLevels {
		return r.config.Oversold, r.config.Overbought
	}

	v, err := r.vol.Calculate(ctx, r.history())
	if err != nil {
		// Not enough history for volatility yet: hold the midpoints.
		return (r.config.OversoldMin + r.config.OversoldMax) / 2,
			(r.config.OverboughtMin + r.config.OverboughtMax) / 2
	}

	r.volWindow = append(r.volWindow, v)
	if len(r.volWindow) > r.config.VolatilityWindow {
		r.volWindow = r.volWindow[1:]
	}

	// Normalize the reading against the recent volatility range.
	minV, maxV := r.volWindow[0], r.volWindow[0]
	for _, w := range r.volWindow[1:] {
		if w < minV {
			minV = w
		}
		if w > maxV {
			maxV = w
		}
	}
	norm := 0.5
	if maxV > minV {
		norm = (v - minV) / (maxV - minV)
	}

	// High relative volatility pushes both levels outward.
	oversold = r.config.OversoldMax - norm*(r.config.OversoldMax-r.config.OversoldMin)
	overbought = r.config.OverboughtMin + norm*(r.config.OverboughtMax-r.config.OverboughtMin)
	return oversold, overbought
}
