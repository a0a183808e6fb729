package strategy

import (
	"context"
	"fmt"
	"math"

	"tickbacktest/internal/domain"
	"tickbacktest/internal/indicators"
	"tickbacktest/internal/pipeline"
	"tickbacktest/internal/ports"
)

// MACrossoverConfig holds configuration for the moving-average
// crossover strategy.
type MACrossoverConfig struct {
	FastPeriod        int     // Fast SMA period (e.g., 8)
	SlowPeriod        int     // Slow SMA period (e.g., 21)
	MinSeparationPct  float64 // Minimum |fast-slow|/slow separation in percent
	MinBarsSinceCross int     // Minimum bars between acted-on crosses
	PositionSize      float64 // Quantity per entry

	// Volume confirmation requires the signal candle's volume to
	// exceed VolumeSurgeThreshold times the average volume of the
	// preceding VolumeAvgPeriod candles. Applies to entries only.
	UseVolumeConfirmation bool
	VolumeSurgeThreshold  float64
	VolumeAvgPeriod       int
}

// MACrossover trades fast/slow SMA crossovers, suppressing whipsaw
// signals with a minimum separation gate and a minimum bar count since
// the previous cross.
type MACrossover struct {
	*core
	config MACrossoverConfig
	fastMA *indicators.MovingAverage
	slowMA *indicators.MovingAverage

	lastDiff     float64
	hasLastDiff  bool
	barCount     int
	lastCrossBar int
}

// NewMACrossover validates the configuration and creates a
// moving-average crossover strategy instance.
func NewMACrossover(cfg MACrossoverConfig, symbol string, initialCash float64, logger ports.Logger) (*MACrossover, error) {
	if cfg.FastPeriod < 1 || cfg.SlowPeriod < 1 {
		return nil, fmt.Errorf("%w: MA periods must be >= 1", ports.ErrConfiguration)
	}
	if cfg.FastPeriod >= cfg.SlowPeriod {
		return nil, fmt.Errorf("%w: fast MA period must be less than slow MA period", ports.ErrConfiguration)
	}
	if cfg.MinSeparationPct < 0 {
		return nil, fmt.Errorf("%w: minimum separation must be non-negative, got %v", ports.ErrConfiguration, cfg.MinSeparationPct)
	}
	if cfg.MinBarsSinceCross < 0 {
		return nil, fmt.Errorf("%w: minimum bars since cross must be non-negative, got %d", ports.ErrConfiguration, cfg.MinBarsSinceCross)
	}
	if cfg.PositionSize <= 0 {
		return nil, fmt.Errorf("%w: position size must be positive, got %v", ports.ErrConfiguration, cfg.PositionSize)
	}
	if cfg.UseVolumeConfirmation {
		if cfg.VolumeSurgeThreshold <= 0 {
			return nil, fmt.Errorf("%w: volume surge threshold must be positive, got %v", ports.ErrConfiguration, cfg.VolumeSurgeThreshold)
		}
		if cfg.VolumeAvgPeriod < 1 {
			return nil, fmt.Errorf("%w: volume average period must be >= 1, got %d", ports.ErrConfiguration, cfg.VolumeAvgPeriod)
		}
	}

	need := cfg.SlowPeriod
	if cfg.UseVolumeConfirmation && cfg.VolumeAvgPeriod+1 > need {
		need = cfg.VolumeAvgPeriod + 1
	}

	c, err := newCore("MACrossover", symbol, initialCash, need*3, logger)
	if err != nil {
		return nil, err
	}

	return &MACrossover{
		core:   c,
		config: cfg,
		fastMA: indicators.NewMovingAverage(indicators.MovingAverageConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: cfg.FastPeriod},
			Type:            indicators.SimpleMovingAverage,
		}),
		slowMA: indicators.NewMovingAverage(indicators.MovingAverageConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: cfg.SlowPeriod},
			Type:            indicators.SimpleMovingAverage,
		}),
		lastCrossBar: math.MinInt32,
	}, nil
}

// OnCandle implements Strategy.
func (m *MACrossover) OnCandle(ctx context.Context, candle *domain.Candle) (*pipeline.Result, error) {
	m.record(candle)
	m.barCount++

	fast, err := m.fastMA.Calculate(ctx, m.history())
	if err != nil {
		return nil, nil
	}
	slow, err := m.slowMA.Calculate(ctx, m.history())
	if err != nil {
		return nil, nil
	}
	m.setIndicator("FastMA", fast)
	m.setIndicator("SlowMA", slow)

	diff := fast - slow
	if diff == 0 {
		// On the line; keep the previous regime until it resolves.
		return nil, nil
	}

	bullishCross := m.hasLastDiff && m.lastDiff < 0 && diff > 0
	bearishCross := m.hasLastDiff && m.lastDiff > 0 && diff < 0
	m.lastDiff = diff
	m.hasLastDiff = true

	if !bullishCross && !bearishCross {
		return nil, nil
	}

	// Every cross advances the whipsaw clock, acted on or not.
	barsSince := m.barCount - m.lastCrossBar
	m.lastCrossBar = m.barCount

	if barsSince < m.config.MinBarsSinceCross {
		m.logger.Debug(ctx, "Cross suppressed by bar gate", map[string]interface{}{
			"barsSince": barsSince, "required": m.config.MinBarsSinceCross,
		})
		return nil, nil
	}

	separation := math.Abs(diff) / slow * 100
	if separation < m.config.MinSeparationPct {
		m.logger.Debug(ctx, "Cross suppressed by separation gate", map[string]interface{}{
			"separation": separation, "required": m.config.MinSeparationPct,
		})
		return nil, nil
	}

	if pos := m.OpenPosition(); pos != nil {
		if bearishCross && pos.Side == domain.Long {
			return m.submit(ctx, &domain.ProposedTrade{
				Side:      pos.Side.Opposite(),
				Price:     candle.Close,
				Quantity:  pos.Quantity,
				Timestamp: candle.OpenTime,
			}, nil), nil
		}
		return nil, nil
	}

	if bullishCross {
		if m.config.UseVolumeConfirmation && !m.volumeConfirmed(candle) {
			m.logger.Debug(ctx, "Entry suppressed, no volume surge", nil)
			return nil, nil
		}
		return m.submit(ctx, &domain.ProposedTrade{
			Side:      domain.Long,
			Price:     candle.Close,
			Quantity:  m.config.PositionSize,
			Timestamp: candle.OpenTime,
		}, nil), nil
	}

	return nil, nil
}

// volumeConfirmed reports whether the signal candle's volume exceeds
// the surge threshold over the trailing average volume. The average
// excludes the signal candle itself.
func (m *MACrossover) volumeConfirmed(candle *domain.Candle) bool {
	hist := m.history()
	// The signal candle is the last element of the history.
	prior := hist[:len(hist)-1]
	if len(prior) < m.config.VolumeAvgPeriod {
		return false
	}

	total := 0.0
	for _, c := range prior[len(prior)-m.config.VolumeAvgPeriod:] {
		total += c.Volume
	}
	avg := total / float64(m.config.VolumeAvgPeriod)
	if avg == 0 {
		return false
	}
	return candle.Volume > m.config.VolumeSurgeThreshold*avg
}
