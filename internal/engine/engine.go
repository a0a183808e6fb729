// Package engine drives a backtest run: it feeds raw ticks through the
// candle aggregator and hands each sealed candle to the strategy.
package engine

import (
	"context"
	"errors"
	"fmt"

	"tickbacktest/internal/aggregator"
	"tickbacktest/internal/domain"
	"tickbacktest/internal/pipeline"
	"tickbacktest/internal/ports"
	"tickbacktest/internal/strategy"
)

// Engine binds one aggregator to one strategy instance. Ticks enter,
// sealed candles flow to the strategy, and pipeline results from the
// strategy are collected for the final report.
type Engine struct {
	agg      *aggregator.Aggregator
	strategy strategy.Strategy
	logger   ports.Logger

	ticksSeen     int64
	candlesSealed int64
	lastPrice     float64
}

// New creates an engine over the given bucket length and strategy.
func New(bucketMs int64, strat strategy.Strategy, logger ports.Logger) (*Engine, error) {
	if strat == nil {
		return nil, fmt.Errorf("%w: strategy is required for engine", ports.ErrConfiguration)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger is required for engine", ports.ErrConfiguration)
	}
	agg, err := aggregator.New(bucketMs)
	if err != nil {
		return nil, err
	}
	return &Engine{agg: agg, strategy: strat, logger: logger}, nil
}

// ProcessTick ingests one tick. When the tick advances the aggregator
// past a bucket boundary the sealed candle is evaluated by the
// strategy, and that evaluation's pipeline result (if any) is
// returned. A rejected tick leaves all state unchanged.
func (e *Engine) ProcessTick(ctx context.Context, tick domain.Tick) (*pipeline.Result, error) {
	sealed, err := e.agg.Ingest(tick)
	if err != nil {
		return nil, err
	}
	e.ticksSeen++
	e.lastPrice = tick.Price

	if sealed == nil {
		return nil, nil
	}
	return e.evaluate(ctx, sealed)
}

// ForceClose seals the partially built candle, if any, and runs the
// strategy over it. Safe to call more than once; later calls are
// no-ops.
func (e *Engine) ForceClose(ctx context.Context, atTimestamp int64) (*pipeline.Result, error) {
	sealed := e.agg.ForceClose(atTimestamp)
	if sealed == nil {
		return nil, nil
	}
	return e.evaluate(ctx, sealed)
}

func (e *Engine) evaluate(ctx context.Context, candle *domain.Candle) (*pipeline.Result, error) {
	e.candlesSealed++
	res, err := e.strategy.OnCandle(ctx, candle)
	if err != nil {
		return nil, fmt.Errorf("strategy %s failed on candle at %d: %w", e.strategy.Name(), candle.OpenTime, err)
	}
	if res != nil && res.Executed() {
		e.logger.Info(ctx, "Trade executed", map[string]interface{}{
			"strategy": e.strategy.Name(),
			"kind":     res.Event.Kind,
			"candle":   candle.OpenTime,
		})
	}
	return res, nil
}

// Strategy returns the driven strategy instance.
func (e *Engine) Strategy() strategy.Strategy { return e.strategy }

// TicksSeen returns the count of accepted ticks.
func (e *Engine) TicksSeen() int64 { return e.ticksSeen }

// CandlesSealed returns the count of candles handed to the strategy.
func (e *Engine) CandlesSealed() int64 { return e.candlesSealed }

// LastPrice returns the price of the most recent accepted tick, used
// to mark any open position at the end of a run.
func (e *Engine) LastPrice() float64 { return e.lastPrice }

// Run drains a tick source until exhaustion, then force-closes the
// final candle one bucket past the last accepted tick.
func (e *Engine) Run(ctx context.Context, source ports.TickSource) error {
	var lastTs int64
	for {
		tick, err := source.Next(ctx)
		if err != nil {
			if errors.Is(err, ports.ErrSourceExhausted) {
				break
			}
			return err
		}
		if _, err := e.ProcessTick(ctx, *tick); err != nil {
			return err
		}
		lastTs = tick.Timestamp
	}
	if _, err := e.ForceClose(ctx, lastTs+e.agg.BucketLength()); err != nil {
		return err
	}
	return nil
}
