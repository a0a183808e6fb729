// Package strategy contains the indicator-driven strategy executors.
// Each executor consumes sealed candles, evaluates its entry/exit
// rules and routes any proposed trade through the decision pipeline to
// its own ledger. One instance owns its indicator state, its candle
// history and its single open position; instances share nothing.
package strategy

import (
	"context"
	"fmt"

	"tickbacktest/internal/domain"
	"tickbacktest/internal/ledger"
	"tickbacktest/internal/pipeline"
	"tickbacktest/internal/ports"
)

// Strategy is the capability set shared by all strategy variants.
type Strategy interface {
	// Name returns the name of the strategy.
	Name() string

	// Symbol returns the traded symbol.
	Symbol() string

	// OnCandle absorbs one sealed candle, updates indicator state and
	// evaluates the entry/exit rules. It returns the pipeline result
	// when a trade was submitted and nil when the candle produced no
	// proposal (including when indicators lack history).
	OnCandle(ctx context.Context, candle *domain.Candle) (*pipeline.Result, error)

	// Indicators returns a snapshot of the most recent indicator
	// values, keyed by indicator name.
	Indicators() map[string]float64

	// OpenPosition returns a copy of the open position, or nil.
	OpenPosition() *domain.Position

	// Trades returns the closed-trade history.
	Trades() []*domain.Trade

	// Equity returns cash plus the open position's value at markPrice.
	Equity(markPrice float64) float64

	// AddObserver appends a trade observer to the decision pipeline.
	AddObserver(obs ports.TradeObserver)
}

// core carries the plumbing every variant shares: bounded candle
// history, the ledger, the decision pipeline and the indicator
// snapshot.
type core struct {
	name       string
	symbol     string
	logger     ports.Logger
	ledger     *ledger.Ledger
	pipeline   *pipeline.Pipeline
	candles    []*domain.Candle
	maxHistory int
	snapshot   map[string]float64
}

// newCore wires a ledger and pipeline for one instance. maxHistory
// bounds the candle window; it must cover the largest indicator
// requirement of the owning variant.
func newCore(name, symbol string, initialCash float64, maxHistory int, logger ports.Logger) (*core, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger is required for strategy", ports.ErrConfiguration)
	}
	if maxHistory < 1 {
		return nil, fmt.Errorf("%w: history bound must be positive, got %d", ports.ErrConfiguration, maxHistory)
	}
	led, err := ledger.New(symbol, initialCash)
	if err != nil {
		return nil, err
	}
	pipe, err := pipeline.New(led, logger)
	if err != nil {
		return nil, err
	}
	return &core{
		name:       name,
		symbol:     symbol,
		logger:     logger,
		ledger:     led,
		pipeline:   pipe,
		maxHistory: maxHistory,
		snapshot:   make(map[string]float64),
	}, nil
}

// record appends a sealed candle and trims the window to the bound.
func (c *core) record(candle *domain.Candle) {
	c.candles = append(c.candles, candle.Clone())
	if len(c.candles) > c.maxHistory {
		// Shift instead of re-slicing so the backing array does not
		// pin every candle ever seen.
		n := copy(c.candles, c.candles[len(c.candles)-c.maxHistory:])
		c.candles = c.candles[:n]
	}
}

// history returns the bounded candle window.
func (c *core) history() []*domain.Candle { return c.candles }

func (c *core) setIndicator(name string, value float64) { c.snapshot[name] = value }

// submit clones the proposal through the decision pipeline.
func (c *core) submit(ctx context.Context, proposed *domain.ProposedTrade, sctx domain.StrategyContext) *pipeline.Result {
	res := c.pipeline.Submit(ctx, proposed, &domain.TradeContext{Strategy: sctx})
	return &res
}

func (c *core) Name() string   { return c.name }
func (c *core) Symbol() string { return c.symbol }

func (c *core) Indicators() map[string]float64 {
	out := make(map[string]float64, len(c.snapshot))
	for k, v := range c.snapshot {
		out[k] = v
	}
	return out
}

func (c *core) OpenPosition() *domain.Position { return c.ledger.OpenPosition() }
func (c *core) Trades() []*domain.Trade        { return c.ledger.Trades() }
func (c *core) Equity(markPrice float64) float64 {
	return c.ledger.Equity(markPrice)
}
func (c *core) InitialCash() float64 { return c.ledger.InitialCash() }

func (c *core) AddObserver(obs ports.TradeObserver) { c.pipeline.AddObserver(obs) }

// validateOscillatorThreshold checks an oscillator level is inside
// [0,100].
func validateOscillatorThreshold(name string, v float64) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("%w: %s must be within [0,100], got %v", ports.ErrConfiguration, name, v)
	}
	return nil
}
