package engine

import (
	"context"
	"testing"

	"tickbacktest/internal/domain"
	"tickbacktest/internal/pipeline"
	"tickbacktest/internal/ports"
	"tickbacktest/internal/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// recordingStrategy captures every candle the engine hands over.
type recordingStrategy struct {
	candles []*domain.Candle
}

func (r *recordingStrategy) Name() string   { return "Recording" }
func (r *recordingStrategy) Symbol() string { return "BTCUSDT" }
func (r *recordingStrategy) OnCandle(ctx context.Context, candle *domain.Candle) (*pipeline.Result, error) {
	r.candles = append(r.candles, candle)
	return nil, nil
}
func (r *recordingStrategy) Indicators() map[string]float64      { return nil }
func (r *recordingStrategy) OpenPosition() *domain.Position      { return nil }
func (r *recordingStrategy) Trades() []*domain.Trade             { return nil }
func (r *recordingStrategy) Equity(markPrice float64) float64    { return 0 }
func (r *recordingStrategy) AddObserver(obs ports.TradeObserver) {}

// sliceSource serves ticks from memory and then reports exhaustion.
type sliceSource struct {
	ticks []domain.Tick
	pos   int
}

func (s *sliceSource) Next(ctx context.Context) (*domain.Tick, error) {
	if s.pos >= len(s.ticks) {
		return nil, ports.ErrSourceExhausted
	}
	t := s.ticks[s.pos]
	s.pos++
	return &t, nil
}

func tick(ts int64, price float64) domain.Tick {
	return domain.Tick{Timestamp: ts, Price: price, Volume: 1, Symbol: "BTCUSDT"}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(1000, nil, &mockLogger{})
	assert.Error(t, err)

	_, err = New(1000, &recordingStrategy{}, nil)
	assert.Error(t, err)

	_, err = New(0, &recordingStrategy{}, &mockLogger{})
	assert.Error(t, err)
}

func TestEngine_SealsOnBucketBoundary(t *testing.T) {
	strat := &recordingStrategy{}
	e, err := New(1000, strat, &mockLogger{})
	require.NoError(t, err)
	ctx := context.Background()

	for _, tk := range []domain.Tick{tick(0, 100), tick(500, 101), tick(999, 99)} {
		res, err := e.ProcessTick(ctx, tk)
		require.NoError(t, err)
		assert.Nil(t, res)
	}
	assert.Empty(t, strat.candles, "open bucket must not reach the strategy")

	_, err = e.ProcessTick(ctx, tick(1000, 102))
	require.NoError(t, err)

	require.Len(t, strat.candles, 1)
	sealed := strat.candles[0]
	assert.Equal(t, int64(0), sealed.OpenTime)
	assert.Equal(t, 100.0, sealed.Open)
	assert.Equal(t, 101.0, sealed.High)
	assert.Equal(t, 99.0, sealed.Low)
	assert.Equal(t, 99.0, sealed.Close)
	assert.Equal(t, 3.0, sealed.Volume)

	assert.Equal(t, int64(4), e.TicksSeen())
	assert.Equal(t, int64(1), e.CandlesSealed())
	assert.Equal(t, 102.0, e.LastPrice())
}

func TestEngine_OutOfOrderTickLeavesStateUnchanged(t *testing.T) {
	strat := &recordingStrategy{}
	e, err := New(1000, strat, &mockLogger{})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = e.ProcessTick(ctx, tick(5000, 100))
	require.NoError(t, err)

	_, err = e.ProcessTick(ctx, tick(4000, 101))
	assert.ErrorIs(t, err, ports.ErrOutOfOrderTick)
	assert.Equal(t, int64(1), e.TicksSeen())
	assert.Equal(t, 100.0, e.LastPrice())
	assert.Empty(t, strat.candles)
}

func TestEngine_ForceCloseFlushesPartialCandle(t *testing.T) {
	strat := &recordingStrategy{}
	e, err := New(1000, strat, &mockLogger{})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = e.ProcessTick(ctx, tick(100, 100))
	require.NoError(t, err)

	_, err = e.ForceClose(ctx, 500)
	require.NoError(t, err)
	require.Len(t, strat.candles, 1)

	// Idempotent: nothing left to seal.
	res, err := e.ForceClose(ctx, 600)
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Len(t, strat.candles, 1)
	assert.Equal(t, int64(1), e.CandlesSealed())
}

func TestEngine_RunDrainsSourceAndForceCloses(t *testing.T) {
	strat := &recordingStrategy{}
	e, err := New(1000, strat, &mockLogger{})
	require.NoError(t, err)

	src := &sliceSource{ticks: []domain.Tick{
		tick(0, 100), tick(999, 101), tick(1000, 102), tick(1500, 103),
	}}
	require.NoError(t, e.Run(context.Background(), src))

	// One sealed at the boundary, one flushed at stream end.
	require.Len(t, strat.candles, 2)
	assert.Equal(t, int64(0), strat.candles[0].OpenTime)
	assert.Equal(t, int64(1000), strat.candles[1].OpenTime)
	assert.Equal(t, 103.0, strat.candles[1].Close)
}

func TestEngine_DrivesRealStrategy(t *testing.T) {
	stoch, err := strategy.NewStochastic(strategy.StochasticConfig{
		KPeriod:             3,
		DPeriod:             2,
		OversoldThreshold:   20,
		OverboughtThreshold: 80,
		PositionSize:        1,
		ATRPeriod:           3,
		ATRMultiplier:       100, // keep the stop out of the way
	}, "BTCUSDT", 10000, &mockLogger{})
	require.NoError(t, err)

	e, err := New(1000, stoch, &mockLogger{})
	require.NoError(t, err)

	// One tick per bucket; closes decline then snap back, producing
	// an oversold recovery entry.
	closes := []float64{100, 90, 80, 70, 85, 95}
	src := &sliceSource{}
	for i, c := range closes {
		src.ticks = append(src.ticks, tick(int64(i)*1000, c))
	}
	require.NoError(t, e.Run(context.Background(), src))

	pos := e.Strategy().OpenPosition()
	require.NotNil(t, pos)
	assert.Equal(t, 85.0, pos.EntryPrice)
	assert.Equal(t, domain.Long, pos.Side)
}
