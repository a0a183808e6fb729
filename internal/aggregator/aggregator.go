// Package aggregator folds an irregular tick stream into sealed OHLCV
// candles over fixed-duration time buckets.
package aggregator

import (
	"fmt"

	"tickbacktest/internal/domain"
	"tickbacktest/internal/ports"
)

// Aggregator owns the single in-progress candle and assigns every
// incoming tick to bucket floor(timestamp / bucketMs). Gaps are never
// back-filled: skipping empty buckets seals the old candle and starts
// the new one directly at the incoming tick's bucket.
type Aggregator struct {
	bucketMs int64
	current  *domain.Candle
}

// New creates an aggregator with the given bucket length in
// milliseconds.
func New(bucketMs int64) (*Aggregator, error) {
	if bucketMs <= 0 {
		return nil, fmt.Errorf("%w: bucket length must be positive, got %d", ports.ErrConfiguration, bucketMs)
	}
	return &Aggregator{bucketMs: bucketMs}, nil
}

// BucketLength returns the configured bucket length in milliseconds.
func (a *Aggregator) BucketLength() int64 { return a.bucketMs }

// Ingest absorbs one tick. When the tick starts a new bucket, the
// previous candle is sealed and returned so the caller can evaluate it
// before the tick is visible in the fresh bucket. A tick whose bucket
// precedes the current one is reported as ErrOutOfOrderTick with no
// state change.
func (a *Aggregator) Ingest(tick domain.Tick) (*domain.Candle, error) {
	if tick.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive, got %v", ports.ErrInvalidTick, tick.Price)
	}
	if tick.Volume < 0 {
		return nil, fmt.Errorf("%w: volume must be non-negative, got %v", ports.ErrInvalidTick, tick.Volume)
	}

	bucketStart := (tick.Timestamp / a.bucketMs) * a.bucketMs

	if a.current == nil {
		a.current = newCandle(bucketStart, tick)
		return nil, nil
	}

	switch {
	case bucketStart == a.current.OpenTime:
		a.absorb(tick)
		return nil, nil
	case bucketStart < a.current.OpenTime:
		return nil, fmt.Errorf("%w: tick bucket %d precedes current bucket %d",
			ports.ErrOutOfOrderTick, bucketStart, a.current.OpenTime)
	default:
		sealed := a.current
		a.current = newCandle(bucketStart, tick)
		return sealed, nil
	}
}

// ForceClose seals whatever partial candle exists regardless of bucket
// completeness; used at stream end. The close moment must not precede
// the pending bucket's open: an earlier timestamp cannot seal it and
// returns nil, mirroring the out-of-order rule for ticks. Idempotent:
// a second call with no pending candle returns nil.
func (a *Aggregator) ForceClose(atTimestamp int64) *domain.Candle {
	if a.current == nil || atTimestamp < a.current.OpenTime {
		return nil
	}
	sealed := a.current
	a.current = nil
	return sealed
}

// Current returns a copy of the in-progress candle, or nil when no
// tick has arrived for the current bucket.
func (a *Aggregator) Current() *domain.Candle {
	return a.current.Clone()
}

func (a *Aggregator) absorb(tick domain.Tick) {
	c := a.current
	if tick.Price > c.High {
		c.High = tick.Price
	}
	if tick.Price < c.Low {
		c.Low = tick.Price
	}
	c.Close = tick.Price
	c.Volume += tick.Volume
}

func newCandle(openTime int64, tick domain.Tick) *domain.Candle {
	return &domain.Candle{
		OpenTime: openTime,
		Open:     tick.Price,
		High:     tick.Price,
		Low:      tick.Price,
		Close:    tick.Price,
		Volume:   tick.Volume,
	}
}
