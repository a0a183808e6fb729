package domain

// Candle represents an OHLCV aggregate over one fixed time bucket.
// A candle is mutable while its bucket is open and immutable once the
// aggregator seals it; a sealed candle's OpenTime is always an exact
// multiple of the bucket length.
type Candle struct {
	OpenTime int64 // Bucket start, Unix milliseconds
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// Clone returns an independent copy of the candle.
func (c *Candle) Clone() *Candle {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
