package domain

// Tick represents a single timestamped trade observation.
// Ticks are externally supplied and immutable; timestamps are Unix
// milliseconds and must be non-decreasing within one stream.
type Tick struct {
	Timestamp int64   // Unix milliseconds
	Price     float64 // Must be positive
	Volume    float64 // Must be non-negative
	Symbol    string  // Trading symbol (e.g., "BTCUSDT")
}
