package ports

import "errors"

// Standard application-level errors.
// Components wrap underlying detail with these sentinels so callers can
// branch with errors.Is regardless of where the failure originated.
var (
	// ErrConfiguration indicates invalid parameters at construction
	// time: a non-positive period, an oscillator threshold outside
	// [0,100], a non-positive position size. Construction fails and no
	// instance is produced.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrOutOfOrderTick indicates a tick whose bucket precedes the
	// aggregator's current candle bucket. The tick is not absorbed and
	// aggregator state is unchanged; the caller chooses to skip or
	// abort.
	ErrOutOfOrderTick = errors.New("tick precedes current candle bucket")

	// ErrInvalidTick indicates a tick that violates the data contract
	// (non-positive price, negative volume).
	ErrInvalidTick = errors.New("invalid tick")

	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// Tick source errors.
	ErrSourceExhausted = errors.New("tick source exhausted")
	ErrMalformedRecord = errors.New("malformed tick record")

	// Fetcher/exchange errors.
	ErrExchangeUnavailable = errors.New("exchange API is unavailable")
	ErrRateLimited         = errors.New("API rate limit exceeded")
)
