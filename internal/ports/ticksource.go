package ports

import (
	"context"

	"tickbacktest/internal/domain"
)

// TickSource supplies a sequence of ticks one at a time. The engine
// assumes non-decreasing timestamps within one stream and performs no
// file parsing itself; parsing lives behind this interface.
// Next returns ErrSourceExhausted when the stream ends.
type TickSource interface {
	Next(ctx context.Context) (*domain.Tick, error)
}
