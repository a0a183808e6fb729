package ports

import (
	"context"

	"tickbacktest/internal/domain"
)

// TradeRepository defines the interface for recording and retrieving
// completed trades. It is a write-mostly reporting sink: the engine
// never reads its own state back from it.
type TradeRepository interface {
	// InsertTrade saves a completed trade record and returns its assigned ID.
	InsertTrade(ctx context.Context, trade *domain.Trade) (int64, error)
	// FindBySymbol retrieves the most recent trades for a given symbol, up to a limit.
	FindBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Trade, error)
	// TotalPNL sums the recorded PNL for a given symbol.
	TotalPNL(ctx context.Context, symbol string) (float64, error)
}
