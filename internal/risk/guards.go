// Package risk provides trade-decision observers that enforce risk
// limits on proposed trades before they reach the ledger. Guards are
// injected through the observer pipeline so risk controls never touch
// strategy logic.
package risk

import (
	"context"
	"fmt"
	"sync"

	"tickbacktest/internal/domain"
	"tickbacktest/internal/ports"
)

// RejectionCounter is an explicitly shared accumulator for guards used
// across several strategy instances. The engine guarantees nothing for
// cross-instance state, so the counter carries its own lock.
type RejectionCounter struct {
	mu sync.Mutex
	n  int
}

// Inc records one rejection.
func (c *RejectionCounter) Inc() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

// Count returns the number of rejections recorded so far.
func (c *RejectionCounter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// PriceCapGuard rejects entry proposals above a maximum acceptable
// price. Exits pass through untouched so a position can always be
// closed.
type PriceCapGuard struct {
	maxPrice float64
	rejected *RejectionCounter // Optional
	logger   ports.Logger
}

// NewPriceCapGuard creates a guard rejecting long entries above
// maxPrice. counter may be nil.
func NewPriceCapGuard(maxPrice float64, counter *RejectionCounter, logger ports.Logger) (*PriceCapGuard, error) {
	if maxPrice <= 0 {
		return nil, fmt.Errorf("%w: max price must be positive, got %v", ports.ErrConfiguration, maxPrice)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger is required for price cap guard", ports.ErrConfiguration)
	}
	return &PriceCapGuard{maxPrice: maxPrice, rejected: counter, logger: logger}, nil
}

// PreTrade rejects a long entry priced above the cap.
func (g *PriceCapGuard) PreTrade(ctx context.Context, proposed *domain.ProposedTrade, tc *domain.TradeContext) domain.TradeDecision {
	if proposed.Side == domain.Long && proposed.Price > g.maxPrice {
		if g.rejected != nil {
			g.rejected.Inc()
		}
		g.logger.Info(ctx, "Price cap guard rejected entry", map[string]interface{}{
			"price": proposed.Price, "maxPrice": g.maxPrice,
		})
		return domain.Reject(fmt.Sprintf("price %.2f exceeds maximum allowed %.2f", proposed.Price, g.maxPrice))
	}
	return domain.Approve()
}

// PostTrade is a no-op for the price cap guard.
func (g *PriceCapGuard) PostTrade(ctx context.Context, event domain.TradeEvent, tc *domain.TradeContext) {
}

// QuantityCapGuard caps the quantity of any proposal at a maximum
// position size by substituting a reduced replacement.
type QuantityCapGuard struct {
	maxQuantity float64
	logger      ports.Logger
}

// NewQuantityCapGuard creates a guard that trims oversized proposals.
func NewQuantityCapGuard(maxQuantity float64, logger ports.Logger) (*QuantityCapGuard, error) {
	if maxQuantity <= 0 {
		return nil, fmt.Errorf("%w: max quantity must be positive, got %v", ports.ErrConfiguration, maxQuantity)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger is required for quantity cap guard", ports.ErrConfiguration)
	}
	return &QuantityCapGuard{maxQuantity: maxQuantity, logger: logger}, nil
}

// PreTrade substitutes a capped replacement when the proposal exceeds
// the maximum size.
func (g *QuantityCapGuard) PreTrade(ctx context.Context, proposed *domain.ProposedTrade, tc *domain.TradeContext) domain.TradeDecision {
	if proposed.Quantity <= g.maxQuantity {
		return domain.Approve()
	}
	repl := proposed.Clone()
	repl.Quantity = g.maxQuantity
	g.logger.Info(ctx, "Quantity cap guard trimmed proposal", map[string]interface{}{
		"requested": proposed.Quantity, "capped": g.maxQuantity,
	})
	return domain.Modify(repl)
}

// PostTrade is a no-op for the quantity cap guard.
func (g *QuantityCapGuard) PostTrade(ctx context.Context, event domain.TradeEvent, tc *domain.TradeContext) {
}
