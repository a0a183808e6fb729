package sqlite

import (
	"context"

	"tickbacktest/internal/domain"
	"tickbacktest/internal/ports"
)

// Recorder is a trade observer that persists every closed trade to the
// repository. It never blocks a trade: PreTrade always approves, and a
// failed insert is logged rather than propagated so a reporting
// problem cannot alter the run.
type Recorder struct {
	repo   ports.TradeRepository
	logger ports.Logger
}

// NewRecorder creates a recorder over an open repository.
func NewRecorder(repo ports.TradeRepository, logger ports.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// PreTrade implements ports.TradeObserver.
func (r *Recorder) PreTrade(ctx context.Context, proposed *domain.ProposedTrade, tc *domain.TradeContext) domain.TradeDecision {
	return domain.Approve()
}

// PostTrade implements ports.TradeObserver. Only exits carry a closed
// trade worth recording.
func (r *Recorder) PostTrade(ctx context.Context, event domain.TradeEvent, tc *domain.TradeContext) {
	if event.Kind != domain.EventExit || event.Trade == nil {
		return
	}
	if _, err := r.repo.InsertTrade(ctx, event.Trade); err != nil {
		r.logger.Error(ctx, err, "Failed to record closed trade", map[string]interface{}{
			"symbol": event.Trade.Symbol,
			"pnl":    event.Trade.PNL,
		})
	}
}
