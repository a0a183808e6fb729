package ports

import (
	"context"

	"tickbacktest/internal/domain"
)

// TradeObserver is a pluggable pre-/post-trade hook. Observers are
// invoked in registration order.
//
// PreTrade receives the current proposal (possibly a replacement
// substituted by an earlier observer) and returns a verdict: Approve
// passes it through, Reject drops it and short-circuits the pipeline,
// Modify substitutes a replacement for every subsequent observer and
// for execution.
//
// PostTrade is invoked after a commit on every observer, in the same
// registration order, irrespective of that observer's own PreTrade
// verdict. It is never invoked for a rejected submission.
//
// Both the proposal and the trade context are borrowed for the
// duration of one invocation; observers must not retain them. The
// engine drives each strategy instance on a single logical thread, so
// an observer registered with one instance never sees concurrent
// calls; observers shared across instances must synchronize their own
// state.
type TradeObserver interface {
	PreTrade(ctx context.Context, proposed *domain.ProposedTrade, tc *domain.TradeContext) domain.TradeDecision
	PostTrade(ctx context.Context, event domain.TradeEvent, tc *domain.TradeContext)
}
