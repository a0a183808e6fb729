// Package pipeline routes every proposed trade through an ordered list
// of observers before it commits to the ledger, then replays the
// committed event to the same observers.
package pipeline

import (
	"context"
	"fmt"

	"tickbacktest/internal/domain"
	"tickbacktest/internal/ledger"
	"tickbacktest/internal/ports"
)

// Status discriminates submission outcomes.
type Status int

const (
	// StatusExecuted means every observer approved (possibly after
	// chained modification) and the trade committed.
	StatusExecuted Status = iota
	// StatusRejected means an observer rejected the proposal; nothing
	// was committed. This is a normal outcome, not an error.
	StatusRejected
)

// Result is the outcome of one submission.
type Result struct {
	Status Status
	Reason string            // Set when Status is StatusRejected
	Event  domain.TradeEvent // Set when Status is StatusExecuted
}

// Executed reports whether the submission committed.
func (r Result) Executed() bool { return r.Status == StatusExecuted }

// Pipeline runs registered observers over each proposed trade in
// registration order. Exactly one submission is in flight per strategy
// instance at a time; the pipeline itself is fully synchronous.
type Pipeline struct {
	observers []ports.TradeObserver
	ledger    *ledger.Ledger
	logger    ports.Logger
}

// New creates a pipeline committing to the given ledger.
func New(l *ledger.Ledger, logger ports.Logger) (*Pipeline, error) {
	if l == nil {
		return nil, fmt.Errorf("%w: ledger is required for pipeline", ports.ErrConfiguration)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger is required for pipeline", ports.ErrConfiguration)
	}
	return &Pipeline{ledger: l, logger: logger}, nil
}

// AddObserver appends an observer to the ordered list. Call it before
// or between submissions, never during one.
func (p *Pipeline) AddObserver(obs ports.TradeObserver) {
	p.observers = append(p.observers, obs)
}

// Submit runs the decision pipeline over the proposal.
//
// For each observer in order, PreTrade is invoked with the current
// proposal. Reject halts immediately: later observers are never
// consulted and PostTrade does not fire for the attempt. Modify
// substitutes its replacement for every subsequent observer and for
// execution; a replacement that is nil, carries a non-positive price
// or quantity, or matches the side of an already-open position is
// treated as an implicit rejection. Approve passes the current
// proposal through unchanged.
//
// Once every observer has approved, the trade commits to the ledger
// and the resulting event is replayed to every observer's PostTrade in
// registration order.
func (p *Pipeline) Submit(ctx context.Context, proposed *domain.ProposedTrade, tc *domain.TradeContext) Result {
	if tc == nil {
		tc = &domain.TradeContext{}
	}

	current := proposed
	for i, obs := range p.observers {
		decision := obs.PreTrade(ctx, current, tc)
		switch decision.Action() {
		case domain.ActionReject:
			p.logger.Debug(ctx, "Trade rejected by observer", map[string]interface{}{
				"observer": i, "reason": decision.Reason(),
			})
			return Result{Status: StatusRejected, Reason: decision.Reason()}
		case domain.ActionModify:
			repl := decision.Replacement()
			if repl == nil || repl.Quantity <= 0 || repl.Price <= 0 {
				reason := fmt.Sprintf("observer %d modified trade to an unexecutable size", i)
				p.logger.Debug(ctx, "Trade rejected via degenerate modification", map[string]interface{}{
					"observer": i,
				})
				return Result{Status: StatusRejected, Reason: reason}
			}
			// A replacement on the open position's side would turn an
			// exit into a second entry, which the ledger refuses.
			if pos := p.ledger.OpenPosition(); pos != nil && repl.Side == pos.Side {
				reason := fmt.Sprintf("observer %d modified trade to the open position's side", i)
				p.logger.Debug(ctx, "Trade rejected via same-side modification", map[string]interface{}{
					"observer": i, "side": string(repl.Side),
				})
				return Result{Status: StatusRejected, Reason: reason}
			}
			current = repl
		case domain.ActionApprove:
			// Proposal passes through unchanged.
		}
	}

	event := p.ledger.Commit(current)
	p.logger.Debug(ctx, "Trade committed", map[string]interface{}{
		"kind": event.Kind.String(), "side": string(current.Side),
		"price": current.Price, "quantity": current.Quantity,
	})

	p.notify(ctx, event, tc)
	return Result{Status: StatusExecuted, Event: event}
}

// notify replays the committed event to every observer in registration
// order, irrespective of whether that observer's PreTrade modified the
// trade.
func (p *Pipeline) notify(ctx context.Context, event domain.TradeEvent, tc *domain.TradeContext) {
	for _, obs := range p.observers {
		obs.PostTrade(ctx, event, tc)
	}
}
