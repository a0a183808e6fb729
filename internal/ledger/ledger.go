// Package ledger owns the cash balance, the single open position and
// the append-only closed-trade history for one strategy instance.
package ledger

import (
	"fmt"

	"tickbacktest/internal/domain"
	"tickbacktest/internal/ports"
)

// Ledger books approved trades. Exactly one full-size position opens
// or closes per commit: multi-symbol books, partial fills and netting
// are unsupported by contract.
type Ledger struct {
	symbol      string
	initialCash float64
	cash        float64
	position    *domain.Position
	trades      []*domain.Trade
}

// New creates a ledger with the given starting cash.
func New(symbol string, initialCash float64) (*Ledger, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol must not be empty", ports.ErrConfiguration)
	}
	if initialCash <= 0 {
		return nil, fmt.Errorf("%w: initial cash must be positive, got %v", ports.ErrConfiguration, initialCash)
	}
	return &Ledger{symbol: symbol, initialCash: initialCash, cash: initialCash}, nil
}

// Commit books an approved trade. With no open position it opens one
// and returns an entry event; with an open position and an
// opposite-side trade it closes the whole position, realizes the PNL,
// appends an immutable trade record and returns an exit event.
//
// Committing a same-side trade while a position is open violates the
// flat-to-one-position contract and panics: strategies must never
// propose a second entry.
func (l *Ledger) Commit(approved *domain.ProposedTrade) domain.TradeEvent {
	if l.position == nil {
		return l.open(approved)
	}
	if approved.Side != l.position.Side.Opposite() {
		panic(fmt.Sprintf("ledger: %s commit while %s position is open on %s",
			approved.Side, l.position.Side, l.symbol))
	}
	return l.close(approved)
}

func (l *Ledger) open(p *domain.ProposedTrade) domain.TradeEvent {
	pos := &domain.Position{
		Symbol:     l.symbol,
		Side:       p.Side,
		EntryPrice: p.Price,
		Quantity:   p.Quantity,
		EntryTime:  p.Timestamp,
	}
	// A long debits cash by price*quantity; a short credits the
	// proceeds. Either way equity at the entry price is unchanged.
	l.cash -= pos.Side.Sign() * p.Price * p.Quantity
	l.position = pos

	leg := *pos
	return domain.TradeEvent{Kind: domain.EventEntry, Position: &leg}
}

func (l *Ledger) close(p *domain.ProposedTrade) domain.TradeEvent {
	pos := l.position
	// The whole open position closes regardless of the proposal's
	// quantity; partial exits are out of contract.
	pnl := (p.Price - pos.EntryPrice) * pos.Quantity * pos.Side.Sign()
	trade := &domain.Trade{
		Symbol:     l.symbol,
		Side:       pos.Side,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  p.Price,
		Quantity:   pos.Quantity,
		EntryTime:  pos.EntryTime,
		ExitTime:   p.Timestamp,
		PNL:        pnl,
		PNLPercent: pnl / (pos.EntryPrice * pos.Quantity) * 100,
	}

	l.cash += pos.Side.Sign() * p.Price * pos.Quantity
	l.position = nil
	l.trades = append(l.trades, trade)

	return domain.TradeEvent{Kind: domain.EventExit, Trade: trade}
}

// Equity returns cash plus the signed market value of the open
// position at markPrice, or cash alone when flat.
func (l *Ledger) Equity(markPrice float64) float64 {
	if l.position == nil {
		return l.cash
	}
	return l.cash + l.position.MarketValue(markPrice)
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 { return l.cash }

// InitialCash returns the starting balance.
func (l *Ledger) InitialCash() float64 { return l.initialCash }

// OpenPosition returns a copy of the open position, or nil when flat.
func (l *Ledger) OpenPosition() *domain.Position {
	if l.position == nil {
		return nil
	}
	pos := *l.position
	return &pos
}

// Trades returns the closed-trade history. The returned slice is a
// copy; the records themselves are shared and immutable.
func (l *Ledger) Trades() []*domain.Trade {
	out := make([]*domain.Trade, len(l.trades))
	copy(out, l.trades)
	return out
}
