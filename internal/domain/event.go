package domain

// TradeEventKind discriminates committed trade events.
type TradeEventKind int

const (
	// EventEntry is emitted when a commit opens a position.
	EventEntry TradeEventKind = iota
	// EventExit is emitted when a commit closes the open position.
	EventExit
)

// String returns a human-readable name for the event kind.
func (k TradeEventKind) String() string {
	if k == EventEntry {
		return "entry"
	}
	return "exit"
}

// TradeEvent describes the outcome of a ledger commit and is replayed
// to every observer's PostTrade hook in registration order.
// Position is set for EventEntry (the opened leg), Trade for EventExit
// (the completed round trip).
type TradeEvent struct {
	Kind     TradeEventKind
	Position *Position
	Trade    *Trade
}
