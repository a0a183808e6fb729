package domain

// ProposedTrade is a draft order awaiting pipeline approval. Unlike a
// committed Trade it is mutable: observers may replace it wholesale
// before execution.
type ProposedTrade struct {
	Side      Side
	Price     float64
	Quantity  float64
	Timestamp int64 // Unix milliseconds
}

// Clone returns an independent copy so a modified replacement never
// aliases the strategy's original draft.
func (p *ProposedTrade) Clone() *ProposedTrade {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
