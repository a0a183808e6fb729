package domain

// Position represents the single open position held by a strategy
// instance. At most one position is open at a time: no pyramiding,
// no netting.
type Position struct {
	Symbol     string
	Side       Side
	EntryPrice float64
	Quantity   float64
	EntryTime  int64 // Unix milliseconds
}

// UnrealizedPNL returns the profit or loss the position would realize
// if closed at markPrice.
func (p *Position) UnrealizedPNL(markPrice float64) float64 {
	return (markPrice - p.EntryPrice) * p.Quantity * p.Side.Sign()
}

// MarketValue returns the signed market value of the position at
// markPrice: positive for a long holding, negative for the liability
// of an open short.
func (p *Position) MarketValue(markPrice float64) float64 {
	return p.Side.Sign() * p.Quantity * markPrice
}
