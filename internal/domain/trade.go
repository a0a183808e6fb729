package domain

// Trade represents a completed round trip: an entry leg and the exit
// that closed it. Trade records are immutable once created and the
// trade history is append-only.
type Trade struct {
	ID         int64  // Assigned by a recorder, zero otherwise
	Symbol     string // Trading symbol (e.g., "BTCUSDT")
	Side       Side   // Side of the entry leg
	EntryPrice float64
	ExitPrice  float64
	Quantity   float64
	EntryTime  int64   // Unix milliseconds
	ExitTime   int64   // Unix milliseconds
	PNL        float64 // (exit-entry)*quantity*sign(side)
	PNLPercent float64 // PNL / (entry*quantity) * 100
}
