package domain

// Side represents the direction of a position or proposed trade.
type Side string

const (
	Long  Side = "LONG"
	Short Side = "SHORT"
)

// Sign returns +1 for Long and -1 for Short, the multiplier used in
// PNL and equity arithmetic.
func (s Side) Sign() float64 {
	if s == Short {
		return -1
	}
	return 1
}

// Opposite returns the closing side for a position opened on s.
func (s Side) Opposite() Side {
	if s == Long {
		return Short
	}
	return Long
}

// IsValid reports whether s is one of the two known sides.
func (s Side) IsValid() bool {
	return s == Long || s == Short
}
