package sim

import "time"

// Side is the direction of a spot trade.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Trade is one executed fill. The portfolio's trade log is append-only and
// ordered by execution, which matches bar order during a backtest.
type Trade struct {
	ID     string
	Time   time.Time
	Symbol string
	Side   Side
	Amount float64 // base-currency quantity, always > 0
	Price  float64
	Fee    float64 // quote-currency fee charged on notional
}

// Notional returns the quote-currency value of the fill before fees.
func (t Trade) Notional() float64 {
	return t.Amount * t.Price
}
