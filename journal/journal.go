// Package journal persists backtest artifacts: executed fills and equity
// snapshots, with SQLite and CSV backends.
package journal

import "time"

// Fill is one executed spot trade as recorded by the simulation ledger.
type Fill struct {
	ID     string // ULID, sorts by issue order
	Pair   string
	Symbol string // base currency actually traded
	Side   string // "buy" or "sell"
	Amount float64
	Price  float64
	Fee    float64
	Time   time.Time
}

// EquitySnapshot is a mark-to-market valuation at one point in time,
// typically a period boundary.
type EquitySnapshot struct {
	Time          time.Time
	Pair          string
	Cash          float64
	HoldingsValue float64
	TotalValue    float64
}

type Journal interface {
	RecordFill(Fill) error
	RecordEquity(EquitySnapshot) error
	Close() error
}
