package sim

import "time"

// StateAt reconstructs the portfolio's cash and positions as they stood at
// the given instant by replaying every logged trade with Time <= ts from
// initial capital, in log order. It is a pure function of the trade log:
// calling it twice with the same inputs yields identical results, and it
// never touches the live portfolio state.
func (p *Portfolio) StateAt(ts time.Time) (cash float64, positions map[string]float64) {
	cash = p.InitialCapital
	positions = make(map[string]float64)

	for _, t := range p.Trades {
		if t.Time.After(ts) {
			continue
		}

		cost := t.Amount * t.Price
		switch t.Side {
		case Buy:
			cash -= cost + t.Fee
			positions[t.Symbol] += t.Amount
		case Sell:
			cash += cost - t.Fee
			positions[t.Symbol] -= t.Amount
		}
	}

	// Clear float residue so a fully-liquidated symbol reads as flat.
	for symbol, amount := range positions {
		if amount <= Dust {
			delete(positions, symbol)
		}
	}
	return cash, positions
}

// TradesBetween counts logged trades with from <= Time <= to, used by the
// periodized report.
func (p *Portfolio) TradesBetween(from, to time.Time) int {
	n := 0
	for _, t := range p.Trades {
		if !t.Time.Before(from) && !t.Time.After(to) {
			n++
		}
	}
	return n
}
