// Package sim implements the simulated spot ledger used by backtests: cash,
// per-symbol positions, fee accounting, and point-in-time state replay.
package sim

import (
	"errors"
	"log/slog"
	"time"

	"github.com/rmorley/gatetrader/internal/id"
)

// Dust is the position epsilon. Amounts at or below Dust are treated as zero
// and cleared from the positions map, both on execution and on replay.
const Dust = 1e-9

var (
	ErrInsufficientCash     = errors.New("insufficient cash")
	ErrInsufficientPosition = errors.New("insufficient position")
	ErrBadTradeParams       = errors.New("amount and price must be positive")
)

// Portfolio owns the cash balance, per-symbol positions, and the append-only
// trade log for a single backtest run. It knows nothing about time
// progression beyond what trades record, and must not be shared across
// concurrent runs.
type Portfolio struct {
	InitialCapital float64
	FeeRate        float64

	Cash      float64
	positions map[string]float64
	Trades    []Trade

	log *slog.Logger
}

// NewPortfolio creates a portfolio with the given starting capital and
// fractional fee rate applied to both buy and sell notional.
func NewPortfolio(initialCapital, feeRate float64) *Portfolio {
	return &Portfolio{
		InitialCapital: initialCapital,
		FeeRate:        feeRate,
		Cash:           initialCapital,
		positions:      make(map[string]float64),
		log:            slog.Default(),
	}
}

// SetLogger replaces the logger used for trade rejection messages.
func (p *Portfolio) SetLogger(l *slog.Logger) {
	if l != nil {
		p.log = l
	}
}

// Position returns the held amount for symbol, zero if flat.
func (p *Portfolio) Position(symbol string) float64 {
	return p.positions[symbol]
}

// Positions returns a copy of the positions map.
func (p *Portfolio) Positions() map[string]float64 {
	out := make(map[string]float64, len(p.positions))
	for s, a := range p.positions {
		out[s] = a
	}
	return out
}

// ExecuteTrade attempts one fill and reports success. A rejected trade
// (insufficient cash or position) leaves the portfolio byte-for-byte
// unchanged and appends nothing to the trade log; rejection is expected
// under normal operation and is logged, not escalated.
func (p *Portfolio) ExecuteTrade(ts time.Time, symbol string, side Side, amount, price float64) bool {
	if err := p.executeTrade(ts, symbol, side, amount, price); err != nil {
		p.log.Warn("trade rejected",
			"symbol", symbol,
			"side", string(side),
			"amount", amount,
			"price", price,
			"reason", err,
		)
		return false
	}
	return true
}

func (p *Portfolio) executeTrade(ts time.Time, symbol string, side Side, amount, price float64) error {
	if amount <= 0 || price <= 0 {
		return ErrBadTradeParams
	}

	cost := amount * price
	fee := cost * p.FeeRate

	switch side {
	case Buy:
		if p.Cash < cost+fee {
			return ErrInsufficientCash
		}
		p.Cash -= cost + fee
		p.positions[symbol] += amount

	case Sell:
		if p.positions[symbol] < amount {
			return ErrInsufficientPosition
		}
		p.Cash += cost - fee
		p.positions[symbol] -= amount
		if p.positions[symbol] <= Dust {
			delete(p.positions, symbol)
		}

	default:
		return errors.New("unknown trade side " + string(side))
	}

	p.Trades = append(p.Trades, Trade{
		ID:     id.New(),
		Time:   ts,
		Symbol: symbol,
		Side:   side,
		Amount: amount,
		Price:  price,
		Fee:    fee,
	})
	return nil
}

// TotalValue marks the portfolio to market: cash plus held amounts valued at
// the supplied prices, keyed by symbol. Symbols without a supplied price are
// skipped from the sum.
func (p *Portfolio) TotalValue(prices map[string]float64) float64 {
	total := p.Cash
	for symbol, amount := range p.positions {
		if price, ok := prices[symbol]; ok {
			total += amount * price
		}
	}
	return total
}
