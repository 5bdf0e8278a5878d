// Package backtest drives a strategy over historical bars against a
// simulated ledger and produces the run report.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rmorley/gatetrader/journal"
	"github.com/rmorley/gatetrader/market"
	"github.com/rmorley/gatetrader/sim"
	"github.com/rmorley/gatetrader/strategies"
)

// ErrNoData signals that the bar source returned nothing for the requested
// window; the run aborts before the loop starts.
var ErrNoData = errors.New("no historical data available")

// Config holds the per-run engine parameters.
type Config struct {
	Pair           market.Pair
	InitialCapital float64
	FeeRate        float64

	// Journal, when non-nil, receives every executed fill plus one equity
	// snapshot per report period. Reporting itself reads only the in-memory
	// trade log.
	Journal journal.Journal

	Logger *slog.Logger
}

// Engine replays one pair's bar series through a single strategy, one bar at
// a time. Each engine owns its own portfolio; engines must never share
// state; backtesting multiple pairs means multiple independent engines.
type Engine struct {
	cfg       Config
	base      string
	bars      []market.Candle
	strategy  strategies.Strategy
	portfolio *sim.Portfolio
	log       *slog.Logger
}

// Compile-time check: the engine is the Trader handed to strategies.
var _ strategies.Trader = (*Engine)(nil)

// NewEngine validates the configuration and builds an engine over the given
// bar series. Bars must be in strictly ascending time order, as delivered by
// the gateio client or the feed package.
func NewEngine(cfg Config, bars []market.Candle, strat strategies.Strategy) (*Engine, error) {
	base, _, err := market.SplitPair(cfg.Pair.String())
	if err != nil {
		return nil, err
	}
	if cfg.InitialCapital <= 0 {
		return nil, fmt.Errorf("initial capital must be positive, got %v", cfg.InitialCapital)
	}
	if cfg.FeeRate < 0 || cfg.FeeRate >= 1 {
		return nil, fmt.Errorf("fee rate must be in [0,1), got %v", cfg.FeeRate)
	}
	if strat == nil {
		return nil, errors.New("strategy is required")
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	p := sim.NewPortfolio(cfg.InitialCapital, cfg.FeeRate)
	p.SetLogger(log)

	return &Engine{
		cfg:       cfg,
		base:      base,
		bars:      bars,
		strategy:  strat,
		portfolio: p,
		log:       log,
	}, nil
}

// Portfolio exposes the ledger, read-only by convention once Run returns.
func (e *Engine) Portfolio() *sim.Portfolio { return e.portfolio }

// Run executes the backtest: per bar, in ascending order, the strategy is
// handed the causal prefix — every bar up to and including the current one,
// never anything later — and may call Buy/Sell any number of times before
// the next bar is considered. Cancellation is cooperative: a done context
// stops the loop between bars, never mid-trade.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	if len(e.bars) == 0 {
		return nil, ErrNoData
	}

	e.log.Info("backtest starting",
		"pair", e.cfg.Pair.String(),
		"bars", len(e.bars),
		"initial_capital", e.cfg.InitialCapital,
		"fee_rate", e.cfg.FeeRate,
		"strategy", e.strategy.Name(),
	)

	for i := range e.bars {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.strategy.OnKline(ctx, e, e.bars[:i+1]); err != nil {
			return nil, fmt.Errorf("strategy %s on bar %d: %w", e.strategy.Name(), i, err)
		}
	}

	report := e.buildReport()

	if e.cfg.Journal != nil {
		for _, period := range report.Periods {
			snap := journal.EquitySnapshot{
				Time:          period.End,
				Pair:          e.cfg.Pair.String(),
				Cash:          period.EndCash,
				HoldingsValue: period.EndValue - period.EndCash,
				TotalValue:    period.EndValue,
			}
			if err := e.cfg.Journal.RecordEquity(snap); err != nil {
				return nil, fmt.Errorf("record equity: %w", err)
			}
		}
	}

	return report, nil
}

// Buy executes a buy with the default sizing policy: 99% of current cash,
// the remainder left as a buffer against fees.
func (e *Engine) Buy(ts time.Time, symbol string, price float64) bool {
	if price <= 0 {
		return false
	}
	amount := e.portfolio.Cash * 0.99 / price
	return e.BuyAmount(ts, symbol, price, amount)
}

// BuyAmount executes a buy of an explicit base-currency amount.
func (e *Engine) BuyAmount(ts time.Time, symbol string, price, amount float64) bool {
	ok := e.portfolio.ExecuteTrade(ts, symbol, sim.Buy, amount, price)
	if ok {
		e.recordFill()
		e.log.Info("buy filled", "symbol", symbol, "amount", amount, "price", price, "time", ts)
	}
	return ok
}

// Sell liquidates the full held position for symbol; a no-op when flat.
func (e *Engine) Sell(ts time.Time, symbol string, price float64) bool {
	amount := e.portfolio.Position(symbol)
	if amount <= 0 {
		return false
	}
	return e.SellAmount(ts, symbol, price, amount)
}

// SellAmount executes a sell of an explicit base-currency amount.
func (e *Engine) SellAmount(ts time.Time, symbol string, price, amount float64) bool {
	ok := e.portfolio.ExecuteTrade(ts, symbol, sim.Sell, amount, price)
	if ok {
		e.recordFill()
		e.log.Info("sell filled", "symbol", symbol, "amount", amount, "price", price, "time", ts)
	}
	return ok
}

// Position returns the held amount for symbol.
func (e *Engine) Position(symbol string) float64 {
	return e.portfolio.Position(symbol)
}

// recordFill journals the most recent trade from the ledger's log.
func (e *Engine) recordFill() {
	if e.cfg.Journal == nil || len(e.portfolio.Trades) == 0 {
		return
	}
	t := e.portfolio.Trades[len(e.portfolio.Trades)-1]
	err := e.cfg.Journal.RecordFill(journal.Fill{
		ID:     t.ID,
		Pair:   e.cfg.Pair.String(),
		Symbol: t.Symbol,
		Side:   string(t.Side),
		Amount: t.Amount,
		Price:  t.Price,
		Fee:    t.Fee,
		Time:   t.Time,
	})
	if err != nil {
		e.log.Warn("journal fill failed", "err", err)
	}
}
