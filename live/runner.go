// Package live runs strategies against the exchange in real time. Each
// trading pair gets its own goroutine with an independent strategy and
// paper ledger; workers share nothing and stop together when the context
// is cancelled.
package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rmorley/gatetrader/market"
	"github.com/rmorley/gatetrader/sim"
	"github.com/rmorley/gatetrader/strategies"
)

// Source supplies recent candles for a pair. Implemented by the gateio
// client.
type Source interface {
	Candlesticks(ctx context.Context, pair string, interval market.Interval, to time.Time, limit int) ([]market.Candle, error)
}

// DefaultWindow is the number of recent bars handed to OnKline per poll.
const DefaultWindow = 200

// Config configures the live runner.
type Config struct {
	Pairs    []market.Pair
	Interval market.Interval
	Poll     time.Duration
	Window   int

	InitialCapital float64
	FeeRate        float64

	Strategy string
	Options  map[string]string

	Source   Source
	Prices   strategies.PriceSource
	Notifier strategies.Notifier
	Logger   *slog.Logger
}

// worker is one pair's strategy plus its paper ledger.
type worker struct {
	pair     market.Pair
	strategy strategies.Strategy
	trader   *paperTrader
}

// Runner drives one strategy instance per configured pair.
type Runner struct {
	cfg     Config
	workers []worker
	log     *slog.Logger
}

// NewRunner validates the configuration and constructs one strategy per
// pair through the registry.
func NewRunner(cfg Config) (*Runner, error) {
	if len(cfg.Pairs) == 0 {
		return nil, fmt.Errorf("at least one pair is required")
	}
	if !cfg.Interval.Valid() {
		return nil, fmt.Errorf("unknown kline interval %q", cfg.Interval)
	}
	if cfg.Source == nil {
		return nil, fmt.Errorf("candle source is required")
	}
	if cfg.InitialCapital <= 0 {
		return nil, fmt.Errorf("initial capital must be positive")
	}
	if cfg.Poll <= 0 {
		cfg.Poll = time.Minute
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	r := &Runner{cfg: cfg, log: log}
	for _, pair := range cfg.Pairs {
		if _, _, err := market.SplitPair(pair.String()); err != nil {
			return nil, err
		}

		plog := log.With("pair", pair.String())
		strat, err := strategies.New(cfg.Strategy, strategies.Params{
			Pair:     pair,
			Options:  cfg.Options,
			Prices:   cfg.Prices,
			Notifier: cfg.Notifier,
			Logger:   plog,
		})
		if err != nil {
			return nil, err
		}

		ledger := sim.NewPortfolio(cfg.InitialCapital, cfg.FeeRate)
		ledger.SetLogger(plog)

		r.workers = append(r.workers, worker{
			pair:     pair,
			strategy: strat,
			trader:   &paperTrader{ledger: ledger, log: plog},
		})
	}
	return r, nil
}

// Run starts one goroutine per pair and blocks until all of them have
// stopped. Cancel the context to stop; the returned error joins any
// per-pair failures.
func (r *Runner) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	errs := make([]error, len(r.workers))

	for i, w := range r.workers {
		wg.Add(1)
		go func(i int, w worker) {
			defer wg.Done()
			errs[i] = r.runWorker(ctx, w)
		}(i, w)
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (r *Runner) runWorker(ctx context.Context, w worker) error {
	log := r.log.With("pair", w.pair.String(), "strategy", w.strategy.Name())

	// Strategies with their own live loop run it directly.
	if ls, ok := w.strategy.(strategies.LiveStrategy); ok {
		log.Info("starting live strategy loop")
		err := ls.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	log.Info("starting kline poll loop", "interval", r.cfg.Interval, "poll", r.cfg.Poll)

	ticker := time.NewTicker(r.cfg.Poll)
	defer ticker.Stop()

	for {
		if err := r.step(ctx, w); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// Transient exchange failures should not kill the loop.
			log.Warn("poll failed", "error", err)
		}

		select {
		case <-ctx.Done():
			log.Info("stopping")
			return nil
		case <-ticker.C:
		}
	}
}

// step fetches the recent bar window and hands it to the strategy.
func (r *Runner) step(ctx context.Context, w worker) error {
	bars, err := r.cfg.Source.Candlesticks(ctx, w.pair.String(), r.cfg.Interval, time.Time{}, r.cfg.Window)
	if err != nil {
		return fmt.Errorf("fetch candles: %w", err)
	}
	if len(bars) == 0 {
		return nil
	}
	return w.strategy.OnKline(ctx, w.trader, bars)
}

// paperTrader implements strategies.Trader against an in-memory ledger.
// Live order routing is out of scope; fills are simulated and logged so a
// running strategy can be observed without risking funds.
type paperTrader struct {
	ledger *sim.Portfolio
	log    *slog.Logger
}

var _ strategies.Trader = (*paperTrader)(nil)

func (t *paperTrader) Buy(ts time.Time, symbol string, price float64) bool {
	if price <= 0 {
		return false
	}
	amount := t.ledger.Cash * 0.99 / price
	return t.BuyAmount(ts, symbol, price, amount)
}

func (t *paperTrader) BuyAmount(ts time.Time, symbol string, price, amount float64) bool {
	ok := t.ledger.ExecuteTrade(ts, symbol, sim.Buy, amount, price)
	if ok {
		t.log.Info("paper buy filled", "symbol", symbol, "amount", amount, "price", price)
	}
	return ok
}

func (t *paperTrader) Sell(ts time.Time, symbol string, price float64) bool {
	amount := t.ledger.Position(symbol)
	if amount <= 0 {
		return false
	}
	return t.SellAmount(ts, symbol, price, amount)
}

func (t *paperTrader) SellAmount(ts time.Time, symbol string, price, amount float64) bool {
	ok := t.ledger.ExecuteTrade(ts, symbol, sim.Sell, amount, price)
	if ok {
		t.log.Info("paper sell filled", "symbol", symbol, "amount", amount, "price", price)
	}
	return ok
}

func (t *paperTrader) Position(symbol string) float64 {
	return t.ledger.Position(symbol)
}
