// Package strategies defines the strategy callback interface, a constructor
// registry, and the built-in strategies.
package strategies

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rmorley/gatetrader/market"
)

// Trader is the capability surface a strategy uses to request trades while
// processing a bar. The backtest engine and the live runner both implement
// it; strategies never see what is behind it.
type Trader interface {
	// Buy requests a buy at price using the engine's default sizing policy
	// (99% of current cash, reserving a buffer for fees).
	Buy(ts time.Time, symbol string, price float64) bool

	// BuyAmount requests a buy of an explicit base-currency amount.
	BuyAmount(ts time.Time, symbol string, price, amount float64) bool

	// Sell requests liquidation of the full held position; no-op when flat.
	Sell(ts time.Time, symbol string, price float64) bool

	// SellAmount requests a sell of an explicit base-currency amount.
	SellAmount(ts time.Time, symbol string, price, amount float64) bool

	// Position returns the currently held amount for symbol, zero if flat.
	Position(symbol string) float64
}

// Strategy is the causal callback interface consumed by the backtest engine.
// OnKline is invoked once per bar in ascending time order with the bar
// history up to and including the current bar — never anything later. The
// strategy may call back into the Trader any number of times per bar.
type Strategy interface {
	Name() string
	OnKline(ctx context.Context, t Trader, bars []market.Candle) error
}

// LiveStrategy is the optional live-loop capability. The live runner
// type-asserts for it; strategies without it are backtest-only.
type LiveStrategy interface {
	Strategy
	Run(ctx context.Context) error
}

// NopKline is embeddable by live-only strategies that do not react to bars.
type NopKline struct{}

func (NopKline) OnKline(context.Context, Trader, []market.Candle) error { return nil }

// PriceSource supplies the latest traded price for a pair. Implemented by
// the gateio client; live-only strategies poll it.
type PriceSource interface {
	LastPrice(ctx context.Context, pair string) (float64, error)
}

// Notifier delivers a push notification. A nil Notifier means notifications
// are disabled.
type Notifier interface {
	Send(ctx context.Context, title, content string) error
}

// Params carries everything a strategy constructor may need. Options holds
// the strategy-specific settings from the config file; unknown keys are
// ignored, missing keys fall back to per-strategy defaults.
type Params struct {
	Pair     market.Pair
	Options  map[string]string
	Prices   PriceSource // nil in pure backtests
	Notifier Notifier    // nil disables notifications
	Logger   *slog.Logger
}

func (p Params) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Constructor builds a strategy instance from its parameters.
type Constructor func(p Params) (Strategy, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Constructor)
)

// Register adds a constructor under name. Built-ins register themselves at
// package init.
func Register(name string, c Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(strings.TrimSpace(name))] = c
}

// New resolves name in the registry and constructs the strategy.
func New(name string, p Params) (Strategy, error) {
	registryMu.RLock()
	c, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (available: %s)",
			name, strings.Join(List(), ", "))
	}
	return c(p)
}

// List returns the sorted names of all registered strategies.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
