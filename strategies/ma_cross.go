package strategies

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rmorley/gatetrader/indicators"
	"github.com/rmorley/gatetrader/market"
)

func init() {
	Register("ma-cross", NewMACross)
}

// MACrossStrategy trades a single pair on a fast/slow EMA crossover with
// confirmation gates and layered exits.
//
// Entry (all must hold on the same bar):
//   - golden cross: fast EMA crosses above slow EMA
//   - long-term trend up: price above the filter EMA
//   - MACD bullish: macd line above its signal line
//   - RSI below the overbought threshold
//
// Exit, checked in priority order while a position is held:
//  1. fixed stop-loss below the entry price
//  2. trailing stop: armed once price gains trailing_stop_pct over entry,
//     triggered on a callback_pct pullback from the post-entry high
//  3. death cross: fast EMA crosses below slow EMA
//
// One position at a time; sell conditions are evaluated before buy
// conditions within a bar.
type MACrossStrategy struct {
	pair market.Pair
	base string

	shortWindow   int
	longWindow    int
	filterWindow  int
	stopLossPct   float64
	trailingPct   float64
	callbackPct   float64
	rsiOverbought float64

	fast   *indicators.ExponentialMA
	slow   *indicators.ExponentialMA
	filter *indicators.ExponentialMA
	macd   *indicators.MACD
	rsi    *indicators.RSI

	lastSeen time.Time // newest bar already fed to the indicators

	diff     float64 // fast - slow after the latest bar
	prevDiff float64 // fast - slow one bar earlier
	haveDiff bool
	havePrev bool

	entryPrice        float64
	highestSinceEntry float64

	notifier Notifier
	notified bool // at most one push per run
	log      *slog.Logger
}

// NewMACross builds an MACrossStrategy from Params. Options (with defaults):
// short_window 5, long_window 20, filter_window 100, stop_loss_pct 0.02,
// trailing_stop_pct 0.04, trailing_stop_callback_pct 0.01, macd_fast 12,
// macd_slow 26, macd_signal 9, rsi_window 14, rsi_overbought 70.
func NewMACross(p Params) (Strategy, error) {
	base, _, err := market.SplitPair(p.Pair.String())
	if err != nil {
		return nil, err
	}

	short, err := optInt(p.Options, "short_window", 5)
	if err != nil {
		return nil, err
	}
	long, err := optInt(p.Options, "long_window", 20)
	if err != nil {
		return nil, err
	}
	filter, err := optInt(p.Options, "filter_window", 100)
	if err != nil {
		return nil, err
	}
	stopLoss, err := optFloat(p.Options, "stop_loss_pct", 0.02)
	if err != nil {
		return nil, err
	}
	trailing, err := optFloat(p.Options, "trailing_stop_pct", 0.04)
	if err != nil {
		return nil, err
	}
	callback, err := optFloat(p.Options, "trailing_stop_callback_pct", 0.01)
	if err != nil {
		return nil, err
	}
	macdFast, err := optInt(p.Options, "macd_fast", 12)
	if err != nil {
		return nil, err
	}
	macdSlow, err := optInt(p.Options, "macd_slow", 26)
	if err != nil {
		return nil, err
	}
	macdSignal, err := optInt(p.Options, "macd_signal", 9)
	if err != nil {
		return nil, err
	}
	rsiWindow, err := optInt(p.Options, "rsi_window", 14)
	if err != nil {
		return nil, err
	}
	rsiOverbought, err := optFloat(p.Options, "rsi_overbought", 70)
	if err != nil {
		return nil, err
	}

	if short >= long {
		return nil, fmt.Errorf("ma-cross: short_window (%d) must be less than long_window (%d)", short, long)
	}

	return &MACrossStrategy{
		pair:          p.Pair,
		base:          base,
		shortWindow:   short,
		longWindow:    long,
		filterWindow:  filter,
		stopLossPct:   stopLoss,
		trailingPct:   trailing,
		callbackPct:   callback,
		rsiOverbought: rsiOverbought,
		fast:          indicators.NewEMA(short),
		slow:          indicators.NewEMA(long),
		filter:        indicators.NewEMA(filter),
		macd:          indicators.NewMACD(macdFast, macdSlow, macdSignal),
		rsi:           indicators.NewRSI(rsiWindow),
		notifier:      p.Notifier,
		log:           p.logger(),
	}, nil
}

func (s *MACrossStrategy) Name() string { return "ma-cross" }

// OnKline feeds any bars not yet seen into the streaming indicators, then
// evaluates exit and entry rules against the latest bar. bars is the causal
// history up to the current bar; feeding by timestamp makes the update
// incremental whether the caller extends a prefix (backtest) or slides a
// window (live polling).
func (s *MACrossStrategy) OnKline(ctx context.Context, t Trader, bars []market.Candle) error {
	if len(bars) == 0 {
		return nil
	}

	for _, c := range bars {
		if !c.Time.After(s.lastSeen) {
			continue
		}
		s.fast.Update(c)
		s.slow.Update(c)
		s.filter.Update(c)
		s.macd.Update(c)
		s.rsi.Update(c)

		if s.fast.Ready() && s.slow.Ready() {
			s.prevDiff, s.havePrev = s.diff, s.haveDiff
			s.diff, s.haveDiff = s.fast.Value()-s.slow.Value(), true
		}
		s.lastSeen = c.Time
	}

	if !s.ready() {
		return nil
	}

	latest := bars[len(bars)-1]
	price := latest.Close

	// Sell conditions before buy conditions within the same bar.
	if t.Position(s.base) > 0 {
		if price > s.highestSinceEntry {
			s.highestSinceEntry = price
		}

		reason, detail := s.sellReason(price)
		if reason == "" {
			return nil
		}

		s.log.Info("sell signal", "pair", s.pair.String(), "reason", reason, "price", price)
		if t.Sell(latest.Time, s.base, price) {
			s.push(ctx,
				fmt.Sprintf("Sell %s (%s)", s.pair, reason),
				fmt.Sprintf("## %s: %s\n\nPrice: `%.4f`\n\n%s\n\nTime: `%s`",
					reason, s.pair, price, detail, latest.Time.Format(time.RFC3339)))
		}
		return nil
	}

	if !s.buySignal(price) {
		return nil
	}

	s.log.Info("buy signal", "pair", s.pair.String(), "price", price,
		"filter_ma", s.filter.Value(), "macd", s.macd.Value(), "rsi", s.rsi.Value())
	if t.Buy(latest.Time, s.base, price) {
		s.entryPrice = price
		s.highestSinceEntry = price
		s.push(ctx,
			fmt.Sprintf("Buy %s (confluence)", s.pair),
			fmt.Sprintf("## Buy: %s\n\nPrice: `%.4f`\n\nGolden cross with trend, MACD and RSI confirmation.\n\nTime: `%s`",
				s.pair, price, latest.Time.Format(time.RFC3339)))
	}
	return nil
}

func (s *MACrossStrategy) ready() bool {
	return s.havePrev && s.filter.Ready() && s.macd.Ready() && s.rsi.Ready()
}

func (s *MACrossStrategy) buySignal(price float64) bool {
	goldenCross := s.prevDiff < 0 && s.diff > 0
	uptrend := price > s.filter.Value()
	macdBullish := s.macd.Value() > s.macd.Signal()
	rsiOK := s.rsi.Value() < s.rsiOverbought

	return goldenCross && uptrend && macdBullish && rsiOK
}

// sellReason returns the triggered exit rule, highest priority first, or ""
// when the position should be held.
func (s *MACrossStrategy) sellReason(price float64) (reason, detail string) {
	stopPrice := s.entryPrice * (1 - s.stopLossPct)
	if price <= stopPrice {
		return "stop-loss",
			fmt.Sprintf("Entry `%.4f`, stop trigger `%.4f`", s.entryPrice, stopPrice)
	}

	if s.highestSinceEntry >= s.entryPrice*(1+s.trailingPct) {
		trigger := s.highestSinceEntry * (1 - s.callbackPct)
		if price <= trigger {
			return "trailing-stop",
				fmt.Sprintf("Post-entry high `%.4f`, pullback trigger `%.4f`", s.highestSinceEntry, trigger)
		}
	}

	if s.prevDiff > 0 && s.diff < 0 {
		return "death-cross",
			fmt.Sprintf("Fast EMA `%.4f` crossed below slow EMA `%.4f`", s.fast.Value(), s.slow.Value())
	}

	return "", ""
}

func (s *MACrossStrategy) push(ctx context.Context, title, content string) {
	if s.notifier == nil || s.notified {
		return
	}
	if err := s.notifier.Send(ctx, title, content); err != nil {
		s.log.Warn("notification failed", "err", err)
		return
	}
	s.notified = true
}
