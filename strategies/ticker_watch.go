package strategies

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rmorley/gatetrader/market"
)

func init() {
	Register("ticker-watch", NewTickerWatch)
}

// TickerWatchStrategy is a live-only strategy that polls the latest price at
// a fixed interval and logs it. It never trades; OnKline is the no-op
// default, so backtesting it is a baseline run.
type TickerWatchStrategy struct {
	NopKline

	pair     market.Pair
	interval time.Duration
	prices   PriceSource
	log      *slog.Logger
}

// NewTickerWatch builds a TickerWatchStrategy. Options: interval (Go
// duration, default 10s).
func NewTickerWatch(p Params) (Strategy, error) {
	interval, err := optDuration(p.Options, "interval", 10*time.Second)
	if err != nil {
		return nil, err
	}

	return &TickerWatchStrategy{
		pair:     p.Pair,
		interval: interval,
		prices:   p.Prices,
		log:      p.logger(),
	}, nil
}

func (s *TickerWatchStrategy) Name() string { return "ticker-watch" }

// Run polls the ticker until the context is cancelled.
func (s *TickerWatchStrategy) Run(ctx context.Context) error {
	if s.prices == nil {
		return fmt.Errorf("ticker-watch: no price source configured")
	}

	s.log.Info("watching ticker", "pair", s.pair.String(), "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		price, err := s.prices.LastPrice(ctx, s.pair.String())
		if err != nil {
			s.log.Warn("ticker fetch failed", "pair", s.pair.String(), "err", err)
		} else {
			s.log.Info("ticker", "pair", s.pair.String(), "last", price)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
