package strategies

import (
	"context"

	"github.com/rmorley/gatetrader/market"
)

func init() {
	Register("noop", func(Params) (Strategy, error) {
		return NoopStrategy{}, nil
	})
}

// NoopStrategy does nothing. Useful as a baseline: a backtest with it must
// end at exactly the initial capital with zero trades.
type NoopStrategy struct{}

func (NoopStrategy) Name() string { return "noop" }

func (NoopStrategy) OnKline(context.Context, Trader, []market.Candle) error {
	return nil
}
