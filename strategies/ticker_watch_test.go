package strategies

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrices struct {
	calls atomic.Int64
}

func (f *fakePrices) LastPrice(ctx context.Context, pair string) (float64, error) {
	f.calls.Add(1)
	return 65000, nil
}

func TestTickerWatchPollsUntilCancelled(t *testing.T) {
	t.Parallel()

	prices := &fakePrices{}
	s, err := New("ticker-watch", Params{
		Pair:    "BTC_USDT",
		Options: map[string]string{"interval": "10ms"},
		Prices:  prices,
	})
	require.NoError(t, err)

	ls, ok := s.(LiveStrategy)
	require.True(t, ok, "ticker-watch must expose the live loop")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err = ls.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, prices.calls.Load(), int64(2))
}

func TestTickerWatchRequiresPriceSource(t *testing.T) {
	t.Parallel()

	s, err := New("ticker-watch", Params{Pair: "BTC_USDT"})
	require.NoError(t, err)

	ls := s.(LiveStrategy)
	assert.Error(t, ls.Run(context.Background()))
}

func TestTickerWatchIgnoresKlines(t *testing.T) {
	t.Parallel()

	s, err := New("ticker-watch", Params{Pair: "BTC_USDT", Prices: &fakePrices{}})
	require.NoError(t, err)

	tr := &fakeTrader{}
	require.NoError(t, s.OnKline(context.Background(), tr, closesToBars(1, 2, 3)))
	assert.Empty(t, tr.buys)
}

func TestTickerWatchBadInterval(t *testing.T) {
	t.Parallel()

	_, err := New("ticker-watch", Params{
		Pair:    "BTC_USDT",
		Options: map[string]string{"interval": "whenever"},
	})
	assert.Error(t, err)
}
