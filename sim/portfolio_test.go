package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestExecuteTradeBuyConservation(t *testing.T) {
	t.Parallel()

	p := NewPortfolio(500, 0.002)

	ok := p.ExecuteTrade(t0, "BTC", Buy, 4.95, 100)
	require.True(t, ok)

	// cash_after = cash_before - amount*price*(1+fee_rate)
	assert.InDelta(t, 500-4.95*100*1.002, p.Cash, 1e-9)
	assert.InDelta(t, 4.01, p.Cash, 1e-9)
	assert.InDelta(t, 4.95, p.Position("BTC"), 1e-9)

	require.Len(t, p.Trades, 1)
	tr := p.Trades[0]
	assert.Equal(t, Buy, tr.Side)
	assert.InDelta(t, 0.99, tr.Fee, 1e-9)
	assert.InDelta(t, 495, tr.Notional(), 1e-9)
	assert.NotEmpty(t, tr.ID)
}

func TestExecuteTradeSellConservation(t *testing.T) {
	t.Parallel()

	p := NewPortfolio(500, 0.002)
	require.True(t, p.ExecuteTrade(t0, "BTC", Buy, 4.95, 100))
	require.True(t, p.ExecuteTrade(t0.Add(time.Hour), "BTC", Sell, 4.95, 110))

	// cash_after = cash_before + amount*price*(1-fee_rate)
	assert.InDelta(t, 547.421, p.Cash, 1e-9)
	assert.Zero(t, p.Position("BTC"))
	assert.NotContains(t, p.Positions(), "BTC")
	assert.Len(t, p.Trades, 2)
}

func TestExecuteTradeRejectionPurity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		side   Side
		amount float64
		price  float64
	}{
		{name: "insufficient_cash", side: Buy, amount: 100, price: 100},
		{name: "insufficient_position", side: Sell, amount: 1, price: 100},
		{name: "zero_amount", side: Buy, amount: 0, price: 100},
		{name: "negative_amount", side: Sell, amount: -1, price: 100},
		{name: "zero_price", side: Buy, amount: 1, price: 0},
		{name: "unknown_side", side: Side("hold"), amount: 1, price: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPortfolio(500, 0.002)

			ok := p.ExecuteTrade(t0, "BTC", tt.side, tt.amount, tt.price)
			assert.False(t, ok)
			assert.Equal(t, 500.0, p.Cash)
			assert.Empty(t, p.Positions())
			assert.Empty(t, p.Trades)
		})
	}
}

func TestExecuteTradeBuyExactCash(t *testing.T) {
	t.Parallel()

	// cost+fee == cash exactly: must succeed and leave zero cash.
	p := NewPortfolio(100.2, 0.002)
	ok := p.ExecuteTrade(t0, "BTC", Buy, 1, 100)
	require.True(t, ok)
	assert.InDelta(t, 0, p.Cash, 1e-9)
}

func TestSellClearsDustResidue(t *testing.T) {
	t.Parallel()

	p := NewPortfolio(1000, 0)
	require.True(t, p.ExecuteTrade(t0, "BTC", Buy, 0.3, 100))
	// 0.3 - 3*0.1 leaves ~5.5e-17 of float residue; position must be cleared.
	for i := 0; i < 3; i++ {
		require.True(t, p.ExecuteTrade(t0.Add(time.Hour), "BTC", Sell, 0.1, 100))
	}
	assert.NotContains(t, p.Positions(), "BTC")
}

func TestTotalValueSkipsUnpricedSymbols(t *testing.T) {
	t.Parallel()

	p := NewPortfolio(1000, 0)
	require.True(t, p.ExecuteTrade(t0, "BTC", Buy, 2, 100))
	require.True(t, p.ExecuteTrade(t0, "ETH", Buy, 5, 50))

	// cash = 1000 - 200 - 250 = 550
	v := p.TotalValue(map[string]float64{"BTC": 110})
	assert.InDelta(t, 550+2*110, v, 1e-9)

	v = p.TotalValue(map[string]float64{"BTC": 110, "ETH": 60})
	assert.InDelta(t, 550+220+300, v, 1e-9)

	assert.InDelta(t, 550, p.TotalValue(nil), 1e-9)
}

func TestPositionsReturnsCopy(t *testing.T) {
	t.Parallel()

	p := NewPortfolio(1000, 0)
	require.True(t, p.ExecuteTrade(t0, "BTC", Buy, 1, 100))

	got := p.Positions()
	got["BTC"] = 999
	assert.InDelta(t, 1, p.Position("BTC"), 1e-9)
}
