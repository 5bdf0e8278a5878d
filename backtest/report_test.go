package backtest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmorley/gatetrader/journal"
	"github.com/rmorley/gatetrader/market"
	"github.com/rmorley/gatetrader/strategies"
)

// dailyBars emits one bar per day so a series can span several months.
func dailyBars(start time.Time, closes ...float64) []market.Candle {
	out := make([]market.Candle, len(closes))
	for i, c := range closes {
		out[i] = market.Candle{Time: start.AddDate(0, 0, i), Close: c, Open: c, High: c, Low: c}
	}
	return out
}

// memJournal collects records in memory for assertions.
type memJournal struct {
	fills  []journal.Fill
	equity []journal.EquitySnapshot
}

func (m *memJournal) RecordFill(f journal.Fill) error             { m.fills = append(m.fills, f); return nil }
func (m *memJournal) RecordEquity(e journal.EquitySnapshot) error { m.equity = append(m.equity, e); return nil }
func (m *memJournal) Close() error                                { return nil }

// Three calendar months with trades scattered across them.
func multiMonthRun(t *testing.T, j journal.Journal) *Report {
	t.Helper()

	start := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	closes := make([]float64, 70) // Jan 20 .. Mar 29
	for i := range closes {
		closes[i] = 100 + float64(i%7) + float64(i)/3
	}
	bars := dailyBars(start, closes...)

	strat := &scripted{actions: map[int]func(strategies.Trader, []market.Candle){
		2: func(tr strategies.Trader, bars []market.Candle) {
			tr.Buy(bars[2].Time, "BTC", bars[2].Close)
		},
		25: func(tr strategies.Trader, bars []market.Candle) {
			tr.Sell(bars[25].Time, "BTC", bars[25].Close)
		},
		40: func(tr strategies.Trader, bars []market.Candle) {
			tr.Buy(bars[40].Time, "BTC", bars[40].Close)
		},
		// Position held through the end: the final period values holdings.
	}}

	cfg := testConfig()
	cfg.Journal = j
	e, err := NewEngine(cfg, bars, strat)
	require.NoError(t, err)

	report, err := e.Run(context.Background())
	require.NoError(t, err)
	return report
}

func TestReportPeriodSumLaw(t *testing.T) {
	t.Parallel()

	report := multiMonthRun(t, nil)

	require.Len(t, report.Periods, 3)

	sum := 0.0
	for _, p := range report.Periods {
		sum += p.PnL
	}
	assert.InDelta(t, report.PnL, sum, 1e-6)

	// Chaining: each period's end value feeds the next period's P&L.
	prev := report.InitialCapital
	for _, p := range report.Periods {
		assert.InDelta(t, p.EndValue-prev, p.PnL, 1e-9)
		prev = p.EndValue
	}

	// The last period's boundary valuation is the overall final value.
	assert.InDelta(t, report.FinalValue, report.Periods[len(report.Periods)-1].EndValue, 1e-9)
}

func TestReportPeriodLabelsAndCounts(t *testing.T) {
	t.Parallel()

	report := multiMonthRun(t, nil)

	assert.Equal(t, "2024-01-20 to 2024-01-31", report.Periods[0].Label)
	assert.Equal(t, "2024-02-01 to 2024-02-29", report.Periods[1].Label)
	assert.Equal(t, "2024-03-01 to 2024-03-29", report.Periods[2].Label)

	total := 0
	for _, p := range report.Periods {
		total += p.TradeCount
	}
	assert.Equal(t, report.TradeCount, total)
	assert.Equal(t, 3, report.TradeCount)
}

func TestReportNoTrades(t *testing.T) {
	t.Parallel()

	bars := hourlyBars(runStart, 100, 105, 110)
	e, err := NewEngine(testConfig(), bars, &scripted{})
	require.NoError(t, err)

	report, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 500.0, report.FinalValue)
	assert.Zero(t, report.PnL)
	assert.Zero(t, report.TradeCount)
	assert.Empty(t, report.Periods)

	out := report.String()
	assert.Contains(t, out, "No trades were executed")
	assert.NotContains(t, out, "Monthly Breakdown")
}

func TestReportString(t *testing.T) {
	t.Parallel()

	report := multiMonthRun(t, nil)
	out := report.String()

	assert.Contains(t, out, "Pair:            BTC_USDT")
	assert.Contains(t, out, "Monthly Breakdown")
	assert.Contains(t, out, "2024-02-01 to 2024-02-29")
	// Signed P&L column.
	assert.True(t, strings.Contains(out, "+") || strings.Contains(out, "-"))
}

func TestJournalReceivesFillsAndEquity(t *testing.T) {
	t.Parallel()

	j := &memJournal{}
	report := multiMonthRun(t, j)

	require.Len(t, j.fills, report.TradeCount)
	assert.Equal(t, "buy", j.fills[0].Side)
	assert.Equal(t, "BTC_USDT", j.fills[0].Pair)
	assert.NotEmpty(t, j.fills[0].ID)

	require.Len(t, j.equity, len(report.Periods))
	for i, snap := range j.equity {
		assert.Equal(t, report.Periods[i].End, snap.Time)
		assert.InDelta(t, report.Periods[i].EndValue, snap.TotalValue, 1e-9)
		assert.InDelta(t, report.Periods[i].EndCash, snap.Cash, 1e-9)
	}
}
