package backtest

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rmorley/gatetrader/market"
)

// Report is the outcome of one backtest run: the overall summary plus a
// monthly periodized breakdown. Periods is empty when no trades executed.
type Report struct {
	Pair  market.Pair
	Start time.Time
	End   time.Time

	InitialCapital float64
	FinalValue     float64
	PnL            float64
	PnLPercent     float64
	TradeCount     int

	Periods []Period
}

// Period is one calendar month of the run, valued at the close of the last
// bar within that month.
type Period struct {
	Label string // "YYYY-MM-DD to YYYY-MM-DD"
	Start time.Time
	End   time.Time

	PnL        float64 // change in total value relative to the previous period
	EndValue   float64 // mark-to-market total at the period boundary
	EndCash    float64
	TradeCount int // trades with Start <= time <= End
}

// buildReport computes the report from the finished run. The periodized
// breakdown chains from initial capital: each period's P&L is its boundary
// valuation minus the previous period's, so the period P&Ls always sum to
// the overall P&L.
func (e *Engine) buildReport() *Report {
	p := e.portfolio
	last := e.bars[len(e.bars)-1]

	r := &Report{
		Pair:           e.cfg.Pair,
		Start:          e.bars[0].Time,
		End:            last.Time,
		InitialCapital: p.InitialCapital,
		TradeCount:     len(p.Trades),
	}

	if r.TradeCount == 0 {
		r.FinalValue = p.InitialCapital
	} else {
		r.FinalValue = p.TotalValue(map[string]float64{e.base: last.Close})
	}

	r.PnL = r.FinalValue - r.InitialCapital
	if r.InitialCapital > 0 {
		r.PnLPercent = r.PnL / r.InitialCapital * 100
	}

	if r.TradeCount == 0 {
		return r
	}

	// Month spans in chronological order; bars are already sorted.
	type span struct{ first, last int }
	var order []string
	spans := make(map[string]span)
	for i, c := range e.bars {
		key := c.Time.Format("2006-01")
		if s, ok := spans[key]; ok {
			s.last = i
			spans[key] = s
		} else {
			spans[key] = span{first: i, last: i}
			order = append(order, key)
		}
	}

	prevTotal := p.InitialCapital
	for _, key := range order {
		s := spans[key]
		start := e.bars[s.first].Time
		boundary := e.bars[s.last]

		cash, positions := p.StateAt(boundary.Time)
		total := cash + positions[e.base]*boundary.Close

		r.Periods = append(r.Periods, Period{
			Label:      start.Format("2006-01-02") + " to " + boundary.Time.Format("2006-01-02"),
			Start:      start,
			End:        boundary.Time,
			PnL:        total - prevTotal,
			EndValue:   total,
			EndCash:    cash,
			TradeCount: p.TradesBetween(start, boundary.Time),
		})
		prevTotal = total
	}

	return r
}

// String renders the report as the two text blocks printed by the CLI.
func (r *Report) String() string {
	var b strings.Builder

	quote := r.Pair.Quote()

	fmt.Fprintf(&b, "======== Backtest Summary ========\n")
	fmt.Fprintf(&b, "Period:          %s to %s\n", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	fmt.Fprintf(&b, "Pair:            %s\n", r.Pair)
	fmt.Fprintf(&b, "Initial capital: %.2f %s\n", r.InitialCapital, quote)
	fmt.Fprintf(&b, "Final value:     %.2f %s\n", r.FinalValue, quote)
	fmt.Fprintf(&b, "P&L:             %+.2f %s (%+.2f%%)\n", r.PnL, quote, r.PnLPercent)
	fmt.Fprintf(&b, "Trades:          %d\n", r.TradeCount)

	if r.TradeCount == 0 {
		fmt.Fprintf(&b, "No trades were executed during the backtest period.\n")
		fmt.Fprintf(&b, "==================================\n")
		return b.String()
	}

	fmt.Fprintf(&b, "\n======== Monthly Breakdown ========\n")
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Period\tP&L (%s)\tEnd value (%s)\tTrades\n", quote, quote)
	for _, period := range r.Periods {
		fmt.Fprintf(tw, "%s\t%+.2f\t%.2f\t%d\n",
			period.Label, period.PnL, period.EndValue, period.TradeCount)
	}
	tw.Flush()
	fmt.Fprintf(&b, "===================================\n")

	return b.String()
}
