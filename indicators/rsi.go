package indicators

import (
	"fmt"

	"github.com/rmorley/gatetrader/market"
)

// RSI is a streaming Relative Strength Index using Wilder's smoothing.
type RSI struct {
	period int

	prevClose float64
	avgGain   float64
	avgLoss   float64
	count     int
}

// NewRSI creates an RSI indicator with the given lookback period
// (conventionally 14).
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

func (r *RSI) Name() string {
	return fmt.Sprintf("RSI(%d)", r.period)
}

func (r *RSI) Warmup() int {
	// period deltas + one seed close
	return r.period + 1
}

func (r *RSI) Reset() {
	r.prevClose = 0
	r.avgGain = 0
	r.avgLoss = 0
	r.count = 0
}

func (r *RSI) Update(c market.Candle) {
	if r.count == 0 {
		r.prevClose = c.Close
		r.count++
		return
	}

	gain, loss := 0.0, 0.0
	delta := c.Close - r.prevClose
	if delta > 0 {
		gain = delta
	} else {
		loss = -delta
	}
	r.prevClose = c.Close

	if r.count <= r.period {
		// Seed averages with a simple mean over the first 'period' deltas.
		r.avgGain += gain / float64(r.period)
		r.avgLoss += loss / float64(r.period)
	} else {
		// Wilder smoothing
		r.avgGain = (r.avgGain*float64(r.period-1) + gain) / float64(r.period)
		r.avgLoss = (r.avgLoss*float64(r.period-1) + loss) / float64(r.period)
	}
	r.count++
}

func (r *RSI) Ready() bool {
	return r.count > r.period
}

func (r *RSI) Value() float64 {
	if !r.Ready() {
		return 0
	}
	if r.avgLoss == 0 {
		return 100
	}
	rs := r.avgGain / r.avgLoss
	return 100 - 100/(1+rs)
}
