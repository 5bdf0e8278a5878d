package indicators

import (
	"fmt"

	"github.com/rmorley/gatetrader/market"
)

// MACD is a streaming Moving Average Convergence Divergence indicator:
// macd line = EMA(fast) - EMA(slow), signal line = EMA(signal) of the macd
// line, histogram = macd - signal.
type MACD struct {
	fast   *ExponentialMA
	slow   *ExponentialMA
	signal *ExponentialMA

	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a MACD with the given fast/slow/signal periods
// (conventionally 12/26/9).
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fast:         NewEMA(fast),
		slow:         NewEMA(slow),
		signal:       NewEMA(signal),
		fastPeriod:   fast,
		slowPeriod:   slow,
		signalPeriod: signal,
	}
}

func (m *MACD) Name() string {
	return fmt.Sprintf("MACD(%d,%d,%d)", m.fastPeriod, m.slowPeriod, m.signalPeriod)
}

func (m *MACD) Warmup() int {
	return m.slowPeriod + m.signalPeriod
}

func (m *MACD) Reset() {
	m.fast.Reset()
	m.slow.Reset()
	m.signal.Reset()
}

func (m *MACD) Update(c market.Candle) {
	m.fast.Update(c)
	m.slow.Update(c)
	if m.fast.Ready() && m.slow.Ready() {
		m.signal.update(m.fast.Value() - m.slow.Value())
	}
}

func (m *MACD) Ready() bool {
	return m.signal.Ready()
}

// Value returns the macd line (fast EMA minus slow EMA).
func (m *MACD) Value() float64 {
	if !m.Ready() {
		return 0
	}
	return m.fast.Value() - m.slow.Value()
}

// Signal returns the signal line (EMA of the macd line).
func (m *MACD) Signal() float64 {
	if !m.Ready() {
		return 0
	}
	return m.signal.Value()
}

// Histogram returns macd line minus signal line.
func (m *MACD) Histogram() float64 {
	if !m.Ready() {
		return 0
	}
	return m.Value() - m.Signal()
}
