package market

import "fmt"

// Interval is a candlestick granularity accepted by the Gate.io spot API.
type Interval string

const (
	S10 Interval = "10s"
	M1  Interval = "1m"
	M5  Interval = "5m"
	M15 Interval = "15m"
	M30 Interval = "30m"
	H1  Interval = "1h"
	H4  Interval = "4h"
	H8  Interval = "8h"
	D1  Interval = "1d"
	D7  Interval = "7d"
	D30 Interval = "30d"
)

var intervalSeconds = map[Interval]int64{
	S10: 10,
	M1:  60,
	M5:  300,
	M15: 900,
	M30: 1800,
	H1:  3600,
	H4:  14400,
	H8:  28800,
	D1:  86400,
	D7:  604800,
	D30: 2592000,
}

// Seconds returns the interval length in seconds, used for pagination math
// when fetching historical candles.
func (iv Interval) Seconds() (int64, error) {
	s, ok := intervalSeconds[iv]
	if !ok {
		return 0, fmt.Errorf("unknown kline interval %q", iv)
	}
	return s, nil
}

// Valid reports whether the interval is one the exchange accepts.
func (iv Interval) Valid() bool {
	_, ok := intervalSeconds[iv]
	return ok
}
