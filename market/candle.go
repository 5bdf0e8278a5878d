package market

import "time"

// Candle represents one OHLCV (Open, High, Low, Close, Volume) bar.
type Candle struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Time   time.Time
	Volume float64
}

// SortCandles orders candles by ascending time and drops duplicate
// timestamps, keeping the first occurrence. The input slice is not modified.
func SortCandles(candles []Candle) []Candle {
	out := make([]Candle, len(candles))
	copy(out, candles)

	// Insertion sort keeps the common already-sorted case O(n).
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Time.Before(out[j-1].Time); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}

	dedup := out[:0]
	for i, c := range out {
		if i > 0 && c.Time.Equal(out[i-1].Time) {
			continue
		}
		dedup = append(dedup, c)
	}
	return dedup
}

// ClipCandles returns the subsequence of candles with from <= Time <= to.
// Candles must already be sorted ascending.
func ClipCandles(candles []Candle, from, to time.Time) []Candle {
	var out []Candle
	for _, c := range candles {
		if c.Time.Before(from) {
			continue
		}
		if c.Time.After(to) {
			break
		}
		out = append(out, c)
	}
	return out
}
