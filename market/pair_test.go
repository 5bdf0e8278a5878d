package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSplitPair(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pair    string
		base    string
		quote   string
		wantErr bool
	}{
		{name: "btc_usdt", pair: "BTC_USDT", base: "BTC", quote: "USDT"},
		{name: "sol_usdt", pair: "SOL_USDT", base: "SOL", quote: "USDT"},
		{name: "trimmed", pair: "  ETH_USDT ", base: "ETH", quote: "USDT"},
		{name: "no_underscore", pair: "BTCUSDT", wantErr: true},
		{name: "empty", pair: "", wantErr: true},
		{name: "missing_quote", pair: "BTC_", wantErr: true},
		{name: "missing_base", pair: "_USDT", wantErr: true},
		{name: "too_many_parts", pair: "A_B_C", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, quote, err := SplitPair(tt.pair)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.base, base)
			assert.Equal(t, tt.quote, quote)
		})
	}
}

func TestPairAccessors(t *testing.T) {
	t.Parallel()

	p := Pair("BTC_USDT")
	assert.Equal(t, "BTC", p.Base())
	assert.Equal(t, "USDT", p.Quote())
	assert.Equal(t, "BTC_USDT", p.String())

	bad := Pair("nope")
	assert.Equal(t, "", bad.Base())
	assert.Equal(t, "", bad.Quote())
}

func TestIntervalSeconds(t *testing.T) {
	t.Parallel()

	s, err := H1.Seconds()
	assert.NoError(t, err)
	assert.Equal(t, int64(3600), s)

	_, err = Interval("2h").Seconds()
	assert.Error(t, err)

	assert.True(t, D1.Valid())
	assert.False(t, Interval("").Valid())
}

func TestSortCandles(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	in := []Candle{
		{Time: t0.Add(2 * time.Hour), Close: 3},
		{Time: t0, Close: 1},
		{Time: t0.Add(time.Hour), Close: 2},
		{Time: t0, Close: 99}, // duplicate timestamp, dropped
	}

	out := SortCandles(in)
	assert.Len(t, out, 3)
	assert.Equal(t, 1.0, out[0].Close)
	assert.Equal(t, 2.0, out[1].Close)
	assert.Equal(t, 3.0, out[2].Close)

	// input untouched
	assert.Equal(t, 3.0, in[0].Close)
}

func TestClipCandles(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var in []Candle
	for i := 0; i < 5; i++ {
		in = append(in, Candle{Time: t0.Add(time.Duration(i) * time.Hour)})
	}

	out := ClipCandles(in, t0.Add(time.Hour), t0.Add(3*time.Hour))
	assert.Len(t, out, 3)
	assert.Equal(t, t0.Add(time.Hour), out[0].Time)
	assert.Equal(t, t0.Add(3*time.Hour), out[2].Time)

	assert.Empty(t, ClipCandles(in, t0.Add(10*time.Hour), t0.Add(11*time.Hour)))
}
