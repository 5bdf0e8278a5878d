package market

import (
	"fmt"
	"strings"
)

// Pair is a spot trading pair in Gate.io "BASE_QUOTE" form, e.g. "BTC_USDT".
type Pair string

// SplitPair parses a "BASE_QUOTE" pair into its base and quote symbols.
func SplitPair(pair string) (base, quote string, err error) {
	parts := strings.Split(strings.TrimSpace(pair), "_")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid trading pair %q: want BASE_QUOTE", pair)
	}
	return parts[0], parts[1], nil
}

// Base returns the base symbol of the pair ("BTC" for "BTC_USDT").
func (p Pair) Base() string {
	base, _, err := SplitPair(string(p))
	if err != nil {
		return ""
	}
	return base
}

// Quote returns the quote symbol of the pair ("USDT" for "BTC_USDT").
func (p Pair) Quote() string {
	_, quote, err := SplitPair(string(p))
	if err != nil {
		return ""
	}
	return quote
}

func (p Pair) String() string { return string(p) }
