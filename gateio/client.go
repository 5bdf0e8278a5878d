// Package gateio implements a client for the Gate.io spot REST API (v4),
// covering the public market-data endpoints the trader needs: candlesticks
// with windowed pagination, tickers, and pair existence checks.
package gateio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rmorley/gatetrader/market"
)

// BaseURL is the Gate.io API v4 endpoint.
const BaseURL = "https://api.gateio.ws/api/v4"

// maxCandlesPerRequest is the server-side page cap for /spot/candlesticks.
const maxCandlesPerRequest = 1000

// pageDelay spaces paginated requests to respect the public rate limit.
const pageDelay = 200 * time.Millisecond

// APIError is a structured Gate.io error response.
type APIError struct {
	Status  int
	Label   string `json:"label"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateio: %s (label %s, status %d)", e.Message, e.Label, e.Status)
}

// Client is a Gate.io spot API client. The zero value is not usable; call
// NewClient.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithBaseURL points the client at a different endpoint (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient creates a Gate.io client for the public spot endpoints.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: BaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	apiURL := c.baseURL + path
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(body, apiErr) != nil || apiErr.Label == "" {
			apiErr.Message = string(body)
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ticker is one element of the /spot/tickers response.
type ticker struct {
	CurrencyPair string `json:"currency_pair"`
	Last         string `json:"last"`
}

// LastPrice returns the latest traded price for a pair.
func (c *Client) LastPrice(ctx context.Context, pair string) (float64, error) {
	params := url.Values{}
	params.Set("currency_pair", pair)

	var tickers []ticker
	if err := c.get(ctx, "/spot/tickers", params, &tickers); err != nil {
		return 0, err
	}
	if len(tickers) == 0 {
		return 0, fmt.Errorf("no ticker for %q", pair)
	}

	last, err := strconv.ParseFloat(tickers[0].Last, 64)
	if err != nil {
		return 0, fmt.Errorf("parse last price %q: %w", tickers[0].Last, err)
	}
	return last, nil
}

// CurrencyPairExists reports whether the pair is listed on the exchange.
// An INVALID_CURRENCY_PAIR error means "no"; any other error is returned.
func (c *Client) CurrencyPairExists(ctx context.Context, pair string) (bool, error) {
	params := url.Values{}
	params.Set("currency_pair", pair)

	var tickers []ticker
	err := c.get(ctx, "/spot/tickers", params, &tickers)
	if err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.Label == "INVALID_CURRENCY_PAIR" {
			return false, nil
		}
		return false, err
	}
	return len(tickers) > 0, nil
}

// Candlesticks fetches one page of candles ending at to (exchange rows are
// [timestamp, quote_volume, close, high, low, open, base_volume, finished]).
// Unfinished candles are skipped. Results come back in ascending time order.
func (c *Client) Candlesticks(ctx context.Context, pair string, interval market.Interval, to time.Time, limit int) ([]market.Candle, error) {
	if pair == "" {
		return nil, fmt.Errorf("currency pair is required")
	}
	if !interval.Valid() {
		return nil, fmt.Errorf("unknown kline interval %q", interval)
	}
	if limit <= 0 || limit > maxCandlesPerRequest {
		limit = maxCandlesPerRequest
	}

	params := url.Values{}
	params.Set("currency_pair", pair)
	params.Set("interval", string(interval))
	params.Set("limit", strconv.Itoa(limit))
	if !to.IsZero() {
		params.Set("to", strconv.FormatInt(to.Unix(), 10))
	}

	var rows [][]string
	if err := c.get(ctx, "/spot/candlesticks", params, &rows); err != nil {
		return nil, err
	}

	candles := make([]market.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 8 {
			return nil, fmt.Errorf("short candlestick row: %v", row)
		}
		if row[7] != "true" {
			continue
		}

		ts, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse candle timestamp %q: %w", row[0], err)
		}
		closeP, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("parse close price: %w", err)
		}
		high, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, fmt.Errorf("parse high price: %w", err)
		}
		low, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return nil, fmt.Errorf("parse low price: %w", err)
		}
		open, err := strconv.ParseFloat(row[5], 64)
		if err != nil {
			return nil, fmt.Errorf("parse open price: %w", err)
		}
		volume, err := strconv.ParseFloat(row[6], 64)
		if err != nil {
			return nil, fmt.Errorf("parse volume: %w", err)
		}

		candles = append(candles, market.Candle{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closeP,
			Volume: volume,
		})
	}

	return market.SortCandles(candles), nil
}

// HistoricalCandles fetches all candles for [from, to], paginating backwards
// from the end of the window in pages of 1000. The result is sorted
// ascending, deduplicated, and clipped to the window; an empty slice means
// the exchange had no data for it.
func (c *Client) HistoricalCandles(ctx context.Context, pair string, interval market.Interval, from, to time.Time) ([]market.Candle, error) {
	var all []market.Candle
	pageEnd := to

	for {
		page, err := c.Candlesticks(ctx, pair, interval, pageEnd, maxCandlesPerRequest)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		all = append(all, page...)

		first := page[0].Time
		// Done once the page reaches back past the window start, or the
		// exchange ran out of history.
		if !first.After(from) || len(page) < maxCandlesPerRequest {
			break
		}

		// One second earlier avoids refetching the boundary candle.
		pageEnd = first.Add(-time.Second)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pageDelay):
		}
	}

	return market.ClipCandles(market.SortCandles(all), from, to), nil
}
