// Package feed reads and writes candle history as CSV files, with
// transparent xz compression for archived datasets. Files carry a
// "time,open,high,low,close,volume" header with RFC 3339 timestamps.
package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/rmorley/gatetrader/market"
)

var csvHeader = []string{"time", "open", "high", "low", "close", "volume"}

// ReadFile loads candles from a CSV file. Files ending in .xz are
// decompressed on the fly. The result is sorted ascending and deduplicated.
func ReadFile(path string) ([]market.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open xz stream %s: %w", path, err)
		}
		r = xr
	}

	candles, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return candles, nil
}

// Read parses candles from CSV data.
func Read(r io.Reader) ([]market.Candle, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	// Tolerate files written without a header row.
	if records[0][0] == csvHeader[0] {
		records = records[1:]
	}

	candles := make([]market.Candle, 0, len(records))
	for i, rec := range records {
		c, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		candles = append(candles, c)
	}
	return market.SortCandles(candles), nil
}

func parseRecord(rec []string) (market.Candle, error) {
	ts, err := time.Parse(time.RFC3339, rec[0])
	if err != nil {
		return market.Candle{}, fmt.Errorf("parse time %q: %w", rec[0], err)
	}

	var vals [5]float64
	for i, field := range rec[1:] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return market.Candle{}, fmt.Errorf("parse %s %q: %w", csvHeader[i+1], field, err)
		}
		vals[i] = v
	}

	return market.Candle{
		Time:   ts.UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

// WriteFile stores candles as CSV, compressing when the path ends in .xz.
// The write goes through a temp file so readers never see a partial file.
func WriteFile(path string, candles []market.Candle) error {
	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	var w io.Writer = f
	var xw *xz.Writer
	if strings.HasSuffix(path, ".xz") {
		xw, err = xz.NewWriter(f)
		if err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("open xz stream %s: %w", path, err)
		}
		w = xw
	}

	writeErr := Write(w, candles)
	if xw != nil {
		if err := xw.Close(); err != nil && writeErr == nil {
			writeErr = err
		}
	}
	if err := f.Close(); err != nil && writeErr == nil {
		writeErr = err
	}
	if writeErr != nil {
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, writeErr)
	}
	return os.Rename(tmp, path)
}

// Write emits candles as CSV with a header row.
func Write(w io.Writer, candles []market.Candle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	fs := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for _, c := range candles {
		rec := []string{
			c.Time.UTC().Format(time.RFC3339),
			fs(c.Open), fs(c.High), fs(c.Low), fs(c.Close), fs(c.Volume),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
