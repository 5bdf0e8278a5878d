package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmorley/gatetrader/backtest"
	"github.com/rmorley/gatetrader/feed"
	"github.com/rmorley/gatetrader/gateio"
	"github.com/rmorley/gatetrader/journal"
	"github.com/rmorley/gatetrader/market"
	"github.com/rmorley/gatetrader/strategies"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Backtest a strategy against historical candle data",
	Long: `Backtest replays historical candles through a strategy and reports
overall and monthly profit/loss.

Candles come either from a local CSV file (--csv, optionally .xz
compressed) or are fetched from Gate.io for the last --days days.

Example:
  gatetrader backtest --pair BTC_USDT --days 90 --strategy ma-cross \
      --opt short_window=5 --opt long_window=20`,
	RunE: runBacktestCmd,
}

var (
	btPair     string
	btInterval string
	btDays     int
	btCSVPath  string
	btCapital  float64
	btFeeRate  float64
	btStrategy string
	btOptions  []string
	btDBPath   string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btPair, "pair", "p", "BTC_USDT", "currency pair")
	backtestCmd.Flags().StringVarP(&btInterval, "interval", "i", "1h", "candle interval (1m, 5m, 1h, 4h, 1d, ...)")
	backtestCmd.Flags().IntVarP(&btDays, "days", "d", 90, "days of history to fetch when no CSV is given")
	backtestCmd.Flags().StringVar(&btCSVPath, "csv", "", "path to candle CSV file (plain or .xz)")
	backtestCmd.Flags().Float64VarP(&btCapital, "capital", "c", 10_000, "starting capital in quote currency")
	backtestCmd.Flags().Float64Var(&btFeeRate, "fee", 0.002, "taker fee rate per trade side")
	backtestCmd.Flags().StringVarP(&btStrategy, "strategy", "s", "ma-cross", "strategy name")
	backtestCmd.Flags().StringArrayVar(&btOptions, "opt", nil, "strategy option key=value (repeatable)")
	backtestCmd.Flags().StringVar(&btDBPath, "db", "", "optional SQLite journal path")
}

func runBacktestCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := newLogger()

	interval := market.Interval(btInterval)
	if !interval.Valid() {
		return fmt.Errorf("unknown interval %q", btInterval)
	}

	opts, err := parseOptions(btOptions)
	if err != nil {
		return err
	}

	bars, err := loadBars(ctx, interval)
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		return fmt.Errorf("no candle data for %s", btPair)
	}

	strat, err := strategies.New(btStrategy, strategies.Params{
		Pair:    market.Pair(btPair),
		Options: opts,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	cfg := backtest.Config{
		Pair:           market.Pair(btPair),
		InitialCapital: btCapital,
		FeeRate:        btFeeRate,
		Logger:         log,
	}

	if btDBPath != "" {
		j, err := journal.NewSQLite(btDBPath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer j.Close()
		cfg.Journal = j
	}

	engine, err := backtest.NewEngine(cfg, bars, strat)
	if err != nil {
		return err
	}

	fmt.Printf("Running backtest: %s %s, %d candles, strategy %s\n\n",
		btPair, btInterval, len(bars), btStrategy)

	report, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println(report.String())
	if btDBPath != "" {
		fmt.Printf("Journal saved to: %s\n", btDBPath)
	}
	return nil
}

func loadBars(ctx context.Context, interval market.Interval) ([]market.Candle, error) {
	if btCSVPath != "" {
		return feed.ReadFile(btCSVPath)
	}

	secs, err := interval.Seconds()
	if err != nil {
		return nil, err
	}

	to := time.Now().UTC().Truncate(time.Duration(secs) * time.Second)
	from := to.AddDate(0, 0, -btDays)

	client := gateio.NewClient()
	bars, err := client.HistoricalCandles(ctx, btPair, interval, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	return bars, nil
}
