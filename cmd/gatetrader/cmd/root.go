package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rmorley/gatetrader/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "gatetrader",
	Short: "A spot trading backtester and live runner for Gate.io",
	Long: `Gatetrader is a crypto trading research tool written in Go.

It provides tools for:
  - Backtesting strategies against historical candle data
  - Running strategies live against Gate.io market data
  - Recording fills and equity curves to CSV or SQLite journals
  - Push notifications for trade signals`,
}

var (
	logLevel  string
	logFormat string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
}

func newLogger() *slog.Logger {
	return logging.New(os.Stderr, logLevel, logFormat)
}

// parseOptions turns repeated key=value flags into a strategy option map.
func parseOptions(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	opts := make(map[string]string, len(raw))
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("bad option %q (want key=value)", kv)
		}
		opts[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return opts, nil
}
