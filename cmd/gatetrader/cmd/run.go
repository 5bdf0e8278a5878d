package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rmorley/gatetrader/config"
	"github.com/rmorley/gatetrader/gateio"
	"github.com/rmorley/gatetrader/internal/logging"
	"github.com/rmorley/gatetrader/live"
	"github.com/rmorley/gatetrader/market"
	"github.com/rmorley/gatetrader/notify"
	"github.com/rmorley/gatetrader/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run strategies live against Gate.io market data",
	Long: `Run starts one worker per configured pair, polling recent candles
and driving the strategy with each new window. Fills are simulated on a
paper ledger; no live orders are placed.

Stop with Ctrl-C; workers shut down together.

Example:
  gatetrader run --config trader.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	poll, err := cfg.Live.PollDuration()
	if err != nil {
		return err
	}

	pairs := make([]market.Pair, len(cfg.Pairs))
	for i, p := range cfg.Pairs {
		pairs[i] = market.Pair(p)
	}

	client := gateio.NewClient()

	var notifier strategies.Notifier
	if cfg.Notify.PushPlusToken != "" {
		notifier = notify.NewPushPlus(cfg.Notify.PushPlusToken)
	}

	runner, err := live.NewRunner(live.Config{
		Pairs:          pairs,
		Interval:       cfg.KlineInterval(),
		Poll:           poll,
		Window:         cfg.Live.WindowSize,
		InitialCapital: cfg.Account.InitialCapital,
		FeeRate:        cfg.Account.FeeRate,
		Strategy:       cfg.Strategy.Name,
		Options:        cfg.Strategy.Options,
		Source:         client,
		Prices:         client,
		Notifier:       notifier,
		Logger:         log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Running %s on %d pair(s), poll %s. Ctrl-C to stop.\n",
		cfg.Strategy.Name, len(pairs), poll)

	return runner.Run(ctx)
}
