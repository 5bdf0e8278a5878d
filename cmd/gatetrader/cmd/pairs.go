package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rmorley/gatetrader/gateio"
	"github.com/rmorley/gatetrader/market"
)

var pairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "Inspect currency pairs",
}

var pairsCheckCmd = &cobra.Command{
	Use:   "check PAIR [PAIR...]",
	Short: "Check whether pairs are listed on Gate.io",
	Long: `Check verifies pair name format and queries the exchange for each
pair's listing status.

Example:
  gatetrader pairs check BTC_USDT ETH_USDT`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPairsCheck,
}

func init() {
	rootCmd.AddCommand(pairsCmd)
	pairsCmd.AddCommand(pairsCheckCmd)
}

func runPairsCheck(cmd *cobra.Command, args []string) error {
	client := gateio.NewClient()
	failed := 0

	for _, pair := range args {
		if _, _, err := market.SplitPair(pair); err != nil {
			fmt.Printf("✗ %s: %v\n", pair, err)
			failed++
			continue
		}

		ok, err := client.CurrencyPairExists(cmd.Context(), pair)
		if err != nil {
			fmt.Printf("✗ %s: %v\n", pair, err)
			failed++
			continue
		}
		if !ok {
			fmt.Printf("✗ %s: not listed\n", pair)
			failed++
			continue
		}

		price, err := client.LastPrice(cmd.Context(), pair)
		if err != nil {
			fmt.Printf("✓ %s: listed\n", pair)
			continue
		}
		fmt.Printf("✓ %s: listed, last price %g\n", pair, price)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d pair(s) failed the check", failed, len(args))
	}
	return nil
}
