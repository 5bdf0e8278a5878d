package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rmorley/gatetrader/strategies"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List available strategies",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range strategies.List() {
			fmt.Println(name)
		}
	},
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}
