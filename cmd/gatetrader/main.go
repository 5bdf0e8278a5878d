package main

import (
	"os"

	"github.com/rmorley/gatetrader/cmd/gatetrader/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
