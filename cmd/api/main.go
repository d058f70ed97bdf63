// Command api serves the reconciliation backend over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/reconview/ynab-reconciler/internal/cli"
	"github.com/reconview/ynab-reconciler/internal/infrastructure/config"
)

func main() {
	flags := cli.ParseServeFlags()
	cfg := config.LoadOrEnvWithPath(flags.Config)

	if err := cli.RunServe(cfg, flags); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
