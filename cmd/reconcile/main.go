// Command reconcile runs one reconciliation from the command line, optionally
// importing a CSV statement export first.
package main

import (
	"fmt"
	"os"

	"github.com/reconview/ynab-reconciler/internal/cli"
	"github.com/reconview/ynab-reconciler/internal/infrastructure/config"
)

func main() {
	flags := cli.ParseReconcileFlags()
	cfg := config.LoadOrEnvWithPath(flags.Config)

	if err := cli.RunReconcile(cfg, flags); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
