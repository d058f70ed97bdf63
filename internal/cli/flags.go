// Package cli holds the flag parsing and console output shared by the
// command line entry points.
package cli

import "flag"

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	Port    int
	Config  string
	Verbose bool
}

// ParseServeFlags parses command line flags for the serve command.
func ParseServeFlags() *ServeFlags {
	flags := &ServeFlags{}
	flag.IntVar(&flags.Port, "port", 0, "Port to listen on (overrides config)")
	flag.StringVar(&flags.Config, "config", "config.yaml", "Path to config file")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}

// ReconcileFlags holds the CLI flags for a one-shot reconciliation.
type ReconcileFlags struct {
	Config            string
	BudgetID          string
	AccountID         string
	StartDate         string
	EndDate           string
	DateToleranceDays int
	AmountTolerance   float64
	Persist           bool
	ImportCSV         string
	Verbose           bool
}

// ParseReconcileFlags parses command line flags for the reconcile command.
func ParseReconcileFlags() *ReconcileFlags {
	flags := &ReconcileFlags{}
	flag.StringVar(&flags.Config, "config", "config.yaml", "Path to config file")
	flag.StringVar(&flags.BudgetID, "budget", "", "YNAB budget ID (defaults to config)")
	flag.StringVar(&flags.AccountID, "account", "", "YNAB account ID (defaults to config)")
	flag.StringVar(&flags.StartDate, "start", "", "Window start date (YYYY-MM-DD)")
	flag.StringVar(&flags.EndDate, "end", "", "Window end date (YYYY-MM-DD)")
	flag.IntVar(&flags.DateToleranceDays, "date-tolerance", -1, "Max day difference for a match (-1 = config default)")
	flag.Float64Var(&flags.AmountTolerance, "amount-tolerance", -1, "Max amount difference in major units (-1 = config default)")
	flag.BoolVar(&flags.Persist, "persist", false, "Persist matched pairs and append a run log entry")
	flag.StringVar(&flags.ImportCSV, "import", "", "CSV statement file to import before reconciling")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}
