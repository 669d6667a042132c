package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "billing",
	Short: "Monthly time-tracking to billing reconciliation",
	Long: `billing turns raw time-tracking exports into monthly billing artifacts.

Usage:
  billing process                               Reconcile the newest export in the raw directory
  billing process --input exports/oct.csv       Reconcile a specific export file
  billing process --period 2025-10              Pin the billing period instead of deriving it
  billing archive 2025 10                       Move a finished period's files into the archive

Each process run writes a cleaned CSV extract, a Markdown summary and a
budget state file, and loads the period into the warehouse when one is
configured. Runs are reproducible: processing the same export twice
produces identical artifacts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/billing.yaml", "path to the configuration file")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
