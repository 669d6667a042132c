package cmd

import (
	"fmt"

	"github.com/dsg-innosource/data-platform/internal/app"
	"github.com/dsg-innosource/data-platform/pkg/billing"
	"github.com/dsg-innosource/data-platform/pkg/period"
	"github.com/dsg-innosource/data-platform/pkg/pipeline"
	"github.com/spf13/cobra"
)

var (
	processInput  string
	processPeriod string
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Reconcile a time-tracking export into billing artifacts",
	Long: `Reconcile one time-tracking export into the period's billing artifacts.

Without flags the newest export in the configured raw directory is
processed and the billing period is derived from the export's dates.
Use --input to pick a specific file and --period to pin a period when
the export contains stragglers from neighbouring months.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := pipeline.ProcessRequest{InputPath: processInput}
		if processPeriod != "" {
			p, err := period.Parse(processPeriod)
			if err != nil {
				return err
			}
			req.Period = p
		}

		application, err := app.NewApplication(cfgFile)
		if err != nil {
			return err
		}
		defer application.Close()

		result, err := application.Process(cmd.Context(), req)
		if err != nil {
			return err
		}
		printRunResult(cmd, result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&processInput, "input", "", "export file to process instead of the newest one")
	processCmd.Flags().StringVar(&processPeriod, "period", "", "billing period as YYYY-MM instead of deriving it from the data")
}

func printRunResult(cmd *cobra.Command, result pipeline.RunResult) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Processed %s (%d rows, %d billable)\n", result.Period, result.RowsRead, result.RowsBillable)
	fmt.Fprintf(out, "  ✓ %s\n", result.CSVPath)
	fmt.Fprintf(out, "  ✓ %s\n", result.ReportPath)
	fmt.Fprintf(out, "  ✓ %s\n", result.StatePath)
	fmt.Fprintf(out, "Total: %s hours, %s billed\n", billing.FormatHours(result.TotalDuration), billing.FormatUSD(result.TotalAmount))

	if len(result.Warnings) > 0 {
		fmt.Fprintf(out, "⚠ %d warnings, see the report for details\n", len(result.Warnings))
	}
	for _, alert := range result.Alerts {
		if alert.Overrun() {
			fmt.Fprintf(out, "🚨 %s: budget overrun, %s remaining\n", alert.Client, billing.FormatUSD(alert.EndRemaining))
		} else {
			fmt.Fprintf(out, "🚨 %s: %.1f months of budget left\n", alert.Client, alert.MonthsRemaining)
		}
	}
	if result.WarehouseRows > 0 {
		fmt.Fprintf(out, "Loaded %d rows into the warehouse (run %s)\n", result.WarehouseRows, result.RunID)
	}
}
