package cmd

import (
	"fmt"

	"github.com/dsg-innosource/data-platform/internal/app"
	"github.com/dsg-innosource/data-platform/pkg/period"
	"github.com/spf13/cobra"
)

// archiveCmd represents the archive command
var archiveCmd = &cobra.Command{
	Use:   "archive <year> <month>",
	Short: "Move a finished period's files into the archive",
	Long: `Move a finished period's raw exports and generated outputs into
archive/<period> subdirectories next to where they live today.

Archiving is planned up front: when any destination already holds files
nothing moves and the command fails, so a period is never archived
twice. Archiving a period with nothing to move is a no-op.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := period.FromParts(args[0], args[1])
		if err != nil {
			return err
		}

		application, err := app.NewApplication(cfgFile)
		if err != nil {
			return err
		}
		defer application.Close()

		result, err := application.Archive(cmd.Context(), p)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if result.NoOp {
			fmt.Fprintf(out, "Nothing to archive for %s\n", result.Period)
			return nil
		}
		fmt.Fprintf(out, "Archived %d files for %s\n", len(result.Archived), result.Period)
		for _, path := range result.Archived {
			fmt.Fprintf(out, "  ✓ %s\n", path)
		}
		for _, warning := range result.Warnings {
			fmt.Fprintf(out, "⚠ %s\n", warning)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
}
