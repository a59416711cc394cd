package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newDryRunCommand() *cobra.Command {
	var property string

	cmd := &cobra.Command{
		Use:   "dryrun <statement.csv>",
		Short: "Preview an ingestion without writing to the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read statement file: %w", err)
			}

			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.IngestTimeout)
			defer cancel()

			report, err := a.service.DryRun(ctx, property, buf)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "dry run %s for property %s\n", report.RunID, report.PropertyID)
			fmt.Fprintf(out, "  rows: %d total, %d dropped, %d parsed, %d invalid cells\n",
				report.Stats.TotalRows, report.Stats.DroppedSectionRows,
				report.Stats.ParsedRows, report.Stats.InvalidCurrencyCells)
			for _, acc := range report.Accounts {
				fmt.Fprintf(out, "  %-40s %-12s %.2f  %s\n", acc.Name, acc.Bucket, acc.Confidence, acc.Reasoning)
			}
			fmt.Fprintf(out, "  total amount: %s\n", report.TotalAmount.StringFixed(2))
			fmt.Fprintf(out, "  artifact: %s\n", report.ArtifactPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&property, "property", "p", "", "target property identifier (required)")
	_ = cmd.MarkFlagRequired("property")
	return cmd
}
