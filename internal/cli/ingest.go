package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newIngestCommand() *cobra.Command {
	var property string

	cmd := &cobra.Command{
		Use:   "ingest <statement.csv>",
		Short: "Ingest a wide-format cash-flow CSV into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read statement file: %w", err)
			}

			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.IngestTimeout)
			defer cancel()

			report, err := a.service.Ingest(ctx, property, buf)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s for property %s\n", report.RunID, report.PropertyID)
			fmt.Fprintf(out, "  rows: %d total, %d dropped, %d parsed, %d invalid cells\n",
				report.Stats.TotalRows, report.Stats.DroppedSectionRows,
				report.Stats.ParsedRows, report.Stats.InvalidCurrencyCells)
			fmt.Fprintf(out, "  accounts upserted: %d\n", report.Result.AccountsUpserted)
			fmt.Fprintf(out, "  monthly data upserted: %d\n", report.Result.MonthlyDataUpserted)
			for _, e := range report.Result.Errors {
				fmt.Fprintf(out, "  row error: %s\n", e)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&property, "property", "p", "", "target property identifier (required)")
	_ = cmd.MarkFlagRequired("property")
	return cmd
}
