package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"propfi/internal/categorize"
	"propfi/internal/config"
	"propfi/internal/ingest"
)

func newCategorizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize <statement.csv>",
		Short: "Show keyword-rule category assignments for a statement's accounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read statement file: %w", err)
			}

			// Pure preview: no repository, no learned overrides.
			norm, err := ingest.NewNormalizer(schemaFromConfig(config.Load())).Normalize(cmd.Context(), buf)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, a := range categorize.New(categorize.DefaultRules()).AssignAll(norm.Stats.AccountNames) {
				fmt.Fprintf(out, "%-40s %-12s %.2f  %s\n", a.AccountName, a.Bucket, a.Confidence, a.Reasoning)
			}
			return nil
		},
	}
	return cmd
}
