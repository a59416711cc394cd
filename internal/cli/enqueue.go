package cli

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"propfi/internal/amqp"
)

func newEnqueueCommand() *cobra.Command {
	var property string

	cmd := &cobra.Command{
		Use:   "enqueue <statement.csv>",
		Short: "Queue a statement file for the ingest worker",
		Long: `Enqueue publishes an ingestion job to the broker instead of running
the pipeline in-process. The worker reads the file from the given path,
so the path must be reachable from where the worker runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve statement path: %w", err)
			}

			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.events == nil {
				return fmt.Errorf("enqueue requires a broker: set AMQP_URL")
			}

			msg := amqp.NewIngestionJobMessage(uuid.NewString(), property, path)
			if err := a.events.PublishIngestionJob(cmd.Context(), msg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "queued run %s for property %s: %s\n", msg.RunID, msg.PropertyID, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&property, "property", "p", "", "target property identifier (required)")
	_ = cmd.MarkFlagRequired("property")
	return cmd
}
