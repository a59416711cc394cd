package cli

import (
	"github.com/spf13/cobra"

	"propfi/internal/core"
)

func newCorrectCommand() *cobra.Command {
	var property, account, bucket string

	cmd := &cobra.Command{
		Use:   "correct",
		Short: "Record a corrected bucket for an account name",
		Long: `Correct stores a user-supplied category for an account name.
Later ingestion runs for the property replay the correction ahead of the
keyword rules.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := core.ParseBucket(bucket)
			if err != nil {
				return err
			}

			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.service.Correct(cmd.Context(), property, account, b)
		},
	}

	cmd.Flags().StringVarP(&property, "property", "p", "", "target property identifier (required)")
	cmd.Flags().StringVarP(&account, "account", "a", "", "exact account name (required)")
	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "bucket: income, utilities, maintenance, insurance, property_tax, other")
	_ = cmd.MarkFlagRequired("property")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("bucket")
	return cmd
}
