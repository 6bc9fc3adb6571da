package cmd

import (
	"github.com/spf13/cobra"

	"github.com/AssilKherfi/Retention-Dashboard/output"
)

func newLTVCmd(opts *rootOptions) *cobra.Command {
	var perCustomer bool

	cmd := &cobra.Command{
		Use:   "ltv",
		Short: "Customer lifetime value by business category",
		Long: `Compute each customer's lifetime value and the mean LTV of every business
category, as gross value and margin, in the local and the foreign currency.

Lifetime is measured in 30 day months between the first and the last
order; customers with a single day of activity are left out.

Examples:
  retention ltv --orders orders.csv --fx-rate 145.2
  retention ltv --fx-provider http --format json
  retention ltv --customers --format csv --output ltv.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.Analyze(cmd.Context())
			if err != nil {
				return err
			}
			printLoadStats(cmd.ErrOrStderr(), app, report)

			sections := []output.Section{output.SectionSummary}
			if perCustomer {
				sections = output.LTVSections
			}
			return render(cmd, app, "Customer lifetime value", report, nil, nil, sections...)
		},
	}
	cmd.Flags().BoolVar(&perCustomer, "customers", false, "also list every customer")
	return cmd
}
