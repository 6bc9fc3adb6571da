package cmd

import (
	"github.com/spf13/cobra"

	"github.com/AssilKherfi/Retention-Dashboard/errors"
	"github.com/AssilKherfi/Retention-Dashboard/output"
)

func newSignupsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "signups",
		Short: "New customers and the signup funnel per period",
		Long: `Count the customers whose first order falls in each period and, when a
users export is configured, follow every registration period through to
a first order and a first completed purchase.

Examples:
  retention signups --orders orders.csv --users users.csv --granularity week
  retention signups --format json`,
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

			sections := []output.Section{output.SectionNewCustomers}
			funnel, err := app.Funnel(cmd.Context())
			switch {
			case err == nil:
				sections = append(sections, output.SectionFunnel)
			case errors.IsType(err, errors.ErrorTypeDataMissing):
				app.Logger().Infof("No users export configured, skipping the signup funnel")
				funnel = nil
			default:
				return err
			}
			return render(cmd, app, "Signups", report, nil, funnel, sections...)
		},
	}
}
