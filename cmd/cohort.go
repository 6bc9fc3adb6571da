package cmd

import (
	"github.com/spf13/cobra"

	"github.com/AssilKherfi/Retention-Dashboard/internal"
	"github.com/AssilKherfi/Retention-Dashboard/output"
)

func newCohortCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cohort",
		Short: "Cohort, retention and churn tables",
		Long: `Group customers by the period of their first order and count how many
of them order again in each following period.

Prints the active customer counts, the retention rates, the period over
period change and the number of new customers per period.

Examples:
  retention cohort --orders orders.csv
  retention cohort --granularity week --origin diaspora --lookback 12
  retention cohort --format csv --output cohorts.csv
  retention cohort --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			show := func(report *internal.Report) error {
				printLoadStats(cmd.ErrOrStderr(), app, report)
				return render(cmd, app, "Cohort retention", report, nil, nil, output.CohortSections...)
			}

			if !app.Config().Data.Watch {
				report, err := app.Analyze(cmd.Context())
				if err != nil {
					return err
				}
				return show(report)
			}

			return app.WatchAndRun(cmd.Context(), func(report *internal.Report, err error) {
				if err == nil {
					err = show(report)
				}
				if err != nil {
					app.Logger().Errorf("Analysis failed: %v", err)
				}
			})
		},
	}
	cmd.Flags().BoolP("watch", "w", false, "re-run whenever the orders file changes")
	return cmd
}
