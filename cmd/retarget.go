package cmd

import (
	"github.com/spf13/cobra"

	"github.com/AssilKherfi/Retention-Dashboard/output"
)

func newRetargetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "retarget",
		Short: "Customers grouped by days since their last order",
		Long: `Segment customers by the number of days since their last order
(0-6, 7-13, 14-20, 21-29, 30-59, 60-89, 90-119 and 120+), split between
customers with at least one completed purchase and those without.

The csv and json formats list every customer, the table format prints
the counts per segment.

Examples:
  retention retarget --orders orders.csv
  retention retarget --origin diaspora --format csv --output retarget.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.Retarget(cmd.Context())
			if err != nil {
				return err
			}
			app.Logger().Infof("Segmented %d customers as of %s", report.Total(), report.Today.Format("2006-01-02"))
			return render(cmd, app, "Retargeting", nil, report, nil, output.SectionRetarget)
		},
	}
}
