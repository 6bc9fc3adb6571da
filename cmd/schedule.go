package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/AssilKherfi/Retention-Dashboard/errors"
	"github.com/AssilKherfi/Retention-Dashboard/internal"
)

func newScheduleCmd(opts *rootOptions) *cobra.Command {
	var runNow bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Post a retention digest to Slack on a cron schedule",
		Long: `Run the analysis on a standard 5-field cron schedule and post a digest
of the category LTV summary and the retention table to a Slack channel.

The Slack token is read from report.slack_token, or the
RETENTION_REPORT_SLACK_TOKEN environment variable. With metrics enabled
the Prometheus counters are served on report.metrics_addr.

Examples:
  retention schedule --schedule "0 8 * * 1" --channel "#growth"
  retention schedule --now`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			cfg := app.Config()
			pub, err := internal.NewSlackPublisher(cfg, app.Metrics())
			if err != nil {
				return err
			}
			job := app.DigestJob(pub)

			ctx := cmd.Context()
			if m := app.Metrics(); m != nil {
				srv := internal.NewMetricsServer(cfg.Report.MetricsAddr, m)
				errc := make(chan error, 1)
				srv.Start(errc)
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Stop(shutdownCtx)
				}()
				var cancel context.CancelFunc
				ctx, cancel = context.WithCancel(ctx)
				defer cancel()
				go func() {
					select {
					case err := <-errc:
						app.Logger().Errorf("Metrics server stopped: %v", err)
						cancel()
					case <-ctx.Done():
					}
				}()
				app.Logger().Infof("Serving metrics on %s", cfg.Report.MetricsAddr)
			}

			if runNow {
				if err := errors.SafeRun("digest", func() error { return job(ctx) }); err != nil {
					return err
				}
			}

			sched := internal.NewScheduler(app.Location(), app.Logger())
			if _, err := sched.Add(cfg.Report.Schedule, "digest", job); err != nil {
				return err
			}
			return sched.Run(ctx)
		},
	}
	cmd.Flags().String("schedule", "", "cron expression, e.g. \"0 8 * * 1\" for Mondays 08:00")
	cmd.Flags().String("channel", "", "Slack channel to post to")
	cmd.Flags().String("metrics-addr", "", "address serving /metrics when metrics are enabled")
	cmd.Flags().BoolVar(&runNow, "now", false, "post a digest immediately, then follow the schedule")
	return cmd
}
