package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AssilKherfi/Retention-Dashboard/calculations"
	"github.com/AssilKherfi/Retention-Dashboard/config"
	"github.com/AssilKherfi/Retention-Dashboard/internal"
	"github.com/AssilKherfi/Retention-Dashboard/logging"
	"github.com/AssilKherfi/Retention-Dashboard/output"
)

// rootOptions holds the flags that are not config keys
type rootOptions struct {
	cfgFile string
	// appOptions are appended when the App is built, tests use them to
	// swap the clock or the source
	appOptions []internal.Option
}

// NewRootCommand builds the command tree
func NewRootCommand(appOpts ...internal.Option) *cobra.Command {
	opts := &rootOptions{appOptions: appOpts}

	root := &cobra.Command{
		Use:   "retention",
		Short: "Cohort retention and customer lifetime value reports",
		Long: `retention turns order exports into cohort retention tables and
customer lifetime value reports.

Orders are read from CSV, JSON or JSONL files, S3 objects or a SQL query.
Customers are grouped by the period of their first order and followed
through later periods. LTV is summarised per business category, as gross
value and margin, in the local and a foreign currency.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "", "config file (default ./retention.yaml or ~/.config/retention/config.yaml)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-file", "", "write logs to this file instead of stderr")
	pf.Bool("debug", false, "enable debug logging")
	pf.BoolP("verbose", "v", false, "print load statistics")

	pf.String("source", "", "order source (file, s3, sql)")
	pf.String("orders", "", "orders export file")
	pf.String("users", "", "registered users export file")
	pf.String("input-format", "", "input format (csv, json, jsonl), detected from the extension by default")
	pf.StringP("granularity", "g", "", "cohort period (day, week, month)")
	pf.StringSlice("status", nil, "keep only these order statuses")
	pf.StringSlice("origin", nil, "keep only these customer origins")
	pf.StringSlice("category", nil, "keep only these business categories")
	pf.String("start", "", "first order date, YYYY-MM-DD")
	pf.String("end", "", "last order date, YYYY-MM-DD")
	pf.Int("lookback", 0, "keep only the last N periods")
	pf.String("margins-file", "", "YAML file of margin rates per category")
	pf.Float64("fx-rate", 0, "local units per one foreign unit")
	pf.String("fx-provider", "", "exchange rate provider (static, http)")
	pf.Bool("cache", true, "memoise results")
	pf.String("cache-dir", "", "directory of the badger result cache")
	pf.StringP("format", "f", "", "output format (table, json, csv)")
	pf.StringP("output", "o", "", "write the report to this file")
	pf.Bool("no-color", false, "disable colored output")

	root.AddCommand(
		newCohortCmd(opts),
		newLTVCmd(opts),
		newRetargetCmd(opts),
		newSignupsCmd(opts),
		newScheduleCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command tree with ctx
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// loadConfiguration merges defaults, files, environment and flags
func (o *rootOptions) loadConfiguration(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.cfgFile, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.App.Debug {
		cfg.App.LogLevel = "debug"
	}
	if err := logging.InitLogger(logging.Options{
		Level:   cfg.App.LogLevel,
		File:    cfg.App.LogFile,
		NoColor: cfg.Report.NoColor,
	}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp loads the configuration and builds the application
func (o *rootOptions) newApp(cmd *cobra.Command) (*internal.App, error) {
	cfg, err := o.loadConfiguration(cmd)
	if err != nil {
		return nil, err
	}
	return internal.NewApp(cmd.Context(), cfg, o.appOptions...)
}

// render builds the document and writes it to the configured output file,
// or to the command output
func render(cmd *cobra.Command, app *internal.App, title string, report *internal.Report,
	retarget *calculations.RetargetReport, funnel []calculations.FunnelRow, sections ...output.Section) error {
	exp, err := internal.NewExporter(app.Config())
	if err != nil {
		return err
	}
	doc := exp.Document(title, report, retarget, funnel, sections...)
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = app.Clock().Now()
	}

	res, err := exp.Export(doc, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if res.OutputFile != "" {
		app.Logger().Infof("Wrote %d bytes to %s", res.Bytes, res.OutputFile)
	}
	return nil
}

func printLoadStats(w io.Writer, app *internal.App, report *internal.Report) {
	if !app.Config().App.Verbose || report == nil {
		return
	}
	fmt.Fprintf(w, "source:   %s\n", report.Source)
	fmt.Fprintf(w, "rows:     %s\n", report.LoadStats)
	fmt.Fprintf(w, "analysed: %d of %d orders\n", report.Result.FilteredOrders, report.Result.InputOrders)
	fmt.Fprintf(w, "cached:   %t\n", report.CacheHit)
	fmt.Fprintf(w, "run:      %s in %s\n", report.RunID, report.Duration)
}
