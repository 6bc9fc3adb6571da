package internal

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/AssilKherfi/Retention-Dashboard/config"
	"github.com/AssilKherfi/Retention-Dashboard/errors"
	"github.com/AssilKherfi/Retention-Dashboard/output"
)

// Publisher delivers a finished report somewhere
type Publisher interface {
	Publish(ctx context.Context, report *Report) error
}

// SlackPublisher posts a text digest of a report to a channel
type SlackPublisher struct {
	client   *slack.Client
	channel  string
	currency string
	metrics  *Metrics
}

// NewSlackPublisher creates a publisher from the report section. Extra
// client options, such as a different API URL, are passed through.
func NewSlackPublisher(cfg *config.Config, metrics *Metrics, opts ...slack.Option) (*SlackPublisher, error) {
	if cfg.Report.SlackToken == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "report.slack_token", "a slack token is required to publish")
	}
	if cfg.Report.SlackChannel == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "report.slack_channel", "a slack channel is required to publish")
	}
	return &SlackPublisher{
		client:   slack.New(cfg.Report.SlackToken, opts...),
		channel:  cfg.Report.SlackChannel,
		currency: cfg.Currency.Base,
		metrics:  metrics,
	}, nil
}

// Publish posts the digest
func (p *SlackPublisher) Publish(ctx context.Context, report *Report) error {
	text, err := Digest(report, p.currency)
	if err == nil {
		_, _, err = p.client.PostMessageContext(ctx, p.channel, slack.MsgOptionText(text, false))
	}
	p.metrics.ObservePublish(err)
	if err != nil {
		return errors.Wrap(errors.ErrorTypeNetwork, "slack.publish", err)
	}
	return nil
}

// Digest is the plain text summary posted for a report: headline numbers
// followed by the category summary and retention tables
func Digest(report *Report, currency string) (string, error) {
	if report == nil || report.Result == nil {
		return "", fmt.Errorf("nothing to publish")
	}
	res := report.Result

	var b strings.Builder
	fmt.Fprintf(&b, "*Retention report* %s (run %s)\n", report.GeneratedAt.Format("2006-01-02 15:04"), report.RunID)
	fmt.Fprintf(&b, "source %s, %d orders analysed", report.Source, res.FilteredOrders)
	if dropped := report.LoadStats.Dropped(); dropped > 0 {
		fmt.Fprintf(&b, ", %d rows dropped", dropped)
	}
	b.WriteString("\n")
	if res.Cohort != nil && res.Cohort.Rows() > 0 {
		last := res.Cohort.Rows() - 1
		fmt.Fprintf(&b, "latest cohort %s: %d new customers\n", res.Cohort.Cohorts[last].Label, res.Cohort.Size(last))
	}

	var tables bytes.Buffer
	doc := &output.Document{
		LocalCurrency: currency,
		Sections:      []output.Section{output.SectionSummary, output.SectionRetention},
		Result:        res,
	}
	if err := output.NewTableFormatter(true).Format(&tables, doc); err != nil {
		return "", err
	}
	b.WriteString("```")
	b.WriteString(strings.TrimLeft(tables.String(), "\n"))
	b.WriteString("```")
	return b.String(), nil
}
