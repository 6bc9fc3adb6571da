package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/AssilKherfi/Retention-Dashboard/calculations"
)

// Section names one table of a document
type Section string

const (
	SectionCohort       Section = "cohort"
	SectionRetention    Section = "retention"
	SectionChurn        Section = "churn"
	SectionLTV          Section = "ltv"
	SectionSummary      Section = "summary"
	SectionNewCustomers Section = "new_customers"
	SectionRetarget     Section = "retarget"
	SectionFunnel       Section = "funnel"
)

// CohortSections are rendered by the cohort command
var CohortSections = []Section{SectionCohort, SectionRetention, SectionChurn, SectionNewCustomers}

// LTVSections are rendered by the ltv command
var LTVSections = []Section{SectionSummary, SectionLTV}

// Document is what gets rendered. Sections whose data is missing are skipped.
type Document struct {
	Title         string
	GeneratedAt   time.Time
	LocalCurrency string
	Sections      []Section
	Result        *calculations.Result
	Retarget      *calculations.RetargetReport
	Funnel        []calculations.FunnelRow
}

// Formatter renders a document
type Formatter interface {
	Format(w io.Writer, doc *Document) error
}

// Options configures formatters
type Options struct {
	NoColor bool
}

// New returns the formatter for table, json or csv
func New(format string, opts Options) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", "table":
		return NewTableFormatter(opts.NoColor), nil
	case "json":
		return NewJSONFormatter(), nil
	case "csv":
		return NewCSVFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
