package output

import (
	"io"
	"time"

	"github.com/bytedance/sonic"

	"github.com/AssilKherfi/Retention-Dashboard/calculations"
)

// jsonDocument keeps only the requested sections
type jsonDocument struct {
	Title          string                         `json:"title,omitempty"`
	GeneratedAt    *time.Time                     `json:"generated_at,omitempty"`
	Params         *calculations.Params           `json:"params,omitempty"`
	InputOrders    *int                           `json:"input_orders,omitempty"`
	FilteredOrders *int                           `json:"filtered_orders,omitempty"`
	Cohort         *calculations.CohortMatrix     `json:"cohort,omitempty"`
	Retention      *calculations.RetentionMatrix  `json:"retention,omitempty"`
	Churn          *calculations.ChurnMatrix      `json:"churn,omitempty"`
	LTV            []calculations.LTVRecord       `json:"ltv,omitempty"`
	Summary        []calculations.CategorySummary `json:"summary,omitempty"`
	NewCustomers   []calculations.PeriodCount     `json:"new_customers,omitempty"`
	Retarget       *calculations.RetargetReport   `json:"retarget,omitempty"`
	Funnel         []calculations.FunnelRow       `json:"funnel,omitempty"`
}

// JSONFormatter writes an indented JSON object
type JSONFormatter struct {
	api sonic.API
}

// NewJSONFormatter creates a JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{api: sonic.ConfigStd}
}

// Format writes the requested sections. Null cells stay null.
func (f *JSONFormatter) Format(w io.Writer, doc *Document) error {
	out := jsonDocument{Title: doc.Title}
	if !doc.GeneratedAt.IsZero() {
		at := doc.GeneratedAt
		out.GeneratedAt = &at
	}

	if res := doc.Result; res != nil {
		out.Params = &res.Params
		out.InputOrders = &res.InputOrders
		out.FilteredOrders = &res.FilteredOrders
	}

	for _, section := range doc.Sections {
		switch section {
		case SectionCohort:
			if doc.Result != nil {
				out.Cohort = doc.Result.Cohort
			}
		case SectionRetention:
			if doc.Result != nil {
				out.Retention = doc.Result.Retention
			}
		case SectionChurn:
			if doc.Result != nil {
				out.Churn = doc.Result.Churn
			}
		case SectionLTV:
			if doc.Result != nil {
				out.LTV = doc.Result.LTV
			}
		case SectionSummary:
			if doc.Result != nil {
				out.Summary = doc.Result.Summary
			}
		case SectionNewCustomers:
			if doc.Result != nil {
				out.NewCustomers = doc.Result.NewCustomers
			}
		case SectionRetarget:
			out.Retarget = doc.Retarget
		case SectionFunnel:
			out.Funnel = doc.Funnel
		}
	}

	data, err := f.api.MarshalIndent(&out, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
