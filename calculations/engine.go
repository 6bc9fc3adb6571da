package calculations

import (
	"fmt"

	"github.com/AssilKherfi/Retention-Dashboard/models"
)

// Params configures one pipeline run. Everything the computation depends on
// is carried here.
type Params struct {
	Granularity     Granularity `json:"granularity"`
	Filter          OrderFilter `json:"filter"`
	LTVCategories   []string    `json:"ltv_categories"`
	Margins         MarginTable `json:"margins"`
	FXRate          float64     `json:"fx_rate"`
	ForeignCurrency string      `json:"foreign_currency"`
}

// DefaultParams returns monthly cohorts over the default LTV categories
func DefaultParams() Params {
	return Params{
		Granularity:     Month,
		LTVCategories:   append([]string(nil), models.DefaultLTVCategories...),
		Margins:         MarginTable(models.DefaultMargins()),
		ForeignCurrency: models.CurrencyEUR,
	}
}

// Validate checks the parameters before a run
func (p Params) Validate() error {
	if !p.Granularity.Valid() {
		return fmt.Errorf("invalid granularity %q", p.Granularity)
	}
	if p.FXRate < 0 {
		return fmt.Errorf("fx rate cannot be negative: %v", p.FXRate)
	}
	for cat, m := range p.Margins {
		if m < 0 || m > 1 {
			return fmt.Errorf("margin for %q must be between 0 and 1, got %v", cat, m)
		}
	}
	if p.Filter.LookbackPeriods < 0 {
		return fmt.Errorf("lookback periods cannot be negative: %d", p.Filter.LookbackPeriods)
	}
	return nil
}

// Result holds every table derived from one run
type Result struct {
	Params         Params            `json:"params"`
	InputOrders    int               `json:"input_orders"`
	FilteredOrders int               `json:"filtered_orders"`
	Cohort         *CohortMatrix     `json:"cohort"`
	Retention      *RetentionMatrix  `json:"retention"`
	Churn          *ChurnMatrix      `json:"churn"`
	LTV            []LTVRecord       `json:"ltv"`
	Summary        []CategorySummary `json:"summary"`
	NewCustomers   []PeriodCount     `json:"new_customers"`
}

// Run computes cohorts, retention, churn and LTV from orders.
// The input is not modified and nothing outside params is read, so equal
// inputs always give equal results.
func Run(orders []models.Order, params Params) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	g := params.Granularity

	filtered := params.Filter.Apply(orders, g)
	cohort := BuildCohortMatrix(AssignPeriods(filtered, g), g)

	ltvOrders := filtered
	if len(params.LTVCategories) > 0 {
		ltvOrders = OrderFilter{Categories: params.LTVCategories}.Apply(filtered, g)
	}

	// the category summary ignores the category filter, it splits by category itself
	summaryFilter := params.Filter
	summaryFilter.Categories = nil
	summaryOrders := summaryFilter.Apply(orders, g)

	return &Result{
		Params:         params,
		InputOrders:    len(orders),
		FilteredOrders: len(filtered),
		Cohort:         cohort,
		Retention:      Retention(cohort),
		Churn:          Churn(cohort),
		LTV:            CustomerLTV(ltvOrders),
		Summary:        SummarizeByCategory(summaryOrders, params.LTVCategories, params.Margins, params.FXRate, params.ForeignCurrency),
		NewCustomers:   NewCustomersByPeriod(filtered, g),
	}, nil
}
