package calculations

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AssilKherfi/Retention-Dashboard/models"
)

// LTVRecord is one customer's lifetime value
type LTVRecord struct {
	CustomerID     string          `json:"customer_id"`
	OrderCount     int             `json:"order_count"`
	Revenue        decimal.Decimal `json:"revenue"`
	FirstOrder     time.Time       `json:"first_order"`
	LastOrder      time.Time       `json:"last_order"`
	LifetimeMonths float64         `json:"lifetime_months"`
	AvgBasket      float64         `json:"avg_basket"`
	Frequency      float64         `json:"purchase_frequency"`
	LTV            float64         `json:"ltv"`
}

// CategorySummary is the mean customer LTV of one business category, as
// gross value and margin, in the local and the foreign currency.
// Foreign figures are nil when no usable exchange rate was given.
type CategorySummary struct {
	Category        string   `json:"category"`
	Customers       int      `json:"customers"`
	MarginRate      float64  `json:"margin_rate"`
	GMV             float64  `json:"ltv_gmv"`
	Margin          float64  `json:"ltv_margin"`
	GMVForeign      *float64 `json:"ltv_gmv_foreign"`
	MarginForeign   *float64 `json:"ltv_margin_foreign"`
	ForeignCurrency string   `json:"foreign_currency,omitempty"`
}

// MarginTable maps a business category to its gross margin fraction
type MarginTable map[string]float64

// Rate returns the margin of category, 0 when the category is unknown.
// Keys match case-insensitively since config loaders lowercase map keys.
func (m MarginTable) Rate(category string) float64 {
	if rate, ok := m[category]; ok {
		return rate
	}
	for k, rate := range m {
		if strings.EqualFold(k, category) {
			return rate
		}
	}
	return 0
}

type customerAcc struct {
	count   int
	revenue decimal.Decimal
	first   time.Time
	last    time.Time
}

// CustomerLTV computes one record per customer, sorted by customer id.
// Customers whose orders all fall on one calendar day have no lifetime and
// are left out.
func CustomerLTV(orders []models.Order) []LTVRecord {
	accs := make(map[string]*customerAcc)
	for i := range orders {
		o := &orders[i]
		if !o.HasCustomer() {
			continue
		}
		day := o.Day()
		acc, ok := accs[o.CustomerID]
		if !ok {
			acc = &customerAcc{revenue: decimal.Zero, first: day, last: day}
			accs[o.CustomerID] = acc
		}
		acc.count++
		acc.revenue = acc.revenue.Add(o.Amount)
		if day.Before(acc.first) {
			acc.first = day
		}
		if day.After(acc.last) {
			acc.last = day
		}
	}

	records := make([]LTVRecord, 0, len(accs))
	for id, acc := range accs {
		days := int(acc.last.Sub(acc.first).Hours() / 24)
		lifetime := float64(days) / models.DaysPerMonth
		if lifetime <= 0 {
			continue
		}

		revenue := acc.revenue.InexactFloat64()
		basket := revenue / float64(acc.count)
		frequency := float64(acc.count) / lifetime

		records = append(records, LTVRecord{
			CustomerID:     id,
			OrderCount:     acc.count,
			Revenue:        acc.revenue,
			FirstOrder:     acc.first,
			LastOrder:      acc.last,
			LifetimeMonths: lifetime,
			AvgBasket:      basket,
			Frequency:      frequency,
			LTV:            frequency * basket * lifetime,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CustomerID < records[j].CustomerID
	})
	return records
}

// MeanLTV averages the LTV of records, 0 for none
func MeanLTV(records []LTVRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var total float64
	for _, r := range records {
		total += r.LTV
	}
	return total / float64(len(records))
}

// ConvertCurrency turns a local amount into foreign units given a rate in
// local units per one foreign unit
func ConvertCurrency(amount, rate float64) *float64 {
	if rate <= 0 {
		return nil
	}
	v := amount / rate
	return &v
}

// categoryKey matches categories the way the filter and margin table do
func categoryKey(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// SummarizeByCategory computes customer LTV independently inside each
// category and averages it. Categories without any customer having a
// lifetime are omitted. Rows follow the order of categories and carry the
// configured label. Categories match case-insensitively.
func SummarizeByCategory(orders []models.Order, categories []string, margins MarginTable, fxRate float64, foreignCurrency string) []CategorySummary {
	byCategory := make(map[string][]models.Order)
	for _, o := range orders {
		key := categoryKey(o.BusinessCategory)
		byCategory[key] = append(byCategory[key], o)
	}

	summaries := make([]CategorySummary, 0, len(categories))
	for _, category := range categories {
		records := CustomerLTV(byCategory[categoryKey(category)])
		if len(records) == 0 {
			continue
		}

		gmv := MeanLTV(records)
		rate := margins.Rate(category)
		margin := gmv * rate

		s := CategorySummary{
			Category:      category,
			Customers:     len(records),
			MarginRate:    rate,
			GMV:           gmv,
			Margin:        margin,
			GMVForeign:    ConvertCurrency(gmv, fxRate),
			MarginForeign: ConvertCurrency(margin, fxRate),
		}
		if s.GMVForeign != nil {
			s.ForeignCurrency = foreignCurrency
		}
		summaries = append(summaries, s)
	}
	return summaries
}
