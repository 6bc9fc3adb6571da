package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/AssilKherfi/Retention-Dashboard/calculations"
	"github.com/AssilKherfi/Retention-Dashboard/models"
)

// grid is one rendered table before it hits a concrete format
type grid struct {
	section Section
	title   string
	header  []string
	rows    [][]string
	// rates runs parallel to rows for retention cells, nil elsewhere
	rates [][]*float64
}

// cellStyle decides how values become text
type cellStyle struct {
	null    string
	display bool // human display: grouped amounts and percentages
	detail  bool // emit per-customer retarget rows
}

var (
	displayStyle = cellStyle{null: "-", display: true}
	rawStyle     = cellStyle{null: "", detail: true}
)

func (s cellStyle) count(v *int) string {
	if v == nil {
		return s.null
	}
	if s.display {
		return formatNumberWithCommas(int64(*v))
	}
	return strconv.Itoa(*v)
}

func (s cellStyle) delta(v *int) string {
	if v == nil {
		return s.null
	}
	if s.display && *v > 0 {
		return "+" + strconv.Itoa(*v)
	}
	return strconv.Itoa(*v)
}

func (s cellStyle) rate(v *float64) string {
	if v == nil {
		return s.null
	}
	if s.display {
		return fmt.Sprintf("%.1f%%", *v*100)
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func (s cellStyle) amount(v *float64) string {
	if v == nil {
		return s.null
	}
	if s.display {
		return formatAmount(*v)
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func (s cellStyle) num(v int) string {
	return s.count(&v)
}

// formatNumberWithCommas groups thousands with commas
func formatNumberWithCommas(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}

// formatAmount rounds to two decimals and groups the integer part
func formatAmount(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	whole := d.Truncate(0)
	frac := d.Sub(whole).Abs().StringFixed(2)[1:]

	text := formatNumberWithCommas(whole.IntPart())
	if d.IsNegative() && whole.IsZero() {
		text = "-" + text
	}
	return text + frac
}

func offsetHeader(first string, offsets []int) []string {
	header := make([]string, 0, len(offsets)+1)
	header = append(header, first)
	for _, off := range offsets {
		header = append(header, strconv.Itoa(off))
	}
	return header
}

// buildGrids turns the requested sections into grids, skipping sections
// whose data is absent from the document
func buildGrids(doc *Document, style cellStyle) []grid {
	var grids []grid
	for _, section := range doc.Sections {
		var g []grid
		switch section {
		case SectionCohort:
			g = cohortGrid(doc, style)
		case SectionRetention:
			g = retentionGrid(doc, style)
		case SectionChurn:
			g = churnGrid(doc, style)
		case SectionLTV:
			g = ltvGrid(doc, style)
		case SectionSummary:
			g = summaryGrid(doc, style)
		case SectionNewCustomers:
			g = newCustomersGrid(doc, style)
		case SectionRetarget:
			g = retargetGrids(doc, style)
		case SectionFunnel:
			g = funnelGrid(doc, style)
		}
		grids = append(grids, g...)
	}
	return grids
}

func cohortGrid(doc *Document, style cellStyle) []grid {
	if doc.Result == nil || doc.Result.Cohort == nil {
		return nil
	}
	m := doc.Result.Cohort
	g := grid{
		section: SectionCohort,
		title:   fmt.Sprintf("Active customers per cohort (%s)", m.Granularity),
		header:  offsetHeader("cohort", m.Offsets),
	}
	for i, cohort := range m.Cohorts {
		row := []string{cohort.Label}
		for j := range m.Offsets {
			row = append(row, style.count(m.Counts[i][j]))
		}
		g.rows = append(g.rows, row)
	}
	return []grid{g}
}

func retentionGrid(doc *Document, style cellStyle) []grid {
	if doc.Result == nil || doc.Result.Retention == nil {
		return nil
	}
	m := doc.Result.Retention
	g := grid{
		section: SectionRetention,
		title:   fmt.Sprintf("Retention rate (%s)", m.Granularity),
		header:  offsetHeader("cohort", m.Offsets),
	}
	for i, cohort := range m.Cohorts {
		row := []string{cohort.Label}
		rates := []*float64{nil}
		for j := range m.Offsets {
			row = append(row, style.rate(m.Rates[i][j]))
			rates = append(rates, m.Rates[i][j])
		}
		g.rows = append(g.rows, row)
		g.rates = append(g.rates, rates)
	}
	return []grid{g}
}

func churnGrid(doc *Document, style cellStyle) []grid {
	if doc.Result == nil || doc.Result.Churn == nil {
		return nil
	}
	m := doc.Result.Churn
	g := grid{
		section: SectionChurn,
		title:   fmt.Sprintf("Change in active customers (%s)", m.Granularity),
		header:  offsetHeader("cohort", m.Offsets),
	}
	for i, cohort := range m.Cohorts {
		row := []string{cohort.Label}
		for j := range m.Offsets {
			row = append(row, style.delta(m.Deltas[i][j]))
		}
		g.rows = append(g.rows, row)
	}
	return []grid{g}
}

func ltvGrid(doc *Document, style cellStyle) []grid {
	if doc.Result == nil || doc.Result.LTV == nil {
		return nil
	}
	g := grid{
		section: SectionLTV,
		title:   "Customer lifetime value",
		header: []string{
			"customer_id", "orders", "revenue", "first_order", "last_order",
			"lifetime_months", "avg_basket", "purchase_frequency", "ltv",
		},
	}
	for _, r := range doc.Result.LTV {
		revenue := r.Revenue.InexactFloat64()
		avg, ltv := r.AvgBasket, r.LTV
		g.rows = append(g.rows, []string{
			r.CustomerID,
			style.num(r.OrderCount),
			style.amount(&revenue),
			r.FirstOrder.Format(models.DateFormat),
			r.LastOrder.Format(models.DateFormat),
			strconv.FormatFloat(r.LifetimeMonths, 'f', 2, 64),
			style.amount(&avg),
			strconv.FormatFloat(r.Frequency, 'f', 4, 64),
			style.amount(&ltv),
		})
	}
	return []grid{g}
}

func summaryGrid(doc *Document, style cellStyle) []grid {
	if doc.Result == nil || doc.Result.Summary == nil {
		return nil
	}
	local := doc.LocalCurrency
	if local == "" {
		local = "local"
	}
	foreign := models.CurrencyEUR
	for _, s := range doc.Result.Summary {
		if s.ForeignCurrency != "" {
			foreign = s.ForeignCurrency
			break
		}
	}

	g := grid{
		section: SectionSummary,
		title:   "Mean LTV by business category",
		header: []string{
			"category", "customers", "margin_rate",
			"ltv_gmv_" + strings.ToLower(local), "ltv_margin_" + strings.ToLower(local),
			"ltv_gmv_" + strings.ToLower(foreign), "ltv_margin_" + strings.ToLower(foreign),
		},
	}
	for _, s := range doc.Result.Summary {
		margin, gmv, net := s.MarginRate, s.GMV, s.Margin
		g.rows = append(g.rows, []string{
			s.Category,
			style.num(s.Customers),
			style.rate(&margin),
			style.amount(&gmv),
			style.amount(&net),
			style.amount(s.GMVForeign),
			style.amount(s.MarginForeign),
		})
	}
	return []grid{g}
}

func newCustomersGrid(doc *Document, style cellStyle) []grid {
	if doc.Result == nil || doc.Result.NewCustomers == nil {
		return nil
	}
	g := grid{
		section: SectionNewCustomers,
		title:   "New customers per period",
		header:  []string{"period", "new_customers"},
	}
	for _, pc := range doc.Result.NewCustomers {
		g.rows = append(g.rows, []string{pc.Period.Label, style.num(pc.Count)})
	}
	return []grid{g}
}

func retargetGrids(doc *Document, style cellStyle) []grid {
	if doc.Retarget == nil {
		return nil
	}
	summary := grid{
		section: SectionRetarget,
		title:   fmt.Sprintf("Days since last order as of %s", doc.Retarget.Today.Format(models.DateFormat)),
		header:  []string{"days", "completed", "not_completed", "total"},
	}
	for _, seg := range doc.Retarget.Segments {
		summary.rows = append(summary.rows, []string{
			seg.Bucket.Label,
			style.num(len(seg.Completed)),
			style.num(len(seg.NotCompleted)),
			style.num(len(seg.Completed) + len(seg.NotCompleted)),
		})
	}
	grids := []grid{summary}
	if !style.detail {
		return grids
	}

	detail := grid{
		section: SectionRetarget,
		title:   "Retarget customers",
		header:  []string{"days", "customer_id", "origin", "last_order", "days_since", "has_completed"},
	}
	for _, seg := range doc.Retarget.Segments {
		for _, group := range [][]calculations.CustomerRecency{seg.Completed, seg.NotCompleted} {
			for _, c := range group {
				detail.rows = append(detail.rows, []string{
					seg.Bucket.Label,
					c.CustomerID,
					c.Origin,
					c.LastOrder.Format(models.DateFormat),
					strconv.Itoa(c.DaysSince),
					strconv.FormatBool(c.HasCompleted),
				})
			}
		}
	}
	return append(grids, detail)
}

func funnelGrid(doc *Document, style cellStyle) []grid {
	if doc.Funnel == nil {
		return nil
	}
	g := grid{
		section: SectionFunnel,
		title:   "Signup funnel",
		header: []string{
			"period", "registered", "ordered", "completed",
			"never_ordered", "ordered_not_completed", "conversion",
		},
	}
	for _, r := range doc.Funnel {
		conversion := r.ConversionRate()
		g.rows = append(g.rows, []string{
			r.Period.Label,
			style.num(r.Registered),
			style.num(r.Ordered),
			style.num(r.Completed),
			style.num(r.NeverOrdered),
			style.num(r.OrderedNotCompleted),
			style.rate(&conversion),
		})
	}
	return []grid{g}
}
