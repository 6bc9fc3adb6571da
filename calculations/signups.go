package calculations

import (
	"github.com/AssilKherfi/Retention-Dashboard/models"
)

// PeriodCount is a count attached to a period
type PeriodCount struct {
	Period Period `json:"period"`
	Count  int    `json:"count"`
}

// FunnelRow describes what happened to the users registered in one period
type FunnelRow struct {
	Period              Period `json:"period"`
	Registered          int    `json:"registered"`
	Ordered             int    `json:"ordered"`
	Completed           int    `json:"completed"`
	NeverOrdered        int    `json:"never_ordered"`
	OrderedNotCompleted int    `json:"ordered_not_completed"`
}

// ConversionRate is the share of registered users with a completed order
func (r FunnelRow) ConversionRate() float64 {
	if r.Registered == 0 {
		return 0
	}
	return float64(r.Completed) / float64(r.Registered)
}

// NewCustomersByPeriod counts customers by cohort, oldest period first
func NewCustomersByPeriod(orders []models.Order, g Granularity) []PeriodCount {
	counts := make(map[int]*PeriodCount)
	for _, cohort := range CohortOf(orders, g) {
		pc, ok := counts[cohort.Index]
		if !ok {
			pc = &PeriodCount{Period: cohort}
			counts[cohort.Index] = pc
		}
		pc.Count++
	}
	return sortedCounts(counts)
}

// SignupFunnel buckets users by registration period and follows them
// through their orders. Users registered twice are counted once, at their
// earliest registration.
func SignupFunnel(users []models.User, orders []models.Order, g Granularity) []FunnelRow {
	registered := make(map[string]models.User)
	for _, u := range users {
		if u.CustomerID == "" || u.RegisteredAt.IsZero() {
			continue
		}
		if cur, ok := registered[u.CustomerID]; !ok || u.RegisteredAt.Before(cur.RegisteredAt) {
			registered[u.CustomerID] = u
		}
	}

	ordered := make(map[string]bool)
	completed := make(map[string]bool)
	for i := range orders {
		o := &orders[i]
		if !o.HasCustomer() {
			continue
		}
		ordered[o.CustomerID] = true
		if o.Status.IsCompleted() {
			completed[o.CustomerID] = true
		}
	}

	rows := make(map[int]*FunnelRow)
	for id, u := range registered {
		p := g.PeriodOf(u.RegisteredAt)
		row, ok := rows[p.Index]
		if !ok {
			row = &FunnelRow{Period: p}
			rows[p.Index] = row
		}
		row.Registered++
		switch {
		case completed[id]:
			row.Ordered++
			row.Completed++
		case ordered[id]:
			row.Ordered++
			row.OrderedNotCompleted++
		default:
			row.NeverOrdered++
		}
	}

	periods := make([]Period, 0, len(rows))
	for _, r := range rows {
		periods = append(periods, r.Period)
	}
	sortPeriods(periods)

	out := make([]FunnelRow, 0, len(periods))
	for _, p := range periods {
		out = append(out, *rows[p.Index])
	}
	return out
}

func sortedCounts(counts map[int]*PeriodCount) []PeriodCount {
	periods := make([]Period, 0, len(counts))
	for _, pc := range counts {
		periods = append(periods, pc.Period)
	}
	sortPeriods(periods)

	out := make([]PeriodCount, 0, len(periods))
	for _, p := range periods {
		out = append(out, *counts[p.Index])
	}
	return out
}
