package calculations

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/AssilKherfi/Retention-Dashboard/models"
)

// Granularity is the length of a cohort period
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// ParseGranularity accepts day|week|month and the adjective forms daily|weekly|monthly
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "daily", "d":
		return Day, nil
	case "week", "weekly", "w":
		return Week, nil
	case "month", "monthly", "m", "":
		return Month, nil
	default:
		return "", fmt.Errorf("unknown granularity %q (want day, week or month)", s)
	}
}

// Valid reports whether g is one of the supported granularities
func (g Granularity) Valid() bool {
	return g == Day || g == Week || g == Month
}

// Period is one calendar period at a given granularity
type Period struct {
	Label string    `json:"label"`
	Index int       `json:"index"`
	Start time.Time `json:"start"`
}

// Truncate returns the first calendar day of the period containing t.
// Weeks start on Monday.
func (g Granularity) Truncate(t time.Time) time.Time {
	day := models.CalendarDay(t)
	switch g {
	case Day:
		return day
	case Week:
		// Monday=0 ... Sunday=6
		back := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -back)
	default:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// Shift moves a period start by n periods
func (g Granularity) Shift(start time.Time, n int) time.Time {
	switch g {
	case Day:
		return start.AddDate(0, 0, n)
	case Week:
		return start.AddDate(0, 0, 7*n)
	default:
		return start.AddDate(0, n, 0)
	}
}

// PeriodOf buckets t into its period
func (g Granularity) PeriodOf(t time.Time) Period {
	start := g.Truncate(t)
	switch g {
	case Day:
		return Period{Label: start.Format(models.DateFormat), Index: dayIndex(start), Start: start}
	case Week:
		// 1970-01-05 was the first Monday after the epoch, every Monday sits a multiple of 7 away
		return Period{Label: start.Format(models.DateFormat), Index: (dayIndex(start) - 4) / 7, Start: start}
	default:
		return Period{Label: start.Format(models.MonthFormat), Index: start.Year()*12 + int(start.Month()) - 1, Start: start}
	}
}

func dayIndex(day time.Time) int {
	return int(day.Unix() / 86400)
}

// Assignment pairs an order with its period and the cohort of its customer
type Assignment struct {
	Order  models.Order `json:"order"`
	Period Period       `json:"period"`
	Cohort Period       `json:"cohort"`
}

// Offset is the distance in periods between the order and its cohort
func (a Assignment) Offset() int {
	return a.Period.Index - a.Cohort.Index
}

// AssignPeriods labels every attributable order with its period and cohort.
// Orders without a customer id are dropped. The result keeps input order.
func AssignPeriods(orders []models.Order, g Granularity) []Assignment {
	first := make(map[string]time.Time)
	for i := range orders {
		o := &orders[i]
		if !o.HasCustomer() {
			continue
		}
		day := o.Day()
		if cur, ok := first[o.CustomerID]; !ok || day.Before(cur) {
			first[o.CustomerID] = day
		}
	}

	assignments := make([]Assignment, 0, len(orders))
	for _, o := range orders {
		if !o.HasCustomer() {
			continue
		}
		assignments = append(assignments, Assignment{
			Order:  o,
			Period: g.PeriodOf(o.Date),
			Cohort: g.PeriodOf(first[o.CustomerID]),
		})
	}
	return assignments
}

// CohortOf returns the cohort of every customer in orders
func CohortOf(orders []models.Order, g Granularity) map[string]Period {
	cohorts := make(map[string]Period)
	for _, a := range AssignPeriods(orders, g) {
		cohorts[a.Order.CustomerID] = a.Cohort
	}
	return cohorts
}

func sortPeriods(periods []Period) {
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Index < periods[j].Index
	})
}
