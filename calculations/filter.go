package calculations

import (
	"strings"
	"time"

	"github.com/AssilKherfi/Retention-Dashboard/models"
)

// OrderFilter restricts the orders a computation sees. Empty sets match
// everything and zero dates leave that side of the window open.
type OrderFilter struct {
	Statuses   []models.OrderStatus `json:"statuses,omitempty"`
	Origins    []string             `json:"origins,omitempty"`
	Categories []string             `json:"categories,omitempty"`
	Start      time.Time            `json:"start,omitempty"`
	End        time.Time            `json:"end,omitempty"`

	// LookbackPeriods keeps the last N periods up to End, End included.
	// When End is zero the latest order date anchors the window.
	LookbackPeriods int `json:"lookback_periods,omitempty"`
}

// Window resolves the inclusive date window for the given granularity.
// latest is used as the anchor when a lookback is set without an end date.
func (f OrderFilter) Window(g Granularity, latest time.Time) (start, end time.Time) {
	if !f.Start.IsZero() {
		start = models.CalendarDay(f.Start)
	}
	if !f.End.IsZero() {
		end = models.CalendarDay(f.End)
	}
	if f.LookbackPeriods > 0 {
		anchor := end
		if anchor.IsZero() {
			anchor = models.CalendarDay(latest)
		}
		if !anchor.IsZero() {
			lookback := g.Shift(g.Truncate(anchor), -(f.LookbackPeriods - 1))
			if lookback.After(start) {
				start = lookback
			}
		}
	}
	return start, end
}

// Apply returns the matching orders in a new slice
func (f OrderFilter) Apply(orders []models.Order, g Granularity) []models.Order {
	var latest time.Time
	if f.LookbackPeriods > 0 && f.End.IsZero() {
		for i := range orders {
			if d := orders[i].Day(); d.After(latest) {
				latest = d
			}
		}
	}
	start, end := f.Window(g, latest)

	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, o.Status) {
			continue
		}
		if len(f.Origins) > 0 && !containsFold(f.Origins, o.Origin) {
			continue
		}
		if len(f.Categories) > 0 && !containsFold(f.Categories, o.BusinessCategory) {
			continue
		}
		day := o.Day()
		if !start.IsZero() && day.Before(start) {
			continue
		}
		if !end.IsZero() && day.After(end) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// IsZero reports whether the filter lets every order through
func (f OrderFilter) IsZero() bool {
	return len(f.Statuses) == 0 && len(f.Origins) == 0 && len(f.Categories) == 0 &&
		f.Start.IsZero() && f.End.IsZero() && f.LookbackPeriods == 0
}

func containsStatus(set []models.OrderStatus, s models.OrderStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsFold(set []string, s string) bool {
	for _, v := range set {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
