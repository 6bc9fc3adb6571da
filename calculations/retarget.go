package calculations

import (
	"sort"
	"time"

	"github.com/AssilKherfi/Retention-Dashboard/models"
)

// RecencyBucket is a range of days since a customer's last order
type RecencyBucket struct {
	Label   string `json:"label"`
	MinDays int    `json:"min_days"`
	MaxDays int    `json:"max_days"` // -1 means unbounded
}

// Contains reports whether days falls in the bucket
func (b RecencyBucket) Contains(days int) bool {
	return days >= b.MinDays && (b.MaxDays < 0 || days <= b.MaxDays)
}

// RecencyBuckets used for retargeting campaigns
var RecencyBuckets = []RecencyBucket{
	{Label: "0-6", MinDays: 0, MaxDays: 6},
	{Label: "7-13", MinDays: 7, MaxDays: 13},
	{Label: "14-20", MinDays: 14, MaxDays: 20},
	{Label: "21-29", MinDays: 21, MaxDays: 29},
	{Label: "30-59", MinDays: 30, MaxDays: 59},
	{Label: "60-89", MinDays: 60, MaxDays: 89},
	{Label: "90-119", MinDays: 90, MaxDays: 119},
	{Label: "120+", MinDays: 120, MaxDays: -1},
}

// CustomerRecency is the retargeting view of one customer
type CustomerRecency struct {
	CustomerID   string    `json:"customer_id"`
	Origin       string    `json:"origin"`
	LastOrder    time.Time `json:"last_order"`
	DaysSince    int       `json:"days_since"`
	HasCompleted bool      `json:"has_completed"`
	Bucket       string    `json:"bucket"`
}

// RetargetSegment groups the customers of one bucket
type RetargetSegment struct {
	Bucket       RecencyBucket     `json:"bucket"`
	Completed    []CustomerRecency `json:"completed"`
	NotCompleted []CustomerRecency `json:"not_completed"`
}

// RetargetReport lists every bucket, empty ones included
type RetargetReport struct {
	Today    time.Time         `json:"today"`
	Segments []RetargetSegment `json:"segments"`
}

// Retarget segments customers by days since their last order. The last order
// is the latest of the order dates and any reported previous_order_date.
// Orders dated after today count as today.
func Retarget(orders []models.Order, today time.Time) RetargetReport {
	today = models.CalendarDay(today)
	customers := make(map[string]*CustomerRecency)

	for i := range orders {
		o := &orders[i]
		if !o.HasCustomer() {
			continue
		}
		last := o.Day()
		if o.PreviousOrderDate != nil {
			if prev := models.CalendarDay(*o.PreviousOrderDate); prev.After(last) {
				last = prev
			}
		}

		c, ok := customers[o.CustomerID]
		if !ok {
			c = &CustomerRecency{CustomerID: o.CustomerID, Origin: o.Origin, LastOrder: last}
			customers[o.CustomerID] = c
		}
		if last.After(c.LastOrder) {
			c.LastOrder = last
			c.Origin = o.Origin
		}
		if o.Status.IsCompleted() {
			c.HasCompleted = true
		}
	}

	report := RetargetReport{Today: today, Segments: make([]RetargetSegment, len(RecencyBuckets))}
	for i, b := range RecencyBuckets {
		report.Segments[i] = RetargetSegment{
			Bucket:       b,
			Completed:    []CustomerRecency{},
			NotCompleted: []CustomerRecency{},
		}
	}

	ids := make([]string, 0, len(customers))
	for id := range customers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		c := customers[id]
		c.DaysSince = int(today.Sub(c.LastOrder).Hours() / 24)
		if c.DaysSince < 0 {
			c.DaysSince = 0
		}
		for i, b := range RecencyBuckets {
			if !b.Contains(c.DaysSince) {
				continue
			}
			c.Bucket = b.Label
			if c.HasCompleted {
				report.Segments[i].Completed = append(report.Segments[i].Completed, *c)
			} else {
				report.Segments[i].NotCompleted = append(report.Segments[i].NotCompleted, *c)
			}
			break
		}
	}
	return report
}

// Total counts the customers across all segments
func (r RetargetReport) Total() int {
	n := 0
	for _, s := range r.Segments {
		n += len(s.Completed) + len(s.NotCompleted)
	}
	return n
}
