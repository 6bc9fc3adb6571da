package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state reported for an order
type OrderStatus string

const (
	StatusCompleted OrderStatus = "COMPLETED"
	StatusPending   OrderStatus = "PENDING"
	StatusCancelled OrderStatus = "CANCELLED"
	StatusAbandoned OrderStatus = "ABANDONED"
	StatusFailed    OrderStatus = "FAILED"
)

// ParseOrderStatus normalizes a raw status label
func ParseOrderStatus(raw string) OrderStatus {
	return OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
}

// IsCompleted reports whether the order went through to payment
func (s OrderStatus) IsCompleted() bool {
	return s == StatusCompleted
}

// Order represents a single transactional event placed by a customer
type Order struct {
	OrderID           string          `json:"order_id"`
	CustomerID        string          `json:"customer_id"`
	Date              time.Time       `json:"date"`
	Status            OrderStatus     `json:"status"`
	BusinessCategory  string          `json:"business_category"`
	Origin            string          `json:"origin"`
	PaymentType       string          `json:"payment_type,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	PreviousOrderDate *time.Time      `json:"previous_order_date,omitempty"`
}

// Day returns the calendar date of the order anchored at midnight UTC.
// Time of day and location are irrelevant to every computation.
func (o *Order) Day() time.Time {
	return CalendarDay(o.Date)
}

// HasCustomer reports whether the order can be attributed to a customer
func (o *Order) HasCustomer() bool {
	return strings.TrimSpace(o.CustomerID) != ""
}

// User represents a registered account, used by the signup funnel
type User struct {
	CustomerID   string    `json:"customer_id"`
	RegisteredAt time.Time `json:"registered_at"`
	Origin       string    `json:"origin"`
	Country      string    `json:"country"`
}

// CalendarDay strips the time of day from t, keeping the year/month/day
// as seen in t's own location.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
