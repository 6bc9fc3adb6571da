package fileio

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AssilKherfi/Retention-Dashboard/models"
)

// timeLayouts are tried in order when parsing date cells
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	models.DateFormat,
	"02/01/2006 15:04:05",
	"02/01/2006",
}

// ParseOptions controls how raw cells become model values
type ParseOptions struct {
	// Location interprets timestamps that carry no zone. Defaults to UTC.
	Location *time.Location
}

func (o ParseOptions) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

func parseTime(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// parseAmount accepts plain decimals, a decimal comma and space or
// underscore digit grouping. An empty cell is zero.
func parseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.NewReplacer(" ", "", "\u00a0", "", "_", "").Replace(s)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}
	return d, nil
}

// cleanID strips the ".0" suffix spreadsheets add to numeric ids
func cleanID(raw string) string {
	id := strings.TrimSpace(raw)
	return strings.TrimSuffix(id, ".0")
}

func parseOrder(rec record, opts ParseOptions) (models.Order, error) {
	loc := opts.location()

	date, err := parseTime(rec[colDate], loc)
	if err != nil {
		return models.Order{}, err
	}
	amount, err := parseAmount(rec[colAmount])
	if err != nil {
		return models.Order{}, err
	}

	o := models.Order{
		OrderID:          cleanID(rec[colOrderID]),
		CustomerID:       cleanID(rec[colCustomerID]),
		Date:             date,
		Status:           models.ParseOrderStatus(rec[colStatus]),
		BusinessCategory: strings.TrimSpace(rec[colCategory]),
		Origin:           strings.TrimSpace(rec[colOrigin]),
		PaymentType:      strings.TrimSpace(rec[colPaymentType]),
		Amount:           amount,
	}
	if o.Status == "" {
		o.Status = models.StatusCompleted
	}
	if prev := rec[colPrevious]; prev != "" {
		if t, err := parseTime(prev, loc); err == nil {
			o.PreviousOrderDate = &t
		}
	}

	if err := o.Validate(); err != nil {
		return models.Order{}, err
	}
	return o, nil
}

func parseUser(rec record, opts ParseOptions) (models.User, error) {
	registered, err := parseTime(rec[colRegistered], opts.location())
	if err != nil {
		return models.User{}, err
	}
	u := models.User{
		CustomerID:   cleanID(rec[colCustomerID]),
		RegisteredAt: registered,
		Origin:       strings.TrimSpace(rec[colOrigin]),
		Country:      strings.TrimSpace(rec[colCountry]),
	}
	if err := u.Validate(); err != nil {
		return models.User{}, err
	}
	return u, nil
}
