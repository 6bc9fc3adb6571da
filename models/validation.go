package models

import (
	"fmt"
)

// ValidationError represents a validation error with field and message
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Validate checks that an order carries what the engine needs.
// A missing customer id is not a validation error: such rows are dropped
// before cohort assignment.
func (o *Order) Validate() error {
	if o.Date.IsZero() {
		return ValidationError{Field: "Date", Message: "date cannot be zero"}
	}

	if o.Amount.IsNegative() {
		return ValidationError{Field: "Amount", Message: "amount cannot be negative"}
	}

	if o.Status == "" {
		return ValidationError{Field: "Status", Message: "status cannot be empty"}
	}

	return nil
}

// Validate checks a user record
func (u *User) Validate() error {
	if u.CustomerID == "" {
		return ValidationError{Field: "CustomerID", Message: "customer id cannot be empty"}
	}
	if u.RegisteredAt.IsZero() {
		return ValidationError{Field: "RegisteredAt", Message: "registration date cannot be zero"}
	}
	return nil
}
