package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies an error
type ErrorType string

const (
	// data
	ErrorTypeDataFormat  ErrorType = "data_format"
	ErrorTypeDataMissing ErrorType = "data_missing"

	// external dependencies
	ErrorTypeNetwork ErrorType = "network"
	ErrorTypeSource  ErrorType = "source"

	// application
	ErrorTypeConfig ErrorType = "config"
	ErrorTypeLogic  ErrorType = "logic"
)

// ErrorSeverity ranks how much an error degrades a run
type ErrorSeverity int

const (
	SeverityLow      ErrorSeverity = iota // ignorable
	SeverityMedium                        // degraded
	SeverityHigh                          // needs attention
	SeverityCritical                      // fatal
)

func (s ErrorSeverity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "critical"
	}
}

// Error carries a type and the operation that failed
type Error struct {
	Type     ErrorType
	Severity ErrorSeverity
	Op       string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		if e.Message == "" {
			return fmt.Sprintf("%s: %v", e.Op, e.Cause)
		}
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a typed error
func New(t ErrorType, op, message string) *Error {
	return &Error{Type: t, Severity: SeverityHigh, Op: op, Message: message}
}

// Wrap attaches a type and operation to cause. It returns nil for a nil cause.
func Wrap(t ErrorType, op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Type: t, Severity: SeverityHigh, Op: op, Cause: cause}
}

// Wrapf is Wrap with a formatted message
func Wrapf(t ErrorType, op string, cause error, format string, args ...interface{}) error {
	if cause == nil {
		return nil
	}
	return &Error{Type: t, Severity: SeverityHigh, Op: op, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IsType reports whether any error in err's chain has type t
func IsType(err error, t ErrorType) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Type == t {
			return true
		}
		err = e.Cause
	}
	return false
}

// TypeOf returns the type of the outermost typed error, or "" if none
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ""
}

// Is and As forward to the standard library so callers need one import
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target interface{}) bool { return errors.As(err, target) }
