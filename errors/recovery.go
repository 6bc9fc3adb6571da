package errors

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"
)

// PanicError is a recovered panic
type PanicError struct {
	Value     interface{}
	Stack     string
	Timestamp time.Time
	Op        string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: panic: %v", e.Op, e.Value)
}

// SafeRun runs fn and turns a panic into a *PanicError. Scheduled jobs use
// it so one bad run does not take the process down.
func SafeRun(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{
				Value:     r,
				Stack:     string(debug.Stack()),
				Timestamp: time.Now(),
				Op:        op,
			}
		}
	}()
	return fn()
}

// ErrorCollector keeps at most Limit errors and counts the rest
type ErrorCollector struct {
	Limit int

	errors  []error
	dropped int
	mu      sync.Mutex
}

// NewErrorCollector creates a collector
func NewErrorCollector(limit int) *ErrorCollector {
	return &ErrorCollector{Limit: limit}
}

// Collect records err, nil is ignored
func (ec *ErrorCollector) Collect(err error) {
	if err == nil {
		return
	}
	ec.mu.Lock()
	defer ec.mu.Unlock()

	if ec.Limit > 0 && len(ec.errors) >= ec.Limit {
		ec.dropped++
		return
	}
	ec.errors = append(ec.errors, err)
}

// GetErrors returns a copy of the kept errors
func (ec *ErrorCollector) GetErrors() []error {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	result := make([]error, len(ec.errors))
	copy(result, ec.errors)
	return result
}

// Count returns every collected error, kept or not
func (ec *ErrorCollector) Count() int {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return len(ec.errors) + ec.dropped
}

// Clear drops every collected error
func (ec *ErrorCollector) Clear() {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	ec.errors = ec.errors[:0]
	ec.dropped = 0
}
