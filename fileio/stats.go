package fileio

import (
	"fmt"
	"time"
)

// LoadStats counts what happened to the rows of one load
type LoadStats struct {
	Source          string        `json:"source"`
	Rows            int           `json:"rows"`
	Loaded          int           `json:"loaded"`
	Malformed       int           `json:"malformed"`
	MissingCustomer int           `json:"missing_customer"`
	Excluded        int           `json:"excluded"`
	EmptyCategory   int           `json:"empty_category"`
	Bytes           int64         `json:"bytes"`
	Duration        time.Duration `json:"duration"`
}

// Dropped is the number of rows the loader discarded
func (s LoadStats) Dropped() int {
	return s.Malformed + s.Excluded + s.EmptyCategory
}

func (s LoadStats) String() string {
	return fmt.Sprintf("%s: %d rows, %d loaded, %d malformed, %d excluded, %d without category, %d without customer",
		s.Source, s.Rows, s.Loaded, s.Malformed, s.Excluded, s.EmptyCategory, s.MissingCustomer)
}
