// Package fx resolves the exchange rate used to report LTV in a foreign
// currency. Rates are always local units per one foreign unit.
package fx

import (
	"context"
	"fmt"
	"time"

	"github.com/AssilKherfi/Retention-Dashboard/errors"
)

// Provider looks up the rate between the local and the foreign currency on a day
type Provider interface {
	Rate(ctx context.Context, local, foreign string, day time.Time) (float64, error)
}

// StaticProvider returns a fixed rate, typically from configuration
type StaticProvider struct {
	value float64
}

// NewStaticProvider creates a provider that always answers rate
func NewStaticProvider(rate float64) *StaticProvider {
	return &StaticProvider{value: rate}
}

// Rate returns the configured rate. A non-positive rate means no rate is
// known and is reported as a data_missing error.
func (s *StaticProvider) Rate(_ context.Context, local, foreign string, _ time.Time) (float64, error) {
	if s.value <= 0 {
		return 0, errors.New(errors.ErrorTypeDataMissing, "fx.static",
			fmt.Sprintf("no rate configured for %s/%s", foreign, local))
	}
	return s.value, nil
}
