package internal

import (
	"fmt"
)

// Close releases the result cache and any source connection. Components
// are closed in reverse order of creation and every failure is reported.
func (a *App) Close() error {
	var errs []error

	if a.resultCache != nil {
		if err := a.resultCache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cache: %w", err))
		}
		a.resultCache = nil
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, fmt.Errorf("source: %w", err))
		}
	}
	a.closers = nil

	if len(errs) > 0 {
		a.logger.Errorf("Shutdown errors: %v", errs)
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}
