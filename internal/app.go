// Package internal wires configuration, sources, exchange rates, the result
// cache and the analysis pipeline into one application.
package internal

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/AssilKherfi/Retention-Dashboard/cache"
	"github.com/AssilKherfi/Retention-Dashboard/config"
	"github.com/AssilKherfi/Retention-Dashboard/fileio"
	"github.com/AssilKherfi/Retention-Dashboard/fx"
	"github.com/AssilKherfi/Retention-Dashboard/logging"
	"github.com/AssilKherfi/Retention-Dashboard/models"
)

// App is the application orchestrator
type App struct {
	config   *config.Config
	logger   *logging.Logger
	clock    clockwork.Clock
	location *time.Location

	source      fileio.Source
	rates       fx.Provider
	memo        *cache.Memoizer
	resultCache cache.Cache
	metrics     *Metrics

	closers []io.Closer
}

// Option overrides one component of the App
type Option func(*App)

// WithClock replaces the real clock
func WithClock(c clockwork.Clock) Option {
	return func(a *App) { a.clock = c }
}

// WithLogger replaces the global logger
func WithLogger(l *logging.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithSource replaces the source built from data.source
func WithSource(s fileio.Source) Option {
	return func(a *App) { a.source = s }
}

// WithRateProvider replaces the provider built from currency.provider
func WithRateProvider(p fx.Provider) Option {
	return func(a *App) { a.rates = p }
}

// WithMemoizer replaces the memoizer built from the cache section
func WithMemoizer(m *cache.Memoizer) Option {
	return func(a *App) { a.memo = m }
}

// WithMetrics attaches metrics collectors
func WithMetrics(m *Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// NewApp creates an application from cfg
func NewApp(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	a := &App{
		config: cfg,
		logger: logging.GetLogger(),
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.metrics == nil && cfg.Report.MetricsEnabled {
		a.metrics = NewMetrics()
	}

	if err := a.bootstrap(ctx); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("bootstrap failed: %w", err)
	}
	return a, nil
}

// Config returns the configuration the App was built from
func (a *App) Config() *config.Config {
	return a.config
}

// Logger returns the application logger
func (a *App) Logger() *logging.Logger {
	return a.logger
}

// Clock returns the application clock
func (a *App) Clock() clockwork.Clock {
	return a.clock
}

// Metrics returns the collectors, nil when metrics are disabled
func (a *App) Metrics() *Metrics {
	return a.metrics
}

// Source returns the order source
func (a *App) Source() fileio.Source {
	return a.source
}

// Location is the configured reporting timezone
func (a *App) Location() *time.Location {
	return a.location
}

// Today is the current calendar day in the configured timezone
func (a *App) Today() time.Time {
	return models.CalendarDay(a.clock.Now().In(a.location))
}
