package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AssilKherfi/Retention-Dashboard/cache"
	"github.com/AssilKherfi/Retention-Dashboard/calculations"
	"github.com/AssilKherfi/Retention-Dashboard/config"
	"github.com/AssilKherfi/Retention-Dashboard/errors"
	"github.com/AssilKherfi/Retention-Dashboard/fileio"
	"github.com/AssilKherfi/Retention-Dashboard/models"
)

// Report is the outcome of one analysis run
type Report struct {
	RunID       string               `json:"run_id"`
	GeneratedAt time.Time            `json:"generated_at"`
	Source      string               `json:"source"`
	Params      calculations.Params  `json:"params"`
	Result      *calculations.Result `json:"result"`
	LoadStats   fileio.LoadStats     `json:"load_stats"`
	CacheHit    bool                 `json:"cache_hit"`
	Duration    time.Duration        `json:"duration"`
}

// Params builds pipeline parameters from the analysis section. fxRate is
// the already resolved exchange rate, 0 when unknown.
func (a *App) Params(fxRate float64) (calculations.Params, error) {
	an := a.config.Analysis

	g, err := calculations.ParseGranularity(an.Granularity)
	if err != nil {
		return calculations.Params{}, errors.Wrap(errors.ErrorTypeConfig, "analysis.granularity", err)
	}

	start, err := config.ParseDate(an.StartDate)
	if err != nil {
		return calculations.Params{}, errors.Wrap(errors.ErrorTypeConfig, "analysis.start_date", err)
	}
	end, err := config.ParseDate(an.EndDate)
	if err != nil {
		return calculations.Params{}, errors.Wrap(errors.ErrorTypeConfig, "analysis.end_date", err)
	}
	// a lookback without an end date counts back from today
	if an.LookbackPeriods > 0 && end.IsZero() {
		end = a.Today()
	}

	statuses := make([]models.OrderStatus, 0, len(an.Statuses))
	for _, s := range an.Statuses {
		statuses = append(statuses, models.ParseOrderStatus(s))
	}

	margins := make(calculations.MarginTable, len(an.Margins))
	for cat, m := range an.Margins {
		margins[cat] = m
	}

	params := calculations.Params{
		Granularity: g,
		Filter: calculations.OrderFilter{
			Statuses:        statuses,
			Origins:         append([]string(nil), an.Origins...),
			Categories:      append([]string(nil), an.Categories...),
			Start:           start,
			End:             end,
			LookbackPeriods: an.LookbackPeriods,
		},
		LTVCategories:   append([]string(nil), an.LTVCategories...),
		Margins:         margins,
		FXRate:          fxRate,
		ForeignCurrency: a.config.Currency.Foreign,
	}
	if err := params.Validate(); err != nil {
		return calculations.Params{}, errors.Wrap(errors.ErrorTypeConfig, "analysis", err)
	}
	return params, nil
}

// ExchangeRate resolves today's rate. A failed lookup is logged and gives 0,
// which leaves the foreign currency figures empty.
func (a *App) ExchangeRate(ctx context.Context) float64 {
	cur := a.config.Currency
	rate, err := a.rates.Rate(ctx, cur.Base, cur.Foreign, a.Today())
	a.metrics.ObserveFX(err)
	if err != nil {
		a.logger.Warnf("No %s/%s exchange rate, foreign figures will be empty: %v", cur.Base, cur.Foreign, err)
		return 0
	}
	a.logger.Debugf("Exchange rate: 1 %s = %.4f %s", cur.Foreign, rate, cur.Base)
	return rate
}

// LoadOrders reads orders from the source and records load metrics
func (a *App) LoadOrders(ctx context.Context) ([]models.Order, fileio.LoadStats, error) {
	orders, stats, err := a.source.LoadOrders(ctx)
	if err != nil {
		return nil, stats, err
	}
	a.metrics.ObserveLoad(stats)

	if dropped := stats.Dropped(); dropped > 0 {
		a.logger.Warnf("Dropped %d of %d order rows from %s (%s)", dropped, stats.Rows, a.source.Name(), stats)
	} else {
		a.logger.Infof("Loaded %d orders from %s", stats.Loaded, a.source.Name())
	}
	return orders, stats, nil
}

// Analyze loads the orders, resolves the exchange rate once and runs the
// pipeline through the result cache
func (a *App) Analyze(ctx context.Context) (report *Report, err error) {
	started := a.clock.Now()
	defer func() {
		a.metrics.ObserveRun(a.clock.Since(started), err)
	}()

	orders, stats, err := a.LoadOrders(ctx)
	if err != nil {
		return nil, err
	}
	params, err := a.Params(a.ExchangeRate(ctx))
	if err != nil {
		return nil, err
	}

	key, err := cache.Key(orders, params)
	if err != nil {
		return nil, fmt.Errorf("failed to build cache key: %w", err)
	}
	result, hit, err := a.memo.Do(key, func() (*calculations.Result, error) {
		return calculations.Run(orders, params)
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeLogic, "analyze", err)
	}
	if hit {
		a.logger.Debugf("Reusing cached result %s", key)
	}

	return &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: a.clock.Now(),
		Source:      a.source.Name(),
		Params:      params,
		Result:      result,
		LoadStats:   stats,
		CacheHit:    hit,
		Duration:    a.clock.Since(started),
	}, nil
}

// Retarget segments customers by days since their last order. The origin
// and category filters apply; statuses and dates do not, since the split by
// completed purchase and the recency itself need every order.
func (a *App) Retarget(ctx context.Context) (*calculations.RetargetReport, error) {
	orders, _, err := a.LoadOrders(ctx)
	if err != nil {
		return nil, err
	}
	params, err := a.Params(0)
	if err != nil {
		return nil, err
	}

	filter := calculations.OrderFilter{
		Origins:    params.Filter.Origins,
		Categories: params.Filter.Categories,
	}
	report := calculations.Retarget(filter.Apply(orders, params.Granularity), a.Today())
	return &report, nil
}

// Funnel follows registered users to their first purchases
func (a *App) Funnel(ctx context.Context) ([]calculations.FunnelRow, error) {
	users, ustats, err := a.source.LoadUsers(ctx)
	if err != nil {
		return nil, err
	}
	if ustats.Malformed > 0 {
		a.logger.Warnf("Skipped %d malformed user rows", ustats.Malformed)
	}

	orders, _, err := a.LoadOrders(ctx)
	if err != nil {
		return nil, err
	}
	params, err := a.Params(0)
	if err != nil {
		return nil, err
	}
	return calculations.SignupFunnel(users, orders, params.Granularity), nil
}
