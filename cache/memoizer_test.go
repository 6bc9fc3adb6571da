package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AssilKherfi/Retention-Dashboard/calculations"
	"github.com/AssilKherfi/Retention-Dashboard/models"
)

func testOrders() []models.Order {
	mk := func(customer, day string, amount int64) models.Order {
		d, _ := time.Parse(models.DateFormat, day)
		return models.Order{
			OrderID:          customer + day,
			CustomerID:       customer,
			Date:             d,
			Status:           models.StatusCompleted,
			BusinessCategory: models.CategoryShopping,
			Origin:           models.OriginLocal,
			Amount:           decimal.NewFromInt(amount),
		}
	}
	return []models.Order{
		mk("A", "2024-01-03", 100),
		mk("A", "2024-02-10", 250),
		mk("B", "2024-02-01", 80),
		mk("B", "2024-04-01", 40),
	}
}

type countingObserver struct {
	hits, misses int
}

func (o *countingObserver) ObserveCache(hit bool) {
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

func TestMemoizer_Do(t *testing.T) {
	orders := testOrders()
	params := calculations.DefaultParams()
	params.FXRate = 145

	obs := &countingObserver{}
	m := NewMemoizer(NewMemoryCache(time.Minute, 8), WithObserver(obs))

	key, err := Key(orders, params)
	require.NoError(t, err)

	calls := 0
	run := func() (*calculations.Result, error) {
		calls++
		return calculations.Run(orders, params)
	}

	first, hit, err := m.Do(key, run)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := m.Do(key, run)
	require.NoError(t, err)
	assert.True(t, hit)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 1, obs.misses)

	if diff := cmp.Diff(first, second, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("cached result differs (-computed +cached):\n%s", diff)
	}
}

func TestMemoizer_BadgerBackend(t *testing.T) {
	m := NewMemoizer(newTestBadger(t), WithCodec(NewGzipCodec(NewJSONCodec(), 0)))
	orders := testOrders()
	params := calculations.DefaultParams()
	key, err := Key(orders, params)
	require.NoError(t, err)

	run := func() (*calculations.Result, error) { return calculations.Run(orders, params) }
	first, _, err := m.Do(key, run)
	require.NoError(t, err)
	second, hit, err := m.Do(key, run)
	require.NoError(t, err)

	assert.True(t, hit)
	assert.Equal(t, first.Cohort.Counts, second.Cohort.Counts)
	assert.Equal(t, int64(1), m.Stats().Hits)
}

func TestMemoizer_ErrorsAreNotCached(t *testing.T) {
	c := NewMemoryCache(time.Minute, 0)
	m := NewMemoizer(c)

	_, _, err := m.Do("k", func() (*calculations.Result, error) {
		return nil, errors.New("boom")
	})
	assert.Error(t, err)
	assert.Equal(t, 0, c.Size())
}

func TestMemoizer_UnreadableEntry(t *testing.T) {
	c := NewMemoryCache(time.Minute, 0)
	require.NoError(t, c.Set("k", []byte("{broken")))
	m := NewMemoizer(c)

	calls := 0
	res, hit, err := m.Do("k", func() (*calculations.Result, error) {
		calls++
		return calculations.Run(nil, calculations.DefaultParams())
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotNil(t, res)
	assert.Equal(t, 1, calls)
}

func TestMemoizer_PassThrough(t *testing.T) {
	var m *Memoizer
	calls := 0
	run := func() (*calculations.Result, error) {
		calls++
		return calculations.Run(nil, calculations.DefaultParams())
	}

	_, hit, err := m.Do("k", run)
	require.NoError(t, err)
	assert.False(t, hit)

	NewMemoizer(nil).Do("k", run)
	assert.Equal(t, 2, calls)
	assert.Equal(t, CacheStats{}, NewMemoizer(nil).Stats())
}

func TestKey(t *testing.T) {
	orders := testOrders()
	params := calculations.DefaultParams()

	k1, err := Key(orders, params)
	require.NoError(t, err)
	k2, err := Key(testOrders(), calculations.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
	assert.Contains(t, k1, keyPrefix)

	weekly := params
	weekly.Granularity = calculations.Week
	k3, err := Key(orders, weekly)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)

	changed := testOrders()
	changed[0].Amount = decimal.NewFromInt(101)
	k4, err := Key(changed, params)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k4)

	margins := params
	margins.Margins = calculations.MarginTable{
		models.CategoryAirtime:  0.21,
		models.CategoryShopping: 0.08,
		models.CategoryGrocery:  0.10,
	}
	k5, err := Key(orders, margins)
	require.NoError(t, err)
	assert.Equal(t, k1, k5)
}
