package calculations

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AssilKherfi/Retention-Dashboard/models"
)

func TestCustomerLTV_SameDayOrdersExcluded(t *testing.T) {
	orders := []models.Order{
		order("C1", "2024-01-01", 100),
		order("C1", "2024-01-01", 50),
	}

	assert.Empty(t, CustomerLTV(orders))
}

func TestCustomerLTV_Decomposition(t *testing.T) {
	orders := []models.Order{
		order("C1", "2024-01-01", 100),
		order("C1", "2024-03-31", 200),
	}

	records := CustomerLTV(orders)

	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "C1", r.CustomerID)
	assert.Equal(t, 2, r.OrderCount)
	assert.True(t, decimal.NewFromInt(300).Equal(r.Revenue))
	assert.InDelta(t, 3.0, r.LifetimeMonths, 1e-9)
	assert.InDelta(t, 150.0, r.AvgBasket, 1e-9)
	assert.InDelta(t, 0.667, r.Frequency, 1e-3)
	assert.InDelta(t, 300.0, r.LTV, 1e-9)
	assert.Equal(t, date("2024-01-01"), r.FirstOrder)
	assert.Equal(t, date("2024-03-31"), r.LastOrder)
}

func TestCustomerLTV_LifetimeIsDaysOverThirty(t *testing.T) {
	orders := []models.Order{
		order("C1", "2024-01-01", 100),
		order("C1", "2024-04-01", 200),
	}

	records := CustomerLTV(orders)

	require.Len(t, records, 1)
	assert.InDelta(t, 91.0/30.0, records[0].LifetimeMonths, 1e-9)
	assert.InDelta(t, 3.0, records[0].LifetimeMonths, 0.05)
	assert.InDelta(t, 300.0, records[0].LTV, 1e-9)
}

func TestCustomerLTV_LTVEqualsRevenue(t *testing.T) {
	orders := []models.Order{
		order("A", "2024-01-01", 120),
		order("A", "2024-01-15", 80),
		order("A", "2024-06-02", 33),
		order("B", "2024-02-01", 10),
		order("B", "2024-02-03", 15),
		order("C", "2024-02-03", 999),
		order("", "2024-02-03", 999),
	}

	records := CustomerLTV(orders)

	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].CustomerID)
	assert.Equal(t, "B", records[1].CustomerID)
	for _, r := range records {
		assert.Greater(t, r.LifetimeMonths, 0.0)
		assert.InDelta(t, r.Revenue.InexactFloat64(), r.LTV, 1e-6)
	}
}

func TestCustomerLTV_DecimalAmounts(t *testing.T) {
	a := order("C1", "2024-01-01", 0)
	a.Amount = decimal.RequireFromString("0.10")
	b := order("C1", "2024-01-31", 0)
	b.Amount = decimal.RequireFromString("0.20")

	records := CustomerLTV([]models.Order{a, b})

	require.Len(t, records, 1)
	assert.Equal(t, "0.3", records[0].Revenue.String())
}

func TestMarginTable_Rate(t *testing.T) {
	m := MarginTable{"A": 0.10}
	assert.Equal(t, 0.10, m.Rate("A"))
	assert.Equal(t, 0.10, m.Rate("a"))
	assert.Equal(t, 0.0, m.Rate("unknown"))

	var empty MarginTable
	assert.Equal(t, 0.0, empty.Rate("A"))
}

func TestConvertCurrency(t *testing.T) {
	v := ConvertCurrency(1000, 140)
	require.NotNil(t, v)
	assert.InDelta(t, 7.14, *v, 0.005)

	assert.Nil(t, ConvertCurrency(1000, 0))
	assert.Nil(t, ConvertCurrency(1000, -1))
}

func TestSummarizeByCategory(t *testing.T) {
	orders := []models.Order{
		categoryOrder("X", "2024-01-01", "A", 400),
		categoryOrder("X", "2024-02-01", "A", 600),
		categoryOrder("Y", "2024-01-01", "A", 500),
		categoryOrder("Y", "2024-01-20", "A", 1500),
		// X is single-order within B, so B has no customer with a lifetime
		categoryOrder("X", "2024-03-01", "B", 50),
		categoryOrder("Z", "2024-01-01", "C", 100),
		categoryOrder("Z", "2024-01-11", "C", 100),
	}

	summary := SummarizeByCategory(orders, []string{"A", "B", "C"}, MarginTable{"A": 0.10}, 140, models.CurrencyEUR)

	require.Len(t, summary, 2)

	a := summary[0]
	assert.Equal(t, "A", a.Category)
	assert.Equal(t, 2, a.Customers)
	assert.InDelta(t, 1500.0, a.GMV, 1e-9)
	assert.InDelta(t, 150.0, a.Margin, 1e-9)
	require.NotNil(t, a.GMVForeign)
	require.NotNil(t, a.MarginForeign)
	assert.InDelta(t, 1500.0/140.0, *a.GMVForeign, 1e-9)
	assert.InDelta(t, 150.0/140.0, *a.MarginForeign, 1e-9)
	assert.Equal(t, models.CurrencyEUR, a.ForeignCurrency)

	c := summary[1]
	assert.Equal(t, "C", c.Category)
	assert.Equal(t, 0.0, c.MarginRate)
	assert.Equal(t, 0.0, c.Margin)
}

func TestSummarizeByCategory_CaseInsensitive(t *testing.T) {
	orders := []models.Order{
		categoryOrder("X", "2024-01-01", "Shopping", 400),
		categoryOrder("X", "2024-03-01", "Shopping", 600),
	}

	summary := SummarizeByCategory(orders, []string{"shopping"}, MarginTable{"SHOPPING": 0.08}, 0, models.CurrencyEUR)

	require.Len(t, summary, 1)
	assert.Equal(t, "shopping", summary[0].Category)
	assert.Equal(t, 1, summary[0].Customers)
	assert.InDelta(t, 1000.0, summary[0].GMV, 1e-9)
	assert.InDelta(t, 80.0, summary[0].Margin, 1e-9)
}

func TestRun_SummaryMatchesConfiguredCategoryCase(t *testing.T) {
	orders := []models.Order{
		categoryOrder("X", "2024-01-01", "Shopping", 400),
		categoryOrder("X", "2024-03-01", "Shopping", 600),
	}
	params := DefaultParams()
	params.LTVCategories = []string{"shopping"}

	res, err := Run(orders, params)
	require.NoError(t, err)

	assert.Len(t, res.LTV, 1)
	require.Len(t, res.Summary, 1)
	assert.Equal(t, "shopping", res.Summary[0].Category)
	assert.InDelta(t, 1000.0, res.Summary[0].GMV, 1e-9)
}

func TestSummarizeByCategory_MarginAndFX(t *testing.T) {
	orders := []models.Order{
		categoryOrder("X", "2024-01-01", "A", 400),
		categoryOrder("X", "2024-02-01", "A", 600),
	}

	summary := SummarizeByCategory(orders, []string{"A"}, MarginTable{"A": 0.10}, 140, models.CurrencyEUR)

	require.Len(t, summary, 1)
	assert.InDelta(t, 1000.0, summary[0].GMV, 1e-9)
	assert.InDelta(t, 100.0, summary[0].Margin, 1e-9)
	assert.InDelta(t, 7.14, *summary[0].GMVForeign, 0.005)
}

func TestSummarizeByCategory_NoRate(t *testing.T) {
	orders := []models.Order{
		categoryOrder("X", "2024-01-01", "A", 400),
		categoryOrder("X", "2024-02-01", "A", 600),
	}

	summary := SummarizeByCategory(orders, []string{"A"}, nil, 0, models.CurrencyEUR)

	require.Len(t, summary, 1)
	assert.Nil(t, summary[0].GMVForeign)
	assert.Nil(t, summary[0].MarginForeign)
	assert.Empty(t, summary[0].ForeignCurrency)
}
