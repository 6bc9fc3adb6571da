package calculations

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AssilKherfi/Retention-Dashboard/models"
)

func TestRetention_MonthlyExample(t *testing.T) {
	r := Retention(CohortAnalysis(exampleOrders(), Month))

	require.Len(t, r.Rates, 2)
	assert.Equal(t, []*float64{floatp(1.0), floatp(1.0)}, r.Rates[0])
	assert.Equal(t, []*float64{floatp(1.0), nil}, r.Rates[1])
}

func TestRetention_ColumnZeroIsOne(t *testing.T) {
	orders := []models.Order{
		order("A", "2024-01-01", 1),
		order("B", "2024-01-02", 1),
		order("C", "2024-01-03", 1),
		order("A", "2024-02-01", 1),
		order("D", "2024-02-05", 1),
		order("A", "2024-04-01", 1),
		order("B", "2024-04-01", 1),
	}

	r := Retention(CohortAnalysis(orders, Month))

	for i, row := range r.Rates {
		require.NotNil(t, row[0])
		assert.Equal(t, 1.0, *row[0], "cohort %s", r.Cohorts[i].Label)
	}
	assert.InDelta(t, 1.0/3.0, *r.Rates[0][1], 1e-9)
	assert.Nil(t, r.Rates[0][2])
	assert.InDelta(t, 2.0/3.0, *r.Rates[0][3], 1e-9)
}

func TestRetention_ZeroSizeCohortIsNull(t *testing.T) {
	m := &CohortMatrix{
		Granularity: Month,
		Cohorts:     []Period{Month.PeriodOf(date("2024-01-01"))},
		Offsets:     []int{0, 1},
		Counts:      [][]*int{{intp(0), intp(3)}},
	}

	r := Retention(m)

	assert.Equal(t, []*float64{nil, nil}, r.Rates[0])
}

func TestChurn(t *testing.T) {
	orders := []models.Order{
		order("C1", "2024-01-01", 10),
		order("C2", "2024-01-02", 10),
		order("C1", "2024-02-01", 10),
		order("C1", "2024-03-01", 10),
		order("C2", "2024-03-02", 10),
		order("C3", "2024-03-03", 10),
	}
	m := CohortAnalysis(orders, Month)

	c := Churn(m)

	assert.Equal(t, []int{1, 2}, c.Offsets)
	assert.Len(t, c.Offsets, len(m.Offsets)-1)

	want := [][]*int{
		{intp(-1), intp(1)}, // reactivation shows up as a positive delta
		{nil, nil},
	}
	if diff := cmp.Diff(want, c.Deltas); diff != "" {
		t.Errorf("churn mismatch (-want +got):\n%s", diff)
	}
}

func TestChurn_NullOperand(t *testing.T) {
	m := CohortAnalysis([]models.Order{
		order("C1", "2024-01-01", 10),
		order("C1", "2024-03-01", 10),
	}, Month)

	c := Churn(m)

	assert.Equal(t, [][]*int{{nil, nil}}, c.Deltas)
}

func TestChurn_Empty(t *testing.T) {
	c := Churn(CohortAnalysis(nil, Month))

	assert.Empty(t, c.Offsets)
	assert.Empty(t, c.Deltas)

	single := Churn(CohortAnalysis([]models.Order{order("C1", "2024-01-01", 10)}, Month))
	assert.Empty(t, single.Offsets)
	assert.Equal(t, [][]*int{{}}, single.Deltas)
}
