package calculations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AssilKherfi/Retention-Dashboard/models"
)

func TestParseGranularity(t *testing.T) {
	tests := []struct {
		in   string
		want Granularity
	}{
		{"day", Day},
		{"Daily", Day},
		{"week", Week},
		{"WEEKLY", Week},
		{"month", Month},
		{"", Month},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			g, err := ParseGranularity(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g)
		})
	}

	_, err := ParseGranularity("quarter")
	assert.Error(t, err)
}

func TestGranularity_PeriodOf(t *testing.T) {
	t.Run("month", func(t *testing.T) {
		p := Month.PeriodOf(date("2024-02-10"))
		assert.Equal(t, "2024-02", p.Label)
		assert.Equal(t, date("2024-02-01"), p.Start)
		assert.Equal(t, 1, p.Index-Month.PeriodOf(date("2024-01-31")).Index)
		assert.Equal(t, 12, Month.PeriodOf(date("2025-01-01")).Index-Month.PeriodOf(date("2024-01-15")).Index)
	})

	t.Run("week starts on monday", func(t *testing.T) {
		// 2024-01-10 is a Wednesday
		p := Week.PeriodOf(date("2024-01-10"))
		assert.Equal(t, "2024-01-08", p.Label)
		assert.Equal(t, time.Monday, p.Start.Weekday())

		sunday := Week.PeriodOf(date("2024-01-14"))
		assert.Equal(t, p.Index, sunday.Index)

		nextMonday := Week.PeriodOf(date("2024-01-15"))
		assert.Equal(t, p.Index+1, nextMonday.Index)
	})

	t.Run("week index is continuous across the epoch", func(t *testing.T) {
		before := Week.PeriodOf(date("1969-12-31"))
		after := Week.PeriodOf(date("1970-01-05"))
		assert.Equal(t, "1969-12-29", before.Label)
		assert.Equal(t, 1, after.Index-before.Index)
	})

	t.Run("day", func(t *testing.T) {
		p := Day.PeriodOf(time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC))
		assert.Equal(t, "2024-03-01", p.Label)
		// 2024 is a leap year
		assert.Equal(t, 1, p.Index-Day.PeriodOf(date("2024-02-29")).Index)
	})
}

func TestGranularity_Shift(t *testing.T) {
	assert.Equal(t, date("2023-11-01"), Month.Shift(date("2024-01-01"), -2))
	assert.Equal(t, date("2024-01-22"), Week.Shift(date("2024-01-08"), 2))
	assert.Equal(t, date("2024-03-01"), Day.Shift(date("2024-02-29"), 1))
}

func TestAssignPeriods(t *testing.T) {
	orders := []models.Order{
		order("C1", "2024-02-10", 10),
		order("C1", "2024-01-05", 10),
		order("C2", "2024-02-01", 10),
		order("", "2024-01-01", 10),
	}

	assignments := AssignPeriods(orders, Month)

	require.Len(t, assignments, 3)
	assert.Equal(t, "2024-02", assignments[0].Period.Label)
	assert.Equal(t, "2024-01", assignments[0].Cohort.Label)
	assert.Equal(t, 1, assignments[0].Offset())
	assert.Equal(t, 0, assignments[1].Offset())
	assert.Equal(t, "2024-02", assignments[2].Cohort.Label)

	// input untouched
	assert.Equal(t, "C1", orders[0].CustomerID)
	assert.Len(t, orders, 4)
}

func TestCohortOf(t *testing.T) {
	orders := []models.Order{
		order("C1", "2024-01-05", 10),
		order("C1", "2024-02-10", 10),
		order("C2", "2024-02-01", 10),
	}

	cohorts := CohortOf(orders, Month)

	assert.Equal(t, "2024-01", cohorts["C1"].Label)
	assert.Equal(t, "2024-02", cohorts["C2"].Label)
}
