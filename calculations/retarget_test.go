package calculations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AssilKherfi/Retention-Dashboard/models"
)

func TestRecencyBucket_Contains(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, "0-6"},
		{6, "0-6"},
		{7, "7-13"},
		{29, "21-29"},
		{30, "30-59"},
		{119, "90-119"},
		{120, "120+"},
		{1000, "120+"},
	}
	for _, tt := range tests {
		var got string
		for _, b := range RecencyBuckets {
			if b.Contains(tt.days) {
				got = b.Label
				break
			}
		}
		assert.Equal(t, tt.want, got, "days=%d", tt.days)
	}
}

func TestRetarget(t *testing.T) {
	today := date("2024-06-30")

	pending := order("C2", "2024-06-25", 10)
	pending.Status = models.StatusPending

	prev := date("2024-06-28")
	withPrevious := order("C3", "2024-01-01", 10)
	withPrevious.PreviousOrderDate = &prev

	orders := []models.Order{
		order("C1", "2024-03-01", 10),
		order("C1", "2024-05-31", 10),
		pending,
		withPrevious,
		order("C4", "2023-12-01", 10),
		order("", "2024-06-30", 10),
	}

	report := Retarget(orders, today)

	require.Len(t, report.Segments, len(RecencyBuckets))
	assert.Equal(t, 4, report.Total())

	first := report.Segments[0]
	assert.Equal(t, "0-6", first.Bucket.Label)
	require.Len(t, first.NotCompleted, 1)
	assert.Equal(t, "C2", first.NotCompleted[0].CustomerID)
	assert.Equal(t, 5, first.NotCompleted[0].DaysSince)
	require.Len(t, first.Completed, 1)
	assert.Equal(t, "C3", first.Completed[0].CustomerID)
	assert.Equal(t, 2, first.Completed[0].DaysSince)

	month := report.Segments[4]
	assert.Equal(t, "30-59", month.Bucket.Label)
	require.Len(t, month.Completed, 1)
	assert.Equal(t, "C1", month.Completed[0].CustomerID)
	assert.Equal(t, 30, month.Completed[0].DaysSince)

	last := report.Segments[7]
	require.Len(t, last.Completed, 1)
	assert.Equal(t, "C4", last.Completed[0].CustomerID)
	assert.Equal(t, "120+", last.Completed[0].Bucket)
}

func TestRetarget_FutureOrdersCountAsToday(t *testing.T) {
	report := Retarget([]models.Order{order("C1", "2024-07-05", 10)}, date("2024-06-30"))

	require.Len(t, report.Segments[0].Completed, 1)
	assert.Equal(t, 0, report.Segments[0].Completed[0].DaysSince)
}

func TestRetarget_Empty(t *testing.T) {
	report := Retarget(nil, date("2024-06-30"))

	assert.Len(t, report.Segments, len(RecencyBuckets))
	assert.Equal(t, 0, report.Total())
}
