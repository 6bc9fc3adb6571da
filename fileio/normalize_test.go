package fileio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AssilKherfi/Retention-Dashboard/models"
)

func TestNormalizer_Category(t *testing.T) {
	n := NewNormalizer(nil, map[string]string{"courses": models.CategoryGrocery})

	assert.Equal(t, models.CategoryAirtime, n.Category("Recharge mobile"))
	assert.Equal(t, models.CategoryAirtime, n.Category("recharge mobile / adsl"))
	assert.Equal(t, models.CategoryGrocery, n.Category(" Courses "))
	assert.Equal(t, "Shopping", n.Category("Shopping"))
}

func TestNormalizer_Orders(t *testing.T) {
	n := NewNormalizer([]string{"abandoned"}, nil)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	in := []models.Order{
		{CustomerID: "C1", Date: day, Status: models.StatusCompleted, BusinessCategory: "Recharge mobile"},
		{CustomerID: "C2", Date: day, Status: models.StatusAbandoned, BusinessCategory: "Shopping"},
		{CustomerID: "C3", Date: day, Status: models.StatusCompleted, BusinessCategory: "  "},
		{CustomerID: "", Date: day, Status: models.StatusPending, BusinessCategory: "Shopping"},
	}
	stats := LoadStats{Rows: 4}

	out := n.Orders(in, &stats)

	require.Len(t, out, 2)
	assert.Equal(t, models.CategoryAirtime, out[0].BusinessCategory)
	assert.Equal(t, "Recharge mobile", in[0].BusinessCategory, "input must not be modified")
	assert.Equal(t, 1, stats.Excluded)
	assert.Equal(t, 1, stats.EmptyCategory)
	assert.Equal(t, 1, stats.MissingCustomer)
	assert.Equal(t, 2, stats.Loaded)
	assert.Equal(t, 2, stats.Dropped())
	assert.Contains(t, stats.String(), "2 loaded")
}
