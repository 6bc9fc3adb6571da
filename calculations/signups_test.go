package calculations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AssilKherfi/Retention-Dashboard/models"
)

func TestNewCustomersByPeriod(t *testing.T) {
	orders := []models.Order{
		order("C1", "2024-02-10", 10),
		order("C1", "2024-01-05", 10),
		order("C2", "2024-02-01", 10),
		order("C3", "2024-02-20", 10),
		order("C3", "2024-03-20", 10),
	}

	got := NewCustomersByPeriod(orders, Month)

	require.Len(t, got, 2)
	assert.Equal(t, "2024-01", got[0].Period.Label)
	assert.Equal(t, 1, got[0].Count)
	assert.Equal(t, "2024-02", got[1].Period.Label)
	assert.Equal(t, 2, got[1].Count)
}

func TestNewCustomersByPeriod_Empty(t *testing.T) {
	assert.Empty(t, NewCustomersByPeriod(nil, Week))
}

func TestSignupFunnel(t *testing.T) {
	users := []models.User{
		{CustomerID: "U1", RegisteredAt: date("2024-01-03")},
		{CustomerID: "U2", RegisteredAt: date("2024-01-20")},
		{CustomerID: "U3", RegisteredAt: date("2024-01-28")},
		{CustomerID: "U4", RegisteredAt: date("2024-02-02")},
		// duplicate registration keeps the earliest
		{CustomerID: "U4", RegisteredAt: date("2024-03-02")},
		{CustomerID: "", RegisteredAt: date("2024-02-02")},
	}

	failed := order("U2", "2024-01-21", 10)
	failed.Status = models.StatusFailed
	orders := []models.Order{
		order("U1", "2024-01-04", 10),
		failed,
		order("U4", "2024-02-10", 10),
	}

	rows := SignupFunnel(users, orders, Month)

	require.Len(t, rows, 2)

	jan := rows[0]
	assert.Equal(t, "2024-01", jan.Period.Label)
	assert.Equal(t, 3, jan.Registered)
	assert.Equal(t, 2, jan.Ordered)
	assert.Equal(t, 1, jan.Completed)
	assert.Equal(t, 1, jan.OrderedNotCompleted)
	assert.Equal(t, 1, jan.NeverOrdered)
	assert.InDelta(t, 1.0/3.0, jan.ConversionRate(), 1e-9)

	feb := rows[1]
	assert.Equal(t, "2024-02", feb.Period.Label)
	assert.Equal(t, 1, feb.Registered)
	assert.Equal(t, 1, feb.Completed)
}

func TestFunnelRow_ConversionRateEmpty(t *testing.T) {
	assert.Equal(t, 0.0, FunnelRow{}.ConversionRate())
}
