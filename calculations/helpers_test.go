package calculations

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/AssilKherfi/Retention-Dashboard/models"
)

func date(s string) time.Time {
	t, err := time.Parse(models.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func order(customer, day string, amount int64) models.Order {
	return models.Order{
		OrderID:          customer + "-" + day,
		CustomerID:       customer,
		Date:             date(day),
		Status:           models.StatusCompleted,
		BusinessCategory: models.CategoryGrocery,
		Origin:           models.OriginLocal,
		Amount:           decimal.NewFromInt(amount),
	}
}

func categoryOrder(customer, day, category string, amount int64) models.Order {
	o := order(customer, day, amount)
	o.BusinessCategory = category
	return o
}

func intp(v int) *int {
	return &v
}

func floatp(v float64) *float64 {
	return &v
}
