package models

// Business categories used by the LTV pages
const (
	CategoryGrocery  = "Alimentation"
	CategoryShopping = "Shopping"
	CategoryAirtime  = "Airtime"
)

// Customer origins
const (
	OriginDiaspora = "diaspora"
	OriginLocal    = "local"
)

// Currencies
const (
	CurrencyDZD = "DZD"
	CurrencyEUR = "EUR"
)

// DefaultLTVCategories lists the categories the LTV summary is computed for
var DefaultLTVCategories = []string{CategoryGrocery, CategoryShopping, CategoryAirtime}

// DefaultMargins is the static gross-margin table per business category
func DefaultMargins() map[string]float64 {
	return map[string]float64{
		CategoryGrocery:  0.10,
		CategoryShopping: 0.08,
		CategoryAirtime:  0.21,
	}
}

// Time formats
const (
	DateFormat     = "2006-01-02"
	MonthFormat    = "2006-01"
	FileTimeFormat = "20060102-150405"
)

// DaysPerMonth converts a day span into fractional lifetime months
const DaysPerMonth = 30.0
