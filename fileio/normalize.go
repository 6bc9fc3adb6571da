package fileio

import (
	"strings"

	"github.com/AssilKherfi/Retention-Dashboard/models"
)

// DefaultCategoryAliases folds legacy category labels into the canonical ones
var DefaultCategoryAliases = map[string]string{
	"Recharge mobile":        models.CategoryAirtime,
	"Recharge mobile / ADSL": models.CategoryAirtime,
}

// Normalizer cleans loaded orders before they reach the engine
type Normalizer struct {
	excluded map[models.OrderStatus]bool
	aliases  map[string]string
}

// NewNormalizer builds a normalizer. Configured aliases extend and override
// DefaultCategoryAliases, keys match case-insensitively.
func NewNormalizer(excludedStatuses []string, aliases map[string]string) *Normalizer {
	n := &Normalizer{
		excluded: make(map[models.OrderStatus]bool, len(excludedStatuses)),
		aliases:  make(map[string]string, len(DefaultCategoryAliases)+len(aliases)),
	}
	for _, s := range excludedStatuses {
		n.excluded[models.ParseOrderStatus(s)] = true
	}
	for from, to := range DefaultCategoryAliases {
		n.aliases[aliasKey(from)] = to
	}
	for from, to := range aliases {
		n.aliases[aliasKey(from)] = strings.TrimSpace(to)
	}
	return n
}

func aliasKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Category maps a raw category label to its canonical form
func (n *Normalizer) Category(raw string) string {
	c := strings.TrimSpace(raw)
	if to, ok := n.aliases[aliasKey(c)]; ok {
		return to
	}
	return c
}

// Excluded reports whether orders with status s are discarded at load
func (n *Normalizer) Excluded(s models.OrderStatus) bool {
	return n.excluded[s]
}

// Orders returns the orders that survive normalization, with canonical
// categories. Orders without a customer are kept and counted, the engine
// drops them itself. The input slice is not modified.
func (n *Normalizer) Orders(orders []models.Order, stats *LoadStats) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if n.Excluded(o.Status) {
			stats.Excluded++
			continue
		}
		o.BusinessCategory = n.Category(o.BusinessCategory)
		if o.BusinessCategory == "" {
			stats.EmptyCategory++
			continue
		}
		if !o.HasCustomer() {
			stats.MissingCustomer++
		}
		out = append(out, o)
	}
	stats.Loaded = len(out)
	return out
}
