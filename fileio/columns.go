package fileio

import "strings"

// Canonical column names. Exports from the order system use several
// spellings for the same field, each canonical name lists the accepted
// headers in order of preference.
const (
	colOrderID     = "order_id"
	colCustomerID  = "customer_id"
	colDate        = "date"
	colStatus      = "status"
	colCategory    = "business_category"
	colOrigin      = "origin"
	colPaymentType = "payment_type"
	colAmount      = "amount"
	colPrevious    = "previous_order_date"
	colRegistered  = "registered_at"
	colCountry     = "country"
)

type columnSet struct {
	aliases  map[string][]string
	required []string
}

var orderColumns = columnSet{
	aliases: map[string][]string{
		colOrderID:     {"order_id", "orderid", "id"},
		colCustomerID:  {"customer_id", "customerid", "client_id"},
		colDate:        {"date", "order_date", "createdat", "created_at"},
		colStatus:      {"status", "job_status", "new_status"},
		colCategory:    {"business_category", "businesscat", "category"},
		colOrigin:      {"origin", "customer_origine", "origine"},
		colPaymentType: {"payment_type", "paymenttype"},
		colAmount:      {"amount", "total_amount_dzd", "total_amount"},
		colPrevious:    {"previous_order_date"},
	},
	required: []string{colCustomerID, colDate},
}

var userColumns = columnSet{
	aliases: map[string][]string{
		colCustomerID: {"customer_id", "customerid", "id"},
		colRegistered: {"registered_at", "createdat", "created_at", "date"},
		colOrigin:     {"origin", "customer_origine", "origine"},
		colCountry:    {"country", "customer_country"},
	},
	required: []string{colCustomerID, colRegistered},
}

// record maps canonical column names to raw values
type record map[string]string

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

// resolve finds the position of each canonical column in header.
// Columns absent from the header are left out of the result.
func (cs columnSet) resolve(header []string) map[string]int {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeHeader(h)
		if _, seen := pos[name]; !seen {
			pos[name] = i
		}
	}

	idx := make(map[string]int, len(cs.aliases))
	for col, aliases := range cs.aliases {
		for _, alias := range aliases {
			if i, ok := pos[alias]; ok {
				idx[col] = i
				break
			}
		}
	}
	return idx
}

// missing lists the required columns idx does not cover
func (cs columnSet) missing(idx map[string]int) []string {
	var out []string
	for _, col := range cs.required {
		if _, ok := idx[col]; !ok {
			out = append(out, col)
		}
	}
	return out
}

// fromRow builds a record from a positional row
func (cs columnSet) fromRow(idx map[string]int, row []string) record {
	rec := make(record, len(idx))
	for col, i := range idx {
		if i < len(row) {
			rec[col] = strings.TrimSpace(row[i])
		}
	}
	return rec
}

// fromFields builds a record from named fields, as found in JSON objects
func (cs columnSet) fromFields(fields map[string]string) record {
	lowered := make(map[string]string, len(fields))
	for k, v := range fields {
		name := normalizeHeader(k)
		if _, seen := lowered[name]; !seen {
			lowered[name] = v
		}
	}

	rec := make(record, len(cs.aliases))
	for col, aliases := range cs.aliases {
		for _, alias := range aliases {
			if v, ok := lowered[alias]; ok {
				rec[col] = strings.TrimSpace(v)
				break
			}
		}
	}
	return rec
}
