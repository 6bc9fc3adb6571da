package calculations

// RetentionMatrix holds each cohort row divided by its cohort size
type RetentionMatrix struct {
	Granularity Granularity  `json:"granularity"`
	Cohorts     []Period     `json:"cohorts"`
	Offsets     []int        `json:"offsets"`
	Rates       [][]*float64 `json:"rates"`
}

// ChurnMatrix holds the signed period-over-period change in active customers.
// Offsets start at 1; there is nothing to compare offset 0 against.
type ChurnMatrix struct {
	Granularity Granularity `json:"granularity"`
	Cohorts     []Period    `json:"cohorts"`
	Offsets     []int       `json:"offsets"`
	Deltas      [][]*int    `json:"deltas"`
}

// Retention divides every observed cell by the cohort size.
// Cells stay nil when unobserved or when the cohort size is zero.
func Retention(m *CohortMatrix) *RetentionMatrix {
	r := &RetentionMatrix{
		Granularity: m.Granularity,
		Cohorts:     append([]Period(nil), m.Cohorts...),
		Offsets:     append([]int(nil), m.Offsets...),
		Rates:       make([][]*float64, len(m.Counts)),
	}

	for i, row := range m.Counts {
		rates := make([]*float64, len(row))
		size := m.Size(i)
		if size > 0 {
			for k, v := range row {
				if v == nil {
					continue
				}
				rate := float64(*v) / float64(size)
				rates[k] = &rate
			}
		}
		r.Rates[i] = rates
	}
	return r
}

// Churn computes count[k] - count[k-1] for k >= 1. A positive delta means
// more customers were active than in the previous step, which happens when
// lapsed customers come back.
func Churn(m *CohortMatrix) *ChurnMatrix {
	c := &ChurnMatrix{
		Granularity: m.Granularity,
		Cohorts:     append([]Period(nil), m.Cohorts...),
		Offsets:     []int{},
		Deltas:      make([][]*int, len(m.Counts)),
	}
	if len(m.Offsets) > 1 {
		c.Offsets = append(c.Offsets, m.Offsets[1:]...)
	}

	for i, row := range m.Counts {
		deltas := make([]*int, len(c.Offsets))
		for k := 1; k < len(row); k++ {
			if row[k] == nil || row[k-1] == nil {
				continue
			}
			d := *row[k] - *row[k-1]
			deltas[k-1] = &d
		}
		c.Deltas[i] = deltas
	}
	return c
}
