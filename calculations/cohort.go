package calculations

import (
	"github.com/AssilKherfi/Retention-Dashboard/models"
)

// CohortMatrix counts active customers: rows are cohorts, columns are period offsets.
// A nil cell means no customer of the cohort was observed at that offset.
type CohortMatrix struct {
	Granularity Granularity `json:"granularity"`
	Cohorts     []Period    `json:"cohorts"`
	Offsets     []int       `json:"offsets"`
	Counts      [][]*int    `json:"counts"`
}

// Rows returns the number of cohorts
func (m *CohortMatrix) Rows() int {
	return len(m.Cohorts)
}

// Cell returns the count at (row, offset) and whether it was observed
func (m *CohortMatrix) Cell(row, offset int) (int, bool) {
	if row < 0 || row >= len(m.Counts) || offset < 0 || offset >= len(m.Counts[row]) {
		return 0, false
	}
	if v := m.Counts[row][offset]; v != nil {
		return *v, true
	}
	return 0, false
}

// Size is the cohort size, i.e. the offset 0 count
func (m *CohortMatrix) Size(row int) int {
	n, _ := m.Cell(row, 0)
	return n
}

// BuildCohortMatrix counts distinct customers per (cohort, offset) and pivots.
// Offsets are contiguous from 0 to the largest offset seen in any cohort.
func BuildCohortMatrix(assignments []Assignment, g Granularity) *CohortMatrix {
	type cellKey struct {
		cohort int
		offset int
	}

	seen := make(map[cellKey]map[string]struct{})
	cohorts := make(map[int]Period)
	maxOffset := -1

	for _, a := range assignments {
		key := cellKey{cohort: a.Cohort.Index, offset: a.Offset()}
		customers, ok := seen[key]
		if !ok {
			customers = make(map[string]struct{})
			seen[key] = customers
		}
		customers[a.Order.CustomerID] = struct{}{}
		cohorts[a.Cohort.Index] = a.Cohort
		if key.offset > maxOffset {
			maxOffset = key.offset
		}
	}

	m := &CohortMatrix{
		Granularity: g,
		Cohorts:     make([]Period, 0, len(cohorts)),
		Offsets:     make([]int, 0, maxOffset+1),
	}
	for _, p := range cohorts {
		m.Cohorts = append(m.Cohorts, p)
	}
	sortPeriods(m.Cohorts)
	for k := 0; k <= maxOffset; k++ {
		m.Offsets = append(m.Offsets, k)
	}

	m.Counts = make([][]*int, len(m.Cohorts))
	for i, c := range m.Cohorts {
		row := make([]*int, len(m.Offsets))
		for _, k := range m.Offsets {
			if customers, ok := seen[cellKey{cohort: c.Index, offset: k}]; ok {
				n := len(customers)
				row[k] = &n
			}
		}
		m.Counts[i] = row
	}
	return m
}

// CohortAnalysis assigns periods and builds the cohort matrix in one step
func CohortAnalysis(orders []models.Order, g Granularity) *CohortMatrix {
	return BuildCohortMatrix(AssignPeriods(orders, g), g)
}
