package output

import (
	"encoding/csv"
	"io"
)

// CSVFormatter writes every section as a CSV block introduced by a
// "# <section>" line. Null cells are empty and rates are raw fractions.
type CSVFormatter struct{}

// NewCSVFormatter creates a CSV formatter
func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

// Format writes the requested sections
func (f *CSVFormatter) Format(w io.Writer, doc *Document) error {
	cw := csv.NewWriter(w)
	for i, g := range buildGrids(doc, rawStyle) {
		if i > 0 {
			if err := cw.Write([]string{""}); err != nil {
				return err
			}
		}
		if err := cw.Write([]string{"# " + string(g.section)}); err != nil {
			return err
		}
		if err := cw.Write(g.header); err != nil {
			return err
		}
		if err := cw.WriteAll(g.rows); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
