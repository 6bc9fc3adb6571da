package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/AssilKherfi/Retention-Dashboard/models"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00BFFF"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4500"))
)

// Retention bands used to colour cells
const (
	goodRetention = 0.5
	warnRetention = 0.2
)

// TableFormatter renders aligned terminal tables
type TableFormatter struct {
	noColor bool
}

// NewTableFormatter creates a table formatter
func NewTableFormatter(noColor bool) *TableFormatter {
	return &TableFormatter{noColor: noColor}
}

// Format writes every section as a titled table
func (f *TableFormatter) Format(w io.Writer, doc *Document) error {
	if doc.Title != "" {
		if _, err := fmt.Fprintln(w, f.paint(titleStyle, doc.Title)); err != nil {
			return err
		}
	}
	if !doc.GeneratedAt.IsZero() {
		line := "generated " + doc.GeneratedAt.Format(models.DateFormat+" 15:04:05")
		if _, err := fmt.Fprintln(w, f.paint(mutedStyle, line)); err != nil {
			return err
		}
	}

	for _, g := range buildGrids(doc, displayStyle) {
		if _, err := fmt.Fprintf(w, "\n%s\n", f.paint(titleStyle, g.title)); err != nil {
			return err
		}
		if len(g.rows) == 0 {
			if _, err := fmt.Fprintln(w, f.paint(mutedStyle, "no data")); err != nil {
				return err
			}
			continue
		}
		f.render(w, g)
	}
	return nil
}

func (f *TableFormatter) render(w io.Writer, g grid) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(g.header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)

	for i, row := range g.rows {
		if i < len(g.rates) {
			row = f.colorRates(row, g.rates[i])
		}
		table.Append(row)
	}
	table.Render()
}

func (f *TableFormatter) colorRates(row []string, rates []*float64) []string {
	if f.noColor {
		return row
	}
	out := make([]string, len(row))
	copy(out, row)
	for i, r := range rates {
		if r == nil || i >= len(out) {
			continue
		}
		out[i] = rateStyle(*r).Render(out[i])
	}
	return out
}

func rateStyle(r float64) lipgloss.Style {
	switch {
	case r >= goodRetention:
		return goodStyle
	case r >= warnRetention:
		return warnStyle
	default:
		return badStyle
	}
}

func (f *TableFormatter) paint(style lipgloss.Style, text string) string {
	if f.noColor {
		return text
	}
	return style.Render(text)
}
