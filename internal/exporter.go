package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/AssilKherfi/Retention-Dashboard/calculations"
	"github.com/AssilKherfi/Retention-Dashboard/config"
	"github.com/AssilKherfi/Retention-Dashboard/output"
)

// Exporter renders documents to the configured file, or to a writer when
// no output file is set
type Exporter struct {
	formatter  output.Formatter
	format     string
	outputFile string
	currency   string
}

// ExportResult describes one export
type ExportResult struct {
	OutputFile string
	Format     string
	Bytes      int64
	Duration   time.Duration
}

// NewExporter creates an exporter from the report section
func NewExporter(cfg *config.Config) (*Exporter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	f, err := output.New(cfg.Report.Format, output.Options{NoColor: cfg.Report.NoColor || cfg.Report.OutputFile != ""})
	if err != nil {
		return nil, err
	}
	return &Exporter{
		formatter:  f,
		format:     cfg.Report.Format,
		outputFile: expandHome(cfg.Report.OutputFile),
		currency:   cfg.Currency.Base,
	}, nil
}

// Document assembles the sections to render from a report and the optional
// retargeting and funnel tables
func (e *Exporter) Document(title string, report *Report, retarget *calculations.RetargetReport, funnel []calculations.FunnelRow, sections ...output.Section) *output.Document {
	doc := &output.Document{
		Title:         title,
		LocalCurrency: e.currency,
		Sections:      sections,
		Retarget:      retarget,
		Funnel:        funnel,
	}
	if report != nil {
		doc.GeneratedAt = report.GeneratedAt
		doc.Result = report.Result
	}
	return doc
}

// Export writes doc to the output file, or to w
func (e *Exporter) Export(doc *output.Document, w io.Writer) (*ExportResult, error) {
	start := time.Now()
	result := &ExportResult{OutputFile: e.outputFile, Format: e.format}

	if e.outputFile == "" {
		cw := &countingWriter{w: w}
		if err := e.formatter.Format(cw, doc); err != nil {
			return nil, fmt.Errorf("failed to render report: %w", err)
		}
		result.Bytes = cw.n
		result.Duration = time.Since(start)
		return result, nil
	}

	file, err := createOutputFile(e.outputFile)
	if err != nil {
		return nil, err
	}
	cw := &countingWriter{w: file}
	if err := e.formatter.Format(cw, doc); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s: %w", e.outputFile, err)
	}
	result.Bytes = cw.n
	result.Duration = time.Since(start)
	return result, nil
}

// createOutputFile creates the output file and its directory
func createOutputFile(filename string) (*os.File, error) {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
