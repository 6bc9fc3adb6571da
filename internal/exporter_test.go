package internal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AssilKherfi/Retention-Dashboard/output"
)

func TestExporter_ToWriter(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.Format = "csv"
	app := newTestApp(t, cfg)

	report, err := app.Analyze(context.Background())
	require.NoError(t, err)

	exp, err := NewExporter(cfg)
	require.NoError(t, err)

	var buf bytes.Buffer
	doc := exp.Document("cohorts", report, nil, nil, output.CohortSections...)
	res, err := exp.Export(doc, &buf)
	require.NoError(t, err)

	assert.Equal(t, int64(buf.Len()), res.Bytes)
	assert.Equal(t, "csv", res.Format)
	assert.Empty(t, res.OutputFile)
	assert.Contains(t, buf.String(), "# cohort\n")
	assert.Contains(t, buf.String(), "# retention\n")
	assert.Contains(t, buf.String(), "2024-01,1,1\n")
	assert.Equal(t, testNow, doc.GeneratedAt)
	assert.Equal(t, "DZD", doc.LocalCurrency)
}

func TestExporter_ToFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.Format = "json"
	cfg.Report.OutputFile = filepath.Join(t.TempDir(), "reports", "ltv.json")
	app := newTestApp(t, cfg)

	report, err := app.Analyze(context.Background())
	require.NoError(t, err)

	exp, err := NewExporter(cfg)
	require.NoError(t, err)

	var stdout bytes.Buffer
	res, err := exp.Export(exp.Document("ltv", report, nil, nil, output.LTVSections...), &stdout)
	require.NoError(t, err)

	assert.Zero(t, stdout.Len())
	data, err := os.ReadFile(cfg.Report.OutputFile)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), res.Bytes)
	assert.Contains(t, string(data), `"summary"`)
	assert.NotContains(t, string(data), `"cohort"`)
}

func TestNewExporter_Errors(t *testing.T) {
	_, err := NewExporter(nil)
	assert.Error(t, err)

	cfg := testConfig(t)
	cfg.Report.Format = "xlsx"
	_, err = NewExporter(cfg)
	assert.Error(t, err)
}
