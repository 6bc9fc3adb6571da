package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileSource_Overlay(t *testing.T) {
	path := writeFile(t, t.TempDir(), "retention.yaml", `
analysis:
  granularity: week
  ltv_categories: [Shopping]
  margins:
    Shopping: 0.05
cache:
  ttl: 5m
currency:
  rate: 145.5
`)

	loader := NewLoader()
	loader.AddSource(NewFileSource(path))
	cfg, err := loader.LoadWithDefaults()
	require.NoError(t, err)

	assert.Equal(t, "week", cfg.Analysis.Granularity)
	assert.Equal(t, []string{"Shopping"}, cfg.Analysis.LTVCategories)
	assert.Len(t, cfg.Analysis.Margins, 1)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 145.5, cfg.Currency.Rate)

	// untouched keys keep their defaults
	assert.Equal(t, "DZD", cfg.Currency.Base)
	assert.True(t, cfg.Cache.Enabled)
}

func TestFileSource_Missing(t *testing.T) {
	loader := NewLoader()
	loader.AddSource(NewFileSource(filepath.Join(t.TempDir(), "nope.yaml")))
	_, err := loader.LoadWithDefaults()
	assert.Error(t, err)

	optional := NewLoader()
	optional.AddSource(NewOptionalFileSource(filepath.Join(t.TempDir(), "nope.yaml")))
	_, err = optional.LoadWithDefaults()
	assert.NoError(t, err)
}

func TestFileSource_RelativeMarginsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "retention.yaml", "analysis:\n  margins_file: margins.yaml\n")

	cfg := DefaultConfig()
	require.NoError(t, NewFileSource(path).Apply(cfg))

	assert.Equal(t, filepath.Join(dir, "margins.yaml"), cfg.Analysis.MarginsFile)
}

func TestEnvSource(t *testing.T) {
	t.Setenv("RETENTION_ANALYSIS_GRANULARITY", "day")
	t.Setenv("RETENTION_ANALYSIS_ORIGINS", "diaspora,local")
	t.Setenv("RETENTION_CACHE_ENABLED", "false")
	t.Setenv("RETENTION_CURRENCY_RATE", "150")
	t.Setenv("RETENTION_DATA_SQL_TIMEOUT", "2s")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")

	cfg := DefaultConfig()
	require.NoError(t, NewEnvSource(EnvPrefix).Apply(cfg))

	assert.Equal(t, "day", cfg.Analysis.Granularity)
	assert.Equal(t, []string{"diaspora", "local"}, cfg.Analysis.Origins)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 150.0, cfg.Currency.Rate)
	assert.Equal(t, 2*time.Second, cfg.Data.SQL.Timeout)
	assert.Equal(t, "xoxb-test", cfg.Report.SlackToken)

	// nothing else moved
	assert.Equal(t, "info", cfg.App.LogLevel)
}

func TestFlagSource(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("granularity", "month", "")
	flags.StringSlice("status", nil, "")
	flags.Float64("fx-rate", 0, "")
	flags.Bool("cache", true, "")
	flags.String("format", "table", "")
	require.NoError(t, flags.Parse([]string{"--granularity=week", "--status=COMPLETED", "--fx-rate=140", "--cache=false"}))

	cfg := DefaultConfig()
	require.NoError(t, NewFlagSource(flags).Apply(cfg))

	assert.Equal(t, "week", cfg.Analysis.Granularity)
	assert.Equal(t, []string{"COMPLETED"}, cfg.Analysis.Statuses)
	assert.Equal(t, 140.0, cfg.Currency.Rate)
	assert.False(t, cfg.Cache.Enabled)
	// unchanged flags do not override
	assert.Equal(t, "table", cfg.Report.Format)
}

func TestLoader_Priority(t *testing.T) {
	path := writeFile(t, t.TempDir(), "retention.yaml", "analysis:\n  granularity: week\napp:\n  log_level: warn\n")
	t.Setenv("RETENTION_ANALYSIS_GRANULARITY", "day")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--log-level=error"}))

	loader := NewLoader()
	loader.AddSource(NewFlagSource(flags))
	loader.AddSource(NewEnvSource(EnvPrefix))
	loader.AddSource(NewFileSource(path))
	cfg, err := loader.LoadWithDefaults()
	require.NoError(t, err)

	assert.Equal(t, "day", cfg.Analysis.Granularity)
	assert.Equal(t, "error", cfg.App.LogLevel)
}

func TestLoader_ValidationFails(t *testing.T) {
	path := writeFile(t, t.TempDir(), "retention.yaml", "analysis:\n  granularity: quarter\n")

	loader := NewLoader()
	loader.AddSource(NewFileSource(path))
	loader.AddValidator(NewStandardValidator())
	_, err := loader.LoadWithDefaults()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "granularity")
}

func TestLoad_WithMarginsFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "margins.yaml", "margins:\n  Shopping: 0.12\n")
	path := writeFile(t, dir, "retention.yaml", "analysis:\n  margins_file: margins.yaml\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"Shopping": 0.12}, cfg.Analysis.Margins)
}
