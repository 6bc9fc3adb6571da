package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidationRule represents a single validation rule
type ValidationRule struct {
	Field   string
	Check   func(cfg *Config) error
	Message string
}

// StandardValidator provides standard configuration validation
type StandardValidator struct {
	rules []ValidationRule
}

// NewStandardValidator creates a new standard validator with built-in rules
func NewStandardValidator() *StandardValidator {
	return &StandardValidator{
		rules: make([]ValidationRule, 0),
	}
}

// AddRule adds a custom validation rule
func (v *StandardValidator) AddRule(rule ValidationRule) {
	v.rules = append(v.rules, rule)
}

// Validate validates the entire configuration
func (v *StandardValidator) Validate(cfg *Config) error {
	var errors []string

	sections := []struct {
		name string
		err  error
	}{
		{"app", v.validateApp(&cfg.App)},
		{"data", v.validateData(&cfg.Data)},
		{"analysis", v.validateAnalysis(&cfg.Analysis)},
		{"currency", v.validateCurrency(&cfg.Currency)},
		{"cache", v.validateCache(&cfg.Cache)},
		{"report", v.validateReport(&cfg.Report)},
	}
	for _, s := range sections {
		if s.err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", s.name, s.err))
		}
	}

	for _, rule := range v.rules {
		if err := rule.Check(cfg); err != nil {
			msg := rule.Message
			if msg == "" {
				msg = err.Error()
			}
			errors = append(errors, fmt.Sprintf("%s: %s", rule.Field, msg))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func joinErrors(errors []string) error {
	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}
	return nil
}

// validateApp validates application configuration
func (v *StandardValidator) validateApp(app *AppConfig) error {
	var errors []string

	// Validate log level
	if err := ValidateLogLevel(app.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("log_level: %v", err))
	}

	// Validate log file path if specified
	if app.LogFile != "" {
		dir := filepath.Dir(app.LogFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("log_file: directory does not exist: %s", dir))
			}
		}
	}

	// Validate timezone
	if app.Timezone != "" && app.Timezone != "Local" {
		if _, err := time.LoadLocation(app.Timezone); err != nil {
			errors = append(errors, fmt.Sprintf("timezone: invalid timezone: %s", app.Timezone))
		}
	}

	return joinErrors(errors)
}

// validateData validates the order source configuration
func (v *StandardValidator) validateData(data *DataConfig) error {
	var errors []string

	switch data.Source {
	case SourceFile:
		if data.OrdersPath == "" {
			errors = append(errors, "orders_path: required for file source")
		}
	case SourceS3:
		if data.S3.Bucket == "" {
			errors = append(errors, "s3.bucket: required for s3 source")
		}
		if data.S3.OrdersKey == "" {
			errors = append(errors, "s3.orders_key: required for s3 source")
		}
	case SourceSQL:
		if err := ValidateDriver(data.SQL.Driver); err != nil {
			errors = append(errors, fmt.Sprintf("sql.driver: %v", err))
		}
		if data.SQL.DSN == "" {
			errors = append(errors, "sql.dsn: required for sql source")
		}
		if data.SQL.OrdersQuery == "" {
			errors = append(errors, "sql.orders_query: required for sql source")
		}
	default:
		errors = append(errors, fmt.Sprintf("source: must be one of file, s3, sql, got %q", data.Source))
	}

	switch strings.ToLower(data.Format) {
	case "", "csv", "jsonl", "json":
	default:
		errors = append(errors, fmt.Sprintf("format: unsupported input format %q", data.Format))
	}

	if data.MaxFileSize < 0 {
		errors = append(errors, "max_file_size: must be non-negative")
	}
	if data.WatchDebounce < 0 {
		errors = append(errors, "watch_debounce: must be non-negative")
	}

	return joinErrors(errors)
}

// validateAnalysis validates the pipeline parameters
func (v *StandardValidator) validateAnalysis(a *AnalysisConfig) error {
	var errors []string

	switch strings.ToLower(a.Granularity) {
	case "day", "daily", "week", "weekly", "month", "monthly":
	default:
		errors = append(errors, fmt.Sprintf("granularity: must be day, week or month, got %q", a.Granularity))
	}

	start, startErr := ParseDate(a.StartDate)
	if startErr != nil {
		errors = append(errors, fmt.Sprintf("start_date: %v", startErr))
	}
	end, endErr := ParseDate(a.EndDate)
	if endErr != nil {
		errors = append(errors, fmt.Sprintf("end_date: %v", endErr))
	}
	if startErr == nil && endErr == nil && !start.IsZero() && !end.IsZero() && end.Before(start) {
		errors = append(errors, "end_date: must not be before start_date")
	}

	if a.LookbackPeriods < 0 {
		errors = append(errors, "lookback_periods: must be non-negative")
	}

	for category, margin := range a.Margins {
		if margin < 0 || margin > 1 {
			errors = append(errors, fmt.Sprintf("margins.%s: must be between 0 and 1", category))
		}
	}

	return joinErrors(errors)
}

// validateCurrency validates exchange rate settings
func (v *StandardValidator) validateCurrency(c *CurrencyConfig) error {
	var errors []string

	if c.Base == "" {
		errors = append(errors, "base: must not be empty")
	}
	if c.Rate < 0 {
		errors = append(errors, "rate: must be non-negative")
	}

	switch c.Provider {
	case ProviderStatic:
	case ProviderHTTP:
		if c.APIURL == "" {
			errors = append(errors, "api_url: required for http provider")
		}
		if c.Foreign == "" {
			errors = append(errors, "foreign: required for http provider")
		}
	default:
		errors = append(errors, fmt.Sprintf("provider: must be static or http, got %q", c.Provider))
	}

	if c.MaxRetries < 0 {
		errors = append(errors, "max_retries: must be non-negative")
	}
	if c.Timeout < 0 || c.CacheTTL < 0 {
		errors = append(errors, "timeout and cache_ttl: must be non-negative")
	}

	return joinErrors(errors)
}

// validateCache validates memoization settings
func (v *StandardValidator) validateCache(c *CacheConfig) error {
	var errors []string

	if c.Backend != CacheMemory && c.Backend != CacheBadger {
		errors = append(errors, fmt.Sprintf("backend: must be memory or badger, got %q", c.Backend))
	}
	if c.TTL < 0 {
		errors = append(errors, "ttl: must be non-negative")
	}
	if c.Capacity < 0 {
		errors = append(errors, "capacity: must be non-negative")
	}

	return joinErrors(errors)
}

// validateReport validates output settings
func (v *StandardValidator) validateReport(r *ReportConfig) error {
	var errors []string

	if err := ValidateFormat(r.Format); err != nil {
		errors = append(errors, fmt.Sprintf("format: %v", err))
	}
	if r.Schedule != "" {
		if _, err := cron.ParseStandard(r.Schedule); err != nil {
			errors = append(errors, fmt.Sprintf("schedule: %v", err))
		}
	}
	if r.MetricsEnabled && r.MetricsAddr == "" {
		errors = append(errors, "metrics_addr: required when metrics are enabled")
	}

	return joinErrors(errors)
}

// ValidateLogLevel validates a log level string
func ValidateLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", level)
	}
}

// ValidateFormat validates an output format
func ValidateFormat(format string) error {
	switch strings.ToLower(format) {
	case "table", "json", "csv":
		return nil
	default:
		return fmt.Errorf("invalid format: %s (must be table, json, or csv)", format)
	}
}

// ValidateDriver validates a database/sql driver name
func ValidateDriver(driver string) error {
	switch driver {
	case "postgres", "mysql", "sqlite3":
		return nil
	default:
		return fmt.Errorf("unsupported driver: %s (must be postgres, mysql, or sqlite3)", driver)
	}
}

// ParseDate parses a YYYY-MM-DD date; the empty string is the zero time
func ParseDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}
