package config

import (
	"time"
)

// Config represents the complete application configuration
type Config struct {
	// Application
	App AppConfig `yaml:"app" json:"app" mapstructure:"app"`

	// Order and user sources
	Data DataConfig `yaml:"data" json:"data" mapstructure:"data"`

	// Cohort and LTV parameters
	Analysis AnalysisConfig `yaml:"analysis" json:"analysis" mapstructure:"analysis"`

	// Exchange rate
	Currency CurrencyConfig `yaml:"currency" json:"currency" mapstructure:"currency"`

	// Result memoization
	Cache CacheConfig `yaml:"cache" json:"cache" mapstructure:"cache"`

	// Output and delivery
	Report ReportConfig `yaml:"report" json:"report" mapstructure:"report"`
}

// AppConfig contains general application settings
type AppConfig struct {
	Name     string `yaml:"name" json:"name" mapstructure:"name"`
	Version  string `yaml:"version" json:"version" mapstructure:"version"`
	LogLevel string `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
	LogFile  string `yaml:"log_file" json:"log_file" mapstructure:"log_file"`
	Timezone string `yaml:"timezone" json:"timezone" mapstructure:"timezone"`
	Debug    bool   `yaml:"debug" json:"debug" mapstructure:"debug"`
	Verbose  bool   `yaml:"verbose" json:"verbose" mapstructure:"verbose"`
}

// Source kinds
const (
	SourceFile = "file"
	SourceS3   = "s3"
	SourceSQL  = "sql"
)

// DataConfig contains order source and normalization settings
type DataConfig struct {
	Source           string            `yaml:"source" json:"source" mapstructure:"source"`
	OrdersPath       string            `yaml:"orders_path" json:"orders_path" mapstructure:"orders_path"`
	UsersPath        string            `yaml:"users_path" json:"users_path" mapstructure:"users_path"`
	Format           string            `yaml:"format" json:"format" mapstructure:"format"`
	ExcludedStatuses []string          `yaml:"excluded_statuses" json:"excluded_statuses" mapstructure:"excluded_statuses"`
	CategoryAliases  map[string]string `yaml:"category_aliases" json:"category_aliases" mapstructure:"category_aliases"`
	MaxFileSize      int64             `yaml:"max_file_size" json:"max_file_size" mapstructure:"max_file_size"`
	Watch            bool              `yaml:"watch" json:"watch" mapstructure:"watch"`
	WatchDebounce    time.Duration     `yaml:"watch_debounce" json:"watch_debounce" mapstructure:"watch_debounce"`
	S3               S3Config          `yaml:"s3" json:"s3" mapstructure:"s3"`
	SQL              SQLConfig         `yaml:"sql" json:"sql" mapstructure:"sql"`
}

// S3Config locates order and user exports in a bucket
type S3Config struct {
	Bucket    string `yaml:"bucket" json:"bucket" mapstructure:"bucket"`
	OrdersKey string `yaml:"orders_key" json:"orders_key" mapstructure:"orders_key"`
	UsersKey  string `yaml:"users_key" json:"users_key" mapstructure:"users_key"`
	Region    string `yaml:"region" json:"region" mapstructure:"region"`
	Progress  bool   `yaml:"progress" json:"progress" mapstructure:"progress"`
}

// SQLConfig reads orders straight from a database
type SQLConfig struct {
	Driver      string        `yaml:"driver" json:"driver" mapstructure:"driver"`
	DSN         string        `yaml:"dsn" json:"-" mapstructure:"dsn"`
	OrdersQuery string        `yaml:"orders_query" json:"orders_query" mapstructure:"orders_query"`
	UsersQuery  string        `yaml:"users_query" json:"users_query" mapstructure:"users_query"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
}

// AnalysisConfig holds the parameters of a pipeline run
type AnalysisConfig struct {
	Granularity     string             `yaml:"granularity" json:"granularity" mapstructure:"granularity"`
	Statuses        []string           `yaml:"statuses" json:"statuses" mapstructure:"statuses"`
	Origins         []string           `yaml:"origins" json:"origins" mapstructure:"origins"`
	Categories      []string           `yaml:"categories" json:"categories" mapstructure:"categories"`
	StartDate       string             `yaml:"start_date" json:"start_date" mapstructure:"start_date"`
	EndDate         string             `yaml:"end_date" json:"end_date" mapstructure:"end_date"`
	LookbackPeriods int                `yaml:"lookback_periods" json:"lookback_periods" mapstructure:"lookback_periods"`
	LTVCategories   []string           `yaml:"ltv_categories" json:"ltv_categories" mapstructure:"ltv_categories"`
	Margins         map[string]float64 `yaml:"margins" json:"margins" mapstructure:"margins"`
	MarginsFile     string             `yaml:"margins_file" json:"margins_file" mapstructure:"margins_file"`
}

// Rate providers
const (
	ProviderStatic = "static"
	ProviderHTTP   = "http"
)

// CurrencyConfig contains exchange rate settings. Rates are local units per
// one foreign unit.
type CurrencyConfig struct {
	Base       string        `yaml:"base" json:"base" mapstructure:"base"`
	Foreign    string        `yaml:"foreign" json:"foreign" mapstructure:"foreign"`
	Provider   string        `yaml:"provider" json:"provider" mapstructure:"provider"`
	Rate       float64       `yaml:"rate" json:"rate" mapstructure:"rate"`
	APIURL     string        `yaml:"api_url" json:"api_url" mapstructure:"api_url"`
	APIKey     string        `yaml:"api_key" json:"-" mapstructure:"api_key"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
	CacheTTL   time.Duration `yaml:"cache_ttl" json:"cache_ttl" mapstructure:"cache_ttl"`
	MaxRetries int           `yaml:"max_retries" json:"max_retries" mapstructure:"max_retries"`
}

// Cache backends
const (
	CacheMemory = "memory"
	CacheBadger = "badger"
)

// CacheConfig contains memoization settings
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Backend  string        `yaml:"backend" json:"backend" mapstructure:"backend"`
	Dir      string        `yaml:"dir" json:"dir" mapstructure:"dir"`
	TTL      time.Duration `yaml:"ttl" json:"ttl" mapstructure:"ttl"`
	Capacity int           `yaml:"capacity" json:"capacity" mapstructure:"capacity"`
	Compress bool          `yaml:"compress" json:"compress" mapstructure:"compress"` // gzip cached results
}

// ReportConfig contains output and delivery settings
type ReportConfig struct {
	Format         string `yaml:"format" json:"format" mapstructure:"format"`
	OutputFile     string `yaml:"output_file" json:"output_file" mapstructure:"output_file"`
	NoColor        bool   `yaml:"no_color" json:"no_color" mapstructure:"no_color"`
	SlackToken     string `yaml:"slack_token" json:"-" mapstructure:"slack_token"`
	SlackChannel   string `yaml:"slack_channel" json:"slack_channel" mapstructure:"slack_channel"`
	Schedule       string `yaml:"schedule" json:"schedule" mapstructure:"schedule"`
	MetricsEnabled bool   `yaml:"metrics_enabled" json:"metrics_enabled" mapstructure:"metrics_enabled"`
	MetricsAddr    string `yaml:"metrics_addr" json:"metrics_addr" mapstructure:"metrics_addr"`
}

// ConfigPaths returns the default configuration file paths in order of precedence
func ConfigPaths() []string {
	return []string{
		"./retention.yaml",
		"$HOME/.config/retention/config.yaml",
		"$HOME/.retention/config.yaml",
		"/etc/retention/config.yaml",
	}
}

// Version will be set at build time
var Version = "dev"

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:     "Retention Dashboard",
			Version:  Version,
			LogLevel: "info",
			Timezone: "UTC",
		},
		Data: DataConfig{
			Source:           SourceFile,
			OrdersPath:       "orders.csv",
			ExcludedStatuses: []string{"ABANDONED"},
			CategoryAliases:  map[string]string{},
			MaxFileSize:      500 * 1024 * 1024, // 500MB
			WatchDebounce:    500 * time.Millisecond,
			S3: S3Config{
				Region: "eu-west-3",
			},
			SQL: SQLConfig{
				Driver:  "postgres",
				Timeout: 30 * time.Second,
			},
		},
		Analysis: AnalysisConfig{
			Granularity:   "month",
			LTVCategories: []string{"Alimentation", "Shopping", "Airtime"},
			Margins: map[string]float64{
				"Alimentation": 0.10,
				"Shopping":     0.08,
				"Airtime":      0.21,
			},
		},
		Currency: CurrencyConfig{
			Base:       "DZD",
			Foreign:    "EUR",
			Provider:   ProviderStatic,
			Timeout:    10 * time.Second,
			CacheTTL:   12 * time.Hour,
			MaxRetries: 3,
		},
		Cache: CacheConfig{
			Enabled:  true,
			Backend:  CacheMemory,
			TTL:      15 * time.Minute,
			Capacity: 64,
		},
		Report: ReportConfig{
			Format:      "table",
			Schedule:    "0 8 * * 1", // Mondays 08:00
			MetricsAddr: ":9102",
		},
	}
}

// DevelopmentConfig returns a configuration optimized for development
func DevelopmentConfig() *Config {
	cfg := DefaultConfig()
	cfg.App.LogLevel = "debug"
	cfg.App.Debug = true
	cfg.Cache.Enabled = false
	return cfg
}
