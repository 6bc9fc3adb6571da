package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read into the config
const EnvPrefix = "RETENTION"

// Source represents a configuration source. Sources are applied in priority
// order on top of the defaults and only overwrite what they define.
type Source interface {
	Name() string
	Apply(cfg *Config) error
	Priority() int
}

// Validator validates configuration
type Validator interface {
	Validate(cfg *Config) error
}

// Loader loads configuration from multiple sources
type Loader struct {
	sources    []Source
	validators []Validator
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		sources:    make([]Source, 0),
		validators: make([]Validator, 0),
	}
}

// AddSource adds a configuration source
func (l *Loader) AddSource(source Source) {
	l.sources = append(l.sources, source)
}

// AddValidator adds a configuration validator
func (l *Loader) AddValidator(validator Validator) {
	l.validators = append(l.validators, validator)
}

// LoadWithDefaults loads configuration with defaults as base
func (l *Loader) LoadWithDefaults() (*Config, error) {
	return l.Load(DefaultConfig())
}

// Load applies every source to base, then validates the result
func (l *Loader) Load(base *Config) (*Config, error) {
	// Sort sources by priority
	sort.SliceStable(l.sources, func(i, j int) bool {
		return l.sources[i].Priority() < l.sources[j].Priority()
	})

	config := base
	for _, source := range l.sources {
		if err := source.Apply(config); err != nil {
			return nil, fmt.Errorf("%s: %w", source.Name(), err)
		}
	}

	// Validate final configuration
	for _, validator := range l.validators {
		if err := validator.Validate(config); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return config, nil
}

// replaceCollections makes decoded slices and maps replace the defaults
// instead of being merged into them
func replaceCollections(dc *mapstructure.DecoderConfig) {
	dc.ZeroFields = true
}

// FileSource loads configuration from a file
type FileSource struct {
	path     string
	optional bool
}

// NewFileSource creates a new file configuration source
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// NewOptionalFileSource creates a file source that is skipped when the file is missing
func NewOptionalFileSource(path string) *FileSource {
	return &FileSource{path: path, optional: true}
}

// Name returns the source name
func (f *FileSource) Name() string {
	return fmt.Sprintf("file:%s", f.path)
}

// Priority returns the source priority (lower is applied first)
func (f *FileSource) Priority() int {
	return 100
}

// Apply reads the file and overlays it on cfg
func (f *FileSource) Apply(cfg *Config) error {
	// Expand environment variables in path
	expandedPath := os.ExpandEnv(f.path)

	// Check if file exists
	if _, err := os.Stat(expandedPath); os.IsNotExist(err) {
		if f.optional {
			return nil
		}
		return fmt.Errorf("configuration file not found: %s", expandedPath)
	}

	v := viper.New()
	v.SetConfigFile(expandedPath)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", expandedPath, err)
	}

	if err := v.Unmarshal(cfg, replaceCollections); err != nil {
		return fmt.Errorf("failed to unmarshal config from %s: %w", expandedPath, err)
	}

	if cfg.Analysis.MarginsFile != "" && !filepath.IsAbs(cfg.Analysis.MarginsFile) {
		cfg.Analysis.MarginsFile = filepath.Join(filepath.Dir(expandedPath), cfg.Analysis.MarginsFile)
	}
	return nil
}

// EnvSource loads configuration from environment variables
type EnvSource struct {
	prefix string
	mapper *EnvMapper
}

// NewEnvSource creates a new environment variable configuration source.
// Keys map to PREFIX_SECTION_FIELD, e.g. RETENTION_ANALYSIS_GRANULARITY.
func NewEnvSource(prefix string) *EnvSource {
	return &EnvSource{
		prefix: prefix,
		mapper: NewEnvMapper(),
	}
}

// Name returns the source name
func (e *EnvSource) Name() string {
	return fmt.Sprintf("env:%s", e.prefix)
}

// Priority returns the source priority (lower is applied first)
func (e *EnvSource) Priority() int {
	return 200
}

// Apply overlays the environment on cfg
func (e *EnvSource) Apply(cfg *Config) error {
	// well-known variables first so prefixed ones win
	if err := e.mapper.Apply(cfg); err != nil {
		return err
	}

	v := viper.New()
	v.SetEnvPrefix(e.prefix)
	v.AutomaticEnv()

	// Replace dots and dashes with underscores for env vars
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// Bind every config key so Unmarshal sees env-only values
	for _, key := range ConfigKeys() {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := v.Unmarshal(cfg, replaceCollections); err != nil {
		return fmt.Errorf("failed to unmarshal config from environment: %w", err)
	}

	return nil
}

// ConfigKeys lists every scalar and list key of Config in dotted form,
// e.g. "cache.ttl". Map-valued keys can only come from files.
func ConfigKeys() []string {
	var keys []string
	collectKeys(reflect.TypeOf(Config{}), "", &keys)
	sort.Strings(keys)
	return keys
}

func collectKeys(t reflect.Type, prefix string, keys *[]string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		switch field.Type.Kind() {
		case reflect.Struct:
			collectKeys(field.Type, key, keys)
			continue
		case reflect.Map:
			continue
		}
		*keys = append(*keys, key)
	}
}

// FlagSource loads configuration from command-line flags
type FlagSource struct {
	flags *pflag.FlagSet
}

// NewFlagSource creates a new flag configuration source
func NewFlagSource(flags *pflag.FlagSet) *FlagSource {
	return &FlagSource{
		flags: flags,
	}
}

// Name returns the source name
func (f *FlagSource) Name() string {
	return "flags"
}

// Priority returns the source priority (lower is applied first)
func (f *FlagSource) Priority() int {
	return 300
}

// flagKeys maps command-line flags onto config keys
var flagKeys = map[string]string{
	"log-level":    "app.log_level",
	"log-file":     "app.log_file",
	"debug":        "app.debug",
	"verbose":      "app.verbose",
	"source":       "data.source",
	"orders":       "data.orders_path",
	"users":        "data.users_path",
	"input-format": "data.format",
	"watch":        "data.watch",
	"granularity":  "analysis.granularity",
	"status":       "analysis.statuses",
	"origin":       "analysis.origins",
	"category":     "analysis.categories",
	"start":        "analysis.start_date",
	"end":          "analysis.end_date",
	"lookback":     "analysis.lookback_periods",
	"margins-file": "analysis.margins_file",
	"fx-rate":      "currency.rate",
	"fx-provider":  "currency.provider",
	"cache":        "cache.enabled",
	"cache-dir":    "cache.dir",
	"format":       "report.format",
	"output":       "report.output_file",
	"no-color":     "report.no_color",
	"schedule":     "report.schedule",
	"channel":      "report.slack_channel",
	"metrics-addr": "report.metrics_addr",
}

// Apply overlays every changed flag on cfg
func (f *FlagSource) Apply(cfg *Config) error {
	v := viper.New()

	var bindErr error
	f.flags.VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed || bindErr != nil {
			return
		}
		if key, ok := flagKeys[flag.Name]; ok {
			bindErr = v.BindPFlag(key, flag)
		}
	})
	if bindErr != nil {
		return fmt.Errorf("failed to bind flags: %w", bindErr)
	}

	if err := v.Unmarshal(cfg, replaceCollections); err != nil {
		return fmt.Errorf("failed to unmarshal config from flags: %w", err)
	}
	return nil
}

// Load builds the configuration the CLI uses: defaults, then the first
// config file found (or the explicit path), then .env files and the
// environment, then flags.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	loader := NewLoader()
	if path != "" {
		loader.AddSource(NewFileSource(path))
	} else {
		for _, p := range ConfigPaths() {
			if _, err := os.Stat(os.ExpandEnv(p)); err == nil {
				loader.AddSource(NewFileSource(p))
				break
			}
		}
	}
	loader.AddSource(NewEnvSource(EnvPrefix))
	if flags != nil {
		loader.AddSource(NewFlagSource(flags))
	}
	loader.AddSource(NewMarginsSource())
	loader.AddValidator(NewStandardValidator())

	return loader.LoadWithDefaults()
}
