package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DotEnvFiles are read, when present, before the environment is consulted
var DotEnvFiles = []string{".env", ".env.local"}

// LoadDotEnv loads the .env files that exist. Variables already set in the
// environment are left alone.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = DotEnvFiles
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// StandardEnvMappings maps conventional, unprefixed variables onto config keys
var StandardEnvMappings = map[string]string{
	"AWS_REGION":       "data.s3.region",
	"DATABASE_URL":     "data.sql.dsn",
	"FX_API_KEY":       "currency.api_key",
	"SLACK_BOT_TOKEN":  "report.slack_token",
	"SLACK_CHANNEL_ID": "report.slack_channel",
}

// EnvMapper handles mapping environment variables to configuration fields
type EnvMapper struct {
	mappings map[string]string
}

// NewEnvMapper creates a mapper seeded with StandardEnvMappings
func NewEnvMapper() *EnvMapper {
	m := &EnvMapper{mappings: make(map[string]string, len(StandardEnvMappings))}
	for k, v := range StandardEnvMappings {
		m.mappings[k] = v
	}
	return m
}

// Map adds a mapping from environment variable key to configuration path
func (e *EnvMapper) Map(envKey, configPath string) {
	e.mappings[envKey] = configPath
}

// Apply applies environment variable mappings to configuration
func (e *EnvMapper) Apply(cfg *Config) error {
	for envKey, configPath := range e.mappings {
		if value := os.Getenv(envKey); value != "" {
			if err := setFieldByPath(cfg, configPath, value); err != nil {
				return fmt.Errorf("failed to set %s from %s: %w", configPath, envKey, err)
			}
		}
	}
	return nil
}

// setFieldByPath sets a configuration field by its dot-separated mapstructure path
func setFieldByPath(cfg *Config, path, value string) error {
	parts := strings.Split(path, ".")
	if len(parts) < 2 {
		return fmt.Errorf("invalid path: %s", path)
	}

	v := reflect.ValueOf(cfg).Elem()
	for i, part := range parts {
		field, ok := fieldByTag(v, part)
		if !ok {
			return fmt.Errorf("invalid field path at %s", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	if !v.CanSet() {
		return fmt.Errorf("cannot set field: %s", path)
	}
	return setFieldValue(v, value)
}

func fieldByTag(v reflect.Value, tag string) (reflect.Value, bool) {
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("mapstructure") == tag {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// setFieldValue sets a field value based on its type
func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Bool:
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid bool value: %s", value)
		}
		field.SetBool(boolVal)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			duration, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration value: %s", value)
			}
			field.SetInt(int64(duration))
		} else {
			intVal, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid int value: %s", value)
			}
			field.SetInt(intVal)
		}

	case reflect.Float64:
		floatVal, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value: %s", value)
		}
		field.SetFloat(floatVal)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type())
		}
		values := strings.Split(value, ",")
		for i, v := range values {
			values[i] = strings.TrimSpace(v)
		}
		field.Set(reflect.ValueOf(values))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Type())
	}

	return nil
}
