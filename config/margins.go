package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// marginsDocument accepts both a top-level "margins:" mapping and a bare
// category: fraction mapping
type marginsDocument struct {
	Margins map[string]float64 `yaml:"margins"`
}

// LoadMargins reads a per-category margin table from a YAML file
func LoadMargins(path string) (map[string]float64, error) {
	data, err := os.ReadFile(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read margins file %s: %w", path, err)
	}

	var doc marginsDocument
	if err := yaml.Unmarshal(data, &doc); err == nil && len(doc.Margins) > 0 {
		return doc.Margins, nil
	}

	var flat map[string]float64
	if err := yaml.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("failed to parse margins file %s: %w", path, err)
	}
	if flat == nil {
		flat = map[string]float64{}
	}
	return flat, nil
}

// MarginsSource replaces analysis.margins with the content of
// analysis.margins_file once every other source has been applied
type MarginsSource struct{}

// NewMarginsSource creates the margins file source
func NewMarginsSource() *MarginsSource {
	return &MarginsSource{}
}

// Name returns the source name
func (m *MarginsSource) Name() string {
	return "margins-file"
}

// Priority returns the source priority (lower is applied first)
func (m *MarginsSource) Priority() int {
	return 400
}

// Apply loads the margins file, if one is configured
func (m *MarginsSource) Apply(cfg *Config) error {
	if cfg.Analysis.MarginsFile == "" {
		return nil
	}
	margins, err := LoadMargins(cfg.Analysis.MarginsFile)
	if err != nil {
		return err
	}
	cfg.Analysis.Margins = margins
	return nil
}
