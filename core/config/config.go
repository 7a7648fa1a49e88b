// Package config holds the run configuration for the axis extractor, loaded
// from an optional YAML file and overridable by CLI flags.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full run configuration.
type Config struct {
	Walk      WalkConfig      `yaml:"walk"`
	Export    ExportConfig    `yaml:"export"`
	Discovery DiscoveryConfig `yaml:"discovery"`
}

// WalkConfig controls the tree walk.
type WalkConfig struct {
	// ForceNoHide disables hide_from_toc pruning.
	ForceNoHide bool `yaml:"force_no_hide"`

	// VerboseWarnings enables missing-identifier diagnostics.
	VerboseWarnings bool `yaml:"verbose_warnings"`
}

// ExportConfig controls where and how axes are written.
type ExportConfig struct {
	// DataDir is the output directory for CSV and text files.
	DataDir string `yaml:"data_dir"`

	// Formats selects the file exporters: "csv", "txt".
	Formats []string `yaml:"formats"`

	// SQLitePath, when set, additionally persists axes to this database.
	SQLitePath string `yaml:"sqlite_path"`
}

// DiscoveryConfig controls course-run discovery.
type DiscoveryConfig struct {
	// PolicyExcludes are glob patterns for policy files that are not
	// course policies.
	PolicyExcludes []string `yaml:"policy_excludes"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Walk: WalkConfig{
			VerboseWarnings: true,
		},
		Export: ExportConfig{
			DataDir: "DATA",
			Formats: []string{"csv", "txt"},
		},
		Discovery: DiscoveryConfig{
			PolicyExcludes: []string{"assets.json"},
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file is not an
// error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
