// Package config holds treenav's process-wide presentation defaults.
// The core itself needs no configuration (spec section 6: "no required
// variables at the core"); this package only covers presentation
// defaults for the pretty-printer, in the same DefaultConfig/Load/Save
// shape as the source's internal/config/config.go, trimmed down from its
// dozens of application-specific sub-configs to a handful of fields.
// cmd/treenav does not load it: its -d/-b/-v flags carry their own
// defaults.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape of a treenav config file.
type Config struct {
	PrintDepth   int  `yaml:"print_depth"`
	PrintBreadth int  `yaml:"print_breadth"`
	Verbose      bool `yaml:"verbose"`
}

// DefaultConfig matches the CLI's documented defaults: unlimited depth
// and breadth (0 means "no limit", per the pretty-printer), verbose off.
func DefaultConfig() *Config {
	return &Config{
		PrintDepth:   0,
		PrintBreadth: 0,
		Verbose:      false,
	}
}

// Load reads a YAML config file, falling back to DefaultConfig if the
// path does not exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg back out as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
