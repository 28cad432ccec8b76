// Package config loads an optional YAML file that overrides the built-in
// table mapping and paths.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/tordrt/seedgen/internal/seed"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk mapping file
type Config struct {
	TemplatesDir string        `yaml:"templates_dir"`
	Output       string        `yaml:"output"`
	Tables       []TableConfig `yaml:"tables"`
}

// TableConfig maps one template file to its target table
type TableConfig struct {
	File  string `yaml:"file"`
	Table string `yaml:"table"`
}

// LoadConfig reads and validates the mapping file at path
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Mappings returns the tables in file order
func (c *Config) Mappings() []seed.Mapping {
	mappings := make([]seed.Mapping, len(c.Tables))
	for i, t := range c.Tables {
		mappings[i] = seed.Mapping{File: t.File, Table: t.Table}
	}
	return mappings
}

func (c *Config) validate() error {
	if len(c.Tables) == 0 {
		return errors.New("at least one table is required")
	}
	seen := make(map[string]bool, len(c.Tables))
	for i, t := range c.Tables {
		if t.File == "" {
			return fmt.Errorf("tables[%d].file is required", i)
		}
		if t.Table == "" {
			return fmt.Errorf("tables[%d].table is required", i)
		}
		if !seed.ValidTableName(t.Table) {
			return fmt.Errorf("tables[%d].table %q is not a valid table name", i, t.Table)
		}
		if seen[t.File] {
			return fmt.Errorf("template %s is mapped more than once", t.File)
		}
		seen[t.File] = true
	}
	return nil
}
