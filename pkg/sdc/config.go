package sdc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional driver configuration, conventionally stored in
// an sdc.yaml next to the project being compiled.
type Config struct {
	IncludePaths []string `yaml:"include"`
	Versions     []string `yaml:"versions"`
}

// LoadConfig reads a yaml configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}
