package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of the config.yaml file.
// Review settings that are easier to manage as a list than as env vars.
type YAMLConfig struct {
	SuggestedCategories []string `yaml:"suggested_categories"` // autocomplete for the add-category input
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	return loadYAMLConfigFile(getEnv("CONFIG_FILE", "config.yaml"))
}

func loadYAMLConfigFile(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.SuggestedCategories = dedupeLower(cfg.SuggestedCategories)
	return &cfg, nil
}

// Suggestions returns the suggested categories; safe on a nil config.
func (c *YAMLConfig) Suggestions() []string {
	if c == nil {
		return nil
	}
	return c.SuggestedCategories
}

func dedupeLower(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
