package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the codecgen.json (or codecgen.yaml) configuration file
type Config struct {
	Name     string         `json:"name" yaml:"name"`
	Version  string         `json:"version" yaml:"version"`
	Language string         `json:"language" yaml:"language"`
	Schema   string         `json:"schema" yaml:"schema"`
	Generate GenerateConfig `json:"generate" yaml:"generate"`
	Dev      DevConfig      `json:"dev" yaml:"dev"`
}

// GenerateConfig contains output-specific configuration
type GenerateConfig struct {
	// Output is the directory generated codec files are written to
	Output string `json:"output" yaml:"output"`

	// KeepRules is the path of the shrinker keep-rules file; empty disables
	// writing it
	KeepRules string `json:"keepRules" yaml:"keepRules"`
}

// DevConfig contains watch-mode configuration
type DevConfig struct {
	Watch   []string `json:"watch" yaml:"watch"`
	Exclude []string `json:"exclude" yaml:"exclude"`
}

// LoadConfig loads the configuration from the current directory or a parent
// directory
func LoadConfig() (*Config, string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get current directory: %w", err)
	}

	return loadConfigFromDir(dir)
}

// LoadConfigFromPath loads the configuration from a specific path. Files
// ending in .yaml or .yml are parsed as YAML, everything else as JSON.
func LoadConfigFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Language == "" {
		c.Language = "go"
	}
	if c.Schema == "" {
		c.Schema = "."
	}
	if c.Generate.Output == "" {
		c.Generate.Output = "./generated"
	}
	if c.Generate.KeepRules == "" {
		c.Generate.KeepRules = filepath.Join(c.Generate.Output, "keep-rules.json")
	}
	if len(c.Dev.Watch) == 0 {
		c.Dev.Watch = []string{"*.codec.gql", "**/*.codec.gql"}
	}
	if len(c.Dev.Exclude) == 0 {
		c.Dev.Exclude = []string{"generated/", "node_modules/", ".git/"}
	}
}

// SchemaFiles resolves the configured schema path, relative to root, into
// the list of IDL files to compile. A directory is scanned for *.codec.gql
// files; anything else is treated as a single file.
func (c *Config) SchemaFiles(root string) ([]string, error) {
	path := c.Schema
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("schema path %s: %w", c.Schema, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	matches, err := filepath.Glob(filepath.Join(path, "*.codec.gql"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no *.codec.gql files found in %s", path)
	}
	return matches, nil
}

// loadConfigFromDir searches for codecgen.json or codecgen.yaml in the
// given directory and its parents
func loadConfigFromDir(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		for _, name := range []string{"codecgen.json", "codecgen.yaml", "codecgen.yml"} {
			configPath := filepath.Join(dir, name)
			if _, err := os.Stat(configPath); err == nil {
				config, err := LoadConfigFromPath(configPath)
				if err != nil {
					return nil, "", err
				}
				return config, dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	return nil, "", fmt.Errorf("no codecgen.json found in %s or any parent directory", startDir)
}
