// Package config provides configuration loading and structs for the chizu server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Building match policies.
const (
	// BuildingMatchFields matches buildings on their name and address fields only.
	BuildingMatchFields = "fields"
	// BuildingMatchResidence also includes the homes of matched census residents.
	BuildingMatchResidence = "residence"
)

// Confidence policies.
const (
	// ConfidenceFixed reports every building at 100 with no reasons.
	ConfidenceFixed = "fixed"
	// ConfidenceHeuristic scores buildings by which fields matched.
	ConfidenceHeuristic = "heuristic"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Search  SearchConfig  `yaml:"search"`
	Place   PlaceConfig   `yaml:"place"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig selects the record store. DatabasePath is used by sqlite3, DSN by postgres.
type StorageConfig struct {
	Driver       string `yaml:"driver"`
	DatabasePath string `yaml:"database_path"`
	DSN          string `yaml:"dsn"`
}

// Source returns the path or DSN to open for the configured driver.
func (s *StorageConfig) Source() string {
	if s.Driver == "postgres" {
		return s.DSN
	}
	return s.DatabasePath
}

// SearchConfig holds search policy settings.
type SearchConfig struct {
	BuildingMatch string `yaml:"building_match"`
	Confidence    string `yaml:"confidence"`
	ResultLimit   int    `yaml:"result_limit"`
}

// PlaceConfig names the default place used when repairing blank building locations.
type PlaceConfig struct {
	City  string `yaml:"city"`
	State string `yaml:"state"`
}

// Load reads and parses the config file at path, applies environment overrides,
// expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed, or holds an unknown policy.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyEnv(&cfg, os.LookupEnv)
	ApplyDefaults(&cfg)

	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, filepath.Dir(path))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no config file exists: defaults plus
// environment overrides.
func Default() (*Config, error) {
	var cfg Config
	ApplyEnv(&cfg, os.LookupEnv)
	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown drivers and policies.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Search.BuildingMatch {
	case BuildingMatchFields, BuildingMatchResidence:
	default:
		return fmt.Errorf("unknown building_match policy %q", c.Search.BuildingMatch)
	}
	switch c.Search.Confidence {
	case ConfidenceFixed, ConfidenceHeuristic:
	default:
		return fmt.Errorf("unknown confidence policy %q", c.Search.Confidence)
	}
	if c.Storage.Driver == "postgres" && c.Storage.DSN == "" {
		return fmt.Errorf("postgres driver requires storage.dsn or DATABASE_URL")
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
