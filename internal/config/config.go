package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the production backend origin.
const DefaultBaseURL = "https://compassnetwork.runasp.net"

// DefaultTimeoutSeconds is the fixed request timeout for backend calls.
const DefaultTimeoutSeconds = 10

// Config represents the application configuration
type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig contains backend connection settings
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// SessionConfig contains session persistence settings
type SessionConfig struct {
	Dir string `yaml:"dir"` // directory for the device-local session store
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// Default returns the built-in configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.API.BaseURL = DefaultBaseURL
	cfg.API.TimeoutSeconds = DefaultTimeoutSeconds
	cfg.Session.Dir = defaultSessionDir()
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// Load reads configuration from a YAML file, falling back to defaults when
// the file does not exist. Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			// Config file is optional for the CLI.
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	if val := os.Getenv("FIELDTRACK_API_URL"); val != "" {
		c.API.BaseURL = val
	}
	if val := os.Getenv("FIELDTRACK_API_TIMEOUT_SECONDS"); val != "" {
		fmt.Sscanf(val, "%d", &c.API.TimeoutSeconds)
	}
	if val := os.Getenv("FIELDTRACK_SESSION_DIR"); val != "" {
		c.Session.Dir = val
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API base URL is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API base URL: %s", c.API.BaseURL)
	}

	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("invalid API timeout: %d", c.API.TimeoutSeconds)
	}

	if c.Session.Dir == "" {
		return fmt.Errorf("session store directory is required")
	}

	return nil
}

// defaultSessionDir places the session store under the user's config
// directory, falling back to a dot directory in the working directory when
// the platform reports none.
func defaultSessionDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".fieldtrack"
	}
	return filepath.Join(base, "fieldtrack")
}
