package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config is the persistent application configuration
type Config struct {
	// Backend connection
	Server ServerConfig `json:"server"`

	// UI Preferences
	UI UIConfig `json:"ui"`
}

// ServerConfig holds backend connection settings
type ServerConfig struct {
	BaseURL        string  `json:"base_url"`
	TimeoutSeconds int     `json:"timeout_seconds"` // per-request deadline
	RatePerSecond  float64 `json:"rate_per_second"` // outbound request rate cap
	RateBurst      int     `json:"rate_burst"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	Theme    string `json:"theme"`
	Language string `json:"language"` // BCP 47 tag, drives title collation
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:        "http://localhost:5000",
			TimeoutSeconds: 10,
			RatePerSecond:  5,
			RateBurst:      10,
		},
		UI: UIConfig{
			Theme:    "dark",
			Language: "tr",
		},
	}
}

// Timeout returns the per-request deadline as a duration.
func (c *Config) Timeout() time.Duration {
	if c.Server.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".marquee", "config.json")
}

// Load reads config from disk, or returns defaults. The MARQUEE_SERVER
// environment variable overrides the configured base URL either way.
func Load() *Config {
	cfg := loadFile()
	if url := os.Getenv("MARQUEE_SERVER"); url != "" {
		cfg.Server.BaseURL = url
	}
	return cfg
}

func loadFile() *Config {
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		return DefaultConfig()
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig()
	}
	return cfg
}

// Save writes config to disk
func (c *Config) Save() error {
	path := ConfigPath()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
