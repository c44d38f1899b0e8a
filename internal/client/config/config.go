package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the invoicekeeper CLI.
//
// Fields:
//   - ServerURL: base URL of the backend REST API.
//   - SyncInterval: how often the invoice cache is refreshed while signed in.
//   - RequestTimeout: upper bound for a single backend request.
//   - StatePath: SQLite file holding the session.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerURL      string
	SyncInterval   time.Duration
	RequestTimeout time.Duration
	StatePath      string
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:5000"
	c.SyncInterval = 30 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.StatePath = "invoicekeeper.db"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if a file is named in args) and command-line flags. Later sources
// take precedence over earlier ones. args excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.ServerURL == "":
		return fmt.Errorf("server url must not be empty")
	case c.SyncInterval <= 0:
		return fmt.Errorf("sync interval must be positive, got %s", c.SyncInterval)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	case c.StatePath == "":
		return fmt.Errorf("state path must not be empty")
	}
	return nil
}
