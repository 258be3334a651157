package config

import "time"

// Config holds runtime settings for the DevMatch CLI.
//
// Fields:
//   - BaseURL: root of the backend REST API, including the path prefix.
//   - RequestTimeout: upper bound for a single HTTP request.
//   - StateDir: directory holding the local state database and device secret.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	StateDir       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://localhost:8080/api"
	c.RequestTimeout = 15 * time.Second
	c.StateDir = ".devmatch"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
