package config

import "time"

// Config holds runtime settings for the OwnCent admin CLI.
//
// Fields:
//   - EndpointURL: base URL of the authoritative store (scheme://host:port).
//   - TenantID: tenant identifier attached to every request.
//   - LocalDBPath: SQLite file holding the persisted refresh credential.
//   - RequestTimeout: per-request HTTP timeout.
type Config struct {
	EndpointURL    string
	TenantID       string
	LocalDBPath    string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointURL = "http://127.0.0.1:8080"
	c.TenantID = "tenant-demo"
	c.LocalDBPath = "owncent-admin.db"
	c.RequestTimeout = 30 * time.Second
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
