// Package config assembles the runtime settings of the subkeeper CLI from
// four layers, later ones taking precedence: built-in defaults, a JSON
// config file, environment variables, and command-line flags.
package config

import "time"

// Config holds runtime settings for the subkeeper client.
//
// Mode selects the entitlement source: "local" resolves from the platform
// store's transaction set, "remote" treats the configured endpoint as the
// authoritative source. Endpoint, APIKey and CatalogID only matter in
// remote mode. An empty AppUserID makes the engine generate an anonymous
// identity.
type Config struct {
	Mode            string
	Endpoint        string
	APIKey          string
	AppUserID       string
	CatalogID       string
	CacheDSN        string
	RequestTimeout  time.Duration
	RefreshInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Mode = "local"
	c.Endpoint = "http://127.0.0.1:8080"
	c.CacheDSN = "subkeeper.db"
	c.RequestTimeout = 10 * time.Second
	c.RefreshInterval = 0
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present), environment variables, and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
