package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig is a DTO for the environment layer. Pointer fields distinguish
// "unset" from "set to the zero value" so unset variables do not clobber
// values from earlier layers.
type envConfig struct {
	Mode            *string        `env:"SUBKEEPER_MODE"`
	Endpoint        *string        `env:"SUBKEEPER_ENDPOINT"`
	APIKey          *string        `env:"SUBKEEPER_API_KEY"`
	AppUserID       *string        `env:"SUBKEEPER_APP_USER_ID"`
	CatalogID       *string        `env:"SUBKEEPER_CATALOG_ID"`
	CacheDSN        *string        `env:"SUBKEEPER_CACHE_DSN"`
	RequestTimeout  *time.Duration `env:"SUBKEEPER_REQUEST_TIMEOUT"`
	RefreshInterval *time.Duration `env:"SUBKEEPER_REFRESH_INTERVAL"`
}

// parseEnv overlays cfg with values from SUBKEEPER_* environment variables.
func parseEnv(cfg *Config) {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		panic(err)
	}

	if ec.Mode != nil {
		cfg.Mode = *ec.Mode
	}
	if ec.Endpoint != nil {
		cfg.Endpoint = *ec.Endpoint
	}
	if ec.APIKey != nil {
		cfg.APIKey = *ec.APIKey
	}
	if ec.AppUserID != nil {
		cfg.AppUserID = *ec.AppUserID
	}
	if ec.CatalogID != nil {
		cfg.CatalogID = *ec.CatalogID
	}
	if ec.CacheDSN != nil {
		cfg.CacheDSN = *ec.CacheDSN
	}
	if ec.RequestTimeout != nil {
		cfg.RequestTimeout = *ec.RequestTimeout
	}
	if ec.RefreshInterval != nil {
		cfg.RefreshInterval = *ec.RefreshInterval
	}
}
