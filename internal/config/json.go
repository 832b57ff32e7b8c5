package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/subkeeper/internal/flagx"
	"github.com/dmitrijs2005/subkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "10s"
// or as integer nanoseconds. After parsing, set fields are copied into the
// runtime Config.
type JsonConfig struct {
	Mode            *string         `json:"mode"`
	Endpoint        *string         `json:"endpoint"`
	APIKey          *string         `json:"api_key"`
	AppUserID       *string         `json:"app_user_id"`
	CatalogID       *string         `json:"catalog_id"`
	CacheDSN        *string         `json:"cache_dsn"`
	RequestTimeout  *timex.Duration `json:"request_timeout"`
	RefreshInterval *timex.Duration `json:"refresh_interval"`
}

// parseJson overlays cfg with values from the JSON file named by the -c or
// -config flag. No flag means no JSON layer. Fields absent from the file
// keep their current values. Read or unmarshal errors panic; config loading
// happens once at startup and a broken config file should stop the process.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.Mode != nil {
		cfg.Mode = *jc.Mode
	}
	if jc.Endpoint != nil {
		cfg.Endpoint = *jc.Endpoint
	}
	if jc.APIKey != nil {
		cfg.APIKey = *jc.APIKey
	}
	if jc.AppUserID != nil {
		cfg.AppUserID = *jc.AppUserID
	}
	if jc.CatalogID != nil {
		cfg.CatalogID = *jc.CatalogID
	}
	if jc.CacheDSN != nil {
		cfg.CacheDSN = *jc.CacheDSN
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.RefreshInterval != nil {
		cfg.RefreshInterval = time.Duration(jc.RefreshInterval.Duration)
	}
}
