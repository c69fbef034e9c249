package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/owncent-admin/internal/flagx"
	"github.com/dmitrijs2005/owncent-admin/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. After parsing,
// values are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	EndpointURL    string         `json:"endpoint_url"`
	TenantID       string         `json:"tenant_id"`
	LocalDBPath    string         `json:"local_db_path"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

// parseJson overlays cfg with values loaded from the JSON file named by the
// -c/-config flags. When no file is named, nothing happens. Read or parse
// failures panic; configuration problems should stop startup.
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

	cfg.EndpointURL = jc.EndpointURL
	cfg.TenantID = jc.TenantID
	cfg.LocalDBPath = jc.LocalDBPath
	cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
}
