package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/owncent-admin/internal/flagx"
	"github.com/dmitrijs2005/owncent-admin/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration for interval fields, which allows parsing
// both string values such as "15m" and integer nanoseconds. After
// unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr                 string         `json:"endpoint_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	ChallengeTTL                 timex.Duration `json:"challenge_ttl"`
	StepUpCode                   string         `json:"step_up_code"`
	TwoFactorCode                string         `json:"two_factor_code"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into cfg. When no file is named, nothing happens. Read or
// parse failures panic; configuration problems should stop startup.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	cfg.EndpointAddr = c.EndpointAddr
	cfg.DatabaseDSN = c.DatabaseDSN
	cfg.SecretKey = c.SecretKey
	cfg.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	cfg.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
	cfg.ChallengeTTL = time.Duration(c.ChallengeTTL.Duration)
	cfg.StepUpCode = c.StepUpCode
	cfg.TwoFactorCode = c.TwoFactorCode
	cfg.S3RootUser = c.S3RootUser
	cfg.S3RootPassword = c.S3RootPassword
	cfg.S3Bucket = c.S3Bucket
	cfg.S3Region = c.S3Region
	cfg.S3BaseEndpoint = c.S3BaseEndpoint
}
