package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/pdfier/internal/flagx"
	"github.com/dmitrijs2005/pdfier/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Durations use timex.Duration,
// so "15m" and integer nanoseconds both work.
type JsonConfig struct {
	EndpointAddr                 string         `json:"endpoint_addr"`
	PublicURL                    string         `json:"public_url"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	DailyLimitBasic              int            `json:"daily_limit_basic"`
	DailyLimitPremium            int            `json:"daily_limit_premium"`
	MonthlyQueryLimit            int            `json:"monthly_query_limit"`
	LogFormat                    string         `json:"log_format"`
}

// parseJson loads the file named by -c/-config (or $PDFIER_CONFIG) over
// config. Keys missing from the file keep their current values. Panics when
// the file cannot be read or parsed.
func parseJson(config *Config) {

	jsonConfigFile := flagx.ConfigFile()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.PublicURL != "" {
		config.PublicURL = c.PublicURL
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration > 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.DailyLimitBasic > 0 {
		config.DailyLimitBasic = c.DailyLimitBasic
	}
	if c.DailyLimitPremium > 0 {
		config.DailyLimitPremium = c.DailyLimitPremium
	}
	if c.MonthlyQueryLimit > 0 {
		config.MonthlyQueryLimit = c.MonthlyQueryLimit
	}
	if c.LogFormat != "" {
		config.LogFormat = c.LogFormat
	}
}
