// Package config handles configuration for the development backend,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the development backend.
//
// Fields:
//   - EndpointAddr: bind address of the HTTP listener.
//   - PublicURL: base URL written into download links.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - DailyLimitBasic / DailyLimitPremium: PDF operations per day by plan.
//   - MonthlyQueryLimit: chat queries per month.
//   - LogFormat: "text", "json" or "console".
type Config struct {
	EndpointAddr                 string
	PublicURL                    string
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	DailyLimitBasic              int
	DailyLimitPremium            int
	MonthlyQueryLimit            int
	LogFormat                    string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8000"
	c.PublicURL = "http://127.0.0.1:8000"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 90 * 24 * time.Hour
	c.DailyLimitBasic = 50
	c.DailyLimitPremium = 500
	c.MonthlyQueryLimit = 100
	c.LogFormat = "console"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
