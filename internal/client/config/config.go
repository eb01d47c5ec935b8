package config

import "time"

// Environments recognised by the client.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds runtime settings for the pdfier CLI.
//
// Fields:
//   - BackendURL: base URL of the pdfier REST API.
//   - Environment: "development" or "production"; production marks cookies Secure.
//   - DatabasePath: SQLite file holding the cookie jar and persisted session.
//   - DownloadDir: where tool results are saved.
//   - AccessTokenTTL, RefreshTokenTTL: cookie lifetimes.
//   - GuestDailyLimit: operations a guest may run per day.
//   - LogFormat: "text", "json" or "console".
type Config struct {
	BackendURL      string
	Environment     string
	DatabasePath    string
	DownloadDir     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	GuestDailyLimit int
	LogFormat       string
	Debug           bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://127.0.0.1:8000"
	c.Environment = EnvDevelopment
	c.DatabasePath = "pdfier.db"
	c.DownloadDir = "downloads"
	c.AccessTokenTTL = 7 * time.Hour
	c.RefreshTokenTTL = 90 * 24 * time.Hour
	c.GuestDailyLimit = 10
	c.LogFormat = "text"
	c.Debug = false
}

// Production reports whether the client talks to a production backend.
func (c *Config) Production() bool {
	return c.Environment == EnvProduction
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
