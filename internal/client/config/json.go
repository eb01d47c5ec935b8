package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/pdfier/internal/flagx"
	"github.com/dmitrijs2005/pdfier/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations use
// timex.Duration so the file may say "7h" or give integer nanoseconds.
type JsonConfig struct {
	BackendURL      string         `json:"backend_url"`
	Environment     string         `json:"environment"`
	DatabasePath    string         `json:"database_path"`
	DownloadDir     string         `json:"download_dir"`
	AccessTokenTTL  timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL timex.Duration `json:"refresh_token_ttl"`
	GuestDailyLimit int            `json:"guest_daily_limit"`
	LogFormat       string         `json:"log_format"`
	Debug           *bool          `json:"debug"`
}

// parseJson overlays cfg with values from the JSON file named by -c/-config
// or $PDFIER_CONFIG. Keys missing from the file leave cfg untouched. Panics
// on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFile()
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

	setString(&cfg.BackendURL, jc.BackendURL)
	setString(&cfg.Environment, jc.Environment)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.DownloadDir, jc.DownloadDir)
	setString(&cfg.LogFormat, jc.LogFormat)
	if jc.AccessTokenTTL.Duration > 0 {
		cfg.AccessTokenTTL = jc.AccessTokenTTL.Duration
	}
	if jc.RefreshTokenTTL.Duration > 0 {
		cfg.RefreshTokenTTL = jc.RefreshTokenTTL.Duration
	}
	if jc.GuestDailyLimit > 0 {
		cfg.GuestDailyLimit = jc.GuestDailyLimit
	}
	if jc.Debug != nil {
		cfg.Debug = *jc.Debug
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
