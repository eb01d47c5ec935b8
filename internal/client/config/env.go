package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by parseEnv.
const (
	EnvBackendURL   = "PDFIER_BACKEND_URL"
	EnvEnvironment  = "PDFIER_ENV"
	EnvDatabasePath = "PDFIER_DB_PATH"
	EnvDownloadDir  = "PDFIER_DOWNLOAD_DIR"
	EnvAccessTTL    = "PDFIER_ACCESS_TTL"
	EnvRefreshTTL   = "PDFIER_REFRESH_TTL"
	EnvGuestLimit   = "PDFIER_GUEST_LIMIT"
	EnvLogFormat    = "PDFIER_LOG_FORMAT"
	EnvDebug        = "PDFIER_DEBUG"
)

// dotenvFiles is a test seam.
var dotenvFiles = []string{".env"}

// parseEnv overlays cfg with PDFIER_* variables. A .env file in the working
// directory is loaded first when present; variables already set in the
// process environment win over it. Panics on malformed values.
func parseEnv(cfg *Config) {
	for _, f := range dotenvFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			panic(fmt.Errorf("load %s: %w", f, err))
		}
	}

	if v, ok := os.LookupEnv(EnvBackendURL); ok && v != "" {
		cfg.BackendURL = v
	}
	if v, ok := os.LookupEnv(EnvEnvironment); ok && v != "" {
		cfg.Environment = v
	}
	if v, ok := os.LookupEnv(EnvDatabasePath); ok && v != "" {
		cfg.DatabasePath = v
	}
	if v, ok := os.LookupEnv(EnvDownloadDir); ok && v != "" {
		cfg.DownloadDir = v
	}
	if v, ok := os.LookupEnv(EnvLogFormat); ok && v != "" {
		cfg.LogFormat = v
	}
	if v, ok := os.LookupEnv(EnvAccessTTL); ok && v != "" {
		cfg.AccessTokenTTL = mustDuration(EnvAccessTTL, v)
	}
	if v, ok := os.LookupEnv(EnvRefreshTTL); ok && v != "" {
		cfg.RefreshTokenTTL = mustDuration(EnvRefreshTTL, v)
	}
	if v, ok := os.LookupEnv(EnvGuestLimit); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			panic(fmt.Errorf("%s: invalid limit %q", EnvGuestLimit, v))
		}
		cfg.GuestDailyLimit = n
	}
	if v, ok := os.LookupEnv(EnvDebug); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", EnvDebug, err))
		}
		cfg.Debug = b
	}
}

func mustDuration(name, v string) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", name, err))
	}
	return d
}
