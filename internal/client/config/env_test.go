package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	origFiles := dotenvFiles
	t.Cleanup(func() { dotenvFiles = origFiles })
	dotenvFiles = nil

	t.Setenv(EnvBackendURL, "https://api.pdfier.com")
	t.Setenv(EnvEnvironment, EnvProduction)
	t.Setenv(EnvAccessTTL, "30m")
	t.Setenv(EnvGuestLimit, "4")
	t.Setenv(EnvDebug, "true")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "https://api.pdfier.com", cfg.BackendURL)
	assert.True(t, cfg.Production())
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 4, cfg.GuestDailyLimit)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "pdfier.db", cfg.DatabasePath)
}

func TestParseEnv_Invalid(t *testing.T) {
	origFiles := dotenvFiles
	t.Cleanup(func() { dotenvFiles = origFiles })
	dotenvFiles = nil

	for name, kv := range map[string][2]string{
		"ttl":   {EnvRefreshTTL, "forever"},
		"limit": {EnvGuestLimit, "0"},
		"debug": {EnvDebug, "maybe"},
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			require.Panics(t, func() { parseEnv(&Config{}) })
		})
	}
}

func TestParseEnv_DotenvFile(t *testing.T) {
	origFiles := dotenvFiles
	t.Cleanup(func() {
		dotenvFiles = origFiles
		os.Unsetenv(EnvDownloadDir)
		os.Unsetenv(EnvLogFormat)
	})

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PDFIER_DOWNLOAD_DIR=/tmp/out\nPDFIER_LOG_FORMAT=json\n"), 0o600))
	dotenvFiles = []string{path, filepath.Join(t.TempDir(), "missing.env")}

	// process environment wins over the file
	t.Setenv(EnvLogFormat, "console")

	cfg := &Config{}
	parseEnv(cfg)

	assert.Equal(t, "/tmp/out", cfg.DownloadDir)
	assert.Equal(t, "console", cfg.LogFormat)
}
