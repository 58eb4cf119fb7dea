package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CONFIG_FILE", "PORT", "SMHI_BASE_URL", "FORECAST_LON", "FORECAST_LAT",
	"HTTP_TIMEOUT", "FORECAST_TIMEZONE", "PROBE_INTERVAL",
	"BREAKER_MAX_FAILURES", "BREAKER_OPEN_TIMEOUT", "LOG_LEVEL",
}

// clearEnv blanks every key Load reads; an empty value counts as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DefaultLon, cfg.Location.Lon)
	assert.Equal(t, DefaultLat, cfg.Location.Lat)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, uint32(5), cfg.BreakerMaxFailures)
	assert.NotNil(t, cfg.Zone)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("FORECAST_LON", "11.97")
	t.Setenv("FORECAST_LAT", "57.7")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("FORECAST_TIMEZONE", "Europe/Stockholm")
	t.Setenv("PROBE_INTERVAL", "0")
	t.Setenv("BREAKER_MAX_FAILURES", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 11.97, cfg.Location.Lon)
	assert.Equal(t, 57.7, cfg.Location.Lat)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "Europe/Stockholm", cfg.Zone.String())
	assert.Zero(t, cfg.ProbeInterval)
	assert.Zero(t, cfg.BreakerConfig().MaxConsecutiveFailures)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
port: "7070"
location:
  lon: 20.26
  lat: 67.85
httpTimeout: 4s
breakerOpenTimeout: 30s
logLevel: debug
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	clearEnv(t)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("FORECAST_LAT", "67.9")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, 20.26, cfg.Location.Lon)
	assert.Equal(t, 67.9, cfg.Location.Lat, "env takes precedence over the file")
	assert.Equal(t, 4*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 30*time.Second, cfg.BreakerOpenTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"latitude out of range": {"FORECAST_LAT": "91"},
		"longitude not numeric": {"FORECAST_LON": "east"},
		"bad timeout":           {"HTTP_TIMEOUT": "soon"},
		"zero timeout":          {"HTTP_TIMEOUT": "0s"},
		"bad base url":          {"SMHI_BASE_URL": "not a url"},
		"unknown zone":          {"FORECAST_TIMEZONE": "Mars/Olympus"},
		"bad log level":         {"LOG_LEVEL": "loud"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
