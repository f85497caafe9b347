package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chargespot/chargespot/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8765", cfg.Addr())
	assert.True(t, cfg.IsLoopback())
	assert.Equal(t, "https://api.openchargemap.io/v3", cfg.OpenChargeMap.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.OpenChargeMap.Timeout)
	assert.Equal(t, uint64(1), cfg.OpenChargeMap.MaxRetries)
	assert.True(t, cfg.Report.Compress)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("APP_PORT", "9001")
	t.Setenv("OCM_API_KEY", "secret")
	t.Setenv("OCM_TIMEOUT", "15s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OTEL_ENABLED", "true")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "9001", cfg.Bridge.Port)
	assert.Equal(t, "secret", cfg.OpenChargeMap.APIKey)
	assert.Equal(t, 15*time.Second, cfg.OpenChargeMap.Timeout)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.True(t, cfg.Telemetry.Enabled)
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chargespot.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: test
bridge:
  port: "9100"
openchargemap:
  base_url: http://localhost:9999/v3
  max_retries: 3
`), 0o600))

	t.Setenv("OCM_BASE_URL", "http://override.local/v3")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "9100", cfg.Bridge.Port)
	assert.Equal(t, "http://override.local/v3", cfg.OpenChargeMap.BaseURL)
	assert.Equal(t, uint64(3), cfg.OpenChargeMap.MaxRetries)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"APP_PORT":          "http",
		"OCM_TIMEOUT":       "0s",
		"OTEL_SAMPLE_RATIO": "1.5",
		"LOG_LEVEL":         "loud",
	}

	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, value)
			_, err := config.Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestIsLoopback(t *testing.T) {
	cfg := &config.Config{}
	for bind, expected := range map[string]bool{
		"127.0.0.1": true,
		"::1":       true,
		"localhost": true,
		"0.0.0.0":   false,
		"10.0.0.5":  false,
	} {
		cfg.Bridge.Bind = bind
		assert.Equal(t, expected, cfg.IsLoopback(), bind)
	}
}

func TestUsage(t *testing.T) {
	assert.Contains(t, config.Usage(), "OCM_API_KEY")
}
