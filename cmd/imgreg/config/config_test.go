package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"REGISTRY_HOST", "REGISTRY_PORT", "REGISTRY_JWT_SECRET", "MAX_RESPONSE_SIZE",
	"FETCH_CONCURRENCY", "OUTPUT_FORMAT", "OTEL_ENABLED", "OTEL_ENDPOINT",
	"OTEL_SERVICE_NAME", "OTEL_INSECURE",
}

// isolate runs the test from an empty directory with a clean environment.
func isolate(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg := Load()
	assert.Equal(t, "0.0.0.0", cfg.RegistryHost)
	assert.Equal(t, "9191", cfg.RegistryPort)
	assert.Equal(t, "0.0.0.0:9191", cfg.RegistryAddress())
	assert.Equal(t, 10*datasize.MB, cfg.MaxResponseSize)
	assert.Equal(t, 8, cfg.FetchConcurrency)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.False(t, cfg.OtelEnabled)
	assert.Empty(t, cfg.JwtSecret)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("REGISTRY_HOST", "glance.internal")
	t.Setenv("REGISTRY_PORT", "9292")
	t.Setenv("MAX_RESPONSE_SIZE", "512KB")
	t.Setenv("OUTPUT_FORMAT", "YAML")
	t.Setenv("OTEL_ENABLED", "true")

	cfg := Load()
	assert.Equal(t, "glance.internal:9292", cfg.RegistryAddress())
	assert.Equal(t, 512*datasize.KB, cfg.MaxResponseSize)
	assert.Equal(t, "yaml", cfg.OutputFormat)
	assert.True(t, cfg.OtelEnabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)
	// godotenv does not override variables that are already set, even if empty
	os.Unsetenv("REGISTRY_HOST")
	os.Unsetenv("REGISTRY_JWT_SECRET")

	dotenv := "REGISTRY_HOST=from-dotenv\nREGISTRY_JWT_SECRET=topsecret\n"
	require.NoError(t, os.WriteFile(filepath.Join(".", ".env"), []byte(dotenv), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("REGISTRY_HOST")
		os.Unsetenv("REGISTRY_JWT_SECRET")
	})

	cfg := Load()
	assert.Equal(t, "from-dotenv", cfg.RegistryHost)
	assert.Equal(t, "topsecret", cfg.JwtSecret)
}

func TestInvalidValuesRejected(t *testing.T) {
	isolate(t)
	t.Setenv("MAX_RESPONSE_SIZE", "12XB")
	t.Setenv("FETCH_CONCURRENCY", "abc")
	t.Setenv("OTEL_ENABLED", "maybe")

	cfg := Load()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_RESPONSE_SIZE")
	assert.Contains(t, err.Error(), "FETCH_CONCURRENCY")
	assert.Contains(t, err.Error(), "OTEL_ENABLED")
}

func TestEachInvalidValueRejected(t *testing.T) {
	for key, value := range map[string]string{
		"MAX_RESPONSE_SIZE": "12XB",
		"FETCH_CONCURRENCY": "abc",
		"OTEL_ENABLED":      "maybe",
		"OTEL_INSECURE":     "sometimes",
	} {
		t.Run(key, func(t *testing.T) {
			isolate(t)
			t.Setenv(key, value)
			err := Load().Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestRegistryAddressWithScheme(t *testing.T) {
	cfg := &Config{RegistryHost: "https://registry.example.com", RegistryPort: "9191"}
	assert.Equal(t, "https://registry.example.com", cfg.RegistryAddress())
}

func TestValidate(t *testing.T) {
	base := Config{RegistryHost: "h", RegistryPort: "9191", MaxResponseSize: datasize.MB, FetchConcurrency: 1, OutputFormat: "json"}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty host", func(c *Config) { c.RegistryHost = "" }},
		{"bad port", func(c *Config) { c.RegistryPort = "http" }},
		{"port out of range", func(c *Config) { c.RegistryPort = "70000" }},
		{"zero size", func(c *Config) { c.MaxResponseSize = 0 }},
		{"zero concurrency", func(c *Config) { c.FetchConcurrency = 0 }},
		{"bad format", func(c *Config) { c.OutputFormat = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
