package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/joho/godotenv"
)

type Config struct {
	RegistryHost     string
	RegistryPort     string
	JwtSecret        string
	MaxResponseSize  datasize.ByteSize
	FetchConcurrency int
	OutputFormat     string

	OtelEnabled     bool
	OtelEndpoint    string
	OtelServiceName string
	OtelInsecure    bool

	// parse errors from Load, reported by Validate
	errs []error
}

// Load loads configuration from environment variables
// Automatically loads .env file if present
func Load() *Config {
	// Try to load .env file (fail silently if not present)
	_ = godotenv.Load()

	cfg := &Config{
		RegistryHost:    getEnv("REGISTRY_HOST", "0.0.0.0"),
		RegistryPort:    getEnv("REGISTRY_PORT", "9191"),
		JwtSecret:       getEnv("REGISTRY_JWT_SECRET", ""),
		OutputFormat:    strings.ToLower(getEnv("OUTPUT_FORMAT", "json")),
		OtelEndpoint:    getEnv("OTEL_ENDPOINT", "localhost:4317"),
		OtelServiceName: getEnv("OTEL_SERVICE_NAME", "imgreg"),
	}
	cfg.MaxResponseSize = cfg.getEnvSize("MAX_RESPONSE_SIZE", 10*datasize.MB)
	cfg.FetchConcurrency = cfg.getEnvInt("FETCH_CONCURRENCY", 8)
	cfg.OtelEnabled = cfg.getEnvBool("OTEL_ENABLED", false)
	cfg.OtelInsecure = cfg.getEnvBool("OTEL_INSECURE", true)

	return cfg
}

// RegistryAddress joins host and port. A host that already carries a scheme
// is returned as is.
func (c *Config) RegistryAddress() string {
	if strings.Contains(c.RegistryHost, "://") || c.RegistryPort == "" {
		return c.RegistryHost
	}
	return net.JoinHostPort(c.RegistryHost, c.RegistryPort)
}

// Validate checks values that Load cannot reject on its own.
func (c *Config) Validate() error {
	if len(c.errs) > 0 {
		return errors.Join(c.errs...)
	}
	if c.RegistryHost == "" {
		return fmt.Errorf("REGISTRY_HOST is required")
	}
	if c.RegistryPort != "" {
		if p, err := strconv.Atoi(c.RegistryPort); err != nil || p < 1 || p > 65535 {
			return fmt.Errorf("REGISTRY_PORT must be a port number, got %q", c.RegistryPort)
		}
	}
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("FETCH_CONCURRENCY must be at least 1, got %d", c.FetchConcurrency)
	}
	if c.MaxResponseSize == 0 {
		return fmt.Errorf("MAX_RESPONSE_SIZE must be positive")
	}
	switch c.OutputFormat {
	case "json", "yaml":
	default:
		return fmt.Errorf("OUTPUT_FORMAT must be json or yaml, got %q", c.OutputFormat)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		c.errs = append(c.errs, fmt.Errorf("%s must be a boolean, got %q", key, value))
		return defaultValue
	}
	return b
}

func (c *Config) getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		c.errs = append(c.errs, fmt.Errorf("%s must be an integer, got %q", key, value))
		return defaultValue
	}
	return n
}

// getEnvSize parses values like "512KB" or "10MB".
func (c *Config) getEnvSize(key string, defaultValue datasize.ByteSize) datasize.ByteSize {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var size datasize.ByteSize
	if err := size.UnmarshalText([]byte(value)); err != nil {
		c.errs = append(c.errs, fmt.Errorf("%s must be a size like 10MB, got %q", key, value))
		return defaultValue
	}
	return size
}
