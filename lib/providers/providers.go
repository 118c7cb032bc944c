package providers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/onkernel/imgreg/cmd/imgreg/config"
	"github.com/onkernel/imgreg/lib/logger"
	"github.com/onkernel/imgreg/lib/otel"
	"github.com/onkernel/imgreg/lib/registry"
	"github.com/onkernel/imgreg/lib/registryclient"
)

// Version is stamped at build time.
var Version = "dev"

// ProvideContext provides a base context
func ProvideContext() context.Context {
	return context.Background()
}

// ProvideConfig provides the application configuration
func ProvideConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ProvideOtel sets up telemetry. The cleanup flushes exporters.
func ProvideOtel(ctx context.Context, cfg *config.Config) (*otel.Provider, func(), error) {
	provider, err := otel.Init(ctx, otel.Config{
		Enabled:        cfg.OtelEnabled,
		Endpoint:       cfg.OtelEndpoint,
		ServiceName:    cfg.OtelServiceName,
		ServiceVersion: Version,
		Insecure:       cfg.OtelInsecure,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init otel: %w", err)
	}
	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			slog.Warn("otel shutdown failed", "error", err)
		}
	}
	return provider, cleanup, nil
}

// ProvideLogger provides the application logger. Output goes to stderr so
// stdout carries only command results.
func ProvideLogger(provider *otel.Provider) *slog.Logger {
	cfg := logger.NewConfig()
	cfg.Output = os.Stderr
	return logger.NewSubsystemLogger(logger.SubsystemApp, cfg, provider.LogHandler)
}

// ProvideRegistryClient provides the registry client
func ProvideRegistryClient(cfg *config.Config, provider *otel.Provider, log *slog.Logger) (registryclient.Client, error) {
	logCfg := logger.NewConfig()
	logCfg.Output = os.Stderr

	opts := []registryclient.Option{
		registryclient.WithLogger(logger.NewSubsystemLogger(logger.SubsystemClient, logCfg, provider.LogHandler)),
		registryclient.WithMeterProvider(provider.MeterProvider),
		registryclient.WithTracerProvider(provider.TracerProvider),
		registryclient.WithMaxResponseSize(cfg.MaxResponseSize),
	}
	if cfg.JwtSecret != "" {
		opts = append(opts, registryclient.WithTokenSigner(
			registryclient.NewTokenSigner(cfg.JwtSecret, cfg.OtelServiceName, 0),
		))
	}

	client, err := registryclient.New(cfg.RegistryAddress(), opts...)
	if err != nil {
		return nil, fmt.Errorf("create registry client: %w", err)
	}
	log.Debug("registry client configured", "base_url", client.BaseURL(), "auth", cfg.JwtSecret != "")
	return client, nil
}

// ProvideRegistry provides the registry façade
func ProvideRegistry(client registryclient.Client, cfg *config.Config) *registry.Registry {
	return registry.New(client, registry.WithFetchConcurrency(cfg.FetchConcurrency))
}
