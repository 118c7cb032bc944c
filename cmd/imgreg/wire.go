//go:build wireinject

package main

import (
	"context"
	"log/slog"

	"github.com/google/wire"
	"github.com/onkernel/imgreg/cmd/imgreg/config"
	"github.com/onkernel/imgreg/lib/otel"
	"github.com/onkernel/imgreg/lib/providers"
	"github.com/onkernel/imgreg/lib/registry"
)

// application struct to hold initialized components
type application struct {
	Ctx      context.Context
	Logger   *slog.Logger
	Config   *config.Config
	Otel     *otel.Provider
	Registry *registry.Registry
}

// initializeApp is the injector function
func initializeApp() (*application, func(), error) {
	panic(wire.Build(
		providers.ProvideContext,
		providers.ProvideConfig,
		providers.ProvideOtel,
		providers.ProvideLogger,
		providers.ProvideRegistryClient,
		providers.ProvideRegistry,
		wire.Struct(new(application), "*"),
	))
}
