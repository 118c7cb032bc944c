// Package logger builds the slog loggers used across imgreg. Each subsystem gets its
// own logger with an independently configurable level, and loggers travel in
// context so request-scoped code can pick them up with FromContext.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// Subsystem names used as the "subsystem" attribute and for per-subsystem levels.
const (
	SubsystemApp      = "app"
	SubsystemClient   = "client"
	SubsystemRegistry = "registry"
	SubsystemFake     = "fake"
)

type ctxKey struct{}

// Config holds log levels. Subsystems without an override use Level.
type Config struct {
	Level           slog.Level
	SubsystemLevels map[string]slog.Level
	Output          io.Writer
}

// NewConfig reads LOG_LEVEL and LOG_LEVEL_<SUBSYSTEM> from the environment.
func NewConfig() Config {
	cfg := Config{
		Level:           parseLevel(os.Getenv("LOG_LEVEL"), slog.LevelInfo),
		SubsystemLevels: make(map[string]slog.Level),
		Output:          os.Stdout,
	}
	for _, sub := range []string{SubsystemApp, SubsystemClient, SubsystemRegistry, SubsystemFake} {
		if v := os.Getenv("LOG_LEVEL_" + strings.ToUpper(sub)); v != "" {
			cfg.SubsystemLevels[sub] = parseLevel(v, cfg.Level)
		}
	}
	return cfg
}

// LevelFor returns the effective level for a subsystem.
func (c Config) LevelFor(subsystem string) slog.Level {
	if lvl, ok := c.SubsystemLevels[subsystem]; ok {
		return lvl
	}
	return c.Level
}

// NewSubsystemLogger returns a JSON logger tagged with the subsystem name. When
// otelHandler is non-nil, records are also sent to it.
func NewSubsystemLogger(subsystem string, cfg Config, otelHandler slog.Handler) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	level := cfg.LevelFor(subsystem)
	var h slog.Handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	if otelHandler != nil {
		// The otel handler has no level of its own
		gated := slogmulti.Pipe(slogmulti.NewEnabledInlineMiddleware(
			func(ctx context.Context, lvl slog.Level, next func(context.Context, slog.Level) bool) bool {
				return lvl >= level && next(ctx, lvl)
			},
		)).Handler(otelHandler)
		h = slogmulti.Fanout(h, gated)
	}
	return slog.New(h).With("subsystem", subsystem)
}

// AddToContext returns a copy of ctx carrying log.
func AddToContext(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// FromContext returns the logger stored in ctx, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return slog.Default()
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

func parseLevel(s string, def slog.Level) slog.Level {
	if s == "" {
		return def
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return def
	}
	return lvl
}
