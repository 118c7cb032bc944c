package registryclient

import (
	"log/slog"
	"net/http"

	"github.com/c2h5oh/datasize"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxResponseSize bounds how much of a response body is read.
const DefaultMaxResponseSize = 10 * datasize.MB

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient      *http.Client
	logger          *slog.Logger
	meterProvider   metric.MeterProvider
	tracerProvider  trace.TracerProvider
	signer          *TokenSigner
	maxResponseSize datasize.ByteSize
}

// WithHTTPClient replaces the default otelhttp-instrumented client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithLogger sets the logger for round-trip logs.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMeterProvider enables request metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// WithTracerProvider enables one span per operation.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithTokenSigner attaches a bearer token to every request.
func WithTokenSigner(s *TokenSigner) Option {
	return func(o *options) { o.signer = s }
}

// WithMaxResponseSize caps response bodies; larger bodies fail with ErrService.
func WithMaxResponseSize(size datasize.ByteSize) Option {
	return func(o *options) {
		if size > 0 {
			o.maxResponseSize = size
		}
	}
}
