package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ClientMetrics holds metrics for registry client round-trips.
type ClientMetrics struct {
	RequestsTotal   metric.Int64Counter
	RequestDuration metric.Float64Histogram
	ErrorsTotal     metric.Int64Counter
}

// NewClientMetrics creates metrics for the registry client.
func NewClientMetrics(meter metric.Meter) (*ClientMetrics, error) {
	requestsTotal, err := meter.Int64Counter(
		"imgreg_client_requests_total",
		metric.WithDescription("Total number of registry requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"imgreg_client_request_duration_seconds",
		metric.WithDescription("Registry request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	errorsTotal, err := meter.Int64Counter(
		"imgreg_client_errors_total",
		metric.WithDescription("Total number of failed registry requests by error kind"),
	)
	if err != nil {
		return nil, err
	}

	return &ClientMetrics{
		RequestsTotal:   requestsTotal,
		RequestDuration: requestDuration,
		ErrorsTotal:     errorsTotal,
	}, nil
}

// RecordRequest records one completed operation. kind is "" on success.
func (m *ClientMetrics) RecordRequest(ctx context.Context, op string, status int, kind string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("operation", op),
		attribute.Int("status", status),
	}
	m.RequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.RequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	if kind != "" {
		m.ErrorsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("kind", kind),
		))
	}
}
