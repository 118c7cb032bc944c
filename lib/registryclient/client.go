// Package registryclient talks to a remote image-metadata registry over HTTP/JSON.
//
// A Client holds only immutable configuration and a goroutine-safe http.Client, so a
// single instance can be shared. Nothing is cached: every call is a round-trip.
package registryclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/onkernel/imgreg/lib/images"
	"github.com/onkernel/imgreg/lib/logger"
	"github.com/onkernel/imgreg/lib/otel"
	"github.com/onkernel/imgreg/lib/registryapi"
	"github.com/samber/lo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// DefaultPort is used when the address names no port and no scheme.
const DefaultPort = "9191"

const instrumentationName = "github.com/onkernel/imgreg/lib/registryclient"

// Client is the set of registry operations. *HTTPClient implements it; tests and
// callers may substitute their own.
type Client interface {
	ListImages(ctx context.Context) ([]images.Summary, error)
	ListImagesDetailed(ctx context.Context) ([]images.Image, error)
	GetImage(ctx context.Context, id string) (*images.Image, error)
	AddImage(ctx context.Context, img *images.Image) (*images.Image, error)
	UpdateImage(ctx context.Context, id string, upd *images.Update) (*images.Image, error)
	DeleteImage(ctx context.Context, id string) error
}

var _ Client = (*HTTPClient)(nil)

// HTTPClient is the HTTP/JSON implementation of Client.
type HTTPClient struct {
	baseURL     *url.URL
	http        *http.Client
	log         *slog.Logger
	metrics     *otel.ClientMetrics
	tracer      trace.Tracer
	signer      *TokenSigner
	maxBodySize int64
}

// New creates a client for the registry at addr. It does not connect; the first
// call does. addr may be "host", "host:port" or a full URL.
func New(addr string, opts ...Option) (*HTTPClient, error) {
	base, err := parseAddress(addr)
	if err != nil {
		return nil, err
	}

	o := options{maxResponseSize: DefaultMaxResponseSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Discard()
	}
	if o.meterProvider == nil {
		o.meterProvider = metricnoop.NewMeterProvider()
	}
	if o.tracerProvider == nil {
		o.tracerProvider = tracenoop.NewTracerProvider()
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithTracerProvider(o.tracerProvider),
				otelhttp.WithMeterProvider(o.meterProvider),
			),
		}
	}

	metrics, err := otel.NewClientMetrics(o.meterProvider.Meter(instrumentationName))
	if err != nil {
		return nil, fmt.Errorf("create client metrics: %w", err)
	}

	return &HTTPClient{
		baseURL:     base,
		http:        o.httpClient,
		log:         o.logger.With("registry", base.Host),
		metrics:     metrics,
		tracer:      o.tracerProvider.Tracer(instrumentationName),
		signer:      o.signer,
		maxBodySize: int64(o.maxResponseSize.Bytes()),
	}, nil
}

// BaseURL returns the normalized registry address.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL.String()
}

// ListImages returns the brief listing of every visible image.
func (c *HTTPClient) ListImages(ctx context.Context) ([]images.Summary, error) {
	var body registryapi.SummaryList
	if err := c.do(ctx, "list_images", http.MethodGet, registryapi.PathImages, nil, &body); err != nil {
		return nil, err
	}
	return lo.Map(body.Images, func(s registryapi.Summary, _ int) images.Summary {
		return s.ToSummary()
	}), nil
}

// ListImagesDetailed returns every visible image with all of its fields.
func (c *HTTPClient) ListImagesDetailed(ctx context.Context) ([]images.Image, error) {
	var body registryapi.ImageList
	if err := c.do(ctx, "list_images_detailed", http.MethodGet, registryapi.PathImagesDetail, nil, &body); err != nil {
		return nil, err
	}
	return lo.Map(body.Images, func(m registryapi.Image, _ int) images.Image {
		return *m.ToImage()
	}), nil
}

// GetImage fetches one image. Unknown ids fail with ErrNotFound.
func (c *HTTPClient) GetImage(ctx context.Context, id string) (*images.Image, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var body registryapi.ImageEnvelope
	if err := c.do(ctx, "get_image", http.MethodGet, registryapi.ImagePath(id), nil, &body); err != nil {
		return nil, err
	}
	return unwrapEnvelope(body)
}

// AddImage registers a new image. The result carries the id the registry
// assigned, or the one supplied in img.
func (c *HTTPClient) AddImage(ctx context.Context, img *images.Image) (*images.Image, error) {
	req, err := prepare(img)
	if err != nil {
		return nil, err
	}
	var body registryapi.ImageEnvelope
	if err := c.do(ctx, "add_image", http.MethodPost, registryapi.PathImages, registryapi.ImageEnvelope{Image: req}, &body); err != nil {
		return nil, err
	}
	return unwrapEnvelope(body)
}

// UpdateImage changes the fields present in upd and leaves the rest alone. An
// empty Status keeps the current one; Properties are merged into the existing set.
func (c *HTTPClient) UpdateImage(ctx context.Context, id string, upd *images.Update) (*images.Image, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if upd == nil {
		return nil, validationError(errors.New("update is required"))
	}
	if err := images.ValidateUpdate(upd); err != nil {
		return nil, validationError(err)
	}
	normalized, err := images.NormalizeUpdate(upd)
	if err != nil {
		return nil, validationError(err)
	}
	req := registryapi.ImageUpdateEnvelope{Image: registryapi.FromUpdate(normalized)}
	var body registryapi.ImageEnvelope
	if err := c.do(ctx, "update_image", http.MethodPut, registryapi.ImagePath(id), req, &body); err != nil {
		return nil, err
	}
	return unwrapEnvelope(body)
}

// DeleteImage removes an image. Deleting an unknown or already deleted image
// fails with ErrNotFound.
func (c *HTTPClient) DeleteImage(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return c.do(ctx, "delete_image", http.MethodDelete, registryapi.ImagePath(id), nil, nil)
}

// checkID rejects ids that cannot address a single image. Other ids are
// opaque and passed through.
func checkID(id string) error {
	if id == "" {
		return validationError(images.ErrInvalidID)
	}
	if images.IsReservedID(id) {
		return validationError(fmt.Errorf("%w: %q", images.ErrReservedID, id))
	}
	return nil
}

func prepare(img *images.Image) (*registryapi.Image, error) {
	if img == nil {
		return nil, validationError(errors.New("image is required"))
	}
	if err := images.Validate(img); err != nil {
		return nil, validationError(err)
	}
	normalized, err := images.Normalize(img)
	if err != nil {
		return nil, validationError(err)
	}
	req := registryapi.FromImage(normalized)
	// Timestamps belong to the registry
	req.CreatedAt, req.UpdatedAt, req.DeletedAt = nil, nil, nil
	return req, nil
}

func unwrapEnvelope(body registryapi.ImageEnvelope) (*images.Image, error) {
	if body.Image == nil {
		return nil, fmt.Errorf("%w: response has no image", ErrService)
	}
	return body.Image.ToImage(), nil
}

// parseAddress normalizes a registry address into a base URL.
func parseAddress(addr string) (*url.URL, error) {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		return nil, errors.New("registry address is required")
	}

	hasScheme := strings.Contains(trimmed, "://")
	if !hasScheme {
		trimmed = "http://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid registry address: %w", err)
	}
	if parsed.Hostname() == "" {
		return nil, errors.New("registry address must include a host name")
	}
	if !hasScheme && parsed.Port() == "" {
		parsed.Host = net.JoinHostPort(parsed.Hostname(), DefaultPort)
	}
	parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed, nil
}
