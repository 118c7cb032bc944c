// Package registrytest provides an in-memory image registry for tests, served over
// a real HTTP listener in the manner of net/http/httptest. It speaks the same
// HTTP/JSON API as the production registry and validates every request against
// the embedded OpenAPI document.
package registrytest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	nethttpmiddleware "github.com/oapi-codegen/nethttp-middleware"
	"github.com/onkernel/imgreg"
	"github.com/onkernel/imgreg/lib/logger"
	mw "github.com/onkernel/imgreg/lib/middleware"
	"github.com/onkernel/imgreg/lib/registryapi"
	"github.com/riandyrn/otelchi"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Option configures a Server.
type Option func(*Server)

// WithJWTSecret requires an HS256 bearer token signed with secret.
func WithJWTSecret(secret string) Option {
	return func(s *Server) { s.jwtSecret = secret }
}

// WithLogger sets the access logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithMeterProvider enables HTTP request metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Server) { s.meterProvider = mp }
}

// WithTracerProvider enables server spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) { s.tracerProvider = tp }
}

// WithClock overrides time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// Server is a running in-memory registry.
type Server struct {
	jwtSecret      string
	log            *slog.Logger
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	now            func() time.Time

	store      *store
	failStatus atomic.Int32
	requests   atomic.Int64
	httpServer *httptest.Server
}

// NewServer builds and starts a registry. Callers must Close it.
func NewServer(opts ...Option) (*Server, error) {
	s := &Server{
		log:            logger.Discard(),
		meterProvider:  metricnoop.NewMeterProvider(),
		tracerProvider: tracenoop.NewTracerProvider(),
		now:            func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = newStore(s.now)

	handler, err := s.routes()
	if err != nil {
		return nil, err
	}
	s.httpServer = httptest.NewServer(handler)
	return s, nil
}

// URL is the base URL of the running registry.
func (s *Server) URL() string { return s.httpServer.URL }

// Close shuts the listener down.
func (s *Server) Close() { s.httpServer.Close() }

// Len returns the number of images that are not deleted.
func (s *Server) Len() int { return s.store.count() }

// Requests returns how many requests reached the registry.
func (s *Server) Requests() int64 { return s.requests.Load() }

// SetFailure makes every following request fail with status. 0 clears it.
func (s *Server) SetFailure(status int) { s.failStatus.Store(int32(status)) }

func (s *Server) routes() (http.Handler, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(imgreg.OpenAPIYAML)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	// Match any host; httptest picks a random port
	doc.Servers = nil

	metrics, err := mw.NewHTTPMetrics(s.meterProvider.Meter("github.com/onkernel/imgreg/lib/registrytest"))
	if err != nil {
		return nil, fmt.Errorf("create http metrics: %w", err)
	}

	r := chi.NewRouter()
	r.Use(otelchi.Middleware("registrytest",
		otelchi.WithChiRoutes(r),
		otelchi.WithTracerProvider(s.tracerProvider),
	))
	r.Use(s.countRequests)
	r.Use(mw.InjectLogger(s.log))
	r.Use(mw.AccessLogger(s.log))
	r.Use(metrics.Middleware)
	if s.jwtSecret != "" {
		r.Use(mw.VerifyJWT(s.jwtSecret))
	}
	r.Use(s.injectFailure)
	r.Use(nethttpmiddleware.OapiRequestValidator(doc))

	r.Get(registryapi.PathImages, s.listImages)
	r.Get(registryapi.PathImagesDetail, s.listImagesDetailed)
	r.Post(registryapi.PathImages, s.addImage)
	r.Get(registryapi.PathImages+"/{id}", s.getImage)
	r.Put(registryapi.PathImages+"/{id}", s.updateImage)
	r.Delete(registryapi.PathImages+"/{id}", s.deleteImage)

	return r, nil
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status := int(s.failStatus.Load()); status != 0 {
			writeError(w, status, registryapi.CodeInternal, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, registryapi.Error{Code: code, Message: message})
}
