package registryclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// do performs one round-trip and records logs, metrics and a span for it.
// in is JSON-encoded when non-nil; out is decoded from a non-empty 2xx body.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, in, out any) error {
	ctx, span := c.tracer.Start(ctx, "registry."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	start := time.Now()
	status, err := c.roundTrip(ctx, method, path, in, out)
	duration := time.Since(start)
	kind := errorKind(err)

	c.metrics.RecordRequest(ctx, op, status, kind, duration)
	span.SetAttributes(attribute.Int("http.response.status_code", status))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.WarnContext(ctx, "registry request failed",
			"operation", op,
			"method", method,
			"path", path,
			"status", status,
			"kind", kind,
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return err
	}

	c.log.DebugContext(ctx, fmt.Sprintf("%s %s %d %dms", method, path, status, duration.Milliseconds()),
		"operation", op,
		"status", status,
		"duration_ms", duration.Milliseconds(),
	)
	return nil
}

func (c *HTTPClient) roundTrip(ctx context.Context, method, path string, in, out any) (int, error) {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, validationError(fmt.Errorf("encode request: %w", err))
		}
		reqBody = bytes.NewReader(data)
	}

	// path is already escaped by registryapi
	target := strings.TrimSuffix(c.baseURL.String(), "/") + path

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.signer != nil {
		token, err := c.signer.Token()
		if err != nil {
			return 0, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, fmt.Errorf("%w: %s %s: %w", ErrConnection, method, c.baseURL.Host, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return resp.StatusCode, ctxErr
		}
		return resp.StatusCode, fmt.Errorf("%w: read response: %w", ErrConnection, err)
	}
	if int64(len(data)) > c.maxBodySize {
		return resp.StatusCode, fmt.Errorf("%w: response exceeds %d bytes", ErrService, c.maxBodySize)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, newAPIError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: decode response: %v", ErrService, err)
	}
	return resp.StatusCode, nil
}
