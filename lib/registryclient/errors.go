package registryclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/onkernel/imgreg/lib/registryapi"
)

var (
	// ErrConnection is returned when the registry cannot be reached
	ErrConnection = errors.New("registry unreachable")

	// ErrNotFound is returned when the addressed image does not exist
	ErrNotFound = errors.New("image not found")

	// ErrValidation is returned for malformed input, whether caught locally or by the registry
	ErrValidation = errors.New("invalid image request")

	// ErrService is returned for any other non-success response
	ErrService = errors.New("registry service error")
)

const maxErrorMessage = 512

// APIError describes a non-2xx response. It unwraps to ErrNotFound,
// ErrValidation or ErrService depending on the status code.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("registry returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("registry returned %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return ErrValidation
	default:
		return ErrService
	}
}

// newAPIError builds an APIError from a response body. Bodies that are not the
// registry's JSON error shape are kept as plain text.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var payload registryapi.Error
	if err := json.Unmarshal(body, &payload); err == nil && (payload.Code != "" || payload.Message != "") {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Message
		return apiErr
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorMessage {
		msg = msg[:maxErrorMessage]
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	apiErr.Message = msg
	return apiErr
}

func validationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// errorKind labels an error for metrics and logs.
func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrConnection):
		return "connection"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrService):
		return "service"
	default:
		return "unknown"
	}
}
