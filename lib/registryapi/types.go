// Package registryapi holds the JSON wire types of the image registry API and their
// conversions to the images model. Both the client and the in-memory test registry
// speak through these types.
package registryapi

import (
	"net/url"
	"time"
)

const (
	PathImages       = "/images"
	PathImagesDetail = "/images/detail"
)

// ImagePath returns the path addressing a single image.
func ImagePath(id string) string {
	return PathImages + "/" + url.PathEscape(id)
}

// Image is the detailed representation of an image.
type Image struct {
	ID         string            `json:"id,omitempty"`
	Name       string            `json:"name"`
	Status     string            `json:"status,omitempty"`
	Location   string            `json:"location,omitempty"`
	Size       int64             `json:"size"`
	IsPublic   bool              `json:"is_public"`
	Source     string            `json:"source,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	CreatedAt  *time.Time        `json:"created_at,omitempty"`
	UpdatedAt  *time.Time        `json:"updated_at,omitempty"`
	DeletedAt  *time.Time        `json:"deleted_at,omitempty"`
}

// ImageUpdate is the body of PUT /images/{id}. Absent fields are left unchanged.
type ImageUpdate struct {
	Name       *string           `json:"name,omitempty"`
	Status     string            `json:"status,omitempty"`
	Location   *string           `json:"location,omitempty"`
	Size       *int64            `json:"size,omitempty"`
	IsPublic   *bool             `json:"is_public,omitempty"`
	Source     *string           `json:"source,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

// ImageUpdateEnvelope wraps an ImageUpdate.
type ImageUpdateEnvelope struct {
	Image *ImageUpdate `json:"image"`
}

// Summary is the brief representation returned by GET /images.
type Summary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	Status string `json:"status"`
}

// ImageEnvelope wraps a single image in requests and responses.
type ImageEnvelope struct {
	Image *Image `json:"image"`
}

// ImageList is the body of GET /images/detail.
type ImageList struct {
	Images []Image `json:"images"`
}

// SummaryList is the body of GET /images.
type SummaryList struct {
	Images []Summary `json:"images"`
}

// Error is the body of every non-2xx response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes returned by the registry.
const (
	CodeNotFound      = "not_found"
	CodeInvalid       = "invalid_request"
	CodeAlreadyExists = "already_exists"
	CodeUnauthorized  = "unauthorized"
	CodeInternal      = "internal_error"
)
