package images

import (
	"time"

	"github.com/samber/lo"
)

// Status is the lifecycle state of an image as reported by the registry.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusQueued, StatusActive, StatusDeleted:
		return true
	}
	return false
}

// Image is a transient copy of an image record owned by the registry.
type Image struct {
	ID         string            // Opaque, service-assigned unless supplied on create
	Name       string
	Status     Status
	Location   string            // URI of the image bytes (e.g., swift://..., file:///...)
	SizeBytes  int64
	IsPublic   bool
	Source     string            // Normalized OCI ref the image was imported from, if any
	Properties map[string]string // Free-form metadata fields; nil when there are none
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
}

// Summary is the brief form returned by the plain image listing.
type Summary struct {
	ID        string
	Name      string
	SizeBytes int64
	Status    Status
}

// Summarize reduces a full record to its listing form.
func (img *Image) Summarize() Summary {
	return Summary{
		ID:        img.ID,
		Name:      img.Name,
		SizeBytes: img.SizeBytes,
		Status:    img.Status,
	}
}

// Clone returns a deep copy so callers can mutate the result freely.
func (img *Image) Clone() *Image {
	out := *img
	if img.Properties != nil {
		out.Properties = make(map[string]string, len(img.Properties))
		for k, v := range img.Properties {
			out.Properties[k] = v
		}
	}
	if img.UpdatedAt != nil {
		t := *img.UpdatedAt
		out.UpdatedAt = &t
	}
	if img.DeletedAt != nil {
		t := *img.DeletedAt
		out.DeletedAt = &t
	}
	return &out
}

// Update is a partial change to an image. Nil fields are left as they are, an
// empty Status keeps the current one, and Properties are merged into the
// existing set.
type Update struct {
	Name       *string
	Status     Status
	Location   *string
	SizeBytes  *int64
	IsPublic   *bool
	Source     *string
	Properties map[string]string
}

// UpdateFrom builds an update that sets every mutable field of img.
func UpdateFrom(img *Image) *Update {
	return &Update{
		Name:       lo.ToPtr(img.Name),
		Status:     img.Status,
		Location:   lo.ToPtr(img.Location),
		SizeBytes:  lo.ToPtr(img.SizeBytes),
		IsPublic:   lo.ToPtr(img.IsPublic),
		Source:     lo.ToPtr(img.Source),
		Properties: lo.Assign(img.Properties),
	}
}

// Clone returns a deep copy of u.
func (u *Update) Clone() *Update {
	out := &Update{
		Name:      clonePtr(u.Name),
		Status:    u.Status,
		Location:  clonePtr(u.Location),
		SizeBytes: clonePtr(u.SizeBytes),
		IsPublic:  clonePtr(u.IsPublic),
		Source:    clonePtr(u.Source),
	}
	if u.Properties != nil {
		out.Properties = lo.Assign(u.Properties)
	}
	return out
}

// Apply writes the fields present in u onto img.
func (u *Update) Apply(img *Image) {
	if u.Name != nil {
		img.Name = *u.Name
	}
	if u.Status != "" {
		img.Status = u.Status
	}
	if u.Location != nil {
		img.Location = *u.Location
	}
	if u.SizeBytes != nil {
		img.SizeBytes = *u.SizeBytes
	}
	if u.IsPublic != nil {
		img.IsPublic = *u.IsPublic
	}
	if u.Source != nil {
		img.Source = *u.Source
	}
	if len(u.Properties) > 0 {
		img.Properties = lo.Assign(img.Properties, u.Properties)
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	return lo.ToPtr(*p)
}
