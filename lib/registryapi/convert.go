package registryapi

import (
	"github.com/onkernel/imgreg/lib/images"
	"github.com/samber/lo"
)

// FromImage converts a model record to its wire form. Empty Properties are
// omitted, so they come back as nil.
func FromImage(img *images.Image) *Image {
	out := &Image{
		ID:        img.ID,
		Name:      img.Name,
		Status:    string(img.Status),
		Location:  img.Location,
		Size:      img.SizeBytes,
		IsPublic:  img.IsPublic,
		Source:    img.Source,
		UpdatedAt: img.UpdatedAt,
		DeletedAt: img.DeletedAt,
	}
	if len(img.Properties) > 0 {
		out.Properties = lo.Assign(img.Properties)
	}
	if !img.CreatedAt.IsZero() {
		out.CreatedAt = lo.ToPtr(img.CreatedAt)
	}
	return out
}

// ToImage converts the wire form back to a model record.
func (m *Image) ToImage() *images.Image {
	img := &images.Image{
		ID:        m.ID,
		Name:      m.Name,
		Status:    images.Status(m.Status),
		Location:  m.Location,
		SizeBytes: m.Size,
		IsPublic:  m.IsPublic,
		Source:    m.Source,
		CreatedAt: lo.FromPtr(m.CreatedAt),
		UpdatedAt: m.UpdatedAt,
		DeletedAt: m.DeletedAt,
	}
	if len(m.Properties) > 0 {
		img.Properties = lo.Assign(m.Properties)
	}
	return img
}

// FromUpdate converts a model update to its wire form.
func FromUpdate(u *images.Update) *ImageUpdate {
	out := &ImageUpdate{
		Name:     u.Name,
		Status:   string(u.Status),
		Location: u.Location,
		Size:     u.SizeBytes,
		IsPublic: u.IsPublic,
		Source:   u.Source,
	}
	if len(u.Properties) > 0 {
		out.Properties = lo.Assign(u.Properties)
	}
	return out
}

// ToUpdate converts the wire form back to a model update.
func (m *ImageUpdate) ToUpdate() *images.Update {
	u := &images.Update{
		Name:      m.Name,
		Status:    images.Status(m.Status),
		Location:  m.Location,
		SizeBytes: m.Size,
		IsPublic:  m.IsPublic,
		Source:    m.Source,
	}
	if len(m.Properties) > 0 {
		u.Properties = lo.Assign(m.Properties)
	}
	return u
}

// FromSummary converts a model summary to its wire form.
func FromSummary(s images.Summary) Summary {
	return Summary{
		ID:     s.ID,
		Name:   s.Name,
		Size:   s.SizeBytes,
		Status: string(s.Status),
	}
}

// ToSummary converts the wire form back to a model summary.
func (s Summary) ToSummary() images.Summary {
	return images.Summary{
		ID:        s.ID,
		Name:      s.Name,
		SizeBytes: s.Size,
		Status:    images.Status(s.Status),
	}
}
