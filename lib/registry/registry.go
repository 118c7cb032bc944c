// Package registry is the application-facing entry point for image metadata.
// It forwards each call to an injected registryclient.Client.
package registry

import (
	"context"
	"fmt"

	"github.com/onkernel/imgreg/lib/images"
	"github.com/onkernel/imgreg/lib/registryclient"
	"golang.org/x/sync/errgroup"
)

// DefaultFetchConcurrency bounds GetImagesMetadata.
const DefaultFetchConcurrency = 8

// Registry exposes the image metadata operations over a single shared client.
type Registry struct {
	client      registryclient.Client
	concurrency int
}

// Option configures a Registry.
type Option func(*Registry)

// WithFetchConcurrency sets how many GetImagesMetadata lookups run at once.
func WithFetchConcurrency(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// New creates a Registry backed by client.
func New(client registryclient.Client, opts ...Option) *Registry {
	r := &Registry{client: client, concurrency: DefaultFetchConcurrency}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetImagesList returns the brief listing of every image.
func (r *Registry) GetImagesList(ctx context.Context) ([]images.Summary, error) {
	return r.client.ListImages(ctx)
}

// GetImagesDetail returns every image with all of its fields.
func (r *Registry) GetImagesDetail(ctx context.Context) ([]images.Image, error) {
	return r.client.ListImagesDetailed(ctx)
}

// GetImageMetadata returns one image.
func (r *Registry) GetImageMetadata(ctx context.Context, id string) (*images.Image, error) {
	return r.client.GetImage(ctx, id)
}

// AddImageMetadata registers a new image and returns it as stored.
func (r *Registry) AddImageMetadata(ctx context.Context, img *images.Image) (*images.Image, error) {
	return r.client.AddImage(ctx, img)
}

// UpdateImageMetadata changes the fields present in upd and returns the image as stored.
func (r *Registry) UpdateImageMetadata(ctx context.Context, id string, upd *images.Update) (*images.Image, error) {
	return r.client.UpdateImage(ctx, id, upd)
}

// DeleteImageMetadata deletes image id.
func (r *Registry) DeleteImageMetadata(ctx context.Context, id string) error {
	return r.client.DeleteImage(ctx, id)
}

// GetImagesMetadata fetches several images concurrently and returns them in the
// order of ids. The first failure cancels the remaining lookups.
func (r *Registry) GetImagesMetadata(ctx context.Context, ids ...string) ([]*images.Image, error) {
	out := make([]*images.Image, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			img, err := r.client.GetImage(gctx, id)
			if err != nil {
				return fmt.Errorf("get image %s: %w", id, err)
			}
			out[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
