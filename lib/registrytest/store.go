package registrytest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nrednav/cuid2"
	"github.com/onkernel/imgreg/lib/images"
	"github.com/samber/lo"
)

var (
	errNotFound      = errors.New("image not found")
	errAlreadyExists = errors.New("image already exists")
	errInvalid       = errors.New("invalid image")
)

// store is the in-memory record set. Deleted records are kept but hidden.
type store struct {
	mu      sync.Mutex
	records map[string]*images.Image
	order   []string
	now     func() time.Time
}

func newStore(now func() time.Time) *store {
	return &store{
		records: make(map[string]*images.Image),
		now:     now,
	}
}

func (s *store) list() []*images.Image {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*images.Image, 0, len(s.order))
	for _, id := range s.order {
		if rec := s.records[id]; rec.Status != images.StatusDeleted {
			out = append(out, rec.Clone())
		}
	}
	return out
}

func (s *store) get(id string) (*images.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.liveLocked(id)
	if err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

func (s *store) create(img *images.Image) (*images.Image, error) {
	normalized, err := checked(img)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := normalized
	if rec.ID == "" {
		rec.ID = cuid2.Generate()
	}
	if _, exists := s.records[rec.ID]; exists {
		return nil, fmt.Errorf("%w: %s", errAlreadyExists, rec.ID)
	}
	if rec.Status == "" {
		rec.Status = images.StatusQueued
	}
	rec.CreatedAt = s.now()
	rec.UpdatedAt = nil
	rec.DeletedAt = nil

	s.records[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	return rec.Clone(), nil
}

func (s *store) update(id string, patch *images.Update) (*images.Image, error) {
	if err := images.ValidateUpdate(patch); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalid, err)
	}
	normalized, err := images.NormalizeUpdate(patch)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalid, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.liveLocked(id)
	if err != nil {
		return nil, err
	}

	normalized.Apply(rec)
	now := s.now()
	rec.UpdatedAt = &now
	if normalized.Status == images.StatusDeleted {
		rec.DeletedAt = lo.ToPtr(now)
	}
	return rec.Clone(), nil
}

func (s *store) delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.liveLocked(id)
	if err != nil {
		return err
	}
	rec.Status = images.StatusDeleted
	rec.DeletedAt = lo.ToPtr(s.now())
	return nil
}

func (s *store) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(lo.Filter(lo.Values(s.records), func(rec *images.Image, _ int) bool {
		return rec.Status != images.StatusDeleted
	}))
}

func (s *store) liveLocked(id string) (*images.Image, error) {
	rec, ok := s.records[id]
	if !ok || rec.Status == images.StatusDeleted {
		return nil, fmt.Errorf("%w: %s", errNotFound, id)
	}
	return rec, nil
}

func checked(img *images.Image) (*images.Image, error) {
	if err := images.Validate(img); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalid, err)
	}
	normalized, err := images.Normalize(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalid, err)
	}
	return normalized, nil
}
