package store

import (
	"context"
	"time"

	"github.com/livetemplate/mailcraft"
	"github.com/livetemplate/mailcraft/internal/cache"
)

// CachedStore wraps a Store with a read-through cache for Get. Writes go
// to the inner store first and then refresh the cache.
type CachedStore struct {
	inner Store
	cache cache.Cache[*mailcraft.Document]
	ttl   time.Duration
}

// NewCachedStore creates a new cached store wrapper
func NewCachedStore(inner Store, c cache.Cache[*mailcraft.Document], ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, cache: c, ttl: ttl}
}

func (s *CachedStore) List(ctx context.Context) ([]*mailcraft.Document, error) {
	return s.inner.List(ctx)
}

// Get returns a copy of the cached document, loading it on a miss.
func (s *CachedStore) Get(ctx context.Context, id string) (*mailcraft.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc, ok := s.cache.Get(cacheKey(id)); ok {
		return doc.Clone(), nil
	}

	doc, err := s.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKey(id), doc.Clone(), s.ttl)
	return doc, nil
}

func (s *CachedStore) Put(ctx context.Context, doc *mailcraft.Document) error {
	if err := s.inner.Put(ctx, doc); err != nil {
		s.cache.Invalidate(cacheKey(doc.ID))
		return err
	}
	s.cache.Set(cacheKey(doc.ID), doc.Clone(), s.ttl)
	return nil
}

func (s *CachedStore) Delete(ctx context.Context, id string) error {
	s.cache.Invalidate(cacheKey(id))
	return s.inner.Delete(ctx, id)
}

// Close stops the cache and closes the inner store.
func (s *CachedStore) Close() error {
	if stopper, ok := s.cache.(interface{ Stop() }); ok {
		stopper.Stop()
	}
	return s.inner.Close()
}

func cacheKey(id string) string {
	return "document:" + id
}
