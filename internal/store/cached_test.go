package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livetemplate/mailcraft"
	"github.com/livetemplate/mailcraft/internal/cache"
)

type countingStore struct {
	*MemoryStore
	gets int
}

func (s *countingStore) Get(ctx context.Context, id string) (*mailcraft.Document, error) {
	s.gets++
	return s.MemoryStore.Get(ctx, id)
}

func newCounting() (*countingStore, *CachedStore) {
	inner := &countingStore{MemoryStore: NewMemoryStore()}
	return inner, NewCachedStore(inner, cache.NewMemoryCache[*mailcraft.Document](), time.Minute)
}

func TestCachedStoreReadThrough(t *testing.T) {
	ctx := context.Background()
	inner, s := newCounting()
	defer s.Close()

	doc := sampleDoc("cached")
	require.NoError(t, inner.Put(ctx, doc))

	for i := 0; i < 3; i++ {
		got, err := s.Get(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, "cached", got.Name)
	}
	assert.Equal(t, 1, inner.gets)
}

func TestCachedStorePutRefreshes(t *testing.T) {
	ctx := context.Background()
	inner, s := newCounting()
	defer s.Close()

	doc := sampleDoc("v1")
	require.NoError(t, s.Put(ctx, doc))
	doc.Name = "v2"
	require.NoError(t, s.Put(ctx, doc))

	got, err := s.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Name)
	assert.Equal(t, 0, inner.gets)

	got.Name = "local edit"
	again, err := s.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", again.Name)
}

func TestCachedStoreDeleteInvalidates(t *testing.T) {
	ctx := context.Background()
	_, s := newCounting()
	defer s.Close()

	doc := sampleDoc("gone")
	require.NoError(t, s.Put(ctx, doc))
	require.NoError(t, s.Delete(ctx, doc.ID))

	_, err := s.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestCachedStoreCancelledContext(t *testing.T) {
	_, s := newCounting()
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Get(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
