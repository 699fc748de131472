package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/livetemplate/mailcraft"
)

// MemoryStore keeps documents in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*mailcraft.Document
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*mailcraft.Document)}
}

func (s *MemoryStore) List(ctx context.Context) ([]*mailcraft.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*mailcraft.Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*mailcraft.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("get %q: %w", id, ErrDocumentNotFound)
	}
	return d.Clone(), nil
}

func (s *MemoryStore) Put(ctx context.Context, doc *mailcraft.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc.Clone()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return fmt.Errorf("delete %q: %w", id, ErrDocumentNotFound)
	}
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
