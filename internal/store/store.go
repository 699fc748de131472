// Package store persists documents.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/livetemplate/mailcraft"
	"github.com/livetemplate/mailcraft/internal/cache"
	"github.com/livetemplate/mailcraft/internal/config"
)

// ErrDocumentNotFound is returned when no document has the requested id.
var ErrDocumentNotFound = errors.New("document not found")

// Store is a document backend. Implementations return copies; callers may
// mutate what they get back.
type Store interface {
	List(ctx context.Context) ([]*mailcraft.Document, error)
	Get(ctx context.Context, id string) (*mailcraft.Document, error)
	Put(ctx context.Context, doc *mailcraft.Document) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// Open creates the store selected by cfg. Remote backends get a read-through
// cache when cfg.CacheTTL is set.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.GetDriver() {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		s, err = OpenSQLite(ctx, cfg.GetDSN())
	case "postgres":
		s, err = OpenPostgres(ctx, cfg.GetDSN())
	case "redis":
		s, err = OpenRedis(ctx, cfg.GetDSN())
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if ttl := cfg.GetCacheTTL(); ttl > 0 {
		s = NewCachedStore(s, cache.NewMemoryCache[*mailcraft.Document](), ttl)
	}
	return s, nil
}

// Documents serializes read-modify-write cycles on a Store within this
// process. Concurrent edits to the same attribute are last-write-wins.
type Documents struct {
	Store
	mu sync.Mutex
}

// NewDocuments wraps s.
func NewDocuments(s Store) *Documents {
	return &Documents{Store: s}
}

// Create validates and stores a new document.
func (d *Documents) Create(ctx context.Context, doc *mailcraft.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Store.Put(ctx, doc)
}

// Update loads the document, applies fn and stores the result. Nothing is
// written when fn fails.
func (d *Documents) Update(ctx context.Context, id string, fn func(*mailcraft.Document) error) (*mailcraft.Document, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	doc, err := d.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(doc); err != nil {
		return nil, err
	}
	doc.UpdatedAt = time.Now().UTC()
	if err := d.Store.Put(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func encodeBlocks(blocks []mailcraft.Block) ([]byte, error) {
	if blocks == nil {
		blocks = []mailcraft.Block{}
	}
	return json.Marshal(blocks)
}

func decodeBlocks(data []byte) ([]mailcraft.Block, error) {
	var blocks []mailcraft.Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, err
	}
	if blocks == nil {
		blocks = []mailcraft.Block{}
	}
	return blocks, nil
}
