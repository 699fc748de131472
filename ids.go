package mailcraft

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDGenerator hands out timestamp-based block identifiers of the form
// "<prefix>-<millis>-<n>". The timestamp is strictly increasing per
// generator, so two batches never share a stamp even when they are created
// within the same millisecond.
type IDGenerator struct {
	prefix string
	now    func() time.Time

	mu   sync.Mutex
	last int64
}

// NewIDGenerator creates a generator for the given prefix (e.g. "ai").
func NewIDGenerator(prefix string) *IDGenerator {
	return &IDGenerator{prefix: prefix, now: time.Now}
}

// stamp returns the next unique timestamp.
func (g *IDGenerator) stamp() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return ms
}

// Batch returns a function yielding identifiers that share one timestamp
// and differ by suffix. Suffixes are the values passed in by the caller, which
// lets canned templates keep their own numbering.
func (g *IDGenerator) Batch() func(suffix int) string {
	ms := g.stamp()
	return func(suffix int) string {
		return fmt.Sprintf("%s-%d-%d", g.prefix, ms, suffix)
	}
}

// Next returns a single identifier.
func (g *IDGenerator) Next() string {
	return g.Batch()(1)
}

// NewBlockID returns a random identifier for a block inserted by the user.
func NewBlockID() string {
	return "block-" + uuid.NewString()
}

// NewDocumentID returns a random document identifier.
func NewDocumentID() string {
	return uuid.NewString()
}
