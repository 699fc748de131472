package mailcraft

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDGeneratorSameMillisecond(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	g := NewIDGenerator("ai")
	g.now = func() time.Time { return fixed }

	first := g.Batch()
	second := g.Batch()

	assert.Equal(t, "ai-1700000000000-1", first(1))
	assert.Equal(t, "ai-1700000000001-1", second(1))
	assert.NotEqual(t, first(2), second(2))
}

func TestIDGeneratorConcurrent(t *testing.T) {
	g := NewIDGenerator("ai")
	const n = 200

	var mu sync.Mutex
	seen := make(map[string]bool, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := g.Next()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
}

func TestRandomIDs(t *testing.T) {
	a, b := NewBlockID(), NewBlockID()
	require.True(t, strings.HasPrefix(a, "block-"))
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, NewDocumentID(), NewDocumentID())
}
