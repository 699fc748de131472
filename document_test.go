package mailcraft

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDoc(ids ...string) *Document {
	doc := NewDocument("test")
	for _, id := range ids {
		doc.Blocks = append(doc.Blocks, Block{ID: id, Type: BlockText, Props: map[string]any{"content": id}})
	}
	return doc
}

func TestDocumentDrop(t *testing.T) {
	tests := []struct {
		name     string
		drag     string
		position int
		want     []string
		changed  bool
	}{
		{name: "move first to end", drag: "a", position: 4, want: []string{"b", "c", "d", "a"}, changed: true},
		{name: "move last to front", drag: "d", position: 0, want: []string{"d", "a", "b", "c"}, changed: true},
		{name: "move down one", drag: "b", position: 3, want: []string{"a", "c", "b", "d"}, changed: true},
		{name: "move up one", drag: "c", position: 1, want: []string{"a", "c", "b", "d"}, changed: true},
		{name: "own index is no-op", drag: "b", position: 1, want: []string{"a", "b", "c", "d"}, changed: false},
		{name: "zone below self is no-op", drag: "b", position: 2, want: []string{"a", "b", "c", "d"}, changed: false},
		{name: "position past end appends", drag: "a", position: 99, want: []string{"b", "c", "d", "a"}, changed: true},
		{name: "negative position prepends", drag: "c", position: -3, want: []string{"c", "a", "b", "d"}, changed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := testDoc("a", "b", "c", "d")
			block := doc.Blocks[doc.Index(tt.drag)]

			changed, err := doc.Drop(block, tt.position)
			require.NoError(t, err)
			assert.Equal(t, tt.changed, changed)
			assert.Equal(t, tt.want, doc.IDs())
		})
	}
}

func TestDocumentDropNewBlockInserts(t *testing.T) {
	doc := testDoc("a", "b")

	changed, err := doc.Drop(Block{Type: BlockSpacer, Props: map[string]any{"height": 20}}, 1)
	require.NoError(t, err)
	assert.True(t, changed)
	require.Equal(t, 3, doc.Len())
	assert.Equal(t, BlockSpacer, doc.Blocks[1].Type)
	assert.NotEmpty(t, doc.Blocks[1].ID)
	assert.NoError(t, doc.Validate())
}

func TestDocumentDropAppendAtLength(t *testing.T) {
	doc := testDoc("a", "b")

	_, err := doc.Drop(Block{ID: "c", Type: BlockDivider}, doc.Len())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, doc.IDs())
}

func TestDocumentMove(t *testing.T) {
	doc := testDoc("a", "b", "c")

	changed, err := doc.Move("c", 0)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"c", "a", "b"}, doc.IDs())

	_, err = doc.Move("missing", 0)
	assert.True(t, errors.Is(err, ErrBlockNotFound))
}

func TestDocumentInsert(t *testing.T) {
	doc := testDoc("a")

	b, err := doc.Insert(Block{Type: BlockTitle, Props: map[string]any{"content": "Hi"}}, 0)
	require.NoError(t, err)
	assert.Contains(t, b.ID, "block-")
	assert.Equal(t, []string{b.ID, "a"}, doc.IDs())

	_, err = doc.Insert(Block{ID: "a", Type: BlockTitle}, 0)
	assert.ErrorIs(t, err, ErrDuplicateBlockID)

	_, err = doc.Insert(Block{ID: "x"}, 0)
	assert.ErrorIs(t, err, ErrMissingType)
}

func TestDocumentInsertCopiesProps(t *testing.T) {
	doc := testDoc()
	props := map[string]any{"content": "original"}

	_, err := doc.Insert(Block{ID: "a", Type: BlockText, Props: props}, 0)
	require.NoError(t, err)

	props["content"] = "mutated"
	assert.Equal(t, "original", doc.Blocks[0].String("content"))
}

func TestDocumentRemove(t *testing.T) {
	doc := testDoc("a", "b", "c")

	removed, err := doc.Remove("b")
	require.NoError(t, err)
	assert.Equal(t, "b", removed.ID)
	assert.Equal(t, []string{"a", "c"}, doc.IDs())

	_, err = doc.Remove("b")
	assert.ErrorIs(t, err, ErrBlockNotFound)
}

func TestDocumentPatch(t *testing.T) {
	doc := testDoc("a")

	b, err := doc.Patch("a", map[string]any{"fontSize": 18.0, "fontColor": "#333"})
	require.NoError(t, err)
	assert.Equal(t, "a", b.ID)
	assert.Equal(t, 18.0, doc.Blocks[0].Props["fontSize"])
	assert.Equal(t, "a", doc.Blocks[0].String("content"))

	_, err = doc.Patch("a", map[string]any{"id": "other"})
	assert.ErrorIs(t, err, ErrImmutableField)
	_, err = doc.Patch("a", map[string]any{"type": "image"})
	assert.ErrorIs(t, err, ErrImmutableField)
	assert.Equal(t, "a", doc.Blocks[0].ID)
}

func TestDocumentValidate(t *testing.T) {
	doc := testDoc("a", "b", "a")

	err := doc.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateBlockID)

	var blockErr *BlockError
	require.ErrorAs(t, err, &blockErr)
	assert.Equal(t, 2, blockErr.Index)
	assert.Contains(t, err.Error(), "position 0")

	assert.NoError(t, testDoc("a", "b").Validate())
}

func TestDocumentClone(t *testing.T) {
	doc := testDoc("a")
	doc.Blocks[0].Props["nested"] = map[string]any{"k": "v"}

	clone := doc.Clone()
	clone.Blocks[0].Props["nested"].(map[string]any)["k"] = "changed"
	_, _ = clone.Move("a", 1)

	assert.Equal(t, "v", doc.Blocks[0].Props["nested"].(map[string]any)["k"])
}
