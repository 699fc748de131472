package mailcraft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDropZoneHighlightsOnlyCompatiblePayloads(t *testing.T) {
	zone := NewDropZone(0)
	block := &Block{ID: "a", Type: BlockText}

	assert.False(t, zone.Hover(DragPayload{Kind: "file", Block: block}))
	assert.False(t, zone.Highlighted())

	assert.True(t, zone.Hover(DragPayload{Kind: PayloadBlock, Block: block}))
	assert.True(t, zone.Highlighted())

	zone.Leave()
	assert.False(t, zone.Highlighted())
}

func TestDropZoneDrop(t *testing.T) {
	doc := testDoc("a", "b", "c")
	zones := DropZones(doc.Len())
	require.Len(t, zones, 4)

	drag := doc.Blocks[0]
	zones[3].Hover(DragPayload{Kind: PayloadBlock, Block: &drag})

	changed, err := zones[3].Drop(doc, DragPayload{Kind: PayloadBlock, Block: &drag})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, zones[3].Highlighted())
	assert.Equal(t, []string{"b", "c", "a"}, doc.IDs())
}

func TestDropZoneRejectsIncompatible(t *testing.T) {
	doc := testDoc("a")
	zone := NewDropZone(0)

	_, err := zone.Drop(doc, DragPayload{Kind: "file", Block: &Block{Type: BlockImage}})
	assert.ErrorIs(t, err, ErrIncompatiblePayload)

	_, err = zone.Drop(doc, DragPayload{Kind: PayloadBlock})
	assert.ErrorIs(t, err, ErrIncompatiblePayload)
	assert.Equal(t, []string{"a"}, doc.IDs())
}

func TestDropZoneOwnPositionIsNoop(t *testing.T) {
	doc := testDoc("a", "b", "c")
	drag := doc.Blocks[1]

	for _, pos := range []int{1, 2} {
		changed, err := NewDropZone(pos).Drop(doc, DragPayload{Kind: PayloadBlock, Block: &drag})
		require.NoError(t, err)
		assert.False(t, changed, "zone %d", pos)
		assert.Equal(t, []string{"a", "b", "c"}, doc.IDs())
	}
}
