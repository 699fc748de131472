package mailcraft

import "fmt"

// PayloadBlock is the drag payload kind carried by block drags.
const PayloadBlock = "block"

// DragPayload is what a drag source hands to a drop zone.
type DragPayload struct {
	Kind  string `json:"kind"`
	Block *Block `json:"block,omitempty"`
}

// DropZone is an insertion target between blocks. It highlights only while
// a compatible payload hovers over it.
type DropZone struct {
	Position int
	Accept   string

	over bool
}

// NewDropZone creates a zone accepting block payloads at position.
func NewDropZone(position int) *DropZone {
	return &DropZone{Position: position, Accept: PayloadBlock}
}

// Accepts reports whether the zone takes payload.
func (z *DropZone) Accepts(p DragPayload) bool {
	accept := z.Accept
	if accept == "" {
		accept = PayloadBlock
	}
	return p.Kind == accept && p.Block != nil
}

// Hover marks the zone as hovered by p and returns whether it highlights.
func (z *DropZone) Hover(p DragPayload) bool {
	z.over = z.Accepts(p)
	return z.over
}

// Leave clears the hover state.
func (z *DropZone) Leave() {
	z.over = false
}

// Highlighted reports whether a compatible payload is hovering.
func (z *DropZone) Highlighted() bool {
	return z.over
}

// Drop commits p into doc at the zone's position. There is no undo.
func (z *DropZone) Drop(doc *Document, p DragPayload) (bool, error) {
	z.over = false
	if !z.Accepts(p) {
		return false, fmt.Errorf("drop at %d: %w: %q", z.Position, ErrIncompatiblePayload, p.Kind)
	}
	return doc.Drop(*p.Block, z.Position)
}

// DropZones returns the zones for a document of n blocks: one above each
// block plus one at the end.
func DropZones(n int) []*DropZone {
	zones := make([]*DropZone, n+1)
	for i := range zones {
		zones[i] = NewDropZone(i)
	}
	return zones
}
