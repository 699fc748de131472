package mailcraft

import (
	"fmt"
	"time"
)

// Document is an ordered sequence of blocks rendered top to bottom.
// Block identifiers are unique within a document.
type Document struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Blocks    []Block   `json:"blocks"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewDocument creates an empty document with a fresh identifier.
func NewDocument(name string) *Document {
	now := time.Now().UTC()
	return &Document{
		ID:        NewDocumentID(),
		Name:      name,
		Blocks:    []Block{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the structural invariant: every block has a type and an
// id, and ids are unique.
func (d *Document) Validate() error {
	seen := make(map[string]int, len(d.Blocks))
	for i, b := range d.Blocks {
		if b.Type == "" {
			return NewBlockError(b, i, ErrMissingType)
		}
		if b.ID == "" {
			return NewBlockError(b, i, fmt.Errorf("block id is required"))
		}
		if prev, ok := seen[b.ID]; ok {
			return NewBlockError(b, i, ErrDuplicateBlockID).
				WithHint(fmt.Sprintf("the same id is used at position %d", prev))
		}
		seen[b.ID] = i
	}
	return nil
}

// Len returns the number of blocks.
func (d *Document) Len() int {
	return len(d.Blocks)
}

// IDs returns block identifiers in document order.
func (d *Document) IDs() []string {
	ids := make([]string, len(d.Blocks))
	for i, b := range d.Blocks {
		ids[i] = b.ID
	}
	return ids
}

// Index returns the position of the block with id, or -1.
func (d *Document) Index(id string) int {
	for i, b := range d.Blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// Find returns a pointer to the block with id so callers can patch it in place.
func (d *Document) Find(id string) (*Block, error) {
	i := d.Index(id)
	if i < 0 {
		return nil, fmt.Errorf("find %q: %w", id, ErrBlockNotFound)
	}
	return &d.Blocks[i], nil
}

// Insert adds a new block at position (clamped to [0, len]). A block without
// an id gets a fresh one. Inserting an id that already exists fails.
func (d *Document) Insert(b Block, position int) (Block, error) {
	if b.Type == "" {
		return Block{}, NewBlockError(b, position, ErrMissingType)
	}
	if b.ID == "" {
		b.ID = NewBlockID()
	}
	if d.Index(b.ID) >= 0 {
		return Block{}, NewBlockError(b, position, ErrDuplicateBlockID)
	}
	d.Blocks = insertAt(d.Blocks, b.Clone(), clamp(position, len(d.Blocks)))
	d.touch()
	return b, nil
}

// Drop commits a drag-and-drop of block onto the drop zone at position.
//
// Position indexes the sequence as it is before the drop: zone i sits above
// the block currently at i, and zone len(blocks) appends. If the block is
// already in the document it is moved, otherwise it is inserted. Dropping a
// block on either zone adjacent to it leaves the order unchanged.
// It reports whether the order changed.
func (d *Document) Drop(b Block, position int) (bool, error) {
	from := -1
	if b.ID != "" {
		from = d.Index(b.ID)
	}
	if from < 0 {
		if _, err := d.Insert(b, position); err != nil {
			return false, err
		}
		return true, nil
	}
	return d.move(from, position), nil
}

// Move relocates the block with id to the drop zone at position, with the
// same position semantics as Drop.
func (d *Document) Move(id string, position int) (bool, error) {
	from := d.Index(id)
	if from < 0 {
		return false, fmt.Errorf("move %q: %w", id, ErrBlockNotFound)
	}
	return d.move(from, position), nil
}

func (d *Document) move(from, position int) bool {
	position = clamp(position, len(d.Blocks))
	to := position
	if position > from {
		to = position - 1
	}
	if to == from {
		return false
	}

	moved := d.Blocks[from]
	rest := make([]Block, 0, len(d.Blocks))
	rest = append(rest, d.Blocks[:from]...)
	rest = append(rest, d.Blocks[from+1:]...)
	d.Blocks = insertAt(rest, moved, to)
	d.touch()
	return true
}

// Remove deletes the block with id.
func (d *Document) Remove(id string) (Block, error) {
	i := d.Index(id)
	if i < 0 {
		return Block{}, fmt.Errorf("remove %q: %w", id, ErrBlockNotFound)
	}
	removed := d.Blocks[i]
	d.Blocks = append(d.Blocks[:i:i], d.Blocks[i+1:]...)
	d.touch()
	return removed, nil
}

// Patch applies attrs to the block with id. Identity never changes.
func (d *Document) Patch(id string, attrs map[string]any) (Block, error) {
	b, err := d.Find(id)
	if err != nil {
		return Block{}, err
	}
	if err := b.Patch(attrs); err != nil {
		return Block{}, err
	}
	d.touch()
	return b.Clone(), nil
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := *d
	out.Blocks = make([]Block, len(d.Blocks))
	for i, b := range d.Blocks {
		out.Blocks[i] = b.Clone()
	}
	return &out
}

func (d *Document) touch() {
	d.UpdatedAt = time.Now().UTC()
}

func insertAt(blocks []Block, b Block, i int) []Block {
	blocks = append(blocks, Block{})
	copy(blocks[i+1:], blocks[i:])
	blocks[i] = b
	return blocks
}

func clamp(position, n int) int {
	if position < 0 {
		return 0
	}
	if position > n {
		return n
	}
	return position
}
