package mailcraft

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBlockNotFound is returned when an operation names a block id that
	// is not part of the document.
	ErrBlockNotFound = errors.New("block not found")

	// ErrDuplicateBlockID is returned when a block id already exists in the
	// document.
	ErrDuplicateBlockID = errors.New("duplicate block id")

	// ErrIncompatiblePayload is returned when a drop zone receives a drag
	// payload of a kind it does not accept.
	ErrIncompatiblePayload = errors.New("incompatible drag payload")

	// ErrImmutableField is returned when a patch tries to change id or type.
	ErrImmutableField = errors.New("field cannot be changed")

	// ErrMissingType is returned when a block has no kind tag.
	ErrMissingType = errors.New("block type is required")

	// ErrUnknownType is returned when a typed payload is requested for a
	// block kind without one.
	ErrUnknownType = errors.New("unknown block type")
)

// BlockError describes a failure tied to one block.
type BlockError struct {
	BlockID string
	Type    BlockType
	Index   int // position in the document, -1 when not applicable
	Err     error
	Hint    string
}

// NewBlockError creates a BlockError for the block at index.
func NewBlockError(b Block, index int, err error) *BlockError {
	return &BlockError{BlockID: b.ID, Type: b.Type, Index: index, Err: err}
}

// WithHint attaches a suggestion shown to the editor user.
func (e *BlockError) WithHint(hint string) *BlockError {
	e.Hint = hint
	return e
}

func (e *BlockError) Error() string {
	var b strings.Builder
	b.WriteString("block")
	if e.BlockID != "" {
		fmt.Fprintf(&b, " %q", e.BlockID)
	}
	if e.Type != "" {
		fmt.Fprintf(&b, " (%s)", e.Type)
	}
	if e.Index >= 0 {
		fmt.Fprintf(&b, " at position %d", e.Index)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	if e.Hint != "" {
		fmt.Fprintf(&b, " (tip: %s)", e.Hint)
	}
	return b.String()
}

func (e *BlockError) Unwrap() error {
	return e.Err
}
