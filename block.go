package mailcraft

import (
	"encoding/json"
	"fmt"
	"sort"
)

// BlockType tags the kind of a content block.
type BlockType string

const (
	BlockTitle            BlockType = "title"
	BlockText             BlockType = "text"
	BlockButton           BlockType = "button"
	BlockImage            BlockType = "image"
	BlockDivider          BlockType = "divider"
	BlockSpacer           BlockType = "spacer"
	BlockLogo             BlockType = "logo"
	BlockHeader           BlockType = "header"
	BlockNavigation       BlockType = "navigation"
	BlockFooterWithSocial BlockType = "footer-with-social"
	BlockStats            BlockType = "stats"
	BlockFeatures         BlockType = "features"
)

// KnownBlockTypes lists every block kind with a typed payload.
var KnownBlockTypes = []BlockType{
	BlockTitle, BlockText, BlockButton, BlockImage, BlockDivider, BlockSpacer,
	BlockLogo, BlockHeader, BlockNavigation, BlockFooterWithSocial, BlockStats, BlockFeatures,
}

// IsKnown reports whether t has a typed payload.
func (t BlockType) IsKnown() bool {
	for _, k := range KnownBlockTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Block is one visual unit of a document.
//
// The identifier and kind tag are fixed for the life of the block. Everything
// else (presentation attributes and kind payload) lives in Props and is
// encoded flat next to "type" and "id", which is the shape the editor and the
// generation service exchange.
type Block struct {
	ID    string
	Type  BlockType
	Props map[string]any
}

// Get returns the attribute stored under key.
func (b Block) Get(key string) (any, bool) {
	if b.Props == nil {
		return nil, false
	}
	v, ok := b.Props[key]
	return v, ok
}

// String returns the attribute under key as a string, or "" when absent or
// not a string.
func (b Block) String(key string) string {
	v, _ := b.Get(key)
	s, _ := v.(string)
	return s
}

// Keys returns the attribute keys in sorted order.
func (b Block) Keys() []string {
	keys := make([]string, 0, len(b.Props))
	for k := range b.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of the block.
func (b Block) Clone() Block {
	return Block{ID: b.ID, Type: b.Type, Props: cloneMap(b.Props)}
}

// Patch applies attrs to the block in place. The "id" and "type" keys are
// rejected: a panel edit never changes block identity.
func (b *Block) Patch(attrs map[string]any) error {
	for k := range attrs {
		if k == "id" || k == "type" {
			return fmt.Errorf("patch block %s: %w: %q", b.ID, ErrImmutableField, k)
		}
	}
	if b.Props == nil {
		b.Props = make(map[string]any, len(attrs))
	}
	for k, v := range attrs {
		b.Props[k] = cloneValue(v)
	}
	return nil
}

// MarshalJSON encodes the block as a flat object.
func (b Block) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Props)+2)
	for k, v := range b.Props {
		out[k] = v
	}
	out["type"] = string(b.Type)
	out["id"] = b.ID
	return json.Marshal(out)
}

// UnmarshalJSON decodes a flat block object. A missing id is allowed here;
// callers that need one assign it (see Document.Insert and the generator).
func (b *Block) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("block: expected object")
	}
	t, ok := raw["type"].(string)
	if !ok || t == "" {
		return fmt.Errorf("block: %w", ErrMissingType)
	}
	var id string
	switch v := raw["id"].(type) {
	case string:
		id = v
	case float64:
		id = fmt.Sprintf("%v", v)
	}
	delete(raw, "type")
	delete(raw, "id")
	b.ID = id
	b.Type = BlockType(t)
	b.Props = raw
	return nil
}

// BlockFromMap converts a decoded JSON object into a Block.
func BlockFromMap(m map[string]any) (Block, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return Block{}, err
	}
	var b Block
	if err := json.Unmarshal(data, &b); err != nil {
		return Block{}, err
	}
	return b, nil
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}
