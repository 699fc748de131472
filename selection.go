package mailcraft

// Element is a sub-element of a block that can be selected on its own.
type Element string

const (
	ElementNone       Element = ""
	ElementHeading    Element = "heading"
	ElementSubheading Element = "subheading"
	ElementButton     Element = "button"
)

// Valid reports whether e is a known element.
func (e Element) Valid() bool {
	switch e {
	case ElementNone, ElementHeading, ElementSubheading, ElementButton:
		return true
	}
	return false
}

// Selection tracks which block (and element within it) the panel shows.
// It never touches document content.
type Selection struct {
	BlockID string  `json:"blockId,omitempty"`
	Element Element `json:"element,omitempty"`
}

// Select selects a block. Switching blocks clears the element.
func (s *Selection) Select(blockID string) {
	if s.BlockID != blockID {
		s.Element = ElementNone
	}
	s.BlockID = blockID
}

// SelectElement selects an element within the current block. It is a no-op
// when no block is selected.
func (s *Selection) SelectElement(e Element) {
	if s.BlockID == "" || !e.Valid() {
		return
	}
	s.Element = e
}

// Clear drops the selection.
func (s *Selection) Clear() {
	s.BlockID = ""
	s.Element = ElementNone
}

// IsSelected reports whether blockID is the selected block.
func (s Selection) IsSelected(blockID string) bool {
	return s.BlockID != "" && s.BlockID == blockID
}

// Reconcile clears the selection when its block is no longer in doc.
func (s *Selection) Reconcile(doc *Document) {
	if s.BlockID != "" && doc.Index(s.BlockID) < 0 {
		s.Clear()
	}
}
