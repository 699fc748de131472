package mailcraft

import (
	"fmt"
	"regexp"
	"strings"
)

// Field is one semantic attribute edited through the property panel. Older
// documents may store it under any of several alias keys; the first alias is
// the preferred one.
type Field struct {
	Name    string
	Aliases []string
	Default any
}

// Panel fields for the landing-page hero elements.
var (
	HeadingText        = Field{Name: "heading.text", Aliases: []string{"headline", "heading", "title"}, Default: ""}
	HeadingColor       = Field{Name: "heading.color", Aliases: []string{"headlineColor", "headingColor"}, Default: "#1f2937"}
	HeadingFontSize    = Field{Name: "heading.fontSize", Aliases: []string{"headlineFontSize"}, Default: "32px"}
	SubheadingText     = Field{Name: "subheading.text", Aliases: []string{"subheading"}, Default: ""}
	SubheadingColor    = Field{Name: "subheading.color", Aliases: []string{"subheadingColor"}, Default: "#4b5563"}
	SubheadingFontSize = Field{Name: "subheading.fontSize", Aliases: []string{"subheadingFontSize"}, Default: "18px"}
	ButtonText         = Field{Name: "button.text", Aliases: []string{"ctaButtonText"}, Default: ""}
	ButtonURL          = Field{Name: "button.url", Aliases: []string{"ctaButtonUrl"}, Default: ""}
	ButtonColor        = Field{Name: "button.color", Aliases: []string{"ctaButtonColor"}, Default: "#FF6A00"}
	ButtonTextColor    = Field{Name: "button.textColor", Aliases: []string{"ctaButtonTextColor"}, Default: "#ffffff"}
)

var panelFields = map[string]Field{}

func init() {
	for _, f := range []Field{
		HeadingText, HeadingColor, HeadingFontSize,
		SubheadingText, SubheadingColor, SubheadingFontSize,
		ButtonText, ButtonURL, ButtonColor, ButtonTextColor,
	} {
		panelFields[f.Name] = f
	}
}

// LookupField returns the panel field registered under name.
func LookupField(name string) (Field, bool) {
	f, ok := panelFields[name]
	return f, ok
}

// ElementFields returns the fields shown for a selected element.
func ElementFields(e Element) []Field {
	switch e {
	case ElementHeading:
		return []Field{HeadingText, HeadingColor, HeadingFontSize}
	case ElementSubheading:
		return []Field{SubheadingText, SubheadingColor, SubheadingFontSize}
	case ElementButton:
		return []Field{ButtonText, ButtonURL, ButtonColor, ButtonTextColor}
	default:
		return nil
	}
}

// Key returns the alias that holds the value in attrs: the first alias that
// is defined, or the last alias when none is.
func (f Field) Key(attrs map[string]any) string {
	for _, a := range f.Aliases {
		if _, ok := attrs[a]; ok {
			return a
		}
	}
	return f.Aliases[len(f.Aliases)-1]
}

// Value reads the field from the first alias holding a non-empty value,
// falling back to the field default.
func (f Field) Value(attrs map[string]any) any {
	for _, a := range f.Aliases {
		if v, ok := attrs[a]; ok && !isEmpty(v) {
			return v
		}
	}
	return f.Default
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	default:
		return false
	}
}

// UpdateFunc pushes a draft upward, keyed by block id.
type UpdateFunc func(blockID string, attrs map[string]any)

// Binding keeps the property panel's local draft of the selected block.
// The draft is seeded only when the bound block id changes so an in-flight
// edit is never clobbered by the echo of its own update.
type Binding struct {
	blockID  string
	draft    map[string]any
	onUpdate UpdateFunc
}

// NewBinding creates an unbound panel binding.
func NewBinding(onUpdate UpdateFunc) *Binding {
	return &Binding{draft: map[string]any{}, onUpdate: onUpdate}
}

// Bind selects block. It reports whether the draft was reseeded.
func (p *Binding) Bind(b *Block) bool {
	if b == nil {
		p.blockID = ""
		p.draft = map[string]any{}
		return true
	}
	if b.ID == p.blockID {
		return false
	}
	p.blockID = b.ID
	p.draft = cloneMap(b.Props)
	if p.draft == nil {
		p.draft = map[string]any{}
	}
	return true
}

// BlockID returns the bound block id.
func (p *Binding) BlockID() string {
	return p.blockID
}

// Draft returns a copy of the local draft.
func (p *Binding) Draft() map[string]any {
	return cloneMap(p.draft)
}

// Get returns the field value as seen by the panel.
func (p *Binding) Get(f Field) any {
	return f.Value(p.draft)
}

// Set patches one key of the draft and pushes the draft upward.
func (p *Binding) Set(key string, value any) {
	p.draft[key] = value
	if p.onUpdate != nil && p.blockID != "" {
		p.onUpdate(p.blockID, cloneMap(p.draft))
	}
}

// SetField writes value back to the alias the field currently lives under,
// so no duplicate key is created. It returns the key written.
func (p *Binding) SetField(f Field, value any) string {
	key := f.Key(p.draft)
	p.Set(key, value)
	return key
}

// ResolveFieldPatch returns the single-key patch that writes value to f on
// a block with attrs, honoring aliases.
func ResolveFieldPatch(attrs map[string]any, f Field, value any) map[string]any {
	return map[string]any{f.Key(attrs): value}
}

var (
	hexColor  = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	rgbaColor = regexp.MustCompile(`^rgba?\(\s*\d{1,3}\s*,\s*\d{1,3}\s*,\s*\d{1,3}\s*(,\s*(0|1|0?\.\d+)\s*)?\)$`)
)

// IsColor reports whether s is a hex or rgb()/rgba() color.
func IsColor(s string) bool {
	s = strings.TrimSpace(s)
	return hexColor.MatchString(s) || rgbaColor.MatchString(s)
}

// ColorInput is the picker + free-text pair bound to one color field. Both
// inputs always display the same value.
type ColorInput struct {
	binding *Binding
	field   Field
}

// Color returns the paired inputs for f.
func (p *Binding) Color(f Field) *ColorInput {
	return &ColorInput{binding: p, field: f}
}

// Value is what both inputs display.
func (c *ColorInput) Value() string {
	s, _ := c.binding.Get(c.field).(string)
	return s
}

// Pick handles a change from the color picker, which only produces hex.
func (c *ColorInput) Pick(hex string) error {
	if !hexColor.MatchString(hex) {
		return fmt.Errorf("color picker value %q is not a hex color", hex)
	}
	c.binding.SetField(c.field, strings.ToLower(hex))
	return nil
}

// Type handles a change from the free-text input. Hex and rgba values are
// both accepted; anything else is kept as typed so partial input is not lost.
func (c *ColorInput) Type(text string) {
	c.binding.SetField(c.field, text)
}
