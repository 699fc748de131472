package mailcraft

import (
	"encoding/json"
	"fmt"
)

// Payload is the typed, kind-specific content of a block.
type Payload interface {
	Kind() BlockType
}

// TitleBlock is a heading line.
type TitleBlock struct {
	Content    string `json:"content"`
	FontSize   Size   `json:"fontSize,omitempty"`
	FontColor  string `json:"fontColor,omitempty"`
	Alignment  string `json:"alignment,omitempty"`
	FontWeight string `json:"fontWeight,omitempty"`
	Padding    Size   `json:"padding,omitempty"`
}

// TextBlock is a paragraph. Content may contain markdown.
type TextBlock struct {
	Content   string `json:"content"`
	FontSize  Size   `json:"fontSize,omitempty"`
	FontColor string `json:"fontColor,omitempty"`
	Alignment string `json:"alignment,omitempty"`
	Padding   Size   `json:"padding,omitempty"`
}

// ButtonBlock is a call-to-action link rendered as a button.
type ButtonBlock struct {
	Text            string `json:"text"`
	Link            string `json:"link"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
	Alignment       string `json:"alignment,omitempty"`
	Padding         Size   `json:"padding,omitempty"`
	BorderRadius    Size   `json:"borderRadius,omitempty"`
}

// ImageBlock is a standalone image.
type ImageBlock struct {
	Src       string `json:"src"`
	Alt       string `json:"alt,omitempty"`
	Width     Size   `json:"width,omitempty"`
	WidthUnit string `json:"widthUnit,omitempty"`
	Padding   Size   `json:"padding"`
}

// DividerBlock is a horizontal rule.
type DividerBlock struct {
	Color  string `json:"color,omitempty"`
	Height Size   `json:"height,omitempty"`
	Margin Size   `json:"margin,omitempty"`
}

// SpacerBlock is vertical whitespace.
type SpacerBlock struct {
	Height Size `json:"height"`
}

// LogoBlock is a brand logo image.
type LogoBlock struct {
	Src       string `json:"src"`
	Alt       string `json:"alt,omitempty"`
	Width     Size   `json:"width,omitempty"`
	Alignment string `json:"alignment,omitempty"`
	Padding   Size   `json:"padding,omitempty"`
}

// HeaderLink is one link in a header block.
type HeaderLink struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	URL  string `json:"url"`
}

// HeaderBlock is a logo row with links and an optional company name.
type HeaderBlock struct {
	Logo              string       `json:"logo,omitempty"`
	LogoAlt           string       `json:"logoAlt,omitempty"`
	LogoWidth         Size         `json:"logoWidth,omitempty"`
	LogoHeight        Size         `json:"logoHeight,omitempty"`
	Links             []HeaderLink `json:"links"`
	LinksFontSize     Size         `json:"linksFontSize,omitempty"`
	LinksFontColor    string       `json:"linksFontColor,omitempty"`
	CompanyName       string       `json:"companyName,omitempty"`
	CompanyFontSize   Size         `json:"companyFontSize,omitempty"`
	CompanyFontColor  string       `json:"companyFontColor,omitempty"`
	CompanyFontWeight string       `json:"companyFontWeight,omitempty"`
	Alignment         string       `json:"alignment,omitempty"`
	BackgroundColor   string       `json:"backgroundColor,omitempty"`
	Padding           Size         `json:"padding,omitempty"`
}

// NavItem is one entry of a navigation bar. Order is significant.
type NavItem struct {
	Label string `json:"label"`
	Link  string `json:"link"`
}

// Navigation display modes.
const (
	NavDisplayBlock  = "block"
	NavDisplayInline = "inline"
)

// NavigationBlock is an ordered list of links.
type NavigationBlock struct {
	Items           []NavItem `json:"items"`
	DisplayMode     string    `json:"displayMode,omitempty"`
	Alignment       string    `json:"alignment,omitempty"`
	BackgroundColor string    `json:"backgroundColor,omitempty"`
	TextColor       string    `json:"textColor,omitempty"`
	Padding         Size      `json:"padding,omitempty"`
	Margin          Size      `json:"margin,omitempty"`
}

// IsInline reports whether the bar renders as bare inline links.
func (n NavigationBlock) IsInline() bool {
	return n.DisplayMode == NavDisplayInline
}

// SocialPlatform is one social network link in a footer.
type SocialPlatform struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Icon string `json:"icon,omitempty"`
}

// SocialGroup configures the social row of a footer.
type SocialGroup struct {
	Platforms []SocialPlatform `json:"platforms"`
	Size      string           `json:"size,omitempty"`
	Alignment string           `json:"alignment,omitempty"`
	Spacing   Size             `json:"spacing,omitempty"`
}

// TextPart is a nested text sub-object of a footer.
type TextPart struct {
	Content string `json:"content"`
}

// LinkPart is a nested link sub-object of a footer.
type LinkPart struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// FooterWithSocialBlock is the closing footer with social links and legal text.
type FooterWithSocialBlock struct {
	Social           SocialGroup `json:"social"`
	EnterpriseName   TextPart    `json:"enterpriseName"`
	Address          *TextPart   `json:"address,omitempty"`
	SubscriptionText *TextPart   `json:"subscriptionText,omitempty"`
	UnsubscribeLink  *LinkPart   `json:"unsubscribeLink,omitempty"`
}

// Stat is one figure in a stats block.
type Stat struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// StatsBlock is a row of headline figures.
type StatsBlock struct {
	Stats []Stat `json:"stats"`
}

// Feature is one cell of a features block.
type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// FeaturesBlock is a grid of features.
type FeaturesBlock struct {
	Features     []Feature `json:"features"`
	ColumnsCount Size      `json:"columnsCount,omitempty"`
}

func (TitleBlock) Kind() BlockType            { return BlockTitle }
func (TextBlock) Kind() BlockType             { return BlockText }
func (ButtonBlock) Kind() BlockType           { return BlockButton }
func (ImageBlock) Kind() BlockType            { return BlockImage }
func (DividerBlock) Kind() BlockType          { return BlockDivider }
func (SpacerBlock) Kind() BlockType           { return BlockSpacer }
func (LogoBlock) Kind() BlockType             { return BlockLogo }
func (HeaderBlock) Kind() BlockType           { return BlockHeader }
func (NavigationBlock) Kind() BlockType       { return BlockNavigation }
func (FooterWithSocialBlock) Kind() BlockType { return BlockFooterWithSocial }
func (StatsBlock) Kind() BlockType            { return BlockStats }
func (FeaturesBlock) Kind() BlockType         { return BlockFeatures }

// NewBlock builds a Block carrying payload under the given id.
func NewBlock(id string, payload Payload) (Block, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Block{}, fmt.Errorf("encode %s payload: %w", payload.Kind(), err)
	}
	var props map[string]any
	if err := json.Unmarshal(data, &props); err != nil {
		return Block{}, fmt.Errorf("encode %s payload: %w", payload.Kind(), err)
	}
	return Block{ID: id, Type: payload.Kind(), Props: props}, nil
}

// Decode returns the typed payload for a known block kind. Attributes that
// are not part of the payload are ignored.
func (b Block) Decode() (Payload, error) {
	var p Payload
	switch b.Type {
	case BlockTitle:
		p = &TitleBlock{}
	case BlockText:
		p = &TextBlock{}
	case BlockButton:
		p = &ButtonBlock{}
	case BlockImage:
		p = &ImageBlock{}
	case BlockDivider:
		p = &DividerBlock{}
	case BlockSpacer:
		p = &SpacerBlock{}
	case BlockLogo:
		p = &LogoBlock{}
	case BlockHeader:
		p = &HeaderBlock{}
	case BlockNavigation:
		p = &NavigationBlock{}
	case BlockFooterWithSocial:
		p = &FooterWithSocialBlock{}
	case BlockStats:
		p = &StatsBlock{}
	case BlockFeatures:
		p = &FeaturesBlock{}
	default:
		return nil, &BlockError{BlockID: b.ID, Type: b.Type, Index: -1, Err: ErrUnknownType}
	}

	data, err := json.Marshal(b.Props)
	if err != nil {
		return nil, &BlockError{BlockID: b.ID, Type: b.Type, Index: -1, Err: err}
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, &BlockError{BlockID: b.ID, Type: b.Type, Index: -1, Err: err}
	}
	return p, nil
}
