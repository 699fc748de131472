package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livetemplate/mailcraft"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New()
	require.NoError(t, err)
	return r
}

func block(t *testing.T, id string, p mailcraft.Payload) mailcraft.Block {
	t.Helper()
	b, err := mailcraft.NewBlock(id, p)
	require.NoError(t, err)
	return b
}

func TestRenderDocument(t *testing.T) {
	r := newRenderer(t)
	doc := mailcraft.NewDocument("Welcome <email>")
	doc.Blocks = []mailcraft.Block{
		block(t, "t1", mailcraft.TitleBlock{Content: "Hello & welcome", FontSize: 32, FontColor: "#1a1a1a", Alignment: "center"}),
		block(t, "x1", mailcraft.TextBlock{Content: "Some **bold** words"}),
		block(t, "b1", mailcraft.ButtonBlock{Text: "Go", Link: "https://example.com", BackgroundColor: "#FF6A00"}),
	}

	var buf bytes.Buffer
	require.NoError(t, r.Document(&buf, doc))
	out := buf.String()

	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "<title>Welcome &lt;email&gt;</title>")
	assert.Contains(t, out, `data-block-id="t1"`)
	assert.Contains(t, out, "Hello &amp; welcome")
	assert.Contains(t, out, "font-size: 32px")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, `href="https://example.com"`)
	assert.Contains(t, out, "background-color: #FF6A00")

	// Blocks keep document order.
	assert.Less(t, strings.Index(out, `data-block-id="t1"`), strings.Index(out, `data-block-id="x1"`))
	assert.Less(t, strings.Index(out, `data-block-id="x1"`), strings.Index(out, `data-block-id="b1"`))
}

func TestRenderSkipsUnknownBlocks(t *testing.T) {
	r := newRenderer(t)
	doc := mailcraft.NewDocument("doc")
	doc.Blocks = []mailcraft.Block{
		{ID: "u1", Type: "carousel", Props: map[string]any{}},
		block(t, "s1", mailcraft.SpacerBlock{Height: 20}),
	}

	var buf bytes.Buffer
	require.NoError(t, r.Document(&buf, doc))
	assert.NotContains(t, buf.String(), `data-block-id="u1"`)
	assert.Contains(t, buf.String(), "height: 20px")
}

func TestRenderBlockKinds(t *testing.T) {
	r := newRenderer(t)

	tests := []struct {
		name    string
		payload mailcraft.Payload
		want    []string
	}{
		{
			name:    "image with percent width",
			payload: mailcraft.ImageBlock{Src: "https://cdn.example.com/a.png", Alt: "Hero", Width: 100, WidthUnit: "%"},
			want:    []string{`src="https://cdn.example.com/a.png"`, `alt="Hero"`, "width: 100%"},
		},
		{
			name:    "divider",
			payload: mailcraft.DividerBlock{Color: "#eeeeee", Height: 1, Margin: 20},
			want:    []string{"<hr", "border-top-color: #eeeeee", "border-top-width: 1px"},
		},
		{
			name: "inline navigation",
			payload: mailcraft.NavigationBlock{
				Items:       []mailcraft.NavItem{{Label: "Home", Link: "/"}, {Label: "Shop", Link: "/shop"}},
				DisplayMode: mailcraft.NavDisplayInline,
			},
			want: []string{`<div class="mc-nav"`, ">Home</a>", ">Shop</a>"},
		},
		{
			name: "block navigation",
			payload: mailcraft.NavigationBlock{
				Items:           []mailcraft.NavItem{{Label: "Home", Link: "/"}},
				BackgroundColor: "#000000",
			},
			want: []string{`<table role="presentation" width="100%" class="mc-nav"`, "background-color: #000000"},
		},
		{
			name: "header",
			payload: mailcraft.HeaderBlock{
				Logo:        "https://cdn.example.com/logo.png",
				CompanyName: "Acme",
				Links:       []mailcraft.HeaderLink{{ID: "l1", Text: "Blog", URL: "https://example.com/blog"}},
			},
			want: []string{`src="https://cdn.example.com/logo.png"`, ">Acme</td>", ">Blog</a>"},
		},
		{
			name: "footer with optional parts",
			payload: mailcraft.FooterWithSocialBlock{
				Social:          mailcraft.SocialGroup{Platforms: []mailcraft.SocialPlatform{{Name: "twitter", URL: "https://twitter.com/acme"}}},
				EnterpriseName:  mailcraft.TextPart{Content: "Acme Inc"},
				UnsubscribeLink: &mailcraft.LinkPart{Text: "Unsubscribe", URL: "https://example.com/unsub"},
			},
			want: []string{">twitter</a>", "<strong>Acme Inc</strong>", ">Unsubscribe</a>"},
		},
		{
			name:    "stats",
			payload: mailcraft.StatsBlock{Stats: []mailcraft.Stat{{Value: "10k", Label: "Users"}, {Value: "99%", Label: "Uptime"}}},
			want:    []string{"10k", "Uptime", "width: 50%"},
		},
		{
			name:    "features with columns",
			payload: mailcraft.FeaturesBlock{Features: []mailcraft.Feature{{Title: "Fast", Description: "Very"}}, ColumnsCount: 3},
			want:    []string{"<h3>Fast</h3>", "width: 33%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Block(block(t, "b", tt.payload))
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, string(out), want)
			}
		})
	}
}

func TestRenderSanitizesLinks(t *testing.T) {
	r := newRenderer(t)

	out, err := r.Block(block(t, "b", mailcraft.ButtonBlock{Text: "Click", Link: "javascript:alert(1)"}))
	require.NoError(t, err)
	assert.NotContains(t, string(out), "javascript")
	assert.Contains(t, string(out), `href="#"`)

	out, err = r.Block(block(t, "i", mailcraft.ImageBlock{Src: "http://127.0.0.1/secret.png"}))
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<img")
}

func TestRenderDropsUnsafeStyles(t *testing.T) {
	r := newRenderer(t)

	out, err := r.Block(block(t, "t", mailcraft.TitleBlock{Content: "x", FontColor: "red; background: url(evil)"}))
	require.NoError(t, err)
	assert.NotContains(t, string(out), "evil")
}

func TestRenderMarkdownEscapesRawHTML(t *testing.T) {
	r := newRenderer(t)

	out, err := r.Block(block(t, "x", mailcraft.TextBlock{Content: "hi <script>alert(1)</script>"}))
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<script>")
}

func TestRenderEmbeddedImage(t *testing.T) {
	r := newRenderer(t)
	src := "data:image/png;base64,iVBORw0KGgo="

	out, err := r.Block(block(t, "i", mailcraft.ImageBlock{Src: src}))
	require.NoError(t, err)
	assert.Contains(t, string(out), src)
}

func TestRenderAcceptsStringAndFractionalSizes(t *testing.T) {
	r := newRenderer(t)
	doc := mailcraft.NewDocument("sizes")
	doc.Blocks = []mailcraft.Block{
		{ID: "t1", Type: mailcraft.BlockTitle, Props: map[string]any{"content": "Big news", "fontSize": "32px"}},
		{ID: "t2", Type: mailcraft.BlockText, Props: map[string]any{"content": "Body copy", "padding": 12.5}},
		{ID: "t3", Type: mailcraft.BlockSpacer, Props: map[string]any{"height": "24"}},
		{ID: "t4", Type: mailcraft.BlockButton, Props: map[string]any{"text": "Go", "link": "#", "borderRadius": "auto"}},
	}

	var buf bytes.Buffer
	require.NoError(t, r.Document(&buf, doc))
	out := buf.String()

	for _, id := range []string{"t1", "t2", "t3", "t4"} {
		assert.Contains(t, out, `data-block-id="`+id+`"`)
	}
	assert.Contains(t, out, "Big news")
	assert.Contains(t, out, "font-size: 32px")
	assert.Contains(t, out, "padding: 13px")
	assert.Contains(t, out, "height: 24px")
	assert.NotContains(t, out, "border-radius")
}
