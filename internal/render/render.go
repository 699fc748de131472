// Package render exports documents as standalone HTML suitable for email.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/livetemplate/mailcraft"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer turns documents into HTML. It is safe for concurrent use.
type Renderer struct {
	md   goldmark.Markdown
	tmpl *template.Template
}

type renderedBlock struct {
	ID   string
	Type mailcraft.BlockType
	HTML template.HTML
}

type pageData struct {
	Name   string
	Blocks []renderedBlock
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	r := &Renderer{
		// Raw HTML in text blocks is dropped; goldmark escapes it unless
		// WithUnsafe is set.
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}

	tmpl, err := template.New("page.html").Funcs(template.FuncMap{
		"style":    style,
		"px":       px,
		"width":    width,
		"columns":  columnWidth,
		"social":   socialSize,
		"href":     safeHref,
		"src":      safeSrc,
		"markdown": r.markdown,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("render: failed to parse templates: %w", err)
	}
	r.tmpl = tmpl
	return r, nil
}

// Document writes doc as a complete HTML page. Blocks that cannot be
// rendered are skipped and logged.
func (r *Renderer) Document(w io.Writer, doc *mailcraft.Document) error {
	data := pageData{Name: doc.Name, Blocks: make([]renderedBlock, 0, len(doc.Blocks))}
	for _, b := range doc.Blocks {
		out, err := r.Block(b)
		if err != nil {
			log.Printf("[render] Skipping block %s: %v", b.ID, err)
			continue
		}
		data.Blocks = append(data.Blocks, renderedBlock{ID: b.ID, Type: b.Type, HTML: out})
	}
	if err := r.tmpl.ExecuteTemplate(w, "page.html", data); err != nil {
		return fmt.Errorf("render document %s: %w", doc.ID, err)
	}
	return nil
}

// Block renders a single block fragment.
func (r *Renderer) Block(b mailcraft.Block) (template.HTML, error) {
	payload, err := b.Decode()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, string(b.Type), payload); err != nil {
		return "", fmt.Errorf("render block %s: %w", b.ID, err)
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) markdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(buf.String())
}
