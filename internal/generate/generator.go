// Package generate turns a natural-language prompt into an ordered list of
// email blocks, using the generation service when it answers and a keyword
// catalog when it does not.
package generate

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/livetemplate/mailcraft"
)

// ErrPromptRequired is returned for an empty prompt.
var ErrPromptRequired = errors.New("prompt is required")

// Result sources.
const (
	SourceService  = "service"
	SourceFallback = "fallback"
)

// Result is a generated template.
type Result struct {
	Message string            `json:"message"`
	Blocks  []mailcraft.Block `json:"blocks"`

	// Source and Category describe how the result was produced.
	Source   string `json:"-"`
	Category string `json:"-"`
}

// Completer is the generation service.
type Completer interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Generator produces templates from prompts. It is safe for concurrent use;
// concurrent requests are independent and never deduplicated.
type Generator struct {
	service Completer
	name    string
	catalog atomic.Pointer[Catalog]
	ids     *mailcraft.IDGenerator
}

// New creates a generator. A nil service always uses the catalog; a nil
// catalog uses the built-in one.
func New(service Completer, catalog *Catalog) *Generator {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	g := &Generator{
		service: service,
		name:    "service",
		ids:     mailcraft.NewIDGenerator("ai"),
	}
	if named, ok := service.(interface{ Name() string }); ok {
		g.name = named.Name()
	}
	g.catalog.Store(catalog)
	return g
}

// Catalog returns the active catalog.
func (g *Generator) Catalog() *Catalog {
	return g.catalog.Load()
}

// SetCatalog swaps the active catalog.
func (g *Generator) SetCatalog(c *Catalog) {
	g.catalog.Store(c)
}

// Generate returns a template for prompt. Service failures are logged and
// answered from the catalog; the only error is ErrPromptRequired.
func (g *Generator) Generate(ctx context.Context, prompt string) (Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return Result{}, ErrPromptRequired
	}

	if g.service != nil {
		res, err := g.fromService(ctx, prompt)
		if err == nil {
			return res, nil
		}
		log.Printf("[generate] Service failed, using fallback: %v", err)
	}

	return g.Fallback(prompt)
}

func (g *Generator) fromService(ctx context.Context, prompt string) (Result, error) {
	text, err := g.service.Generate(ctx, Instructions(prompt))
	if err != nil {
		return Result{}, err
	}
	return ParseReply(g.name, text, g.ids.Batch())
}

// Fallback builds the catalog template for prompt without calling the
// service.
func (g *Generator) Fallback(prompt string) (Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return Result{}, ErrPromptRequired
	}
	res, err := g.Catalog().Build(prompt, g.ids.Batch())
	if err != nil {
		// A reloaded catalog is validated before it is swapped in, so this
		// only happens for a hand-built Catalog.
		log.Printf("[generate] Catalog failed, using built-in: %v", err)
		return DefaultCatalog().Build(prompt, g.ids.Batch())
	}
	return res, nil
}
