package generate

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/livetemplate/mailcraft"
)

//go:embed catalog.yaml
var builtinCatalog []byte

// promptPlaceholder is replaced with the user's prompt in catalog strings.
const promptPlaceholder = "{{prompt}}"

// Catalog is the ordered list of keyword templates used by the fallback
// generator.
type Catalog struct {
	DefaultMessage string     `yaml:"default_message"`
	Categories     []Category `yaml:"categories"`
}

// Category is one keyword template. Each entry of Match is a group of
// alternatives; the category applies when every group has a keyword that
// occurs in the prompt. An empty Match always applies.
type Category struct {
	Name    string           `yaml:"name"`
	Match   [][]string       `yaml:"match,omitempty"`
	Message string           `yaml:"message"`
	Blocks  []map[string]any `yaml:"blocks"`
}

// Matches reports whether the category applies to an already lower-cased
// prompt.
func (c Category) Matches(lower string) bool {
	for _, group := range c.Match {
		found := false
		for _, kw := range group {
			if strings.Contains(lower, strings.ToLower(kw)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadCatalog reads a catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(builtinCatalog)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog: %v", err))
	}
	return c
}

// Validate checks that every prompt finds a category and every block is
// well formed.
func (c *Catalog) Validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("catalog: no categories")
	}
	if last := c.Categories[len(c.Categories)-1]; len(last.Match) != 0 {
		return fmt.Errorf("catalog: last category %q must have no match rules", last.Name)
	}
	for i, cat := range c.Categories {
		if cat.Name == "" {
			return fmt.Errorf("catalog: category %d has no name", i)
		}
		if len(cat.Blocks) == 0 {
			return fmt.Errorf("catalog: category %q has no blocks", cat.Name)
		}
		for j, group := range cat.Match {
			if len(group) == 0 {
				return fmt.Errorf("catalog: category %q match group %d is empty", cat.Name, j)
			}
		}
		for j, b := range cat.Blocks {
			if err := defaultSchemas.Block.Validate(b); err != nil {
				return fmt.Errorf("catalog: category %q block %d: %w", cat.Name, j, err)
			}
		}
	}
	return nil
}

// Lookup returns the first category that applies to prompt.
func (c *Catalog) Lookup(prompt string) Category {
	lower := strings.ToLower(prompt)
	for _, cat := range c.Categories {
		if cat.Matches(lower) {
			return cat
		}
	}
	return c.Categories[len(c.Categories)-1]
}

// Build instantiates the category for prompt. ids maps a block's catalog id
// to its final identifier.
func (c *Catalog) Build(prompt string, ids func(suffix int) string) (Result, error) {
	cat := c.Lookup(prompt)
	message := cat.Message
	if message == "" {
		message = c.DefaultMessage
	}

	blocks := make([]mailcraft.Block, 0, len(cat.Blocks))
	for i, raw := range cat.Blocks {
		attrs := substitute(raw, prompt).(map[string]any)
		suffix := i + 1
		if n, ok := toInt(attrs["id"]); ok {
			suffix = n
		}
		attrs["id"] = ids(suffix)

		b, err := mailcraft.BlockFromMap(attrs)
		if err != nil {
			return Result{}, fmt.Errorf("catalog %q block %d: %w", cat.Name, i, err)
		}
		blocks = append(blocks, b)
	}
	return Result{Message: message, Blocks: blocks, Source: SourceFallback, Category: cat.Name}, nil
}

// substitute deep-copies v, replacing the prompt placeholder in strings.
func substitute(v any, prompt string) any {
	switch val := v.(type) {
	case string:
		return strings.ReplaceAll(val, promptPlaceholder, prompt)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = substitute(item, prompt)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = substitute(item, prompt)
		}
		return out
	default:
		return val
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
