package generate

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	blockSchemaURL = "https://mailcraft.schemas.local/block.schema.json"
	replySchemaURL = "https://mailcraft.schemas.local/reply.schema.json"
)

const blockSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": {"type": "string", "minLength": 1},
    "id": {"type": ["string", "number"]}
  }
}`

const replySchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["blocks"],
  "properties": {
    "message": {"type": "string"},
    "blocks": {
      "type": "array",
      "items": {"$ref": "block.schema.json"}
    }
  }
}`

// Schemas validates decoded replies and catalog blocks.
type Schemas struct {
	Block *jsonschema.Schema
	Reply *jsonschema.Schema
}

// CompileSchemas compiles the block and reply schemas.
func CompileSchemas() (*Schemas, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(blockSchemaURL, strings.NewReader(blockSchema)); err != nil {
		return nil, fmt.Errorf("block schema load failed: %w", err)
	}
	if err := c.AddResource(replySchemaURL, strings.NewReader(replySchema)); err != nil {
		return nil, fmt.Errorf("reply schema load failed: %w", err)
	}
	block, err := c.Compile(blockSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("block schema compile failed: %w", err)
	}
	reply, err := c.Compile(replySchemaURL)
	if err != nil {
		return nil, fmt.Errorf("reply schema compile failed: %w", err)
	}
	return &Schemas{Block: block, Reply: reply}, nil
}

var defaultSchemas = mustCompileSchemas()

func mustCompileSchemas() *Schemas {
	s, err := CompileSchemas()
	if err != nil {
		panic(err)
	}
	return s
}
