package content

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// entrySchema describes one bundled question. A bundle file holds either
// a single entry or an array of entries.
var entrySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"text":          map[string]any{"type": "string", "minLength": 1},
		"answer":        map[string]any{"type": "string", "minLength": 1},
		"wrong_answers": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "minItems": 3},
		"category":      map[string]any{"type": "string"},
		"tier":          map[string]any{"enum": []any{"apprentice", "skilled", "master", "king", "grandmaster"}},
		"points":        map[string]any{"type": "integer", "minimum": 0},
	},
	"required":             []any{"text", "answer", "wrong_answers", "tier"},
	"additionalProperties": false,
}

var bundleSchemaDef = map[string]any{
	"oneOf": []any{
		entrySchema,
		map[string]any{"type": "array", "items": entrySchema},
	},
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// validateBundle checks a parsed bundle document against the schema.
func validateBundle(parsed any) error {
	compileOnce.Do(func() {
		// The compiler wants parsed-JSON value types, so round-trip
		// the Go literal through encoding/json first.
		raw, err := json.Marshal(bundleSchemaDef)
		if err != nil {
			compileErr = fmt.Errorf("marshal bundle schema: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(raw, &def); err != nil {
			compileErr = fmt.Errorf("parse bundle schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://question-bundle.json", def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("schema://question-bundle.json")
	})
	if compileErr != nil {
		return fmt.Errorf("compile bundle schema: %w", compileErr)
	}
	if err := compiledSchema.Validate(parsed); err != nil {
		return fmt.Errorf("bundle schema validation: %w", err)
	}
	return nil
}
