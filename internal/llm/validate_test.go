package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func testSchema() *Schema {
	return &Schema{
		Name:        "test-question",
		Description: "test",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text":   map[string]any{"type": "string"},
				"points": map[string]any{"type": "integer", "minimum": 1},
			},
			"required":             []any{"text", "points"},
			"additionalProperties": false,
		},
	}
}

func TestValidateResponseAccepts(t *testing.T) {
	raw := json.RawMessage(`{"text": "q", "points": 10}`)
	if err := validateResponse(testSchema(), raw); err != nil {
		t.Fatalf("valid response rejected: %v", err)
	}
}

func TestValidateResponseNilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`not even json`)); err != nil {
		t.Fatalf("nil schema must skip validation, got %v", err)
	}
}

func TestValidateResponseRejects(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"malformed", `{"text": `},
		{"missing field", `{"text": "q"}`},
		{"wrong type", `{"text": "q", "points": "ten"}`},
		{"below minimum", `{"text": "q", "points": 0}`},
		{"extra field", `{"text": "q", "points": 1, "hint": "x"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateResponse(testSchema(), json.RawMessage(tc.raw))
			var invalid *ErrInvalidResponse
			if !errors.As(err, &invalid) {
				t.Fatalf("got %v, want ErrInvalidResponse", err)
			}
		})
	}
}

func TestSchemaCompiledOnce(t *testing.T) {
	schema := testSchema()
	first, err := compiledSchema(schema)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	second, err := compiledSchema(schema)
	if err != nil {
		t.Fatalf("recompile: %v", err)
	}
	if first != second {
		t.Fatal("schema compiled twice")
	}
}
