package llm

import (
	"context"
	"encoding/json"
	"net/http"
)

// Provider generates structured JSON from a prompt. Implementations
// wrap one vendor SDK each; decorators add retry and logging.
type Provider interface {
	// Generate sends the request and returns the model output. When
	// the request carries a Schema the returned Content is JSON
	// validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the configured model identifier.
	ModelID() string
}

// Request describes one generation call.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// Messages is the conversation. Question generation is
	// single-turn, so this usually holds one user message.
	Messages []Message

	// Schema, when set, selects the provider's native structured
	// output mode and the response is validated against it.
	Schema *Schema

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature in [0, 1]. Zero means deterministic.
	Temperature float64
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is the JSON shape expected from the model.
type Schema struct {
	// Name identifies the schema to the provider, kebab-case.
	Name string

	// Description guides the model.
	Description string

	// Definition is the JSON Schema document as a map.
	Definition map[string]any
}

// Response is one model output.
type Response struct {
	// Content is validated JSON when the request had a Schema,
	// otherwise the raw text.
	Content json.RawMessage

	// Usage reports token counts for the call.
	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// checkedContent returns the model output as raw JSON, validated
// against schema when one is set.
func checkedContent(schema *Schema, text string) (json.RawMessage, error) {
	content := json.RawMessage(text)
	if schema != nil {
		if err := validateResponse(schema, content); err != nil {
			return nil, err
		}
	}
	return content, nil
}

// stopReason normalizes a vendor finish reason to "end" or
// "max_tokens".
func stopReason(truncated bool) string {
	if truncated {
		return "max_tokens"
	}
	return "end"
}

// providerError classifies a vendor API error by HTTP status.
func providerError(status int, err error) error {
	if status == http.StatusTooManyRequests {
		return &ErrRateLimit{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}

// resolveModel maps a friendly model name to a vendor model ID,
// passing unknown names through unchanged.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
