package qgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"kysymyssota/internal/llm"
	"kysymyssota/internal/store"
)

// Config tunes the generator.
type Config struct {
	// MaxTokens caps the model response.
	MaxTokens int

	// Temperature for generation. Trivia wants variety, so the
	// default is well above zero.
	Temperature float64

	// MaxExisting caps how many existing question texts are sent for
	// dedup.
	MaxExisting int
}

// DefaultConfig returns the generation defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   4096,
		Temperature: 0.8,
		MaxExisting: 100,
	}
}

// GenerateInput selects what to generate.
type GenerateInput struct {
	// Count is how many questions to ask for.
	Count int

	// Category restricts the topic when non-empty.
	Category string

	// Tier restricts difficulty when non-empty.
	Tier store.Tier

	// Existing is the current question set, sent for dedup.
	Existing []store.Question
}

// Generator produces curated questions through a model provider.
type Generator struct {
	provider llm.Provider
	config   Config
}

// New creates a Generator.
func New(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, config: cfg}
}

// batchOutput is the raw model response before validation.
type batchOutput struct {
	Questions []questionOutput `json:"questions"`
}

type questionOutput struct {
	Text         string   `json:"text"`
	Answer       string   `json:"answer"`
	WrongAnswers []string `json:"wrong_answers"`
	Category     string   `json:"category"`
	Tier         string   `json:"tier"`
	Points       int      `json:"points"`
}

// Generate asks the provider for input.Count questions and returns the
// ones that pass validation. Questions come back unsaved, tagged as
// curated content.
func (g *Generator) Generate(ctx context.Context, input GenerateInput) ([]store.Question, error) {
	if input.Count <= 0 {
		input.Count = 1
	}

	ctx = llm.WithPurpose(ctx, "question-gen")

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input, g.config)},
		},
		Schema:      QuestionBatchSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("question generation failed: %w", err)
	}

	var raw batchOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("parse generation response: %w", err)
	}

	seen := make(map[string]bool, len(input.Existing))
	for _, q := range input.Existing {
		seen[normalize(q.Text)] = true
	}

	var out []store.Question
	for _, q := range raw.Questions {
		if err := validateQuestion(q, input); err != nil {
			continue
		}
		if seen[normalize(q.Text)] {
			continue
		}
		seen[normalize(q.Text)] = true
		out = append(out, store.Question{
			Text:         strings.TrimSpace(q.Text),
			Answer:       strings.TrimSpace(q.Answer),
			WrongAnswers: q.WrongAnswers,
			Category:     strings.ToLower(strings.TrimSpace(q.Category)),
			Tier:         store.Tier(q.Tier),
			BasePoints:   q.Points,
			Source:       store.SourceCurated,
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no usable questions in generation response")
	}
	return out, nil
}

// validateQuestion applies the structural checks the schema cannot
// express.
func validateQuestion(q questionOutput, input GenerateInput) error {
	if strings.TrimSpace(q.Text) == "" || strings.TrimSpace(q.Answer) == "" {
		return fmt.Errorf("empty text or answer")
	}
	if len(q.WrongAnswers) != 3 {
		return fmt.Errorf("want 3 wrong answers, got %d", len(q.WrongAnswers))
	}
	for _, w := range q.WrongAnswers {
		if strings.TrimSpace(w) == "" {
			return fmt.Errorf("empty wrong answer")
		}
		if strings.EqualFold(strings.TrimSpace(w), strings.TrimSpace(q.Answer)) {
			return fmt.Errorf("wrong answer duplicates the correct answer")
		}
	}
	if !store.Tier(q.Tier).Valid() {
		return fmt.Errorf("unknown tier %q", q.Tier)
	}
	if input.Tier != "" && store.Tier(q.Tier) != input.Tier {
		return fmt.Errorf("tier %q outside requested %q", q.Tier, input.Tier)
	}
	if input.Category != "" && !strings.EqualFold(strings.TrimSpace(q.Category), input.Category) {
		return fmt.Errorf("category %q outside requested %q", q.Category, input.Category)
	}
	if q.Points <= 0 {
		return fmt.Errorf("non-positive points")
	}
	return nil
}

func normalize(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}
