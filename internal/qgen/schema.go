package qgen

import "kysymyssota/internal/llm"

// QuestionBatchSchema is the JSON schema for generated question
// batches.
var QuestionBatchSchema = &llm.Schema{
	Name:        "trivia-questions",
	Description: "A batch of multiple-choice trivia questions for children",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text": map[string]any{
							"type":        "string",
							"description": "The question shown to the player, one clear sentence",
						},
						"answer": map[string]any{
							"type":        "string",
							"description": "The correct answer, short",
						},
						"wrong_answers": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "string",
							},
							"minItems":    3,
							"maxItems":    3,
							"description": "Exactly 3 plausible but wrong options",
						},
						"category": map[string]any{
							"type":        "string",
							"description": "Topic category, lowercase single word",
						},
						"tier": map[string]any{
							"type":        "string",
							"enum":        []any{"apprentice", "skilled", "master", "king", "grandmaster"},
							"description": "Difficulty tier",
						},
						"points": map[string]any{
							"type":        "integer",
							"minimum":     1,
							"description": "Point value, normally the tier default",
						},
					},
					"required":             []any{"text", "answer", "wrong_answers", "category", "tier", "points"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}
