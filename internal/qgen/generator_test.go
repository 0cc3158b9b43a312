package qgen

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kysymyssota/internal/llm"
	"kysymyssota/internal/store"
)

func batchJSON(questions ...string) json.RawMessage {
	return json.RawMessage(`{"questions": [` + strings.Join(questions, ",") + `]}`)
}

const validQuestion = `{
	"text": "Which planet is known as the red planet?",
	"answer": "Mars",
	"wrong_answers": ["Venus", "Jupiter", "Mercury"],
	"category": "space",
	"tier": "apprentice",
	"points": 10
}`

func TestGenerateParsesBatch(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: batchJSON(validQuestion)})
	g := New(mock, DefaultConfig())

	questions, err := g.Generate(context.Background(), GenerateInput{Count: 1})
	require.NoError(t, err)
	require.Len(t, questions, 1)

	q := questions[0]
	assert.Equal(t, "Mars", q.Answer)
	assert.Equal(t, "space", q.Category)
	assert.Equal(t, store.TierApprentice, q.Tier)
	assert.Equal(t, 10, q.BasePoints)
	assert.Equal(t, store.SourceCurated, q.Source)
	assert.Len(t, q.WrongAnswers, 3)
}

func TestGenerateRequestShape(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: batchJSON(validQuestion)})
	g := New(mock, DefaultConfig())

	_, err := g.Generate(context.Background(), GenerateInput{
		Count:    3,
		Category: "space",
		Tier:     store.TierApprentice,
	})
	require.NoError(t, err)
	require.Equal(t, 1, mock.CallCount())

	req := mock.Calls[0]
	assert.Equal(t, QuestionBatchSchema, req.Schema)
	assert.NotEmpty(t, req.System)
	require.Len(t, req.Messages, 1)
	assert.Contains(t, req.Messages[0].Content, "Generate 3 questions")
	assert.Contains(t, req.Messages[0].Content, "Category: space")
	assert.Contains(t, req.Messages[0].Content, "Tier: apprentice")
}

func TestGenerateSendsExistingForDedup(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: batchJSON(validQuestion)})
	g := New(mock, DefaultConfig())

	_, err := g.Generate(context.Background(), GenerateInput{
		Count:    1,
		Existing: []store.Question{{Text: "How many moons does Mars have?"}},
	})
	require.NoError(t, err)
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "How many moons does Mars have?")
}

func TestGenerateDropsInvalidQuestions(t *testing.T) {
	badTier := `{"text": "q", "answer": "a", "wrong_answers": ["1","2","3"], "category": "space", "tier": "legend", "points": 10}`
	dupWrong := `{"text": "q2", "answer": "Mars", "wrong_answers": ["mars","Venus","Pluto"], "category": "space", "tier": "king", "points": 40}`
	tooFew := `{"text": "q3", "answer": "a", "wrong_answers": ["1","2"], "category": "space", "tier": "king", "points": 40}`

	mock := llm.NewMockProvider(llm.MockResponse{
		Content: batchJSON(badTier, dupWrong, tooFew, validQuestion),
	})
	g := New(mock, DefaultConfig())

	questions, err := g.Generate(context.Background(), GenerateInput{Count: 4})
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Mars", questions[0].Answer)
}

func TestGenerateDedupAgainstExisting(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: batchJSON(validQuestion, validQuestion),
	})
	g := New(mock, DefaultConfig())

	questions, err := g.Generate(context.Background(), GenerateInput{
		Count: 2,
		Existing: []store.Question{
			{Text: "which planet IS known as  the red planet?"},
		},
	})
	// Both copies collide with the existing question up to case and
	// whitespace, leaving nothing.
	require.Error(t, err)
	assert.Nil(t, questions)
}

func TestGenerateEnforcesRequestedTier(t *testing.T) {
	offTier := `{"text": "q", "answer": "a", "wrong_answers": ["1","2","3"], "category": "space", "tier": "king", "points": 40}`
	mock := llm.NewMockProvider(llm.MockResponse{Content: batchJSON(offTier, validQuestion)})
	g := New(mock, DefaultConfig())

	questions, err := g.Generate(context.Background(), GenerateInput{
		Count: 2,
		Tier:  store.TierApprentice,
	})
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, store.TierApprentice, questions[0].Tier)
}

func TestGenerateProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	g := New(mock, DefaultConfig())

	_, err := g.Generate(context.Background(), GenerateInput{Count: 1})
	require.Error(t, err)
}
