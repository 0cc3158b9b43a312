package content

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"time"

	"github.com/rs/zerolog"

	"kysymyssota/internal/store"
)

// One file per tier, mirroring the shipped question sets.
//
//go:embed bundles/*.json
var bundles embed.FS

// Entry is one question as it appears in a bundle file.
type Entry struct {
	Text         string   `json:"text"`
	Answer       string   `json:"answer"`
	WrongAnswers []string `json:"wrong_answers"`
	Category     string   `json:"category"`
	Tier         string   `json:"tier"`
	Points       int      `json:"points"`
}

// Loader seeds and refreshes the question table from bundled content.
type Loader struct {
	questions store.QuestionRepo
	log       zerolog.Logger
	now       func() time.Time
}

// NewLoader creates a Loader over the given question repository.
func NewLoader(questions store.QuestionRepo, log zerolog.Logger) *Loader {
	return &Loader{questions: questions, log: log, now: time.Now}
}

// Seed loads all bundled question sets into an empty question table.
// It is a no-op when the table already has questions.
func (l *Loader) Seed(ctx context.Context) error {
	existing, err := l.questions.All(ctx)
	if err != nil {
		return fmt.Errorf("count questions: %w", err)
	}
	if len(existing) > 0 {
		l.log.Debug().Int("count", len(existing)).Msg("question table already seeded")
		return nil
	}
	n, err := l.insertBundled(ctx)
	if err != nil {
		return err
	}
	l.log.Info().Int("questions", n).Msg("seeded bundled questions")
	return nil
}

// Refresh reloads all bundled content, preserving curated questions.
// Curated rows are re-inserted with fresh ids and re-tagged curated to
// guard against tag loss.
func (l *Loader) Refresh(ctx context.Context) error {
	existing, err := l.questions.All(ctx)
	if err != nil {
		return fmt.Errorf("read questions: %w", err)
	}

	var curated []store.Question
	for _, q := range existing {
		if q.Source == store.SourceCurated {
			curated = append(curated, q)
		}
	}

	if err := l.questions.Clear(ctx); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}

	n, err := l.insertBundled(ctx)
	if err != nil {
		return err
	}

	for _, q := range curated {
		q.ID = 0
		q.Source = store.SourceCurated
		if _, err := l.questions.Add(ctx, &q); err != nil {
			return fmt.Errorf("re-insert curated question: %w", err)
		}
	}

	l.log.Info().Int("bundled", n).Int("curated", len(curated)).Msg("refreshed question bank")
	return nil
}

// insertBundled parses, validates and inserts every bundle file.
func (l *Loader) insertBundled(ctx context.Context) (int, error) {
	entries, err := LoadBundles()
	if err != nil {
		return 0, err
	}

	now := l.now()
	for _, e := range entries {
		q := store.Question{
			Text:         e.Text,
			Answer:       e.Answer,
			WrongAnswers: e.WrongAnswers,
			Category:     e.Category,
			Tier:         store.Tier(e.Tier),
			BasePoints:   e.Points,
			CreatedAt:    now,
			Source:       store.SourceBundled,
		}
		if _, err := l.questions.Add(ctx, &q); err != nil {
			return 0, fmt.Errorf("insert bundled question: %w", err)
		}
	}
	return len(entries), nil
}

// LoadBundles parses and validates all bundle files, flattening single
// entries and lists into one slice. A file failing validation aborts
// the whole load.
func LoadBundles() ([]Entry, error) {
	names, err := fs.Glob(bundles, "bundles/*.json")
	if err != nil {
		return nil, fmt.Errorf("glob bundles: %w", err)
	}

	var all []Entry
	for _, name := range names {
		raw, err := bundles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read bundle %s: %w", name, err)
		}
		entries, err := parseBundle(raw)
		if err != nil {
			return nil, fmt.Errorf("bundle %s: %w", name, err)
		}
		all = append(all, entries...)
	}
	return all, nil
}

// parseBundle decodes a bundle document: either one entry or a list.
func parseBundle(raw []byte) ([]Entry, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validateBundle(parsed); err != nil {
		return nil, err
	}

	var list []Entry
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var single Entry
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("decode entry: %w", err)
	}
	return []Entry{single}, nil
}
