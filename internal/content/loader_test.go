package content

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"kysymyssota/internal/store"
)

func newTestLoader(t *testing.T) (*Loader, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewLoader(st.Questions(), zerolog.Nop()), st
}

func TestLoadBundles(t *testing.T) {
	entries, err := LoadBundles()
	if err != nil {
		t.Fatalf("load bundles: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no bundled questions")
	}
	for _, e := range entries {
		if e.Text == "" || e.Answer == "" {
			t.Errorf("entry with empty text or answer: %+v", e)
		}
		if len(e.WrongAnswers) < 3 {
			t.Errorf("entry %q has %d wrong answers", e.Text, len(e.WrongAnswers))
		}
		if !store.Tier(e.Tier).Valid() {
			t.Errorf("entry %q has unknown tier %q", e.Text, e.Tier)
		}
	}
}

func TestSeedPopulatesEmptyTable(t *testing.T) {
	loader, st := newTestLoader(t)
	ctx := context.Background()

	if err := loader.Seed(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	all, err := st.Questions().All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) == 0 {
		t.Fatal("seed inserted nothing")
	}
	for _, q := range all {
		if q.Source != store.SourceBundled {
			t.Errorf("question %d tagged %q, want bundled", q.ID, q.Source)
		}
	}

	// Second seed is a no-op.
	before := len(all)
	if err := loader.Seed(ctx); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	all, _ = st.Questions().All(ctx)
	if len(all) != before {
		t.Fatalf("second seed grew the table from %d to %d", before, len(all))
	}
}

func TestRefreshPreservesCurated(t *testing.T) {
	loader, st := newTestLoader(t)
	ctx := context.Background()

	if err := loader.Seed(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	bundledCount := mustCount(t, st)

	_, err := st.Questions().Add(ctx, &store.Question{
		Text:         "What is the capital of Finland?",
		Answer:       "Helsinki",
		WrongAnswers: []string{"Tampere", "Turku", "Oulu"},
		Category:     "geography",
		Tier:         store.TierSkilled,
		BasePoints:   20,
		CreatedAt:    time.Now(),
		Source:       store.SourceCurated,
	})
	if err != nil {
		t.Fatalf("add curated: %v", err)
	}

	if err := loader.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	all, _ := st.Questions().All(ctx)
	if len(all) != bundledCount+1 {
		t.Fatalf("got %d questions after refresh, want %d", len(all), bundledCount+1)
	}

	curated := 0
	for _, q := range all {
		if q.Source == store.SourceCurated {
			curated++
			if q.Text != "What is the capital of Finland?" {
				t.Errorf("unexpected curated question %q", q.Text)
			}
		}
	}
	if curated != 1 {
		t.Fatalf("curated count = %d, want 1", curated)
	}
}

func TestParseBundleSingleEntry(t *testing.T) {
	entries, err := parseBundle([]byte(`{
		"text": "How many legs does a spider have?",
		"answer": "8",
		"wrong_answers": ["6", "10", "12"],
		"category": "animals",
		"tier": "apprentice",
		"points": 10
	}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 1 || entries[0].Answer != "8" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestParseBundleRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `{"text": `},
		{"missing tier", `{"text": "q", "answer": "a", "wrong_answers": ["1","2","3"]}`},
		{"bad tier", `{"text": "q", "answer": "a", "wrong_answers": ["1","2","3"], "tier": "legend"}`},
		{"too few wrongs", `{"text": "q", "answer": "a", "wrong_answers": ["1"], "tier": "king"}`},
		{"unknown field", `{"text": "q", "answer": "a", "wrong_answers": ["1","2","3"], "tier": "king", "hint": "x"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseBundle([]byte(tc.raw)); err == nil {
				t.Fatal("invalid bundle accepted")
			}
		})
	}
}

func mustCount(t *testing.T, st *store.Store) int {
	t.Helper()
	all, err := st.Questions().All(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	return len(all)
}
