package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestOpenCreatesSchema(t *testing.T) {
	st := newTestStore(t)

	for _, table := range []string{"players", "questions", "game_sessions", "answers", "statistics"} {
		var name string
		err := st.DB().QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	st, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := st.Players().Create(context.Background(), &Player{Name: "Aino", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("create player: %v", err)
	}
	st.Close()

	st, err = Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer st.Close()

	p, err := st.Players().ByName(context.Background(), "Aino")
	if err != nil {
		t.Fatalf("by name: %v", err)
	}
	if p == nil {
		t.Fatal("player lost across reopen")
	}
}

func TestDefaultDBPathEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom", "quiz.db")
	t.Setenv("KYSYMYSSOTA_DB", path)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("default path: %v", err)
	}
	if got != path {
		t.Fatalf("got %q, want %q", got, path)
	}
}
