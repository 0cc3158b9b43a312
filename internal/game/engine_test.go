package game

import (
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"kysymyssota/internal/store"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestEngine(t *testing.T) (*Engine, *store.Store, *fakeClock) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	clk := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	engine := New(st, Options{
		Rand:  rand.New(rand.NewPCG(7, 11)),
		Clock: clk.Now,
	})
	return engine, st, clk
}

func seedQuestions(t *testing.T, st *store.Store, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := st.Questions().Add(context.Background(), &store.Question{
			Text:         "What is the largest planet?",
			Answer:       "Jupiter",
			WrongAnswers: []string{"Mars", "Saturn", "Venus"},
			Category:     "space",
			Tier:         store.TierApprentice,
			BasePoints:   10,
			CreatedAt:    time.Now(),
			Source:       store.SourceBundled,
		})
		if err != nil {
			t.Fatalf("seed question: %v", err)
		}
	}
}

func TestStartSessionCreatesPlayer(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	seedQuestions(t, st, 3)
	ctx := context.Background()

	age := 9
	state, err := engine.StartSession(ctx, "Aino", StartOptions{QuestionCount: 3, Age: &age})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if state.Player.Name != "Aino" {
		t.Errorf("player = %q", state.Player.Name)
	}
	if state.Player.Age == nil || *state.Player.Age != 9 {
		t.Errorf("age = %v, want 9", state.Player.Age)
	}
	if state.QuestionIndex != 1 || state.CurrentQuestion == nil {
		t.Fatalf("first question not presented: index=%d", state.QuestionIndex)
	}
	if len(state.Options) != 4 {
		t.Fatalf("got %d options, want 4", len(state.Options))
	}

	// The same name on a second session reuses the player.
	state2, err := engine.StartSession(ctx, "Aino", StartOptions{QuestionCount: 3})
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if state2.Player.ID != state.Player.ID {
		t.Errorf("second session created a new player")
	}
}

func TestStartSessionDefaultCount(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	seedQuestions(t, st, 1)

	state, err := engine.StartSession(context.Background(), "Aino", StartOptions{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if state.TotalQuestions != DefaultQuestionCount {
		t.Fatalf("total = %d, want %d", state.TotalQuestions, DefaultQuestionCount)
	}
}

func TestStartSessionNoQuestionsIsRecoverable(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	ctx := context.Background()

	state, err := engine.StartSession(ctx, "Aino", StartOptions{QuestionCount: 2, Category: "history"})
	var noQ *NoQuestionAvailableError
	if !errors.As(err, &noQ) {
		t.Fatalf("got %v, want NoQuestionAvailableError", err)
	}
	if state == nil {
		t.Fatal("state must survive a failed first advance")
	}
	if engine.State(state.SessionID) == nil {
		t.Fatal("session not registered")
	}

	// Relaxing the filter lets the session proceed.
	seedQuestions(t, st, 1)
	advanced, err := engine.AdvanceQuestion(ctx, state.SessionID, "", "")
	if err != nil {
		t.Fatalf("advance after seeding: %v", err)
	}
	if advanced.CurrentQuestion == nil {
		t.Fatal("no question after retry")
	}
}

func TestOptionsContainAnswerAndWrongs(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	seedQuestions(t, st, 1)

	state, err := engine.StartSession(context.Background(), "Aino", StartOptions{QuestionCount: 1})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	got := append([]string(nil), state.Options...)
	sort.Strings(got)
	want := []string{"Jupiter", "Mars", "Saturn", "Venus"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("options = %v, want permutation of %v", state.Options, want)
		}
	}
}

func TestSubmitAnswerCorrect(t *testing.T) {
	engine, st, clk := newTestEngine(t)
	seedQuestions(t, st, 1)
	ctx := context.Background()

	state, err := engine.StartSession(ctx, "Aino", StartOptions{QuestionCount: 1})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	clk.Advance(2 * time.Second)
	result, err := engine.SubmitAnswer(ctx, state.SessionID, "  jupiter ")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Correct {
		t.Fatal("case-insensitive match failed")
	}
	// 10 base + (10 - 2) speed
	if result.Points != 18 {
		t.Fatalf("points = %d, want 18", result.Points)
	}
	if state.Score != 18 || state.Streak != 1 {
		t.Fatalf("state score/streak = %d/%d", state.Score, state.Streak)
	}
	if state.CurrentQuestion != nil {
		t.Fatal("question not cleared after submit")
	}

	answers, err := st.Answers().BySession(ctx, state.SessionID)
	if err != nil {
		t.Fatalf("answers: %v", err)
	}
	if len(answers) != 1 {
		t.Fatalf("got %d answer records, want 1", len(answers))
	}
	if !answers[0].Correct || answers[0].LatencyMs != 2000 {
		t.Fatalf("record = %+v", answers[0])
	}

	// A second submit with no pending question is a no-op.
	result, err = engine.SubmitAnswer(ctx, state.SessionID, "Jupiter")
	if err != nil {
		t.Fatalf("double submit: %v", err)
	}
	if result != nil {
		t.Fatalf("double submit returned %+v, want nil", result)
	}
}

func TestSubmitAnswerWrongResetsStreak(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	seedQuestions(t, st, 3)
	ctx := context.Background()

	state, err := engine.StartSession(ctx, "Aino", StartOptions{QuestionCount: 3})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := engine.SubmitAnswer(ctx, state.SessionID, "Jupiter"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if state.Streak != 1 {
		t.Fatalf("streak = %d, want 1", state.Streak)
	}

	if _, err := engine.AdvanceQuestion(ctx, state.SessionID, "", ""); err != nil {
		t.Fatalf("advance: %v", err)
	}
	result, err := engine.SubmitAnswer(ctx, state.SessionID, "Pluto")
	if err != nil {
		t.Fatalf("submit wrong: %v", err)
	}
	if result.Correct || result.Points != 0 {
		t.Fatalf("wrong answer scored: %+v", result)
	}
	if result.CorrectAnswer != "Jupiter" {
		t.Fatalf("correct answer = %q", result.CorrectAnswer)
	}
	if state.Streak != 0 {
		t.Fatalf("streak = %d, want 0 after wrong answer", state.Streak)
	}

	all, _ := st.Questions().All(ctx)
	counted := 0
	for _, q := range all {
		counted += q.CorrectCount + q.WrongCount
	}
	if counted != 2 {
		t.Errorf("outcome counters total %d, want 2", counted)
	}
}

func TestSubmitAnswerUnknownSession(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	result, err := engine.SubmitAnswer(context.Background(), 999, "x")
	if err != nil || result != nil {
		t.Fatalf("got (%+v, %v), want (nil, nil)", result, err)
	}
}

func TestEndSessionPersistsAndPublishes(t *testing.T) {
	engine, st, clk := newTestEngine(t)
	seedQuestions(t, st, 2)
	ctx := context.Background()

	var events []SessionEnded
	engine.Events().Subscribe(func(ev SessionEnded) { events = append(events, ev) })

	state, err := engine.StartSession(ctx, "Aino", StartOptions{QuestionCount: 2})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := engine.SubmitAnswer(ctx, state.SessionID, "Jupiter"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	clk.Advance(time.Minute)

	final, err := engine.EndSession(ctx, state.SessionID)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if !final.Finished || final.EndedAt == nil {
		t.Fatal("state not marked terminal")
	}
	if engine.State(state.SessionID) != nil {
		t.Fatal("session still active after end")
	}

	s, err := st.Sessions().ByID(ctx, state.SessionID)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if s.EndedAt == nil || s.Score != final.Score || s.QuestionCount != 1 {
		t.Fatalf("persisted session = %+v", s)
	}

	p, err := st.Players().ByID(ctx, state.Player.ID)
	if err != nil {
		t.Fatalf("player: %v", err)
	}
	if p.TotalScore != final.Score {
		t.Fatalf("player credited %d, want %d", p.TotalScore, final.Score)
	}
	if p.LastPlayed == nil {
		t.Error("last_played not stamped")
	}

	records, err := st.Statistics().ByPlayer(ctx, p.ID)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if len(records) != 1 || records[0].Category != "space" {
		t.Fatalf("rollup = %+v", records)
	}

	if len(events) != 1 || events[0].TotalScore != final.Score {
		t.Fatalf("events = %+v", events)
	}

	// Ending again is a no-op: no second credit, no second event.
	again, err := engine.EndSession(ctx, state.SessionID)
	if err != nil || again != nil {
		t.Fatalf("second end = (%+v, %v), want (nil, nil)", again, err)
	}
	p, _ = st.Players().ByID(ctx, state.Player.ID)
	if p.TotalScore != final.Score {
		t.Fatalf("score double-credited: %d", p.TotalScore)
	}
	if len(events) != 1 {
		t.Fatalf("event published twice")
	}
}

func TestAdvancePastLastQuestionEndsSession(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	seedQuestions(t, st, 1)
	ctx := context.Background()

	state, err := engine.StartSession(ctx, "Aino", StartOptions{QuestionCount: 1})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := engine.SubmitAnswer(ctx, state.SessionID, "Jupiter"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	final, err := engine.AdvanceQuestion(ctx, state.SessionID, "", "")
	if err != nil {
		t.Fatalf("terminal advance: %v", err)
	}
	if !final.Finished {
		t.Fatal("advance past the last question must end the session")
	}

	if _, err := engine.AdvanceQuestion(ctx, state.SessionID, "", ""); err == nil {
		t.Fatal("advance on ended session must fail")
	} else {
		var unknown *UnknownSessionError
		if !errors.As(err, &unknown) {
			t.Fatalf("got %v, want UnknownSessionError", err)
		}
	}
}

func TestFullGameStreakBonus(t *testing.T) {
	engine, st, clk := newTestEngine(t)
	seedQuestions(t, st, 3)
	ctx := context.Background()

	state, err := engine.StartSession(ctx, "Aino", StartOptions{QuestionCount: 3})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	total := 0
	for i := 0; i < 3; i++ {
		clk.Advance(15 * time.Second) // no speed bonus
		result, err := engine.SubmitAnswer(ctx, state.SessionID, "Jupiter")
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		total += result.Points
		if i < 2 {
			if _, err := engine.AdvanceQuestion(ctx, state.SessionID, "", ""); err != nil {
				t.Fatalf("advance %d: %v", i, err)
			}
		}
	}

	// 10 + 10 + (10 + 50 streak) = 80
	if total != 80 {
		t.Fatalf("total = %d, want 80", total)
	}
	if state.Streak != 0 {
		t.Fatalf("streak = %d, want 0 after payout", state.Streak)
	}
}
