package store

import (
	"context"
	"testing"
	"time"
)

func TestSessionLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	playerID, err := st.Players().Create(ctx, &Player{Name: "Aino", CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("create player: %v", err)
	}

	started := time.Now()
	sessionID, err := st.Sessions().Start(ctx, playerID, started)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	s, err := st.Sessions().ByID(ctx, sessionID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if s.EndedAt != nil {
		t.Errorf("ended_at = %v on open session", s.EndedAt)
	}
	if s.PlayerID != playerID {
		t.Errorf("player_id = %d, want %d", s.PlayerID, playerID)
	}

	ended := started.Add(2 * time.Minute)
	if err := st.Sessions().Finish(ctx, sessionID, ended, 180, 10); err != nil {
		t.Fatalf("finish: %v", err)
	}

	s, err = st.Sessions().ByID(ctx, sessionID)
	if err != nil {
		t.Fatalf("by id after finish: %v", err)
	}
	if s.EndedAt == nil {
		t.Fatal("ended_at not set")
	}
	if s.Score != 180 || s.QuestionCount != 10 {
		t.Errorf("score/count = %d/%d, want 180/10", s.Score, s.QuestionCount)
	}
}

func TestSessionFinishMissing(t *testing.T) {
	st := newTestStore(t)

	err := st.Sessions().Finish(context.Background(), 999, time.Now(), 0, 0)
	if !IsNotFound(err) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
}

func TestAnswerAppendAndBySession(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	playerID, _ := st.Players().Create(ctx, &Player{Name: "Aino", CreatedAt: time.Now()})
	sessionID, _ := st.Sessions().Start(ctx, playerID, time.Now())
	otherID, _ := st.Sessions().Start(ctx, playerID, time.Now())

	for i, correct := range []bool{true, false, true} {
		_, err := st.Answers().Append(ctx, &Answer{
			SessionID:  sessionID,
			QuestionID: int64(i + 1),
			Given:      "Jupiter",
			Correct:    correct,
			LatencyMs:  1500 * (i + 1),
			Category:   "space",
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if _, err := st.Answers().Append(ctx, &Answer{SessionID: otherID, QuestionID: 9, Given: "x", Category: "space"}); err != nil {
		t.Fatalf("append other: %v", err)
	}

	answers, err := st.Answers().BySession(ctx, sessionID)
	if err != nil {
		t.Fatalf("by session: %v", err)
	}
	if len(answers) != 3 {
		t.Fatalf("got %d answers, want 3", len(answers))
	}
	for i := 1; i < len(answers); i++ {
		if answers[i].ID <= answers[i-1].ID {
			t.Fatal("answers not in record order")
		}
	}

	all, err := st.Answers().All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("got %d answers total, want 4", len(all))
	}
}
