package store

import (
	"context"
	"testing"
	"time"
)

func TestPlayerCreateAndLookup(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	age := 9
	tierMax := TierMaster
	id, err := st.Players().Create(ctx, &Player{
		Name:      "Aino",
		Age:       &age,
		TierMax:   &tierMax,
		Color:     "red",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	p, err := st.Players().ByID(ctx, id)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if p == nil {
		t.Fatal("player not found by id")
	}
	if p.Name != "Aino" {
		t.Errorf("name = %q, want Aino", p.Name)
	}
	if p.Age == nil || *p.Age != 9 {
		t.Errorf("age = %v, want 9", p.Age)
	}
	if p.TierMin != nil {
		t.Errorf("tier_min = %v, want nil", *p.TierMin)
	}
	if p.TierMax == nil || *p.TierMax != TierMaster {
		t.Errorf("tier_max = %v, want master", p.TierMax)
	}
	if p.LastPlayed != nil {
		t.Errorf("last_played = %v, want nil before first game", p.LastPlayed)
	}

	byName, err := st.Players().ByName(ctx, "Aino")
	if err != nil {
		t.Fatalf("by name: %v", err)
	}
	if byName == nil || byName.ID != id {
		t.Fatalf("by name returned %+v, want id %d", byName, id)
	}
}

func TestPlayerLookupMissingReturnsNil(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	p, err := st.Players().ByName(ctx, "nobody")
	if err != nil {
		t.Fatalf("by name: %v", err)
	}
	if p != nil {
		t.Fatalf("got %+v, want nil", p)
	}

	p, err = st.Players().ByID(ctx, 999)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if p != nil {
		t.Fatalf("got %+v, want nil", p)
	}
}

func TestPlayerNameUnique(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if _, err := st.Players().Create(ctx, &Player{Name: "Aino", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := st.Players().Create(ctx, &Player{Name: "Aino", CreatedAt: time.Now()}); err == nil {
		t.Fatal("duplicate name accepted")
	}
}

func TestPlayerAddScore(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	id, err := st.Players().Create(ctx, &Player{Name: "Aino", CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	playedAt := time.Now()
	if err := st.Players().AddScore(ctx, id, 120, playedAt); err != nil {
		t.Fatalf("add score: %v", err)
	}
	if err := st.Players().AddScore(ctx, id, 30, playedAt.Add(time.Hour)); err != nil {
		t.Fatalf("add score again: %v", err)
	}

	p, err := st.Players().ByID(ctx, id)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if p.TotalScore != 150 {
		t.Errorf("total score = %d, want 150", p.TotalScore)
	}
	if p.LastPlayed == nil {
		t.Error("last_played not stamped")
	}
}

func TestPlayerAddScoreMissing(t *testing.T) {
	st := newTestStore(t)

	err := st.Players().AddScore(context.Background(), 999, 10, time.Now())
	if !IsNotFound(err) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
}

func TestPlayerDelete(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	id, err := st.Players().Create(ctx, &Player{Name: "Aino", CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.Players().Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.Players().Delete(ctx, id); !IsNotFound(err) {
		t.Fatalf("second delete: got %v, want NotFoundError", err)
	}
}
