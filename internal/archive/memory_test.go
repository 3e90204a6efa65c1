package archive

import (
	"context"
	"testing"
	"time"
)

func sampleRecord(session string, endedAt time.Time) *Record {
	return &Record{
		SessionUUID: session,
		WhiteModel:  "gpt-4o-mini",
		BlackModel:  "gpt-4o-mini",
		Outcome:     "checkmate",
		MovesUCI:    []string{"e2e4", "e7e5"},
		MovesSAN:    []string{"e4", "e5"},
		PGN:         "1. e4 e5 *",
		StartedAt:   endedAt.Add(-time.Minute),
		EndedAt:     endedAt,
		PlyCount:    2,
	}
}

func TestInsertAndGet(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	id, err := repo.Insert(ctx, sampleRecord("s1", time.Now()))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero id")
	}

	rec, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec == nil || rec.SessionUUID != "s1" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	bySession, err := repo.GetBySession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetBySession: %v", err)
	}
	if bySession == nil || bySession.ID != id {
		t.Fatalf("unexpected record: %+v", bySession)
	}
}

func TestInsertDuplicateSession(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if _, err := repo.Insert(ctx, sampleRecord("s1", time.Now())); err != nil {
		t.Fatalf("first Insert: %v", err)
	}
	if _, err := repo.Insert(ctx, sampleRecord("s1", time.Now())); err != ErrDuplicateGame {
		t.Fatalf("err = %v, want ErrDuplicateGame", err)
	}
}

func TestGetUnknown(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	rec, err := repo.Get(ctx, 99)
	if err != nil || rec != nil {
		t.Fatalf("Get unknown: rec=%+v err=%v", rec, err)
	}
	rec, err = repo.GetBySession(ctx, "missing")
	if err != nil || rec != nil {
		t.Fatalf("GetBySession unknown: rec=%+v err=%v", rec, err)
	}
}

func TestRecentOrdersByEndTime(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Now()

	for i, s := range []string{"a", "b", "c"} {
		rec := sampleRecord(s, base.Add(time.Duration(i)*time.Minute))
		if _, err := repo.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert %s: %v", s, err)
		}
	}

	recent, err := repo.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("len = %d, want 2", len(recent))
	}
	if recent[0].SessionUUID != "c" || recent[1].SessionUUID != "b" {
		t.Fatalf("wrong order: %s, %s", recent[0].SessionUUID, recent[1].SessionUUID)
	}
}
