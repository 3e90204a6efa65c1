package session

import (
	"context"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/parkgb/agentchess/internal/game"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	m, err := NewManager(NewRedisStore(rdb, time.Hour), nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestCreateAndGet(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	sess, err := m.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("expected non-empty session id")
	}
	if sess.Status != StatusIdle {
		t.Fatalf("status = %s, want idle", sess.Status)
	}

	got, err := m.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != sess.ID {
		t.Fatalf("id mismatch: %s vs %s", got.ID, sess.ID)
	}
}

func TestGetUnknownSession(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.Get(context.Background(), "nope"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestApplyRecordsMove(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	sess, err := m.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	res, after, err := m.Apply(ctx, sess.ID, "e2e4")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !res.Applied() {
		t.Fatalf("move not applied: %s %s", res.Status, res.Text)
	}
	if len(after.Moves) != 1 {
		t.Fatalf("move count = %d, want 1", len(after.Moves))
	}
	rec := after.Moves[0]
	if rec.Ply != 1 || rec.Color != "white" || rec.UCI != "e2e4" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if !strings.Contains(rec.Description, "from e2 to e4") {
		t.Fatalf("description = %q", rec.Description)
	}
	if after.Status != StatusPlaying {
		t.Fatalf("status = %s, want playing", after.Status)
	}
}

func TestApplyRejectedMoveLeavesSessionUnchanged(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	sess, err := m.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	res, after, err := m.Apply(ctx, sess.ID, "e2e5")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Applied() {
		t.Fatal("illegal move applied")
	}
	if len(after.Moves) != 0 {
		t.Fatalf("move count = %d, want 0", len(after.Moves))
	}
	if after.Status != StatusIdle {
		t.Fatalf("status = %s, want idle", after.Status)
	}
}

func TestCheckmateFinishesSession(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	sess, err := m.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	moves := []string{"e2e4", "e7e5", "d1h5", "b8c6", "f1c4", "g8f6", "h5f7"}
	var last *Session
	for _, mv := range moves {
		res, after, err := m.Apply(ctx, sess.ID, mv)
		if err != nil {
			t.Fatalf("Apply %s: %v", mv, err)
		}
		if !res.Applied() {
			t.Fatalf("move %s rejected: %s", mv, res.Text)
		}
		last = after
	}

	if last.Status != StatusFinished {
		t.Fatalf("status = %s, want finished", last.Status)
	}
	if last.Outcome != string(game.OutcomeCheckmate) {
		t.Fatalf("outcome = %s, want checkmate", last.Outcome)
	}
}

func TestReplayAfterEviction(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	sess, err := m.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, mv := range []string{"e2e4", "c7c5", "g1f3"} {
		if res, _, err := m.Apply(ctx, sess.ID, mv); err != nil || !res.Applied() {
			t.Fatalf("Apply %s: err=%v res=%+v", mv, err, res)
		}
	}

	// Drop the live entry to force a replay from the store.
	m.mu.Lock()
	delete(m.live, sess.ID)
	m.mu.Unlock()

	listing, err := m.LegalMoves(ctx, sess.ID)
	if err != nil {
		t.Fatalf("LegalMoves after eviction: %v", err)
	}
	if !strings.HasPrefix(listing, "Available moves are: ") {
		t.Fatalf("listing = %q", listing)
	}
	// d7d6 is a normal Sicilian reply; the replayed board must accept it.
	res, after, err := m.Apply(ctx, sess.ID, "d7d6")
	if err != nil || !res.Applied() {
		t.Fatalf("Apply after eviction: err=%v res=%+v", err, res)
	}
	if len(after.Moves) != 4 {
		t.Fatalf("move count = %d, want 4", len(after.Moves))
	}
}

func TestReset(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	sess, err := m.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, _, err := m.Apply(ctx, sess.ID, "e2e4"); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := m.Finish(ctx, sess.ID, "summary text"); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	after, err := m.Reset(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if after.Status != StatusIdle || len(after.Moves) != 0 || after.Summary != "" {
		t.Fatalf("session not cleared: %+v", after)
	}

	// Board is back at the start: e2e4 is legal again.
	res, _, err := m.Apply(ctx, sess.ID, "e2e4")
	if err != nil || !res.Applied() {
		t.Fatalf("Apply after reset: err=%v res=%+v", err, res)
	}
}

func TestFinishAndFail(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	sess, err := m.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := m.Finish(ctx, sess.ID, "  White won by checkmate.  "); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	got, err := m.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusFinished || got.Summary != "White won by checkmate." {
		t.Fatalf("unexpected session: %+v", got)
	}

	sess2, err := m.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := m.Fail(ctx, sess2.ID, "provider unavailable"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	got2, err := m.Get(ctx, sess2.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got2.Status != StatusFailed || got2.Error != "provider unavailable" {
		t.Fatalf("unexpected session: %+v", got2)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	m, err := NewManager(NewMemoryStore(), nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	ctx := context.Background()

	sess, err := m.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res, _, err := m.Apply(ctx, sess.ID, "d2d4"); err != nil || !res.Applied() {
		t.Fatalf("Apply: err=%v res=%+v", err, res)
	}
	got, err := m.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Moves) != 1 || got.Moves[0].UCI != "d2d4" {
		t.Fatalf("unexpected moves: %+v", got.Moves)
	}
}
