package game

import (
	"strings"
	"testing"
)

func TestLegalMovesOpening(t *testing.T) {
	c := NewController()
	list := c.LegalMoveList()
	if len(list) != 20 {
		t.Fatalf("expected 20 legal opening moves, got %d: %v", len(list), list)
	}
	text := c.LegalMoves()
	if !strings.HasPrefix(text, "Available moves are: ") {
		t.Fatalf("unexpected legal move text: %q", text)
	}
	for _, mv := range []string{"e2e4", "d2d4", "g1f3", "b1c3", "a2a3", "h2h4"} {
		if !strings.Contains(text, mv) {
			t.Fatalf("expected %s in opening moves, got %q", mv, text)
		}
	}
}

func TestApplyMoveMalformed(t *testing.T) {
	c := NewController()
	before := c.FEN()
	for _, input := range []string{"xyz", "e2", "", "e2e4e6x"} {
		res := c.ApplyMove(input)
		if res.Status != MoveMalformed {
			t.Fatalf("input %q: expected malformed status, got %s (%q)", input, res.Status, res.Text)
		}
		if !strings.Contains(res.Text, "Invalid move format") || !strings.Contains(res.Text, "e2e4") {
			t.Fatalf("input %q: unexpected error text %q", input, res.Text)
		}
		if c.FEN() != before {
			t.Fatalf("input %q: board changed on malformed input", input)
		}
	}
}

func TestApplyMoveIllegal(t *testing.T) {
	c := NewController()
	before := c.FEN()
	res := c.ApplyMove("e2e5")
	if res.Status != MoveIllegal {
		t.Fatalf("expected illegal status, got %s (%q)", res.Status, res.Text)
	}
	if !strings.Contains(res.Text, "e2e5") || !strings.Contains(res.Text, "available_moves") {
		t.Fatalf("unexpected illegal-move text: %q", res.Text)
	}
	if c.FEN() != before {
		t.Fatal("board changed on illegal move")
	}
}

func TestApplyMoveDescription(t *testing.T) {
	c := NewController()
	res := c.ApplyMove("e2e4")
	if res.Status != MoveOK {
		t.Fatalf("expected ok, got %s (%q)", res.Status, res.Text)
	}
	if res.Text != "Moved Pawn (♙) from e2 to e4." {
		t.Fatalf("unexpected description: %q", res.Text)
	}
	if res.UCI != "e2e4" || res.SAN != "e4" {
		t.Fatalf("unexpected notations: uci=%q san=%q", res.UCI, res.SAN)
	}
	if res.Outcome != OutcomeOngoing {
		t.Fatalf("unexpected outcome: %s", res.Outcome)
	}
}

func TestCheckSuffix(t *testing.T) {
	c := NewController()
	for _, mv := range []string{"e2e4", "f7f5"} {
		if res := c.ApplyMove(mv); res.Status != MoveOK {
			t.Fatalf("move %s failed: %q", mv, res.Text)
		}
	}
	res := c.ApplyMove("d1h5")
	if res.Status != MoveOK {
		t.Fatalf("d1h5 failed: %q", res.Text)
	}
	if !strings.HasSuffix(res.Text, "Check!") {
		t.Fatalf("expected check suffix, got %q", res.Text)
	}
	if res.Outcome != OutcomeCheck {
		t.Fatalf("expected check outcome, got %s", res.Outcome)
	}
}

func TestScholarsMate(t *testing.T) {
	c := NewController()
	line := []string{"e2e4", "e7e5", "d1h5", "b8c6", "f1c4", "g8f6"}
	for _, mv := range line {
		if res := c.ApplyMove(mv); res.Status != MoveOK {
			t.Fatalf("move %s failed: %s (%q)", mv, res.Status, res.Text)
		}
	}
	res := c.ApplyMove("h5f7")
	if res.Status != MoveOK {
		t.Fatalf("mating move failed: %s (%q)", res.Status, res.Text)
	}
	if !strings.HasSuffix(res.Text, "Checkmate! White wins!") {
		t.Fatalf("expected checkmate suffix, got %q", res.Text)
	}
	if res.Outcome != OutcomeCheckmate {
		t.Fatalf("expected checkmate outcome, got %s", res.Outcome)
	}
	if moves := c.LegalMoveList(); len(moves) != 0 {
		t.Fatalf("expected no legal moves after mate, got %v", moves)
	}

	// Post-terminal apply is rejected by the controller itself.
	after := c.ApplyMove("e8e7")
	if after.Status != MoveRejected {
		t.Fatalf("expected rejected status after mate, got %s", after.Status)
	}
	if !strings.Contains(after.Text, "already over") {
		t.Fatalf("unexpected post-terminal text: %q", after.Text)
	}
}

func TestReset(t *testing.T) {
	fresh := NewController()
	c := NewController()
	for _, mv := range []string{"e2e4", "e7e5", "g1f3"} {
		if res := c.ApplyMove(mv); res.Status != MoveOK {
			t.Fatalf("move %s failed: %q", mv, res.Text)
		}
	}
	c.Reset()
	if c.FEN() != fresh.FEN() {
		t.Fatalf("reset FEN mismatch: %q vs %q", c.FEN(), fresh.FEN())
	}
	if c.LegalMoves() != fresh.LegalMoves() {
		t.Fatal("reset legal-move output differs from a fresh board")
	}
	if c.MoveCount() != 0 {
		t.Fatalf("expected 0 moves after reset, got %d", c.MoveCount())
	}
	if c.Outcome() != OutcomeOngoing {
		t.Fatalf("expected ongoing outcome after reset, got %s", c.Outcome())
	}
}

func TestAcceptedMovesWereListed(t *testing.T) {
	c := NewController()
	line := []string{"e2e4", "c7c5", "g1f3", "d7d6", "d2d4", "c5d4", "f3d4"}
	for _, mv := range line {
		listed := false
		for _, legal := range c.LegalMoveList() {
			if legal == mv {
				listed = true
				break
			}
		}
		res := c.ApplyMove(mv)
		if res.Status != MoveOK {
			t.Fatalf("move %s failed: %q", mv, res.Text)
		}
		if !listed {
			t.Fatalf("accepted move %s was not in the preceding legal-move listing", mv)
		}
	}
}

func TestSameMoveTwice(t *testing.T) {
	c := NewController()
	if res := c.ApplyMove("e2e4"); res.Status != MoveOK {
		t.Fatalf("first apply failed: %q", res.Text)
	}
	res := c.ApplyMove("e2e4")
	if res.Status != MoveIllegal {
		t.Fatalf("expected second identical move to be illegal, got %s", res.Status)
	}
}
