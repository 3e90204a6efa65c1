package session

import (
	"time"
)

type Status string

const (
	StatusIdle     Status = "idle"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
	StatusFailed   Status = "failed"
)

// MoveRecord is one applied ply with everything the UI shows for it.
type MoveRecord struct {
	Ply         int    `json:"ply"`
	Color       string `json:"color"`
	UCI         string `json:"uci"`
	SAN         string `json:"san"`
	FEN         string `json:"fen"`
	Description string `json:"description"`
}

// Session is a single match between the two agents. Moves grows one record
// per applied ply; Summary is filled when the match ends.
type Session struct {
	ID        string       `json:"id"`
	Status    Status       `json:"status"`
	Moves     []MoveRecord `json:"moves"`
	Outcome   string       `json:"outcome"`
	Summary   string       `json:"summary,omitempty"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Clone returns a deep copy so callers can read without holding locks.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Moves = make([]MoveRecord, len(s.Moves))
	copy(out.Moves, s.Moves)
	return &out
}
