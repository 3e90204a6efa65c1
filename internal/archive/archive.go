// Package archive stores finished games for later review.
package archive

import (
	"context"
	"errors"
	"time"
)

var ErrDuplicateGame = errors.New("game already archived")

// Record is one finished match.
type Record struct {
	ID          int64
	SessionUUID string
	WhiteModel  string
	BlackModel  string
	Outcome     string
	MovesUCI    []string
	MovesSAN    []string
	PGN         string
	Summary     string
	StartedAt   time.Time
	EndedAt     time.Time
	PlyCount    int
}

// Repository persists finished games. Insert is idempotent per session:
// a second insert for the same session UUID returns ErrDuplicateGame.
// Get returns (nil, nil) for an unknown id.
type Repository interface {
	Insert(ctx context.Context, rec *Record) (int64, error)
	Get(ctx context.Context, id int64) (*Record, error)
	GetBySession(ctx context.Context, sessionUUID string) (*Record, error)
	Recent(ctx context.Context, limit int) ([]*Record, error)
	Close() error
}
