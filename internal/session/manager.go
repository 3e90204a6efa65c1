package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkgb/agentchess/internal/game"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrFinished = errors.New("session already finished")
)

// Manager owns the live controllers and writes every change through to the
// store. Sessions evicted from memory are rebuilt from their stored move
// list on the next access.
type Manager struct {
	mu     sync.Mutex
	live   map[string]*liveSession
	store  Store
	logger *zap.Logger
}

type liveSession struct {
	mu   sync.Mutex
	sess *Session
	ctl  *game.Controller
}

func NewManager(store Store, logger *zap.Logger) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		live:   make(map[string]*liveSession),
		store:  store,
		logger: logger,
	}, nil
}

// Create starts a new idle session with a fresh board.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		Status:    StatusIdle,
		Moves:     []MoveRecord{},
		Outcome:   string(game.OutcomeOngoing),
		CreatedAt: now,
		UpdatedAt: now,
	}
	ls := &liveSession{sess: sess, ctl: game.NewController()}

	if err := m.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	m.mu.Lock()
	m.live[sess.ID] = ls
	m.mu.Unlock()

	m.logger.Info("session created", zap.String("session", sess.ID))
	return sess.Clone(), nil
}

// Get returns a snapshot of the session.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	ls, err := m.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer ls.mu.Unlock()
	return ls.sess.Clone(), nil
}

// LegalMoves lists the legal moves for the side to move, in the sentence
// form the agents read.
func (m *Manager) LegalMoves(ctx context.Context, id string) (string, error) {
	ls, err := m.acquire(ctx, id)
	if err != nil {
		return "", err
	}
	defer ls.mu.Unlock()
	return ls.ctl.LegalMoves(), nil
}

// LegalMoveList returns the legal moves as a plain slice.
func (m *Manager) LegalMoveList(ctx context.Context, id string) ([]string, error) {
	ls, err := m.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer ls.mu.Unlock()
	return ls.ctl.LegalMoveList(), nil
}

// PGN renders the game so far in PGN form, for archiving.
func (m *Manager) PGN(ctx context.Context, id string) (string, error) {
	ls, err := m.acquire(ctx, id)
	if err != nil {
		return "", err
	}
	defer ls.mu.Unlock()
	return ls.ctl.PGN(), nil
}

// Apply proposes a move. Malformed and illegal input come back in the
// MoveResult, not as an error; errors are reserved for missing sessions and
// storage failures.
func (m *Manager) Apply(ctx context.Context, id, input string) (game.MoveResult, *Session, error) {
	ls, err := m.acquire(ctx, id)
	if err != nil {
		return game.MoveResult{}, nil, err
	}
	defer ls.mu.Unlock()

	res := ls.ctl.ApplyMove(input)
	if !res.Applied() {
		return res, ls.sess.Clone(), nil
	}

	sess := ls.sess
	mover := "black"
	if len(sess.Moves)%2 == 0 {
		mover = "white"
	}
	sess.Moves = append(sess.Moves, MoveRecord{
		Ply:         len(sess.Moves) + 1,
		Color:       mover,
		UCI:         res.UCI,
		SAN:         res.SAN,
		FEN:         res.FEN,
		Description: res.Text,
	})
	sess.Outcome = string(res.Outcome)
	sess.UpdatedAt = time.Now()
	if sess.Status == StatusIdle {
		sess.Status = StatusPlaying
	}
	if res.Outcome.Terminal() {
		sess.Status = StatusFinished
	}

	if err := m.store.Save(ctx, sess); err != nil {
		return res, nil, fmt.Errorf("save session: %w", err)
	}
	m.logger.Debug("move applied",
		zap.String("session", sess.ID),
		zap.String("uci", res.UCI),
		zap.String("outcome", string(res.Outcome)))
	return res, sess.Clone(), nil
}

// Reset clears the board and move history, keeping the session id. Mirrors
// the reset control in the UI.
func (m *Manager) Reset(ctx context.Context, id string) (*Session, error) {
	ls, err := m.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer ls.mu.Unlock()

	ls.ctl.Reset()
	sess := ls.sess
	sess.Status = StatusIdle
	sess.Moves = sess.Moves[:0]
	sess.Outcome = string(game.OutcomeOngoing)
	sess.Summary = ""
	sess.Error = ""
	sess.UpdatedAt = time.Now()

	if err := m.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	m.logger.Info("session reset", zap.String("session", sess.ID))
	return sess.Clone(), nil
}

// MarkPlaying flags the session as having an active match.
func (m *Manager) MarkPlaying(ctx context.Context, id string) error {
	return m.update(ctx, id, func(sess *Session) error {
		if sess.Status == StatusFinished {
			return ErrFinished
		}
		sess.Status = StatusPlaying
		return nil
	})
}

// Finish records the end-of-match summary.
func (m *Manager) Finish(ctx context.Context, id, summary string) error {
	return m.update(ctx, id, func(sess *Session) error {
		sess.Status = StatusFinished
		sess.Summary = strings.TrimSpace(summary)
		return nil
	})
}

// Fail marks the session as aborted, keeping the moves played so far.
func (m *Manager) Fail(ctx context.Context, id, reason string) error {
	return m.update(ctx, id, func(sess *Session) error {
		sess.Status = StatusFailed
		sess.Error = strings.TrimSpace(reason)
		return nil
	})
}

func (m *Manager) update(ctx context.Context, id string, fn func(*Session) error) error {
	ls, err := m.acquire(ctx, id)
	if err != nil {
		return err
	}
	defer ls.mu.Unlock()

	if err := fn(ls.sess); err != nil {
		return err
	}
	ls.sess.UpdatedAt = time.Now()
	if err := m.store.Save(ctx, ls.sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// acquire returns the live session with its mutex held. On a cache miss the
// session is loaded from the store and its board rebuilt by replaying the
// recorded moves.
func (m *Manager) acquire(ctx context.Context, id string) (*liveSession, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}

	m.mu.Lock()
	ls, ok := m.live[id]
	if !ok {
		sess, err := m.store.Load(ctx, id)
		if err != nil {
			m.mu.Unlock()
			return nil, fmt.Errorf("load session: %w", err)
		}
		if sess == nil {
			m.mu.Unlock()
			return nil, ErrNotFound
		}
		ctl, err := replay(sess)
		if err != nil {
			m.mu.Unlock()
			return nil, fmt.Errorf("replay session %s: %w", id, err)
		}
		ls = &liveSession{sess: sess, ctl: ctl}
		m.live[id] = ls
	}
	m.mu.Unlock()

	ls.mu.Lock()
	return ls, nil
}

// replay rebuilds a controller by reapplying the stored moves in order.
func replay(sess *Session) (*game.Controller, error) {
	ctl := game.NewController()
	for _, rec := range sess.Moves {
		res := ctl.ApplyMove(rec.UCI)
		if !res.Applied() {
			return nil, fmt.Errorf("stored move %s rejected: %s", rec.UCI, res.Status)
		}
	}
	return ctl, nil
}
