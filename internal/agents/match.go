package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/parkgb/agentchess/internal/prompts"
	"github.com/parkgb/agentchess/internal/session"
)

var ErrNoMove = errors.New("player made no move")

type MatchConfig struct {
	// MaxTurns caps the game length in plies.
	MaxTurns int
	// MaxToolRounds caps how many model round-trips one turn may take
	// before the player is considered stuck.
	MaxToolRounds int
}

// Match plays one session to completion: two model-backed players take
// turns, each driven through the shared board tools, until the game ends or
// the turn cap is reached. The conversation shape follows the proxy pattern:
// a player that answers without calling a tool is nudged to move, and its
// turn only ends once a move is actually applied.
type Match struct {
	sessions *session.Manager
	catalog  *prompts.Catalog
	white    Provider
	black    Provider
	cfg      MatchConfig
	logger   *zap.Logger
}

func NewMatch(sessions *session.Manager, catalog *prompts.Catalog, white, black Provider, cfg MatchConfig, logger *zap.Logger) (*Match, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("prompt catalog is required")
	}
	if white == nil || black == nil {
		return nil, fmt.Errorf("both providers are required")
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 60
	}
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Match{
		sessions: sessions,
		catalog:  catalog,
		white:    white,
		black:    black,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Run plays the match on the given session and records the end-of-game
// summary. The session keeps whatever moves were played if the run fails
// partway.
func (m *Match) Run(ctx context.Context, sessionID string) error {
	if err := m.run(ctx, sessionID); err != nil {
		if ferr := m.sessions.Fail(ctx, sessionID, err.Error()); ferr != nil {
			m.logger.Warn("mark session failed", zap.String("session", sessionID), zap.Error(ferr))
		}
		return err
	}
	return nil
}

func (m *Match) run(ctx context.Context, sessionID string) error {
	reg, err := NewBoardRegistry(m.sessions, sessionID, m.catalog)
	if err != nil {
		return fmt.Errorf("build board tools: %w", err)
	}
	defs := reg.Definitions()

	whiteSystem, err := m.catalog.Render("agent.player.system", map[string]string{"color": "white"})
	if err != nil {
		return err
	}
	blackSystem, err := m.catalog.Render("agent.player.system", map[string]string{"color": "black"})
	if err != nil {
		return err
	}
	opening, err := m.catalog.Text("match.opening")
	if err != nil {
		return err
	}
	nudge, err := m.catalog.Text("match.nudge")
	if err != nil {
		return err
	}

	whiteHist := []Message{
		{Role: RoleSystem, Content: whiteSystem},
		{Role: RoleUser, Content: opening},
	}
	blackHist := []Message{
		{Role: RoleSystem, Content: blackSystem},
	}

	if err := m.sessions.MarkPlaying(ctx, sessionID); err != nil {
		return err
	}
	m.logger.Info("match started", zap.String("session", sessionID))

	for {
		sess, err := m.sessions.Get(ctx, sessionID)
		if err != nil {
			return err
		}
		if sess.Status == session.StatusFinished {
			break
		}
		if len(sess.Moves) >= m.cfg.MaxTurns {
			m.logger.Info("turn cap reached",
				zap.String("session", sessionID),
				zap.Int("plies", len(sess.Moves)))
			break
		}

		provider, hist := m.white, &whiteHist
		if len(sess.Moves)%2 == 1 {
			provider, hist = m.black, &blackHist
		}

		desc, err := m.playTurn(ctx, sessionID, provider, hist, reg, defs, nudge)
		if err != nil {
			return err
		}

		// The opponent hears the move as the next user message.
		opponent := &blackHist
		if len(sess.Moves)%2 == 1 {
			opponent = &whiteHist
		}
		*opponent = append(*opponent, Message{Role: RoleUser, Content: desc})
	}

	summary, err := m.summarize(ctx, whiteHist)
	if err != nil {
		m.logger.Warn("summary generation failed", zap.String("session", sessionID), zap.Error(err))
		summary = ""
	}
	if err := m.sessions.Finish(ctx, sessionID, summary); err != nil {
		return err
	}
	m.logger.Info("match finished", zap.String("session", sessionID))
	return nil
}

// playTurn drives one player until it applies a move. Returns the applied
// move's description.
func (m *Match) playTurn(ctx context.Context, sessionID string, provider Provider, hist *[]Message, reg *Registry, defs []ToolDefinition, nudge string) (string, error) {
	before, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	baseline := len(before.Moves)

	for round := 0; round < m.cfg.MaxToolRounds; round++ {
		resp, err := provider.Generate(ctx, *hist, defs)
		if err != nil {
			return "", err
		}
		*hist = append(*hist, resp)

		if len(resp.ToolCalls) == 0 {
			*hist = append(*hist, Message{Role: RoleUser, Content: nudge})
			continue
		}

		for _, tc := range resp.ToolCalls {
			result, err := m.executeCall(ctx, reg, tc)
			if err != nil {
				return "", err
			}
			*hist = append(*hist, Message{
				Role:       RoleTool,
				ToolCallID: tc.ID,
				Name:       tc.Name,
				Content:    result,
			})
		}

		after, err := m.sessions.Get(ctx, sessionID)
		if err != nil {
			return "", err
		}
		if len(after.Moves) > baseline {
			return after.Moves[len(after.Moves)-1].Description, nil
		}
	}
	return "", ErrNoMove
}

func (m *Match) executeCall(ctx context.Context, reg *Registry, tc ToolCall) (string, error) {
	tool, err := reg.Get(tc.Name)
	if err != nil {
		// Unknown tool name is the model's mistake; report it back instead
		// of aborting the match.
		return err.Error(), nil
	}
	result, err := tool.Execute(ctx, tc.Args)
	if err != nil {
		return "", fmt.Errorf("execute %s: %w", tc.Name, err)
	}
	return result, nil
}

// summarize asks the white player's model to reflect on the finished game.
func (m *Match) summarize(ctx context.Context, hist []Message) (string, error) {
	request, err := m.catalog.Text("match.summary_request")
	if err != nil {
		return "", err
	}
	messages := make([]Message, 0, len(hist)+1)
	messages = append(messages, hist...)
	messages = append(messages, Message{Role: RoleUser, Content: request})

	resp, err := m.white.Generate(ctx, messages, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}
