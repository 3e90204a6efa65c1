package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/parkgb/agentchess/internal/prompts"
	"github.com/parkgb/agentchess/internal/session"
)

// availableMovesTool lists the legal moves for the side to move. No
// arguments.
type availableMovesTool struct {
	sessions    *session.Manager
	sessionID   string
	description string
}

func (t *availableMovesTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        "available_moves",
		Description: t.description,
		Parameters: JSONSchema{
			"type":       "object",
			"properties": map[string]any{},
		},
	}
}

func (t *availableMovesTool) Execute(ctx context.Context, _ string) (string, error) {
	return t.sessions.LegalMoves(ctx, t.sessionID)
}

// makeMoveTool applies one move. Rejections come back as the result string
// so the model can correct itself.
type makeMoveTool struct {
	sessions    *session.Manager
	sessionID   string
	description string
}

func (t *makeMoveTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        "make_move",
		Description: t.description,
		Parameters: JSONSchema{
			"type": "object",
			"properties": map[string]any{
				"move": map[string]any{
					"type":        "string",
					"description": "A move in UCI format. (e.g. e2e4 or e7e5 or e7e8q)",
				},
			},
			"required": []string{"move"},
		},
	}
}

func (t *makeMoveTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	var args struct {
		Move string `json:"move"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("parse make_move arguments: %w", err)
	}
	res, _, err := t.sessions.Apply(ctx, t.sessionID, args.Move)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// NewBoardRegistry builds the tool registry both players share for one
// session.
func NewBoardRegistry(mgr *session.Manager, sessionID string, catalog *prompts.Catalog) (*Registry, error) {
	movesDesc, err := catalog.Text("tool.available_moves.description")
	if err != nil {
		return nil, err
	}
	makeDesc, err := catalog.Text("tool.make_move.description")
	if err != nil {
		return nil, err
	}

	reg := NewRegistry()
	if err := reg.Register(&availableMovesTool{sessions: mgr, sessionID: sessionID, description: movesDesc}); err != nil {
		return nil, err
	}
	if err := reg.Register(&makeMoveTool{sessions: mgr, sessionID: sessionID, description: makeDesc}); err != nil {
		return nil, err
	}
	return reg, nil
}
