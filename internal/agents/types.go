package agents

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry in a player's conversation. Assistant messages may
// carry tool calls; tool messages carry the result for one call.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	Name       string
}

// ToolCall is a function invocation requested by the model. Args is the raw
// JSON argument string exactly as the model produced it.
type ToolCall struct {
	ID   string
	Name string
	Args string
}

// JSONSchema is a JSON Schema object in Function Calling format.
type JSONSchema map[string]any

// ToolDefinition describes a tool to the model.
type ToolDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  JSONSchema `json:"parameters"`
}

// Tool is the contract every tool implements: raw JSON in, string out.
// Errors are reserved for infrastructure failures; domain-level rejections
// (an illegal move, say) come back in the result string so the model can
// read them and retry.
type Tool interface {
	Definition() ToolDefinition
	Execute(ctx context.Context, argsJSON string) (string, error)
}

// Provider abstracts the chat model behind one call. A Provider is bound to
// a single model; each player gets its own.
type Provider interface {
	Generate(ctx context.Context, messages []Message, defs []ToolDefinition) (Message, error)
}
