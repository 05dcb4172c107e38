package llm

import (
	"context"

	"github.com/trussdev/agentcore/agentmodel"
)

// ToolSpec describes one tool the model is allowed to call this turn,
// mirroring the Name/Description/Schema surface of tools.Tool without this
// package importing the tools package (providers only need the wire shape).
type ToolSpec struct {
	Name        string
	Description string
	Schema      []byte // JSON Schema, as returned by tools.Tool.Schema
}

// Stream is the channel of chunks a Provider emits for one completion
// request. A Provider implementation closes Chunks when the stream ends and
// sets Err (readable only after Chunks is closed) if it ended in error.
type Stream struct {
	Chunks <-chan Chunk
	// Err returns the terminal error, if any. Valid only once Chunks has
	// been drained (closed).
	Err func() error
	// Close releases the underlying transport. Safe to call multiple
	// times; always safe to call even if the stream was fully drained.
	Close func() error
}

// Provider issues one streaming completion request against a model backend.
type Provider interface {
	StreamCompletion(ctx context.Context, memory agentmodel.AgentMemory, cfg agentmodel.LLMConfig, tools []ToolSpec) (Stream, error)
}
