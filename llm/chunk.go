// Package llm implements the LLMStreamPublish activity (component D):
// invoking the model provider in streaming mode, publishing chunks to the
// session's pub/sub channel as they arrive, and accumulating the final
// assistant Message. Grounded on goadesign-goa-ai's features/model/anthropic
// (stream.go's event-to-chunk accumulation) and runtime/agent/hooks'
// stream_subscriber.go (bridging provider events onto an external
// publish channel), simplified to this module's flat agentmodel.Message
// shape instead of the teacher's Parts-based model.
package llm

// ChunkType identifies what a Chunk carries.
type ChunkType string

const (
	// ChunkTypeText carries an incremental fragment of assistant text.
	ChunkTypeText ChunkType = "text"
	// ChunkTypeToolCallStart announces a new tool call the model is about
	// to stream arguments for.
	ChunkTypeToolCallStart ChunkType = "tool_call_start"
	// ChunkTypeToolCallDelta carries an incremental fragment of a tool
	// call's JSON arguments.
	ChunkTypeToolCallDelta ChunkType = "tool_call_delta"
	// ChunkTypeDone marks the end of the stream.
	ChunkTypeDone ChunkType = "done"
)

// Chunk is one unit published to stream:{session_id} and consumed to
// incrementally accumulate the final assistant Message.
type Chunk struct {
	Type ChunkType `json:"type"`

	// Text is set when Type == ChunkTypeText.
	Text string `json:"text,omitempty"`

	// ToolCallID, ToolCallName identify the tool call a
	// ChunkTypeToolCallStart/ChunkTypeToolCallDelta belongs to. ID is
	// stable across every delta for the same call; Name is always set on
	// ChunkTypeToolCallStart, and the anthropic provider also repeats it on
	// each ChunkTypeToolCallDelta (the openai provider does not).
	ToolCallID   string `json:"tool_call_id,omitempty"`
	ToolCallName string `json:"tool_call_name,omitempty"`
	// ToolCallArgsDelta is an incremental fragment of the tool call's JSON
	// arguments, set when Type == ChunkTypeToolCallDelta.
	ToolCallArgsDelta string `json:"tool_call_args_delta,omitempty"`
}
