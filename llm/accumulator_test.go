package llm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccumulatorTextOnly(t *testing.T) {
	a := newAccumulator()
	a.apply(Chunk{Type: ChunkTypeText, Text: "Hel"})
	a.apply(Chunk{Type: ChunkTypeText, Text: "lo"})
	msg, err := a.message()
	require.NoError(t, err)
	require.Equal(t, "Hello", *msg.Content)
	require.Empty(t, msg.ToolCalls)
}

func TestAccumulatorToolCallFirstSeenOrder(t *testing.T) {
	a := newAccumulator()
	a.apply(Chunk{Type: ChunkTypeToolCallStart, ToolCallID: "b", ToolCallName: "second_tool"})
	a.apply(Chunk{Type: ChunkTypeToolCallStart, ToolCallID: "a", ToolCallName: "first_tool"})
	a.apply(Chunk{Type: ChunkTypeToolCallDelta, ToolCallID: "a", ToolCallArgsDelta: `{"x":`})
	a.apply(Chunk{Type: ChunkTypeToolCallDelta, ToolCallID: "a", ToolCallArgsDelta: `1}`})
	a.apply(Chunk{Type: ChunkTypeToolCallDelta, ToolCallID: "b", ToolCallArgsDelta: `{}`})

	msg, err := a.message()
	require.NoError(t, err)
	require.Len(t, msg.ToolCalls, 2)
	require.Equal(t, "b", msg.ToolCalls[0].ID, "first-seen order is call start order, not alphabetical")
	require.Equal(t, "a", msg.ToolCalls[1].ID)
	require.Equal(t, float64(1), msg.ToolCalls[1].Arguments["x"])
}

func TestAccumulatorMalformedArgumentsRetainedUnderRawSentinel(t *testing.T) {
	a := newAccumulator()
	a.apply(Chunk{Type: ChunkTypeToolCallStart, ToolCallID: "c", ToolCallName: "broken"})
	a.apply(Chunk{Type: ChunkTypeToolCallDelta, ToolCallID: "c", ToolCallArgsDelta: `{not json`})

	msg, err := a.message()
	require.NoError(t, err)
	require.Len(t, msg.ToolCalls, 1)
	require.Equal(t, `{not json`, msg.ToolCalls[0].Arguments["raw"])
}

func TestAccumulatorEmptyIsRejected(t *testing.T) {
	a := newAccumulator()
	_, err := a.message()
	require.Error(t, err, "an assistant message needs content or tool_calls")
}
