package llm

import (
	"encoding/json"
	"strings"

	"github.com/trussdev/agentcore/agentcoreerr"
	"github.com/trussdev/agentcore/agentmodel"
)

// accumulator assembles a single assistant Message from a chunk stream, per
// spec.md §4.D step 3. Grounded on features/model/anthropic/stream.go's
// toolBuffer (accumulate fragments, finalize once at stream end) adapted to
// this module's flat Chunk shape and first-seen-order tool-call buffering.
type accumulator struct {
	text strings.Builder

	order   []string // tool call ids in first-seen order
	buffers map[string]*toolBuffer
}

type toolBuffer struct {
	name      string
	fragments []string
}

func newAccumulator() *accumulator {
	return &accumulator{buffers: make(map[string]*toolBuffer)}
}

// apply folds one chunk into the accumulator. Malformed or empty chunks are
// skipped rather than aborting accumulation (spec.md §4.D, "chunk-shape
// defensiveness").
func (a *accumulator) apply(chunk Chunk) {
	switch chunk.Type {
	case ChunkTypeText:
		if chunk.Text != "" {
			a.text.WriteString(chunk.Text)
		}
	case ChunkTypeToolCallStart:
		if chunk.ToolCallID == "" {
			return
		}
		tb, ok := a.buffers[chunk.ToolCallID]
		if !ok {
			tb = &toolBuffer{}
			a.buffers[chunk.ToolCallID] = tb
			a.order = append(a.order, chunk.ToolCallID)
		}
		if chunk.ToolCallName != "" {
			tb.name = chunk.ToolCallName
		}
	case ChunkTypeToolCallDelta:
		if chunk.ToolCallID == "" {
			return
		}
		tb, ok := a.buffers[chunk.ToolCallID]
		if !ok {
			tb = &toolBuffer{}
			a.buffers[chunk.ToolCallID] = tb
			a.order = append(a.order, chunk.ToolCallID)
		}
		if chunk.ToolCallName != "" {
			tb.name = chunk.ToolCallName
		}
		if chunk.ToolCallArgsDelta != "" {
			tb.fragments = append(tb.fragments, chunk.ToolCallArgsDelta)
		}
	case ChunkTypeDone:
		// no-op: end-of-stream is signalled by the channel closing, not by
		// this chunk; providers may still emit it for symmetry.
	}
}

// message renders the accumulated state into an agentmodel.Message. A
// parse failure of a single tool call's arguments never drops the call:
// the raw concatenated string is retained under a sentinel {"raw": "..."}
// key instead (spec.md §4.D step 3).
func (a *accumulator) message() (agentmodel.Message, error) {
	var content *string
	if s := a.text.String(); s != "" {
		content = agentmodel.StringContent(s)
	}

	var calls []agentmodel.ToolCall
	for _, id := range a.order {
		tb := a.buffers[id]
		joined := strings.Join(tb.fragments, "")
		args, err := parseToolArguments(joined)
		if err != nil {
			args = map[string]any{"raw": joined}
		}
		call, err := agentmodel.NewToolCall(id, tb.name, args)
		if err != nil {
			return agentmodel.Message{}, err
		}
		calls = append(calls, call)
	}

	msg, err := agentmodel.NewMessage(agentmodel.RoleAssistant, content, calls, "")
	if err != nil {
		return agentmodel.Message{}, err
	}
	return msg, nil
}

func parseToolArguments(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(trimmed), &m); err != nil {
		return nil, agentcoreerr.Wrap(agentcoreerr.KindInvalidInput, err, "parse tool arguments")
	}
	return m, nil
}
