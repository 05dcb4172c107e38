package store

import (
	"encoding/json"

	"github.com/trussdev/agentcore/agentcoreerr"
	"github.com/trussdev/agentcore/agentmodel"
)

// EncodeToolCalls renders a Message's tool calls to the raw JSON form
// persisted in RunStep.ToolCalls. Shared by every adapter (storemem,
// sqlstore) so the wire representation stays identical regardless of
// backend.
func EncodeToolCalls(calls []agentmodel.ToolCall) ([]byte, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(calls)
	if err != nil {
		return nil, agentcoreerr.Wrap(agentcoreerr.KindInvalidInput, err, "encode tool calls")
	}
	return b, nil
}

// DecodeToolCalls reverses EncodeToolCalls. A nil/empty input decodes to nil
// with no error.
func DecodeToolCalls(raw []byte) ([]agentmodel.ToolCall, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var calls []agentmodel.ToolCall
	if err := json.Unmarshal(raw, &calls); err != nil {
		return nil, agentcoreerr.Wrap(agentcoreerr.KindInvalidInput, err, "decode tool calls")
	}
	return calls, nil
}
