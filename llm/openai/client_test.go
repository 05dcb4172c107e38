package openai

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trussdev/agentcore/agentmodel"
	"github.com/trussdev/agentcore/llm"
)

func mustMsg(t *testing.T, role agentmodel.Role, content *string, calls []agentmodel.ToolCall, toolCallID string) agentmodel.Message {
	t.Helper()
	msg, err := agentmodel.NewMessage(role, content, calls, toolCallID)
	require.NoError(t, err)
	return msg
}

func TestEncodeMessagesCarriesToolCallsAndToolCallID(t *testing.T) {
	user := agentmodel.StringContent("hi")
	tc, err := agentmodel.NewToolCall("tc1", "web_search", map[string]any{"query": "go"})
	require.NoError(t, err)
	toolContent := agentmodel.StringContent("result text")

	encoded, err := encodeMessages([]agentmodel.Message{
		mustMsg(t, agentmodel.RoleUser, user, nil, ""),
		mustMsg(t, agentmodel.RoleAssistant, nil, []agentmodel.ToolCall{tc}, ""),
		mustMsg(t, agentmodel.RoleTool, toolContent, nil, "tc1"),
	})
	require.NoError(t, err)
	require.Len(t, encoded, 3)
	require.Len(t, encoded[1].ToolCalls, 1)
	require.Equal(t, "tc1", encoded[1].ToolCalls[0].ID)
	require.Equal(t, "tc1", encoded[2].ToolCallID)
}

func TestEncodeMessagesRejectsUnknownRole(t *testing.T) {
	_, err := encodeMessages([]agentmodel.Message{{Role: "bogus"}})
	require.Error(t, err)
}

func TestEncodeToolsMapsSchemaAndDescription(t *testing.T) {
	tools, err := encodeTools([]llm.ToolSpec{
		{Name: "web_search", Description: "search the web", Schema: []byte(`{"type":"object"}`)},
	})
	require.NoError(t, err)
	require.Len(t, tools, 1)
	require.Equal(t, "web_search", tools[0].Function.Name)
	require.Equal(t, "search the web", tools[0].Function.Description)
}

func TestBuildRequestRejectsEmptyModelName(t *testing.T) {
	c := New(nil, "")
	user := agentmodel.StringContent("hi")
	mem := agentmodel.AgentMemory{Messages: []agentmodel.Message{mustMsg(t, agentmodel.RoleUser, user, nil, "")}}
	_, err := c.buildRequest(mem, agentmodel.LLMConfig{}, nil)
	require.Error(t, err)
}

func TestBuildRequestFallsBackToDefaultModel(t *testing.T) {
	c := New(nil, "gpt-4o-mini")
	user := agentmodel.StringContent("hi")
	mem := agentmodel.AgentMemory{Messages: []agentmodel.Message{mustMsg(t, agentmodel.RoleUser, user, nil, "")}}
	req, err := c.buildRequest(mem, agentmodel.LLMConfig{}, nil)
	require.NoError(t, err)
	require.Equal(t, "gpt-4o-mini", req.Model)
	require.True(t, req.Stream)
}
