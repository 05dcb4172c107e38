package anthropic

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trussdev/agentcore/agentmodel"
)

func mustMsg(t *testing.T, role agentmodel.Role, content *string, calls []agentmodel.ToolCall, toolCallID string) agentmodel.Message {
	t.Helper()
	msg, err := agentmodel.NewMessage(role, content, calls, toolCallID)
	require.NoError(t, err)
	return msg
}

func TestEncodeMessagesSplitsSystemFromConversation(t *testing.T) {
	system := agentmodel.StringContent("be helpful")
	user := agentmodel.StringContent("hi")
	conversation, systemBlocks, err := encodeMessages([]agentmodel.Message{
		mustMsg(t, agentmodel.RoleSystem, system, nil, ""),
		mustMsg(t, agentmodel.RoleUser, user, nil, ""),
	})
	require.NoError(t, err)
	require.Len(t, systemBlocks, 1)
	require.Equal(t, "be helpful", systemBlocks[0].Text)
	require.Len(t, conversation, 1)
}

func TestEncodeMessagesRequiresAtLeastOneConversationTurn(t *testing.T) {
	system := agentmodel.StringContent("be helpful")
	_, _, err := encodeMessages([]agentmodel.Message{
		mustMsg(t, agentmodel.RoleSystem, system, nil, ""),
	})
	require.Error(t, err)
}

func TestEncodeMessagesToolResultBecomesUserTurn(t *testing.T) {
	user := agentmodel.StringContent("hi")
	tc, err := agentmodel.NewToolCall("tc1", "web_search", map[string]any{"query": "go"})
	require.NoError(t, err)
	toolContent := agentmodel.StringContent("result text")

	conversation, _, err := encodeMessages([]agentmodel.Message{
		mustMsg(t, agentmodel.RoleUser, user, nil, ""),
		mustMsg(t, agentmodel.RoleAssistant, nil, []agentmodel.ToolCall{tc}, ""),
		mustMsg(t, agentmodel.RoleTool, toolContent, nil, "tc1"),
	})
	require.NoError(t, err)
	require.Len(t, conversation, 3)
}

func TestBuildParamsRejectsEmptyModelName(t *testing.T) {
	c := New(nil)
	user := agentmodel.StringContent("hi")
	mem := agentmodel.AgentMemory{Messages: []agentmodel.Message{mustMsg(t, agentmodel.RoleUser, user, nil, "")}}
	_, err := c.buildParams(mem, agentmodel.LLMConfig{}, nil)
	require.Error(t, err)
}
