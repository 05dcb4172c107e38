package storemem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trussdev/agentcore/agentcoreerr"
	"github.com/trussdev/agentcore/agentmodel"
)

func TestCreateRunRejectsUnknownSession(t *testing.T) {
	s := New()
	_, err := s.CreateRun(context.Background(), "missing")
	require.Error(t, err)
	kind, ok := agentcoreerr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, agentcoreerr.KindNotFound, kind)
}

func TestCreateRunStepPersistsBeforeReturn(t *testing.T) {
	s := New()
	ctx := context.Background()
	sess, err := s.CreateSession(ctx, "agent-1", "user-1")
	require.NoError(t, err)
	runID, err := s.CreateRun(ctx, sess.ID)
	require.NoError(t, err)

	content := agentmodel.StringContent("hello")
	msg, err := agentmodel.NewMessage(agentmodel.RoleUser, content, nil, "")
	require.NoError(t, err)
	stepID, err := s.CreateRunStep(ctx, runID, msg)
	require.NoError(t, err)
	require.NotEmpty(t, stepID)

	steps, err := s.GetStepsForSession(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	require.Equal(t, "hello", *steps[0].Content)
}

func TestGetStepsForSessionOrdersAcrossRuns(t *testing.T) {
	s := New()
	ctx := context.Background()
	sess, err := s.CreateSession(ctx, "agent-1", "user-1")
	require.NoError(t, err)

	run1, err := s.CreateRun(ctx, sess.ID)
	require.NoError(t, err)
	_, err = s.CreateRunStep(ctx, run1, mustUserMessage(t, "first"))
	require.NoError(t, err)

	run2, err := s.CreateRun(ctx, sess.ID)
	require.NoError(t, err)
	_, err = s.CreateRunStep(ctx, run2, mustUserMessage(t, "second"))
	require.NoError(t, err)

	steps, err := s.GetStepsForSession(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	require.Equal(t, "first", *steps[0].Content)
	require.Equal(t, "second", *steps[1].Content)
}

func TestCreateRunStepRoundTripsToolCalls(t *testing.T) {
	s := New()
	ctx := context.Background()
	sess, err := s.CreateSession(ctx, "agent-1", "user-1")
	require.NoError(t, err)
	runID, err := s.CreateRun(ctx, sess.ID)
	require.NoError(t, err)

	tc, err := agentmodel.NewToolCall("call-1", "web_search", map[string]any{"query": "go"})
	require.NoError(t, err)
	msg, err := agentmodel.NewMessage(agentmodel.RoleAssistant, nil, []agentmodel.ToolCall{tc}, "")
	require.NoError(t, err)
	_, err = s.CreateRunStep(ctx, runID, msg)
	require.NoError(t, err)

	steps, err := s.GetStepsForSession(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	require.Len(t, steps[0].ToolCalls, 1)
	require.Equal(t, "web_search", steps[0].ToolCalls[0].Name)
}

func TestUpdateRunStatusUnknownRun(t *testing.T) {
	s := New()
	err := s.UpdateRunStatus(context.Background(), "missing", agentmodel.RunStatusFailed, nil)
	require.Error(t, err)
	kind, ok := agentcoreerr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, agentcoreerr.KindNotFound, kind)
}

func TestLoadAgentConfigSeeded(t *testing.T) {
	s := New()
	llmCfg, err := agentmodel.NewLLMConfig("claude-3-5-sonnet", nil, nil, nil, nil, nil)
	require.NoError(t, err)
	cfg, err := agentmodel.NewAgentConfig("agent-1", "assistant", "be helpful", llmCfg, []string{"web_search"})
	require.NoError(t, err)
	s.SeedAgentConfig(cfg)

	loaded, err := s.LoadAgentConfig(context.Background(), "agent-1")
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func mustUserMessage(t *testing.T, content string) agentmodel.Message {
	t.Helper()
	msg, err := agentmodel.NewMessage(agentmodel.RoleUser, agentmodel.StringContent(content), nil, "")
	require.NoError(t, err)
	return msg
}
