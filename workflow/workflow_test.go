package workflow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/trussdev/agentcore/agentcoreerr"
	"github.com/trussdev/agentcore/agentmodel"
	wf "github.com/trussdev/agentcore/workflow"
)

func mustUserMessage(t *testing.T) agentmodel.Message {
	t.Helper()
	msg, err := agentmodel.NewMessage(agentmodel.RoleUser, agentmodel.StringContent("hello"), nil, "")
	require.NoError(t, err)
	return msg
}

func mustAssistantMessage(t *testing.T, content string) agentmodel.Message {
	t.Helper()
	msg, err := agentmodel.NewMessage(agentmodel.RoleAssistant, agentmodel.StringContent(content), nil, "")
	require.NoError(t, err)
	return msg
}

// TestTrivialCompletion exercises scenario S1 from spec.md §8: a single LLM
// turn returning plain text ends the run as completed with exactly one
// CreateRun, one CreateRunStep for the user message, and one FinalizeRun.
func TestTrivialCompletion(t *testing.T) {
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestWorkflowEnvironment()

	env.OnActivity(wf.ActivityCreateRun, mock.Anything, "session-1").Return("run-1", nil).Once()
	env.OnActivity(wf.ActivityCreateRunStep, mock.Anything, "run-1", mock.Anything).Return("step-1", nil).Once()
	env.OnActivity(wf.ActivityLoadAgentConfig, mock.Anything, "session-1").
		Return(agentmodel.AgentConfig{}, agentcoreerr.New(agentcoreerr.KindNotFound, "no config")).Once()
	env.OnActivity(wf.ActivityGetRunMemory, mock.Anything, "session-1").
		Return(agentmodel.AgentMemory{Messages: []agentmodel.Message{mustUserMessage(t)}}, nil).Once()
	env.OnActivity(wf.ActivityLLMStreamPublish, mock.Anything, mock.Anything, mock.Anything, "session-1", "run-1").
		Return(mustAssistantMessage(t, "Hi"), nil).Once()
	env.OnActivity(wf.ActivityFinalizeRun, mock.Anything, "run-1", agentmodel.RunStatusSucceeded, mock.Anything).Return(nil).Once()

	env.ExecuteWorkflow(wf.TemporalAgentExecutionWorkflow, agentmodel.AgentWorkflowInput{
		SessionID:   "session-1",
		UserMessage: mustUserMessage(t),
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out agentmodel.AgentWorkflowOutput
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, agentmodel.WorkflowStatusCompleted, out.Status)
	require.Equal(t, "run-1", out.RunID)
	require.Equal(t, "Hi", *out.FinalMessage.Content)

	env.AssertExpectations(t)
}

// TestOneToolCallThenCompletion exercises scenario S2: the first LLM turn
// requests one tool call, ExecuteTool runs once, a tool-role step is
// persisted, and the second LLM turn completes the run.
func TestOneToolCallThenCompletion(t *testing.T) {
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestWorkflowEnvironment()

	tc, err := agentmodel.NewToolCall("tc1", "web_search", map[string]any{"query": "hi"})
	require.NoError(t, err)
	assistantWithTool, err := agentmodel.NewMessage(agentmodel.RoleAssistant, nil, []agentmodel.ToolCall{tc}, "")
	require.NoError(t, err)

	env.OnActivity(wf.ActivityCreateRun, mock.Anything, "session-2").Return("run-2", nil).Once()
	env.OnActivity(wf.ActivityCreateRunStep, mock.Anything, "run-2", mock.Anything).Return("step-id", nil).Times(2)
	env.OnActivity(wf.ActivityLoadAgentConfig, mock.Anything, "session-2").
		Return(agentmodel.AgentConfig{}, agentcoreerr.New(agentcoreerr.KindNotFound, "no config")).Once()
	env.OnActivity(wf.ActivityGetRunMemory, mock.Anything, "session-2").
		Return(agentmodel.AgentMemory{Messages: []agentmodel.Message{mustUserMessage(t)}}, nil).Twice()
	env.OnActivity(wf.ActivityLLMStreamPublish, mock.Anything, mock.Anything, mock.Anything, "session-2", "run-2").
		Return(assistantWithTool, nil).Once()
	env.OnActivity(wf.ActivityExecuteTool, mock.Anything, tc).
		Return(agentmodel.ToolCallResult{ToolCallID: "tc1", Content: "result"}, nil).Once()
	env.OnActivity(wf.ActivityLLMStreamPublish, mock.Anything, mock.Anything, mock.Anything, "session-2", "run-2").
		Return(mustAssistantMessage(t, "done"), nil).Once()
	env.OnActivity(wf.ActivityFinalizeRun, mock.Anything, "run-2", agentmodel.RunStatusSucceeded, mock.Anything).Return(nil).Once()

	env.ExecuteWorkflow(wf.TemporalAgentExecutionWorkflow, agentmodel.AgentWorkflowInput{
		SessionID:   "session-2",
		UserMessage: mustUserMessage(t),
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	env.AssertExpectations(t)
}

// TestCancellationSignal exercises scenario S5: a request_cancellation
// signal delivered while the workflow is between LLM turns ends the run as
// cancelled, and FinalizeRun is still invoked.
func TestCancellationSignal(t *testing.T) {
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestWorkflowEnvironment()

	env.OnActivity(wf.ActivityCreateRun, mock.Anything, "session-5").Return("run-5", nil).Once()
	env.OnActivity(wf.ActivityCreateRunStep, mock.Anything, "run-5", mock.Anything).Return("step-id", nil).Maybe()
	env.OnActivity(wf.ActivityLoadAgentConfig, mock.Anything, "session-5").
		Return(agentmodel.AgentConfig{}, agentcoreerr.New(agentcoreerr.KindNotFound, "no config")).Once()
	env.OnActivity(wf.ActivityGetRunMemory, mock.Anything, "session-5").
		Return(agentmodel.AgentMemory{Messages: []agentmodel.Message{mustUserMessage(t)}}, nil).Maybe()
	env.OnActivity(wf.ActivityLLMStreamPublish, mock.Anything, mock.Anything, mock.Anything, "session-5", "run-5").
		Return(mustAssistantMessage(t, "too late"), nil).Maybe()
	env.OnActivity(wf.ActivityFinalizeRun, mock.Anything, "run-5", agentmodel.RunStatusCancelled, mock.Anything).Return(nil).Once()

	// A small delay ensures CreateRun/CreateRunStep/LoadAgentConfig have
	// already run before the signal lands, exercising the mid-loop
	// cancellation check rather than racing workflow start.
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(wf.SignalRequestCancellation, nil)
	}, time.Millisecond)

	env.ExecuteWorkflow(wf.TemporalAgentExecutionWorkflow, agentmodel.AgentWorkflowInput{
		SessionID:   "session-5",
		UserMessage: mustUserMessage(t),
	})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	env.AssertExpectations(t)
}

// TestUnknownToolFailsImmediately exercises scenario S3: ExecuteTool raises
// ToolUnregistered for a tool name absent from the registry. That Kind is
// non-retryable (agentcoreerr.ToTemporal flags it NonRetryable before the
// activity returns), so the mocked activity is invoked exactly once despite
// the tool activity's RetryPolicy allowing up to three attempts, and the
// workflow finalises with status failed rather than retrying.
func TestUnknownToolFailsImmediately(t *testing.T) {
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestWorkflowEnvironment()

	tc, err := agentmodel.NewToolCall("tc1", "missing_tool", map[string]any{})
	require.NoError(t, err)
	assistantWithTool, err := agentmodel.NewMessage(agentmodel.RoleAssistant, nil, []agentmodel.ToolCall{tc}, "")
	require.NoError(t, err)

	unregistered := agentcoreerr.ToTemporal(agentcoreerr.New(agentcoreerr.KindToolUnregistered, "tool %q is not registered", "missing_tool"))

	env.OnActivity(wf.ActivityCreateRun, mock.Anything, "session-3").Return("run-3", nil).Once()
	env.OnActivity(wf.ActivityCreateRunStep, mock.Anything, "run-3", mock.Anything).Return("step-1", nil).Once()
	env.OnActivity(wf.ActivityLoadAgentConfig, mock.Anything, "session-3").
		Return(agentmodel.AgentConfig{}, agentcoreerr.New(agentcoreerr.KindNotFound, "no config")).Once()
	env.OnActivity(wf.ActivityGetRunMemory, mock.Anything, "session-3").
		Return(agentmodel.AgentMemory{Messages: []agentmodel.Message{mustUserMessage(t)}}, nil).Once()
	env.OnActivity(wf.ActivityLLMStreamPublish, mock.Anything, mock.Anything, mock.Anything, "session-3", "run-3").
		Return(assistantWithTool, nil).Once()
	env.OnActivity(wf.ActivityExecuteTool, mock.Anything, tc).
		Return(agentmodel.ToolCallResult{}, unregistered).Once()
	env.OnActivity(wf.ActivityFinalizeRun, mock.Anything, "run-3", agentmodel.RunStatusFailed, mock.Anything).Return(nil).Once()

	env.ExecuteWorkflow(wf.TemporalAgentExecutionWorkflow, agentmodel.AgentWorkflowInput{
		SessionID:   "session-3",
		UserMessage: mustUserMessage(t),
	})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	// The .Once() expectation on ActivityExecuteTool is the actual
	// assertion: a retryable failure would have invoked the mock up to
	// three times under the tool activity's MaximumAttempts: 3 policy and
	// failed this check.
	env.AssertExpectations(t)
}
