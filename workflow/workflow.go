package workflow

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/trussdev/agentcore/agentcoreerr"
	"github.com/trussdev/agentcore/agentmodel"
)

// Activity names. These are the Go method names of the structs registered
// by package worker (Activities, llm.Activities, tools.Activities); Temporal
// defaults an activity's registered name to its method name, so referring
// to them by these string constants here keeps this package free of a
// compile-time dependency on the llm/tools packages.
const (
	ActivityCreateRun        = "CreateRun"
	ActivityCreateRunStep    = "CreateRunStep"
	ActivityGetRunMemory     = "GetRunMemory"
	ActivityLoadAgentConfig  = "LoadAgentConfig"
	ActivityFinalizeRun      = "FinalizeRun"
	ActivityLLMStreamPublish = "LLMStreamPublish"
	ActivityExecuteTool      = "ExecuteTool"
)

// SignalRequestCancellation is the name of the signal that sets
// cancellation_requested (spec.md §4.E).
const SignalRequestCancellation = "request_cancellation"

// QueryGetStatus is the name of the query that reads current_status.
const QueryGetStatus = "get_status"

// WorkflowName is the registered name of TemporalAgentExecutionWorkflow.
const WorkflowName = "TemporalAgentExecutionWorkflow"

// TemporalAgentExecutionWorkflow implements the reason-act loop state
// machine from spec.md §4.E directly on the Temporal workflow SDK: all
// non-determinism (UUIDs, time, I/O, parallel scheduling) happens inside
// activities; the workflow body only manipulates data and the engine's
// orchestration primitives (ExecuteActivity, GetSignalChannel,
// SetQueryHandler, workflow.Go for the signal listener, and ExecuteActivity
// futures started together and joined in order for the tool fan-out
// barrier).
func TemporalAgentExecutionWorkflow(ctx workflow.Context, input agentmodel.AgentWorkflowInput) (agentmodel.AgentWorkflowOutput, error) {
	cancellationRequested := false
	currentStatus := "initialising"

	if err := workflow.SetQueryHandler(ctx, QueryGetStatus, func() (string, error) {
		return currentStatus, nil
	}); err != nil {
		return agentmodel.AgentWorkflowOutput{}, err
	}

	cancelCh := workflow.GetSignalChannel(ctx, SignalRequestCancellation)
	workflow.Go(ctx, func(ctx workflow.Context) {
		for {
			var signal any
			if !cancelCh.Receive(ctx, &signal) {
				return
			}
			cancellationRequested = true
		}
	})

	var runID string
	finalStatus := agentmodel.RunStatusFailed
	var errorMessage *string

	defer func() {
		if runID == "" {
			return
		}
		// Finalise runs even on a cancelled or panicking workflow: a
		// disconnected context survives the workflow's own cancellation
		// (spec.md §4.E step 6, "finally").
		finalizeCtx, cancel := workflow.NewDisconnectedContext(ctx)
		defer cancel()
		finalizeCtx = workflow.WithActivityOptions(finalizeCtx, workflow.ActivityOptions{
			StartToCloseTimeout: 30 * time.Second,
			RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 10},
		})
		// Failure to finalise is swallowed: the workflow is already
		// terminating and FinalizeRun's own retries are exhausted.
		_ = workflow.ExecuteActivity(finalizeCtx, ActivityFinalizeRun, runID, finalStatus, errorMessage).Get(finalizeCtx, nil)
	}()

	result, err := runLoop(ctx, input, &runID, &currentStatus, &cancellationRequested)
	if err != nil {
		finalStatus, errorMessage = classifyFailure(err)
		return agentmodel.AgentWorkflowOutput{}, err
	}
	finalStatus = agentmodel.RunStatusSucceeded
	return result, nil
}

func runLoop(ctx workflow.Context, input agentmodel.AgentWorkflowInput, runID *string, currentStatus *string, cancellationRequested *bool) (agentmodel.AgentWorkflowOutput, error) {
	createCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
	})

	// input.RunID is not used: CreateRun is the single source of truth for
	// run id assignment, and the activity always persists and returns the
	// id actually written to storage.
	var newRunID string
	if err := workflow.ExecuteActivity(createCtx, ActivityCreateRun, input.SessionID).Get(createCtx, &newRunID); err != nil {
		return agentmodel.AgentWorkflowOutput{}, err
	}
	*runID = newRunID

	if err := workflow.ExecuteActivity(createCtx, ActivityCreateRunStep, newRunID, input.UserMessage).Get(createCtx, nil); err != nil {
		return agentmodel.AgentWorkflowOutput{}, err
	}

	var agentConfig agentmodel.AgentConfig
	configCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
	})
	haveAgentConfig := true
	if err := workflow.ExecuteActivity(configCtx, ActivityLoadAgentConfig, input.SessionID).Get(configCtx, &agentConfig); err != nil {
		// An agent config is optional context for the prompt (spec.md §4.E
		// step 5, "if an agent config is available"); its absence is not
		// fatal to the run.
		haveAgentConfig = false
	}

	*currentStatus = "thinking"

	for {
		if *cancellationRequested {
			return agentmodel.AgentWorkflowOutput{}, agentcoreerr.New(agentcoreerr.KindCancelled, "cancellation requested")
		}

		memCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
			StartToCloseTimeout: 15 * time.Second,
			RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
		})
		var memory agentmodel.AgentMemory
		if err := workflow.ExecuteActivity(memCtx, ActivityGetRunMemory, input.SessionID).Get(memCtx, &memory); err != nil {
			return agentmodel.AgentWorkflowOutput{}, err
		}

		prompt := buildPrompt(agentConfig, haveAgentConfig, memory)

		llmCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
			StartToCloseTimeout: 3 * time.Minute,
			RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 5},
		})
		var assistantMsg agentmodel.Message
		if err := workflow.ExecuteActivity(llmCtx, ActivityLLMStreamPublish, agentConfig, prompt, input.SessionID, newRunID).Get(llmCtx, &assistantMsg); err != nil {
			return agentmodel.AgentWorkflowOutput{}, err
		}

		if len(assistantMsg.ToolCalls) == 0 {
			*currentStatus = "completed"
			return agentmodel.AgentWorkflowOutput{
				RunID:        newRunID,
				Status:       agentmodel.WorkflowStatusCompleted,
				FinalMessage: &assistantMsg,
			}, nil
		}

		*currentStatus = fmt.Sprintf("executing %d tools", len(assistantMsg.ToolCalls))
		results, err := executeToolsInParallel(ctx, assistantMsg.ToolCalls)
		if err != nil {
			return agentmodel.AgentWorkflowOutput{}, err
		}

		stepCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
			StartToCloseTimeout: 10 * time.Second,
			RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
		})
		for _, result := range results {
			content, err := result.CanonicalContent()
			if err != nil {
				return agentmodel.AgentWorkflowOutput{}, err
			}
			toolMsg, err := agentmodel.NewMessage(agentmodel.RoleTool, agentmodel.StringContent(content), nil, result.ToolCallID)
			if err != nil {
				return agentmodel.AgentWorkflowOutput{}, err
			}
			if err := workflow.ExecuteActivity(stepCtx, ActivityCreateRunStep, newRunID, toolMsg).Get(stepCtx, nil); err != nil {
				return agentmodel.AgentWorkflowOutput{}, err
			}
		}

		*currentStatus = "thinking"
	}
}

// buildPrompt prepends the agent's system prompt, when available, to the
// reconstructed memory (spec.md §4.E step 5).
func buildPrompt(cfg agentmodel.AgentConfig, haveConfig bool, memory agentmodel.AgentMemory) agentmodel.AgentMemory {
	if !haveConfig || cfg.SystemPrompt == "" {
		return memory
	}
	systemMsg, err := agentmodel.NewMessage(agentmodel.RoleSystem, agentmodel.StringContent(cfg.SystemPrompt), nil, "")
	if err != nil {
		return memory
	}
	messages := make([]agentmodel.Message, 0, len(memory.Messages)+1)
	messages = append(messages, systemMsg)
	messages = append(messages, memory.Messages...)
	return agentmodel.AgentMemory{Messages: messages}
}

// executeToolsInParallel fans out one ExecuteTool activity per tool call
// and joins before returning, preserving the original request order in the
// returned slice regardless of completion order (spec.md §4.E, §5: "a
// single parallel barrier" for dispatch, strictly sequential persistence
// after).
func executeToolsInParallel(ctx workflow.Context, calls []agentmodel.ToolCall) ([]agentmodel.ToolCallResult, error) {
	toolCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
	})

	futures := make([]workflow.Future, len(calls))
	for i, call := range calls {
		futures[i] = workflow.ExecuteActivity(toolCtx, ActivityExecuteTool, call)
	}

	results := make([]agentmodel.ToolCallResult, len(calls))
	for i, fut := range futures {
		var result agentmodel.ToolCallResult
		if err := fut.Get(toolCtx, &result); err != nil {
			return nil, err
		}
		results[i] = result
	}
	return results, nil
}

// classifyFailure maps a workflow-loop error into the (final_status,
// error_message) pair FinalizeRun records, per spec.md §4.E step 6: a
// Cancelled failure maps to "cancelled"; everything else to "errored".
func classifyFailure(err error) (agentmodel.RunStatus, *string) {
	msg := err.Error()
	if kind, ok := agentcoreerr.KindOf(err); ok && kind == agentcoreerr.KindCancelled {
		return agentmodel.RunStatusCancelled, &msg
	}
	return agentmodel.RunStatusFailed, &msg
}
