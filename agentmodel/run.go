package agentmodel

import "time"

// RunStatus is the lifecycle state of a Run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// Session is the conversational container a Run belongs to. Created by the
// (out-of-scope) API layer; referenced here by ID only.
type Session struct {
	ID            string    `json:"id"`
	AgentConfigID string    `json:"agent_config_id"`
	UserID        string    `json:"user_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Run is one execution attempt of an agent within a session. Exactly one
// status transition to a terminal state (succeeded/failed/cancelled) occurs
// per run (spec.md §8 invariant 4).
type Run struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Status    RunStatus `json:"status"`
	Error     *string   `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RunStep is one immutable persisted message in a run's conversation log.
// Steps are append-only; once written, a RunStep is never mutated.
type RunStep struct {
	ID         string    `json:"id"`
	RunID      string    `json:"run_id"`
	Role       Role      `json:"role"`
	Content    *string   `json:"content,omitempty"`
	ToolCalls  []byte    `json:"tool_calls,omitempty"` // raw JSON, as persisted
	ToolCallID string    `json:"tool_call_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// WorkflowStatus is the run status carried by AgentWorkflowOutput. It is
// distinct from RunStatus. TemporalAgentExecutionWorkflow only returns an
// output with WorkflowStatusCompleted; a failed or cancelled run ends with a
// workflow error instead. The get_status query does not use these values:
// it returns the workflow's current status string ("initialising",
// "thinking", "executing N tools", "completed").
type WorkflowStatus string

const (
	WorkflowStatusRunning   WorkflowStatus = "running"
	WorkflowStatusCompleted WorkflowStatus = "completed"
	WorkflowStatusErrored   WorkflowStatus = "errored"
	WorkflowStatusCancelled WorkflowStatus = "cancelled"
)

// AgentWorkflowInput is the input to TemporalAgentExecutionWorkflow.
type AgentWorkflowInput struct {
	SessionID   string  `json:"session_id"`
	UserMessage Message `json:"user_message"`
	// RunID is accepted on the input but not used: the workflow always
	// runs under the id that CreateRun assigns, whether or not RunID is
	// set.
	RunID string `json:"run_id,omitempty"`
}

// AgentWorkflowOutput is the terminal result of TemporalAgentExecutionWorkflow.
type AgentWorkflowOutput struct {
	RunID        string         `json:"run_id"`
	Status       WorkflowStatus `json:"status"`
	FinalMessage *Message       `json:"final_message,omitempty"`
	Error        string         `json:"error,omitempty"`
}
