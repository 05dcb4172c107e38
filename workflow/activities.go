// Package workflow implements the agent-execution state machine (component
// E): TemporalAgentExecutionWorkflow itself, plus the five storage-backed
// activities (CreateRun, CreateRunStep, GetRunMemory, LoadAgentConfig,
// FinalizeRun) the workflow drives alongside llm.Activities.LLMStreamPublish
// and tools.Activities.ExecuteTool. Grounded directly on
// go.temporal.io/sdk/workflow (no engine abstraction layer, unlike
// goadesign-goa-ai's runtime/agent/engine — this module's workflow talks to
// the Temporal SDK straight, matching spec.md §4.E's single concrete
// engine binding) and runtime/agent/engine/temporal/workflow_context.go for
// signal/query/parallel idiom.
package workflow

import (
	"context"

	"github.com/trussdev/agentcore/agentcoreerr"
	"github.com/trussdev/agentcore/agentmodel"
	"github.com/trussdev/agentcore/store"
)

// Activities implements the store-backed activity set: CreateRun,
// CreateRunStep, GetRunMemory, LoadAgentConfig, FinalizeRun.
type Activities struct {
	Store store.Store
}

// NewActivities constructs an Activities bound to st.
func NewActivities(st store.Store) *Activities {
	return &Activities{Store: st}
}

// CreateRun creates a new run row for sessionID in status pending.
func (a *Activities) CreateRun(ctx context.Context, sessionID string) (id string, err error) {
	defer func() { err = agentcoreerr.ToTemporal(err) }()
	return a.Store.CreateRun(ctx, sessionID)
}

// CreateRunStep appends msg to runID's step log.
func (a *Activities) CreateRunStep(ctx context.Context, runID string, msg agentmodel.Message) (id string, err error) {
	defer func() { err = agentcoreerr.ToTemporal(err) }()
	return a.Store.CreateRunStep(ctx, runID, msg)
}

// GetRunMemory reconstructs an AgentMemory from every step persisted so far
// across sessionID's runs, in chronological order (spec.md §4.E step 5).
func (a *Activities) GetRunMemory(ctx context.Context, sessionID string) (mem agentmodel.AgentMemory, err error) {
	defer func() { err = agentcoreerr.ToTemporal(err) }()
	msgs, err := a.Store.GetStepsForSession(ctx, sessionID)
	if err != nil {
		return agentmodel.AgentMemory{}, err
	}
	return agentmodel.NewAgentMemory(msgs)
}

// LoadAgentConfig loads the AgentConfig referenced by a session, resolved
// once per workflow execution right after CreateRun/CreateRunStep (see
// DESIGN.md's resolution of spec.md §9's open question on config timing).
func (a *Activities) LoadAgentConfig(ctx context.Context, sessionID string) (cfg agentmodel.AgentConfig, err error) {
	defer func() { err = agentcoreerr.ToTemporal(err) }()
	sess, err := a.Store.GetSession(ctx, sessionID)
	if err != nil {
		return agentmodel.AgentConfig{}, err
	}
	return a.Store.LoadAgentConfig(ctx, sess.AgentConfigID)
}

// FinalizeRun transitions runID to its terminal status. Per spec.md §4.E
// step 6, callers retry this activity aggressively and swallow a final
// failure rather than escalate it — the workflow is already terminating.
func (a *Activities) FinalizeRun(ctx context.Context, runID string, status agentmodel.RunStatus, errMsg *string) (err error) {
	defer func() { err = agentcoreerr.ToTemporal(err) }()
	if err := a.Store.UpdateRunStatus(ctx, runID, status, errMsg); err != nil {
		return agentcoreerr.Wrap(agentcoreerr.KindStorageError, err, "finalize run %q", runID)
	}
	return nil
}
