// Package store defines the storage contract (component B) used by the
// workflow and its activities: session/run/run-step persistence and agent
// config lookup. Concrete adapters live in store/sqlite, store/postgres
// (both backed by store/sqlstore), and store/storemem for tests.
//
// All writes are transactional; CreateRunStep must be atomic with any
// subsequent read that needs to see it. Implementations are safe for
// concurrent use from distinct activity executions (spec.md §4.B).
package store

import (
	"context"

	"github.com/trussdev/agentcore/agentmodel"
)

// Store is the storage contract consumed by the CreateRun, CreateRunStep,
// GetRunMemory, LoadAgentConfig (which also calls GetSession), FinalizeRun,
// and LLMStreamPublish activities.
type Store interface {
	// CreateSession creates and persists a new session row.
	CreateSession(ctx context.Context, agentID, userID string) (agentmodel.Session, error)

	// GetSession loads a session by id. Returns a *agentcoreerr.Error of
	// kind KindNotFound when absent.
	GetSession(ctx context.Context, sessionID string) (agentmodel.Session, error)

	// CreateRun creates a new run row in status pending and returns its id.
	// Returns KindNotFound if sessionID does not reference an existing
	// session.
	CreateRun(ctx context.Context, sessionID string) (runID string, err error)

	// CreateRunStep appends an immutable step to a run's conversation log.
	// Returns KindNotFound if runID does not reference an existing run.
	CreateRunStep(ctx context.Context, runID string, msg agentmodel.Message) (stepID string, err error)

	// GetStepsForSession returns every step across every run owned by the
	// session, joined through their runs and ordered chronologically by
	// created_at. Ties are broken by step id, a random UUID, so steps with
	// equal created_at values do not necessarily come back in insertion
	// order.
	GetStepsForSession(ctx context.Context, sessionID string) ([]agentmodel.Message, error)

	// UpdateRunStatus transitions a run to a new status, optionally
	// recording an error message. Exactly one call per run should move it
	// to a terminal status (spec.md §8 invariant 4); the store itself does
	// not enforce this — the workflow's single finalize path does.
	UpdateRunStatus(ctx context.Context, runID string, status agentmodel.RunStatus, errMsg *string) error

	// LoadAgentConfig loads a persisted AgentConfig by id. Returns
	// KindNotFound when absent.
	LoadAgentConfig(ctx context.Context, agentID string) (agentmodel.AgentConfig, error)
}
