// Package storemem provides an in-memory implementation of store.Store for
// unit tests and local prototyping. All state lives in process memory with
// no durability across restarts; production deployments use store/sqlite or
// store/postgres instead.
package storemem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trussdev/agentcore/agentcoreerr"
	"github.com/trussdev/agentcore/agentmodel"
	"github.com/trussdev/agentcore/store"
)

// Store implements store.Store in memory. All operations are thread-safe via
// sync.RWMutex. Records are defensively copied on write to prevent callers
// from mutating stored state through a returned value.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]agentmodel.Session
	runs     map[string]agentmodel.Run
	steps    map[string][]agentmodel.RunStep // keyed by run id, in append order
	configs  map[string]agentmodel.AgentConfig
}

var _ store.Store = (*Store)(nil)

// New constructs an empty Store.
func New() *Store {
	return &Store{
		sessions: make(map[string]agentmodel.Session),
		runs:     make(map[string]agentmodel.Run),
		steps:    make(map[string][]agentmodel.RunStep),
		configs:  make(map[string]agentmodel.AgentConfig),
	}
}

// SeedAgentConfig registers cfg so LoadAgentConfig can resolve it. Tests use
// this to populate fixtures; there is no production equivalent since real
// agent configs are loaded from the durable backend.
func (s *Store) SeedAgentConfig(cfg agentmodel.AgentConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[cfg.ID] = cfg
}

func (s *Store) CreateSession(_ context.Context, agentID, userID string) (agentmodel.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := agentmodel.Session{
		ID:            uuid.NewString(),
		AgentConfigID: agentID,
		UserID:        userID,
		CreatedAt:     time.Now().UTC(),
	}
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *Store) GetSession(_ context.Context, sessionID string) (agentmodel.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return agentmodel.Session{}, agentcoreerr.New(agentcoreerr.KindNotFound, "session %q not found", sessionID)
	}
	return sess, nil
}

func (s *Store) CreateRun(_ context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return "", agentcoreerr.New(agentcoreerr.KindNotFound, "session %q not found", sessionID)
	}
	now := time.Now().UTC()
	run := agentmodel.Run{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Status:    agentmodel.RunStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.runs[run.ID] = run
	return run.ID, nil
}

func (s *Store) CreateRunStep(_ context.Context, runID string, msg agentmodel.Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[runID]; !ok {
		return "", agentcoreerr.New(agentcoreerr.KindNotFound, "run %q not found", runID)
	}
	step := agentmodel.RunStep{
		ID:         uuid.NewString(),
		RunID:      runID,
		Role:       msg.Role,
		Content:    msg.Content,
		ToolCallID: msg.ToolCallID,
		CreatedAt:  time.Now().UTC(),
	}
	if len(msg.ToolCalls) > 0 {
		b, err := store.EncodeToolCalls(msg.ToolCalls)
		if err != nil {
			return "", err
		}
		step.ToolCalls = b
	}
	s.steps[runID] = append(s.steps[runID], step)
	return step.ID, nil
}

// GetStepsForSession returns every step across every run owned by the
// session, ordered by created_at with ties broken by step id, mirroring
// store/sqlstore's ORDER BY created_at, id.
func (s *Store) GetStepsForSession(_ context.Context, sessionID string) ([]agentmodel.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return nil, agentcoreerr.New(agentcoreerr.KindNotFound, "session %q not found", sessionID)
	}
	var runIDs []string
	for id, run := range s.runs {
		if run.SessionID == sessionID {
			runIDs = append(runIDs, id)
		}
	}
	var flat []agentmodel.RunStep
	for _, id := range runIDs {
		flat = append(flat, s.steps[id]...)
	}
	// runIDs was built by ranging over the s.runs map, whose iteration order
	// is randomized per Go's spec, so flat's pre-sort order (and therefore
	// any tie) cannot be trusted to reflect insertion order. Sorting on
	// (CreatedAt, ID) rather than CreatedAt alone makes ties deterministic
	// regardless of that randomized starting order.
	sort.SliceStable(flat, func(i, j int) bool {
		if !flat[i].CreatedAt.Equal(flat[j].CreatedAt) {
			return flat[i].CreatedAt.Before(flat[j].CreatedAt)
		}
		return flat[i].ID < flat[j].ID
	})

	msgs := make([]agentmodel.Message, 0, len(flat))
	for _, step := range flat {
		toolCalls, err := store.DecodeToolCalls(step.ToolCalls)
		if err != nil {
			return nil, err
		}
		msg, err := agentmodel.NewMessage(step.Role, step.Content, toolCalls, step.ToolCallID)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (s *Store) UpdateRunStatus(_ context.Context, runID string, status agentmodel.RunStatus, errMsg *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return agentcoreerr.New(agentcoreerr.KindNotFound, "run %q not found", runID)
	}
	run.Status = status
	run.Error = errMsg
	run.UpdatedAt = time.Now().UTC()
	s.runs[runID] = run
	return nil
}

func (s *Store) LoadAgentConfig(_ context.Context, agentID string) (agentmodel.AgentConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[agentID]
	if !ok {
		return agentmodel.AgentConfig{}, agentcoreerr.New(agentcoreerr.KindNotFound, "agent config %q not found", agentID)
	}
	return cfg, nil
}
