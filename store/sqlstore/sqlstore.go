// Package sqlstore implements store.Store once, on top of database/sql,
// parameterized by a Dialect so it can back both the embedded sqlite
// deployment (store/sqlite) and the postgres deployment (store/postgres)
// without duplicating query logic. Grounded on the database/sql usage in
// haasonsaas-nexus's internal/sessions (CockroachStore: prepared
// statements, db.Prepare/QueryRowContext/ExecContext) and migrate.go
// (idempotent CREATE TABLE IF NOT EXISTS schema setup).
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trussdev/agentcore/agentcoreerr"
	"github.com/trussdev/agentcore/agentmodel"
	"github.com/trussdev/agentcore/store"
)

// Dialect abstracts the handful of differences between the sqlite and
// postgres schemas/placeholder styles this package needs to paper over.
type Dialect interface {
	// Name identifies the dialect for logging ("sqlite", "postgres").
	Name() string
	// Placeholder renders the nth (1-based) bind parameter.
	Placeholder(n int) string
	// Schema returns the idempotent DDL applied once at Open time.
	Schema() string
}

// Store implements store.Store on a *sql.DB using the supplied Dialect for
// its placeholder style and schema. Safe for concurrent use: database/sql
// pools connections internally.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

var _ store.Store = (*Store)(nil)

// Open wraps an already-opened *sql.DB, applies the dialect's schema, and
// returns a ready-to-use Store. Callers own the *sql.DB's lifecycle (call
// db.Close when done); Open never closes it on error.
func Open(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, agentcoreerr.Wrap(agentcoreerr.KindStorageError, err, "ping %s", dialect.Name())
	}
	if _, err := db.ExecContext(ctx, dialect.Schema()); err != nil {
		return nil, agentcoreerr.Wrap(agentcoreerr.KindStorageError, err, "apply %s schema", dialect.Name())
	}
	return &Store{db: db, dialect: dialect}, nil
}

func (s *Store) ph(n int) string { return s.dialect.Placeholder(n) }

// Close closes the underlying *sql.DB.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) CreateSession(ctx context.Context, agentID, userID string) (agentmodel.Session, error) {
	sess := agentmodel.Session{
		ID:            uuid.NewString(),
		AgentConfigID: agentID,
		UserID:        userID,
		CreatedAt:     time.Now().UTC(),
	}
	q := fmt.Sprintf(`INSERT INTO sessions (id, agent_config_id, user_id, created_at) VALUES (%s, %s, %s, %s)`,
		s.ph(1), s.ph(2), s.ph(3), s.ph(4))
	if _, err := s.db.ExecContext(ctx, q, sess.ID, sess.AgentConfigID, sess.UserID, sess.CreatedAt); err != nil {
		return agentmodel.Session{}, agentcoreerr.Wrap(agentcoreerr.KindStorageError, err, "insert session")
	}
	return sess, nil
}

func (s *Store) GetSession(ctx context.Context, sessionID string) (agentmodel.Session, error) {
	q := fmt.Sprintf(`SELECT id, agent_config_id, user_id, created_at FROM sessions WHERE id = %s`, s.ph(1))
	row := s.db.QueryRowContext(ctx, q, sessionID)
	var sess agentmodel.Session
	if err := row.Scan(&sess.ID, &sess.AgentConfigID, &sess.UserID, &sess.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return agentmodel.Session{}, agentcoreerr.New(agentcoreerr.KindNotFound, "session %q not found", sessionID)
		}
		return agentmodel.Session{}, agentcoreerr.Wrap(agentcoreerr.KindStorageError, err, "select session")
	}
	return sess, nil
}

func (s *Store) CreateRun(ctx context.Context, sessionID string) (string, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return "", err
	}
	runID := uuid.NewString()
	now := time.Now().UTC()
	q := fmt.Sprintf(`INSERT INTO runs (id, session_id, status, created_at, updated_at) VALUES (%s, %s, %s, %s, %s)`,
		s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5))
	if _, err := s.db.ExecContext(ctx, q, runID, sessionID, string(agentmodel.RunStatusPending), now, now); err != nil {
		return "", agentcoreerr.Wrap(agentcoreerr.KindStorageError, err, "insert run")
	}
	return runID, nil
}

func (s *Store) runExists(ctx context.Context, runID string) (bool, error) {
	q := fmt.Sprintf(`SELECT 1 FROM runs WHERE id = %s`, s.ph(1))
	row := s.db.QueryRowContext(ctx, q, runID)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, agentcoreerr.Wrap(agentcoreerr.KindStorageError, err, "select run")
	}
	return true, nil
}

func (s *Store) CreateRunStep(ctx context.Context, runID string, msg agentmodel.Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}
	exists, err := s.runExists(ctx, runID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", agentcoreerr.New(agentcoreerr.KindNotFound, "run %q not found", runID)
	}
	toolCalls, err := store.EncodeToolCalls(msg.ToolCalls)
	if err != nil {
		return "", err
	}
	stepID := uuid.NewString()
	q := fmt.Sprintf(`INSERT INTO run_steps (id, run_id, role, content, tool_calls, tool_call_id, created_at)
		VALUES (%s, %s, %s, %s, %s, %s, %s)`, s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5), s.ph(6), s.ph(7))
	if _, err := s.db.ExecContext(ctx, q, stepID, runID, string(msg.Role), msg.Content, toolCalls, msg.ToolCallID, time.Now().UTC()); err != nil {
		return "", agentcoreerr.Wrap(agentcoreerr.KindStorageError, err, "insert run step")
	}
	return stepID, nil
}

func (s *Store) GetStepsForSession(ctx context.Context, sessionID string) ([]agentmodel.Message, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`
		SELECT rs.role, rs.content, rs.tool_calls, rs.tool_call_id
		FROM run_steps rs
		JOIN runs r ON r.id = rs.run_id
		WHERE r.session_id = %s
		ORDER BY rs.created_at ASC, rs.id ASC`, s.ph(1))
	rows, err := s.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, agentcoreerr.Wrap(agentcoreerr.KindStorageError, err, "select run steps")
	}
	defer rows.Close()

	var msgs []agentmodel.Message
	for rows.Next() {
		var role string
		var content *string
		var toolCalls []byte
		var toolCallID string
		if err := rows.Scan(&role, &content, &toolCalls, &toolCallID); err != nil {
			return nil, agentcoreerr.Wrap(agentcoreerr.KindStorageError, err, "scan run step")
		}
		parsedCalls, err := store.DecodeToolCalls(toolCalls)
		if err != nil {
			return nil, err
		}
		msg, err := agentmodel.NewMessage(agentmodel.Role(role), content, parsedCalls, toolCallID)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, agentcoreerr.Wrap(agentcoreerr.KindStorageError, err, "iterate run steps")
	}
	return msgs, nil
}

func (s *Store) UpdateRunStatus(ctx context.Context, runID string, status agentmodel.RunStatus, errMsg *string) error {
	q := fmt.Sprintf(`UPDATE runs SET status = %s, error = %s, updated_at = %s WHERE id = %s`,
		s.ph(1), s.ph(2), s.ph(3), s.ph(4))
	res, err := s.db.ExecContext(ctx, q, string(status), errMsg, time.Now().UTC(), runID)
	if err != nil {
		return agentcoreerr.Wrap(agentcoreerr.KindStorageError, err, "update run status")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return agentcoreerr.Wrap(agentcoreerr.KindStorageError, err, "rows affected")
	}
	if n == 0 {
		return agentcoreerr.New(agentcoreerr.KindNotFound, "run %q not found", runID)
	}
	return nil
}

func (s *Store) LoadAgentConfig(ctx context.Context, agentID string) (agentmodel.AgentConfig, error) {
	q := fmt.Sprintf(`SELECT id, name, system_prompt, model_name, temperature, max_tokens, top_p,
		frequency_penalty, presence_penalty, tools FROM agent_configs WHERE id = %s`, s.ph(1))
	row := s.db.QueryRowContext(ctx, q, agentID)

	var (
		id, name, systemPrompt, modelName string
		temperature, topP                 float64
		frequencyPenalty, presencePenalty float64
		maxTokens                         sql.NullInt64
		toolsCSV                          sql.NullString
	)
	if err := row.Scan(&id, &name, &systemPrompt, &modelName, &temperature, &maxTokens, &topP,
		&frequencyPenalty, &presencePenalty, &toolsCSV); err != nil {
		if err == sql.ErrNoRows {
			return agentmodel.AgentConfig{}, agentcoreerr.New(agentcoreerr.KindNotFound, "agent config %q not found", agentID)
		}
		return agentmodel.AgentConfig{}, agentcoreerr.Wrap(agentcoreerr.KindStorageError, err, "select agent config")
	}

	var maxTokensPtr *int
	if maxTokens.Valid {
		v := int(maxTokens.Int64)
		maxTokensPtr = &v
	}
	llmCfg, err := agentmodel.NewLLMConfig(modelName, &temperature, maxTokensPtr, &topP, &frequencyPenalty, &presencePenalty)
	if err != nil {
		return agentmodel.AgentConfig{}, err
	}
	cfg, err := agentmodel.NewAgentConfig(id, name, systemPrompt, llmCfg, splitTools(toolsCSV.String))
	if err != nil {
		return agentmodel.AgentConfig{}, err
	}
	return cfg, nil
}

func splitTools(csv string) []string {
	if csv == "" {
		return nil
	}
	var tools []string
	start := 0
	for i := 0; i <= len(csv); i++ {
		if i == len(csv) || csv[i] == ',' {
			if i > start {
				tools = append(tools, csv[start:i])
			}
			start = i + 1
		}
	}
	return tools
}

// PlaceholderSeq is a small helper dialects can use to build "$1,$2,..." or
// "?,?,..." lists; unused by the current fixed-arity queries above but kept
// for adapters that add bulk operations.
func PlaceholderSeq(d Dialect, n int) string {
	out := ""
	for i := 1; i <= n; i++ {
		if i > 1 {
			out += ", "
		}
		out += d.Placeholder(i)
	}
	return out
}
