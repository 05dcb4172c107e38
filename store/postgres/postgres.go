// Package postgres provides the production storage adapter for
// postgres://, postgresql:// DATABASE_URL values, backed by
// github.com/lib/pq (the same driver haasonsaas-nexus and kadirpekel-hector
// use for their cockroach/postgres stores) through store/sqlstore.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/trussdev/agentcore/agentcoreerr"
	"github.com/trussdev/agentcore/store/sqlstore"
)

type dialect struct{}

func (dialect) Name() string { return "postgres" }

func (dialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (dialect) Schema() string {
	return `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	agent_config_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id),
	status TEXT NOT NULL,
	error TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_session_id ON runs(session_id);

CREATE TABLE IF NOT EXISTS run_steps (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL REFERENCES runs(id),
	role TEXT NOT NULL,
	content TEXT,
	tool_calls BYTEA,
	tool_call_id TEXT,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_run_steps_run_id ON run_steps(run_id);

CREATE TABLE IF NOT EXISTS agent_configs (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	system_prompt TEXT NOT NULL,
	model_name TEXT NOT NULL,
	temperature DOUBLE PRECISION NOT NULL,
	max_tokens INTEGER,
	top_p DOUBLE PRECISION NOT NULL,
	frequency_penalty DOUBLE PRECISION NOT NULL,
	presence_penalty DOUBLE PRECISION NOT NULL,
	tools TEXT
);
`
}

// Config mirrors the pool-tuning knobs haasonsaas-nexus's CockroachConfig
// exposes, trimmed to what this adapter needs.
type Config struct {
	MaxOpenConns int
	MaxIdleConns int
}

// DefaultConfig returns conservative pool sizing suitable for a single
// worker process.
func DefaultConfig() Config {
	return Config{MaxOpenConns: 25, MaxIdleConns: 5}
}

// Open connects to dsn (a postgres:// or postgresql:// URL), applies the
// schema, and returns a ready-to-use *sqlstore.Store.
func Open(ctx context.Context, dsn string, cfg Config) (*sqlstore.Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, agentcoreerr.Wrap(agentcoreerr.KindStorageError, err, "open postgres")
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	st, err := sqlstore.Open(ctx, db, dialect{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return st, nil
}
