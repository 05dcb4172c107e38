// Package sqlite provides the default, embedded storage adapter: a single
// file database/sql connection backed by modernc.org/sqlite (pure Go, no
// cgo), wired through store/sqlstore. cmd/worker and cmd/apiserver use it
// for a sqlite:// DATABASE_URL and, when DATABASE_URL is empty, for their
// default "sqlite://:memory:", an in-process database that is not shared
// between processes. A DATABASE_URL without a sqlite://, postgres:// or
// postgresql:// prefix is rejected.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/trussdev/agentcore/agentcoreerr"
	"github.com/trussdev/agentcore/store/sqlstore"
)

type dialect struct{}

func (dialect) Name() string { return "sqlite" }

func (dialect) Placeholder(int) string { return "?" }

func (dialect) Schema() string {
	return `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	agent_config_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id),
	status TEXT NOT NULL,
	error TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_session_id ON runs(session_id);

CREATE TABLE IF NOT EXISTS run_steps (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL REFERENCES runs(id),
	role TEXT NOT NULL,
	content TEXT,
	tool_calls BLOB,
	tool_call_id TEXT,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_run_steps_run_id ON run_steps(run_id);

CREATE TABLE IF NOT EXISTS agent_configs (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	system_prompt TEXT NOT NULL,
	model_name TEXT NOT NULL,
	temperature REAL NOT NULL,
	max_tokens INTEGER,
	top_p REAL NOT NULL,
	frequency_penalty REAL NOT NULL,
	presence_penalty REAL NOT NULL,
	tools TEXT
);
`
}

// Open opens (creating if absent) the sqlite file at path ("" and ":memory:"
// both mean an ephemeral in-process database) and applies the schema.
// path is passed through verbatim as the modernc.org/sqlite DSN, so query
// parameters such as "file:run.db?_pragma=busy_timeout(5000)" are honored.
func Open(ctx context.Context, path string) (*sqlstore.Store, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, agentcoreerr.Wrap(agentcoreerr.KindStorageError, err, "open sqlite %q", path)
	}
	// modernc.org/sqlite serializes writers internally; a single connection
	// avoids "database is locked" errors under concurrent activity workers.
	db.SetMaxOpenConns(1)
	st, err := sqlstore.Open(ctx, db, dialect{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return st, nil
}
