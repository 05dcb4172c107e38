// Command apiserver is a minimal, explicitly non-core HTTP front end: it
// implements only the two endpoints spec.md §6 names (GET /health,
// POST /sessions) using net/http from the standard library. Deliberately
// undecorated — spec.md places the HTTP front end outside the governed
// core, so this exists only to make the module runnable end-to-end, not as
// a component under this spec's testable-properties list.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/trussdev/agentcore/agentcoreerr"
	"github.com/trussdev/agentcore/agentmodel"
	"github.com/trussdev/agentcore/store"
	"github.com/trussdev/agentcore/store/postgres"
	"github.com/trussdev/agentcore/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()
	addr := envOr("APISERVER_ADDR", ":8080")
	databaseURL := envOr("DATABASE_URL", "sqlite://:memory:")

	st, err := openStore(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("POST /sessions", handleCreateSession(st))

	log.Printf("apiserver listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createSessionRequest struct {
	AgentID string `json:"agent_id"`
	UserID  string `json:"user_id"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

func handleCreateSession(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
			return
		}
		var req createSessionRequest
		if err := agentmodel.DecodeStrict(body, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
			return
		}
		if strings.TrimSpace(req.AgentID) == "" || strings.TrimSpace(req.UserID) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "agent_id and user_id are required"})
			return
		}

		ctx := r.Context()
		if _, err := st.LoadAgentConfig(ctx, req.AgentID); err != nil {
			var kindErr *agentcoreerr.Error
			if errors.As(err, &kindErr) && kindErr.Kind == agentcoreerr.KindNotFound {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown agent_id"})
				return
			}
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to resolve agent"})
			return
		}

		session, err := st.CreateSession(ctx, req.AgentID, req.UserID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
			return
		}
		writeJSON(w, http.StatusCreated, createSessionResponse{SessionID: session.ID})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func openStore(ctx context.Context, dsn string) (store.Store, error) {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.Open(ctx, strings.TrimPrefix(dsn, "sqlite://"))
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(ctx, dsn, postgres.DefaultConfig())
	default:
		return nil, fmt.Errorf("unrecognised DATABASE_URL scheme: %q", dsn)
	}
}

func envOr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
