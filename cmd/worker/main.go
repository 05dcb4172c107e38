// Command worker runs the Temporal worker that polls a single task queue for
// TemporalAgentExecutionWorkflow and its activity set. Grounded on
// goadesign-goa-ai's registry/cmd/registry main (envOr/envIntOr helpers,
// "load config from environment, dial dependencies, run, log fatal on
// error" shape), adapted to this module's store/llm/pubsub/tools wiring.
//
// # Configuration
//
// Environment variables:
//
//	DATABASE_URL        - sqlite:// or postgres:// DSN (default: "sqlite://:memory:")
//	REDIS_URL           - Redis connection URL for stream publishing (required)
//	TEMPORAL_URL        - Temporal frontend address (default: "localhost:7233")
//	TEMPORAL_NAMESPACE  - Temporal namespace (default: "default")
//	TEMPORAL_TASK_QUEUE - Task queue this worker polls (default: "truss-agent-queue")
//	TEMPORAL_TLS_ENABLED - "true" to dial Temporal over TLS (default: "false")
//	LLM_PROVIDER        - "anthropic" or "openai" (default: "anthropic")
//	ANTHROPIC_API_KEY   - Anthropic API key (required when LLM_PROVIDER=anthropic)
//	OPENAI_API_KEY      - OpenAI API key (required when LLM_PROVIDER=openai)
//	OPENAI_MODEL        - Default OpenAI model (default: "gpt-4o-mini")
//	SEARXNG_URL         - SearXNG instance base URL for web_search (optional)
//	BRAVE_API_KEY       - Brave Search API key for web_search (optional)
package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/trussdev/agentcore/llm"
	"github.com/trussdev/agentcore/llm/anthropic"
	"github.com/trussdev/agentcore/llm/openai"
	"github.com/trussdev/agentcore/llm/pubsub"
	"github.com/trussdev/agentcore/store"
	"github.com/trussdev/agentcore/store/postgres"
	"github.com/trussdev/agentcore/store/sqlite"
	"github.com/trussdev/agentcore/telemetry"
	"github.com/trussdev/agentcore/tools"
	"github.com/trussdev/agentcore/tools/websearch"
	workerpkg "github.com/trussdev/agentcore/worker"
	wf "github.com/trussdev/agentcore/workflow"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()
	logger := telemetry.NewClueLogger()

	databaseURL := envOr("DATABASE_URL", "sqlite://:memory:")
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	hostPort := envOr("TEMPORAL_URL", "localhost:7233")
	namespace := envOr("TEMPORAL_NAMESPACE", "default")
	taskQueue := envOr("TEMPORAL_TASK_QUEUE", "truss-agent-queue")

	provider, err := selectProvider(envOr("LLM_PROVIDER", "anthropic"))
	if err != nil {
		return err
	}

	st, err := openStore(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: strings.TrimPrefix(redisURL, "redis://")})
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Warn(ctx, "close redis", "err", err)
		}
	}()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	publisher := pubsub.New(rdb)

	registry := tools.NewRegistry()
	registry.Register(websearch.New(websearch.ConfigFromEnv(lookupEnv)))

	clientOpts := client.Options{HostPort: hostPort, Namespace: namespace}
	if envOr("TEMPORAL_TLS_ENABLED", "false") == "true" {
		clientOpts.ConnectionOptions.TLS = &tls.Config{}
	}
	temporalClient, err := client.Dial(clientOpts)
	if err != nil {
		return fmt.Errorf("dial temporal: %w", err)
	}
	defer temporalClient.Close()

	w, err := workerpkg.New(temporalClient, workerpkg.Options{
		TaskQueue:          taskQueue,
		WorkflowActivities: wf.NewActivities(st),
		LLMActivities:      llm.NewActivities(provider, publisher, st, registry, logger),
		ToolActivities:     tools.NewActivities(registry),
	})
	if err != nil {
		return fmt.Errorf("construct worker: %w", err)
	}

	logger.Info(ctx, "starting worker", "task_queue", taskQueue, "host_port", hostPort)
	return w.Run(worker.InterruptCh())
}

// openStore dispatches to the sqlite or postgres adapter based on dsn's
// scheme, matching spec.md §6's storage-contract deployment note that either
// backend satisfies store.Store identically.
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

// selectProvider dispatches on LLM_PROVIDER to the requested llm.Provider
// implementation. This is the extension point llm/provider.go's Provider
// interface exists for: a second backend is a new package plus one case
// here, not a change to anything in package llm, workflow, or tools.
func selectProvider(name string) (llm.Provider, error) {
	switch name {
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER=anthropic")
		}
		return anthropic.NewFromAPIKey(apiKey), nil
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		return openai.NewFromAPIKey(apiKey, envOr("OPENAI_MODEL", "gpt-4o-mini")), nil
	default:
		return nil, fmt.Errorf("unrecognised LLM_PROVIDER %q", name)
	}
}

func envOr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func lookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}
