package websearch_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trussdev/agentcore/tools/websearch"
)

func TestExecuteStubModeWhenUnconfigured(t *testing.T) {
	tool := websearch.New(websearch.Config{})
	out, err := tool.Execute(context.Background(), map[string]any{"query": "golang"})
	require.NoError(t, err)
	resp, ok := out.(websearch.Response)
	require.True(t, ok)
	require.Equal(t, "stub", resp.Source)
	require.Len(t, resp.Results, 5)
	require.Contains(t, resp.Results[0].Title, "golang")
}

func TestExecuteRequiresQuery(t *testing.T) {
	tool := websearch.New(websearch.Config{})
	_, err := tool.Execute(context.Background(), map[string]any{})
	require.Error(t, err)
}

func TestExecuteRespectsResultCount(t *testing.T) {
	tool := websearch.New(websearch.Config{})
	out, err := tool.Execute(context.Background(), map[string]any{"query": "go", "result_count": float64(2)})
	require.NoError(t, err)
	resp := out.(websearch.Response)
	require.Len(t, resp.Results, 2)
}

func TestConfigFromEnv(t *testing.T) {
	env := map[string]string{"SEARXNG_URL": "http://localhost:8080"}
	cfg := websearch.ConfigFromEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	require.Equal(t, "http://localhost:8080", cfg.SearXNGURL)
	require.Empty(t, cfg.BraveAPIKey)
}
