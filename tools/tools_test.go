package tools_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trussdev/agentcore/agentcoreerr"
	"github.com/trussdev/agentcore/agentmodel"
	"github.com/trussdev/agentcore/tools"
)

type echoTool struct{}

func (echoTool) Name() string                 { return "echo" }
func (echoTool) Description() string          { return "echoes its input" }
func (echoTool) Schema() json.RawMessage      { return json.RawMessage(`{"type":"object"}`) }
func (echoTool) Execute(_ context.Context, args map[string]any) (any, error) {
	return args, nil
}

type strictTool struct{}

func (strictTool) Name() string            { return "strict" }
func (strictTool) Description() string     { return "requires a query argument" }
func (strictTool) Schema() json.RawMessage {
	return json.RawMessage(`{"type":"object","required":["query"],"properties":{"query":{"type":"string"}}}`)
}
func (strictTool) Execute(_ context.Context, args map[string]any) (any, error) {
	return args, nil
}

type failingTool struct{ err error }

func (f failingTool) Name() string            { return "failing" }
func (failingTool) Description() string       { return "always fails" }
func (failingTool) Schema() json.RawMessage   { return json.RawMessage(`{"type":"object"}`) }
func (f failingTool) Execute(context.Context, map[string]any) (any, error) {
	return nil, f.err
}

func TestExecuteToolUnregistered(t *testing.T) {
	acts := tools.NewActivities(tools.NewRegistry())
	call, err := agentmodel.NewToolCall("c1", "missing", nil)
	require.NoError(t, err)

	_, err = acts.ExecuteTool(context.Background(), call)
	require.Error(t, err)
	kind, ok := agentcoreerr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, agentcoreerr.KindToolUnregistered, kind)
}

func TestExecuteToolSuccess(t *testing.T) {
	registry := tools.NewRegistry()
	registry.Register(echoTool{})
	acts := tools.NewActivities(registry)

	call, err := agentmodel.NewToolCall("c1", "echo", map[string]any{"x": "y"})
	require.NoError(t, err)
	result, err := acts.ExecuteTool(context.Background(), call)
	require.NoError(t, err)
	require.Equal(t, "c1", result.ToolCallID)
	content, err := result.CanonicalContent()
	require.NoError(t, err)
	require.JSONEq(t, `{"x":"y"}`, content)
}

func TestExecuteToolRejectsArgumentsFailingSchema(t *testing.T) {
	registry := tools.NewRegistry()
	registry.Register(strictTool{})
	acts := tools.NewActivities(registry)

	call, err := agentmodel.NewToolCall("c1", "strict", map[string]any{})
	require.NoError(t, err)
	_, err = acts.ExecuteTool(context.Background(), call)
	require.Error(t, err)
	kind, ok := agentcoreerr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, agentcoreerr.KindInvalidInput, kind)
}

func TestExecuteToolHandlerFailureWrapsKind(t *testing.T) {
	registry := tools.NewRegistry()
	registry.Register(failingTool{err: assertionError("boom")})
	acts := tools.NewActivities(registry)

	call, err := agentmodel.NewToolCall("c1", "failing", nil)
	require.NoError(t, err)
	_, err = acts.ExecuteTool(context.Background(), call)
	require.Error(t, err)
	kind, ok := agentcoreerr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, agentcoreerr.KindToolExecutionFailed, kind)
}

func TestParseArgumentsFromString(t *testing.T) {
	m, err := tools.ParseArguments(`{"query":"go"}`)
	require.NoError(t, err)
	require.Equal(t, "go", m["query"])
}

func TestParseArgumentsMalformedString(t *testing.T) {
	_, err := tools.ParseArguments(`{not json`)
	require.Error(t, err)
	kind, ok := agentcoreerr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, agentcoreerr.KindInvalidInput, kind)
}

func TestParseArgumentsNil(t *testing.T) {
	m, err := tools.ParseArguments(nil)
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Empty(t, m)
}

type assertionError string

func (e assertionError) Error() string { return string(e) }
