// Package tools implements the tool registry and ExecuteTool activity
// (component C). Grounded on haasonsaas-nexus's internal/agent ToolRegistry
// (name->Tool map, thread-safe Register/Get) and Tool interface
// (Name/Description/Schema/Execute), adapted to agentmodel's ToolCall/
// ToolCallResult types and the Temporal-activity boundary described in
// spec.md §4.C.
package tools

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/trussdev/agentcore/agentcoreerr"
	"github.com/trussdev/agentcore/agentmodel"
)

// Tool is one callable capability an agent may invoke. Handlers receive the
// ToolCall's argument map once it has passed schema validation (see
// Activities.ExecuteTool) and return a value that must be JSON-marshalable;
// it becomes ToolCallResult.Content.
type Tool interface {
	// Name is the identifier the model uses to select this tool. Must match
	// an entry in the invoking AgentConfig's Tools list.
	Name() string
	// Description is the natural-language description surfaced to the
	// model alongside Schema when the provider is told which tools it may
	// call.
	Description() string
	// Schema is the JSON Schema describing valid arguments.
	Schema() json.RawMessage
	// Execute runs the tool. Returning an error produces a
	// KindToolExecutionFailed activity error; no tool-role step is persisted
	// for it, and once the activity's retries are exhausted the workflow
	// run fails.
	Execute(ctx context.Context, arguments map[string]any) (any, error)
}

// Registry is a thread-safe name -> Tool map.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds tool, replacing any existing registration with the same
// name.
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

// Get returns the tool registered under name, if any.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the names of every registered tool, for advertising to the
// model alongside each tool's Description/Schema.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Activities exposes ExecuteTool as a Temporal activity method so the
// worker can register it bound to a concrete Registry (see package worker).
type Activities struct {
	Registry *Registry
}

// NewActivities constructs an Activities bound to registry.
func NewActivities(registry *Registry) *Activities {
	return &Activities{Registry: registry}
}

// ExecuteTool dispatches call to its registered handler and returns the
// correlated ToolCallResult. Per spec.md §4.C:
//
//   - an unregistered tool name produces KindToolUnregistered;
//   - call.Arguments arrives as the map[string]any of the accumulated
//     ToolCall and is validated against the tool's Schema, a violation
//     producing KindInvalidInput; string-form arguments are not accepted
//     here, and ExecuteTool does not call ParseArguments;
//   - a handler error is wrapped as KindToolExecutionFailed, not
//     propagated raw; no tool-role step is persisted for a failed call.
func (a *Activities) ExecuteTool(ctx context.Context, call agentmodel.ToolCall) (result agentmodel.ToolCallResult, err error) {
	defer func() { err = agentcoreerr.ToTemporal(err) }()
	tool, ok := a.Registry.Get(call.Name)
	if !ok {
		return agentmodel.ToolCallResult{}, agentcoreerr.New(agentcoreerr.KindToolUnregistered, "tool %q is not registered", call.Name)
	}
	if err := validateArguments(call.Arguments, tool.Schema()); err != nil {
		return agentmodel.ToolCallResult{}, agentcoreerr.Wrap(agentcoreerr.KindInvalidInput, err, "tool %q arguments", call.Name)
	}
	raw, err := tool.Execute(ctx, call.Arguments)
	if err != nil {
		return agentmodel.ToolCallResult{}, agentcoreerr.Wrap(agentcoreerr.KindToolExecutionFailed, err, "tool %q", call.Name)
	}
	return agentmodel.ToolCallResult{ToolCallID: call.ID, Content: raw}, nil
}

// validateArguments checks arguments against schema, a tool's declared JSON
// Schema. A nil/empty schema (a tool that takes no constrained shape) always
// passes.
func validateArguments(arguments map[string]any, schema json.RawMessage) error {
	if len(schema) == 0 {
		return nil
	}
	var schemaDoc any
	if err := json.Unmarshal(schema, &schemaDoc); err != nil {
		return err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaDoc); err != nil {
		return err
	}
	compiled, err := c.Compile("schema.json")
	if err != nil {
		return err
	}
	// jsonschema validates against decoded JSON values (map[string]any is
	// already that shape), not Go structs, so arguments passes through
	// unchanged rather than round-tripping through json.Marshal/Unmarshal.
	return compiled.Validate(map[string]any(arguments))
}

// ParseArguments normalizes a tool argument payload that may arrive either
// as a JSON object string (raw provider form) or an already-decoded map
// (the common case once agentmodel.ToolCall has been assembled by package
// llm). A nil/empty raw value yields an empty, non-nil map.
func ParseArguments(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case string:
		if v == "" {
			return map[string]any{}, nil
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return nil, agentcoreerr.Wrap(agentcoreerr.KindInvalidInput, err, "parse tool arguments")
		}
		return m, nil
	default:
		return nil, agentcoreerr.New(agentcoreerr.KindInvalidInput, "unsupported tool argument form %T", raw)
	}
}
