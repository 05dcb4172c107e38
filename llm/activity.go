package llm

import (
	"context"

	"go.temporal.io/sdk/activity"

	"github.com/trussdev/agentcore/agentcoreerr"
	"github.com/trussdev/agentcore/agentmodel"
	"github.com/trussdev/agentcore/llm/pubsub"
	"github.com/trussdev/agentcore/store"
	"github.com/trussdev/agentcore/telemetry"
	"github.com/trussdev/agentcore/tools"
)

// Activities implements the LLMStreamPublish activity (spec.md §4.D),
// wiring a Provider, a pubsub.Publisher, and the storage contract together.
type Activities struct {
	Provider  Provider
	Publisher pubsub.Publisher
	Store     store.Store
	Registry  *tools.Registry
	Logger    telemetry.Logger
}

// NewActivities constructs an Activities. logger may be nil, in which case a
// no-op logger is used. registry supplies tool Description/Schema metadata
// for advertising to the model; it may be nil, in which case only tool
// names are forwarded.
func NewActivities(provider Provider, publisher pubsub.Publisher, st store.Store, registry *tools.Registry, logger telemetry.Logger) *Activities {
	if logger == nil {
		logger = telemetry.NewNoopLogger()
	}
	return &Activities{Provider: provider, Publisher: publisher, Store: st, Registry: registry, Logger: logger}
}

// LLMStreamPublish invokes the provider in streaming mode, publishes each
// chunk verbatim to stream:{session_id}, accumulates the assistant Message,
// persists it via CreateRunStep, and returns it. Persistence happens before
// return on every success path; if it fails, the activity fails (spec.md
// §4.D step 5).
func (a *Activities) LLMStreamPublish(ctx context.Context, agentConfig agentmodel.AgentConfig, messages agentmodel.AgentMemory, sessionID, runID string) (msg agentmodel.Message, err error) {
	defer func() { err = agentcoreerr.ToTemporal(err) }()

	var specs []ToolSpec
	if a.Registry != nil {
		specs = toolSpecsFromRegistry(a.Registry, agentConfig.Tools)
	} else {
		specs = make([]ToolSpec, 0, len(agentConfig.Tools))
		for _, name := range agentConfig.Tools {
			specs = append(specs, ToolSpec{Name: name})
		}
	}

	channel := pubsub.Channel(sessionID)
	// The publisher is closed on every exit path, including a failure to
	// start the stream, under a shielded scope: a publish or accumulation
	// failure must not mask a close error, nor vice versa (spec.md §4.D
	// step 6). It is the one Publisher these Activities were built with, so
	// every invocation closes the same instance.
	defer func() {
		if cerr := a.Publisher.Close(); cerr != nil {
			a.Logger.Warn(ctx, "llm: publisher close failed", "error", cerr, "session_id", sessionID)
		}
	}()

	stream, err := a.Provider.StreamCompletion(ctx, messages, agentConfig.LLMConfig, specs)
	if err != nil {
		return agentmodel.Message{}, agentcoreerr.Wrap(agentcoreerr.KindProviderError, err, "start stream completion")
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil {
			a.Logger.Warn(ctx, "llm: provider stream close failed", "error", cerr, "session_id", sessionID)
		}
	}()

	acc := newAccumulator()
	count := 0
	for chunk := range stream.Chunks {
		safeHeartbeat(ctx)
		count++
		acc.apply(chunk)
		if perr := a.Publisher.Publish(ctx, channel, chunk); perr != nil {
			return agentmodel.Message{}, agentcoreerr.Wrap(agentcoreerr.KindProviderError, perr, "publish chunk")
		}
	}
	if err := stream.Err(); err != nil {
		return agentmodel.Message{}, agentcoreerr.Wrap(agentcoreerr.KindProviderError, err, "stream completion")
	}
	if count == 0 {
		return agentmodel.Message{}, agentcoreerr.New(agentcoreerr.KindEmptyCompletion, "provider yielded zero chunks")
	}

	msg, err = acc.message()
	if err != nil {
		return agentmodel.Message{}, err
	}

	if _, err := a.Store.CreateRunStep(ctx, runID, msg); err != nil {
		return agentmodel.Message{}, agentcoreerr.Wrap(agentcoreerr.KindStorageError, err, "persist assistant message")
	}
	return msg, nil
}

// safeHeartbeat records a heartbeat if ctx carries a live activity
// environment, and is a no-op otherwise (spec.md §4.D step 4: "heartbeats
// outside an activity runtime ... must be safely ignored"). The temporal SDK
// panics if RecordHeartbeat is called without an activity execution
// environment attached to ctx, which unit tests deliberately don't provide.
func safeHeartbeat(ctx context.Context) {
	defer func() { _ = recover() }()
	activity.RecordHeartbeat(ctx)
}

// toolSpecsFromRegistry adapts a tools.Registry into the ToolSpec list the
// provider needs to advertise tool schemas to the model. Kept here (rather
// than in package tools) so package tools need not import package llm.
func toolSpecsFromRegistry(registry *tools.Registry, names []string) []ToolSpec {
	specs := make([]ToolSpec, 0, len(names))
	for _, name := range names {
		t, ok := registry.Get(name)
		if !ok {
			continue
		}
		specs = append(specs, ToolSpec{Name: t.Name(), Description: t.Description(), Schema: t.Schema()})
	}
	return specs
}
