// Package worker bundles a Temporal worker that polls one task queue for the
// agent-execution workflow and its activity set. Grounded on
// goadesign-goa-ai's runtime/agent/engine/temporal (Engine.workerForQueue,
// workerBundle, configureInstrumentation/applyWorkerInstrumentation), cut
// down to the single concrete engine binding this module uses directly:
// no engine.Engine abstraction, no per-queue multiplexing, just one
// worker.Worker registered with workflow.TemporalAgentExecutionWorkflow and
// the three activity structs.
package worker

import (
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/trussdev/agentcore/llm"
	"github.com/trussdev/agentcore/tools"
	wf "github.com/trussdev/agentcore/workflow"
)

// Options configures the worker's target queue and its dependency-bound
// activity sets.
type Options struct {
	// TaskQueue is the Temporal task queue this worker polls. Required.
	TaskQueue string

	// WorkflowActivities implements CreateRun, CreateRunStep, GetRunMemory,
	// LoadAgentConfig, FinalizeRun.
	WorkflowActivities *wf.Activities
	// LLMActivities implements LLMStreamPublish.
	LLMActivities *llm.Activities
	// ToolActivities implements ExecuteTool.
	ToolActivities *tools.Activities

	// WorkerOptions is forwarded to worker.New for concurrency/identity
	// tuning. The zero value uses Temporal's defaults.
	WorkerOptions worker.Options

	// DisableTracing skips installing the OTEL tracing interceptor. Enabled
	// by default, matching goadesign-goa-ai's temporal engine default.
	DisableTracing bool
}

// New constructs a Temporal worker.Worker for Options.TaskQueue, registers
// TemporalAgentExecutionWorkflow and the full activity set, and wires OTEL
// tracing into the worker's interceptor chain unless disabled. The caller is
// responsible for calling Run (or Start/Stop) on the returned worker.
func New(c client.Client, opts Options) (worker.Worker, error) {
	if opts.TaskQueue == "" {
		return nil, fmt.Errorf("worker: task queue is required")
	}
	if opts.WorkflowActivities == nil || opts.LLMActivities == nil || opts.ToolActivities == nil {
		return nil, fmt.Errorf("worker: all three activity sets are required")
	}

	workerOpts := opts.WorkerOptions
	if !opts.DisableTracing {
		tracer, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{})
		if err != nil {
			return nil, fmt.Errorf("worker: configure tracing interceptor: %w", err)
		}
		workerOpts.Interceptors = append(workerOpts.Interceptors, tracer)
	}

	w := worker.New(c, opts.TaskQueue, workerOpts)

	w.RegisterWorkflowWithOptions(wf.TemporalAgentExecutionWorkflow, workflow.RegisterOptions{
		Name: wf.WorkflowName,
	})

	registerActivities(w, opts.WorkflowActivities,
		wf.ActivityCreateRun, wf.ActivityCreateRunStep, wf.ActivityGetRunMemory,
		wf.ActivityLoadAgentConfig, wf.ActivityFinalizeRun)
	registerMethod(w, opts.LLMActivities.LLMStreamPublish, wf.ActivityLLMStreamPublish)
	registerMethod(w, opts.ToolActivities.ExecuteTool, wf.ActivityExecuteTool)

	return w, nil
}

// registerActivities registers the named Activities methods, looking each
// constant in names up in an explicit map of Go method values (no
// reflection); this helper just reduces RegisterOptions boilerplate for the
// workflow-activities struct's five methods.
func registerActivities(w worker.Worker, a *wf.Activities, names ...string) {
	methods := map[string]any{
		wf.ActivityCreateRun:       a.CreateRun,
		wf.ActivityCreateRunStep:   a.CreateRunStep,
		wf.ActivityGetRunMemory:    a.GetRunMemory,
		wf.ActivityLoadAgentConfig: a.LoadAgentConfig,
		wf.ActivityFinalizeRun:     a.FinalizeRun,
	}
	for _, name := range names {
		registerMethod(w, methods[name], name)
	}
}

func registerMethod(w worker.Worker, fn any, name string) {
	w.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}
