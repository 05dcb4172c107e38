// Package agentcoreerr defines the error-kind vocabulary shared across the
// storage, tool-dispatch, and LLM-streaming activities. Each kind carries a
// Retryable flag so the Temporal workflow's error envelope (see package
// workflow) can classify an activity failure without importing activity
// internals.
package agentcoreerr

import (
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"
)

// Kind identifies one of the error categories from the error handling design.
type Kind string

const (
	// KindInvalidInput marks malformed workflow input or unparseable tool
	// arguments. Never retried.
	KindInvalidInput Kind = "invalid_input"
	// KindNotFound marks a missing session, agent config, or run.
	KindNotFound Kind = "not_found"
	// KindToolUnregistered marks a tool name absent from the registry.
	// Never retried.
	KindToolUnregistered Kind = "tool_unregistered"
	// KindToolExecutionFailed marks a handler that raised during execution.
	// Retried by the activity's default policy.
	KindToolExecutionFailed Kind = "tool_execution_failed"
	// KindEmptyCompletion marks a provider stream that yielded zero chunks.
	// Retried.
	KindEmptyCompletion Kind = "empty_completion"
	// KindProviderError marks a provider API failure. Retried.
	KindProviderError Kind = "provider_error"
	// KindStorageError marks a transient storage failure. Retried.
	KindStorageError Kind = "storage_error"
	// KindCancelled marks signal-driven workflow termination. Never retried.
	KindCancelled Kind = "cancelled"
)

// retryable records, per kind, whether the engine's default retry policy
// should apply. Non-retryable kinds are wrapped by ToTemporal so that
// Temporal treats them as terminal failures.
var retryable = map[Kind]bool{
	KindInvalidInput:        false,
	KindNotFound:            false,
	KindToolUnregistered:    false,
	KindToolExecutionFailed: true,
	KindEmptyCompletion:     true,
	KindProviderError:       true,
	KindStorageError:        true,
	KindCancelled:           false,
}

// Error is the typed error returned by core activities and the workflow body.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New constructs an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error of the given kind that preserves the original
// cause for Unwrap/errors.Is chains.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the engine's default retry policy should apply
// to this error kind.
func (e *Error) Retryable() bool {
	return retryable[e.Kind]
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error, returning
// ("", false) otherwise.
func KindOf(err error) (Kind, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return "", false
}

// ToTemporal converts err into a *temporal.ApplicationError carrying this
// package's Retryable classification as Temporal's NonRetryable flag, if err
// is (or wraps) an *Error; any other error, including nil, passes through
// unchanged. Activities call this on their return path so a non-retryable
// Kind (ToolUnregistered, InvalidInput, NotFound, Cancelled) surfaces after
// one attempt instead of being retried by the activity's RetryPolicy. The
// original *Error is kept as the Cause so KindOf(err) still resolves its
// Kind on the workflow side. The workflow body's own errors (e.g. the
// cancellation check in runLoop) never pass through an activity boundary
// and so are never wrapped here; classifyFailure inspects those directly.
func ToTemporal(err error) error {
	var ae *Error
	if !errors.As(err, &ae) {
		return err
	}
	return temporal.NewApplicationErrorWithOptions(ae.Error(), string(ae.Kind), temporal.ApplicationErrorOptions{
		NonRetryable: !ae.Retryable(),
		Cause:        ae,
	})
}
