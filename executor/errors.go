package executor

import "errors"

// Error taxonomy of §7. ConfigurationError is subagentspec.ErrConfiguration
// (returned by Create). Unauthorized and ToolFailure have values in the
// registry package (registry.ErrUnauthorized, registry.ErrToolFailure),
// but dispatch records both as plain Error strings on the tool response
// rather than as those values. The sentinels below name the remaining
// entries; Run reports those outcomes through Result.Reason, and only
// ErrRecoveryFailed's message is emitted, as an activity error.
var (
	// ErrProtocolViolation means a model stream produced no tool calls
	// and no completion, with no output specification to fall back on.
	ErrProtocolViolation = errors.New("executor: model stream produced no tool calls and no completion")

	// ErrValidationFailure means complete_task's arguments failed the
	// output schema or omitted the required output field.
	ErrValidationFailure = errors.New("executor: complete_task arguments failed validation")

	// ErrTimeout means the per-run wall timer elapsed.
	ErrTimeout = errors.New("executor: wall-clock timeout")

	// ErrAborted means a hard interrupt terminated the run.
	ErrAborted = errors.New("executor: aborted by operator")

	// ErrRecoveryFailed means the grace-window recovery turn did not
	// yield a valid completion.
	ErrRecoveryFailed = errors.New("executor: recovery turn did not yield a valid completion")
)
