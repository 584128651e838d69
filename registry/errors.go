package registry

import "errors"

// ErrUnauthorized names the error for a call to a tool outside the
// agent's filtered tool set. The executor's dispatch path does not
// return this value: it records the fixed response error "Unauthorized
// tool call" and never calls Registry.Execute in that case.
var ErrUnauthorized = errors.New("registry: tool not authorized for this agent")

// ErrToolFailure wraps an error string a tool's own execution produced,
// preserved with its original message per the propagation policy.
type ErrToolFailure struct {
	ToolName string
	Message  string
}

func (e *ErrToolFailure) Error() string {
	return "registry: tool " + e.ToolName + " failed: " + e.Message
}
