// Package registry defines the tool-registry contract the executor
// consumes (§4.5 of the design). The registry itself — resolving tool
// names to schemas and dispatching invocations — is a host concern; this
// package only names the shape the executor depends on, plus the
// allow-list of tools considered safe for non-interactive execution.
package registry

import "context"

// Declaration is the JSON-schema-shaped description of one tool, in the
// form the executor hands to a chat adapter for model prompting.
type Declaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema "properties"/"required"/"type" object
}

// Invocation is one model-requested tool call.
type Invocation struct {
	CallID    string
	ToolName  string
	Arguments map[string]any
}

// Response is the result of executing one Invocation. Exactly one of
// Result or Error is meaningful; ToolFailure sets Error.
type Response struct {
	CallID   string
	ToolName string

	// Result is the content that goes back to the model, plus a
	// human-facing surrogate for activity display.
	Result  any
	Display string

	// Error, when non-empty, means the tool did not run or failed.
	Error string
}

// OutputChunkFunc streams partial tool output as it is produced, so the
// executor can forward it as activity.ToolOutputChunk events without
// waiting for the whole invocation to finish.
type OutputChunkFunc func(chunk string)

// Registry is the per-agent filtered view of the host's tool set that
// the executor consumes. Mutations to a child's registry never leak to
// the parent's; the host is responsible for that isolation when
// constructing per-agent views.
type Registry interface {
	// GetTool resolves a registered tool instance by name, for callers
	// that adopted full instances rather than raw declarations.
	GetTool(name string) (any, bool)

	// GetFunctionDeclarationsFiltered returns schemas for exactly the
	// named tools, in the order requested.
	GetFunctionDeclarationsFiltered(names []string) []Declaration

	// Execute runs one invocation. Cancellation of ctx must unblock the
	// tool at the next safe point and cause Execute to return promptly
	// with a Response whose Error describes cancellation.
	Execute(ctx context.Context, inv Invocation, onChunk OutputChunkFunc) (Response, error)
}

// CompletionToolName is the synthetic tool the executor always injects
// and the only way a run terminates with status "goal reached".
const CompletionToolName = "complete_task"
