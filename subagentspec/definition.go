// Package subagentspec describes the immutable configuration of one
// sub-agent: model backend, tools, run limits, and prompt assembly
// inputs. A Definition is built once by the host at startup and never
// mutated; Executor.Create validates it before any run begins.
package subagentspec

import (
	"time"

	"github.com/sidwan02/subagentengine/internal/schema"
)

// SamplingParams controls generation for either model backend.
type SamplingParams struct {
	Temperature     float64
	TopP            float64
	MaxOutputTokens int
}

// RemoteModelConfig selects a first-party remote model.
type RemoteModelConfig struct {
	ModelID  string
	Sampling SamplingParams
}

// LocalModelConfig selects a locally hosted model reachable over the
// local streaming RPC.
type LocalModelConfig struct {
	ModelID      string
	HostEndpoint string
	Sampling     SamplingParams
}

// ModelConfig is exactly one of Remote or Local.
type ModelConfig struct {
	Remote *RemoteModelConfig
	Local  *LocalModelConfig
}

// IsLocal reports whether this definition targets the local, text-only
// chat adapter rather than the remote, native-function-call one.
func (m ModelConfig) IsLocal() bool {
	return m.Local != nil
}

// ToolRef names a tool the agent may call, resolved one of three ways:
// by name against the host's global registry, as an adopted full
// instance, or as a raw declaration used for schema-only prompting.
type ToolRef struct {
	Name        string
	Instance    any
	Declaration *ToolDeclaration
}

// ToolDeclaration is a raw, schema-only tool reference.
type ToolDeclaration struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// InputField is one named string input the query template interpolates.
type InputField struct {
	Name        string
	Description string
	Required    bool
}

// OutputSpec, when present, names the single required argument
// complete_task must be called with and the schema that argument must
// satisfy.
type OutputSpec struct {
	Name   string
	Schema schema.Schema
}

// RunConfig bounds one execution.
type RunConfig struct {
	MaxTurns            int
	MaxWallTime         time.Duration
	SummarizeToolOutput bool
}

// PromptConfig controls system-prompt and initial-message assembly.
type PromptConfig struct {
	SystemPromptTemplate string
	InitialMessages      []string // plain text, appended to history before the first turn
	QueryTemplate        string
	Directive            string
	Reminder             string

	// SkillDirs names directories of markdown procedure files (see
	// internal/config) to splice into the system prompt ahead of the
	// directive. A missing directory is silently skipped.
	SkillDirs []string
}

// Definition is the immutable description of one agent.
type Definition struct {
	Name        string
	DisplayName string
	Description string

	Inputs []InputField
	Output *OutputSpec

	Model ModelConfig
	Tools []ToolRef
	Run   RunConfig
	Prompt PromptConfig

	// ProcessOutput, if set, transforms a validated output before it
	// becomes the final result. The executor never interprets its
	// return value further.
	ProcessOutput func(string) string
}
