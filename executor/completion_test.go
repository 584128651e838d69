package executor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidwan02/subagentengine/internal/schema"
	"github.com/sidwan02/subagentengine/registry"
	"github.com/sidwan02/subagentengine/subagentspec"
)

func outputDef(fieldName string, required []string) subagentspec.Definition {
	return subagentspec.Definition{
		Output: &subagentspec.OutputSpec{
			Name: fieldName,
			Schema: schema.Schema{
				Properties: map[string]any{fieldName: map[string]any{"type": "string"}},
				Required:   required,
			},
		},
	}
}

func TestHandleCompletionAcceptsValidOutput(t *testing.T) {
	e := &Executor{def: outputDef("Response", []string{"Response"})}

	inv := registry.Invocation{Arguments: map[string]any{"Response": "done"}}
	outcome := e.handleCompletion(inv, "")

	require.True(t, outcome.accepted)
	assert.JSONEq(t, `{"Response": "done"}`, outcome.result)
}

func TestHandleCompletionAppliesProcessOutput(t *testing.T) {
	def := outputDef("Response", []string{"Response"})
	def.ProcessOutput = func(s string) string { return "wrapped:" + s }
	e := &Executor{def: def}

	outcome := e.handleCompletion(registry.Invocation{Arguments: map[string]any{"Response": "done"}}, "")

	require.True(t, outcome.accepted)
	assert.True(t, strings.HasPrefix(outcome.result, "wrapped:"))
}

func TestHandleCompletionMissingRequiredArgument(t *testing.T) {
	e := &Executor{def: outputDef("Response", []string{"Response"})}

	outcome := e.handleCompletion(registry.Invocation{Arguments: map[string]any{}}, "")

	assert.False(t, outcome.accepted)
	assert.Contains(t, outcome.responseErr, "Response")
}

func TestHandleCompletionSchemaValidationFailure(t *testing.T) {
	def := subagentspec.Definition{
		Output: &subagentspec.OutputSpec{
			Name: "Count",
			Schema: schema.Schema{
				Properties: map[string]any{"Count": map[string]any{"type": "integer"}},
				Required:   []string{"Count"},
			},
		},
	}
	e := &Executor{def: def}

	outcome := e.handleCompletion(registry.Invocation{Arguments: map[string]any{"Count": "not a number"}}, "")

	assert.False(t, outcome.accepted)
	assert.NotEmpty(t, outcome.responseErr)
}

func TestHandleCompletionNoOutputSpecRemote(t *testing.T) {
	e := &Executor{def: subagentspec.Definition{Model: subagentspec.ModelConfig{Remote: &subagentspec.RemoteModelConfig{}}}}

	outcome := e.handleCompletion(registry.Invocation{}, "I looked into it and it's done.")

	require.True(t, outcome.accepted)
	assert.Equal(t, "Task completed.", outcome.result)
}

func TestHandleCompletionNoOutputSpecLocalStripsFragment(t *testing.T) {
	e := &Executor{def: subagentspec.Definition{Model: subagentspec.ModelConfig{Local: &subagentspec.LocalModelConfig{}}}}

	outcome := e.handleCompletion(registry.Invocation{}, "Here is my answer.\n\ncomplete_task()")

	require.True(t, outcome.accepted)
	assert.Equal(t, "Here is my answer.", outcome.result)
}

func TestFallbackCompletionParsesJSON(t *testing.T) {
	e := &Executor{def: outputDef("Response", []string{"Response"}), agentID: "a-1"}

	inv := e.fallbackCompletion(`{"nested": true}`)

	assert.Equal(t, registry.CompletionToolName, inv.ToolName)
	assert.Equal(t, map[string]any{"nested": true}, inv.Arguments["Response"])
}

func TestFallbackCompletionUsesRawTextWhenNotJSON(t *testing.T) {
	e := &Executor{def: outputDef("Response", []string{"Response"}), agentID: "a-1"}

	inv := e.fallbackCompletion("  plain prose answer  ")

	assert.Equal(t, "plain prose answer", inv.Arguments["Response"])
}

func TestStripCompletionFragmentRemovesFunctionCallSyntax(t *testing.T) {
	out := stripCompletionFragment("The answer is 42.\n\ncomplete_task(Response=\"42\")")
	assert.Equal(t, "The answer is 42.", out)
}

func TestStripCompletionFragmentRemovesJSONObjectMentioningNeedle(t *testing.T) {
	out := stripCompletionFragment(`Done. {"complete_task": {"Response": "ok"}} thanks`)
	assert.Equal(t, "Done.  thanks", out)
}

func TestStripCompletionFragmentNoMatchReturnsTrimmedText(t *testing.T) {
	out := stripCompletionFragment("  no completion markers here  ")
	assert.Equal(t, "no completion markers here", out)
}
