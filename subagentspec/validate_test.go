package subagentspec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sidwan02/subagentengine/internal/schema"
)

func baseDefinition() Definition {
	return Definition{
		Name: "researcher",
		Run: RunConfig{
			MaxTurns:    10,
			MaxWallTime: 5 * time.Minute,
		},
		Prompt: PromptConfig{
			SystemPromptTemplate: "You are a researcher.",
		},
	}
}

func TestValidateAccepts(t *testing.T) {
	assert.NoError(t, Validate(baseDefinition()))
}

func TestValidateRejectsZeroMaxTurns(t *testing.T) {
	d := baseDefinition()
	d.Run.MaxTurns = 0
	assert.ErrorIs(t, Validate(d), ErrConfiguration)
}

func TestValidateRejectsShortWallTime(t *testing.T) {
	d := baseDefinition()
	d.Run.MaxWallTime = 30 * time.Second
	assert.ErrorIs(t, Validate(d), ErrConfiguration)
}

func TestValidateRejectsUndocumentedInput(t *testing.T) {
	d := baseDefinition()
	d.Inputs = []InputField{{Name: "topic"}}
	assert.ErrorIs(t, Validate(d), ErrConfiguration)
}

func TestValidateRejectsMissingPrompt(t *testing.T) {
	d := baseDefinition()
	d.Prompt.SystemPromptTemplate = ""
	assert.ErrorIs(t, Validate(d), ErrConfiguration)
}

func TestValidateAcceptsInitialMessagesInsteadOfSystemPrompt(t *testing.T) {
	d := baseDefinition()
	d.Prompt.SystemPromptTemplate = ""
	d.Prompt.InitialMessages = []string{"hello"}
	assert.NoError(t, Validate(d))
}

func TestValidateRejectsMultiFieldOutput(t *testing.T) {
	d := baseDefinition()
	d.Output = &OutputSpec{
		Name: "Response",
		Schema: schema.Schema{
			Properties: map[string]any{"a": map[string]any{"type": "string"}, "b": map[string]any{"type": "string"}},
			Required:   []string{"a", "b"},
		},
	}
	assert.ErrorIs(t, Validate(d), ErrConfiguration)
}

func TestValidateAcceptsSingleFieldOutput(t *testing.T) {
	d := baseDefinition()
	d.Output = &OutputSpec{
		Name: "Response",
		Schema: schema.Schema{
			Properties: map[string]any{"Response": map[string]any{"type": "string"}},
			Required:   []string{"Response"},
		},
	}
	assert.NoError(t, Validate(d))
}
