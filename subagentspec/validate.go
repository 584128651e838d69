package subagentspec

import "fmt"

// Validate checks the structural invariants a Definition must satisfy
// before an Executor can be built from it: run limits are sane, every
// input is documented, an output specification (if present) names
// exactly one field, and prompt configuration supplies at least one of
// a system prompt or initial messages. The non-interactive tool
// allow-list check lives in the executor package, since it depends on
// registry.NonInteractiveAllowList and would otherwise create an import
// cycle back into this package's ToolRef.
func Validate(d Definition) error {
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrConfiguration)
	}
	if d.Run.MaxTurns < 1 {
		return fmt.Errorf("%w: max_turns must be >= 1, got %d", ErrConfiguration, d.Run.MaxTurns)
	}
	if d.Run.MaxWallTime.Minutes() < 1 {
		return fmt.Errorf("%w: max_time_minutes must be >= 1, got %.3f", ErrConfiguration, d.Run.MaxWallTime.Minutes())
	}
	for _, in := range d.Inputs {
		if in.Description == "" {
			return fmt.Errorf("%w: input %q has no description", ErrConfiguration, in.Name)
		}
	}
	if d.Output != nil {
		if d.Output.Name == "" {
			return fmt.Errorf("%w: output specification has no field name", ErrConfiguration)
		}
		if len(d.Output.Schema.Required) != 1 {
			return fmt.Errorf("%w: output specification must declare exactly one required field, got %d", ErrConfiguration, len(d.Output.Schema.Required))
		}
	}
	if d.Prompt.SystemPromptTemplate == "" && len(d.Prompt.InitialMessages) == 0 {
		return fmt.Errorf("%w: prompt configuration needs a system prompt or initial messages", ErrConfiguration)
	}
	return nil
}
