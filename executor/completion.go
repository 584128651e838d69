package executor

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/sidwan02/subagentengine/ids"
	"github.com/sidwan02/subagentengine/internal/schema"
	"github.com/sidwan02/subagentengine/registry"
)

// completionOutcome is the result of evaluating one complete_task
// invocation against the definition's output specification.
type completionOutcome struct {
	// accepted means this invocation ends the run with Result.
	accepted bool
	result   string

	// responseErr, when non-empty, is recorded as the tool-response
	// error for a revoked or duplicate completion; the loop continues.
	responseErr string
}

// handleCompletion implements §4.1.3 for the first complete_task
// invocation of a turn. terminalText is the model's full turn text,
// used only for the local-model, no-output-specification fallback.
func (e *Executor) handleCompletion(inv registry.Invocation, terminalText string) completionOutcome {
	if e.def.Output == nil {
		result := "Task completed."
		if e.isLocal() {
			result = stripCompletionFragment(terminalText)
		}
		if e.def.ProcessOutput != nil {
			result = e.def.ProcessOutput(result)
		}
		return completionOutcome{accepted: true, result: result}
	}

	if _, ok := inv.Arguments[e.def.Output.Name]; !ok {
		return completionOutcome{responseErr: fmt.Sprintf("Missing required argument '%s'", e.def.Output.Name)}
	}
	if err := schema.Validate(e.def.Output.Schema, inv.Arguments); err != nil {
		return completionOutcome{responseErr: err.Error()}
	}

	raw, err := json.MarshalIndent(inv.Arguments, "", "  ")
	if err != nil {
		return completionOutcome{responseErr: fmt.Sprintf("failed to serialize output: %s", err)}
	}
	result := string(raw)
	if e.def.ProcessOutput != nil {
		result = e.def.ProcessOutput(result)
	}
	return completionOutcome{accepted: true, result: result}
}

// fallbackCompletion synthesizes the complete_task call a weak local
// model failed to make, per §4.1.7: the terminal text becomes the
// output argument's value, parsed as JSON when it happens to be valid
// JSON, else used raw.
func (e *Executor) fallbackCompletion(text string) registry.Invocation {
	var value any = strings.TrimSpace(text)
	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err == nil {
		value = parsed
	}
	return registry.Invocation{
		CallID:    ids.NewCallID(ids.NewPromptID(e.agentID, e.turn), 0),
		ToolName:  registry.CompletionToolName,
		Arguments: map[string]any{e.def.Output.Name: value},
	}
}

// errAlreadyComplete is the response text for every complete_task
// invocation after the first one in a turn.
const errAlreadyComplete = "Task already marked complete in this turn."

// completeTaskCallPattern matches a free-text complete_task(...) call,
// the shape a local model may emit instead of well-formed JSON.
var completeTaskCallPattern = regexp.MustCompile(`(?s)complete_task\s*\([^)]*\)`)

// stripCompletionFragment removes the complete_task JSON fragment (or
// free-text call) from terminal local-model text, leaving whatever
// prose remains as the fallback result for an agent with no output
// specification. Mirrors internal/toolparse's outermost-object
// isolation but in reverse: find the span, cut it out.
func stripCompletionFragment(text string) string {
	if loc := completeTaskCallPattern.FindStringIndex(text); loc != nil {
		return strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	}
	if span := findObjectMentioning(text, "complete_task"); span != nil {
		return strings.TrimSpace(text[:span[0]] + text[span[1]:])
	}
	return strings.TrimSpace(text)
}

// findObjectMentioning locates the span of the outermost {...} or
// [...] block in text that contains needle, by brace-counting from
// each candidate opening brace. Returns nil if none contains it.
func findObjectMentioning(text, needle string) []int {
	for i, c := range text {
		if c != '{' && c != '[' {
			continue
		}
		open, close := c, matchingClose(c)
		depth := 0
		for j := i; j < len(text); j++ {
			switch rune(text[j]) {
			case open:
				depth++
			case close:
				depth--
			}
			if depth == 0 {
				span := text[i : j+1]
				if strings.Contains(span, needle) {
					return []int{i, j + 1}
				}
				break
			}
		}
	}
	return nil
}

func matchingClose(open rune) rune {
	if open == '{' {
		return '}'
	}
	return ']'
}
