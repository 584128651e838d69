// Package toolparse extracts structured tool invocations from free-form
// model text. It is used only by the local chat adapter: providers that
// return native structured function calls never go through this path.
package toolparse

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/sidwan02/subagentengine/ids"
	"github.com/sidwan02/subagentengine/registry"
)

// rawCall is the shape a well-behaved local model emits.
type rawCall struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
}

// Parse extracts zero or more tool invocations from text, assigning
// stable call-ids derived from promptID. An empty result is not an
// error: it is the signal callers use to fall back to synthesizing a
// complete_task call (§4.1.7 of the design).
func Parse(text, promptID string) []registry.Invocation {
	candidate := isolateJSON(text)
	if candidate == "" {
		return parseWithRegex(text, promptID)
	}

	if calls, ok := parseAsJSON(candidate); ok {
		return toInvocations(calls, promptID)
	}

	if calls, ok := parseLoosely(candidate); ok {
		return toInvocations(calls, promptID)
	}

	return parseWithRegex(text, promptID)
}

// isolateJSON strips Markdown JSON fences and returns the outermost
// {...} or [...] span, or "" if none is found.
func isolateJSON(text string) string {
	t := strings.TrimSpace(text)
	t = strings.TrimPrefix(t, "```json")
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimSuffix(t, "```")
	t = strings.TrimSpace(t)

	start := strings.IndexAny(t, "{[")
	if start == -1 {
		return ""
	}
	open := t[start]
	close := byte('}')
	if open == '[' {
		close = ']'
	}
	end := strings.LastIndexByte(t, close)
	if end == -1 || end < start {
		return ""
	}
	return t[start : end+1]
}

// parseAsJSON tries strict encoding/json parsing of either a single
// {name, parameters} object or an array of such objects.
func parseAsJSON(candidate string) ([]rawCall, bool) {
	var single rawCall
	if err := json.Unmarshal([]byte(candidate), &single); err == nil && single.Name != "" {
		return []rawCall{single}, true
	}

	var many []rawCall
	if err := json.Unmarshal([]byte(candidate), &many); err == nil && len(many) > 0 {
		return many, true
	}
	return nil, false
}

// parseLoosely uses gjson to pull {name, parameters} out of valid JSON
// whose shape encoding/json's struct unmarshal rejects (e.g. an array
// with a stray non-object element): elements without a "name" are
// skipped. When gjson also rejects the candidate as invalid JSON, only
// brace-free {...} spans inside it are tried, one by one.
func parseLoosely(candidate string) ([]rawCall, bool) {
	if !gjson.Valid(wrapIfBare(candidate)) {
		// Not valid JSON as a whole: try each flat object on its own.
		return tryEachObject(candidate)
	}

	result := gjson.Parse(candidate)
	if result.IsArray() {
		var calls []rawCall
		for _, item := range result.Array() {
			if c, ok := gjsonToCall(item); ok {
				calls = append(calls, c)
			}
		}
		return calls, len(calls) > 0
	}
	if c, ok := gjsonToCall(result); ok {
		return []rawCall{c}, true
	}
	return nil, false
}

func wrapIfBare(s string) string { return s }

func tryEachObject(candidate string) ([]rawCall, bool) {
	var calls []rawCall
	for _, m := range objectPattern.FindAllString(candidate, -1) {
		if c, ok := gjsonToCall(gjson.Parse(m)); ok {
			calls = append(calls, c)
		}
	}
	return calls, len(calls) > 0
}

var objectPattern = regexp.MustCompile(`\{[^{}]*\}`)

func gjsonToCall(v gjson.Result) (rawCall, bool) {
	name := v.Get("name").String()
	if name == "" {
		return rawCall{}, false
	}
	params := map[string]any{}
	v.Get("parameters").ForEach(func(key, val gjson.Result) bool {
		params[key.String()] = val.Value()
		return true
	})
	return rawCall{Name: name, Parameters: params}, true
}

func toInvocations(calls []rawCall, promptID string) []registry.Invocation {
	out := make([]registry.Invocation, 0, len(calls))
	for i, c := range calls {
		out = append(out, registry.Invocation{
			CallID:    ids.NewCallID(promptID, i),
			ToolName:  c.Name,
			Arguments: c.Parameters,
		})
	}
	return out
}

// --- Regex fallback -------------------------------------------------

// callPattern matches IDENT(args) at the top level of the text, once the
// model has abandoned JSON entirely.
var callPattern = regexp.MustCompile(`(\w+)\(([^)]*)\)`)

// kvPattern matches key=value pairs inside a call's argument list. value
// may be single- or double-quoted (a string) or bare (coerced).
var kvPattern = regexp.MustCompile(`(\w+)\s*=\s*("([^"]*)"|'([^']*)'|[^,]+)`)

func parseWithRegex(text, promptID string) []registry.Invocation {
	// The model may wrap the whole list in [...]; strip that wrapping
	// before scanning so it doesn't get mistaken for a bare tuple.
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "[")
	text = strings.TrimSuffix(text, "]")

	matches := callPattern.FindAllStringSubmatch(text, -1)
	out := make([]registry.Invocation, 0, len(matches))
	for i, m := range matches {
		name := m[1]
		args := parseArgs(m[2])
		out = append(out, registry.Invocation{
			CallID:    ids.NewCallID(promptID, i),
			ToolName:  name,
			Arguments: args,
		})
	}
	return out
}

func parseArgs(raw string) map[string]any {
	args := map[string]any{}
	for _, m := range kvPattern.FindAllStringSubmatch(raw, -1) {
		key := m[1]
		switch {
		case len(m[2]) > 0 && m[2][0] == '"':
			args[key] = m[3]
		case len(m[2]) > 0 && m[2][0] == '\'':
			args[key] = m[4]
		default:
			args[key] = coerce(strings.TrimSpace(m[2]))
		}
	}
	return args
}

// coerce lossily converts a bare (unquoted) regex-captured value to a
// number or boolean when it looks like one; this matches the reference
// behavior even though it misclassifies the literal string "true" and
// similar values — that ambiguity is inherent to bare, unquoted tokens
// and is intentionally preserved rather than special-cased away.
func coerce(value string) any {
	if value == "true" {
		return true
	}
	if value == "false" {
		return false
	}
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return n
	}
	return value
}
