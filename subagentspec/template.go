package subagentspec

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Interpolate renders a system-prompt or query template against a set of
// named string inputs plus any derived tokens the caller wants exposed
// (e.g. "directive", "tool_code"). It is idempotent: rendering the same
// template with the same inputs twice yields identical output, since
// text/template has no hidden mutable state across calls.
func Interpolate(tmpl string, values map[string]string) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	data := make(map[string]any, len(values))
	for k, v := range values {
		data[k] = v
	}

	t, err := template.New("subagent").Funcs(template.FuncMap{
		"default": func(defaultVal, val any) any {
			if val == nil || val == "" {
				return defaultVal
			}
			return val
		},
	}).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("subagentspec: parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("subagentspec: render template: %w", err)
	}
	return buf.String(), nil
}

// FallbackQuery is the literal text used when a definition's query
// template is empty.
const FallbackQuery = "Get Started!"

// RenderQuery interpolates the query template against inputs, or
// returns FallbackQuery when no template is configured.
func RenderQuery(d Definition, inputs map[string]string) (string, error) {
	if d.Prompt.QueryTemplate == "" {
		return FallbackQuery, nil
	}
	return Interpolate(d.Prompt.QueryTemplate, inputs)
}
