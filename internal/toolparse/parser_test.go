package toolparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSingleJSONObject(t *testing.T) {
	text := `{"name": "list_directory", "parameters": {"path": "/tmp"}}`
	calls := Parse(text, "agent-1#0")
	require.Len(t, calls, 1)
	assert.Equal(t, "list_directory", calls[0].ToolName)
	assert.Equal(t, "/tmp", calls[0].Arguments["path"])
	assert.Equal(t, "agent-1#0-0", calls[0].CallID)
}

func TestParseFencedJSONArray(t *testing.T) {
	text := "Sure, here you go:\n```json\n" +
		`[{"name": "read_file", "parameters": {"path": "a.go"}}, {"name": "read_file", "parameters": {"path": "b.go"}}]` +
		"\n```"
	calls := Parse(text, "agent-1#1")
	require.Len(t, calls, 2)
	assert.Equal(t, "read_file", calls[0].ToolName)
	assert.Equal(t, "a.go", calls[0].Arguments["path"])
	assert.Equal(t, "b.go", calls[1].Arguments["path"])
	assert.Equal(t, "agent-1#1-0", calls[0].CallID)
	assert.Equal(t, "agent-1#1-1", calls[1].CallID)
}

func TestParseLooseJSONSkipsNonObjectArrayElements(t *testing.T) {
	// encoding/json refuses to unmarshal the whole array into []rawCall
	// because one element is a bare string, not an object. gjson can
	// still walk the array and recover the two real calls around it.
	text := `["retrying...", {"name": "content_grep", "parameters": {"pattern": "foo"}}, {"name": "memory", "parameters": {}}]`
	calls := Parse(text, "agent-2#0")
	require.Len(t, calls, 2)
	assert.Equal(t, "content_grep", calls[0].ToolName)
	assert.Equal(t, "memory", calls[1].ToolName)
}

func TestParseRegexFallback(t *testing.T) {
	text := `list_directory(path="/etc", recursive=true, depth=2)`
	calls := Parse(text, "agent-3#0")
	require.Len(t, calls, 1)
	assert.Equal(t, "list_directory", calls[0].ToolName)
	assert.Equal(t, "/etc", calls[0].Arguments["path"])
	assert.Equal(t, true, calls[0].Arguments["recursive"])
	assert.Equal(t, float64(2), calls[0].Arguments["depth"])
}

func TestParseRegexFallbackMultipleCalls(t *testing.T) {
	text := "First: read_file(path='a.go')\nThen: read_file(path='b.go')"
	calls := Parse(text, "agent-4#0")
	require.Len(t, calls, 2)
	assert.Equal(t, "a.go", calls[0].Arguments["path"])
	assert.Equal(t, "b.go", calls[1].Arguments["path"])
}

func TestParseNoCallsReturnsEmpty(t *testing.T) {
	calls := Parse("I have finished my analysis, nothing else to do.", "agent-5#0")
	assert.Empty(t, calls)
}

func TestParseSingleObjectMissingParameters(t *testing.T) {
	text := `{"name": "memory"}`
	calls := Parse(text, "agent-6#0")
	require.Len(t, calls, 1)
	assert.Equal(t, "memory", calls[0].ToolName)
	assert.Empty(t, calls[0].Arguments)
}

func TestIsolateJSONHandlesPlainText(t *testing.T) {
	assert.Equal(t, "", isolateJSON("no braces here"))
}
