package ids

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAgentID(t *testing.T) {
	id := NewAgentID("", "researcher")
	parts := strings.SplitN(id, "-", 2)
	require.Len(t, parts, 2)
	assert.Equal(t, "researcher", parts[0])
	assert.Len(t, parts[1], 6)
	for _, r := range parts[1] {
		assert.True(t, strings.ContainsRune(suffixAlphabet, r))
	}
}

func TestNewAgentIDNesting(t *testing.T) {
	parent := NewAgentID("", "planner")
	child := NewAgentID(ChildPrefix(parent), "coder")
	assert.True(t, strings.HasPrefix(child, parent+"/coder-"))
}

func TestNewPromptAndCallID(t *testing.T) {
	agentID := "planner-ab12cd"
	prompt := NewPromptID(agentID, 3)
	assert.Equal(t, "planner-ab12cd#3", prompt)

	call := NewCallID(prompt, 0)
	assert.Equal(t, "planner-ab12cd#3-0", call)
}

func TestNewAgentIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewAgentID("", "x")
		assert.False(t, seen[id], "collision at iteration %d", i)
		seen[id] = true
	}
}
