// Package ids generates the identifier formats used throughout the
// sub-agent execution engine: agent-ids, prompt-ids, and call-ids.
package ids

import (
	"crypto/rand"
	"fmt"
)

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewAgentID produces "{parentPrefix}{name}-{6 lowercase alphanumeric}".
// parentPrefix is empty for a top-level agent, or the parent's own
// agent-id followed by a separator for a nested one.
func NewAgentID(parentPrefix, name string) string {
	return fmt.Sprintf("%s%s-%s", parentPrefix, name, randomSuffix(6))
}

// ChildPrefix returns the prefix a child of agentID should use when
// building its own agent-id, so nesting is visible in the identifier.
func ChildPrefix(agentID string) string {
	return agentID + "/"
}

// NewPromptID produces "{agentId}#{turnCounter}".
func NewPromptID(agentID string, turn int) string {
	return fmt.Sprintf("%s#%d", agentID, turn)
}

// NewCallID produces "{promptId}-{index}" for calls the provider did not
// natively supply an ID for.
func NewCallID(promptID string, index int) string {
	return fmt.Sprintf("%s-%d", promptID, index)
}

func randomSuffix(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	out := make([]byte, n)
	for i, v := range b {
		out[i] = suffixAlphabet[int(v)%len(suffixAlphabet)]
	}
	return string(out)
}
