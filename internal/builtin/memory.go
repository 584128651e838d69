package builtin

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sidwan02/subagentengine/internal/schema"
	"github.com/sidwan02/subagentengine/registry"
)

// memoryInput mirrors memory's declared schema. The store is a plain
// in-run scratchpad: it lives for the lifetime of one Host and is never
// persisted, since a sub-agent run has no durable session to write it
// back to (§9's session/file concept is out of scope here).
type memoryInput struct {
	Action string `json:"action" jsonschema:"required,enum=read,enum=write,enum=list,description=read a key, write a key, or list all keys"`
	Key    string `json:"key,omitempty" jsonschema:"description=The memory key"`
	Value  string `json:"value,omitempty" jsonschema:"description=The value to store, for action=write"`
}

var memoryDecl = schema.GenerateDeclaration[memoryInput]("memory", "Read or write a scratch note under a key for later turns in this run")

func (h *Host) memoryTool(ctx context.Context, args map[string]any, _ registry.OutputChunkFunc) (string, string, error) {
	action := stringArg(args, "action")
	key := stringArg(args, "key")

	h.mu.Lock()
	defer h.mu.Unlock()

	switch action {
	case "write":
		if key == "" {
			return "", "", fmt.Errorf("key is required for action=write")
		}
		h.memory[key] = stringArg(args, "value")
		return fmt.Sprintf("stored %q", key), "stored", nil

	case "read":
		if key == "" {
			return "", "", fmt.Errorf("key is required for action=read")
		}
		v, ok := h.memory[key]
		if !ok {
			return "", "", fmt.Errorf("no memory stored under key %q", key)
		}
		return v, "read " + key, nil

	case "list":
		if len(h.memory) == 0 {
			return "(no memory stored)", "(empty)", nil
		}
		keys := make([]string, 0, len(h.memory))
		for k := range h.memory {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return strings.Join(keys, "\n"), fmt.Sprintf("%d keys", len(keys)), nil

	default:
		return "", "", fmt.Errorf("unknown memory action %q", action)
	}
}
