// Package env provides the host-context provider the executor calls
// while assembling a system prompt: a short textual block describing
// the working directory the agent is operating in (§4.1.5 step 3).
package env

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// HostContext is the subset of host state the description needs. It
// mirrors the work-dir/env context-key pair the host would otherwise
// stash on a context.Context.
type HostContext struct {
	WorkDir string
	Env     map[string]string
}

// Describe renders the "Environment Context" block: the working
// directory and a one-level folder listing. model is accepted for
// parity with the host interface (§6) even though the reference
// listing format does not currently vary by model.
func Describe(hostCtx HostContext, model string) string {
	var b strings.Builder
	b.WriteString("Environment Context:\n")
	fmt.Fprintf(&b, "Working directory: %s\n", hostCtx.WorkDir)

	entries, err := os.ReadDir(hostCtx.WorkDir)
	if err != nil {
		fmt.Fprintf(&b, "Folder listing unavailable: %s\n", err)
		return b.String()
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	b.WriteString("Folder listing:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %s\n", name)
	}
	return b.String()
}
