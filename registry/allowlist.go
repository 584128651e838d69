package registry

// NonInteractiveAllowList names the tools safe for non-interactive
// sub-agent execution: no operator confirmation prompts, no destructive
// defaults. Executor.Create rejects any agent definition that names a
// tool outside this set.
var NonInteractiveAllowList = map[string]bool{
	"list_directory":  true,
	"read_file":       true,
	"content_grep":    true,
	"glob":            true,
	"read_many_files": true,
	"memory":          true,
	"shell":           true,
	"web_search":      true,

	// The completion tool is always injected by the executor and is
	// exempt from the definition-time allow-list check; it never comes
	// from a definition's own tool list.
}

// IsAllowListed reports whether name is safe for non-interactive use.
func IsAllowListed(name string) bool {
	return NonInteractiveAllowList[name]
}
