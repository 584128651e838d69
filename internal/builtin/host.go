// Package builtin is the reference host-side tool registry: the eight
// tools on the non-interactive allow-list (§7), each adapted from the
// teacher's interactive tool set to the registry.Invocation/Response
// contract instead of anthropic.ContentBlockParamUnion. It exists to
// give executor.Deps.Registry something real to run against; a host
// embedding this module is free to substitute its own registry.Registry
// implementation instead.
package builtin

import (
	"context"
	"fmt"
	"sync"

	"github.com/sidwan02/subagentengine/registry"
)

// toolFunc executes one invocation's arguments and returns the model-
// facing result plus a human-facing display string.
type toolFunc func(ctx context.Context, args map[string]any, onChunk registry.OutputChunkFunc) (result, display string, err error)

type toolEntry struct {
	decl registry.Declaration
	run  toolFunc
}

// Host is a registry.Registry backed by an in-process tool set scoped
// to one working directory. Two Hosts never share memory state; the
// executor's per-agent isolation (§4.1) relies on that.
type Host struct {
	workDir string
	search  WebSearchFunc

	mu     sync.Mutex
	memory map[string]string

	tools map[string]toolEntry
}

// WebSearchFunc is the injectable search backend behind the web_search
// tool. A Host constructed without one reports the tool as unconfigured
// rather than reaching out to a real search provider.
type WebSearchFunc func(ctx context.Context, query string) ([]SearchResult, error)

// SearchResult is a single web_search hit.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// Option configures a Host at construction time.
type Option func(*Host)

// WithWebSearch installs the search backend for the web_search tool.
func WithWebSearch(fn WebSearchFunc) Option {
	return func(h *Host) { h.search = fn }
}

// NewHost builds the reference registry rooted at workDir.
func NewHost(workDir string, opts ...Option) *Host {
	h := &Host{
		workDir: workDir,
		memory:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.tools = map[string]toolEntry{
		"list_directory":  {listDirectoryDecl, h.listDirectory},
		"read_file":       {readFileDecl, h.readFile},
		"content_grep":    {contentGrepDecl, h.contentGrep},
		"glob":            {globDecl, h.glob},
		"read_many_files": {readManyFilesDecl, h.readManyFiles},
		"memory":          {memoryDecl, h.memoryTool},
		"shell":           {shellDecl, h.shell},
		"web_search":      {webSearchDecl, h.webSearch},
	}
	return h
}

// GetTool returns nil for every name: this registry only exposes raw
// declarations, never full tool instances, so the executor always
// resolves calls through Execute.
func (h *Host) GetTool(name string) (any, bool) { return nil, false }

// GetFunctionDeclarationsFiltered returns declarations for exactly the
// requested names, in order. An unknown name yields a bare declaration
// with an empty schema rather than being dropped, so a misconfigured
// tool list still surfaces itself to the model instead of vanishing.
func (h *Host) GetFunctionDeclarationsFiltered(names []string) []registry.Declaration {
	out := make([]registry.Declaration, 0, len(names))
	for _, n := range names {
		if entry, ok := h.tools[n]; ok {
			out = append(out, entry.decl)
			continue
		}
		out = append(out, registry.Declaration{
			Name:       n,
			Parameters: map[string]any{"type": "object", "properties": map[string]any{}},
		})
	}
	return out
}

// Execute runs one invocation against the matching tool. An unknown
// tool name or a tool-level error both come back as a Response with a
// non-empty Error rather than a Go error, matching registry.Registry's
// contract that cancellation and tool failure are reported the same
// way: as data, not as a call failure.
func (h *Host) Execute(ctx context.Context, inv registry.Invocation, onChunk registry.OutputChunkFunc) (registry.Response, error) {
	entry, ok := h.tools[inv.ToolName]
	if !ok {
		return registry.Response{
			CallID:   inv.CallID,
			ToolName: inv.ToolName,
			Error:    fmt.Sprintf("unknown tool %q", inv.ToolName),
		}, nil
	}

	result, display, err := entry.run(ctx, inv.Arguments, onChunk)
	if err != nil {
		return registry.Response{CallID: inv.CallID, ToolName: inv.ToolName, Error: err.Error()}, nil
	}
	return registry.Response{CallID: inv.CallID, ToolName: inv.ToolName, Result: result, Display: display}, nil
}

var _ registry.Registry = (*Host)(nil)

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func boolArg(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

func stringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
