package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/sidwan02/subagentengine/internal/schema"
	"github.com/sidwan02/subagentengine/registry"
)

// webSearchInput mirrors web_search's declared schema.
type webSearchInput struct {
	Query          string   `json:"query" jsonschema:"required,description=The search query"`
	AllowedDomains []string `json:"allowed_domains,omitempty" jsonschema:"description=Only include results from these domains"`
	BlockedDomains []string `json:"blocked_domains,omitempty" jsonschema:"description=Exclude results from these domains"`
}

var webSearchDecl = schema.GenerateDeclaration[webSearchInput]("web_search", "Search the web for information")

func (h *Host) webSearch(ctx context.Context, args map[string]any, _ registry.OutputChunkFunc) (string, string, error) {
	query := stringArg(args, "query")
	if query == "" {
		return "", "", fmt.Errorf("query is required")
	}
	if h.search == nil {
		return "", "", fmt.Errorf("search backend not configured")
	}

	results, err := h.search(ctx, query)
	if err != nil {
		return "", "", fmt.Errorf("search failed: %w", err)
	}

	filtered := filterSearchResults(results, stringSliceArg(args, "allowed_domains"), stringSliceArg(args, "blocked_domains"))
	if len(filtered) == 0 {
		return "No results found.", "no results", nil
	}

	var b strings.Builder
	for i, r := range filtered {
		fmt.Fprintf(&b, "%d. [%s](%s)\n   %s\n\n", i+1, r.Title, r.URL, r.Snippet)
	}
	return b.String(), fmt.Sprintf("%d results", len(filtered)), nil
}

func filterSearchResults(results []SearchResult, allowed, blocked []string) []SearchResult {
	if len(allowed) == 0 && len(blocked) == 0 {
		return results
	}

	allowSet := make(map[string]bool, len(allowed))
	for _, d := range allowed {
		allowSet[strings.ToLower(d)] = true
	}
	blockSet := make(map[string]bool, len(blocked))
	for _, d := range blocked {
		blockSet[strings.ToLower(d)] = true
	}

	var filtered []SearchResult
	for _, r := range results {
		domain := extractDomain(r.URL)
		if len(allowSet) > 0 && !allowSet[domain] {
			continue
		}
		if blockSet[domain] {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

func extractDomain(url string) string {
	u := strings.ToLower(url)
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	if idx := strings.Index(u, "/"); idx > 0 {
		u = u[:idx]
	}
	return u
}
