package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/sidwan02/subagentengine/internal/schema"
	"github.com/sidwan02/subagentengine/registry"
)

// globInput mirrors glob's declared schema.
type globInput struct {
	Pattern string `json:"pattern" jsonschema:"required,description=The glob pattern to match files against"`
	Path    string `json:"path,omitempty" jsonschema:"description=The directory to search in"`
}

var globDecl = schema.GenerateDeclaration[globInput]("glob", "Fast file pattern matching, results sorted newest first")

func (h *Host) glob(ctx context.Context, args map[string]any, _ registry.OutputChunkFunc) (string, string, error) {
	pattern := stringArg(args, "pattern")
	if pattern == "" {
		return "", "", fmt.Errorf("pattern is required")
	}

	basePath := stringArg(args, "path")
	if basePath == "" {
		basePath = h.workDir
	}
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return "", "", fmt.Errorf("invalid path: %w", err)
	}

	fsys := os.DirFS(absBase)
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return "", "", fmt.Errorf("glob error: %w", err)
	}
	if len(matches) == 0 {
		return "No files matched the pattern.", "no matches", nil
	}

	type fileEntry struct {
		path    string
		modTime int64
	}
	entries := make([]fileEntry, 0, len(matches))
	for _, m := range matches {
		full := filepath.Join(absBase, m)
		info, err := os.Stat(full)
		if err != nil {
			continue
		}
		entries = append(entries, fileEntry{path: full, modTime: info.ModTime().UnixNano()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].modTime > entries[j].modTime })

	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.path)
		b.WriteByte('\n')
	}
	return b.String(), fmt.Sprintf("%d matches", len(entries)), nil
}
