package builtin

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sidwan02/subagentengine/internal/schema"
	"github.com/sidwan02/subagentengine/registry"
)

// listDirectoryInput mirrors list_directory's declared schema.
type listDirectoryInput struct {
	Path string `json:"path,omitempty" jsonschema:"description=The directory to list; defaults to the agent's working directory"`
}

var listDirectoryDecl = schema.GenerateDeclaration[listDirectoryInput]("list_directory", "List the entries of a directory")

func (h *Host) listDirectory(ctx context.Context, args map[string]any, _ registry.OutputChunkFunc) (string, string, error) {
	dir := stringArg(args, "path")
	if dir == "" {
		dir = h.workDir
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", "", fmt.Errorf("failed to list %s: %w", dir, err)
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

	if len(names) == 0 {
		return "(empty directory)", "(empty directory)", nil
	}
	return strings.Join(names, "\n"), fmt.Sprintf("%d entries", len(names)), nil
}
