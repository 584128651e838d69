package builtin

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/sidwan02/subagentengine/internal/schema"
	"github.com/sidwan02/subagentengine/registry"
)

const maxOutputBytes = 30_000

// contentGrepInput mirrors content_grep's declared schema.
type contentGrepInput struct {
	Pattern         string `json:"pattern" jsonschema:"required,description=The regex pattern to search for"`
	Path            string `json:"path,omitempty" jsonschema:"description=File or directory to search in"`
	OutputMode      string `json:"output_mode,omitempty" jsonschema:"description=content, files_with_matches, or count"`
	Glob            string `json:"glob,omitempty" jsonschema:"description=Glob pattern to filter files"`
	FileType        string `json:"type,omitempty" jsonschema:"description=File type to search, e.g. go or py"`
	Context         *int   `json:"context,omitempty" jsonschema:"description=Lines of context around matches"`
	CaseInsensitive bool   `json:"case_insensitive,omitempty" jsonschema:"description=Case insensitive search"`
}

var contentGrepDecl = schema.GenerateDeclaration[contentGrepInput]("content_grep", "Search file contents with a regex pattern via ripgrep")

func (h *Host) contentGrep(ctx context.Context, args map[string]any, _ registry.OutputChunkFunc) (string, string, error) {
	pattern := stringArg(args, "pattern")
	if pattern == "" {
		return "", "", fmt.Errorf("pattern is required")
	}

	rgPath, err := exec.LookPath("rg")
	if err != nil {
		return "", "", fmt.Errorf("ripgrep (rg) is not installed")
	}

	rgArgs := buildRgArgs(args, pattern)
	if path := stringArg(args, "path"); path != "" {
		rgArgs = append(rgArgs, path)
	}

	cmd := exec.CommandContext(ctx, rgPath, rgArgs...)
	cmd.Dir = h.workDir

	output, err := cmd.CombinedOutput()
	text := string(output)

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			if exitErr.ExitCode() == 1 {
				return "No matches found.", "no matches", nil
			}
			return "", "", fmt.Errorf("rg error: %s", text)
		}
		return "", "", fmt.Errorf("failed to run rg: %w", err)
	}

	if len(text) > maxOutputBytes {
		text = text[:maxOutputBytes] + "\n... [output truncated]"
	}
	return text, "matches found", nil
}

func buildRgArgs(args map[string]any, pattern string) []string {
	var rgArgs []string

	switch stringArg(args, "output_mode") {
	case "content":
		rgArgs = append(rgArgs, "-n")
	case "count":
		rgArgs = append(rgArgs, "-c")
	default:
		rgArgs = append(rgArgs, "-l")
	}

	if boolArg(args, "case_insensitive") {
		rgArgs = append(rgArgs, "-i")
	}
	if g := stringArg(args, "glob"); g != "" {
		rgArgs = append(rgArgs, "--glob", g)
	}
	if ft := stringArg(args, "type"); ft != "" {
		rgArgs = append(rgArgs, "--type", ft)
	}
	if c, ok := intArg(args, "context"); ok && c > 0 {
		rgArgs = append(rgArgs, "-C", strconv.Itoa(c))
	}

	rgArgs = append(rgArgs, pattern)
	return rgArgs
}
