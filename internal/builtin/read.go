package builtin

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sidwan02/subagentengine/internal/schema"
	"github.com/sidwan02/subagentengine/registry"
)

const (
	defaultReadLimit   = 2000
	maxLineLength      = 2000
	truncationSuffix   = "... [truncated]"
	lineNumberTabWidth = 6
)

// readFileInput mirrors read_file's declared schema; Execute reads the
// same fields out of the raw argument map rather than unmarshaling into
// this type directly.
type readFileInput struct {
	FilePath string `json:"file_path" jsonschema:"required,description=The absolute path to the file to read"`
	Offset   *int   `json:"offset,omitempty" jsonschema:"description=The line number to start reading from (1-based)"`
	Limit    *int   `json:"limit,omitempty" jsonschema:"description=The number of lines to read"`
}

var readFileDecl = schema.GenerateDeclaration[readFileInput]("read_file", "Read a file from the local filesystem, with line numbers")

func (h *Host) readFile(ctx context.Context, args map[string]any, _ registry.OutputChunkFunc) (string, string, error) {
	path := stringArg(args, "file_path")
	if path == "" {
		return "", "", fmt.Errorf("file_path is required")
	}

	f, err := os.Open(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	limit := defaultReadLimit
	if v, ok := intArg(args, "limit"); ok && v > 0 {
		limit = v
	}
	offset := 1
	if v, ok := intArg(args, "offset"); ok && v > 0 {
		offset = v
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var b strings.Builder
	lineNum, linesOutput := 0, 0
	for scanner.Scan() {
		lineNum++
		if lineNum < offset {
			continue
		}
		if linesOutput >= limit {
			break
		}
		line := scanner.Text()
		if len(line) > maxLineLength {
			line = line[:maxLineLength-len(truncationSuffix)] + truncationSuffix
		}
		fmt.Fprintf(&b, "%*d\t%s\n", lineNumberTabWidth, lineNum, line)
		linesOutput++
	}
	if err := scanner.Err(); err != nil {
		return "", "", fmt.Errorf("error reading file: %w", err)
	}

	if b.Len() == 0 {
		return "(empty file)", "(empty file)", nil
	}
	out := b.String()
	return out, fmt.Sprintf("%s (%d lines)", filepath.Base(path), linesOutput), nil
}

// readManyFilesInput mirrors read_many_files's declared schema.
type readManyFilesInput struct {
	FilePaths []string `json:"file_paths" jsonschema:"required,description=Absolute paths of the files to read"`
}

var readManyFilesDecl = schema.GenerateDeclaration[readManyFilesInput]("read_many_files", "Read several files in one call and concatenate their contents")

func (h *Host) readManyFiles(ctx context.Context, args map[string]any, onChunk registry.OutputChunkFunc) (string, string, error) {
	paths := stringSliceArg(args, "file_paths")
	if len(paths) == 0 {
		return "", "", fmt.Errorf("file_paths is required")
	}

	var b strings.Builder
	for i, path := range paths {
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
		content, _, err := h.readFile(ctx, map[string]any{"file_path": path}, nil)
		if err != nil {
			fmt.Fprintf(&b, "=== %s ===\nerror: %s\n\n", path, err)
			continue
		}
		fmt.Fprintf(&b, "=== %s ===\n%s\n", path, content)
		if onChunk != nil && i < len(paths)-1 {
			onChunk(fmt.Sprintf("read %s", path))
		}
	}
	return b.String(), fmt.Sprintf("read %d files", len(paths)), nil
}
