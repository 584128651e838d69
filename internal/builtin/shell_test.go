package builtin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellSimpleCommand(t *testing.T) {
	h := NewHost(t.TempDir())
	out, _, err := h.shell(context.Background(), map[string]any{"command": "echo hello"}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "hello")
}

func TestShellNonZeroExitReportsAsError(t *testing.T) {
	h := NewHost(t.TempDir())
	_, _, err := h.shell(context.Background(), map[string]any{"command": "exit 42"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "42")
}

func TestShellEmptyCommandErrors(t *testing.T) {
	h := NewHost(t.TempDir())
	_, _, err := h.shell(context.Background(), map[string]any{"command": ""}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command is required")
}

func TestShellMultilineOutput(t *testing.T) {
	h := NewHost(t.TempDir())
	out, _, err := h.shell(context.Background(), map[string]any{"command": "echo line1; echo line2; echo line3"}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "line1")
	assert.Contains(t, out, "line2")
	assert.Contains(t, out, "line3")
}

func TestShellRunsInHostWorkDir(t *testing.T) {
	dir := t.TempDir()
	h := NewHost(dir)
	out, _, err := h.shell(context.Background(), map[string]any{"command": "pwd"}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, dir)
}

func TestShellTimeout(t *testing.T) {
	h := NewHost(t.TempDir())
	_, _, err := h.shell(context.Background(), map[string]any{
		"command": "sleep 10",
		"timeout": float64(300),
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestShellStreamsChunksViaOnChunk(t *testing.T) {
	h := NewHost(t.TempDir())
	var chunks []string
	_, _, err := h.shell(context.Background(), map[string]any{"command": "echo a; echo b"}, func(chunk string) {
		chunks = append(chunks, chunk)
	})
	require.NoError(t, err)
	assert.NotEmpty(t, chunks)
}
