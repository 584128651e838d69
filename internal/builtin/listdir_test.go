package builtin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListDirectoryDefaultsToWorkDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	h := NewHost(dir)
	out, display, err := h.listDirectory(context.Background(), map[string]any{}, nil)
	require.NoError(t, err)

	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "sub/")
	assert.Contains(t, display, "2 entries")
}

func TestListDirectoryExplicitPath(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.txt"), []byte("y"), 0o644))

	h := NewHost(dir)
	out, _, err := h.listDirectory(context.Background(), map[string]any{"path": sub}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "b.txt")
}

func TestListDirectoryEmpty(t *testing.T) {
	dir := t.TempDir()
	h := NewHost(dir)
	out, _, err := h.listDirectory(context.Background(), map[string]any{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "(empty directory)", out)
}

func TestListDirectoryNonexistentErrors(t *testing.T) {
	h := NewHost(t.TempDir())
	_, _, err := h.listDirectory(context.Background(), map[string]any{"path": "/no/such/dir"}, nil)
	require.Error(t, err)
}
