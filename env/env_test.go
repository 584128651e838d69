package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeListsEntries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	out := Describe(HostContext{WorkDir: dir}, "gemma-2-9b")

	assert.Contains(t, out, dir)
	assert.Contains(t, out, "a.go")
	assert.Contains(t, out, "sub/")
}

func TestDescribeMissingDir(t *testing.T) {
	out := Describe(HostContext{WorkDir: "/nonexistent/path/for/testing"}, "")
	assert.Contains(t, out, "unavailable")
}
