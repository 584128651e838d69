package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type SimpleInput struct {
	FilePath string `json:"file_path" jsonschema:"required,description=The absolute path to the file"`
	Content  string `json:"content" jsonschema:"required,description=The content to write"`
}

type InputWithOptional struct {
	Pattern string `json:"pattern" jsonschema:"required,description=The glob pattern"`
	Path    string `json:"path,omitempty" jsonschema:"description=The directory to search in"`
}

type InputWithPointer struct {
	FilePath string `json:"file_path" jsonschema:"required"`
	Offset   *int   `json:"offset,omitempty" jsonschema:"description=Line offset to start reading from"`
	Limit    *int   `json:"limit,omitempty" jsonschema:"description=Number of lines to read"`
}

type InputWithBool struct {
	FilePath   string `json:"file_path" jsonschema:"required"`
	OldString  string `json:"old_string" jsonschema:"required"`
	NewString  string `json:"new_string" jsonschema:"required"`
	ReplaceAll bool   `json:"replace_all,omitempty"`
}

func TestGenerateSimple(t *testing.T) {
	s := Generate[SimpleInput]()

	fp, ok := s.Properties["file_path"].(map[string]any)
	require.True(t, ok, "file_path should exist")
	assert.Equal(t, "string", fp["type"])
	assert.Equal(t, "The absolute path to the file", fp["description"])

	ct, ok := s.Properties["content"].(map[string]any)
	require.True(t, ok, "content should exist")
	assert.Equal(t, "string", ct["type"])

	assert.Contains(t, s.Required, "file_path")
	assert.Contains(t, s.Required, "content")
}

func TestGenerateOptionalFields(t *testing.T) {
	s := Generate[InputWithOptional]()

	assert.Contains(t, s.Required, "pattern")
	assert.NotContains(t, s.Required, "path")

	path, ok := s.Properties["path"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "The directory to search in", path["description"])
}

func TestGeneratePointerFields(t *testing.T) {
	s := Generate[InputWithPointer]()

	assert.Contains(t, s.Required, "file_path")

	_, hasOffset := s.Properties["offset"]
	assert.True(t, hasOffset, "offset should be in properties")

	_, hasLimit := s.Properties["limit"]
	assert.True(t, hasLimit, "limit should be in properties")
}

func TestGenerateBoolField(t *testing.T) {
	s := Generate[InputWithBool]()

	ra, ok := s.Properties["replace_all"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "boolean", ra["type"])
}

func TestGenerateJSONRoundtrip(t *testing.T) {
	s := Generate[SimpleInput]()

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))

	assert.Equal(t, "object", m["type"])
	assert.NotNil(t, m["properties"])
	assert.NotNil(t, m["required"])
}

func TestOrderedProperties(t *testing.T) {
	names := OrderedProperties[SimpleInput]()
	assert.Equal(t, []string{"file_path", "content"}, names)
}

func TestGenerateDeclaration(t *testing.T) {
	decl := GenerateDeclaration[SimpleInput]("write_file", "Write a file")
	assert.Equal(t, "write_file", decl.Name)
	assert.Equal(t, "object", decl.Parameters["type"])
	props, ok := decl.Parameters["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "file_path")
}
