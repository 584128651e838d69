// Package schema generates provider-neutral JSON Schema from Go struct
// types via struct tags, for use as tool declarations, the completion
// tool's output schema, and output-specification validation.
package schema

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/sidwan02/subagentengine/registry"
)

// Schema is a provider-neutral object schema: "type": "object" plus a
// properties map and a required-field list.
type Schema struct {
	Properties map[string]any
	Required   []string
}

// MarshalJSON renders the schema as a standard JSON Schema object.
func (s Schema) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"type":       "object",
		"properties": s.Properties,
		"required":   s.Required,
	}
	return json.Marshal(m)
}

// AsMap returns the schema in the plain map[string]any shape
// registry.Declaration.Parameters expects.
func (s Schema) AsMap() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": s.Properties,
		"required":   s.Required,
	}
}

// Generate produces a Schema from a Go struct type T using its `json`
// and `jsonschema` struct tags.
func Generate[T any]() Schema {
	var zero T
	s := jsonschema.Reflect(&zero)
	root := extractRoot(s)
	return Schema{
		Properties: schemaProperties(root),
		Required:   root.Required,
	}
}

// GenerateDeclaration produces a full registry.Declaration for a tool
// whose input is described by T.
func GenerateDeclaration[T any](name, description string) registry.Declaration {
	return registry.Declaration{
		Name:        name,
		Description: description,
		Parameters:  Generate[T]().AsMap(),
	}
}

// OrderedProperties returns property names in declaration order for a
// Go struct type T. The tool_code renderers do not call it: they marshal
// the parameters map, whose keys encoding/json emits in sorted order.
func OrderedProperties[T any]() []string {
	var zero T
	s := extractRoot(jsonschema.Reflect(&zero))
	if s.Properties == nil {
		return nil
	}
	names := make([]string, 0, s.Properties.Len())
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// extractRoot resolves the root schema, following $ref to $defs if
// needed (invopop/jsonschema puts the actual object type under $defs
// when the root type has a name).
func extractRoot(s *jsonschema.Schema) *jsonschema.Schema {
	if s.Ref != "" && s.Definitions != nil {
		for _, def := range s.Definitions {
			if def.Type == "object" {
				return def
			}
		}
	}
	return s
}

// schemaProperties converts an ordered map of properties into a plain
// map[string]any suitable for JSON Schema consumers.
func schemaProperties(s *jsonschema.Schema) map[string]any {
	if s.Properties == nil {
		return nil
	}
	props := make(map[string]any)
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		props[pair.Key] = propertySchema(pair.Value)
	}
	return props
}

func propertySchema(s *jsonschema.Schema) map[string]any {
	m := make(map[string]any)

	if s.Type != "" {
		m["type"] = s.Type
	}
	if s.Description != "" {
		m["description"] = s.Description
	}
	if s.Default != nil {
		m["default"] = s.Default
	}
	if len(s.Enum) > 0 {
		m["enum"] = s.Enum
	}

	// invopop/jsonschema represents nullable (pointer) fields as anyOf
	// [T, null]; surface the non-null branch's type.
	if len(s.AnyOf) > 0 {
		for _, sub := range s.AnyOf {
			if sub.Type != "null" && sub.Type != "" {
				m["type"] = sub.Type
				break
			}
		}
	}

	if s.Properties != nil {
		m["type"] = "object"
		m["properties"] = schemaProperties(s)
		if len(s.Required) > 0 {
			m["required"] = s.Required
		}
	}

	if s.Items != nil {
		m["items"] = propertySchema(s.Items)
	}

	return m
}

// GenerateJSON is a convenience that returns the schema as raw JSON bytes.
func GenerateJSON[T any]() (json.RawMessage, error) {
	return json.Marshal(Generate[T]())
}
