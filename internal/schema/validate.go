package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonschema5 "github.com/santhosh-tekuri/jsonschema/v5"
)

// Validate checks data against an object Schema, compiling it fresh each
// call. Agent output specifications are small and validated at most once
// per turn, so recompilation cost is not a concern.
func Validate(s Schema, data map[string]any) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("schema: marshal schema: %w", err)
	}

	compiler := jsonschema5.NewCompiler()
	if err := compiler.AddResource("output.json", bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("schema: add resource: %w", err)
	}
	compiled, err := compiler.Compile("output.json")
	if err != nil {
		return fmt.Errorf("schema: compile: %w", err)
	}

	// jsonschema/v5 validates decoded JSON values (map[string]any with
	// float64 numbers), which is exactly what data already is when it
	// came from a model's tool-call arguments.
	if err := compiled.Validate(data); err != nil {
		return err
	}
	return nil
}
