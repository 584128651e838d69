package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type responseOutput struct {
	Response string `json:"Response" jsonschema:"required"`
}

func TestValidateAccepts(t *testing.T) {
	s := Generate[responseOutput]()
	err := Validate(s, map[string]any{"Response": "ok"})
	assert.NoError(t, err)
}

func TestValidateRejectsWrongType(t *testing.T) {
	s := Generate[responseOutput]()
	err := Validate(s, map[string]any{"Response": float64(7)})
	assert.Error(t, err)
}

func TestValidateRejectsMissingRequired(t *testing.T) {
	s := Generate[responseOutput]()
	err := Validate(s, map[string]any{})
	assert.Error(t, err)
}
