package summarizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sidwan02/subagentengine/subagentspec"
)

func TestSummarizeRemoteModelNotImplemented(t *testing.T) {
	s := New(nil)
	_, err := s.Summarize(context.Background(), "some content", subagentspec.ModelConfig{
		Remote: &subagentspec.RemoteModelConfig{ModelID: "claude-opus"},
	})
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestSummarizePromptMentionsBullets(t *testing.T) {
	assert.Contains(t, summarizePrompt, "bulleted")
}
