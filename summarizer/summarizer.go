// Package summarizer implements the optional post-processing step
// (§4.6) that condenses a tool response's raw content into a short
// bulleted summary before it goes back into history.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"

	"github.com/sidwan02/subagentengine/chatadapter"
	"github.com/sidwan02/subagentengine/subagentspec"
)

// ErrNotImplemented is returned for a remote model configuration. The
// reference behavior explicitly refuses remote-model summarization
// rather than spending a remote call on what is meant to be a cheap,
// local post-processing step.
var ErrNotImplemented = errors.New("summarizer: not implemented for remote model configuration")

const summarizePrompt = "Summarize the following tool output as a short bulleted list, " +
	"preserving concrete facts (paths, names, numbers, errors) a model would need to continue " +
	"its task. Output only the bullets, nothing else.\n\n---\n\n"

// Summarizer condenses tool response content via a local model.
type Summarizer struct {
	streamer chatadapter.LocalStreamer
}

// New builds a Summarizer backed by an OpenAI-compatible local
// completions endpoint, the same protocol the local chat adapter uses.
func New(streamer chatadapter.LocalStreamer) *Summarizer {
	return &Summarizer{streamer: streamer}
}

// Summarize implements C6. content is the raw tool response payload to
// condense; model selects and configures the backend to condense it
// with. Returns ErrNotImplemented when model is a remote configuration.
func (s *Summarizer) Summarize(ctx context.Context, content string, model subagentspec.ModelConfig) (string, error) {
	if !model.IsLocal() {
		return "", ErrNotImplemented
	}

	params := openai.ChatCompletionNewParams{
		Model: model.Local.ModelID,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(summarizePrompt + content),
		},
	}
	if model.Local.Sampling.Temperature != 0 {
		params.Temperature = openai.Float(model.Local.Sampling.Temperature)
	}

	stream := s.streamer.NewStreaming(ctx, params)
	var out strings.Builder
	for stream.Next() {
		if err := ctx.Err(); err != nil {
			stream.Close()
			return "", err
		}
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		out.WriteString(chunk.Choices[0].Delta.Content)
	}
	if err := stream.Err(); err != nil {
		stream.Close()
		return "", fmt.Errorf("summarizer: stream: %w", err)
	}
	stream.Close()

	summary := strings.TrimSpace(out.String())
	if summary == "" {
		return "", fmt.Errorf("summarizer: model returned empty summary")
	}
	return summary, nil
}
