package chatadapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/sidwan02/subagentengine/turn"
)

// NoopCompression never compacts; hosts that don't offer a compression
// service pass this so RemoteAdapter's optional hook is a no-op.
type NoopCompression struct{}

// Compress implements CompressionService.
func (NoopCompression) Compress(context.Context, []turn.Message, bool) (CompressionResult, error) {
	return CompressionResult{Status: CompressionNone}, nil
}

// ServerCompression asks the model itself to condense its own history
// into a single summary message, grounded on the same Beta
// context-management endpoint the teacher wires for server-side
// compaction. It estimates token counts with a crude 4-bytes-per-token
// heuristic — good enough to detect the inflate case the executor
// needs to latch on, without pulling in a tokenizer dependency no
// example repo carries.
type ServerCompression struct {
	svc   *anthropic.BetaMessageService
	model anthropic.Model
}

// NewServerCompression builds a ServerCompression backed by client.Beta.Messages.
func NewServerCompression(svc *anthropic.BetaMessageService, model anthropic.Model) *ServerCompression {
	return &ServerCompression{svc: svc, model: model}
}

const compressionInstruction = "Summarize the conversation so far into a single concise message " +
	"preserving all facts, decisions, and open threads needed to continue the task. " +
	"Output only the summary text."

// Compress implements CompressionService.
func (c *ServerCompression) Compress(ctx context.Context, history []turn.Message, previousAttemptInflated bool) (CompressionResult, error) {
	if len(history) == 0 {
		return CompressionResult{Status: CompressionNone}, nil
	}

	before := estimateTokens(history)

	betaMessages := make([]anthropic.BetaMessageParam, 0, len(history)+1)
	for _, m := range history {
		role := anthropic.BetaMessageParamRoleUser
		if m.Role == turn.RoleModel {
			role = anthropic.BetaMessageParamRoleAssistant
		}
		betaMessages = append(betaMessages, anthropic.BetaMessageParam{
			Role:    role,
			Content: []anthropic.BetaContentBlockParamUnion{{OfText: &anthropic.BetaTextBlockParam{Text: m.Text()}}},
		})
	}
	betaMessages = append(betaMessages, anthropic.BetaMessageParam{
		Role:    anthropic.BetaMessageParamRoleUser,
		Content: []anthropic.BetaContentBlockParamUnion{{OfText: &anthropic.BetaTextBlockParam{Text: compressionInstruction}}},
	})

	resp, err := c.svc.New(ctx, anthropic.BetaMessageNewParams{
		Model:     c.model,
		MaxTokens: 4096,
		Messages:  betaMessages,
	})
	if err != nil {
		return CompressionResult{}, fmt.Errorf("chatadapter: server compression: %w", err)
	}

	var summary strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			summary.WriteString(block.AsText().Text)
		}
	}
	compacted := []turn.Message{turn.NewUserText(summary.String())}

	after := estimateTokens(compacted)
	if after >= before {
		return CompressionResult{Status: CompressionFailedInflatedToks}, nil
	}
	return CompressionResult{NewHistory: compacted, Status: CompressionCompressed}, nil
}

func estimateTokens(msgs []turn.Message) int {
	total := 0
	for _, m := range msgs {
		total += len(m.Text()) / 4
	}
	return total
}
