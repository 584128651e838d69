// Package chatadapter implements the two chat-backend strategies the
// executor drives: a remote adapter over a first-party model API that
// natively returns structured function calls, and a local adapter over
// a text-only model whose tool calls must be parsed out of free text.
// Both expose the same Adapter interface so the executor never branches
// on which one it holds.
package chatadapter

import (
	"context"

	"github.com/sidwan02/subagentengine/registry"
	"github.com/sidwan02/subagentengine/turn"
)

// FinishReason is the terminal state of one model turn.
type FinishReason string

const (
	FinishNone      FinishReason = ""
	FinishStop      FinishReason = "stop"
	FinishToolUse   FinishReason = "tool_use"
	FinishMaxTokens FinishReason = "max_tokens"
	FinishError     FinishReason = "error"
)

// Chunk is one unit of streamed output. A chunk either carries thought
// text (IsThought true) or a plain text delta; tool invocations are
// surfaced only on the final Chunk once the stream completes, alongside
// FinishReason. LocalAdapter's thought chunks carry the cumulative text
// so far (§4.4 step 3); RemoteAdapter's carry the subject line of one
// thinking delta.
type Chunk struct {
	Text        string
	IsThought   bool
	Invocations []registry.Invocation
	Finish      FinishReason
}

// StreamHandler receives chunks as they are produced. It must return
// promptly: the adapter calls it synchronously from the stream-reading
// goroutine and honors ctx cancellation at the next chunk boundary
// rather than waiting for the handler.
type StreamHandler func(Chunk)

// SendParams is everything one model turn needs beyond history, which
// each adapter owns and threads through internally.
type SendParams struct {
	SystemPrompt string
	Tools        []registry.Declaration
	// ForcedTool, when non-empty, requests tool_choice be pinned to this
	// tool name (used to force the completion tool on the recovery turn).
	ForcedTool string
}

// Adapter is what both chat backends expose: Send appends the next user
// message to the history the adapter tracks and streams back the
// model's reply; SeedHistory preloads that history.
type Adapter interface {
	// Send streams one model turn and returns the accumulated reply as a
	// turn.Message plus its finish reason. onChunk is called for every
	// intermediate chunk; the final chunk's Invocations/Finish mirror the
	// returned values.
	Send(ctx context.Context, message turn.Message, params SendParams, onChunk StreamHandler) (turn.Message, FinishReason, error)

	// SeedHistory appends msgs to the adapter's owned history without
	// triggering a model call, for a definition's initial-messages
	// configuration. Called at most once, before the first Send of a run.
	SeedHistory(msgs []turn.Message)
}

// CompressionStatus reports the outcome of a compression attempt.
type CompressionStatus string

const (
	CompressionNone               CompressionStatus = "NONE"
	CompressionCompressed         CompressionStatus = "COMPRESSED"
	CompressionFailedInflatedToks CompressionStatus = "COMPRESSION_FAILED_INFLATED_TOKEN_COUNT"
)

// CompressionResult is what a CompressionService returns. NewHistory is
// nil unless Status is CompressionCompressed.
type CompressionResult struct {
	NewHistory []turn.Message
	Status     CompressionStatus
}

// CompressionService is the optional, remote-adapter-only chat
// compression hook of §4.3: invoked before a turn with a flag saying
// whether the previous attempt inflated the token count, so the
// service can decide whether to retry compression or give up.
type CompressionService interface {
	Compress(ctx context.Context, history []turn.Message, previousAttemptInflated bool) (CompressionResult, error)
}
