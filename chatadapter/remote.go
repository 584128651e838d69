package chatadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/sidwan02/subagentengine/ids"
	"github.com/sidwan02/subagentengine/registry"
	"github.com/sidwan02/subagentengine/turn"
)

// MessageStreamer abstracts the Anthropic Messages API so RemoteAdapter
// can be tested against a fake. Production callers pass
// NewMessageStreamer(client.Messages).
type MessageStreamer interface {
	NewStreaming(ctx context.Context, params anthropic.MessageNewParams) *ssestream.Stream[anthropic.MessageStreamEventUnion]
}

type messageServiceAdapter struct{ svc *anthropic.MessageService }

func (a *messageServiceAdapter) NewStreaming(ctx context.Context, params anthropic.MessageNewParams) *ssestream.Stream[anthropic.MessageStreamEventUnion] {
	return a.svc.NewStreaming(ctx, params)
}

// NewMessageStreamer wraps a real anthropic.MessageService as a MessageStreamer.
func NewMessageStreamer(svc *anthropic.MessageService) MessageStreamer {
	return &messageServiceAdapter{svc: svc}
}

// RemoteAdapter is the Chat Adapter (remote) of §4.3: a thin streaming
// wrapper over a first-party API that natively emits function-call and
// thought parts. It owns conversation history as anthropic.MessageParam
// and applies circuit breaking around every call, so a flaky backend
// degrades the run instead of hanging it; requests are rate limited only
// when the adapter is built with WithRateLimit.
type RemoteAdapter struct {
	streamer  MessageStreamer
	model     anthropic.Model
	maxTokens int64
	agentID   string
	turnNo    int

	history []anthropic.MessageParam

	compression        CompressionService
	previousInflated   bool

	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[*anthropic.Message]
}

// RemoteOption configures a RemoteAdapter at construction.
type RemoteOption func(*RemoteAdapter)

// WithCompressionService installs the optional chat-compression hook.
func WithCompressionService(svc CompressionService) RemoteOption {
	return func(r *RemoteAdapter) { r.compression = svc }
}

// WithRateLimit caps outbound requests per second, with burst allowing
// short spikes (e.g. a turn immediately followed by a recovery turn).
func WithRateLimit(perSecond float64, burst int) RemoteOption {
	return func(r *RemoteAdapter) { r.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// NewRemoteAdapter constructs a RemoteAdapter for one agent's run.
// agentID feeds call-id generation when the provider needs a fallback.
func NewRemoteAdapter(streamer MessageStreamer, model anthropic.Model, maxTokens int64, agentID string, opts ...RemoteOption) *RemoteAdapter {
	r := &RemoteAdapter{
		streamer:  streamer,
		model:     model,
		maxTokens: maxTokens,
		agentID:   agentID,
		breaker: gobreaker.NewCircuitBreaker[*anthropic.Message](gobreaker.Settings{
			Name:        "chatadapter.remote",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SeedHistory implements Adapter.
func (r *RemoteAdapter) SeedHistory(msgs []turn.Message) {
	r.history = append(r.history, toAnthropicHistory(msgs)...)
}

// Send implements Adapter.
func (r *RemoteAdapter) Send(ctx context.Context, message turn.Message, params SendParams, onChunk StreamHandler) (turn.Message, FinishReason, error) {
	r.turnNo++

	if r.compression != nil {
		result, err := r.compression.Compress(ctx, fromAnthropicHistory(r.history), r.previousInflated)
		if err != nil {
			return turn.Message{}, FinishError, fmt.Errorf("chatadapter: compression: %w", err)
		}
		switch result.Status {
		case CompressionCompressed:
			r.history = toAnthropicHistory(result.NewHistory)
			r.previousInflated = false
		case CompressionFailedInflatedToks:
			r.previousInflated = true
		default:
			r.previousInflated = false
		}
	}

	r.history = append(r.history, toAnthropicMessage(message))

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return turn.Message{}, FinishError, fmt.Errorf("chatadapter: rate limit wait: %w", err)
		}
	}

	apiParams := anthropic.MessageNewParams{
		Model:     r.model,
		MaxTokens: r.maxTokens,
		Messages:  r.history,
	}
	if params.SystemPrompt != "" {
		apiParams.System = []anthropic.TextBlockParam{{Text: params.SystemPrompt}}
	}
	if len(params.Tools) > 0 {
		apiParams.Tools = toAnthropicTools(params.Tools)
	}
	if params.ForcedTool != "" {
		apiParams.ToolChoice = anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: params.ForcedTool},
		}
	}

	msg, err := r.breaker.Execute(func() (*anthropic.Message, error) {
		return r.stream(ctx, apiParams, onChunk)
	})
	if err != nil {
		return turn.Message{}, FinishError, fmt.Errorf("chatadapter: remote send: %w", err)
	}

	r.history = append(r.history, msg.ToParam())

	reply := r.fromResponse(*msg)
	finish := toFinishReason(msg.StopReason)

	onChunk(Chunk{Invocations: reply.Invocations(), Finish: finish})

	return reply, finish, nil
}

func (r *RemoteAdapter) stream(ctx context.Context, params anthropic.MessageNewParams, onChunk StreamHandler) (*anthropic.Message, error) {
	stream := r.streamer.NewStreaming(ctx, params)
	msg := anthropic.Message{}

	for stream.Next() {
		if err := ctx.Err(); err != nil {
			stream.Close()
			return nil, err
		}
		event := stream.Current()
		if err := msg.Accumulate(event); err != nil {
			stream.Close()
			return nil, fmt.Errorf("accumulate: %w", err)
		}

		switch {
		case event.Type == "content_block_delta" && event.Delta.Type == "text_delta" && event.Delta.Text != "":
			onChunk(Chunk{Text: event.Delta.Text})
		case event.Type == "content_block_delta" && event.Delta.Type == "thinking_delta" && event.Delta.Thinking != "":
			onChunk(Chunk{Text: extractThoughtSubject(event.Delta.Thinking), IsThought: true})
		}
	}
	if err := stream.Err(); err != nil {
		stream.Close()
		return nil, err
	}
	stream.Close()
	return &msg, nil
}

// extractThoughtSubject isolates a short subject line from a (possibly
// multi-paragraph) thought segment, per §4.1.6's thought-extraction
// requirement: the first non-empty line, trimmed, capped for display.
func extractThoughtSubject(thought string) string {
	for _, line := range strings.Split(thought, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		const maxLen = 120
		if len(line) > maxLen {
			line = line[:maxLen] + "…"
		}
		return line
	}
	return ""
}

func toFinishReason(sr anthropic.StopReason) FinishReason {
	switch sr {
	case anthropic.StopReasonEndTurn:
		return FinishStop
	case anthropic.StopReasonToolUse:
		return FinishToolUse
	case anthropic.StopReasonMaxTokens:
		return FinishMaxTokens
	default:
		return FinishStop
	}
}

// --- turn.Message <-> anthropic conversions -------------------------

func toAnthropicMessage(m turn.Message) anthropic.MessageParam {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.Parts))
	for _, p := range m.Parts {
		switch part := p.(type) {
		case turn.TextPart:
			blocks = append(blocks, anthropic.NewTextBlock(part.Text))
		case turn.ToolResponsePart:
			text := part.Response.Display
			if text == "" {
				text = fmt.Sprintf("%v", part.Response.Result)
			}
			isError := part.Response.Error != ""
			if isError {
				text = part.Response.Error
			}
			blocks = append(blocks, anthropic.NewToolResultBlock(part.Response.CallID, text, isError))
		}
	}
	if m.Role == turn.RoleModel {
		return anthropic.NewAssistantMessage(blocks...)
	}
	return anthropic.NewUserMessage(blocks...)
}

func toAnthropicHistory(msgs []turn.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, len(msgs))
	for i, m := range msgs {
		out[i] = toAnthropicMessage(m)
	}
	return out
}

func fromAnthropicHistory(msgs []anthropic.MessageParam) []turn.Message {
	// Only used to hand the compression service a readable snapshot; a
	// full round-trip back through tool-response reconstruction is not
	// needed since the compression service only reads text content.
	out := make([]turn.Message, 0, len(msgs))
	for _, m := range msgs {
		role := turn.RoleUser
		if m.Role == anthropic.MessageParamRoleAssistant {
			role = turn.RoleModel
		}
		var text strings.Builder
		for _, block := range m.Content {
			if block.OfText != nil {
				text.WriteString(block.OfText.Text)
			}
		}
		out = append(out, turn.Message{Role: role, Parts: []turn.Part{turn.TextPart{Text: text.String()}}})
	}
	return out
}

func (r *RemoteAdapter) fromResponse(msg anthropic.Message) turn.Message {
	parts := make([]turn.Part, 0, len(msg.Content))
	callIndex := 0
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			if t := block.AsText(); t.Text != "" {
				parts = append(parts, turn.TextPart{Text: t.Text})
			}
		case "tool_use":
			tu := block.AsToolUse()
			callID := tu.ID
			if callID == "" {
				callID = ids.NewCallID(ids.NewPromptID(r.agentID, r.turnNo), callIndex)
			}
			callIndex++
			var args map[string]any
			_ = json.Unmarshal(tu.Input, &args)
			parts = append(parts, turn.ToolInvocationPart{Invocation: registry.Invocation{
				CallID:    callID,
				ToolName:  tu.Name,
				Arguments: args,
			}})
		}
	}
	return turn.Message{Role: turn.RoleModel, Parts: parts}
}

func toAnthropicTools(decls []registry.Declaration) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(decls))
	for _, d := range decls {
		properties, _ := d.Parameters["properties"].(map[string]any)
		required, _ := d.Parameters["required"].([]string)
		out = append(out, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        d.Name,
				Description: param.NewOpt(d.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: properties,
					Required:   required,
				},
			},
		})
	}
	return out
}
