package chatadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/ssestream"

	"github.com/sidwan02/subagentengine/ids"
	"github.com/sidwan02/subagentengine/internal/toolparse"
	"github.com/sidwan02/subagentengine/registry"
	"github.com/sidwan02/subagentengine/turn"
)

// LocalStreamer abstracts a local, OpenAI-compatible chat-completions
// endpoint (llama.cpp, vLLM, and similar servers all speak this
// protocol), so LocalAdapter can be tested against a fake. Production
// callers pass NewLocalStreamer(client.Chat.Completions).
type LocalStreamer interface {
	NewStreaming(ctx context.Context, params openai.ChatCompletionNewParams) *ssestream.Stream[openai.ChatCompletionChunk]
}

type completionServiceAdapter struct{ svc *openai.ChatCompletionService }

func (a *completionServiceAdapter) NewStreaming(ctx context.Context, params openai.ChatCompletionNewParams) *ssestream.Stream[openai.ChatCompletionChunk] {
	return a.svc.NewStreaming(ctx, params)
}

// NewLocalStreamer wraps a real openai.ChatCompletionService as a LocalStreamer.
func NewLocalStreamer(svc *openai.ChatCompletionService) LocalStreamer {
	return &completionServiceAdapter{svc: svc}
}

// LocalAdapter is the Chat Adapter (local) of §4.4: a streaming wrapper
// over a text-only model reachable at a host endpoint. It manages its
// own history, injects the system instruction and reminder text on the
// wire only, and recovers tool calls from free text via toolparse.
type LocalAdapter struct {
	streamer LocalStreamer
	model    string
	agentID  string
	turnNo   int

	reminder string

	history []turn.Message
}

// NewLocalAdapter constructs a LocalAdapter. reminder is the
// definition's optional reminder text appended to each turn's final
// user message on the wire only. The system instruction is not fixed
// at construction — it arrives per call via SendParams.SystemPrompt,
// since the executor assembles it once per run only after this adapter
// already exists.
func NewLocalAdapter(streamer LocalStreamer, model, agentID, reminder string) *LocalAdapter {
	return &LocalAdapter{
		streamer: streamer,
		model:    model,
		agentID:  agentID,
		reminder: reminder,
	}
}

// SeedHistory implements Adapter.
func (a *LocalAdapter) SeedHistory(msgs []turn.Message) {
	a.history = append(a.history, msgs...)
}

// Send implements Adapter.
func (a *LocalAdapter) Send(ctx context.Context, message turn.Message, params SendParams, onChunk StreamHandler) (turn.Message, FinishReason, error) {
	a.turnNo++

	// Step 1: append the new user message to durable history.
	a.history = append(a.history, message)

	// Step 2: clone history for the wire, decorating without persisting.
	wire := make([]openai.ChatCompletionMessageParamUnion, 0, len(a.history)+1)
	if params.SystemPrompt != "" {
		wire = append(wire, openai.SystemMessage(params.SystemPrompt))
	}
	for i, m := range a.history {
		text := m.Text()
		if a.reminder != "" && i == len(a.history)-1 && m.Role == turn.RoleUser {
			text = text + "\n\n" + a.reminder
		}
		if m.Role == turn.RoleModel {
			wire = append(wire, openai.AssistantMessage(text))
		} else {
			wire = append(wire, openai.UserMessage(text))
		}
	}

	fullText, err := a.stream(ctx, wire, onChunk)
	if err != nil {
		return turn.Message{}, FinishError, fmt.Errorf("chatadapter: local send: %w", err)
	}

	// Step 3: persist the full model text as a model message in history.
	modelMsg := turn.Message{Role: turn.RoleModel, Parts: []turn.Part{turn.TextPart{Text: fullText}}}
	a.history = append(a.history, modelMsg)

	promptID := ids.NewPromptID(a.agentID, a.turnNo)
	invocations := toolparse.Parse(fullText, promptID)

	finish := FinishStop
	if len(invocations) > 0 {
		finish = FinishToolUse
	}
	onChunk(Chunk{Invocations: invocations, Finish: finish})

	reply := turn.Message{Role: turn.RoleModel, Parts: []turn.Part{turn.TextPart{Text: fullText}}}
	for _, inv := range invocations {
		reply.Parts = append(reply.Parts, turn.ToolInvocationPart{Invocation: inv})
	}
	return reply, finish, nil
}

func (a *LocalAdapter) stream(ctx context.Context, wire []openai.ChatCompletionMessageParamUnion, onChunk StreamHandler) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    a.model,
		Messages: wire,
	}
	stream := a.streamer.NewStreaming(ctx, params)

	var full string
	for stream.Next() {
		if err := ctx.Err(); err != nil {
			stream.Close()
			return "", err
		}
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full += delta
		// The local adapter has no notion of "thought" separate from
		// content; per §4.4 step 3, every cumulative text delta is
		// surfaced as a thought-chunk while the model is still talking.
		onChunk(Chunk{Text: full, IsThought: true})
	}
	if err := stream.Err(); err != nil {
		stream.Close()
		return "", err
	}
	stream.Close()
	return full, nil
}

// GemmaToolCode renders declarations in the Gemma-compatible transform
// of §4.1.5: parametersJsonSchema becomes parameters, and any parameter
// literally named "description" is stripped from both properties and
// required, since small local models tend to misparse a nested field
// that shadows the JSON Schema keyword of the same name.
func GemmaToolCode(decls []registry.Declaration) (string, error) {
	rendered := make([]map[string]any, 0, len(decls))
	for _, d := range decls {
		properties, _ := d.Parameters["properties"].(map[string]any)
		required, _ := d.Parameters["required"].([]string)

		cleanProps := make(map[string]any, len(properties))
		for name, v := range properties {
			if name == "description" {
				continue
			}
			cleanProps[name] = v
		}
		cleanRequired := make([]string, 0, len(required))
		for _, r := range required {
			if r == "description" {
				continue
			}
			cleanRequired = append(cleanRequired, r)
		}

		rendered = append(rendered, map[string]any{
			"name":        d.Name,
			"description": d.Description,
			"parameters": map[string]any{
				"type":       "object",
				"properties": cleanProps,
				"required":   cleanRequired,
			},
		})
	}

	out, err := json.MarshalIndent(rendered, "", "  ")
	if err != nil {
		return "", fmt.Errorf("chatadapter: render tool_code: %w", err)
	}
	return string(out), nil
}
