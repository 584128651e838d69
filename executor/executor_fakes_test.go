package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/sidwan02/subagentengine/chatadapter"
	"github.com/sidwan02/subagentengine/registry"
	"github.com/sidwan02/subagentengine/turn"
)

// fakeRegistry is a scriptable registry.Registry: declarations are
// looked up by name, and tool execution is dispatched to a per-name
// function, defaulting to a bare success response.
type fakeRegistry struct {
	decls map[string]registry.Declaration
	exec  map[string]func(ctx context.Context, inv registry.Invocation, onChunk registry.OutputChunkFunc) (registry.Response, error)

	mu    sync.Mutex
	calls []registry.Invocation
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		decls: map[string]registry.Declaration{},
		exec:  map[string]func(context.Context, registry.Invocation, registry.OutputChunkFunc) (registry.Response, error){},
	}
}

func (r *fakeRegistry) GetTool(name string) (any, bool) { return nil, false }

func (r *fakeRegistry) GetFunctionDeclarationsFiltered(names []string) []registry.Declaration {
	out := make([]registry.Declaration, 0, len(names))
	for _, n := range names {
		if d, ok := r.decls[n]; ok {
			out = append(out, d)
			continue
		}
		out = append(out, registry.Declaration{Name: n, Parameters: map[string]any{"type": "object", "properties": map[string]any{}}})
	}
	return out
}

func (r *fakeRegistry) Execute(ctx context.Context, inv registry.Invocation, onChunk registry.OutputChunkFunc) (registry.Response, error) {
	r.mu.Lock()
	r.calls = append(r.calls, inv)
	r.mu.Unlock()

	if fn, ok := r.exec[inv.ToolName]; ok {
		return fn(ctx, inv, onChunk)
	}
	return registry.Response{CallID: inv.CallID, ToolName: inv.ToolName, Result: "ok"}, nil
}

func (r *fakeRegistry) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// sendStep is one scripted reply for fakeAdapter.Send.
type sendStep func(ctx context.Context, msg turn.Message, params chatadapter.SendParams, onChunk chatadapter.StreamHandler) (turn.Message, chatadapter.FinishReason, error)

// fakeAdapter is a scriptable chatadapter.Adapter: each call to Send
// consumes the next queued step in order, recording the params it was
// called with for assertions.
type fakeAdapter struct {
	mu       sync.Mutex
	steps    []sendStep
	idx      int
	calls    []chatadapter.SendParams
	messages []turn.Message
	seeded   []turn.Message
}

func (a *fakeAdapter) SeedHistory(msgs []turn.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seeded = append(a.seeded, msgs...)
}

func (a *fakeAdapter) Send(ctx context.Context, msg turn.Message, params chatadapter.SendParams, onChunk chatadapter.StreamHandler) (turn.Message, chatadapter.FinishReason, error) {
	a.mu.Lock()
	i := a.idx
	a.idx++
	a.calls = append(a.calls, params)
	a.messages = append(a.messages, msg)
	a.mu.Unlock()

	if i >= len(a.steps) {
		return turn.Message{}, chatadapter.FinishError, fmt.Errorf("fakeAdapter: no script queued for call %d", i)
	}
	return a.steps[i](ctx, msg, params, onChunk)
}

func (a *fakeAdapter) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

// completionStep replies with a single complete_task invocation carrying
// the given output field value.
func completionStep(field string, value any) sendStep {
	return func(ctx context.Context, msg turn.Message, params chatadapter.SendParams, onChunk chatadapter.StreamHandler) (turn.Message, chatadapter.FinishReason, error) {
		args := map[string]any{}
		if field != "" {
			args[field] = value
		}
		reply := turn.Message{Role: turn.RoleModel, Parts: []turn.Part{
			turn.ToolInvocationPart{Invocation: registry.Invocation{
				CallID:    "call-complete",
				ToolName:  registry.CompletionToolName,
				Arguments: args,
			}},
		}}
		return reply, chatadapter.FinishToolUse, nil
	}
}

// textStep replies with plain text and no invocations at all.
func textStep(text string) sendStep {
	return func(ctx context.Context, msg turn.Message, params chatadapter.SendParams, onChunk chatadapter.StreamHandler) (turn.Message, chatadapter.FinishReason, error) {
		reply := turn.Message{Role: turn.RoleModel, Parts: []turn.Part{turn.TextPart{Text: text}}}
		return reply, chatadapter.FinishStop, nil
	}
}

// toolCallStep replies with a single non-completion tool invocation.
func toolCallStep(callID, toolName string, args map[string]any) sendStep {
	return func(ctx context.Context, msg turn.Message, params chatadapter.SendParams, onChunk chatadapter.StreamHandler) (turn.Message, chatadapter.FinishReason, error) {
		reply := turn.Message{Role: turn.RoleModel, Parts: []turn.Part{
			turn.ToolInvocationPart{Invocation: registry.Invocation{CallID: callID, ToolName: toolName, Arguments: args}},
		}}
		return reply, chatadapter.FinishToolUse, nil
	}
}

// errorStep replies with err, simulating an adapter that surfaces a
// cancelled or failed context.
func errorStep(err error) sendStep {
	return func(ctx context.Context, msg turn.Message, params chatadapter.SendParams, onChunk chatadapter.StreamHandler) (turn.Message, chatadapter.FinishReason, error) {
		return turn.Message{}, chatadapter.FinishError, err
	}
}

// interruptingStep runs trigger (expected to cancel turnCtx via an
// interrupt.Manager) and then propagates ctx's cancellation cause as the
// adapter error, the way a real streaming client would once its context
// is cancelled mid-stream.
func interruptingStep(trigger func()) sendStep {
	return func(ctx context.Context, msg turn.Message, params chatadapter.SendParams, onChunk chatadapter.StreamHandler) (turn.Message, chatadapter.FinishReason, error) {
		trigger()
		return turn.Message{}, chatadapter.FinishError, context.Cause(ctx)
	}
}
