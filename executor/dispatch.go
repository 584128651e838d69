package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/sidwan02/subagentengine/activity"
	"github.com/sidwan02/subagentengine/registry"
	"github.com/sidwan02/subagentengine/turn"
)

// dispatchResult is the outcome of processing one turn's invocations.
type dispatchResult struct {
	responses      []registry.Response // order matches invocation order
	completed      bool
	completionText string
	anySucceeded   bool
}

// dispatchInvocations implements §4.1.4 and the completion half of
// §4.1.3: the first complete_task call in the turn is evaluated
// synchronously ahead of everything else, and later complete_task calls
// are answered with errAlreadyComplete without reaching the registry. If
// that first completion is accepted, no other invocation runs; otherwise
// every non-completion invocation is dispatched concurrently through the
// tool registry.
func (e *Executor) dispatchInvocations(ctx context.Context, invocations []registry.Invocation, terminalText string) dispatchResult {
	responses := make([]registry.Response, len(invocations))

	completionIdx := -1
	for i, inv := range invocations {
		if inv.ToolName == registry.CompletionToolName {
			completionIdx = i
			break
		}
	}

	if completionIdx >= 0 {
		completed, completionText := e.resolveCompletion(invocations, responses, completionIdx, terminalText)
		if completed {
			return dispatchResult{responses: responses, completed: true, completionText: completionText}
		}
	}

	anySucceeded := e.dispatchToolCalls(ctx, invocations, responses)
	return dispatchResult{responses: responses, anySucceeded: anySucceeded}
}

// resolveCompletion evaluates the first complete_task invocation and
// marks every later one as a duplicate, per §4.1.3's idempotency rule.
func (e *Executor) resolveCompletion(invocations []registry.Invocation, responses []registry.Response, completionIdx int, terminalText string) (completed bool, completionText string) {
	inv := invocations[completionIdx]
	outcome := e.handleCompletion(inv, terminalText)
	if outcome.accepted {
		responses[completionIdx] = registry.Response{CallID: inv.CallID, ToolName: registry.CompletionToolName, Result: outcome.result}
	} else {
		responses[completionIdx] = registry.Response{CallID: inv.CallID, ToolName: registry.CompletionToolName, Error: outcome.responseErr}
	}

	for i, other := range invocations {
		if i == completionIdx || other.ToolName != registry.CompletionToolName {
			continue
		}
		responses[i] = registry.Response{CallID: other.CallID, ToolName: other.ToolName, Error: errAlreadyComplete}
	}

	if outcome.accepted {
		return true, outcome.result
	}
	return false, ""
}

// dispatchToolCalls runs every non-completion invocation concurrently
// and awaits the group before returning, per §5's scheduling model.
func (e *Executor) dispatchToolCalls(ctx context.Context, invocations []registry.Invocation, responses []registry.Response) (anySucceeded bool) {
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i, inv := range invocations {
		if inv.ToolName == registry.CompletionToolName {
			continue
		}

		e.emit(activity.Event{Type: activity.TypeToolCallStart, Data: activity.ToolCallStart{
			CallID: inv.CallID, ToolName: inv.ToolName, Arguments: inv.Arguments,
		}})

		if !e.isAuthorized(inv.ToolName) {
			responses[i] = registry.Response{CallID: inv.CallID, ToolName: inv.ToolName, Error: "Unauthorized tool call"}
			e.emit(activity.Event{Type: activity.TypeToolCallEnd, Data: activity.ToolCallEnd{
				CallID: inv.CallID, ToolName: inv.ToolName, Error: "Unauthorized tool call",
			}})
			continue
		}

		wg.Add(1)
		go func(i int, inv registry.Invocation) {
			defer wg.Done()
			resp := e.executeOne(ctx, inv)
			mu.Lock()
			responses[i] = resp
			if resp.Error == "" {
				anySucceeded = true
			}
			mu.Unlock()
		}(i, inv)
	}
	wg.Wait()
	return anySucceeded
}

// executeOne runs a single authorized invocation, emitting tool-output
// and tool-call-end activity, and applies the summarizer when the run
// configuration requests it and the call succeeded.
func (e *Executor) executeOne(ctx context.Context, inv registry.Invocation) registry.Response {
	onChunk := func(chunk string) {
		e.emit(activity.Event{Type: activity.TypeToolOutput, Data: activity.ToolOutputChunk{CallID: inv.CallID, Chunk: chunk}})
	}

	resp, err := e.registry.Execute(ctx, inv, onChunk)
	if err != nil {
		resp = registry.Response{CallID: inv.CallID, ToolName: inv.ToolName, Error: err.Error()}
	}

	if resp.Error != "" {
		e.emit(activity.Event{Type: activity.TypeToolCallEnd, Data: activity.ToolCallEnd{
			CallID: inv.CallID, ToolName: inv.ToolName, Error: resp.Error,
		}})
		return resp
	}
	e.emit(activity.Event{Type: activity.TypeToolCallEnd, Data: activity.ToolCallEnd{CallID: inv.CallID, ToolName: inv.ToolName}})

	if e.def.Run.SummarizeToolOutput && e.summarizer != nil {
		if summary, sErr := e.summarizer.Summarize(ctx, fmt.Sprintf("%v", resp.Result), e.def.Model); sErr == nil {
			resp.Result = summary
		}
	}
	return resp
}

// nextUserMessage aggregates one turn's tool responses into the
// following user message, appending the §4.1.4 diagnostic text part
// when every invocation failed or was rejected.
func nextUserMessage(d dispatchResult) turn.Message {
	msg := turn.NewUserResponses(d.responses)
	if !d.anySucceeded {
		msg.Parts = append(msg.Parts, turn.TextPart{
			Text: "All tool calls in the previous turn failed or were rejected. Try a different approach.",
		})
	}
	return msg
}
