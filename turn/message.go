// Package turn defines the provider-neutral Turn Message shape both chat
// adapters translate to and from their native SDK types, and the
// executor operates on directly.
package turn

import "github.com/sidwan02/subagentengine/registry"

// Role is the speaker of a Message: the user (which, in this loop, is
// really "the executor, on behalf of tool results or the operator") or
// the model.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one role plus an ordered sequence of Parts. A message never
// mixes ToolInvocationPart and ToolResponsePart: model messages carry
// text and/or invocations, user messages carry text and/or responses.
type Message struct {
	Role  Role
	Parts []Part
}

// Part is implemented by TextPart, ToolInvocationPart, and
// ToolResponsePart.
type Part interface {
	isPart()
}

// TextPart is free-form text content.
type TextPart struct {
	Text string
}

func (TextPart) isPart() {}

// ToolInvocationPart is a model-requested tool call.
type ToolInvocationPart struct {
	registry.Invocation
}

func (ToolInvocationPart) isPart() {}

// ToolResponsePart is the result of one tool invocation, placed in the
// next user message.
type ToolResponsePart struct {
	registry.Response
}

func (ToolResponsePart) isPart() {}

// Text concatenates every TextPart in a message, for callers that only
// care about the textual content (e.g. thought extraction, fallback
// completion parsing).
func (m Message) Text() string {
	var out string
	for _, p := range m.Parts {
		if t, ok := p.(TextPart); ok {
			out += t.Text
		}
	}
	return out
}

// Invocations returns every ToolInvocationPart in the message, in order.
func (m Message) Invocations() []registry.Invocation {
	var out []registry.Invocation
	for _, p := range m.Parts {
		if inv, ok := p.(ToolInvocationPart); ok {
			out = append(out, inv.Invocation)
		}
	}
	return out
}

// NewUserText builds a single-text-part user message, the shape both the
// soft-interrupt rendezvous and the initial query use.
func NewUserText(text string) Message {
	return Message{Role: RoleUser, Parts: []Part{TextPart{Text: text}}}
}

// NewUserResponses builds a user message from a set of tool responses,
// preserving invocation order.
func NewUserResponses(responses []registry.Response) Message {
	parts := make([]Part, len(responses))
	for i, r := range responses {
		parts[i] = ToolResponsePart{Response: r}
	}
	return Message{Role: RoleUser, Parts: parts}
}
