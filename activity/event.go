// Package activity defines the typed, one-way event stream the executor
// emits toward a host UI. The channel carries no back pressure contract
// beyond "delivered in emission order".
package activity

// Type identifies the kind of activity event.
type Type string

const (
	TypeThoughtChunk  Type = "thought_chunk"
	TypeToolCallStart Type = "tool_call_start"
	TypeToolCallEnd   Type = "tool_call_end"
	TypeToolOutput    Type = "tool_output_chunk"
	TypeError         Type = "error"
	TypeInterrupted   Type = "interrupted"
	TypeUserMessage   Type = "user_message"
)

// Event is a single activity notification. IsSubagentActivity is always
// true; it exists so a host multiplexing several event sources can route
// on the field without a type assertion.
type Event struct {
	IsSubagentActivity bool
	AgentName          string
	Type               Type
	Data               any
}

// ThoughtChunk is the Data payload for TypeThoughtChunk.
type ThoughtChunk struct {
	Subject string
	Text    string
}

// ToolCallStart is the Data payload for TypeToolCallStart.
type ToolCallStart struct {
	CallID    string
	ToolName  string
	Arguments map[string]any
}

// ToolCallEnd is the Data payload for TypeToolCallEnd.
type ToolCallEnd struct {
	CallID   string
	ToolName string
	Error    string // empty on success
}

// ToolOutputChunk is the Data payload for TypeToolOutput. CallID may be
// empty; a chunk that arrives with no preceding tool-call-start is a
// known upstream condition the UI handles by synthesizing a response with
// an empty name, and this type preserves that shape rather than papering
// over it.
type ToolOutputChunk struct {
	CallID string
	Chunk  string
}

// ErrorPayload is the Data payload for TypeError.
type ErrorPayload struct {
	Message string
}

// InterruptedPayload is the Data payload for TypeInterrupted.
type InterruptedPayload struct {
	Hard bool
}

// UserMessagePayload is the Data payload for TypeUserMessage, emitted
// when the loop starts a turn whose user message came from an operator
// (soft-interrupt rendezvous) rather than tool responses.
type UserMessagePayload struct {
	Text string
}

// Sink receives Events. Implementations must accept events from any
// agent frame without reordering; delivery is fire-and-forget.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a plain function to a Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// Channel is a Sink backed by a buffered Go channel, mirroring the
// teacher SDK's channel-based event stream (agent.AgentStream).
type Channel struct {
	ch chan Event
}

// NewChannel creates a Channel-backed Sink with the given buffer size.
func NewChannel(bufferSize int) *Channel {
	return &Channel{ch: make(chan Event, bufferSize)}
}

func (c *Channel) Emit(e Event) { c.ch <- e }

// Events returns the receive side of the channel for consumption by a host.
func (c *Channel) Events() <-chan Event { return c.ch }

// Close closes the underlying channel. Callers must ensure no further
// Emit calls occur afterward.
func (c *Channel) Close() { close(c.ch) }

// Noop discards every event. Useful when a caller has no UI attached.
var Noop Sink = SinkFunc(func(Event) {})
