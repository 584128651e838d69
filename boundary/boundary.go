// Package boundary implements the Invocation Boundary (C10): the
// bookkeeping a parent performs around a delegated child run — pushing
// and popping the child's interrupt frame, forwarding its activity
// events, and brokering the soft-interrupt rendezvous.
package boundary

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/sidwan02/subagentengine/activity"
	"github.com/sidwan02/subagentengine/interrupt"
)

// Rendezvous is the one-shot handoff a child awaits after a
// SINGLE_INTERRUPT: the host UI resolves it with operator text (or
// nothing, for a final abort), and the child resumes with that text as
// its next user message. Token identifies the rendezvous to a UI that
// may be brokering several nested agents' interrupts at once.
type Rendezvous struct {
	Token string

	mu       sync.Mutex
	resolved chan struct{}
	once     sync.Once
	text     string
	preset   bool
}

// NewRendezvous creates a fresh, unresolved rendezvous with a random token.
func NewRendezvous() *Rendezvous {
	return &Rendezvous{
		Token:    uuid.NewString(),
		resolved: make(chan struct{}),
	}
}

// Resolve delivers the operator's redirection text (empty for a final
// abort). Only the first call takes effect, matching the one-shot
// contract; later calls are no-ops. This also covers the pre-emptive
// mode of §4.10 step 4: the UI may call Resolve before the child ever
// calls Await, and Await will return immediately with the preset text.
func (r *Rendezvous) Resolve(text string) {
	r.once.Do(func() {
		r.mu.Lock()
		r.text = text
		r.preset = true
		r.mu.Unlock()
		close(r.resolved)
	})
}

// Await blocks until Resolve is called or ctx is done, whichever comes
// first, and returns the operator's text.
func (r *Rendezvous) Await(ctx context.Context) (string, error) {
	select {
	case <-r.resolved:
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// forwardingSink relabels a child's events with its own agent name (if
// not already set) before pushing them to the parent's sink, so a host
// watching one merged stream can always tell which frame an event came
// from.
type forwardingSink struct {
	parent    activity.Sink
	agentName string
}

func (s forwardingSink) Emit(e activity.Event) {
	if e.AgentName == "" {
		e.AgentName = s.agentName
	}
	s.parent.Emit(e)
}

// Delegate performs the boundary's lifecycle around one child run: it
// starts and (always) ends the child's interrupt-manager session, gives
// run a forwarding sink pointed at parentSink, and a Rendezvous the
// child can use to await operator redirection. run's return value is
// passed through unchanged; a non-nil error is wrapped with the child's
// name (errors.Is and errors.As still see the original).
func Delegate[T any](
	ctx context.Context,
	mgr *interrupt.Manager,
	parentSink activity.Sink,
	childAgentName string,
	run func(ctx context.Context, childSink activity.Sink, rendezvous *Rendezvous) (T, error),
) (T, error) {
	mgr.StartAgentSession()
	defer mgr.EndAgentSession()

	childSink := forwardingSink{parent: parentSink, agentName: childAgentName}
	rendezvous := NewRendezvous()

	result, err := run(ctx, childSink, rendezvous)
	if err != nil {
		return result, fmt.Errorf("boundary: child %q: %w", childAgentName, err)
	}
	return result, nil
}
