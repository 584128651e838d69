package boundary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidwan02/subagentengine/activity"
	"github.com/sidwan02/subagentengine/interrupt"
)

func TestRendezvousAwaitReturnsResolvedText(t *testing.T) {
	r := NewRendezvous()
	go func() {
		time.Sleep(10 * time.Millisecond)
		r.Resolve("keep going, but focus on tests")
	}()

	text, err := r.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "keep going, but focus on tests", text)
}

func TestRendezvousPreemptiveResolveBeforeAwait(t *testing.T) {
	r := NewRendezvous()
	r.Resolve("stop here")

	text, err := r.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stop here", text)
}

func TestRendezvousOnlyFirstResolveWins(t *testing.T) {
	r := NewRendezvous()
	r.Resolve("first")
	r.Resolve("second")

	text, err := r.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", text)
}

func TestRendezvousAwaitRespectsContextCancellation(t *testing.T) {
	r := NewRendezvous()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRendezvousTokenIsUnique(t *testing.T) {
	a := NewRendezvous()
	b := NewRendezvous()
	assert.NotEqual(t, a.Token, b.Token)
	assert.NotEmpty(t, a.Token)
}

func TestForwardingSinkTagsUnlabeledEvents(t *testing.T) {
	var received []activity.Event
	parent := activity.SinkFunc(func(e activity.Event) { received = append(received, e) })
	sink := forwardingSink{parent: parent, agentName: "child-1"}

	sink.Emit(activity.Event{Type: activity.TypeThoughtChunk})
	require.Len(t, received, 1)
	assert.Equal(t, "child-1", received[0].AgentName)
}

func TestForwardingSinkPreservesExistingAgentName(t *testing.T) {
	var received []activity.Event
	parent := activity.SinkFunc(func(e activity.Event) { received = append(received, e) })
	sink := forwardingSink{parent: parent, agentName: "child-1"}

	sink.Emit(activity.Event{AgentName: "grandchild-2", Type: activity.TypeThoughtChunk})
	require.Len(t, received, 1)
	assert.Equal(t, "grandchild-2", received[0].AgentName)
}

func TestDelegateStartsAndEndsInterruptSession(t *testing.T) {
	mgr := interrupt.New()
	require.Equal(t, 0, mgr.Depth())

	var depthDuringRun int
	_, err := Delegate(context.Background(), mgr, activity.Noop, "child", func(ctx context.Context, sink activity.Sink, rv *Rendezvous) (string, error) {
		depthDuringRun = mgr.Depth()
		return "done", nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, depthDuringRun)
	assert.Equal(t, 0, mgr.Depth())
}

func TestDelegateEndsSessionEvenOnError(t *testing.T) {
	mgr := interrupt.New()
	boom := errors.New("boom")

	_, err := Delegate(context.Background(), mgr, activity.Noop, "child", func(ctx context.Context, sink activity.Sink, rv *Rendezvous) (string, error) {
		return "", boom
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, mgr.Depth())
}

func TestDelegateForwardsChildActivityToParentSink(t *testing.T) {
	mgr := interrupt.New()
	var received []activity.Event
	parent := activity.SinkFunc(func(e activity.Event) { received = append(received, e) })

	_, err := Delegate(context.Background(), mgr, parent, "researcher", func(ctx context.Context, sink activity.Sink, rv *Rendezvous) (int, error) {
		sink.Emit(activity.Event{Type: activity.TypeThoughtChunk, Data: activity.ThoughtChunk{Subject: "s"}})
		return 0, nil
	})

	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "researcher", received[0].AgentName)
	assert.Equal(t, activity.TypeThoughtChunk, received[0].Type)
}
