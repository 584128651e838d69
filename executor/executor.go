// Package executor implements the Sub-Agent Execution Engine's heart
// (C8): the agent main loop, turn state machine, completion-tool
// semantics, output validation, activity emission, and recovery turn.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sidwan02/subagentengine/activity"
	"github.com/sidwan02/subagentengine/boundary"
	"github.com/sidwan02/subagentengine/chatadapter"
	"github.com/sidwan02/subagentengine/env"
	"github.com/sidwan02/subagentengine/ids"
	"github.com/sidwan02/subagentengine/interrupt"
	"github.com/sidwan02/subagentengine/registry"
	"github.com/sidwan02/subagentengine/subagentspec"
	"github.com/sidwan02/subagentengine/summarizer"
	"github.com/sidwan02/subagentengine/telemetry"
	"github.com/sidwan02/subagentengine/turn"
)

// recoveryGraceWindow is the reference grace-window duration a recovery
// turn gets, per §4.1.2.
const recoveryGraceWindow = 60 * time.Second

// Deps are the host-provided collaborators an Executor is built from.
// Registry and Adapter are required; the rest have safe defaults.
type Deps struct {
	Registry registry.Registry
	Adapter  chatadapter.Adapter

	HostContext env.HostContext
	Activity    activity.Sink
	Interrupts  *interrupt.Manager
	Telemetry   telemetry.Sink
	Summarizer  *summarizer.Summarizer

	// Rendezvous, when set, is what a soft interrupt awaits for operator
	// redirection text (§4.10). A top-level agent with no invocation
	// boundary above it has none, so a soft interrupt terminates it.
	Rendezvous *boundary.Rendezvous

	// ParentAgentID is empty for a top-level agent, or the parent's
	// agent-id for a delegated one.
	ParentAgentID string
}

// Executor drives one agent's run. Build with Create; each Executor is
// single-use, matching the Agent Instance State lifetime of §3.
type Executor struct {
	def         subagentspec.Definition
	agentID     string
	registry    registry.Registry
	adapter     chatadapter.Adapter
	hostCtx     env.HostContext
	activity    activity.Sink
	interrupts  *interrupt.Manager
	telemetry   telemetry.Sink
	summarizer  *summarizer.Summarizer
	rendezvous  *boundary.Rendezvous

	toolNames    []string
	declarations []registry.Declaration
	systemPrompt string

	turn int
}

// Create builds an Executor for one run of def. It resolves the
// definition's tool list against the non-interactive allow-list,
// injects the synthetic complete_task declaration, and assigns the
// agent-id. Fails with subagentspec.ErrConfiguration if def itself is
// invalid or any named tool is not allow-listed.
func Create(def subagentspec.Definition, deps Deps) (*Executor, error) {
	if err := subagentspec.Validate(def); err != nil {
		return nil, err
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("%w: no tool registry supplied", subagentspec.ErrConfiguration)
	}
	if deps.Adapter == nil {
		return nil, fmt.Errorf("%w: no chat adapter supplied", subagentspec.ErrConfiguration)
	}

	names := make([]string, 0, len(def.Tools)+1)
	for _, ref := range def.Tools {
		name := ref.Name
		if name == "" && ref.Declaration != nil {
			name = ref.Declaration.Name
		}
		if name == "" {
			return nil, fmt.Errorf("%w: tool reference has no resolvable name", subagentspec.ErrConfiguration)
		}
		if !registry.IsAllowListed(name) {
			return nil, fmt.Errorf("%w: tool %q is not in the non-interactive allow-list", subagentspec.ErrConfiguration, name)
		}
		names = append(names, name)
	}
	names = append(names, registry.CompletionToolName)

	decls := deps.Registry.GetFunctionDeclarationsFiltered(namesWithoutCompletion(names))
	decls = append(decls, completionDeclaration(def))

	activitySink := deps.Activity
	if activitySink == nil {
		activitySink = activity.Noop
	}
	tel := deps.Telemetry
	if tel == nil {
		tel = telemetry.NoopSink{}
	}

	parentPrefix := ""
	if deps.ParentAgentID != "" {
		parentPrefix = ids.ChildPrefix(deps.ParentAgentID)
	}

	return &Executor{
		def:          def,
		agentID:      ids.NewAgentID(parentPrefix, def.Name),
		registry:     deps.Registry,
		adapter:      deps.Adapter,
		hostCtx:      deps.HostContext,
		activity:     activitySink,
		interrupts:   deps.Interrupts,
		telemetry:    tel,
		summarizer:   deps.Summarizer,
		rendezvous:   deps.Rendezvous,
		toolNames:    names,
		declarations: decls,
	}, nil
}

// AgentID returns the id assigned at Create.
func (e *Executor) AgentID() string { return e.agentID }

// Run drives the loop of §4.1.2 to completion. inputs are the
// definition's named string inputs; ctx is the external cancellation
// handle the caller (or invocation boundary) owns.
func (e *Executor) Run(ctx context.Context, inputs map[string]string) (Result, error) {
	start := time.Now()
	ctx = e.telemetry.AgentStart(ctx, e.agentID, e.def.Name)

	sysPrompt, err := assembleSystemPrompt(e.def, inputs, e.declarations, e.isLocal(), e.hostCtx, e.modelID())
	if err != nil {
		return Result{}, err
	}
	e.systemPrompt = sysPrompt

	query, err := subagentspec.RenderQuery(e.def, inputs)
	if err != nil {
		return Result{}, err
	}

	if len(e.def.Prompt.InitialMessages) > 0 {
		seed := make([]turn.Message, len(e.def.Prompt.InitialMessages))
		for i, text := range e.def.Prompt.InitialMessages {
			seed[i] = turn.NewUserText(text)
		}
		e.adapter.SeedHistory(seed)
	}

	wallCtx, cancelWall := context.WithTimeout(ctx, e.def.Run.MaxWallTime)
	defer cancelWall()

	output, reason := e.driveLoop(wallCtx, turn.NewUserText(query))

	if reason.recoverable() {
		if success, recovered := e.attemptRecovery(ctx, reason); success {
			output, reason = recovered, ReasonGoal
		}
	}

	e.telemetry.AgentFinish(ctx, e.agentID, e.def.Name, time.Since(start), e.turn, string(reason))
	return Result{Output: output, Reason: reason}, nil
}

// driveLoop runs READY_FOR_TURN/AWAITING_MODEL/PROCESSING_CALLS/
// AWAITING_SOFT_INTERRUPT_INPUT until it reaches TERMINATING, returning
// the best available result string and why it stopped.
func (e *Executor) driveLoop(ctx context.Context, nextMessage turn.Message) (string, TerminationReason) {
	for {
		if e.turn >= e.def.Run.MaxTurns {
			return "Agent exceeded max turns.", ReasonMaxTurns
		}
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return e.timeoutMessage(), ReasonTimeout
			}
			return "Agent aborted.", ReasonAborted
		}

		e.turn++
		turnCtx, cancel := context.WithCancelCause(ctx)
		if e.interrupts != nil {
			e.interrupts.SetCurrentTurnController(cancel)
		}

		params := chatadapter.SendParams{SystemPrompt: e.systemPrompt, Tools: e.declarations}
		reply, _, err := e.adapter.Send(turnCtx, nextMessage, params, e.onChunk)

		if err != nil {
			outcome := e.classifyStreamError(ctx, turnCtx)
			cancel(nil)
			switch outcome {
			case streamHardAbort:
				e.emit(activity.Event{Type: activity.TypeInterrupted, Data: activity.InterruptedPayload{Hard: true}})
				return "Agent aborted.", ReasonAborted
			case streamTimeout:
				return e.timeoutMessage(), ReasonTimeout
			case streamSoftInterrupt:
				e.emit(activity.Event{Type: activity.TypeInterrupted, Data: activity.InterruptedPayload{Hard: false}})
				text, softErr := e.awaitRendezvous(ctx)
				if softErr != nil {
					return "Agent aborted.", ReasonAborted
				}
				e.emit(activity.Event{Type: activity.TypeUserMessage, Data: activity.UserMessagePayload{Text: text}})
				nextMessage = turn.NewUserText(text)
				continue
			default:
				e.emit(activity.Event{Type: activity.TypeError, Data: activity.ErrorPayload{Message: err.Error()}})
				return fmt.Sprintf("Agent error: %s", err.Error()), ReasonError
			}
		}

		invocations := reply.Invocations()
		if len(invocations) == 0 && e.isLocal() && e.def.Output != nil {
			// §4.1.7: weak local models often narrate the answer instead
			// of calling complete_task; synthesize the call they meant.
			invocations = []registry.Invocation{e.fallbackCompletion(reply.Text())}
		}
		if len(invocations) == 0 {
			cancel(nil)
			return "Agent produced no complete_task call.", ReasonNoCompleteTask
		}

		// turnCtx stays live through dispatch so a soft interrupt raised
		// while a tool is running can still reach the tool call, and so
		// the dispatched tools don't inherit an already-cancelled context.
		dispatch := e.dispatchInvocations(turnCtx, invocations, reply.Text())

		if e.interrupts != nil && interrupt.ReasonFor(turnCtx) == interrupt.ReasonSingleInterrupt {
			cancel(nil)
			e.emit(activity.Event{Type: activity.TypeInterrupted, Data: activity.InterruptedPayload{Hard: false}})
			text, softErr := e.awaitRendezvous(ctx)
			if softErr != nil {
				return "Agent aborted.", ReasonAborted
			}
			e.emit(activity.Event{Type: activity.TypeUserMessage, Data: activity.UserMessagePayload{Text: text}})
			nextMessage = turn.NewUserText(text)
			continue
		}
		cancel(nil)

		if dispatch.completed {
			return dispatch.completionText, ReasonGoal
		}
		nextMessage = nextUserMessage(dispatch)
	}
}

func (e *Executor) timeoutMessage() string {
	return fmt.Sprintf("Agent timed out after %.2f minutes.", e.def.Run.MaxWallTime.Minutes())
}

// awaitRendezvous blocks on the soft-interrupt rendezvous, if one is
// configured. No rendezvous, or empty operator text, both mean
// "operator supplies nothing" per §4.1.2's AWAITING_SOFT_INTERRUPT_INPUT
// transition to TERMINATING(aborted).
func (e *Executor) awaitRendezvous(ctx context.Context) (string, error) {
	if e.rendezvous == nil {
		return "", errors.New("executor: no soft-interrupt rendezvous configured")
	}
	text, err := e.rendezvous.Await(ctx)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("executor: operator supplied no redirection text")
	}
	return text, nil
}

// attemptRecovery runs the single recovery turn of §4.1.2: a bounded
// grace window in which the model is expected to call complete_task
// immediately.
func (e *Executor) attemptRecovery(ctx context.Context, reason TerminationReason) (success bool, result string) {
	attemptStart := time.Now()
	graceCtx, cancelGrace := context.WithTimeout(ctx, recoveryGraceWindow)
	defer cancelGrace()

	e.turn++
	turnCtx, cancel := context.WithCancelCause(graceCtx)
	if e.interrupts != nil {
		e.interrupts.SetCurrentTurnController(cancel)
	}
	defer cancel(nil)

	msg := turn.NewUserText(recoveryMessage(reason, e.def.Run.MaxTurns, e.def.Run.MaxWallTime))
	params := chatadapter.SendParams{
		SystemPrompt: e.systemPrompt,
		Tools:        e.declarations,
		ForcedTool:   registry.CompletionToolName,
	}
	reply, _, err := e.adapter.Send(turnCtx, msg, params, e.onChunk)
	if err == nil {
		for _, inv := range reply.Invocations() {
			if inv.ToolName != registry.CompletionToolName {
				continue
			}
			if outcome := e.handleCompletion(inv, reply.Text()); outcome.accepted {
				success = true
				result = outcome.result
			}
			break
		}
	}

	e.telemetry.RecoveryAttempt(ctx, string(reason), time.Since(attemptStart), success, e.turn)
	if !success {
		e.emit(activity.Event{Type: activity.TypeError, Data: activity.ErrorPayload{Message: ErrRecoveryFailed.Error()}})
	}
	return success, result
}

func recoveryMessage(reason TerminationReason, maxTurns int, maxWallTime time.Duration) string {
	const demand = "You must call complete_task immediately with your best available result."
	switch reason {
	case ReasonMaxTurns:
		return fmt.Sprintf("You have reached the maximum of %d turns. %s", maxTurns, demand)
	case ReasonTimeout:
		return fmt.Sprintf("You have reached the %.2f minute time limit. %s", maxWallTime.Minutes(), demand)
	default:
		return fmt.Sprintf("No tool call or completion was recognized in your previous response. %s", demand)
	}
}

// streamOutcome classifies why adapter.Send returned an error, so
// driveLoop can pick the right AWAITING_MODEL transition.
type streamOutcome int

const (
	streamUnknownError streamOutcome = iota
	streamHardAbort
	streamTimeout
	streamSoftInterrupt
)

func (e *Executor) classifyStreamError(runCtx, turnCtx context.Context) streamOutcome {
	if errors.Is(context.Cause(runCtx), context.DeadlineExceeded) {
		return streamTimeout
	}
	if e.interrupts != nil {
		switch interrupt.ReasonFor(turnCtx) {
		case interrupt.ReasonDoubleInterrupt:
			return streamHardAbort
		case interrupt.ReasonSingleInterrupt:
			return streamSoftInterrupt
		}
	}
	return streamUnknownError
}

func (e *Executor) onChunk(c chatadapter.Chunk) {
	if !c.IsThought {
		return
	}
	e.emit(activity.Event{Type: activity.TypeThoughtChunk, Data: activity.ThoughtChunk{
		Subject: thoughtSubject(c.Text),
		Text:    c.Text,
	}})
}

func thoughtSubject(text string) string {
	for _, line := range strings.Split(text, "\n") {
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

func (e *Executor) emit(ev activity.Event) {
	ev.IsSubagentActivity = true
	if ev.AgentName == "" {
		ev.AgentName = e.def.Name
	}
	e.activity.Emit(ev)
}

func (e *Executor) isAuthorized(name string) bool {
	for _, n := range e.toolNames {
		if n == name {
			return true
		}
	}
	return false
}

func (e *Executor) isLocal() bool { return e.def.Model.IsLocal() }

func (e *Executor) modelID() string {
	switch {
	case e.def.Model.Local != nil:
		return e.def.Model.Local.ModelID
	case e.def.Model.Remote != nil:
		return e.def.Model.Remote.ModelID
	default:
		return ""
	}
}

func namesWithoutCompletion(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != registry.CompletionToolName {
			out = append(out, n)
		}
	}
	return out
}

// completionDeclaration builds the synthetic complete_task schema of
// §3: the output specification's schema verbatim when one is declared,
// or an empty parameter object otherwise.
func completionDeclaration(def subagentspec.Definition) registry.Declaration {
	if def.Output == nil {
		return registry.Declaration{
			Name:        registry.CompletionToolName,
			Description: "Signal that the task is complete.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
				"required":   []string{},
			},
		}
	}
	return registry.Declaration{
		Name:        registry.CompletionToolName,
		Description: "Signal that the task is complete, supplying the required output.",
		Parameters:  def.Output.Schema.AsMap(),
	}
}
