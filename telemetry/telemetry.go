// Package telemetry implements the host-facing telemetry sink of §6:
// AgentStart, AgentFinish, and RecoveryAttempt records, emitted as
// OpenTelemetry spans rather than a bespoke struct sink.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "subagentengine"

// Sink is what the executor calls at the three points the spec names.
type Sink interface {
	AgentStart(ctx context.Context, agentID, name string) context.Context
	AgentFinish(ctx context.Context, agentID, name string, elapsed time.Duration, turnCount int, reason string)
	RecoveryAttempt(ctx context.Context, reason string, elapsed time.Duration, success bool, turnCount int)
}

// Setup installs a TracerProvider. When enabled is false, a noop
// provider is used so a host that doesn't want tracing pays nothing
// for it. exporter selects the span destination; "stdout" is the only
// one wired here since the pack carries no OTLP collector dependency.
func Setup(exporter string, enabled bool) (shutdown func(context.Context) error, err error) {
	noopShutdown := func(context.Context) error { return nil }

	if !enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return noopShutdown, nil
	}

	exp, err := newExporter(exporter)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return noopShutdown, nil
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// OTelSink implements Sink over the process-wide TracerProvider Setup
// installs. It also accumulates every run's and every recovery
// attempt's elapsed time in a TurnLedger, so a host sharing one OTelSink
// across many sub-agent runs can report cumulative and average wall
// time without re-deriving it from the exported spans.
type OTelSink struct {
	runs     *TurnLedger
	recovery *TurnLedger
}

// NewOTelSink builds an OTelSink. Call Setup once at host startup first.
func NewOTelSink() OTelSink {
	return OTelSink{runs: NewTurnLedger(), recovery: NewTurnLedger()}
}

// RunLedger returns the ledger accumulating every AgentFinish call's
// elapsed time across the life of this sink.
func (s OTelSink) RunLedger() *TurnLedger { return s.runs }

// RecoveryLedger returns the ledger accumulating every RecoveryAttempt
// call's elapsed time across the life of this sink.
func (s OTelSink) RecoveryLedger() *TurnLedger { return s.recovery }

// AgentStart opens a span for the agent's whole run and returns the
// context carrying it; the caller passes that context through the run
// so AgentFinish can end the same span (stored under spanKey).
func (OTelSink) AgentStart(ctx context.Context, agentID, name string) context.Context {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "agent.run",
		trace.WithAttributes(
			attribute.String("agent.id", agentID),
			attribute.String("agent.name", name),
		))
	return context.WithValue(ctx, spanKey{}, span)
}

// AgentFinish records the run's outcome and ends the span AgentStart opened.
func (s OTelSink) AgentFinish(ctx context.Context, agentID, name string, elapsed time.Duration, turnCount int, reason string) {
	s.runs.RecordTurn(elapsed)

	span, ok := ctx.Value(spanKey{}).(trace.Span)
	if !ok {
		_, span = otel.Tracer(tracerName).Start(ctx, "agent.run")
	}
	totalSeconds, _ := s.runs.TotalSeconds().Float64()
	span.SetAttributes(
		attribute.String("agent.id", agentID),
		attribute.String("agent.name", name),
		attribute.Int64("agent.elapsed_ms", elapsed.Milliseconds()),
		attribute.Int("agent.turn_count", turnCount),
		attribute.String("agent.termination_reason", reason),
		attribute.Float64("agent.cumulative_elapsed_s", totalSeconds),
		attribute.Int("agent.sink_run_count", s.runs.TurnCount()),
	)
	// reason is executor.TerminationReason's string form (executor.ReasonGoal
	// is "GOAL"); telemetry can't import executor without a cycle, so the
	// canonical value is duplicated here as a literal.
	if reason == "GOAL" {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, reason)
	}
	span.End()
}

// RecoveryAttempt records a recovery-turn outcome as attributes and
// status of its own span, started from ctx (so a child of the run span
// when ctx carries the one AgentStart opened).
func (s OTelSink) RecoveryAttempt(ctx context.Context, reason string, elapsed time.Duration, success bool, turnCount int) {
	s.recovery.RecordTurn(elapsed)
	avgSeconds, _ := s.recovery.AverageSeconds().Float64()

	_, span := otel.Tracer(tracerName).Start(ctx, "agent.recovery_attempt",
		trace.WithAttributes(
			attribute.String("recovery.trigger_reason", reason),
			attribute.Int64("recovery.elapsed_ms", elapsed.Milliseconds()),
			attribute.Bool("recovery.success", success),
			attribute.Int("recovery.turn_count", turnCount),
			attribute.Float64("recovery.average_elapsed_s", avgSeconds),
		))
	if success {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, "recovery failed")
	}
	span.End()
}

type spanKey struct{}

// NoopSink discards every record; the default for hosts that don't
// configure telemetry.
type NoopSink struct{}

func (NoopSink) AgentStart(ctx context.Context, _, _ string) context.Context { return ctx }
func (NoopSink) AgentFinish(context.Context, string, string, time.Duration, int, string)   {}
func (NoopSink) RecoveryAttempt(context.Context, string, time.Duration, bool, int)          {}
