package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// newExporter resolves an exporter name to a SpanExporter. "" and
// "noop" both resolve to nil, signaling Setup to fall back to a noop
// provider without needing an exporter at all.
func newExporter(name string) (sdktrace.SpanExporter, error) {
	switch name {
	case "stdout":
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("telemetry: create stdout exporter: %w", err)
		}
		return exp, nil
	case "", "noop":
		return nil, nil
	default:
		return nil, fmt.Errorf("telemetry: unsupported exporter %q", name)
	}
}
