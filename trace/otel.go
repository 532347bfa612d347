package trace

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/hupe1980/swarmchain/trace"

// ExporterOptions configures an Exporter.
type ExporterOptions struct {
	// TracerProvider defaults to the global OpenTelemetry provider.
	TracerProvider oteltrace.TracerProvider
}

// Exporter replays sealed trace contexts as OpenTelemetry spans: one root
// span for the chain invocation with the context's attributes, and one child
// span per recorded step, preserving the original timestamps.
type Exporter struct {
	tracer oteltrace.Tracer
}

// NewExporter creates an Exporter.
func NewExporter(optFns ...func(o *ExporterOptions)) *Exporter {
	opts := ExporterOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Exporter{tracer: tp.Tracer(instrumentationName)}
}

// Export emits the sealed context's spans. Live contexts are rejected: a
// trace is shared with exporters only after EndTrace seals it.
func (e *Exporter) Export(ctx context.Context, tc *Context) error {
	if !tc.Sealed() {
		return fmt.Errorf("trace: cannot export unsealed context %s", tc.TraceID())
	}

	attrs := make([]attribute.KeyValue, 0, len(tc.Attributes())+1)
	attrs = append(attrs, attribute.String("swarmchain.trace_id", tc.TraceID()))
	for k, v := range tc.Attributes() {
		attrs = append(attrs, toAttribute(k, v))
	}

	rootCtx, root := e.tracer.Start(ctx, tc.Name(),
		oteltrace.WithTimestamp(tc.Started()),
		oteltrace.WithAttributes(attrs...),
	)
	for _, s := range tc.Spans() {
		_, child := e.tracer.Start(rootCtx, s.Name,
			oteltrace.WithTimestamp(s.Start),
			oteltrace.WithAttributes(attribute.String("swarmchain.span_id", s.ID)),
		)
		if s.Error != "" {
			child.SetStatus(codes.Error, s.Error)
		}
		child.End(oteltrace.WithTimestamp(s.End))
	}
	root.End(oteltrace.WithTimestamp(tc.Ended()))
	return nil
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
