// Package trace produces causally linked records of chain execution: one
// trace context per top-level invocation with an ordered list of child spans
// (one per executed step) and a mutable attribute map. A context is owned by
// the invocation that created it until EndTrace seals it; sealed contexts
// are read-only and safe to hand to any exporter, including the bundled
// OpenTelemetry bridge.
package trace
