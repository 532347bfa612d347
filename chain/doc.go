// Package chain implements the callable-chain execution engine: immutable
// Steps bound to positional and keyword arguments, ordering strategies that
// turn a step set into a deterministic execution plan, processing strategies
// that run the plan sequentially or concurrently, and a Factory that builds,
// mutates and round-trips named chains through JSON, YAML and CBOR
// definitions.
//
// A chain executes against a shared arena keyed by result binding names
// (refs). Each ref has exactly one writer (the step that declares it), so
// concurrent steps under the Parallel strategy never race on arena keys.
// Structural problems (duplicate step keys, dependency cycles, refs consumed
// before they are produced) are detected when the plan is resolved, before
// any step executes.
package chain
