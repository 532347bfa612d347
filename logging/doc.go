// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer SwarmChainLogger with contextual
// helpers (trace, chain, component) and domain specific logging helpers for
// steps, dispatches and chain runs.
package logging
