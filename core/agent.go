package core

import "context"

// Agent is the contract every swarm-managed agent must satisfy.
//
// Agents are identified by a stable ID, advertise a capability set used for
// request dispatch, and expose the full AgentCommands invocation surface.
// Implementations must be safe for concurrent invocation: a swarm may route
// several requests to the same agent simultaneously, and a registered agent
// may keep serving in-flight chain executions after it has been removed from
// the registry.
type Agent interface {
	AgentCommands

	// ID returns the unique identifier under which the agent is registered.
	ID() string

	// Description returns a human-readable summary of the agent's purpose.
	Description() string

	// Capabilities returns the agent's capability tags. The returned set
	// must not be mutated by callers.
	Capabilities() CapabilitySet
}

// AgentCommands is the uniform invocation surface of an agent.
//
// Invoke and AInvoke carry the same request/response contract; AInvoke is the
// cooperative form returning channels that are closed when the invocation
// completes. Batch and ABatch preserve input order in their results. Stream
// produces a lazy, finite, non-restartable sequence of partial and final
// outputs. SchemaConfig is pure introspection with no side effects.
type AgentCommands interface {
	// Invoke executes a single request to completion.
	Invoke(ctx context.Context, req Request) (Response, error)

	// AInvoke starts a cooperative invocation. Exactly one value is sent on
	// either the response or the error channel; both are then closed.
	AInvoke(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Batch executes independent requests, returning one result per request
	// in input order. A failed item does not abort its siblings.
	Batch(ctx context.Context, reqs []Request) []BatchResult

	// ABatch is the concurrent form of Batch with the same ordering contract.
	ABatch(ctx context.Context, reqs []Request) []BatchResult

	// Stream yields intermediate and final outputs lazily. The returned
	// channel is closed when the invocation finishes or the context is
	// cancelled.
	Stream(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// SchemaConfig returns a static description of the agent's invocation
	// surface (accepted parameters, capability tags) without executing
	// anything.
	SchemaConfig() map[string]any
}

// BatchResult is one item of a batch invocation: either an output or an
// error, tagged with the agent that produced it.
type BatchResult struct {
	Response Response
	Err      error
}

// AgentInfo carries identifying details about an agent for contexts, logs
// and trace annotations. ID is the registry key; Type categorizes the
// implementation (e.g. "function", "model", "tool").
type AgentInfo struct{ ID, Type string }
