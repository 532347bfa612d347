package core

import "context"

// Tool is the capability contract for a structured capability (API call,
// computation, side effect) invocable from a chain step or an agent.
//
// Implementations should provide clear names and descriptions, define a
// proper JSON schema for parameters, and be safe for concurrent use. The
// returned result must be JSON-serializable.
type Tool interface {
	// Name returns the unique identifier for this tool (snake_case
	// recommended).
	Name() string

	// Description returns a human-readable description of what the tool
	// does.
	Description() string

	// Parameters returns a JSON-schema-like map describing the accepted
	// arguments, used for validation and introspection.
	Parameters() map[string]any

	// Call executes the tool with validated arguments.
	Call(ctx context.Context, args map[string]any) (any, error)
}
