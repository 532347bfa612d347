package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/swarmchain/core"
	"github.com/hupe1980/swarmchain/logging"
)

// HandlerFunc is the implementation signature of a FunctionAgent: it
// receives the request payload and returns a JSON-serializable result.
type HandlerFunc func(ctx context.Context, payload map[string]any) (any, error)

// FunctionAgentOptions configures a FunctionAgent.
type FunctionAgentOptions struct {
	Description      string
	BatchConcurrency int
	Logger           logging.Logger
}

// FunctionAgent exposes a plain Go function as a capability-tagged agent.
type FunctionAgent struct {
	BaseAgent
	handler          HandlerFunc
	batchConcurrency int
}

// NewFunctionAgent creates a FunctionAgent with the given identity,
// capability tags and handler.
func NewFunctionAgent(id string, caps core.CapabilitySet, handler HandlerFunc, optFns ...func(o *FunctionAgentOptions)) *FunctionAgent {
	opts := FunctionAgentOptions{
		Description:      fmt.Sprintf("Function agent %s", id),
		BatchConcurrency: 4,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &FunctionAgent{
		BaseAgent:        NewBaseAgent(id, opts.Description, caps, opts.Logger),
		handler:          handler,
		batchConcurrency: opts.BatchConcurrency,
	}
}

// Invoke implements core.AgentCommands.
func (a *FunctionAgent) Invoke(ctx context.Context, req core.Request) (core.Response, error) {
	out, err := a.handler(ctx, req.Payload)
	if err != nil {
		return core.Response{}, fmt.Errorf("agent %s: %w", a.ID(), err)
	}
	return core.Response{AgentID: a.ID(), Output: out}, nil
}

// AInvoke implements core.AgentCommands.
func (a *FunctionAgent) AInvoke(ctx context.Context, req core.Request) (<-chan core.Response, <-chan error) {
	return asyncInvoke(ctx, req, a.Invoke)
}

// Batch implements core.AgentCommands.
func (a *FunctionAgent) Batch(ctx context.Context, reqs []core.Request) []core.BatchResult {
	return runBatch(ctx, reqs, a.Invoke)
}

// ABatch implements core.AgentCommands.
func (a *FunctionAgent) ABatch(ctx context.Context, reqs []core.Request) []core.BatchResult {
	return runABatch(ctx, reqs, a.Invoke, a.batchConcurrency)
}

// Stream implements core.AgentCommands.
func (a *FunctionAgent) Stream(ctx context.Context, req core.Request) (<-chan core.Response, <-chan error) {
	return singleStream(ctx, req, a.Invoke)
}

// SchemaConfig implements core.AgentCommands.
func (a *FunctionAgent) SchemaConfig() map[string]any {
	return map[string]any{
		"id":           a.ID(),
		"type":         "function",
		"description":  a.Description(),
		"capabilities": a.Capabilities().Tags(),
	}
}
