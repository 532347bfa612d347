package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/swarmchain/core"
	"github.com/hupe1980/swarmchain/logging"
)

// ToolAgentOptions configures a ToolAgent.
type ToolAgentOptions struct {
	Description      string
	BatchConcurrency int
	Logger           logging.Logger
}

// ToolAgent exposes a core.Tool as a capability-tagged agent. The request
// payload is forwarded to the tool as its argument map and validated by the
// tool itself.
type ToolAgent struct {
	BaseAgent
	tool             core.Tool
	batchConcurrency int
}

// NewToolAgent creates a ToolAgent backed by the given tool.
func NewToolAgent(id string, caps core.CapabilitySet, t core.Tool, optFns ...func(o *ToolAgentOptions)) *ToolAgent {
	opts := ToolAgentOptions{
		Description:      fmt.Sprintf("Tool agent %s wrapping %s", id, t.Name()),
		BatchConcurrency: 4,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ToolAgent{
		BaseAgent:        NewBaseAgent(id, opts.Description, caps, opts.Logger),
		tool:             t,
		batchConcurrency: opts.BatchConcurrency,
	}
}

// Tool returns the wrapped tool.
func (a *ToolAgent) Tool() core.Tool { return a.tool }

// Invoke implements core.AgentCommands.
func (a *ToolAgent) Invoke(ctx context.Context, req core.Request) (core.Response, error) {
	out, err := a.tool.Call(ctx, req.Payload)
	if err != nil {
		return core.Response{}, fmt.Errorf("agent %s: %w", a.ID(), err)
	}
	return core.Response{AgentID: a.ID(), Output: out}, nil
}

// AInvoke implements core.AgentCommands.
func (a *ToolAgent) AInvoke(ctx context.Context, req core.Request) (<-chan core.Response, <-chan error) {
	return asyncInvoke(ctx, req, a.Invoke)
}

// Batch implements core.AgentCommands.
func (a *ToolAgent) Batch(ctx context.Context, reqs []core.Request) []core.BatchResult {
	return runBatch(ctx, reqs, a.Invoke)
}

// ABatch implements core.AgentCommands.
func (a *ToolAgent) ABatch(ctx context.Context, reqs []core.Request) []core.BatchResult {
	return runABatch(ctx, reqs, a.Invoke, a.batchConcurrency)
}

// Stream implements core.AgentCommands.
func (a *ToolAgent) Stream(ctx context.Context, req core.Request) (<-chan core.Response, <-chan error) {
	return singleStream(ctx, req, a.Invoke)
}

// SchemaConfig implements core.AgentCommands.
func (a *ToolAgent) SchemaConfig() map[string]any {
	return map[string]any{
		"id":           a.ID(),
		"type":         "tool",
		"description":  a.Description(),
		"capabilities": a.Capabilities().Tags(),
		"tool_name":    a.tool.Name(),
		"parameters":   a.tool.Parameters(),
	}
}
