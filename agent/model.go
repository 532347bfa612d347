package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/swarmchain/core"
	"github.com/hupe1980/swarmchain/logging"
)

// payload key carrying the prompt handed to the wrapped model.
const payloadInputKey = "input"

// ModelAgentOptions configures a ModelAgent.
type ModelAgentOptions struct {
	Description      string
	BatchConcurrency int
	Logger           logging.Logger
}

// ModelAgent exposes a core.Model as a capability-tagged agent. The request
// payload's "input" entry is the prompt; any "options" map is forwarded to
// the model untouched.
type ModelAgent struct {
	BaseAgent
	model            core.Model
	batchConcurrency int
}

// NewModelAgent creates a ModelAgent backed by the given model.
func NewModelAgent(id string, caps core.CapabilitySet, model core.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Description:      fmt.Sprintf("Model agent %s", id),
		BatchConcurrency: 4,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ModelAgent{
		BaseAgent:        NewBaseAgent(id, opts.Description, caps, opts.Logger),
		model:            model,
		batchConcurrency: opts.BatchConcurrency,
	}
}

// Model returns the wrapped model.
func (a *ModelAgent) Model() core.Model { return a.model }

// Invoke implements core.AgentCommands.
func (a *ModelAgent) Invoke(ctx context.Context, req core.Request) (core.Response, error) {
	input, ok := req.Payload[payloadInputKey].(string)
	if !ok {
		return core.Response{}, fmt.Errorf("agent %s: payload %q must be a string", a.ID(), payloadInputKey)
	}
	options, _ := req.Payload["options"].(map[string]any)

	out, err := a.model.Predict(ctx, input, options)
	if err != nil {
		return core.Response{}, fmt.Errorf("agent %s: %w", a.ID(), err)
	}
	return core.Response{AgentID: a.ID(), Output: out}, nil
}

// AInvoke implements core.AgentCommands.
func (a *ModelAgent) AInvoke(ctx context.Context, req core.Request) (<-chan core.Response, <-chan error) {
	return asyncInvoke(ctx, req, a.Invoke)
}

// Batch implements core.AgentCommands.
func (a *ModelAgent) Batch(ctx context.Context, reqs []core.Request) []core.BatchResult {
	return runBatch(ctx, reqs, a.Invoke)
}

// ABatch implements core.AgentCommands.
func (a *ModelAgent) ABatch(ctx context.Context, reqs []core.Request) []core.BatchResult {
	return runABatch(ctx, reqs, a.Invoke, a.batchConcurrency)
}

// Stream implements core.AgentCommands.
func (a *ModelAgent) Stream(ctx context.Context, req core.Request) (<-chan core.Response, <-chan error) {
	return singleStream(ctx, req, a.Invoke)
}

// SchemaConfig implements core.AgentCommands.
func (a *ModelAgent) SchemaConfig() map[string]any {
	return map[string]any{
		"id":           a.ID(),
		"type":         "model",
		"description":  a.Description(),
		"capabilities": a.Capabilities().Tags(),
		"model_name":   a.model.ModelName(),
		"parameters": map[string]any{
			"type": "object",
			"properties": map[string]any{
				payloadInputKey: map[string]any{"type": "string"},
				"options":       map[string]any{"type": "object"},
			},
			"required": []string{payloadInputKey},
		},
	}
}
