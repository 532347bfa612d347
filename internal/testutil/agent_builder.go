package testutil

import (
	"context"
	"fmt"

	"github.com/hupe1980/swarmchain/agent"
	"github.com/hupe1980/swarmchain/core"
)

// AgentBuilder provides a fluent helper for constructing function-backed
// agents in tests.
// Example:
//
//	a := NewAgentBuilder("translator").
//		Capabilities("translate").
//		Reply("bonjour").
//		Build()
type AgentBuilder struct {
	id      string
	caps    []string
	handler agent.HandlerFunc
}

// NewAgentBuilder creates a builder for an agent with the given id. The
// default handler echoes the agent id.
func NewAgentBuilder(id string) *AgentBuilder {
	return &AgentBuilder{
		id: id,
		handler: func(_ context.Context, _ map[string]any) (any, error) {
			return id, nil
		},
	}
}

// Capabilities sets the agent's capability tags (chainable).
func (b *AgentBuilder) Capabilities(tags ...string) *AgentBuilder {
	b.caps = tags
	return b
}

// Reply makes the agent return a fixed output (chainable).
func (b *AgentBuilder) Reply(output any) *AgentBuilder {
	b.handler = func(_ context.Context, _ map[string]any) (any, error) {
		return output, nil
	}
	return b
}

// Fail makes the agent return the given error (chainable).
func (b *AgentBuilder) Fail(err error) *AgentBuilder {
	b.handler = func(_ context.Context, _ map[string]any) (any, error) {
		return nil, err
	}
	return b
}

// Handler sets a custom handler (chainable).
func (b *AgentBuilder) Handler(h agent.HandlerFunc) *AgentBuilder {
	b.handler = h
	return b
}

// Build returns the assembled agent.
func (b *AgentBuilder) Build() core.Agent {
	return agent.NewFunctionAgent(b.id, core.NewCapabilitySet(b.caps...), b.handler, func(o *agent.FunctionAgentOptions) {
		o.Description = fmt.Sprintf("Test agent %s", b.id)
	})
}
