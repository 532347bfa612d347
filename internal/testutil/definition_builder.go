package testutil

import (
	"github.com/hupe1980/swarmchain/chain"
)

// DefinitionBuilder provides a fluent helper for constructing chain
// definitions in tests.
// Example:
//
//	def := NewDefinitionBuilder("pipeline").
//		Step("fetch", "fetch_page", func(s *chain.StepDefinition) { s.Ref = "page" }).
//		Step("summarize", "summarize", func(s *chain.StepDefinition) { s.Args = []any{"@ref:page"} }).
//		Ordering(chain.OrderingDependency).
//		Build()
//
// Chain only the parts you need; sensible defaults are applied.
type DefinitionBuilder struct {
	def chain.Definition
}

// NewDefinitionBuilder creates a builder for a definition with the given key.
func NewDefinitionBuilder(key string) *DefinitionBuilder {
	return &DefinitionBuilder{def: chain.Definition{Key: key}}
}

// Ordering sets the ordering strategy name (chainable).
func (b *DefinitionBuilder) Ordering(name string) *DefinitionBuilder {
	b.def.Ordering = name
	return b
}

// Processing sets the processing strategy name (chainable).
func (b *DefinitionBuilder) Processing(name string) *DefinitionBuilder {
	b.def.Processing = name
	return b
}

// Output names the binding returned as the chain's terminal output (chainable).
func (b *DefinitionBuilder) Output(ref string) *DefinitionBuilder {
	b.def.Output = ref
	return b
}

// Config sets a configuration entry (chainable).
func (b *DefinitionBuilder) Config(key string, value any) *DefinitionBuilder {
	if b.def.Config == nil {
		b.def.Config = map[string]any{}
	}
	b.def.Config[key] = value
	return b
}

// Step appends a step definition with the given key and callable name,
// applying optional mutators for args, kwargs, ref, priority and timeout
// (chainable).
func (b *DefinitionBuilder) Step(key, callable string, mutFns ...func(s *chain.StepDefinition)) *DefinitionBuilder {
	sd := chain.StepDefinition{Key: key, Callable: callable}
	for _, fn := range mutFns {
		fn(&sd)
	}
	b.def.Steps = append(b.def.Steps, sd)
	return b
}

// Build returns the assembled definition.
func (b *DefinitionBuilder) Build() chain.Definition { return b.def }
