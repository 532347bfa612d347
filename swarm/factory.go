package swarm

import (
	"fmt"
	"sync"

	"github.com/hupe1980/swarmchain/core"
	"github.com/hupe1980/swarmchain/logging"
)

// AgentBuilder instantiates an agent from its definition. The deps map
// carries the already-resolved collaborators named by the definition's
// Dependencies, keyed by identifier.
type AgentBuilder func(def AgentDefinition, deps map[string]any) (core.Agent, error)

// FactoryOptions configures a Factory.
type FactoryOptions struct {
	// Logger defaults to NoOpLogger if nil.
	Logger logging.Logger
}

// Factory instantiates agents from declarative definitions using builders
// registered per agent type, resolving declared dependencies against a pool
// of named collaborators (models, tools, stores) supplied by the caller.
type Factory struct {
	mu           sync.RWMutex
	builders     map[string]AgentBuilder
	dependencies map[string]any
	logger       logging.Logger
}

// NewFactory creates a Factory.
func NewFactory(optFns ...func(o *FactoryOptions)) *Factory {
	opts := FactoryOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Factory{
		builders:     make(map[string]AgentBuilder),
		dependencies: make(map[string]any),
		logger:       opts.Logger,
	}
}

// RegisterBuilder installs the builder for an agent type, replacing any
// previous builder for that type.
func (f *Factory) RegisterBuilder(agentType string, builder AgentBuilder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[agentType] = builder
}

// ProvideDependency makes a named collaborator available to definitions
// declaring it.
func (f *Factory) ProvideDependency(id string, dep any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dependencies[id] = dep
}

// BuildAgent instantiates one agent, failing with *UnknownAgentTypeError
// for an unregistered type and *MissingDependencyError for an unsatisfied
// dependency.
func (f *Factory) BuildAgent(def AgentDefinition) (core.Agent, error) {
	if def.ID == "" {
		return nil, fmt.Errorf("swarm: agent definition requires an id")
	}
	f.mu.RLock()
	builder, ok := f.builders[def.Type]
	deps := make(map[string]any, len(def.Dependencies))
	var missing string
	for _, dep := range def.Dependencies {
		v, present := f.dependencies[dep]
		if !present {
			missing = dep
			break
		}
		deps[dep] = v
	}
	f.mu.RUnlock()

	if !ok {
		return nil, &UnknownAgentTypeError{Type: def.Type}
	}
	if missing != "" {
		return nil, &MissingDependencyError{AgentID: def.ID, Dependency: missing}
	}

	a, err := builder(def, deps)
	if err != nil {
		return nil, fmt.Errorf("swarm: build agent %q: %w", def.ID, err)
	}
	f.logger.Debug("agent built", "agent_id", def.ID, "type", def.Type)
	return a, nil
}
