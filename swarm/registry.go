package swarm

import (
	"sort"
	"sync"

	"github.com/hupe1980/swarmchain/core"
)

// Registry is a thread-safe CRUD store of agents keyed by identifier. Reads
// return consistent snapshots: a caller that resolved an agent keeps a valid
// reference even if the agent is subsequently replaced or removed, so
// in-flight chain executions always run to completion against the agent set
// they dispatched with.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]core.Agent
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]core.Agent)}
}

// Register adds an agent, failing with *DuplicateAgentError when the id is
// already taken.
func (r *Registry) Register(a core.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.agents[a.ID()]; exists {
		return &DuplicateAgentError{AgentID: a.ID()}
	}
	r.agents[a.ID()] = a
	return nil
}

// Update atomically replaces the agent under id. It fails with
// *UnknownAgentError when the id is absent, leaving the registry untouched;
// concurrent readers observe either the old or the new agent, never a
// partial state.
func (r *Registry) Update(id string, updated core.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.agents[id]; !exists {
		return &UnknownAgentError{AgentID: id}
	}
	r.agents[id] = updated
	return nil
}

// Remove deletes the agent under id. In-flight executions holding a prior
// reference continue against the snapshot they hold.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.agents[id]; !exists {
		return &UnknownAgentError{AgentID: id}
	}
	delete(r.agents, id)
	return nil
}

// Get returns the agent registered under id.
func (r *Registry) Get(id string) (core.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	if !ok {
		return nil, &UnknownAgentError{AgentID: id}
	}
	return a, nil
}

// List returns a snapshot of all agents ordered by id.
func (r *Registry) List() []core.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.agents))
	for id := range r.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]core.Agent, len(ids))
	for i, id := range ids {
		out[i] = r.agents[id]
	}
	return out
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}

// capable returns a snapshot of the agents whose capability set intersects
// required, ordered by id for deterministic dispatch.
func (r *Registry) capable(required core.CapabilitySet) []core.Agent {
	var out []core.Agent
	for _, a := range r.List() {
		if a.Capabilities().Intersects(required) {
			out = append(out, a)
		}
	}
	return out
}
