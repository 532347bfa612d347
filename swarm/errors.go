package swarm

import (
	"fmt"
	"sort"
)

// DuplicateAgentError reports a registration under an already-taken agent id.
type DuplicateAgentError struct {
	AgentID string
}

// Error implements the error interface.
func (e *DuplicateAgentError) Error() string {
	return fmt.Sprintf("swarm: agent %q already registered", e.AgentID)
}

// UnknownAgentError reports an operation addressing an unregistered agent id.
type UnknownAgentError struct {
	AgentID string
}

// Error implements the error interface.
func (e *UnknownAgentError) Error() string {
	return fmt.Sprintf("swarm: agent %q not found", e.AgentID)
}

// NoCapableAgentError reports a dispatch whose required capabilities no
// registered agent satisfies.
type NoCapableAgentError struct {
	Required []string
}

// Error implements the error interface.
func (e *NoCapableAgentError) Error() string {
	req := append([]string{}, e.Required...)
	sort.Strings(req)
	return fmt.Sprintf("swarm: no agent capable of %v", req)
}

// UnknownAgentTypeError reports an agent definition naming a type with no
// registered builder.
type UnknownAgentTypeError struct {
	Type string
}

// Error implements the error interface.
func (e *UnknownAgentTypeError) Error() string {
	return fmt.Sprintf("swarm: no builder for agent type %q", e.Type)
}

// MissingDependencyError reports an agent definition whose declared
// collaborator is absent at build time.
type MissingDependencyError struct {
	AgentID    string
	Dependency string
}

// Error implements the error interface.
func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("swarm: agent %q requires missing dependency %q", e.AgentID, e.Dependency)
}
