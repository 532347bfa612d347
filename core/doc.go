// Package core defines the shared contracts of the SwarmChain framework:
// the Callable unit executed by chains, the Agent and AgentCommands
// interfaces dispatched by swarms, and the minimal capability contracts for
// external collaborators (models, tools, vector and document stores).
//
// Concrete implementations live in sibling packages (chain, swarm, agent,
// tool, store, model). Orchestration code depends only on the interfaces in
// this package, never on concrete collaborator types.
package core
