// Package swarm composes an agent registry with chain execution: agents are
// registered under unique identifiers with capability tags, external
// requests are dispatched to the agents whose capabilities intersect the
// request's requirements, and the resulting configuration (agent definitions
// plus swarm options) can be exported and imported independently of a live
// run.
//
// The registry hands out consistent snapshots: readers and in-flight chain
// executions keep the agent references they resolved even while the registry
// is mutated concurrently.
package swarm
