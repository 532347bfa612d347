package core

import (
	"context"
	"sort"
)

// Callable is the unit of work executed by a chain step. Positional args and
// keyword args are resolved by the chain engine before the call; the returned
// value is published into the chain's execution arena when the step declares
// a result binding.
//
// Implementations must respect context cancellation for long-running work and
// return an error rather than panicking on invalid input.
type Callable func(ctx context.Context, args []any, kwargs map[string]any) (any, error)

// CapabilitySet is an unordered set of capability tags. Capability tags
// describe what an agent or tool can do and drive swarm request dispatch.
type CapabilitySet map[string]struct{}

// NewCapabilitySet builds a set from the given tags, ignoring duplicates.
func NewCapabilitySet(tags ...string) CapabilitySet {
	s := make(CapabilitySet, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}
	return s
}

// Has reports whether the set contains the given tag.
func (s CapabilitySet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Intersects reports whether the set shares at least one tag with other.
// An empty other set never intersects.
func (s CapabilitySet) Intersects(other CapabilitySet) bool {
	small, large := s, other
	if len(other) < len(s) {
		small, large = other, s
	}
	for tag := range small {
		if _, ok := large[tag]; ok {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every tag in required is present in the set.
func (s CapabilitySet) ContainsAll(required CapabilitySet) bool {
	for tag := range required {
		if _, ok := s[tag]; !ok {
			return false
		}
	}
	return true
}

// Tags returns the capability tags in sorted order for deterministic
// serialization and logging.
func (s CapabilitySet) Tags() []string {
	tags := make([]string, 0, len(s))
	for t := range s {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Clone returns an independent copy of the set.
func (s CapabilitySet) Clone() CapabilitySet {
	c := make(CapabilitySet, len(s))
	for t := range s {
		c[t] = struct{}{}
	}
	return c
}

// Request is an external request routed through a swarm. RequiredCapabilities
// selects agents; Payload carries the request arguments handed to each
// selected agent.
type Request struct {
	// RequiredCapabilities must intersect an agent's capability set for the
	// agent to be considered for dispatch.
	RequiredCapabilities CapabilitySet

	// Payload holds the request arguments, keyed by parameter name.
	Payload map[string]any
}

// Response is the result of a single agent invocation.
type Response struct {
	// AgentID identifies the agent that produced this response.
	AgentID string

	// Output is the agent's result. It must be JSON-serializable.
	Output any
}
