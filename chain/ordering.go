package chain

import (
	"sort"
)

// Strategy names used in chain definitions and factory configuration.
const (
	OrderingDeclared   = "declared"
	OrderingDependency = "dependency"
	OrderingPriority   = "priority"
)

// Plan is a resolved execution schedule over a chain's step set: a total
// order, the dependency edges derived from ref bindings, and wavefront
// stages for concurrent execution. Plans are deterministic for a fixed step
// set; strategies must not consult wall-clock time or external state.
type Plan struct {
	// Order is the total execution order of step keys.
	Order []string

	// Edges maps a step key to the keys of the steps producing the refs it
	// consumes, in consumption order.
	Edges map[string][]string

	// Stages groups step keys into wavefronts: every step in stage i depends
	// only on steps in stages < i. Independent steps share a stage.
	Stages [][]string
}

// OrderingStrategy turns a step set into an execution plan. Implementations
// are pure and deterministic so chain runs are reproducible given identical
// inputs.
type OrderingStrategy interface {
	// Name identifies the strategy in chain definitions.
	Name() string

	// Plan resolves the execution schedule, failing with *CycleError on a
	// cyclic reference graph and *UnresolvedRefError when the strategy
	// cannot honor a step's reference.
	Plan(steps []Step) (*Plan, error)
}

// OrderingByName returns the ordering strategy registered under the given
// definition name.
func OrderingByName(name string) (OrderingStrategy, bool) {
	switch name {
	case OrderingDeclared, "":
		return DeclaredOrder{}, true
	case OrderingDependency:
		return DependencyOrder{}, true
	case OrderingPriority:
		return PriorityOrder{}, true
	default:
		return nil, false
	}
}

// DeclaredOrder schedules steps exactly as they were added to the chain. A
// ref consumed before the step producing it has run is rejected, since the
// declared order would bind an absent value.
type DeclaredOrder struct{}

// Name implements OrderingStrategy.
func (DeclaredOrder) Name() string { return OrderingDeclared }

// Plan implements OrderingStrategy.
func (DeclaredOrder) Plan(steps []Step) (*Plan, error) {
	edges, err := refEdges(steps)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(steps))
	for i, s := range steps {
		index[s.Key()] = i
	}
	// Every producer must precede its consumer in declared order.
	for _, s := range steps {
		for _, producer := range edges[s.Key()] {
			if index[producer] >= index[s.Key()] {
				return nil, &UnresolvedRefError{StepKey: s.Key(), Ref: producedRef(steps, producer)}
			}
		}
	}

	order := make([]string, len(steps))
	for i, s := range steps {
		order[i] = s.Key()
	}
	return &Plan{Order: order, Edges: edges, Stages: stagesFor(order, edges)}, nil
}

// DependencyOrder schedules steps by a stable topological sort over the ref
// graph: a step runs only after every step whose binding it consumes.
// Declared order breaks ties, so the sort is deterministic.
type DependencyOrder struct{}

// Name implements OrderingStrategy.
func (DependencyOrder) Name() string { return OrderingDependency }

// Plan implements OrderingStrategy.
func (DependencyOrder) Plan(steps []Step) (*Plan, error) {
	return kahnPlan(steps, func(a, b Step) bool { return false })
}

// PriorityOrder schedules steps by descending priority while always
// honoring dependency edges. Among ready steps, higher priority runs first;
// declared order breaks remaining ties.
type PriorityOrder struct{}

// Name implements OrderingStrategy.
func (PriorityOrder) Name() string { return OrderingPriority }

// Plan implements OrderingStrategy.
func (PriorityOrder) Plan(steps []Step) (*Plan, error) {
	return kahnPlan(steps, func(a, b Step) bool { return a.Priority() > b.Priority() })
}

// refEdges derives the dependency edges of the step set. A ref consumed by a
// step is an edge when some step produces it; refs produced by no step are
// expected to be seeded by the chain input and validated at invocation
// start. Duplicate keys are assumed to have been rejected at AddStep time.
func refEdges(steps []Step) (map[string][]string, error) {
	producers := make(map[string]string, len(steps))
	for _, s := range steps {
		if s.Ref() != "" {
			producers[s.Ref()] = s.Key()
		}
	}
	edges := make(map[string][]string, len(steps))
	for _, s := range steps {
		var deps []string
		for _, ref := range s.refs() {
			if producer, ok := producers[ref]; ok {
				if producer == s.Key() {
					return nil, &CycleError{Members: []string{s.Key()}}
				}
				deps = append(deps, producer)
			}
		}
		edges[s.Key()] = deps
	}
	return edges, nil
}

// producedRef returns the ref binding published by the step with the given
// key, for error reporting.
func producedRef(steps []Step, key string) string {
	for _, s := range steps {
		if s.Key() == key {
			return s.Ref()
		}
	}
	return ""
}

// kahnPlan runs a deterministic Kahn topological sort. The prefer function
// orders ready steps (true when a should run before b); declared order is
// the final tie-break. A non-empty remainder after the sort is a cycle.
func kahnPlan(steps []Step, prefer func(a, b Step) bool) (*Plan, error) {
	edges, err := refEdges(steps)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]Step, len(steps))
	index := make(map[string]int, len(steps))
	for i, s := range steps {
		byKey[s.Key()] = s
		index[s.Key()] = i
	}

	pending := make(map[string]int, len(steps))
	dependents := make(map[string][]string, len(steps))
	for key, deps := range edges {
		pending[key] = len(deps)
		for _, dep := range deps {
			dependents[dep] = append(dependents[dep], key)
		}
	}

	var ready []string
	for _, s := range steps {
		if pending[s.Key()] == 0 {
			ready = append(ready, s.Key())
		}
	}

	sortReady := func() {
		sort.SliceStable(ready, func(i, j int) bool {
			a, b := byKey[ready[i]], byKey[ready[j]]
			if prefer(a, b) {
				return true
			}
			if prefer(b, a) {
				return false
			}
			return index[a.Key()] < index[b.Key()]
		})
	}

	order := make([]string, 0, len(steps))
	for len(ready) > 0 {
		sortReady()
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		for _, dependent := range dependents[next] {
			pending[dependent]--
			if pending[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(order) != len(steps) {
		var members []string
		for _, s := range steps {
			if pending[s.Key()] > 0 {
				members = append(members, s.Key())
			}
		}
		sort.Strings(members)
		return nil, &CycleError{Members: members}
	}

	return &Plan{Order: order, Edges: edges, Stages: stagesFor(order, edges)}, nil
}

// stagesFor groups an ordered, acyclic step set into wavefront stages by
// longest dependency path. Order within a stage follows the total order.
func stagesFor(order []string, edges map[string][]string) [][]string {
	level := make(map[string]int, len(order))
	max := 0
	for _, key := range order {
		l := 0
		for _, dep := range edges[key] {
			if level[dep]+1 > l {
				l = level[dep] + 1
			}
		}
		level[key] = l
		if l > max {
			max = l
		}
	}
	stages := make([][]string, max+1)
	for _, key := range order {
		stages[level[key]] = append(stages[level[key]], key)
	}
	return stages
}
