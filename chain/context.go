package chain

import (
	"sort"
	"sync"
)

// arena is the shared execution context of a single chain invocation: a
// mapping from result binding name (ref) to the value published by the step
// owning that ref. Each key has exactly one writer, so reads during parallel
// execution only need lightweight locking for memory visibility.
type arena struct {
	mu     sync.RWMutex
	values map[string]any
}

func newArena(seed map[string]any) *arena {
	values := make(map[string]any, len(seed))
	for k, v := range seed {
		values[k] = v
	}
	return &arena{values: values}
}

func (a *arena) get(key string) (any, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.values[key]
	return v, ok
}

func (a *arena) put(key string, value any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.values[key] = value
}

// snapshot returns a copy of the arena for template rendering and schema
// introspection without holding the lock during user code.
func (a *arena) snapshot() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]any, len(a.values))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
