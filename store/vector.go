package store

import (
	"fmt"
	"sync"

	"github.com/hupe1980/swarmchain/core"
)

// InMemoryVectorStore is a volatile core.VectorStore keeping vectors in a
// process-local map.
type InMemoryVectorStore struct {
	mu   sync.RWMutex
	vecs map[string]core.Vector
}

// NewInMemoryVectorStore constructs an empty vector store.
func NewInMemoryVectorStore() *InMemoryVectorStore {
	return &InMemoryVectorStore{vecs: make(map[string]core.Vector)}
}

// AddVector stores a vector, rejecting an already-used id.
func (s *InMemoryVectorStore) AddVector(vec core.Vector) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.vecs[vec.ID]; exists {
		return fmt.Errorf("store: vector %q already exists", vec.ID)
	}
	s.vecs[vec.ID] = cloneVector(vec)
	return nil
}

// GetVector returns a clone of the stored vector.
func (s *InMemoryVectorStore) GetVector(id string) (core.Vector, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vec, ok := s.vecs[id]
	if !ok {
		return core.Vector{}, false
	}
	return cloneVector(vec), true
}

// UpdateVector atomically replaces an existing vector.
func (s *InMemoryVectorStore) UpdateVector(id string, vec core.Vector) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.vecs[id]; !exists {
		return fmt.Errorf("store: vector %q not found", id)
	}
	vec.ID = id
	s.vecs[id] = cloneVector(vec)
	return nil
}

// DeleteVector removes a vector by id.
func (s *InMemoryVectorStore) DeleteVector(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.vecs[id]; !exists {
		return fmt.Errorf("store: vector %q not found", id)
	}
	delete(s.vecs, id)
	return nil
}

// Len returns the number of stored vectors.
func (s *InMemoryVectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vecs)
}

func cloneVector(vec core.Vector) core.Vector {
	out := vec
	out.Values = make([]float64, len(vec.Values))
	copy(out.Values, vec.Values)
	if vec.Metadata != nil {
		out.Metadata = make(map[string]any, len(vec.Metadata))
		for k, v := range vec.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}
