package store

import (
	"fmt"
	"sync"

	"github.com/hupe1980/swarmchain/core"
)

// InMemoryDocumentStore is a volatile core.DocumentStore keeping documents
// in a process-local map.
type InMemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[string]core.Document
}

// NewInMemoryDocumentStore constructs an empty document store.
func NewInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{docs: make(map[string]core.Document)}
}

// AddDocument stores a document, rejecting an already-used id.
func (s *InMemoryDocumentStore) AddDocument(doc core.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[doc.ID]; exists {
		return fmt.Errorf("store: document %q already exists", doc.ID)
	}
	s.docs[doc.ID] = cloneDocument(doc)
	return nil
}

// GetDocument returns a clone of the stored document.
func (s *InMemoryDocumentStore) GetDocument(id string) (core.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return core.Document{}, false
	}
	return cloneDocument(doc), true
}

// UpdateDocument atomically replaces an existing document.
func (s *InMemoryDocumentStore) UpdateDocument(id string, doc core.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[id]; !exists {
		return fmt.Errorf("store: document %q not found", id)
	}
	doc.ID = id
	s.docs[id] = cloneDocument(doc)
	return nil
}

// DeleteDocument removes a document by id.
func (s *InMemoryDocumentStore) DeleteDocument(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[id]; !exists {
		return fmt.Errorf("store: document %q not found", id)
	}
	delete(s.docs, id)
	return nil
}

// Count returns the number of stored documents.
func (s *InMemoryDocumentStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func cloneDocument(doc core.Document) core.Document {
	out := doc
	if doc.Metadata != nil {
		out.Metadata = make(map[string]any, len(doc.Metadata))
		for k, v := range doc.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}
