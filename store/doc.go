// Package store provides volatile in-memory implementations of the
// core.DocumentStore and core.VectorStore collaborator contracts. Both are
// safe for concurrent access and return cloned values to prevent external
// mutation of internal state; they are best suited for tests and ephemeral
// chain runs.
package store
