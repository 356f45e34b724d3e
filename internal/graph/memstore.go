package graph

import (
	"context"
	"fmt"
	"sync"
)

type edge struct {
	from Ref
	rel  Relation
	to   Ref
}

// MemStore is an in-process Store used when no database is configured and
// in tests.
type MemStore struct {
	mu    sync.RWMutex
	nodes map[Ref]Props
	edges map[edge]struct{}
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		nodes: make(map[Ref]Props),
		edges: make(map[edge]struct{}),
	}
}

// MergeNode implements Store.
func (s *MemStore) MergeNode(_ context.Context, label Label, key string, props Props) (Props, error) {
	ref := Ref{Label: label, Key: key}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.nodes[ref]
	if !ok {
		stored = Props{}
		s.nodes[ref] = stored
	}
	for k, v := range props {
		stored[k] = v
	}
	return stored.clone(), nil
}

// Link implements Store.
func (s *MemStore) Link(_ context.Context, from Ref, rel Relation, to Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[from]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, from)
	}
	if _, ok := s.nodes[to]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, to)
	}
	s.edges[edge{from: from, rel: rel, to: to}] = struct{}{}
	return nil
}

// Node returns a copy of the stored properties of a node.
func (s *MemStore) Node(ref Ref) (Props, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.nodes[ref]
	if !ok {
		return nil, false
	}
	return p.clone(), true
}

// NodeCount returns the number of nodes with the given label.
func (s *MemStore) NodeCount(label Label) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for ref := range s.nodes {
		if ref.Label == label {
			n++
		}
	}
	return n
}

// EdgeCount returns the number of edges of the given relation.
func (s *MemStore) EdgeCount(rel Relation) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for e := range s.edges {
		if e.rel == rel {
			n++
		}
	}
	return n
}

// HasEdge reports whether the edge exists.
func (s *MemStore) HasEdge(from Ref, rel Relation, to Ref) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.edges[edge{from: from, rel: rel, to: to}]
	return ok
}
