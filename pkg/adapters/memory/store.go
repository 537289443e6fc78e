// Package memory provides a process-local core.Store.
// Contents are lost when the process exits.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/aretw0/notekeeper/pkg/core"
)

// Store keeps notes in insertion order.
type Store struct {
	mu    sync.RWMutex
	notes []core.Note
	index map[string]int
}

// New creates a store pre-populated with seed (later duplicates win).
func New(seed ...core.Note) *Store {
	s := &Store{index: make(map[string]int)}
	for _, n := range seed {
		s.put(n)
	}
	return s
}

// Get implements core.Store.
func (s *Store) Get(ctx context.Context, id string) (core.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return core.Note{}, &core.NotFoundError{ID: id}
	}
	return s.notes[i], nil
}

// List implements core.Store. The result is a copy.
func (s *Store) List(ctx context.Context) ([]core.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.notes), nil
}

// Put implements core.Store.
func (s *Store) Put(ctx context.Context, n core.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(n)
	return nil
}

func (s *Store) put(n core.Note) {
	if i, ok := s.index[n.ID]; ok {
		s.notes[i] = n
		return
	}
	s.index[n.ID] = len(s.notes)
	s.notes = append(s.notes, n)
}

// Remove implements core.Store.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return false, nil
	}
	s.notes = slices.Delete(s.notes, i, i+1)
	delete(s.index, id)
	for j := i; j < len(s.notes); j++ {
		s.index[s.notes[j].ID] = j
	}
	return true, nil
}

// IDs returns the stored ids in order. Used to seed a CounterAllocator.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.notes))
	for i, n := range s.notes {
		out[i] = n.ID
	}
	return out
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Notes int `json:"notes"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreState{Notes: len(s.notes)}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "memory_store"
}

var (
	_ core.Store                   = (*Store)(nil)
	_ introspection.Introspectable = (*Store)(nil)
	_ introspection.Component      = (*Store)(nil)
)
