package core

import (
	"fmt"

	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	StoreType   string `json:"store_type"`
	IDAllocator string `json:"id_allocator"`
	Mutations   uint64 `json:"mutations"`
	Watchable   bool   `json:"watchable"`
	Store       any    `json:"store,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	st := ServiceState{
		StoreType:   "unknown",
		IDAllocator: fmt.Sprintf("%T", s.ids),
		Mutations:   s.mutations.Load(),
	}

	if s.store != nil {
		st.StoreType = "store"
		if comp, ok := s.store.(introspection.Component); ok {
			st.StoreType = comp.ComponentType()
		}
		if in, ok := s.store.(introspection.Introspectable); ok {
			st.Store = in.State()
		}
		_, st.Watchable = s.store.(Watchable)
	}

	return st
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
