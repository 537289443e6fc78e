// Package lifecycle exposes store change events as a lifecycle.Source so
// notes can drive supervised reactive pipelines.
package lifecycle

import (
	"context"
	"slices"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/notekeeper/pkg/core"
)

// SourceOption configures a note event source.
type SourceOption func(*noteSource)

// WithTypes forwards only events of the given types.
func WithTypes(types ...core.EventType) SourceOption {
	return func(s *noteSource) {
		s.types = append(s.types, types...)
	}
}

type noteSource struct {
	events <-chan core.Event
	out    chan lifecycle.Event
	types  []core.EventType
}

// NewSource bridges a typed note event channel to the generic
// lifecycle Event interface.
func NewSource(events <-chan core.Event, opts ...SourceOption) lifecycle.Source {
	s := &noteSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *noteSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *noteSource) accepts(e core.Event) bool {
	return len(s.types) == 0 || slices.Contains(s.types, e.Type)
}

// Start forwards events until ctx is cancelled or the input closes,
// then closes the output.
func (s *noteSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				if !s.accepts(e) {
					continue
				}
				// core.Event implements lifecycle.Event (has String())
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
