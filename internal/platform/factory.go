package platform

import (
	"context"

	"github.com/aretw0/notekeeper/pkg/core"
)

// New builds the store and wires the domain service on top of it.
//
//	svc, err := notekeeper.New("./notes.json", notekeeper.WithVersioning(true))
func New(uri string, opts ...Option) (*core.Service, error) {
	o := newOptions(opts)

	store, err := initStore(context.Background(), uri, o)
	if err != nil {
		return nil, err
	}

	svcOpts := []core.ServiceOption{
		core.WithIDAllocator(allocatorFor(store, o)),
		core.WithClock(o.clock),
		core.WithLogger(o.logger),
	}
	return core.NewService(store, svcOpts...), nil
}

// idLister is implemented by stores that can enumerate their ids cheaply.
type idLister interface {
	IDs() []string
}

func allocatorFor(store core.Store, o *options) core.IDAllocator {
	if o.ids != nil {
		return o.ids
	}
	if o.adapter == AdapterMemory && o.store == nil {
		var existing []string
		if l, ok := store.(idLister); ok {
			existing = l.IDs()
		}
		return core.NewCounterAllocator(existing...)
	}
	return core.UUIDAllocator{}
}
