package platform

import (
	"context"
	"fmt"

	"github.com/aretw0/notekeeper/pkg/adapters/fs"
	"github.com/aretw0/notekeeper/pkg/adapters/kv"
	"github.com/aretw0/notekeeper/pkg/adapters/memory"
	"github.com/aretw0/notekeeper/pkg/core"
)

// Init builds and initializes the store selected by the options.
// The uri is adapter-specific: the notes file for "fs", a directory for
// "kv" (unless a medium is injected), ignored for "memory".
func Init(uri string, opts ...Option) (core.Store, error) {
	return initStore(context.Background(), uri, newOptions(opts))
}

func newOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func initStore(ctx context.Context, uri string, o *options) (core.Store, error) {
	// 1. Check for injected store
	if o.store != nil {
		return o.store, nil
	}

	// 2. Build based on adapter
	var (
		store core.Store
		err   error
	)
	switch o.adapter {
	case AdapterFS:
		store, err = initFS(uri, o)
	case AdapterKV:
		store, err = initKV(uri, o)
	case AdapterMemory:
		store = memory.New()
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
	if err != nil {
		return nil, err
	}

	// 3. Run initialization
	if in, ok := store.(core.Initializer); ok {
		if err := in.Initialize(ctx); err != nil {
			return nil, err
		}
	}

	return store, nil
}

func initFS(path string, o *options) (core.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("fs adapter requires a file path")
	}
	return fs.NewStore(fs.Config{
		Path:         path,
		Logger:       o.logger,
		Versioning:   o.versioning,
		LockTimeout:  o.lockTimeout,
		ErrorHandler: o.errorHandler,
	}), nil
}

func initKV(dir string, o *options) (core.Store, error) {
	if o.versioning && o.logger != nil {
		o.logger.Warn("versioning is not supported by the kv adapter, ignoring")
	}

	medium := o.medium
	if medium == nil {
		if dir == "" {
			return nil, fmt.Errorf("kv adapter requires a directory or a medium")
		}
		dm, err := kv.NewDirMedium(dir)
		if err != nil {
			return nil, err
		}
		medium = dm
	}
	return kv.New(medium, kv.Config{Key: o.kvKey, Logger: o.logger}), nil
}
