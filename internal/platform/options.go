package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/notekeeper/pkg/adapters/kv"
	"github.com/aretw0/notekeeper/pkg/core"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterFS     = "fs"
	AdapterKV     = "kv"
	AdapterMemory = "memory"
)

// options holds the internal configuration for the notes service.
type options struct {
	store        core.Store
	logger       *slog.Logger
	adapter      string
	versioning   bool
	lockTimeout  time.Duration
	medium       kv.Medium
	kvKey        string
	ids          core.IDAllocator
	clock        func() time.Time
	errorHandler func(error)
}

// Option defines a functional option for configuring the service.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter: AdapterFS,
	}
}

// WithAdapter selects the storage adapter by name ("fs", "kv", "memory").
// Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithLogger sets the logger for the service and its store.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore injects a custom store (e.g. a mock).
// If provided, the adapter selection is skipped.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithVersioning commits every write to git (fs adapter only).
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.versioning = enabled
	}
}

// WithLockTimeout bounds the wait for the cross-process lock (fs adapter only).
func WithLockTimeout(d time.Duration) Option {
	return func(o *options) {
		o.lockTimeout = d
	}
}

// WithKVMedium sets the medium for the kv adapter. Without it the URI is
// used as a directory holding one file per key.
func WithKVMedium(m kv.Medium) Option {
	return func(o *options) {
		o.medium = m
	}
}

// WithKVKey overrides the key holding the notes array (kv adapter only).
func WithKVKey(key string) Option {
	return func(o *options) {
		o.kvKey = key
	}
}

// WithIDAllocator overrides the identity source.
// Defaults to a counter for "memory" and UUIDs for persistent adapters.
func WithIDAllocator(a core.IDAllocator) Option {
	return func(o *options) {
		o.ids = a
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithWatcherErrorHandler registers a callback for runtime watcher failures
// which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
