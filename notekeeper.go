package notekeeper

import (
	"log/slog"
	"time"

	"github.com/aretw0/notekeeper/internal/platform"
	"github.com/aretw0/notekeeper/pkg/adapters/kv"
	"github.com/aretw0/notekeeper/pkg/core"
)

// --- Types ---

// Note is a public alias for the domain entity.
type Note = core.Note

// NoteInput is a public alias for the create/update payload.
type NoteInput = core.NoteInput

// NotePatch is a public alias for a partial update.
type NotePatch = core.NotePatch

// Query is a public alias for a search filter.
type Query = core.Query

// Service is a public alias for the notes repository service.
type Service = core.Service

// ServiceState is the introspection snapshot returned by Service.State.
type ServiceState = core.ServiceState

// Stats is a public alias for the dashboard summary.
type Stats = core.Stats

// Event is a public alias for a change notification.
type Event = core.Event

// --- Configuration ---

// Adapter names.
const (
	AdapterFS     = platform.AdapterFS
	AdapterKV     = platform.AdapterKV
	AdapterMemory = platform.AdapterMemory
)

// Option defines a functional option for configuring the service.
type Option = platform.Option

// WithAdapter selects the storage adapter by name ("fs", "kv", "memory").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithLogger sets the logger for the service and its store.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore injects a custom store.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithVersioning commits every write of the notes file to git.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithLockTimeout bounds the wait for the cross-process lock file.
func WithLockTimeout(d time.Duration) Option {
	return platform.WithLockTimeout(d)
}

// WithKVMedium sets the key-value medium for the kv adapter.
func WithKVMedium(m kv.Medium) Option {
	return platform.WithKVMedium(m)
}

// WithKVKey overrides the key holding the notes array.
func WithKVKey(key string) Option {
	return platform.WithKVKey(key)
}

// WithIDAllocator overrides the identity source.
func WithIDAllocator(a core.IDAllocator) Option {
	return platform.WithIDAllocator(a)
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithWatcherErrorHandler registers a callback for watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New creates a notes Service.
func New(uri string, opts ...Option) (*core.Service, error) {
	return platform.New(uri, opts...)
}

// Init creates and initializes a store explicitly.
func Init(uri string, opts ...Option) (core.Store, error) {
	return platform.Init(uri, opts...)
}

// --- Utils ---

// FindNotesFile looks upwards from startDir for a file called name.
func FindNotesFile(startDir, name string) (string, error) {
	return platform.FindNotesFile(startDir, name)
}
