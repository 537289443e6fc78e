package core

import "context"

// Store defines the contract for the durable collection of notes.
// Adhering to this interface keeps the Service independent of the
// underlying medium (process memory, a key-value blob, a JSON file).
type Store interface {
	// Get retrieves a note by its ID. It returns a *NotFoundError when absent.
	Get(ctx context.Context, id string) (Note, error)

	// List returns all notes. Callers must not rely on the order.
	List(ctx context.Context) ([]Note, error)

	// Put inserts the note or replaces the one with the same ID.
	Put(ctx context.Context, n Note) error

	// Remove deletes a note and reports whether anything was removed.
	// Removing an absent ID is not an error.
	Remove(ctx context.Context, id string) (bool, error)
}

// Initializer is implemented by stores that need setup before first use
// (e.g. creating directories, git init).
type Initializer interface {
	Initialize(ctx context.Context) error
}

// Watchable is implemented by stores that can report changes made by
// other writers.
type Watchable interface {
	// Watch emits events until ctx is cancelled, then closes the channel.
	Watch(ctx context.Context) (<-chan Event, error)
}
