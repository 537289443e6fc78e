// Package kv stores the whole collection as one JSON array under a single key
// of a string key-value medium, the way a browser keeps notes in localStorage.
// The blob is parsed on every access and rewritten on every mutation.
package kv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/notekeeper/pkg/core"
)

// DefaultKey is the medium key holding the notes array.
const DefaultKey = "notes"

// Config holds the dependencies for the KV store.
type Config struct {
	Key    string
	Logger *slog.Logger
}

// Store implements core.Store on top of a Medium.
type Store struct {
	medium Medium
	key    string
	logger *slog.Logger

	mu          sync.Mutex
	lastErr     error
	lastLoad    time.Time
	resets      int
	quarantined []string
}

// New creates a store over m.
func New(m Medium, cfg Config) *Store {
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		medium: m,
		key:    cfg.Key,
		logger: cfg.Logger.With("component", "kv_store", "key", cfg.Key),
	}
}

// load reads and parses the blob. It never writes to the medium.
// Corrupt data is returned as an error wrapping core.ErrStorageCorrupt
// together with the raw value; a medium failure is wrapped in
// core.ErrStorageUnavailable.
func (s *Store) load() ([]core.Note, string, error) {
	s.lastLoad = time.Now()

	raw, ok, err := s.medium.GetItem(s.key)
	if err != nil {
		s.lastErr = err
		s.logger.Error("failed to read notes", "error", err)
		return nil, "", fmt.Errorf("%w: %v", core.ErrStorageUnavailable, err)
	}
	if !ok {
		s.lastErr = nil
		return []core.Note{}, "", nil
	}

	notes, err := core.DecodeNotes([]byte(raw))
	if err != nil {
		s.lastErr = err
		s.resets++
		s.logger.Warn("stored notes are corrupt, treating as empty", "error", err)
		return nil, raw, err
	}

	s.lastErr = nil
	return notes, "", nil
}

// snapshot is load for readers: unavailable or corrupt data reads as empty.
func (s *Store) snapshot() []core.Note {
	notes, _, err := s.load()
	if err != nil {
		return []core.Note{}
	}
	return notes
}

// loadForWrite is load for mutations. Corrupt data is copied aside under a
// fresh "<key>.corrupt-<unixnano>" key before the caller replaces it.
func (s *Store) loadForWrite() ([]core.Note, error) {
	notes, raw, err := s.load()
	switch {
	case errors.Is(err, core.ErrStorageCorrupt):
		if qerr := s.quarantine(raw); qerr != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrStorageUnavailable, qerr)
		}
		return []core.Note{}, nil
	case err != nil:
		return nil, err
	}
	return notes, nil
}

func (s *Store) quarantine(raw string) error {
	stamp := time.Now().UnixNano()
	for {
		dest := fmt.Sprintf("%s.corrupt-%d", s.key, stamp)
		_, taken, err := s.medium.GetItem(dest)
		if err != nil {
			return err
		}
		if taken {
			stamp++
			continue
		}
		if err := s.medium.SetItem(dest, raw); err != nil {
			s.logger.Error("failed to preserve corrupt notes", "error", err)
			return err
		}
		s.quarantined = append(s.quarantined, dest)
		s.logger.Warn("preserved corrupt notes", "moved_to", dest)
		return nil
	}
}

func (s *Store) save(notes []core.Note) error {
	data, err := core.EncodeNotes(notes)
	if err != nil {
		return fmt.Errorf("encode notes: %w", err)
	}
	if err := s.medium.SetItem(s.key, string(data)); err != nil {
		s.logger.Error("failed to write notes", "error", err)
		return fmt.Errorf("%w: %v", core.ErrStorageUnavailable, err)
	}
	return nil
}

// Get implements core.Store.
func (s *Store) Get(ctx context.Context, id string) (core.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.snapshot() {
		if n.ID == id {
			return n, nil
		}
	}
	return core.Note{}, &core.NotFoundError{ID: id}
}

// List implements core.Store. Notes come newest-inserted first.
func (s *Store) List(ctx context.Context) ([]core.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot(), nil
}

// Put implements core.Store. New notes go to the front; replacements keep
// their position.
func (s *Store) Put(ctx context.Context, n core.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.loadForWrite()
	if err != nil {
		return err
	}

	i := slices.IndexFunc(notes, func(x core.Note) bool { return x.ID == n.ID })
	if i >= 0 {
		notes[i] = n
	} else {
		notes = slices.Insert(notes, 0, n)
	}
	return s.save(notes)
}

// Remove implements core.Store.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.loadForWrite()
	if err != nil {
		return false, err
	}

	i := slices.IndexFunc(notes, func(x core.Note) bool { return x.ID == id })
	if i < 0 {
		return false, nil
	}
	return true, s.save(slices.Delete(notes, i, i+1))
}

// LastLoadError returns the failure of the most recent load, if any.
func (s *Store) LastLoadError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Key           string     `json:"key"`
	Resets        int        `json:"resets"`
	LastLoad      *time.Time `json:"last_load,omitempty"`
	LastLoadError string     `json:"last_load_error,omitempty"`
	Quarantined   []string   `json:"quarantined,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := StoreState{Key: s.key, Resets: s.resets, Quarantined: slices.Clone(s.quarantined)}
	if !s.lastLoad.IsZero() {
		t := s.lastLoad
		st.LastLoad = &t
	}
	if s.lastErr != nil {
		st.LastLoadError = s.lastErr.Error()
	}
	return st
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "kv_store"
}

var (
	_ core.Store                   = (*Store)(nil)
	_ introspection.Introspectable = (*Store)(nil)
	_ introspection.Component      = (*Store)(nil)
)
