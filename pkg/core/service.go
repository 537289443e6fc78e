package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// maxAllocAttempts bounds the retries when an allocated id is already taken.
const maxAllocAttempts = 16

// Service is the Notes Repository: it validates input, assigns identity and
// timestamps, and delegates persistence to a Store.
type Service struct {
	store  Store
	ids    IDAllocator
	now    func() time.Time
	logger *slog.Logger

	// mu serializes every read-modify-write against the store.
	mu        sync.Mutex
	mutations atomic.Uint64
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithIDAllocator sets the identity source. Defaults to UUIDAllocator.
func WithIDAllocator(a IDAllocator) ServiceOption {
	return func(s *Service) {
		if a != nil {
			s.ids = a
		}
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger used for mutation traces.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a new Service over store.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		ids:    UUIDAllocator{},
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying store.
func (s *Service) Store() Store {
	return s.store
}

// Create validates in, assigns a fresh id and persists a new note whose
// CreatedAt and UpdatedAt are both the current time.
func (s *Service) Create(ctx context.Context, in NoteInput) (Note, error) {
	if err := in.Validate(); err != nil {
		return Note{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.allocate(ctx)
	if err != nil {
		return Note{}, err
	}

	now := s.timestamp()
	n := Note{
		ID:        id,
		Title:     in.Title,
		Category:  in.Category,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Put(withReason(ctx, "create note "+id), n); err != nil {
		return Note{}, fmt.Errorf("create note: %w", err)
	}
	s.mutations.Add(1)
	s.logger.Debug("note created", "id", id, "category", n.Category)
	return n, nil
}

// Update replaces the title, category and content of an existing note.
// ID and CreatedAt are preserved; UpdatedAt moves forward.
func (s *Service) Update(ctx context.Context, id string, in NoteInput) (Note, error) {
	if err := in.Validate(); err != nil {
		return Note{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return Note{}, err
	}
	return s.replace(ctx, existing, in)
}

// Patch merges the non-nil fields of p into an existing note.
func (s *Service) Patch(ctx context.Context, id string, p NotePatch) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return Note{}, err
	}

	in := p.Apply(existing)
	if err := in.Validate(); err != nil {
		return Note{}, err
	}
	return s.replace(ctx, existing, in)
}

func (s *Service) replace(ctx context.Context, existing Note, in NoteInput) (Note, error) {
	n := existing
	n.Title = in.Title
	n.Category = in.Category
	n.Content = in.Content

	n.UpdatedAt = s.timestamp()
	if n.UpdatedAt.Before(existing.UpdatedAt) {
		n.UpdatedAt = existing.UpdatedAt
	}

	if err := s.store.Put(withReason(ctx, "update note "+n.ID), n); err != nil {
		return Note{}, fmt.Errorf("update note %s: %w", n.ID, err)
	}
	s.mutations.Add(1)
	s.logger.Debug("note updated", "id", n.ID)
	return n, nil
}

// Delete removes the note. Deleting an absent id is a no-op.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.store.Remove(withReason(ctx, "delete note "+id), id)
	if err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	if removed {
		s.mutations.Add(1)
		s.logger.Debug("note deleted", "id", id)
	}
	return nil
}

// Import stores n as is, keeping its id and timestamps. A note with the
// same id is replaced only when overwrite is set. It reports whether n was
// written.
func (s *Service) Import(ctx context.Context, n Note, overwrite bool) (bool, error) {
	if n.ID == "" {
		return false, &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if err := (NoteInput{Title: n.Title}).Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.store.Get(ctx, n.ID)
	switch {
	case err == nil && !overwrite:
		return false, nil
	case err != nil && !IsNotFound(err):
		return false, fmt.Errorf("import note %s: %w", n.ID, err)
	}

	n.CreatedAt = n.CreatedAt.UTC()
	n.UpdatedAt = n.UpdatedAt.UTC()
	if n.UpdatedAt.Before(n.CreatedAt) {
		n.UpdatedAt = n.CreatedAt
	}

	if err := s.store.Put(withReason(ctx, "import note "+n.ID), n); err != nil {
		return false, fmt.Errorf("import note %s: %w", n.ID, err)
	}
	if obs, ok := s.ids.(interface{ Observe(...string) }); ok {
		obs.Observe(n.ID)
	}
	s.mutations.Add(1)
	s.logger.Debug("note imported", "id", n.ID)
	return true, nil
}

// Get returns the note with the given id.
func (s *Service) Get(ctx context.Context, id string) (Note, error) {
	return s.store.Get(ctx, id)
}

// GetAll returns every stored note. The result is never nil.
func (s *Service) GetAll(ctx context.Context) ([]Note, error) {
	notes, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []Note{}
	}
	return notes, nil
}

// Search filters a fresh snapshot of the store with q.
func (s *Service) Search(ctx context.Context, q Query) ([]Note, error) {
	notes, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return Search(notes, q), nil
}

// RecentLimit caps the "recent" figure reported by Stats.
const RecentLimit = 5

// Stats summarizes the collection for dashboards.
type Stats struct {
	Total      int            `json:"total"`
	Recent     int            `json:"recent"`
	Categories map[string]int `json:"categories"`
}

// Stats computes counts over the current snapshot.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	notes, err := s.GetAll(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		Total:      len(notes),
		Recent:     min(len(notes), RecentLimit),
		Categories: make(map[string]int),
	}
	for _, n := range notes {
		st.Categories[n.Category]++
	}
	return st, nil
}

// Watch forwards change events from the store if it supports watching.
func (s *Service) Watch(ctx context.Context) (<-chan Event, error) {
	w, ok := s.store.(Watchable)
	if !ok {
		return nil, ErrWatchUnsupported
	}
	return w.Watch(ctx)
}

// allocate draws ids until one is free in the store.
func (s *Service) allocate(ctx context.Context) (string, error) {
	for range maxAllocAttempts {
		id := s.ids.Allocate()
		_, err := s.store.Get(ctx, id)
		if err == nil {
			s.logger.Warn("allocated id already in use, retrying", "id", id)
			continue
		}
		if IsNotFound(err) {
			return id, nil
		}
		return "", fmt.Errorf("allocate id: %w", err)
	}
	return "", fmt.Errorf("allocate id: no free id after %d attempts", maxAllocAttempts)
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}

// withReason attaches a change reason unless the caller already set one.
func withReason(ctx context.Context, reason string) context.Context {
	if v, ok := ctx.Value(ChangeReasonKey).(string); ok && v != "" {
		return ctx
	}
	return context.WithValue(ctx, ChangeReasonKey, reason)
}
