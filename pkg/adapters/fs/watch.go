package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/notekeeper/pkg/core"
)

const (
	watchBuffer   = 64
	watchDebounce = 50 * time.Millisecond
)

// Watch reports notes created, modified or deleted by other writers.
// Changes made through this Store are not reported. The channel is closed
// when ctx is cancelled.
func (s *Store) Watch(ctx context.Context) (<-chan core.Event, error) {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	events := make(chan core.Event, watchBuffer)

	s.mu.Lock()
	baseline := s.snapshot()
	s.stateMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = events
	s.watchers++
	s.known = baseline
	s.stateMu.Unlock()
	s.mu.Unlock()

	s.logger.Debug("watching notes file")

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer s.unsubscribe(id)
		defer watcher.Close()
		return s.watchLoop(ctx, watcher)
	}, lifecycle.WithErrorHandler(func(err error) {
		s.handleError(fmt.Errorf("watcher stopped: %w", err))
	}))

	return events, nil
}

// watchLoop coalesces bursts of filesystem events touching the notes file
// into a single reconcile.
func (s *Store) watchLoop(ctx context.Context, w *fsnotify.Watcher) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	base := filepath.Base(s.Path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			s.logger.Debug("event received", "name", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			s.reconcile()

		case err, ok := <-w.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			s.handleError(err)
		}
	}
}

// reconcile reloads the file and reports what changed since the last
// snapshot this Store knew about.
func (s *Store) reconcile() {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.load()
	if err != nil {
		s.logger.Debug("skipping reconcile", "error", err)
		return
	}
	s.observe(notes)
}

// observe fans out the difference between the known snapshot and notes,
// then records notes as known. Callers hold s.mu.
func (s *Store) observe(notes []core.Note) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	if len(s.subs) > 0 {
		for _, e := range diffNotes(s.known, notes) {
			for _, ch := range s.subs {
				select {
				case ch <- e:
				default:
					s.logger.Warn("watch buffer full, dropping event", "event", e.String())
				}
			}
		}
	}
	s.known = slices.Clone(notes)
}

// setKnown records notes as known without reporting them.
func (s *Store) setKnown(notes []core.Note) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.known = slices.Clone(notes)
}

func (s *Store) unsubscribe(id int) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
		s.watchers--
	}
}

func (s *Store) handleError(err error) {
	if s.config.ErrorHandler != nil {
		s.config.ErrorHandler(err)
		return
	}
	s.logger.Error("watcher error", "error", err)
}

// diffNotes lists creations and modifications in after order, then
// deletions in before order.
func diffNotes(before, after []core.Note) []core.Event {
	now := time.Now().Unix()
	old := make(map[string]core.Note, len(before))
	for _, n := range before {
		old[n.ID] = n
	}

	var events []core.Event
	seen := make(map[string]bool, len(after))
	for _, n := range after {
		seen[n.ID] = true
		prev, existed := old[n.ID]
		switch {
		case !existed:
			events = append(events, core.Event{Type: core.EventCreate, ID: n.ID, Timestamp: now})
		case !sameNote(prev, n):
			events = append(events, core.Event{Type: core.EventModify, ID: n.ID, Timestamp: now})
		}
	}
	for _, n := range before {
		if !seen[n.ID] {
			events = append(events, core.Event{Type: core.EventDelete, ID: n.ID, Timestamp: now})
		}
	}
	return events
}

func sameNote(a, b core.Note) bool {
	return a.Title == b.Title &&
		a.Category == b.Category &&
		a.Content == b.Content &&
		a.CreatedAt.Equal(b.CreatedAt) &&
		a.UpdatedAt.Equal(b.UpdatedAt)
}
