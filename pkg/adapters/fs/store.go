package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/notekeeper/internal/atomicfile"
	"github.com/aretw0/notekeeper/pkg/core"
	"github.com/aretw0/notekeeper/pkg/git"
)

// Config holds the configuration for the file-backed store.
type Config struct {
	// Path is the notes file. Its extension selects the codec.
	Path   string
	Logger *slog.Logger
	// Versioning commits the notes file to git after every write.
	Versioning bool
	// LockTimeout bounds the wait for the cross-process lock file.
	LockTimeout time.Duration
	// ErrorHandler receives watcher failures. Defaults to logging.
	ErrorHandler func(error)
}

// Store implements core.Store over a single file holding the whole
// collection. Every mutation loads the file, applies the change and
// rewrites it atomically while holding both an in-process mutex and the
// "<Path>.lock" file.
type Store struct {
	Path   string
	config Config
	codec  Codec
	cache  *snapshotCache
	lock   *fileLock
	git    *git.Client
	logger *slog.Logger

	// mu serializes load-mutate-write cycles and watcher reconciliation.
	mu sync.Mutex

	stateMu     sync.RWMutex
	lastErr     error
	lastWrite   *time.Time
	quarantined []string
	known       []core.Note
	subs        map[int]chan core.Event
	nextSub     int
	watchers    int
}

// NewStore creates a new file-backed store.
func NewStore(config Config) *Store {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	path := filepath.Clean(config.Path)
	logger := config.Logger.With("component", "fs_store", "path", path)

	return &Store{
		Path:   path,
		config: config,
		codec:  CodecFor(path),
		cache:  newSnapshotCache(),
		lock:   newFileLock(path+".lock", config.LockTimeout, logger),
		git:    git.NewClient(filepath.Dir(path), logger),
		logger: logger,
		subs:   make(map[int]chan core.Event),
	}
}

// Initialize creates the parent directory and, with versioning, the git
// repository. The notes file itself is created by the first write.
func (s *Store) Initialize(ctx context.Context) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	if !s.config.Versioning {
		return nil
	}

	if !git.IsInstalled() {
		return fmt.Errorf("versioning requested but git is not installed")
	}
	if !s.git.IsRepo() {
		if err := s.git.Init(ctx); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
	}
	if _, err := s.ensureIgnore(); err != nil {
		return fmt.Errorf("failed to ensure .gitignore: %w", err)
	}
	return nil
}

// ensureIgnore keeps lock, temp and quarantine files out of history.
func (s *Store) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(filepath.Dir(s.Path), ".gitignore")
	base := filepath.Base(s.Path)
	wanted := []string{
		base + ".lock",
		base + ".corrupt-*",
		atomicfile.TempPrefix + "*",
	}

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(string(content), "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, w := range wanted {
		if !present[w] {
			missing = append(missing, w)
		}
	}
	if len(missing) == 0 {
		return false, nil
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}
	if _, err := f.WriteString(strings.Join(missing, "\n") + "\n"); err != nil {
		return false, err
	}
	return true, nil
}

// load reads and decodes the file, consulting the snapshot cache.
// A missing file is an empty collection. Decode failures are returned
// wrapped in core.ErrStorageCorrupt, read failures in
// core.ErrStorageUnavailable.
func (s *Store) load() ([]core.Note, error) {
	info, err := os.Stat(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		s.cache.Invalidate()
		s.setLoadErr(nil)
		return []core.Note{}, nil
	}
	if err != nil {
		return nil, s.unavailable(err)
	}

	if notes, ok := s.cache.Get(info); ok {
		s.setLoadErr(nil)
		return notes, nil
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, s.unavailable(err)
	}

	notes, err := s.codec.Decode(data)
	if err != nil {
		s.cache.Invalidate()
		s.setLoadErr(err)
		s.logger.Warn("notes file is corrupt, treating as empty", "error", err)
		return nil, err
	}

	s.cache.Set(info, notes)
	s.setLoadErr(nil)
	return notes, nil
}

func (s *Store) unavailable(err error) error {
	s.setLoadErr(err)
	s.logger.Error("notes file unreadable", "error", err)
	return fmt.Errorf("%w: %v", core.ErrStorageUnavailable, err)
}

// snapshot is load for readers: failures degrade to an empty collection.
func (s *Store) snapshot() []core.Note {
	notes, err := s.load()
	if err != nil {
		return []core.Note{}
	}
	return notes
}

// mutate runs fn over the current collection under both locks and persists
// the result if fn reports a change.
func (s *Store) mutate(ctx context.Context, fn func([]core.Note) ([]core.Note, bool)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock.acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrStorageUnavailable, err)
	}
	defer unlock()

	notes, err := s.load()
	switch {
	case errors.Is(err, core.ErrStorageCorrupt):
		if qerr := s.quarantine(); qerr != nil {
			return fmt.Errorf("%w: %v", core.ErrStorageUnavailable, qerr)
		}
		notes = []core.Note{}
	case err != nil:
		return err
	}

	// Report changes other writers made since we last looked.
	s.observe(notes)

	next, changed := fn(notes)
	if !changed {
		return nil
	}

	if err := s.write(ctx, next); err != nil {
		return err
	}
	s.setKnown(next)
	return nil
}

func (s *Store) write(ctx context.Context, notes []core.Note) error {
	data, err := s.codec.Encode(notes)
	if err != nil {
		return fmt.Errorf("failed to encode notes: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStorageUnavailable, err)
	}
	if err := atomicfile.WriteFile(s.Path, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStorageUnavailable, err)
	}

	if info, err := os.Stat(s.Path); err == nil {
		s.cache.Set(info, notes)
	} else {
		s.cache.Invalidate()
	}

	now := time.Now()
	s.stateMu.Lock()
	s.lastWrite = &now
	s.stateMu.Unlock()

	if s.config.Versioning {
		if err := s.commit(ctx); err != nil {
			return fmt.Errorf("failed to record history: %w", err)
		}
	}
	return nil
}

func (s *Store) commit(ctx context.Context) error {
	base := filepath.Base(s.Path)

	changed, err := s.git.HasChanges(ctx, base)
	if err != nil || !changed {
		return err
	}
	if err := s.git.Add(ctx, base); err != nil {
		return err
	}

	msg := "update " + base
	if val, ok := ctx.Value(core.ChangeReasonKey).(string); ok && val != "" {
		msg = val
	}
	return s.git.Commit(ctx, msg)
}

// quarantine moves the corrupt file aside so the next write cannot destroy it.
func (s *Store) quarantine() error {
	dest := fmt.Sprintf("%s.corrupt-%d", s.Path, time.Now().Unix())
	if err := os.Rename(s.Path, dest); err != nil {
		s.logger.Error("failed to quarantine corrupt notes file", "error", err)
		return err
	}
	s.cache.Invalidate()
	s.logger.Warn("quarantined corrupt notes file", "moved_to", dest)

	s.stateMu.Lock()
	s.quarantined = append(s.quarantined, dest)
	s.stateMu.Unlock()
	return nil
}

// Get implements core.Store.
func (s *Store) Get(ctx context.Context, id string) (core.Note, error) {
	for _, n := range s.snapshot() {
		if n.ID == id {
			return n, nil
		}
	}
	return core.Note{}, &core.NotFoundError{ID: id}
}

// List implements core.Store. Notes keep file order (oldest insert first).
func (s *Store) List(ctx context.Context) ([]core.Note, error) {
	return s.snapshot(), nil
}

// Put implements core.Store.
func (s *Store) Put(ctx context.Context, n core.Note) error {
	return s.mutate(ctx, func(notes []core.Note) ([]core.Note, bool) {
		i := slices.IndexFunc(notes, func(x core.Note) bool { return x.ID == n.ID })
		if i >= 0 {
			notes[i] = n
			return notes, true
		}
		return append(notes, n), true
	})
}

// Remove implements core.Store.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := s.mutate(ctx, func(notes []core.Note) ([]core.Note, bool) {
		i := slices.IndexFunc(notes, func(x core.Note) bool { return x.ID == id })
		if i < 0 {
			return notes, false
		}
		removed = true
		return slices.Delete(notes, i, i+1), true
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// LastLoadError returns the failure of the most recent load, if any.
func (s *Store) LastLoadError() error {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.lastErr
}

func (s *Store) setLoadErr(err error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.lastErr = err
}

var (
	_ core.Store       = (*Store)(nil)
	_ core.Initializer = (*Store)(nil)
	_ core.Watchable   = (*Store)(nil)
)
