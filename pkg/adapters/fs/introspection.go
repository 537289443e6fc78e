package fs

import (
	"slices"
	"time"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Path          string     `json:"path"`
	Codec         string     `json:"codec"`
	CacheSize     int        `json:"cache_size"`
	CacheHits     uint64     `json:"cache_hits"`
	CacheMisses   uint64     `json:"cache_misses"`
	Versioning    bool       `json:"versioning"`
	WatcherActive bool       `json:"watcher_active"`
	Watchers      int        `json:"watchers"`
	LastWrite     *time.Time `json:"last_write,omitempty"`
	LastLoadError string     `json:"last_load_error,omitempty"`
	Quarantined   []string   `json:"quarantined,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	hits, misses := s.cache.Stats()

	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	st := StoreState{
		Path:          s.Path,
		Codec:         s.codec.Name(),
		CacheSize:     s.cache.Len(),
		CacheHits:     hits,
		CacheMisses:   misses,
		Versioning:    s.config.Versioning,
		WatcherActive: s.watchers > 0,
		Watchers:      s.watchers,
		LastWrite:     s.lastWrite,
		Quarantined:   slices.Clone(s.quarantined),
	}
	if s.lastErr != nil {
		st.LastLoadError = s.lastErr.Error()
	}
	return st
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "fs_store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
