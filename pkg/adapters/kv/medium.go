package kv

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/notekeeper/internal/atomicfile"
)

// Medium is a string key-value store shaped like the browser's localStorage.
type Medium interface {
	// GetItem returns the value under key and whether it exists.
	GetItem(key string) (string, bool, error)
	// SetItem stores value under key, replacing any previous value.
	SetItem(key, value string) error
}

// MapMedium keeps items in process memory.
type MapMedium struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMapMedium creates an empty in-memory medium.
func NewMapMedium() *MapMedium {
	return &MapMedium{items: make(map[string]string)}
}

// GetItem implements Medium.
func (m *MapMedium) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

// SetItem implements Medium.
func (m *MapMedium) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

// DirMedium stores each key as a file inside Dir.
type DirMedium struct {
	Dir string
}

// NewDirMedium creates the directory if needed.
func NewDirMedium(dir string) (*DirMedium, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create medium dir: %w", err)
	}
	return &DirMedium{Dir: dir}, nil
}

func (d *DirMedium) path(key string) string {
	return filepath.Join(d.Dir, url.PathEscape(key))
}

// GetItem implements Medium.
func (d *DirMedium) GetItem(key string) (string, bool, error) {
	data, err := os.ReadFile(d.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// SetItem implements Medium.
func (d *DirMedium) SetItem(key, value string) error {
	return atomicfile.WriteFile(d.path(key), []byte(value), 0644)
}
