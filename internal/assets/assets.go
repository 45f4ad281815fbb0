// Package assets handles scene asset loading and caching.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// ErrNotFound is returned when no source directory holds the asset.
var ErrNotFound = errors.New("asset not found")

// Manager loads asset files from a list of directories.
type Manager struct {
	sources []string
	cache   *Cache
	mu      sync.RWMutex
}

// NewManager creates a manager rooted at the given directories.
func NewManager(roots ...string) *Manager {
	m := &Manager{cache: NewCache()}
	for _, r := range roots {
		m.sources = append(m.sources, filepath.Clean(r))
	}
	return m
}

// AddSource adds a directory to search.
// Sources are searched in reverse order (last added = highest priority).
func (m *Manager) AddSource(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("adding source %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("adding source %s: not a directory", dir)
	}

	m.mu.Lock()
	m.sources = append(m.sources, filepath.Clean(dir))
	m.mu.Unlock()

	return nil
}

// Resolve returns the on-disk path of an asset. Absolute paths are checked
// as-is.
func (m *Manager) Resolve(name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return name, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.sources) - 1; i >= 0; i-- {
		p := filepath.Join(m.sources[i], filepath.FromSlash(name))
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Load reads an asset, serving repeated reads from the cache.
func (m *Manager) Load(name string) ([]byte, error) {
	if data, ok := m.cache.Get(name); ok {
		return data, nil
	}

	p, err := m.Resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}

	m.cache.Set(name, data)
	return data, nil
}

// Cache returns the manager's file cache.
func (m *Manager) Cache() *Cache {
	return m.cache
}

// Close drops all sources and cached data.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sources = nil
	m.cache.Clear()
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	// Stats, updated under the read lock.
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, ok := c.data[key]
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	return int(c.hits.Load()), int(c.misses.Load())
}
