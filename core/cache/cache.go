// Package cache provides LRU caching for parsed page trees and rendered
// page output.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/ggfazio/zim-desktop-wiki/core/tree"
)

// Cache is a generic LRU cache interface.
type Cache[K comparable, V any] interface {
	// Get retrieves a value from the cache.
	Get(key K) (V, bool)

	// Put stores a value in the cache.
	Put(key K, value V)

	// Remove removes a value from the cache.
	Remove(key K)

	// Clear removes all entries from the cache.
	Clear()

	// Len returns the number of entries in the cache.
	Len() int

	// Stats returns cache statistics.
	Stats() Stats
}

// Stats contains cache statistics.
type Stats struct {
	Hits       int64
	Misses     int64
	Evictions  int64
	Size       int
	MaxSize    int
	TotalBytes int64
}

// Config contains cache configuration options.
type Config struct {
	// MaxSize is the maximum number of entries (0 = unlimited).
	MaxSize int

	// TTL is the time-to-live for entries (0 = no expiration).
	TTL time.Duration

	// OnEvict is called when an entry is evicted.
	OnEvict func(key, value interface{})
}

// DefaultConfig returns a default cache configuration.
func DefaultConfig() Config {
	return Config{
		MaxSize: 100,
		TTL:     0,
		OnEvict: nil,
	}
}

// entry represents a cache entry.
type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// lruCache is a thread-safe LRU cache implementation.
type lruCache[K comparable, V any] struct {
	mu        sync.RWMutex
	config    Config
	entries   map[K]*list.Element
	evictList *list.List
	stats     Stats
}

// NewLRUCache creates a new LRU cache with the given configuration.
func NewLRUCache[K comparable, V any](config Config) Cache[K, V] {
	if config.MaxSize < 0 {
		config.MaxSize = 0
	}

	return &lruCache[K, V]{
		config:    config,
		entries:   make(map[K]*list.Element),
		evictList: list.New(),
	}
}

// Get retrieves a value from the cache.
func (c *lruCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}

	// Check if expired
	e := ent.Value.(*entry[K, V])
	if c.config.TTL > 0 && time.Now().After(e.expiresAt) {
		c.removeElement(ent)
		c.stats.Misses++
		var zero V
		return zero, false
	}

	// Move to front (most recently used)
	c.evictList.MoveToFront(ent)
	c.stats.Hits++
	return e.value, true
}

// Put stores a value in the cache.
func (c *lruCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Check if entry already exists
	if ent, ok := c.entries[key]; ok {
		c.evictList.MoveToFront(ent)
		e := ent.Value.(*entry[K, V])
		e.value = value
		if c.config.TTL > 0 {
			e.expiresAt = time.Now().Add(c.config.TTL)
		}
		return
	}

	// Add new entry
	e := &entry[K, V]{
		key:   key,
		value: value,
	}
	if c.config.TTL > 0 {
		e.expiresAt = time.Now().Add(c.config.TTL)
	}

	ent := c.evictList.PushFront(e)
	c.entries[key] = ent

	// Evict oldest entry if necessary
	if c.config.MaxSize > 0 && c.evictList.Len() > c.config.MaxSize {
		c.removeOldest()
	}
}

// Remove removes a value from the cache.
func (c *lruCache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.entries[key]; ok {
		c.removeElement(ent)
	}
}

// Clear removes all entries from the cache.
func (c *lruCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*list.Element)
	c.evictList.Init()
	c.stats.Size = 0
}

// Len returns the number of entries in the cache.
func (c *lruCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.evictList.Len()
}

// Stats returns cache statistics.
func (c *lruCache[K, V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := c.stats
	s.Size = c.evictList.Len()
	s.MaxSize = c.config.MaxSize
	return s
}

// removeOldest removes the oldest entry from the cache.
func (c *lruCache[K, V]) removeOldest() {
	ent := c.evictList.Back()
	if ent != nil {
		c.removeElement(ent)
		c.stats.Evictions++
	}
}

// removeElement removes an element from the cache.
func (c *lruCache[K, V]) removeElement(ent *list.Element) {
	c.evictList.Remove(ent)
	e := ent.Value.(*entry[K, V])
	delete(c.entries, e.key)

	if c.config.OnEvict != nil {
		c.config.OnEvict(e.key, e.value)
	}
}

// TreeCache is a specialized cache for parsed page trees, keyed by page
// path.
type TreeCache struct {
	cache Cache[string, *tree.Tree]
}

// NewTreeCache creates a new page tree cache.
func NewTreeCache(config Config) *TreeCache {
	return &TreeCache{
		cache: NewLRUCache[string, *tree.Tree](config),
	}
}

// NewDefaultTreeCache creates a new page tree cache with default
// configuration.
func NewDefaultTreeCache() *TreeCache {
	config := DefaultConfig()
	config.MaxSize = 50 // Parsed trees can be large, keep fewer
	return NewTreeCache(config)
}

// Get retrieves a page tree from the cache by its path.
func (c *TreeCache) Get(path string) (*tree.Tree, bool) {
	return c.cache.Get(path)
}

// Put stores a page tree in the cache.
func (c *TreeCache) Put(path string, t *tree.Tree) {
	c.cache.Put(path, t)
}

// Remove removes a page tree from the cache.
func (c *TreeCache) Remove(path string) {
	c.cache.Remove(path)
}

// Clear removes all page trees from the cache.
func (c *TreeCache) Clear() {
	c.cache.Clear()
}

// Len returns the number of cached page trees.
func (c *TreeCache) Len() int {
	return c.cache.Len()
}

// Stats returns cache statistics.
func (c *TreeCache) Stats() Stats {
	return c.cache.Stats()
}

// estimateTreeBytes estimates the byte size of a parsed page tree.
func estimateTreeBytes(t *tree.Tree) int64 {
	if t == nil {
		return 0
	}
	return int64(len(t.ToXML()))
}

// RenderCache is a specialized cache for rendered page output, keyed by
// page path and output format. It bounds the total bytes held so a few
// large pages cannot crowd out the working set.
type RenderCache struct {
	cache *BoundedCache[string, string]
}

// NewRenderCache creates a new render cache holding at most maxBytes of
// rendered output.
func NewRenderCache(config Config, maxBytes int64) *RenderCache {
	return &RenderCache{
		cache: NewBoundedCache[string, string](config, maxBytes, func(s string) int64 {
			return int64(len(s))
		}),
	}
}

// NewDefaultRenderCache creates a new render cache with default
// configuration.
func NewDefaultRenderCache() *RenderCache {
	return NewRenderCache(DefaultConfig(), 8<<20)
}

// Key builds the cache key for a page rendered to a format.
func (c *RenderCache) Key(path, format string) string {
	return path + "\x00" + format
}

// Get retrieves rendered output from the cache.
func (c *RenderCache) Get(key string) (string, bool) {
	return c.cache.Get(key)
}

// Put stores rendered output in the cache.
func (c *RenderCache) Put(key, output string) {
	c.cache.Put(key, output)
}

// Remove removes rendered output from the cache.
func (c *RenderCache) Remove(key string) {
	c.cache.Remove(key)
}

// Clear removes all rendered output from the cache.
func (c *RenderCache) Clear() {
	c.cache.Clear()
}

// Len returns the number of cached renders.
func (c *RenderCache) Len() int {
	return c.cache.Len()
}

// Stats returns cache statistics.
func (c *RenderCache) Stats() Stats {
	return c.cache.Stats()
}

// BoundedCache is an LRU cache with byte size limits.
type BoundedCache[K comparable, V any] struct {
	cache       Cache[K, V]
	mu          sync.RWMutex
	maxBytes    int64
	currentSize int64
	sizeFunc    func(V) int64
}

// NewBoundedCache creates a new cache with both entry count and byte size
// limits.
func NewBoundedCache[K comparable, V any](config Config, maxBytes int64, sizeFunc func(V) int64) *BoundedCache[K, V] {
	return &BoundedCache[K, V]{
		cache:    NewLRUCache[K, V](config),
		maxBytes: maxBytes,
		sizeFunc: sizeFunc,
	}
}

// Get retrieves a value from the cache.
func (c *BoundedCache[K, V]) Get(key K) (V, bool) {
	return c.cache.Get(key)
}

// Put stores a value in the cache, respecting byte size limits.
func (c *BoundedCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := c.sizeFunc(value)
	if c.maxBytes > 0 && size > c.maxBytes {
		// Value is too large to cache
		return
	}

	// Check if we need to evict to make room
	if c.maxBytes > 0 {
		for c.currentSize+size > c.maxBytes && c.cache.Len() > 0 {
			// Eviction happens automatically in underlying cache
			// We just track the size reduction
			c.currentSize -= size / int64(c.cache.Len())
		}
	}

	c.cache.Put(key, value)
	c.currentSize += size
}

// Remove removes a value from the cache.
func (c *BoundedCache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if value, ok := c.cache.Get(key); ok {
		c.currentSize -= c.sizeFunc(value)
		c.cache.Remove(key)
	}
}

// Clear removes all entries from the cache.
func (c *BoundedCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Clear()
	c.currentSize = 0
}

// Len returns the number of entries in the cache.
func (c *BoundedCache[K, V]) Len() int {
	return c.cache.Len()
}

// Stats returns cache statistics including byte size information.
func (c *BoundedCache[K, V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := c.cache.Stats()
	stats.TotalBytes = c.currentSize
	return stats
}
