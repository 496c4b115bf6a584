package util

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// CacheConfig controls the eviction behavior of an LRUCache.
type CacheConfig[K comparable, V any] struct {
	// Capacity is the maximum number of entries. Zero means unbounded.
	Capacity int
	// MaxWeight is the maximum total weight of all entries. Zero means unbounded.
	MaxWeight int
	// TTL is how long an entry stays valid. Zero means entries never expire.
	TTL time.Duration
}

type entry[K comparable, V any] struct {
	key        K
	value      V
	weight     int
	expiration time.Time
}

// LRUCache is a thread-safe generic cache evicting least-recently-used entries
// once the capacity or weight bound is exceeded. Expired entries are dropped
// lazily on Get.
type LRUCache[K comparable, V any] struct {
	config CacheConfig[K, V]
	ll     *list.List
	cache  map[K]*list.Element
	weight int
	mu     sync.RWMutex
}

// NewWithConfig creates an LRUCache. At least one of Capacity or MaxWeight
// must be set, otherwise nothing would ever be evicted.
func NewWithConfig[K comparable, V any](config CacheConfig[K, V]) (*LRUCache[K, V], error) {
	if config.Capacity <= 0 && config.MaxWeight <= 0 {
		return nil, fmt.Errorf("lru cache needs a Capacity or MaxWeight bound")
	}
	return &LRUCache[K, V]{
		config: config,
		ll:     list.New(),
		cache:  make(map[K]*list.Element),
	}, nil
}

// Get returns the cached value for key and marks it as recently used.
func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.cache[key]
	if !ok {
		var zero V
		return zero, false
	}

	ent := element.Value.(*entry[K, V])
	if c.config.TTL > 0 && time.Now().After(ent.expiration) {
		c.removeElement(element)
		var zero V
		return zero, false
	}

	c.ll.MoveToFront(element)
	return ent.value, true
}

// Put inserts or updates a key with the given weight. Pass weight 1 when only
// the capacity bound matters.
func (c *LRUCache[K, V]) Put(key K, value V, weight int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.cache[key]; ok {
		ent := element.Value.(*entry[K, V])
		c.weight += weight - ent.weight
		ent.weight = weight
		ent.value = value
		if c.config.TTL > 0 {
			ent.expiration = time.Now().Add(c.config.TTL)
		}
		c.ll.MoveToFront(element)
	} else {
		ent := &entry[K, V]{key: key, value: value, weight: weight}
		if c.config.TTL > 0 {
			ent.expiration = time.Now().Add(c.config.TTL)
		}
		c.cache[key] = c.ll.PushFront(ent)
		c.weight += weight
	}

	// A single heavy entry can push out several light ones.
	for c.overBound() {
		c.evict()
	}
}

// overBound reports whether either bound is exceeded. Caller holds the lock.
func (c *LRUCache[K, V]) overBound() bool {
	if c.config.Capacity > 0 && c.ll.Len() > c.config.Capacity {
		return true
	}
	if c.config.MaxWeight > 0 && c.weight > c.config.MaxWeight {
		return true
	}
	return false
}

// evict drops the least-recently-used entry. Caller holds the lock.
func (c *LRUCache[K, V]) evict() {
	if back := c.ll.Back(); back != nil {
		c.removeElement(back)
	}
}

// removeElement unlinks an element from the list and map. Caller holds the lock.
func (c *LRUCache[K, V]) removeElement(e *list.Element) {
	c.ll.Remove(e)
	ent := e.Value.(*entry[K, V])
	delete(c.cache, ent.key)
	c.weight -= ent.weight
}

// Len returns the number of cached entries.
func (c *LRUCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ll.Len()
}

// Weight returns the total weight of all cached entries.
func (c *LRUCache[K, V]) Weight() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.weight
}
